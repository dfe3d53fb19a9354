package memory

import (
	"context"
	"log"

	"github.com/oyaa52/finsense/services/login-service/internal/application/auth"
)

type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher { return &NoopPublisher{} }

func (p *NoopPublisher) PublishUserRegistered(ctx context.Context, evt auth.UserRegisteredEvent) error {
	log.Printf("[noop-pub] user registered: user_id=%d email=%s provider=%s", evt.UserID, evt.Email, evt.Provider)
	return nil
}
