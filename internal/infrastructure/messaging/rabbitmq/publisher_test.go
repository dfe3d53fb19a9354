package rabbitmq

import (
	"encoding/json"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/oyaa52/finsense/services/login-service/internal/application/auth"
)

func TestNewMessage_UserRegisteredShape(t *testing.T) {
	msg, err := newMessage(auth.UserRegisteredEvent{
		UserID:   42,
		Email:    "alice@example.com",
		Username: "alice",
		Provider: "google",
	})
	if err != nil {
		t.Fatalf("newMessage: %v", err)
	}

	if msg.ContentType != "application/json" {
		t.Fatalf("content type = %q, want application/json", msg.ContentType)
	}
	if msg.DeliveryMode != amqp.Persistent {
		t.Fatalf("delivery mode = %d, want persistent", msg.DeliveryMode)
	}
	if msg.Timestamp.IsZero() {
		t.Fatal("expected timestamp to be set")
	}

	var got map[string]any
	if err := json.Unmarshal(msg.Body, &got); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	want := map[string]any{
		"user_id":  float64(42),
		"email":    "alice@example.com",
		"username": "alice",
		"provider": "google",
	}
	if len(got) != len(want) {
		t.Fatalf("body = %s, want exactly %d fields", msg.Body, len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("body[%q] = %v, want %v", k, got[k], v)
		}
	}
}

func TestNewMessage_OmitsEmptyProvider(t *testing.T) {
	msg, err := newMessage(auth.UserRegisteredEvent{
		UserID:   7,
		Email:    "bob@example.com",
		Username: "bob",
	})
	if err != nil {
		t.Fatalf("newMessage: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(msg.Body, &got); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if _, ok := got["provider"]; ok {
		t.Fatalf("body = %s, expected provider to be omitted for local registration", msg.Body)
	}
}

func TestSetExchange(t *testing.T) {
	p := &Publisher{exchange: DefaultExchange}

	p.SetExchange("")
	if p.exchange != DefaultExchange {
		t.Fatalf("exchange = %q, empty name must not override the default", p.exchange)
	}

	p.SetExchange("finsense.staging")
	if p.exchange != "finsense.staging" {
		t.Fatalf("exchange = %q, want finsense.staging", p.exchange)
	}
}
