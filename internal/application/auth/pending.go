package auth

import "github.com/oyaa52/finsense/services/login-service/internal/domain"

// AttachOneTimeToken mints an OTT and stores it on the pending login before
// the login is finalized. Calling it twice for the same PendingLogin simply
// overwrites the previous token; the old one was never published, so nothing
// can hold a reference to it. No I/O happens here.
func (s *Service) AttachOneTimeToken(p *domain.PendingLogin) string {
	if p == nil {
		return ""
	}
	p.OneTimeToken = newOneTimeToken()
	return p.OneTimeToken
}
