package auth

import (
	"testing"

	"github.com/oyaa52/finsense/services/login-service/internal/domain"
)

func requireErrCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error code=%q, got nil", code)
	}
	if !domain.Is(err, code) {
		t.Fatalf("expected code=%q, got err=%v", code, err)
	}
}

func requireAuditAction(t *testing.T, audits *auditLog, action string) *auditEntry {
	t.Helper()
	e := audits.find(action)
	if e == nil {
		t.Fatalf("expected audit action %q, got none", action)
	}
	return e
}
