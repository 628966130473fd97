package security

import (
	"errors"
	"testing"
	"time"

	"github.com/bookwise/booking-platform/internal/core/domain"
)

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	svc, err := NewTokenService("test-secret", "booking-platform", 5*time.Hour)
	if err != nil {
		t.Fatalf("new token service: %v", err)
	}
	return svc
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	if _, err := NewTokenService("  ", "booking-platform", time.Hour); err == nil {
		t.Fatal("expected error for blank secret")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	svc := newTestTokenService(t)

	token, err := svc.Issue(domain.Principal{ID: "user-1", Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	principal, err := svc.Resolve(token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if principal.ID != "user-1" {
		t.Fatalf("ID = %q, want user-1", principal.ID)
	}
	if principal.Role != domain.RoleAdmin {
		t.Fatalf("Role = %q, want admin", principal.Role)
	}
}

func TestTokenExpiry(t *testing.T) {
	issuedAt := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	svc := newTestTokenService(t).WithClock(func() time.Time { return issuedAt })
	token, err := svc.Issue(domain.Principal{ID: "user-1", Role: domain.RoleClient})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Still valid just inside the five hour window.
	svc.WithClock(func() time.Time { return issuedAt.Add(5*time.Hour - time.Minute) })
	if _, err := svc.Resolve(token); err != nil {
		t.Fatalf("resolve within ttl: %v", err)
	}

	svc.WithClock(func() time.Time { return issuedAt.Add(5*time.Hour + time.Minute) })
	if _, err := svc.Resolve(token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("err = %v, want ErrUnauthenticated", err)
	}
}

func TestTokenTamperingRejected(t *testing.T) {
	svc := newTestTokenService(t)

	token, err := svc.Issue(domain.Principal{ID: "user-1", Role: domain.RoleClient})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	tampered := token[:len(token)-2] + "xx"
	if _, err := svc.Resolve(tampered); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("err = %v, want ErrUnauthenticated", err)
	}
}

func TestTokenFromDifferentSecretRejected(t *testing.T) {
	issuerSvc, err := NewTokenService("other-secret", "booking-platform", time.Hour)
	if err != nil {
		t.Fatalf("new token service: %v", err)
	}

	token, err := issuerSvc.Issue(domain.Principal{ID: "user-1", Role: domain.RoleClient})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	svc := newTestTokenService(t)
	if _, err := svc.Resolve(token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("err = %v, want ErrUnauthenticated", err)
	}
}

func TestResolveGarbageRejected(t *testing.T) {
	svc := newTestTokenService(t)

	if _, err := svc.Resolve("not.a.token"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("err = %v, want ErrUnauthenticated", err)
	}
}
