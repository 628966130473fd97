package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/bookwise/booking-platform/internal/core/domain"
)

type staticVerifier struct {
	principal domain.Principal
	err       error
}

func (v staticVerifier) Resolve(string) (domain.Principal, error) {
	return v.principal, v.err
}

func newAuthTestRouter(verifier staticVerifier, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	chain := []gin.HandlerFunc{RequireAuth(verifier)}
	chain = append(chain, extra...)
	chain = append(chain, func(c *gin.Context) {
		principal, _ := GetPrincipal(c)
		c.JSON(http.StatusOK, gin.H{"id": principal.ID, "role": string(principal.Role)})
	})

	r.GET("/protected", chain...)
	return r
}

func TestRequireAuthMissingHeader(t *testing.T) {
	r := newAuthTestRouter(staticVerifier{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestRequireAuthMalformedHeader(t *testing.T) {
	r := newAuthTestRouter(staticVerifier{})

	for _, header := range []string{"token-without-scheme", "Basic abc", "Bearer "} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", header)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: status = %d, want 401", header, w.Code)
		}
	}
}

func TestRequireAuthRejectsInvalidToken(t *testing.T) {
	r := newAuthTestRouter(staticVerifier{err: domain.ErrUnauthenticated})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestRequireAuthStoresPrincipal(t *testing.T) {
	r := newAuthTestRouter(staticVerifier{
		principal: domain.Principal{ID: "user-1", Role: domain.RoleClient},
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if body := w.Body.String(); body != `{"id":"user-1","role":"client"}` {
		t.Fatalf("body = %s", body)
	}
}

func TestRequireRoleForbidsMismatch(t *testing.T) {
	r := newAuthTestRouter(staticVerifier{
		principal: domain.Principal{ID: "user-1", Role: domain.RoleClient},
	}, RequireRole(domain.RoleAdmin))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestRequireRoleAllowsMatch(t *testing.T) {
	r := newAuthTestRouter(staticVerifier{
		principal: domain.Principal{ID: "admin-1", Role: domain.RoleAdmin},
	}, RequireRole(domain.RoleAdmin))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}
