package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const testSecret = "test-secret"

func signToken(t *testing.T, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":  uint64(7),
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func runRequest(authHeader string, mws ...echo.MiddlewareFunc) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	_ = h(c)
	return rec
}

func TestJWTAuthMissingToken(t *testing.T) {
	rec := runRequest("", JWTAuth(testSecret))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestJWTAuthBadSignature(t *testing.T) {
	claims := jwt.MapClaims{"sub": uint64(7), "role": "CLIENT", "exp": time.Now().Add(time.Hour).Unix()}
	signed, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	rec := runRequest("Bearer "+signed, JWTAuth(testSecret))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestJWTAuthValidToken(t *testing.T) {
	rec := runRequest("Bearer "+signToken(t, "CLIENT"), JWTAuth(testSecret))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRoleAllows(t *testing.T) {
	rec := runRequest("Bearer "+signToken(t, "ADMIN"), JWTAuth(testSecret), RequireRole("ADMIN"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRoleRejects(t *testing.T) {
	rec := runRequest("Bearer "+signToken(t, "CLIENT"), JWTAuth(testSecret), RequireRole("ADMIN"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequireRoleMissingClaim(t *testing.T) {
	rec := runRequest("", RequireRole("ADMIN", "CLIENT"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
