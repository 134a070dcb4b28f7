package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/myhometech/backend/internal/utils"
)

const testSecret = "test-secret"

func okHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user_id": c.Get("user_id"),
		"role":    c.Get("role"),
	})
}

func doRequest(t *testing.T, mw echo.MiddlewareFunc, authorization string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := mw(okHandler)(c); err != nil {
		t.Fatalf("middleware: %v", err)
	}
	return rec
}

func TestJWTAuth(t *testing.T) {
	mw := JWTAuth(testSecret)

	t.Run("valid token passes and sets claims", func(t *testing.T) {
		access, err := utils.NewAccessToken(testSecret, 42, "TECHNICIAN", 5)
		if err != nil {
			t.Fatalf("NewAccessToken: %v", err)
		}
		rec := doRequest(t, mw, "Bearer "+access.Token)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("missing header", func(t *testing.T) {
		rec := doRequest(t, mw, "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := doRequest(t, mw, "Bearer not.a.jwt")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		access, err := utils.NewAccessToken("other-secret", 42, "CLIENT", 5)
		if err != nil {
			t.Fatalf("NewAccessToken: %v", err)
		}
		rec := doRequest(t, mw, "Bearer "+access.Token)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})
}

func TestRequireRole(t *testing.T) {
	run := func(t *testing.T, mw echo.MiddlewareFunc, role interface{}) *httptest.ResponseRecorder {
		t.Helper()
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != nil {
			c.Set("role", role)
		}
		if err := mw(okHandler)(c); err != nil {
			t.Fatalf("middleware: %v", err)
		}
		return rec
	}

	t.Run("allowed role", func(t *testing.T) {
		rec := run(t, RequireRole("CLIENT", "TECHNICIAN"), "CLIENT")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("wrong role", func(t *testing.T) {
		rec := run(t, RequireRole("TECHNICIAN"), "CLIENT")
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("missing role", func(t *testing.T) {
		rec := run(t, RequireRole("CLIENT"), nil)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
	})
}
