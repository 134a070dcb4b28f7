package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/myhometech/backend/internal/config"
)

func cacheCfg() config.CacheConfig {
	return config.CacheConfig{
		Enabled:     true,
		Methods:     map[string]bool{"GET": true},
		TTL:         30 * time.Second,
		KeyStrategy: "route_query",
		Prefix:      "cache",
	}
}

// ratingsCtx builds a context the way echo would for the parameterized
// ratings route, with the concrete URL and the route pattern both set.
func ratingsCtx(e *echo.Echo, target, id string) echo.Context {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/technicians/:id/ratings")
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c
}

func TestCacheKeyFrom(t *testing.T) {
	e := echo.New()
	cfg := cacheCfg()

	t.Run("distinct technicians get distinct keys", func(t *testing.T) {
		k7 := cacheKeyFrom(cfg, ratingsCtx(e, "/v1/technicians/7/ratings", "7"))
		k8 := cacheKeyFrom(cfg, ratingsCtx(e, "/v1/technicians/8/ratings", "8"))
		if k7 == k8 {
			t.Fatalf("key %q shared across technicians 7 and 8", k7)
		}
	})

	t.Run("same URL keys are stable", func(t *testing.T) {
		k1 := cacheKeyFrom(cfg, ratingsCtx(e, "/v1/technicians/7/ratings", "7"))
		k2 := cacheKeyFrom(cfg, ratingsCtx(e, "/v1/technicians/7/ratings", "7"))
		if k1 != k2 {
			t.Fatalf("keys for identical requests differ: %q vs %q", k1, k2)
		}
	})

	t.Run("query string participates in the key", func(t *testing.T) {
		plain := cacheKeyFrom(cfg, ratingsCtx(e, "/v1/technicians/7/ratings", "7"))
		paged := cacheKeyFrom(cfg, ratingsCtx(e, "/v1/technicians/7/ratings?page=2", "7"))
		if plain == paged {
			t.Fatal("query string ignored by route_query strategy")
		}
	})
}
