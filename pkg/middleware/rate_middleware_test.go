package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-profile-service/pkg/middleware"
)

func newLimitedHandler(t *testing.T, limit int) (http.Handler, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	h := middleware.RateLimiter(rdb, limit, time.Minute, time.Minute, "test")(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
	return h, mr
}

func doRequest(h http.Handler) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter(t *testing.T) {
	t.Run("allows requests under the limit", func(t *testing.T) {
		h, _ := newLimitedHandler(t, 3)

		for i := 0; i < 3; i++ {
			rec := doRequest(h)
			require.Equal(t, http.StatusOK, rec.Code)
		}
	})

	t.Run("blocks once the window limit is exceeded", func(t *testing.T) {
		h, _ := newLimitedHandler(t, 2)

		doRequest(h)
		doRequest(h)

		rec := doRequest(h)
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("Retry-After"))

		// Still blocked on the next request via the block key.
		rec = doRequest(h)
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
	})

	t.Run("sets rate limit headers", func(t *testing.T) {
		h, _ := newLimitedHandler(t, 5)

		rec := doRequest(h)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "4", rec.Header().Get("X-RateLimit-Remaining"))
	})

	t.Run("fails open when redis is down", func(t *testing.T) {
		h, mr := newLimitedHandler(t, 1)
		mr.Close()

		rec := doRequest(h)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}
