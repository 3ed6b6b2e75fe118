package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func noopHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORSMiddleware(t *testing.T) {
	t.Run("AllowedOrigin", func(t *testing.T) {
		config := CORSConfig{
			AllowedOrigins:   []string{"http://localhost:5173"},
			AllowedMethods:   []string{"GET", "POST"},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: true,
			MaxAge:           86400,
		}
		handler := CORSMiddleware(config)(noopHandler())

		req := httptest.NewRequest(http.MethodGet, "/api/companies", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "GET, POST", rec.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("DisallowedOrigin", func(t *testing.T) {
		config := CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}}
		handler := CORSMiddleware(config)(noopHandler())

		req := httptest.NewRequest(http.MethodGet, "/api/companies", nil)
		req.Header.Set("Origin", "http://evil.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("WildcardOrigin", func(t *testing.T) {
		config := CORSConfig{AllowedOrigins: []string{"*"}}
		handler := CORSMiddleware(config)(noopHandler())

		req := httptest.NewRequest(http.MethodGet, "/api/companies", nil)
		req.Header.Set("Origin", "http://anywhere.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("PreflightShortCircuits", func(t *testing.T) {
		config := CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}}
		called := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		})
		handler := CORSMiddleware(config)(next)

		req := httptest.NewRequest(http.MethodOptions, "/api/companies", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, called)
	})

	t.Run("ExposedHeaders", func(t *testing.T) {
		config := CORSConfig{
			AllowedOrigins: []string{"http://localhost:5173"},
			ExposedHeaders: []string{"X-Request-ID"},
		}
		handler := CORSMiddleware(config)(noopHandler())

		req := httptest.NewRequest(http.MethodGet, "/api/companies", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "X-Request-ID", rec.Header().Get("Access-Control-Expose-Headers"))
	})
}

func TestDefaultCORSConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", "")

		config := DefaultCORSConfig()
		assert.Equal(t, []string{"http://localhost:5173"}, config.AllowedOrigins)
		assert.True(t, config.AllowCredentials)
		assert.Equal(t, 86400, config.MaxAge)
	})

	t.Run("FromEnvironment", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")

		config := DefaultCORSConfig()
		assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, config.AllowedOrigins)
	})
}
