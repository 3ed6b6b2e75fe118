package whop

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	t.Run("DefaultBaseURL", func(t *testing.T) {
		client := NewClient("", "test-key")
		assert.Equal(t, DefaultBaseURL, client.BaseURL)
	})

	t.Run("CustomBaseURL", func(t *testing.T) {
		client := NewClient("http://localhost:9999", "test-key")
		assert.Equal(t, "http://localhost:9999", client.BaseURL)
	})
}

func TestClient_GetUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/app/users/user_123", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(UserInfo{
				ID:       "user_123",
				Email:    "jane@example.com",
				Username: "jane",
			})
		}))
		defer server.Close()

		client := NewClient(server.URL, "test-key")
		user, err := client.GetUser(context.Background(), "user_123")
		require.NoError(t, err)
		assert.Equal(t, "user_123", user.ID)
		assert.Equal(t, "jane@example.com", user.Email)
	})

	t.Run("NotFound", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := NewClient(server.URL, "test-key")
		_, err := client.GetUser(context.Background(), "user_missing")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status code: 404")
	})

	t.Run("MalformedResponse", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("{not json"))
		}))
		defer server.Close()

		client := NewClient(server.URL, "test-key")
		_, err := client.GetUser(context.Background(), "user_123")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode")
	})
}

func TestClient_GetCompany(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/app/companies/biz_123", r.URL.Path)

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(CompanyInfo{
				ID:    "biz_123",
				Title: "Acme",
				Route: "acme",
			})
		}))
		defer server.Close()

		client := NewClient(server.URL, "test-key")
		company, err := client.GetCompany(context.Background(), "biz_123")
		require.NoError(t, err)
		assert.Equal(t, "Acme", company.Title)
		assert.Equal(t, "acme", company.Route)
	})

	t.Run("ServerError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewClient(server.URL, "test-key")
		_, err := client.GetCompany(context.Background(), "biz_123")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status code: 500")
	})
}
