package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whop-boardy/member-directory/models"
	"github.com/whop-boardy/member-directory/services"
	"gorm.io/gorm"
)

func setupTestServer(t *testing.T) (*httptest.Server, *gorm.DB) {
	t.Helper()
	db := services.SetupTestDB(t)
	handler := NewHandler(db, nil)
	mux := http.NewServeMux()
	handler.SetupRoutes(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, db
}

func postWebhook(t *testing.T, server *httptest.Server, body map[string]any) (*http.Response, map[string]any) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(server.URL+"/webhook/membership", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func getJSON(t *testing.T, server *httptest.Server, path string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(server.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestWebhookEndpoint(t *testing.T) {
	t.Run("MembershipCreated", func(t *testing.T) {
		server, _ := setupTestServer(t)

		resp, body := postWebhook(t, server, map[string]any{
			"event_type": "membership.created",
			"data": map[string]any{
				"company_id": "biz_1",
				"user_id":    "u1",
				"id":         "m1",
				"created_at": 1700000000,
				"valid":      true,
			},
		})

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "biz_1", body["company_id"])

		member, ok := body["member"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "u1", member["user_id"])
		assert.Equal(t, models.StatusActive, member["status"])
	})

	t.Run("ActionFieldAsEventName", func(t *testing.T) {
		server, _ := setupTestServer(t)

		resp, body := postWebhook(t, server, map[string]any{
			"action": "membership.created",
			"data": map[string]any{
				"company_id": "biz_1",
				"user_id":    "u1",
				"id":         "m1",
			},
		})

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "membership.created", body["event_type"])
	})

	t.Run("MissingCompanyIdentifier", func(t *testing.T) {
		server, db := setupTestServer(t)

		resp, body := postWebhook(t, server, map[string]any{
			"event_type": "membership.created",
			"data": map[string]any{
				"user_id": "u1",
				"id":      "m1",
				"email":   "a@x.com",
			},
		})

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, false, body["success"])

		fields, ok := body["available_fields"].([]any)
		require.True(t, ok)
		assert.Contains(t, fields, "user_id")
		assert.Contains(t, fields, "email")

		var count int64
		db.Model(&models.Member{}).Count(&count)
		assert.Equal(t, int64(0), count)
	})

	t.Run("MissingUserID", func(t *testing.T) {
		server, _ := setupTestServer(t)

		resp, body := postWebhook(t, server, map[string]any{
			"event_type": "membership.created",
			"data": map[string]any{
				"company_id": "biz_1",
				"id":         "m1",
			},
		})

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, false, body["success"])
	})

	t.Run("NoData", func(t *testing.T) {
		server, _ := setupTestServer(t)

		resp, body := postWebhook(t, server, map[string]any{
			"event_type": "membership.created",
		})

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "No data provided", body["error"])
	})

	t.Run("InvalidBody", func(t *testing.T) {
		server, _ := setupTestServer(t)

		resp, err := http.Post(server.URL+"/webhook/membership", "application/json", bytes.NewReader([]byte("{not json")))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("MethodNotAllowed", func(t *testing.T) {
		server, _ := setupTestServer(t)

		resp, err := http.Get(server.URL + "/webhook/membership")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})

	t.Run("Invalidation", func(t *testing.T) {
		server, _ := setupTestServer(t)

		postWebhook(t, server, map[string]any{
			"event_type": "membership.created",
			"data": map[string]any{
				"company_id": "biz_1",
				"user_id":    "u1",
				"id":         "m1",
			},
		})

		resp, body := postWebhook(t, server, map[string]any{
			"event_type": models.EventMembershipWentInvalid,
			"data": map[string]any{
				"company_id": "biz_1",
				"user_id":    "u1",
				"id":         "m1",
			},
		})

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, models.ActionMemberDeactivated, body["action"])
	})
}

func TestMembersEndpoint(t *testing.T) {
	t.Run("UnknownCompanyBeforeAnyWebhook", func(t *testing.T) {
		server, _ := setupTestServer(t)

		resp, body := getJSON(t, server, "/api/members/biz_1")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, false, body["success"])
	})

	t.Run("ListsAfterWebhook", func(t *testing.T) {
		server, _ := setupTestServer(t)

		postWebhook(t, server, map[string]any{
			"event_type": "membership.created",
			"data": map[string]any{
				"company_id": "biz_1",
				"user_id":    "u1",
				"id":         "m1",
			},
		})

		resp, body := getJSON(t, server, "/api/members/biz_1")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, float64(1), body["count"])
		assert.Equal(t, "biz_1", body["company_id"])
	})

	t.Run("RejectsPlaceholderIdentifiers", func(t *testing.T) {
		server, _ := setupTestServer(t)

		for _, id := range []string{"undefined", "null"} {
			resp, err := http.Get(fmt.Sprintf("%s/api/members/%s", server.URL, id))
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		}
	})
}

func TestCompaniesEndpoint(t *testing.T) {
	t.Run("EmptyListing", func(t *testing.T) {
		server, _ := setupTestServer(t)

		resp, body := getJSON(t, server, "/api/companies")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, float64(0), body["count"])
	})

	t.Run("DetailWithStats", func(t *testing.T) {
		server, _ := setupTestServer(t)

		postWebhook(t, server, map[string]any{
			"event_type": "membership.created",
			"data": map[string]any{
				"company_id": "biz_1",
				"user_id":    "u1",
				"id":         "m1",
			},
		})

		resp, body := getJSON(t, server, "/api/companies/biz_1")
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		company, ok := body["company"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "biz_1", company["id"])

		stats, ok := company["stats"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, float64(1), stats["total_members"])
		assert.Equal(t, float64(1), stats["active_members"])
	})

	t.Run("DetailNotFound", func(t *testing.T) {
		server, _ := setupTestServer(t)

		resp, err := http.Get(server.URL + "/api/companies/biz_missing")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestDirectoryEndpoint(t *testing.T) {
	t.Run("ActiveOnly", func(t *testing.T) {
		server, _ := setupTestServer(t)

		for i, valid := range []bool{true, true} {
			postWebhook(t, server, map[string]any{
				"event_type": "membership.created",
				"data": map[string]any{
					"company_id": "biz_1",
					"user_id":    fmt.Sprintf("u%d", i),
					"id":         fmt.Sprintf("m%d", i),
					"valid":      valid,
				},
			})
		}
		postWebhook(t, server, map[string]any{
			"event_type": models.EventMembershipWentInvalid,
			"data": map[string]any{
				"company_id": "biz_1",
				"user_id":    "u0",
				"id":         "m0",
			},
		})

		resp, body := getJSON(t, server, "/api/directory/biz_1")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, float64(1), body["count"])

		group, ok := body["group"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "biz_1", group["company_id"])
	})
}

func TestAPINotFound(t *testing.T) {
	server, _ := setupTestServer(t)

	resp, body := getJSON(t, server, "/api/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "API endpoint not found", body["error"])

	endpoints, ok := body["available_endpoints"].([]any)
	require.True(t, ok)
	assert.Contains(t, endpoints, "POST /webhook/membership")
}
