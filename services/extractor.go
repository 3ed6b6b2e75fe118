package services

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"sort"
	"time"

	"github.com/whop-boardy/member-directory/models"
	"github.com/whop-boardy/member-directory/pkg/errors"
)

// Field aliases the upstream webhook sender has used for the company
// identifier, in resolution order. company_buyer_id and page_id come from
// observed production payloads; the rest are historical names.
var companyIDFields = []string{
	"company_buyer_id",
	"page_id",
	"company_id",
	"business_id",
	"hub_id",
	"companyId",
	"businessId",
}

// Nested objects whose company_id field can stand in for a top-level one.
var companyIDParents = []string{"membership", "product", "checkout"}

// URLs that embed the company identifier as a biz_ path segment.
var companyURLFields = []string{"manage_url", "storefront_url", "checkout_url"}

var companyIDPattern = regexp.MustCompile(`/(biz_[a-zA-Z0-9]+)`)

// ExtractCompanyID resolves the company identifier from a webhook payload,
// trying explicit fields, nested objects, and URL segments in order.
// Returns "" when nothing resolves.
func ExtractCompanyID(data map[string]any) string {
	for _, field := range companyIDFields {
		if v := stringField(data, field); v != "" {
			return v
		}
	}

	for _, parent := range companyIDParents {
		if nested, ok := data[parent].(map[string]any); ok {
			if v := stringField(nested, "company_id"); v != "" {
				return v
			}
		}
	}

	for _, field := range companyURLFields {
		if url := stringField(data, field); url != "" {
			if match := companyIDPattern.FindStringSubmatch(url); match != nil {
				return match[1]
			}
		}
	}

	return ""
}

// ExtractMembership normalizes a webhook payload into the canonical
// membership tuple. Pure mapping: the only side effect is advisory logging
// when resolution fails.
func ExtractMembership(data map[string]any) (*models.ExtractedMembership, *errors.APIError) {
	companyID := ExtractCompanyID(data)
	if companyID == "" {
		fields := fieldNames(data)
		slog.Warn("No company ID found in webhook data", "available_fields", fields)
		return nil, errors.MissingIdentifierError(fields)
	}

	userID := firstStringField(data, "user_id", "user")
	if userID == "" {
		return nil, errors.MissingRequiredFieldError("user_id")
	}

	membershipID := firstStringField(data, "id", "membership_id")
	if membershipID == "" {
		return nil, errors.MissingRequiredFieldError("membership_id")
	}

	return &models.ExtractedMembership{
		CompanyID:    companyID,
		UserID:       userID,
		MembershipID: membershipID,
		Email:        optionalStringField(data, "email"),
		Name:         optionalStringField(data, "name"),
		Username:     optionalStringField(data, "username"),
		CustomFields: extractCustomFields(data),
		JoinedAt:     extractJoinedAt(data),
		Status:       extractStatus(data),
	}, nil
}

// extractCustomFields serializes the free-form survey/waitlist object under
// either of its historical names. Absent or unserializable → empty object.
func extractCustomFields(data map[string]any) string {
	raw, ok := data["custom_field_responses"]
	if !ok {
		raw, ok = data["waitlist_responses"]
	}
	if !ok || raw == nil {
		return "{}"
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		slog.Warn("Could not serialize custom fields", "error", err)
		return "{}"
	}
	return string(encoded)
}

// extractJoinedAt reads created_at as either Unix seconds or an ISO
// datetime. Unix timestamps arrive in seconds and are converted through
// millisecond resolution. Absent or unparseable → now.
func extractJoinedAt(data map[string]any) time.Time {
	switch v := data["created_at"].(type) {
	case float64:
		return time.UnixMilli(int64(v * 1000)).UTC()
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t.UTC()
		}
		if t, err := time.Parse("2006-01-02T15:04:05", v); err == nil {
			return t.UTC()
		}
		slog.Warn("Could not parse created_at, defaulting to now", "created_at", v)
	}
	return time.Now().UTC()
}

// extractStatus maps the explicit valid flag to active, otherwise uses the
// payload's status string verbatim, otherwise defaults to active.
func extractStatus(data map[string]any) string {
	if valid, ok := data["valid"].(bool); ok && valid {
		return models.StatusActive
	}
	if status := stringField(data, "status"); status != "" {
		return status
	}
	return models.StatusActive
}

func stringField(data map[string]any, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

func firstStringField(data map[string]any, keys ...string) string {
	for _, key := range keys {
		if v := stringField(data, key); v != "" {
			return v
		}
	}
	return ""
}

func optionalStringField(data map[string]any, key string) *string {
	if v := stringField(data, key); v != "" {
		return &v
	}
	return nil
}

func fieldNames(data map[string]any) []string {
	fields := make([]string, 0, len(data))
	for k := range data {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}
