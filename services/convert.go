package services

import (
	"encoding/json"

	"github.com/whop-boardy/member-directory/models"
)

// MemberToResponse converts a stored member row to its API shape, parsing
// the serialized custom fields back into an object.
func MemberToResponse(member *models.Member) *models.MemberResponse {
	customFields := parseCustomFields(member.CustomFields)
	return &models.MemberResponse{
		ID:                member.ID,
		UserID:            member.UserID,
		MembershipID:      member.MembershipID,
		Email:             member.Email,
		Name:              member.Name,
		Username:          member.Username,
		CustomFields:      customFields,
		WaitlistResponses: customFields,
		JoinedAt:          member.JoinedAt,
		Status:            member.Status,
		CreatedAt:         member.CreatedAt,
		UpdatedAt:         member.UpdatedAt,
	}
}

// parseCustomFields tolerates whatever ended up in the column. Data written
// before the upstream app had full permissions is not valid JSON; readers
// get an annotated placeholder instead of a decode failure.
func parseCustomFields(raw string) map[string]any {
	if raw == "" {
		return map[string]any{}
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return map[string]any{
			"error": "Unable to parse custom fields",
			"note":  "Custom field data exists but in an unsupported format",
		}
	}
	if fields == nil {
		return map[string]any{}
	}
	return fields
}
