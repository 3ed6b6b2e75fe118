package models

import "time"

// ExtractedMembership is the canonical tuple the field extractor produces
// from a raw webhook payload. Optional contact fields stay nil when neither
// the payload nor the enrichment lookup provided them.
type ExtractedMembership struct {
	CompanyID    string
	UserID       string
	MembershipID string
	Email        *string
	Name         *string
	Username     *string
	CustomFields string
	JoinedAt     time.Time
	Status       string
}
