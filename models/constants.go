package models

// Member status values
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Webhook event types that invalidate a membership. The upstream sender
// has used both spellings at different times.
const (
	EventMembershipWentInvalid    = "membership.went_invalid"
	EventMembershipWentInvalidAlt = "membership_went_invalid"
)

// Webhook response actions
const (
	ActionMemberStored      = "member_stored"
	ActionMemberDeactivated = "member_deactivated"
	ActionMemberNotFound    = "member_not_found"
)

// IsInvalidationEvent reports whether an event type marks a membership as no
// longer valid.
func IsInvalidationEvent(eventType string) bool {
	return eventType == EventMembershipWentInvalid || eventType == EventMembershipWentInvalidAlt
}
