package models

import "time"

// MemberResponse is the API representation of a stored member row. Custom
// fields are returned parsed, under both names the front-end has used.
type MemberResponse struct {
	ID                uint           `json:"id"`
	UserID            string         `json:"user_id"`
	MembershipID      string         `json:"membership_id"`
	Email             *string        `json:"email"`
	Name              *string        `json:"name"`
	Username          *string        `json:"username"`
	CustomFields      map[string]any `json:"custom_fields"`
	WaitlistResponses map[string]any `json:"waitlist_responses"`
	JoinedAt          time.Time      `json:"joined_at"`
	Status            string         `json:"status"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// WebhookResponse is the envelope returned to the webhook sender.
type WebhookResponse struct {
	Success   bool            `json:"success"`
	Action    string          `json:"action,omitempty"`
	Member    *MemberResponse `json:"member,omitempty"`
	CompanyID string          `json:"company_id,omitempty"`
	EventType string          `json:"event_type,omitempty"`
}

// CompanyStats aggregates member counts for a company.
type CompanyStats struct {
	TotalMembers     int        `json:"total_members"`
	ActiveMembers    int        `json:"active_members"`
	NewMembers30Days int        `json:"new_members_30_days,omitempty"`
	FirstMemberDate  *time.Time `json:"first_member_date,omitempty"`
	LatestActivity   *time.Time `json:"latest_activity,omitempty"`
}

// CompanyResponse is the API representation of a company with its stats.
type CompanyResponse struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Title     string       `json:"title"`
	Route     *string      `json:"route"`
	ImageURL  *string      `json:"image_url"`
	Hostname  *string      `json:"hostname"`
	CreatedAt time.Time    `json:"created_at"`
	Stats     CompanyStats `json:"stats"`
}

// CompanyDetailResponse wraps a single company lookup.
type CompanyDetailResponse struct {
	Success bool             `json:"success"`
	Company *CompanyResponse `json:"company"`
}

// CompaniesListResponse wraps the company listing.
type CompaniesListResponse struct {
	Success   bool              `json:"success"`
	Companies []CompanyResponse `json:"companies"`
	Count     int               `json:"count"`
}

// MembersListResponse wraps the member listing for one company.
type MembersListResponse struct {
	Success     bool             `json:"success"`
	Members     []MemberResponse `json:"members"`
	Count       int              `json:"count"`
	CompanyID   string           `json:"company_id"`
	CompanyName string           `json:"company_name"`
	Timestamp   time.Time        `json:"timestamp"`
}

// DirectoryGroup is the company display block of the directory feed.
type DirectoryGroup struct {
	CompanyID string  `json:"company_id"`
	GroupName string  `json:"group_name"`
	Name      string  `json:"name"`
	Title     string  `json:"title"`
	Route     *string `json:"route"`
	ImageURL  *string `json:"image_url"`
}

// DirectoryResponse is the front-end feed: company metadata plus active
// members only.
type DirectoryResponse struct {
	Success   bool             `json:"success"`
	Group     DirectoryGroup   `json:"group"`
	Members   []MemberResponse `json:"members"`
	Count     int              `json:"count"`
	Timestamp time.Time        `json:"timestamp"`
}

// WebhookRequest is the inbound webhook body. The sender has used both
// event_type and action for the top-level event name.
type WebhookRequest struct {
	EventType string         `json:"event_type"`
	Action    string         `json:"action"`
	Data      map[string]any `json:"data"`
}

// ResolvedEventType returns event_type, falling back to action.
func (r *WebhookRequest) ResolvedEventType() string {
	if r.EventType != "" {
		return r.EventType
	}
	return r.Action
}
