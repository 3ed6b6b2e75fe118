package whop

import "context"

// API is the contract for the upstream directory API used to enrich
// member and company records. All calls are best-effort: callers treat a
// failure as "no enrichment available", never as a request failure.
type API interface {
	GetUser(ctx context.Context, userID string) (*UserInfo, error)
	GetCompany(ctx context.Context, companyID string) (*CompanyInfo, error)
}

// UserInfo is the subset of the upstream user record the directory stores.
type UserInfo struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// CompanyInfo is the subset of the upstream company record the directory
// stores as display metadata.
type CompanyInfo struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Name     string `json:"name"`
	Route    string `json:"route"`
	ImageURL string `json:"image_url"`
	Hostname string `json:"hostname"`
}
