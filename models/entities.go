package models

import "time"

// Company represents the companies table. CompanyID is the upstream
// identifier carried by webhooks and is the only stable cross-record key;
// the display columns are best-effort metadata from the directory API.
type Company struct {
	ID        uint    `gorm:"primarykey;column:id" json:"-"`
	CompanyID string  `gorm:"column:company_id;uniqueIndex;not null" json:"companyId"`
	Name      string  `gorm:"column:name;not null" json:"name"`
	Title     string  `gorm:"column:title" json:"title"`
	Route     *string `gorm:"column:route" json:"route"`
	ImageURL  *string `gorm:"column:image_url" json:"imageUrl"`
	Hostname  *string `gorm:"column:hostname" json:"hostname"`
	BaseModel
}

// TableName sets the table name for GORM
func (Company) TableName() string {
	return "companies"
}

// Member represents the members table. A user can belong to many companies;
// each membership is a separate row keyed by (user_id, company_id).
type Member struct {
	ID           uint      `gorm:"primarykey;column:id" json:"id"`
	UserID       string    `gorm:"column:user_id;not null;uniqueIndex:idx_members_user_company" json:"userId"`
	CompanyID    string    `gorm:"column:company_id;not null;uniqueIndex:idx_members_user_company" json:"companyId"`
	MembershipID string    `gorm:"column:membership_id;not null" json:"membershipId"`
	Email        *string   `gorm:"column:email" json:"email"`
	Name         *string   `gorm:"column:name" json:"name"`
	Username     *string   `gorm:"column:username" json:"username"`
	CustomFields string    `gorm:"column:custom_fields;type:text;default:'{}'" json:"-"`
	JoinedAt     time.Time `gorm:"column:joined_at;not null" json:"joinedAt"`
	Status       string    `gorm:"column:status;not null;default:'active'" json:"status"`
	BaseModel
}

// TableName sets the table name for GORM
func (Member) TableName() string {
	return "members"
}
