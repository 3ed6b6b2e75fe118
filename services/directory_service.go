package services

import (
	"context"
	stderrors "errors"
	"sort"
	"time"

	"github.com/whop-boardy/member-directory/models"
	"github.com/whop-boardy/member-directory/pkg/errors"
	"gorm.io/gorm"
)

// DirectoryService handles the read side: company listings with member
// statistics and member listings per company.
type DirectoryService struct {
	db *gorm.DB
}

// NewDirectoryService creates a new directory service
func NewDirectoryService(db *gorm.DB) *DirectoryService {
	return &DirectoryService{db: db}
}

type memberAggregate struct {
	CompanyID        string     `gorm:"column:company_id"`
	TotalMembers     int        `gorm:"column:total_members"`
	ActiveMembers    int        `gorm:"column:active_members"`
	NewMembers30Days int        `gorm:"column:new_members_30_days"`
	FirstMemberDate  *time.Time `gorm:"column:first_member_date"`
	LatestActivity   *time.Time `gorm:"column:latest_activity"`
}

// GetCompany retrieves one company with its member statistics.
func (s *DirectoryService) GetCompany(ctx context.Context, companyID string) (*models.CompanyResponse, error) {
	var company models.Company
	err := s.db.WithContext(ctx).First(&company, "company_id = ?", companyID).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFoundError("Company")
		}
		return nil, errors.DatabaseError("lookup company", err)
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -30)
	var agg memberAggregate
	err = s.db.WithContext(ctx).
		Model(&models.Member{}).
		Select(`COUNT(*) AS total_members,
			COUNT(CASE WHEN status = ? THEN 1 END) AS active_members,
			COUNT(CASE WHEN joined_at > ? THEN 1 END) AS new_members_30_days,
			MIN(joined_at) AS first_member_date,
			MAX(joined_at) AS latest_activity`, models.StatusActive, cutoff).
		Where("company_id = ?", companyID).
		Scan(&agg).Error
	if err != nil {
		return nil, errors.DatabaseError("aggregate members", err)
	}

	response := companyToResponse(&company)
	response.Stats = models.CompanyStats{
		TotalMembers:     agg.TotalMembers,
		ActiveMembers:    agg.ActiveMembers,
		NewMembers30Days: agg.NewMembers30Days,
		FirstMemberDate:  agg.FirstMemberDate,
		LatestActivity:   agg.LatestActivity,
	}
	return response, nil
}

// GetAllCompanies lists every company with member counts, busiest first.
func (s *DirectoryService) GetAllCompanies(ctx context.Context) ([]models.CompanyResponse, error) {
	var companies []models.Company
	if err := s.db.WithContext(ctx).Find(&companies).Error; err != nil {
		return nil, errors.DatabaseError("list companies", err)
	}

	var aggs []memberAggregate
	err := s.db.WithContext(ctx).
		Model(&models.Member{}).
		Select(`company_id,
			COUNT(*) AS total_members,
			COUNT(CASE WHEN status = ? THEN 1 END) AS active_members,
			MAX(joined_at) AS latest_activity`, models.StatusActive).
		Group("company_id").
		Scan(&aggs).Error
	if err != nil {
		return nil, errors.DatabaseError("aggregate members", err)
	}

	statsByCompany := make(map[string]memberAggregate, len(aggs))
	for _, agg := range aggs {
		statsByCompany[agg.CompanyID] = agg
	}

	responses := make([]models.CompanyResponse, 0, len(companies))
	for i := range companies {
		response := companyToResponse(&companies[i])
		if agg, ok := statsByCompany[companies[i].CompanyID]; ok {
			response.Stats = models.CompanyStats{
				TotalMembers:   agg.TotalMembers,
				ActiveMembers:  agg.ActiveMembers,
				LatestActivity: agg.LatestActivity,
			}
		}
		responses = append(responses, *response)
	}

	sort.SliceStable(responses, func(i, j int) bool {
		if responses[i].Stats.TotalMembers != responses[j].Stats.TotalMembers {
			return responses[i].Stats.TotalMembers > responses[j].Stats.TotalMembers
		}
		return responses[i].CreatedAt.After(responses[j].CreatedAt)
	})

	return responses, nil
}

// GetMembers lists all members of a company, newest joiners first. Unknown
// company identifiers are a 404: companies only exist once a webhook has
// named them.
func (s *DirectoryService) GetMembers(ctx context.Context, companyID string) (*models.MembersListResponse, error) {
	var company models.Company
	err := s.db.WithContext(ctx).First(&company, "company_id = ?", companyID).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFoundError("Company")
		}
		return nil, errors.DatabaseError("lookup company", err)
	}

	var members []models.Member
	err = s.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("joined_at DESC").
		Find(&members).Error
	if err != nil {
		return nil, errors.DatabaseError("list members", err)
	}

	responses := make([]models.MemberResponse, 0, len(members))
	for i := range members {
		responses = append(responses, *MemberToResponse(&members[i]))
	}

	return &models.MembersListResponse{
		Success:     true,
		Members:     responses,
		Count:       len(responses),
		CompanyID:   companyID,
		CompanyName: company.Name,
		Timestamp:   time.Now().UTC(),
	}, nil
}

// GetDirectory returns the front-end feed: company display metadata and
// active members only.
func (s *DirectoryService) GetDirectory(ctx context.Context, companyID string) (*models.DirectoryResponse, error) {
	var company models.Company
	err := s.db.WithContext(ctx).First(&company, "company_id = ?", companyID).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFoundError("Company")
		}
		return nil, errors.DatabaseError("lookup company", err)
	}

	var members []models.Member
	err = s.db.WithContext(ctx).
		Where("company_id = ? AND status = ?", companyID, models.StatusActive).
		Order("joined_at DESC").
		Find(&members).Error
	if err != nil {
		return nil, errors.DatabaseError("list members", err)
	}

	responses := make([]models.MemberResponse, 0, len(members))
	for i := range members {
		responses = append(responses, *MemberToResponse(&members[i]))
	}

	return &models.DirectoryResponse{
		Success: true,
		Group: models.DirectoryGroup{
			CompanyID: company.CompanyID,
			GroupName: company.Name,
			Name:      company.Name,
			Title:     company.Title,
			Route:     company.Route,
			ImageURL:  company.ImageURL,
		},
		Members:   responses,
		Count:     len(responses),
		Timestamp: time.Now().UTC(),
	}, nil
}

func companyToResponse(company *models.Company) *models.CompanyResponse {
	return &models.CompanyResponse{
		ID:        company.CompanyID,
		Name:      company.Name,
		Title:     company.Title,
		Route:     company.Route,
		ImageURL:  company.ImageURL,
		Hostname:  company.Hostname,
		CreatedAt: company.CreatedAt,
	}
}
