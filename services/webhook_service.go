package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/whop-boardy/member-directory/models"
	"github.com/whop-boardy/member-directory/pkg/errors"
	"github.com/whop-boardy/member-directory/pkg/monitoring"
	"github.com/whop-boardy/member-directory/whop"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WebhookService reconciles inbound membership events against the store.
// Webhooks arrive with at-least-once semantics and may be redelivered or
// reordered, so every write is an idempotent upsert.
type WebhookService struct {
	db   *gorm.DB
	whop whop.API
}

// NewWebhookService creates a new webhook service. The enrichment API may
// be nil when no credential is configured; all lookups degrade to payload
// values in that case.
func NewWebhookService(db *gorm.DB, api whop.API) *WebhookService {
	return &WebhookService{db: db, whop: api}
}

// EnsureCompany guarantees a company row exists for the identifier,
// creating one on first sight. Display metadata comes from a best-effort
// upstream lookup; a failed lookup falls back to an identifier-derived
// name. Concurrent first-sight of the same identifier is resolved by the
// unique constraint on company_id, not by check-then-insert alone.
func (s *WebhookService) EnsureCompany(ctx context.Context, companyID string) (*models.Company, error) {
	var company models.Company
	err := s.db.WithContext(ctx).First(&company, "company_id = ?", companyID).Error
	if err == nil {
		return &company, nil
	}
	if !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.DatabaseError("lookup company", err)
	}

	slog.Info("Creating new company record", "company_id", companyID)

	name := fmt.Sprintf("Company %s", companyID)
	company = models.Company{
		CompanyID: companyID,
		Name:      name,
		Title:     name,
	}

	if s.whop != nil {
		start := time.Now()
		info, err := s.whop.GetCompany(ctx, companyID)
		monitoring.RecordExternalCall(ctx, "whop.companies", time.Since(start), err)
		if err != nil {
			slog.Warn("Could not fetch company details from API", "company_id", companyID, "error", err)
		} else {
			applyCompanyInfo(&company, info)
		}
	}

	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "company_id"}},
			DoNothing: true,
		}).
		Create(&company).Error
	if err != nil {
		return nil, errors.DatabaseError("create company", err)
	}

	// The insert may have been a no-op if another request won the race;
	// read back whichever row is committed.
	if err := s.db.WithContext(ctx).First(&company, "company_id = ?", companyID).Error; err != nil {
		return nil, errors.DatabaseError("lookup company", err)
	}

	return &company, nil
}

// ProcessMembershipEvent runs the full ingestion path for one webhook:
// extract the canonical tuple, ensure the company exists, then either
// deactivate the member (invalidation events) or upsert the member row.
func (s *WebhookService) ProcessMembershipEvent(ctx context.Context, eventType string, data map[string]any) (*models.WebhookResponse, error) {
	tuple, apiErr := ExtractMembership(data)
	if apiErr != nil {
		return nil, apiErr
	}

	if _, err := s.EnsureCompany(ctx, tuple.CompanyID); err != nil {
		return nil, err
	}

	if models.IsInvalidationEvent(eventType) {
		return s.deactivateMember(ctx, eventType, tuple)
	}

	s.enrichFromUpstream(ctx, tuple)

	member, err := s.UpsertMember(ctx, tuple)
	if err != nil {
		return nil, err
	}

	monitoring.RecordBusinessEvent(ctx, "member_upserted")
	slog.Info("Member stored", "user_id", tuple.UserID, "company_id", tuple.CompanyID, "status", member.Status)

	return &models.WebhookResponse{
		Success:   true,
		Action:    models.ActionMemberStored,
		Member:    MemberToResponse(member),
		CompanyID: tuple.CompanyID,
		EventType: eventType,
	}, nil
}

// UpsertMember inserts or updates the member row keyed by
// (user_id, company_id) in a single conflict-resolving statement. On
// conflict every mutable field takes the new value except joined_at, which
// is preserved from the existing row unless that row was inactive: a
// reactivation starts a fresh membership clock.
func (s *WebhookService) UpsertMember(ctx context.Context, tuple *models.ExtractedMembership) (*models.Member, error) {
	now := time.Now().UTC()
	member := models.Member{
		UserID:       tuple.UserID,
		CompanyID:    tuple.CompanyID,
		MembershipID: tuple.MembershipID,
		Email:        tuple.Email,
		Name:         tuple.Name,
		Username:     tuple.Username,
		CustomFields: tuple.CustomFields,
		JoinedAt:     tuple.JoinedAt,
		Status:       tuple.Status,
	}

	start := time.Now()
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "company_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"membership_id": tuple.MembershipID,
				"email":         tuple.Email,
				"name":          tuple.Name,
				"username":      tuple.Username,
				"custom_fields": tuple.CustomFields,
				"status":        tuple.Status,
				"updated_at":    now,
				"joined_at": gorm.Expr(
					"CASE WHEN members.status = ? THEN excluded.joined_at ELSE members.joined_at END",
					models.StatusInactive,
				),
			}),
		}).
		Create(&member).Error
	monitoring.RecordDBLatency(ctx, "upsert_member", time.Since(start))
	if err != nil {
		return nil, errors.DatabaseError("upsert member", err)
	}

	// Re-read the committed row: on conflict the struct above does not
	// reflect a preserved joined_at.
	var stored models.Member
	err = s.db.WithContext(ctx).
		First(&stored, "user_id = ? AND company_id = ?", tuple.UserID, tuple.CompanyID).Error
	if err != nil {
		return nil, errors.DatabaseError("lookup member", err)
	}

	return &stored, nil
}

// deactivateMember applies the status-only transition for invalidation
// events. No other field is touched. A missing row is reported in the
// response but is not an error: redelivered invalidations must keep
// succeeding under at-least-once delivery.
func (s *WebhookService) deactivateMember(ctx context.Context, eventType string, tuple *models.ExtractedMembership) (*models.WebhookResponse, error) {
	start := time.Now()
	res := s.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("user_id = ? AND company_id = ?", tuple.UserID, tuple.CompanyID).
		Updates(map[string]interface{}{
			"status":     models.StatusInactive,
			"updated_at": time.Now().UTC(),
		})
	monitoring.RecordDBLatency(ctx, "deactivate_member", time.Since(start))
	if res.Error != nil {
		return nil, errors.DatabaseError("deactivate member", res.Error)
	}

	if res.RowsAffected == 0 {
		slog.Warn("Invalidation for unknown member", "user_id", tuple.UserID, "company_id", tuple.CompanyID)
		monitoring.RecordBusinessEvent(ctx, "member_invalidation_miss")
		return &models.WebhookResponse{
			Success:   true,
			Action:    models.ActionMemberNotFound,
			CompanyID: tuple.CompanyID,
			EventType: eventType,
		}, nil
	}

	var member models.Member
	if err := s.db.WithContext(ctx).First(&member, "user_id = ? AND company_id = ?", tuple.UserID, tuple.CompanyID).Error; err != nil {
		return nil, errors.DatabaseError("lookup member", err)
	}

	monitoring.RecordBusinessEvent(ctx, "member_deactivated")
	slog.Info("Member marked inactive", "user_id", tuple.UserID, "company_id", tuple.CompanyID)

	return &models.WebhookResponse{
		Success:   true,
		Action:    models.ActionMemberDeactivated,
		Member:    MemberToResponse(&member),
		CompanyID: tuple.CompanyID,
		EventType: eventType,
	}, nil
}

// enrichFromUpstream overlays user contact fields from the upstream API.
// Enrichment values win over payload values; a failed lookup leaves the
// tuple untouched and never fails the request.
func (s *WebhookService) enrichFromUpstream(ctx context.Context, tuple *models.ExtractedMembership) {
	if s.whop == nil {
		return
	}

	start := time.Now()
	user, err := s.whop.GetUser(ctx, tuple.UserID)
	monitoring.RecordExternalCall(ctx, "whop.users", time.Since(start), err)
	if err != nil {
		slog.Warn("Could not fetch user data from API", "user_id", tuple.UserID, "error", err)
		return
	}

	if user.Email != "" {
		tuple.Email = &user.Email
	}
	if user.Name != "" {
		tuple.Name = &user.Name
	}
	if user.Username != "" {
		tuple.Username = &user.Username
	}
}

func applyCompanyInfo(company *models.Company, info *whop.CompanyInfo) {
	title := info.Title
	if title == "" {
		title = info.Name
	}
	if title != "" {
		company.Name = title
		company.Title = title
	}
	if info.Route != "" {
		company.Route = &info.Route
	}
	if info.ImageURL != "" {
		company.ImageURL = &info.ImageURL
	}
	if info.Hostname != "" {
		company.Hostname = &info.Hostname
	}
}
