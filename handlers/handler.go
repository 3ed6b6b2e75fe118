package handlers

import (
	"net/http"
	"strings"

	"github.com/whop-boardy/member-directory/pkg/errors"
	"github.com/whop-boardy/member-directory/services"
	"github.com/whop-boardy/member-directory/utils"
	"github.com/whop-boardy/member-directory/whop"
	"gorm.io/gorm"
)

// Handler handles all API routes
type Handler struct {
	webhookService   *services.WebhookService
	directoryService *services.DirectoryService
}

// NewHandler creates a new handler. The enrichment API may be nil.
func NewHandler(db *gorm.DB, api whop.API) *Handler {
	return &Handler{
		webhookService:   services.NewWebhookService(db, api),
		directoryService: services.NewDirectoryService(db),
	}
}

// SetupRoutes configures all API routes
func (h *Handler) SetupRoutes(mux *http.ServeMux) {
	mux.Handle("/webhook/membership", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleWebhook)))

	mux.Handle("/api/companies", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleCompanies)))
	mux.Handle("/api/companies/", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleCompanies)))
	mux.Handle("/api/members/", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleMembers)))
	mux.Handle("/api/directory/", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleDirectory)))

	// Unknown API routes get a JSON 404 listing what exists.
	mux.Handle("/api/", http.HandlerFunc(h.handleAPINotFound))
}

// handleCompanies handles company listing and detail routes
func (h *Handler) handleCompanies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/companies")
	parts := strings.Split(strings.Trim(path, "/"), "/")

	// Collection endpoint: GET /api/companies
	if len(parts) == 1 && parts[0] == "" {
		companies, err := h.directoryService.GetAllCompanies(r.Context())
		if err != nil {
			h.respondError(w, err)
			return
		}
		utils.RespondWithSuccess(w, http.StatusOK, map[string]interface{}{
			"success":   true,
			"companies": companies,
			"count":     len(companies),
		})
		return
	}

	// Detail endpoint: GET /api/companies/:companyId
	if len(parts) == 1 {
		company, err := h.directoryService.GetCompany(r.Context(), parts[0])
		if err != nil {
			h.respondError(w, err)
			return
		}
		utils.RespondWithSuccess(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"company": company,
		})
		return
	}

	utils.RespondWithError(w, http.StatusNotFound, "Endpoint not found")
}

// handleMembers handles GET /api/members/:companyId
func (h *Handler) handleMembers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	companyID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/members"), "/")
	if companyID == "" || companyID == "undefined" || companyID == "null" {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid or missing company ID")
		return
	}

	members, err := h.directoryService.GetMembers(r.Context(), companyID)
	if err != nil {
		h.respondError(w, err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, members)
}

// handleDirectory handles GET /api/directory/:companyId
func (h *Handler) handleDirectory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	companyID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/directory"), "/")
	if companyID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Company ID is required")
		return
	}

	directory, err := h.directoryService.GetDirectory(r.Context(), companyID)
	if err != nil {
		h.respondError(w, err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, directory)
}

func (h *Handler) handleAPINotFound(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithSuccess(w, http.StatusNotFound, map[string]interface{}{
		"error":  "API endpoint not found",
		"path":   r.URL.Path,
		"method": r.Method,
		"available_endpoints": []string{
			"GET /health",
			"GET /api/companies",
			"GET /api/companies/:companyId",
			"GET /api/members/:companyId",
			"GET /api/directory/:companyId",
			"POST /webhook/membership",
		},
	})
}

// respondError maps service errors to HTTP responses. Structured API
// errors carry their own status; anything else is a 500.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	if apiErr := errors.GetAPIError(err); apiErr != nil {
		utils.RespondWithAPIError(w, apiErr)
		return
	}
	utils.RespondWithError(w, http.StatusInternalServerError, err.Error())
}
