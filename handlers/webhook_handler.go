package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/whop-boardy/member-directory/models"
	"github.com/whop-boardy/member-directory/utils"
)

// handleWebhook handles POST /webhook/membership. The body is the upstream
// sender's envelope: an event name plus a heterogeneous data object.
func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.WebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Data == nil {
		utils.RespondWithError(w, http.StatusBadRequest, "No data provided")
		return
	}

	eventType := req.ResolvedEventType()
	slog.Info("Webhook received", "event_type", eventType)

	response, err := h.webhookService.ProcessMembershipEvent(r.Context(), eventType, req.Data)
	if err != nil {
		h.respondError(w, err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, response)
}
