package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/chisomo-phiri/studyhub/internal/catalog"
	"github.com/chisomo-phiri/studyhub/internal/models"
	"github.com/chisomo-phiri/studyhub/internal/utils"
)

// POST /save-token
// SaveToken godoc
// @Summary Register an FCM device token
// @Tags Notifications
// @Accept json
// @Produce json
// @Success 200 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Router /save-token [post]
func (h *Handler) SaveToken(w http.ResponseWriter, r *http.Request) {
	owner := h.owner(r)
	if h.AuthRequired && owner == nil {
		writeError(w, &catalog.AuthError{Reason: "identity required"})
		return
	}

	var input struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Token == "" {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Missing token",
		})
		return
	}

	sub := &models.Subscription{
		ID:       uuid.New(),
		Kind:     models.SubscriptionFCM,
		Endpoint: input.Token,
		OwnerID:  owner,
	}
	if err := h.Subs.Save(r.Context(), sub); err != nil {
		writeError(w, &catalog.MetadataError{Err: err})
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Token saved",
	})
}

// POST /subscribe
// Subscribe godoc
// @Summary Register a Web Push subscription
// @Tags Notifications
// @Accept json
// @Produce json
// @Success 200 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Router /subscribe [post]
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	owner := h.owner(r)
	if h.AuthRequired && owner == nil {
		writeError(w, &catalog.AuthError{Reason: "identity required"})
		return
	}

	var input struct {
		Endpoint string `json:"endpoint"`
		Keys     struct {
			P256dh string `json:"p256dh"`
			Auth   string `json:"auth"`
		} `json:"keys"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Endpoint == "" {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Missing subscription",
		})
		return
	}

	sub := &models.Subscription{
		ID:       uuid.New(),
		Kind:     models.SubscriptionWebPush,
		Endpoint: input.Endpoint,
		P256dh:   input.Keys.P256dh,
		Auth:     input.Keys.Auth,
		OwnerID:  owner,
	}
	if err := h.Subs.Save(r.Context(), sub); err != nil {
		writeError(w, &catalog.MetadataError{Err: err})
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Subscribed",
	})
}
