package adaptor

import (
	"errors"
	"net/http"
	"strings"

	"studio-booking/internal/data/entity"
	"studio-booking/internal/usecase"
	"studio-booking/pkg/utils"

	"go.uber.org/zap"
)

type PayoutHandler struct {
	service usecase.PayoutService
	log     *zap.Logger
}

func NewPayoutHandler(service usecase.PayoutService, log *zap.Logger) *PayoutHandler {
	return &PayoutHandler{
		service: service,
		log:     log.With(zap.String("handler", "payout")),
	}
}

// RequestOnboarding handles POST /api/payout-accounts (instructor only)
func (h *PayoutHandler) RequestOnboarding(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	onboarding, err := h.service.RequestOnboarding(r.Context(), userID.String())
	if err != nil {
		h.handleServiceError(w, err, "request payout onboarding")
		return
	}

	utils.ResponseCreated(w, "success", onboarding)
}

// GetAccount handles GET /api/payout-accounts/me (instructor only)
func (h *PayoutHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	account, err := h.service.GetAccount(r.Context(), userID.String())
	if err != nil {
		h.handleServiceError(w, err, "get payout account")
		return
	}

	utils.ResponseSuccess(w, "success", account)
}

func (h *PayoutHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, entity.ErrPayoutAccountNotFound):
		utils.ResponseNotFound(w, err.Error())

	case strings.Contains(err.Error(), "invalid"):
		h.log.Warn("Invalid input for "+operation, zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	default:
		h.log.Error("Failed to "+operation, zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
