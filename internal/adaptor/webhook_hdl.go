package adaptor

import (
	"errors"
	"io"
	"net/http"

	"studio-booking/internal/usecase"
	"studio-booking/pkg/gateway"
	"studio-booking/pkg/utils"

	"go.uber.org/zap"
)

// maxWebhookBody caps the raw payload read to keep oversized requests from
// tying up the handler. Stripe events are far smaller.
const maxWebhookBody = 1 << 16

type WebhookHandler struct {
	settlement usecase.SettlementService
	gateway    gateway.PaymentGateway
	log        *zap.Logger
}

func NewWebhookHandler(settlement usecase.SettlementService, gw gateway.PaymentGateway, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		settlement: settlement,
		gateway:    gw,
		log:        log.With(zap.String("handler", "webhook")),
	}
}

// HandlePaymentEvent handles POST /webhooks/payments. The endpoint is
// unauthenticated; the signature header is the only trust anchor, so the raw
// body must be verified before any decoding or processing.
func (h *WebhookHandler) HandlePaymentEvent(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		utils.ResponseBadRequest(w, "Failed to read request body", nil)
		return
	}

	event, err := h.gateway.VerifyEvent(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, gateway.ErrBadSignature) {
			h.log.Warn("Rejected webhook with bad signature",
				zap.String("remote_addr", r.RemoteAddr),
			)
			utils.ResponseBadRequest(w, "Invalid signature", nil)
			return
		}
		h.log.Warn("Rejected malformed webhook payload", zap.Error(err))
		utils.ResponseBadRequest(w, "Invalid payload", nil)
		return
	}

	if err := h.settlement.ProcessEvent(r.Context(), event); err != nil {
		// Nothing durable was recorded; a non-2xx tells the gateway to
		// redeliver later.
		h.log.Error("Failed to process webhook event",
			zap.Error(err),
			zap.String("event_id", event.ID),
			zap.String("type", event.Type),
		)
		utils.ResponseInternalError(w, "Event processing failed")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}
