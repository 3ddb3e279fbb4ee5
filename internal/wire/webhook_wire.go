package wire

import (
	"studio-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireWebhook(r chi.Router, webhookHandler *adaptor.WebhookHandler) {
	// POST /webhooks/payments - Gateway event delivery. No session auth;
	// authenticity comes from the payload signature.
	r.Post("/webhooks/payments", webhookHandler.HandlePaymentEvent)
}
