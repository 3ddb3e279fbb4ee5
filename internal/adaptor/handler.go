package adaptor

import (
	"studio-booking/internal/usecase"
	"studio-booking/pkg/gateway"

	"go.uber.org/zap"
)

type Handler struct {
	Class   *ClassHandler
	Booking *BookingHandler
	Payout  *PayoutHandler
	Webhook *WebhookHandler
}

func NewHandler(service *usecase.Service, gw gateway.PaymentGateway, log *zap.Logger) *Handler {
	return &Handler{
		Class:   NewClassHandler(service.Class, log),
		Booking: NewBookingHandler(service.Booking, service.Payment, log),
		Payout:  NewPayoutHandler(service.Payout, log),
		Webhook: NewWebhookHandler(service.Settlement, gw, log),
	}
}
