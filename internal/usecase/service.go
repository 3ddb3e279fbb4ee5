package usecase

import (
	"studio-booking/internal/data/repository"
	"studio-booking/pkg/gateway"
	"studio-booking/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Class      ClassService
	Booking    BookingService
	Payment    PaymentService
	Settlement SettlementService
	Payout     PayoutService
}

func NewService(repo *repository.Repository, gw gateway.PaymentGateway, config *utils.Config, log *zap.Logger) *Service {
	return &Service{
		Class:      NewClassService(repo, log),
		Booking:    NewBookingService(repo, config, log),
		Payment:    NewPaymentService(repo, gw, config, log),
		Settlement: NewSettlementService(repo, gw, config, log),
		Payout:     NewPayoutService(repo, gw, config, log),
	}
}
