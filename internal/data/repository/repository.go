package repository

import (
	"studio-booking/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	Session       SessionRepository
	Class         ClassRepository
	Booking       BookingRepository
	PaymentRecord PaymentRecordRepository
	PayoutAccount PayoutAccountRepository
	Transfer      TransferRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Session:       NewSessionRepository(db, log),
		Class:         NewClassRepository(db, log),
		Booking:       NewBookingRepository(db, log),
		PaymentRecord: NewPaymentRecordRepository(db, log),
		PayoutAccount: NewPayoutAccountRepository(db, log),
		Transfer:      NewTransferRepository(db, log),
	}
}
