package entity

import (
	"time"

	"github.com/google/uuid"
)

type PaymentRecordStatus string

const (
	PaymentRecordStatusCreated   PaymentRecordStatus = "created"
	PaymentRecordStatusSucceeded PaymentRecordStatus = "succeeded"
	PaymentRecordStatusFailed    PaymentRecordStatus = "failed"
	// PaymentRecordStatusRequiresReview marks a payment that succeeded at the
	// gateway after the booking had already been released. Funds moved but the
	// slot is gone; the row waits for manual reconciliation.
	PaymentRecordStatusRequiresReview PaymentRecordStatus = "requires_review"
)

// PaymentRecord tracks one gateway payment intent. IntentID is the
// gateway-assigned identifier and is unique; a record transitions to
// succeeded at most once.
type PaymentRecord struct {
	BaseSimple
	IntentID     string              `db:"intent_id"`
	BookingID    uuid.UUID           `db:"booking_id"`
	Amount       int64               `db:"amount"` // minor currency units
	Currency     string              `db:"currency"`
	ClientSecret string              `db:"client_secret"`
	Status       PaymentRecordStatus `db:"status"`
	ProcessedAt  *time.Time          `db:"processed_at"`
}
