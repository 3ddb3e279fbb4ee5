package entity

import (
	"github.com/google/uuid"
)

type TransferStatus string

const (
	TransferStatusRequested TransferStatus = "requested"
	// TransferStatusDeferred: the payment settled but the instructor has no
	// active payout account yet. The reconciliation sweep retries it.
	TransferStatusDeferred TransferStatus = "deferred"
	TransferStatusSent     TransferStatus = "sent"
	TransferStatusFailed   TransferStatus = "failed"
)

// Transfer is a movement of the instructor's share from the platform to their
// payout account. Created only after the PaymentRecord reaches succeeded.
// PayoutAccountID is nil while the transfer is deferred for an instructor who
// has no account row yet; the reconciliation sweep attaches it before sending.
type Transfer struct {
	Base
	PayoutAccountID    *uuid.UUID     `db:"payout_account_id"`
	BookingID          uuid.UUID      `db:"booking_id"`
	IntentID           string         `db:"intent_id"`
	ExternalTransferID *string        `db:"external_transfer_id"`
	Amount             int64          `db:"amount"`       // instructor share, minor units
	PlatformFee        int64          `db:"platform_fee"` // minor units
	Currency           string         `db:"currency"`
	Status             TransferStatus `db:"status"`
}
