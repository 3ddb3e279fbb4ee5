package entity

import (
	"github.com/google/uuid"
)

type PayoutAccountStatus string

const (
	PayoutAccountStatusNone       PayoutAccountStatus = "none"
	PayoutAccountStatusPending    PayoutAccountStatus = "pending"
	PayoutAccountStatusRestricted PayoutAccountStatus = "restricted"
	PayoutAccountStatusActive     PayoutAccountStatus = "active"
)

// PayoutAccount tracks an instructor's external payout account. Status only
// changes in response to verified gateway lifecycle events, never from
// client-facing code.
type PayoutAccount struct {
	Base
	InstructorID      uuid.UUID           `db:"instructor_id"`
	ExternalAccountID *string             `db:"external_account_id"`
	Status            PayoutAccountStatus `db:"status"`
	CommissionRate    float64             `db:"commission_rate"`
}
