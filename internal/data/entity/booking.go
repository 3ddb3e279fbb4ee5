package entity

import (
	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPendingPayment BookingStatus = "pending_payment"
	BookingStatusConfirmed      BookingStatus = "confirmed"
	BookingStatusPaid           BookingStatus = "paid"
	BookingStatusCancelled      BookingStatus = "cancelled"
	BookingStatusFailed         BookingStatus = "failed"
)

// Booking is a customer's reserved slot in a class. At most one non-cancelled
// booking may exist per (class, customer) pair; the ledger enforces this with
// a partial unique index.
type Booking struct {
	Base
	Reference       string        `db:"reference"`
	ClassID         uuid.UUID     `db:"class_id"`
	CustomerID      uuid.UUID     `db:"customer_id"`
	InstructorID    uuid.UUID     `db:"instructor_id"`
	Amount          float64       `db:"amount"`
	PaymentIntentID *string       `db:"payment_intent_id"`
	Status          BookingStatus `db:"status"`
}
