package response

import (
	"time"

	"studio-booking/internal/data/entity"
)

type BookingResponse struct {
	ID              string               `json:"id"`
	Reference       string               `json:"reference"`
	ClassID         string               `json:"class_id"`
	CustomerID      string               `json:"customer_id"`
	InstructorID    string               `json:"instructor_id"`
	Amount          float64              `json:"amount"`
	PaymentIntentID *string              `json:"payment_intent_id,omitempty"`
	Status          entity.BookingStatus `json:"status"`
	CreatedAt       time.Time            `json:"created_at"`
}

func BookingToResponse(booking *entity.Booking) BookingResponse {
	return BookingResponse{
		ID:              booking.ID.String(),
		Reference:       booking.Reference,
		ClassID:         booking.ClassID.String(),
		CustomerID:      booking.CustomerID.String(),
		InstructorID:    booking.InstructorID.String(),
		Amount:          booking.Amount,
		PaymentIntentID: booking.PaymentIntentID,
		Status:          booking.Status,
		CreatedAt:       booking.CreatedAt,
	}
}
