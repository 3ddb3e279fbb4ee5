package wire

import (
	"studio-booking/internal/adaptor"
	"studio-booking/internal/data/repository"
	"studio-booking/pkg/middleware"
	"studio-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))

		// POST /api/classes/{id}/bookings - Reserve a slot
		r.Post("/api/classes/{id}/bookings", bookingHandler.Reserve)

		// GET /api/user/bookings - Booking history (user's own bookings)
		r.Get("/api/user/bookings", bookingHandler.GetUserBookings)

		// POST /api/bookings/{id}/payment-intent - Start payment for a booking
		r.Post("/api/bookings/{id}/payment-intent", bookingHandler.CreateIntent)
	})
}
