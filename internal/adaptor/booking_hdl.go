package adaptor

import (
	"errors"
	"net/http"
	"strings"

	"studio-booking/internal/data/entity"
	"studio-booking/internal/dto/request"
	"studio-booking/internal/usecase"
	"studio-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type BookingHandler struct {
	service usecase.BookingService
	payment usecase.PaymentService
	log     *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, payment usecase.PaymentService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		payment: payment,
		log:     log.With(zap.String("handler", "booking")),
	}
}

// Reserve handles POST /api/classes/{id}/bookings (protected)
func (h *BookingHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	classID := chi.URLParam(r, "id")
	if classID == "" {
		utils.ResponseBadRequest(w, "Class ID is required", nil)
		return
	}

	booking, err := h.service.Reserve(r.Context(), userID.String(), classID)
	if err != nil {
		h.handleServiceError(w, err, "reserve slot")
		return
	}

	utils.ResponseCreated(w, "success", booking)
}

// GetUserBookings handles GET /api/user/bookings (protected)
func (h *BookingHandler) GetUserBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	req := &request.PaginatedRequest{
		Page:    1,
		PerPage: 10,
	}

	query := r.URL.Query()
	req.Page = utils.ParseInt(query.Get("page"), 1)
	req.PerPage = utils.ParseInt(query.Get("per_page"), 10)

	bookings, err := h.service.GetCustomerBookings(r.Context(), userID.String(), req)
	if err != nil {
		h.handleServiceError(w, err, "get user bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// CreateIntent handles POST /api/bookings/{id}/payment-intent (protected)
func (h *BookingHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		utils.ResponseBadRequest(w, "Booking ID is required", nil)
		return
	}

	intent, err := h.payment.CreateIntent(r.Context(), userID.String(), bookingID)
	if err != nil {
		h.handleServiceError(w, err, "create payment intent")
		return
	}

	utils.ResponseSuccess(w, "success", intent)
}

func (h *BookingHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, entity.ErrClassNotFound),
		errors.Is(err, entity.ErrBookingNotFound):
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, entity.ErrClassFull),
		errors.Is(err, entity.ErrDuplicateBooking),
		errors.Is(err, entity.ErrBookingNotPayable):
		h.log.Warn(operation+" conflict", zap.Error(err))
		utils.ResponseConflict(w, err.Error())

	case errors.Is(err, entity.ErrClassNotBookable):
		h.log.Warn(operation+" failed - class not bookable", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case strings.Contains(err.Error(), "invalid"):
		h.log.Warn("Invalid input for "+operation, zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	default:
		h.log.Error("Failed to "+operation, zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
