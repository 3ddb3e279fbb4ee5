package usecase

import (
	"context"
	"fmt"
	"time"

	"studio-booking/internal/data/entity"
	"studio-booking/internal/data/repository"
	"studio-booking/internal/dto/request"
	"studio-booking/internal/dto/response"
	"studio-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService interface {
	// Reserve takes one slot in a class for a customer. The capacity check
	// and the booking insert happen in a single atomic ledger operation;
	// failures come back as entity.ErrClassFull, entity.ErrDuplicateBooking,
	// entity.ErrClassNotFound or entity.ErrClassNotBookable.
	Reserve(ctx context.Context, customerID, classID string) (*response.BookingResponse, error)

	GetCustomerBookings(ctx context.Context, customerID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)

	// ReleaseExpired cancels bookings stuck in pending_payment past the
	// configured timeout and gives their slots back. Run by the reaper.
	ReleaseExpired(ctx context.Context) (int, error)
}

type bookingService struct {
	repo   *repository.Repository
	config *utils.Config
	log    *zap.Logger
}

func NewBookingService(repo *repository.Repository, config *utils.Config, log *zap.Logger) BookingService {
	return &bookingService{
		repo:   repo,
		config: config,
		log:    log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) Reserve(ctx context.Context, customerID, classID string) (*response.BookingResponse, error) {
	customerUUID, err := uuid.Parse(customerID)
	if err != nil {
		return nil, fmt.Errorf("invalid customer ID format %s: %w", customerID, err)
	}

	classUUID, err := uuid.Parse(classID)
	if err != nil {
		return nil, fmt.Errorf("invalid class ID format %s: %w", classID, err)
	}

	now := time.Now()
	booking := &entity.Booking{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Reference:  utils.GenerateBookingRef(),
		ClassID:    classUUID,
		CustomerID: customerUUID,
		Status:     entity.BookingStatusPendingPayment,
	}

	reserved, err := s.repo.Booking.Reserve(ctx, booking)
	if err != nil {
		if err == entity.ErrDuplicateBooking {
			return nil, err
		}
		s.log.Error("Failed to reserve slot",
			zap.Error(err),
			zap.String("class_id", classID),
			zap.String("customer_id", customerID),
		)
		return nil, fmt.Errorf("reserve slot: %w", err)
	}

	if !reserved {
		// The conditional statement matched nothing. Re-read the class to
		// tell the caller which precondition failed.
		return nil, s.classifyReserveFailure(ctx, classUUID, now)
	}

	s.log.Info("Slot reserved",
		zap.String("booking_id", booking.ID.String()),
		zap.String("reference", booking.Reference),
		zap.String("class_id", classID),
		zap.String("customer_id", customerID),
		zap.Float64("amount", booking.Amount),
	)

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) classifyReserveFailure(ctx context.Context, classID uuid.UUID, now time.Time) error {
	class, err := s.repo.Class.FindByID(ctx, classID)
	if err != nil {
		return fmt.Errorf("classify reservation failure: %w", err)
	}
	if class == nil {
		return entity.ErrClassNotFound
	}
	if !class.Bookable(now) {
		return entity.ErrClassNotBookable
	}
	return entity.ErrClassFull
}

func (s *bookingService) GetCustomerBookings(ctx context.Context, customerID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	customerUUID, err := uuid.Parse(customerID)
	if err != nil {
		return nil, fmt.Errorf("invalid customer ID format %s: %w", customerID, err)
	}

	limit := req.Limit()
	offset := req.Offset()

	bookings, err := s.repo.Booking.FindByCustomerID(ctx, customerUUID, limit, offset)
	if err != nil {
		s.log.Error("Failed to get customer bookings",
			zap.Error(err),
			zap.String("customer_id", customerID),
		)
		return nil, fmt.Errorf("get customer bookings: %w", err)
	}

	total, err := s.repo.Booking.CountByCustomerID(ctx, customerUUID)
	if err != nil {
		s.log.Error("Failed to count customer bookings", zap.Error(err))
		return nil, fmt.Errorf("count customer bookings: %w", err)
	}

	bookingResponses := make([]response.BookingResponse, len(bookings))
	for i, booking := range bookings {
		bookingResponses[i] = response.BookingToResponse(booking)
	}

	return response.NewPaginatedResponse(bookingResponses, req.Page, req.PerPage, total), nil
}

func (s *bookingService) ReleaseExpired(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.config.Booking.PendingTimeout)

	released, err := s.repo.Booking.ReleaseExpired(ctx, cutoff)
	if err != nil {
		s.log.Error("Failed to release expired bookings", zap.Error(err))
		return 0, fmt.Errorf("release expired bookings: %w", err)
	}

	if released > 0 {
		s.log.Info("Released expired bookings",
			zap.Int("count", released),
			zap.Time("cutoff", cutoff),
		)
	}

	return released, nil
}
