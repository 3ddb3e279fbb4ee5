package usecase

import (
	"context"
	"fmt"
	"time"

	"studio-booking/internal/data/entity"
	"studio-booking/internal/data/repository"
	"studio-booking/internal/dto/response"
	"studio-booking/pkg/gateway"
	"studio-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PaymentService interface {
	// CreateIntent drives the gateway authorization for a booking and
	// returns the client secret the caller completes payment with. Retries
	// are side-effect free: an open payment record already tied to the
	// booking is returned as-is instead of creating a second intent.
	CreateIntent(ctx context.Context, customerID, bookingID string) (*response.PaymentIntentResponse, error)
}

type paymentService struct {
	repo    *repository.Repository
	gateway gateway.PaymentGateway
	config  *utils.Config
	log     *zap.Logger
}

func NewPaymentService(repo *repository.Repository, gw gateway.PaymentGateway, config *utils.Config, log *zap.Logger) PaymentService {
	return &paymentService{
		repo:    repo,
		gateway: gw,
		config:  config,
		log:     log.With(zap.String("service", "payment")),
	}
}

func (s *paymentService) CreateIntent(ctx context.Context, customerID, bookingID string) (*response.PaymentIntentResponse, error) {
	customerUUID, err := uuid.Parse(customerID)
	if err != nil {
		return nil, fmt.Errorf("invalid customer ID format %s: %w", customerID, err)
	}

	bookingUUID, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	booking, err := s.repo.Booking.FindByID(ctx, bookingUUID)
	if err != nil {
		return nil, fmt.Errorf("get booking %s: %w", bookingID, err)
	}
	// Another customer's booking reads as missing rather than forbidden.
	if booking == nil || booking.CustomerID != customerUUID {
		return nil, entity.ErrBookingNotFound
	}

	if booking.Status != entity.BookingStatusPendingPayment {
		return nil, entity.ErrBookingNotPayable
	}

	// Duplicate client request: hand back the already-open intent.
	existing, err := s.repo.PaymentRecord.FindCreatedByBookingID(ctx, bookingUUID)
	if err != nil {
		return nil, fmt.Errorf("check open payment record: %w", err)
	}
	if existing != nil {
		return &response.PaymentIntentResponse{ClientSecret: existing.ClientSecret}, nil
	}

	amount := utils.ToMinorUnits(booking.Amount)

	intent, err := s.gateway.CreateIntent(ctx, gateway.CreateIntentRequest{
		Amount:   amount,
		Currency: s.config.Gateway.Currency,
		Metadata: map[string]string{
			"booking_id":    booking.ID.String(),
			"class_id":      booking.ClassID.String(),
			"customer_id":   booking.CustomerID.String(),
			"instructor_id": booking.InstructorID.String(),
		},
	})
	if err != nil {
		// Transient: nothing was persisted, the caller retries safely.
		return nil, fmt.Errorf("create payment intent for booking %s: %w", bookingID, err)
	}

	record := &entity.PaymentRecord{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		IntentID:     intent.ID,
		BookingID:    bookingUUID,
		Amount:       amount,
		Currency:     s.config.Gateway.Currency,
		ClientSecret: intent.ClientSecret,
		Status:       entity.PaymentRecordStatusCreated,
	}

	if err := s.repo.PaymentRecord.Create(ctx, record); err != nil {
		// A concurrent retry may have won the partial unique index on
		// booking_id; if so hand back its secret instead of failing.
		winner, findErr := s.repo.PaymentRecord.FindCreatedByBookingID(ctx, bookingUUID)
		if findErr == nil && winner != nil {
			return &response.PaymentIntentResponse{ClientSecret: winner.ClientSecret}, nil
		}
		return nil, fmt.Errorf("persist payment record for booking %s: %w", bookingID, err)
	}

	if err := s.repo.Booking.SetPaymentIntent(ctx, bookingUUID, intent.ID); err != nil {
		// The record is the source of truth for intent -> booking; losing
		// the denormalized column is not worth failing the request over.
		s.log.Warn("Failed to stamp payment intent onto booking",
			zap.Error(err),
			zap.String("booking_id", bookingID),
			zap.String("intent_id", intent.ID),
		)
	}

	s.log.Info("Payment intent created",
		zap.String("booking_id", bookingID),
		zap.String("intent_id", intent.ID),
		zap.Int64("amount", amount),
		zap.String("currency", s.config.Gateway.Currency),
	)

	return &response.PaymentIntentResponse{ClientSecret: intent.ClientSecret}, nil
}
