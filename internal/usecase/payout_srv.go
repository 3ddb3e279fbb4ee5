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

type PayoutService interface {
	// RequestOnboarding provisions a payout account for the instructor if
	// needed and returns a fresh one-time onboarding URL. Safe to call
	// repeatedly; an existing account only gets a new link.
	RequestOnboarding(ctx context.Context, instructorID string) (*response.OnboardingResponse, error)

	// GetAccount returns the instructor's payout account state.
	GetAccount(ctx context.Context, instructorID string) (*response.PayoutAccountResponse, error)
}

type payoutService struct {
	repo    *repository.Repository
	gateway gateway.PaymentGateway
	config  *utils.Config
	log     *zap.Logger
}

func NewPayoutService(repo *repository.Repository, gw gateway.PaymentGateway, config *utils.Config, log *zap.Logger) PayoutService {
	return &payoutService{
		repo:    repo,
		gateway: gw,
		config:  config,
		log:     log.With(zap.String("service", "payout")),
	}
}

func (s *payoutService) RequestOnboarding(ctx context.Context, instructorID string) (*response.OnboardingResponse, error) {
	instructorUUID, err := uuid.Parse(instructorID)
	if err != nil {
		return nil, fmt.Errorf("invalid instructor ID format %s: %w", instructorID, err)
	}

	account, err := s.repo.PayoutAccount.FindByInstructorID(ctx, instructorUUID)
	if err != nil {
		return nil, fmt.Errorf("get payout account for instructor %s: %w", instructorID, err)
	}

	if account == nil {
		now := time.Now()
		account = &entity.PayoutAccount{
			Base: entity.Base{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			InstructorID:   instructorUUID,
			Status:         entity.PayoutAccountStatusNone,
			CommissionRate: s.config.Booking.CommissionRate,
		}
		if err := s.repo.PayoutAccount.Create(ctx, account); err != nil {
			return nil, fmt.Errorf("create payout account for instructor %s: %w", instructorID, err)
		}
		s.log.Info("Payout account created",
			zap.String("payout_account_id", account.ID.String()),
			zap.String("instructor_id", instructorID),
		)
	}

	if account.ExternalAccountID == nil {
		externalID, err := s.gateway.CreateAccount(ctx)
		if err != nil {
			return nil, fmt.Errorf("provision external account for instructor %s: %w", instructorID, err)
		}

		if err := s.repo.PayoutAccount.SetExternalAccount(ctx, account.ID, externalID, entity.PayoutAccountStatusPending); err != nil {
			// The external account is orphaned at the gateway; the next call
			// provisions a new one. Harmless, Express accounts are cheap.
			return nil, fmt.Errorf("attach external account to instructor %s: %w", instructorID, err)
		}

		account.ExternalAccountID = &externalID
		account.Status = entity.PayoutAccountStatusPending

		s.log.Info("External payout account provisioned",
			zap.String("payout_account_id", account.ID.String()),
			zap.String("external_account_id", externalID),
		)
	}

	refreshURL := s.config.App.BaseURL + "/payout-accounts/onboarding/refresh"
	returnURL := s.config.App.BaseURL + "/payout-accounts/onboarding/complete"

	url, err := s.gateway.CreateAccountLink(ctx, *account.ExternalAccountID, refreshURL, returnURL)
	if err != nil {
		return nil, fmt.Errorf("create onboarding link for instructor %s: %w", instructorID, err)
	}

	return &response.OnboardingResponse{OnboardingURL: url}, nil
}

func (s *payoutService) GetAccount(ctx context.Context, instructorID string) (*response.PayoutAccountResponse, error) {
	instructorUUID, err := uuid.Parse(instructorID)
	if err != nil {
		return nil, fmt.Errorf("invalid instructor ID format %s: %w", instructorID, err)
	}

	account, err := s.repo.PayoutAccount.FindByInstructorID(ctx, instructorUUID)
	if err != nil {
		return nil, fmt.Errorf("get payout account for instructor %s: %w", instructorID, err)
	}
	if account == nil {
		return nil, entity.ErrPayoutAccountNotFound
	}

	resp := response.PayoutAccountToResponse(account)
	return &resp, nil
}
