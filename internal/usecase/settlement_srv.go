package usecase

import (
	"context"
	"fmt"
	"time"

	"studio-booking/internal/data/entity"
	"studio-booking/internal/data/repository"
	"studio-booking/pkg/gateway"
	"studio-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SettlementService interface {
	// ProcessEvent reconciles one verified gateway event into booking and
	// payout state. Processing is idempotent: every state change is a
	// conditional transition keyed on the entity's current status, so a
	// redelivered event falls through as a no-op. An error return means the
	// event was NOT durably recorded and the gateway should redeliver;
	// failures after the conditional transition are logged and left to the
	// reconciliation sweep instead.
	ProcessEvent(ctx context.Context, event *gateway.Event) error

	// RetryPendingTransfers re-submits deferred and failed transfers.
	// Run periodically; never triggered by event redelivery.
	RetryPendingTransfers(ctx context.Context) (int, error)
}

type settlementService struct {
	repo    *repository.Repository
	gateway gateway.PaymentGateway
	config  *utils.Config
	log     *zap.Logger
}

func NewSettlementService(repo *repository.Repository, gw gateway.PaymentGateway, config *utils.Config, log *zap.Logger) SettlementService {
	return &settlementService{
		repo:    repo,
		gateway: gw,
		config:  config,
		log:     log.With(zap.String("service", "settlement")),
	}
}

func (s *settlementService) ProcessEvent(ctx context.Context, event *gateway.Event) error {
	switch event.Type {
	case gateway.EventPaymentSucceeded:
		return s.handlePaymentSucceeded(ctx, event)
	case gateway.EventPaymentFailed:
		return s.handlePaymentFailed(ctx, event)
	case gateway.EventAccountUpdated:
		return s.handleAccountUpdated(ctx, event)
	default:
		s.log.Debug("Ignoring event type",
			zap.String("event_id", event.ID),
			zap.String("type", event.Type),
		)
		return nil
	}
}

func (s *settlementService) handlePaymentSucceeded(ctx context.Context, event *gateway.Event) error {
	intentID := event.Payment.IntentID

	record, err := s.repo.PaymentRecord.FindByIntentID(ctx, intentID)
	if err != nil {
		return fmt.Errorf("load payment record for event %s: %w", event.ID, err)
	}
	if record == nil {
		// Not an intent this engine created. Ack so the gateway stops
		// redelivering; there is nothing to settle.
		s.log.Warn("Payment succeeded for unknown intent",
			zap.String("event_id", event.ID),
			zap.String("intent_id", intentID),
		)
		return nil
	}

	transitioned, err := s.repo.PaymentRecord.MarkSucceeded(ctx, intentID)
	if err != nil {
		return fmt.Errorf("settle payment %s: %w", intentID, err)
	}
	if !transitioned {
		// Redelivered event; the first delivery won the transition.
		s.log.Debug("Duplicate payment.succeeded event",
			zap.String("event_id", event.ID),
			zap.String("intent_id", intentID),
		)
		return nil
	}

	// The transition above is the durable record of this event. From here on
	// errors must not propagate: a failure response would make the gateway
	// redeliver an event that is already settled.

	paid, err := s.repo.Booking.MarkPaid(ctx, record.BookingID)
	if err != nil {
		s.log.Error("Payment settled but booking update failed; leaving to reconciliation",
			zap.Error(err),
			zap.String("intent_id", intentID),
			zap.String("booking_id", record.BookingID.String()),
		)
		return nil
	}

	if !paid {
		// The reaper released this booking before the event arrived. The
		// money moved at the gateway but the slot is gone; flag the record
		// for manual reconciliation and do not pay the instructor.
		if err := s.repo.PaymentRecord.MarkRequiresReview(ctx, intentID); err != nil {
			s.log.Error("Failed to flag late payment for review", zap.Error(err))
		}
		s.log.Warn("Payment succeeded for a released booking; flagged for review",
			zap.String("event_id", event.ID),
			zap.String("intent_id", intentID),
			zap.String("booking_id", record.BookingID.String()),
		)
		return nil
	}

	s.log.Info("Booking paid",
		zap.String("booking_id", record.BookingID.String()),
		zap.String("intent_id", intentID),
		zap.Int64("amount", record.Amount),
	)

	s.createTransfer(ctx, record)
	return nil
}

// createTransfer computes the commission split and submits the instructor's
// share. Failures are recorded on the transfer row, never bubbled up.
func (s *settlementService) createTransfer(ctx context.Context, record *entity.PaymentRecord) {
	booking, err := s.repo.Booking.FindByID(ctx, record.BookingID)
	if err != nil || booking == nil {
		s.log.Error("Failed to load booking for transfer",
			zap.Error(err),
			zap.String("booking_id", record.BookingID.String()),
		)
		return
	}

	account, err := s.repo.PayoutAccount.FindByInstructorID(ctx, booking.InstructorID)
	if err != nil {
		s.log.Error("Failed to load payout account for transfer",
			zap.Error(err),
			zap.String("instructor_id", booking.InstructorID.String()),
		)
		return
	}

	// The account-level rate is authoritative; config only seeds new
	// accounts.
	rate := s.config.Booking.CommissionRate
	var accountID *uuid.UUID
	if account != nil {
		rate = account.CommissionRate
		accountID = &account.ID
	}

	fee, payout := utils.SplitAmount(record.Amount, rate)

	now := time.Now()
	transfer := &entity.Transfer{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		PayoutAccountID: accountID,
		BookingID:       record.BookingID,
		IntentID:        record.IntentID,
		Amount:          payout,
		PlatformFee:     fee,
		Currency:        record.Currency,
		Status:          entity.TransferStatusRequested,
	}

	// No active external account yet: park the transfer instead of failing
	// the event. The sweep picks it up once onboarding completes.
	if account == nil || account.ExternalAccountID == nil || account.Status != entity.PayoutAccountStatusActive {
		transfer.Status = entity.TransferStatusDeferred
		if err := s.repo.Transfer.Create(ctx, transfer); err != nil && err != repository.ErrTransferExists {
			s.log.Error("Failed to record deferred transfer",
				zap.Error(err),
				zap.String("intent_id", record.IntentID),
			)
			return
		}
		s.log.Info("Transfer deferred: instructor payout account not active",
			zap.String("intent_id", record.IntentID),
			zap.String("instructor_id", booking.InstructorID.String()),
			zap.Int64("amount", payout),
		)
		return
	}

	if err := s.repo.Transfer.Create(ctx, transfer); err != nil {
		if err == repository.ErrTransferExists {
			// Settled payments fund exactly one transfer.
			return
		}
		s.log.Error("Failed to record transfer",
			zap.Error(err),
			zap.String("intent_id", record.IntentID),
		)
		return
	}

	s.submitTransfer(ctx, transfer, *account.ExternalAccountID)
}

// submitTransfer sends a recorded transfer to the gateway and marks the row
// sent or failed.
func (s *settlementService) submitTransfer(ctx context.Context, transfer *entity.Transfer, externalAccountID string) {
	externalID, err := s.gateway.CreateTransfer(ctx, gateway.CreateTransferRequest{
		Amount:             transfer.Amount,
		Currency:           transfer.Currency,
		DestinationAccount: externalAccountID,
		// The intent ID is the idempotency key: when a submission succeeds
		// at the gateway but the response is lost, the sweep's resubmission
		// replays the original transfer instead of paying the instructor a
		// second time. TransferGroup only correlates the payout with its
		// charge; it deduplicates nothing.
		IdempotencyKey: transfer.IntentID,
		TransferGroup:  transfer.IntentID,
	})
	if err != nil {
		s.log.Error("Transfer submission failed; sweep will retry",
			zap.Error(err),
			zap.String("transfer_id", transfer.ID.String()),
			zap.String("intent_id", transfer.IntentID),
		)
		if updErr := s.repo.Transfer.UpdateStatus(ctx, transfer.ID, entity.TransferStatusFailed); updErr != nil {
			s.log.Error("Failed to mark transfer failed", zap.Error(updErr))
		}
		return
	}

	if err := s.repo.Transfer.MarkSent(ctx, transfer.ID, externalID); err != nil {
		// Funds moved but the row still says requested. Requested rows are
		// deliberately excluded from the retry sweep so this can never
		// double-pay; it surfaces in review queries instead.
		s.log.Error("Transfer sent but status update failed",
			zap.Error(err),
			zap.String("transfer_id", transfer.ID.String()),
			zap.String("external_transfer_id", externalID),
		)
		return
	}

	s.log.Info("Transfer sent",
		zap.String("transfer_id", transfer.ID.String()),
		zap.String("external_transfer_id", externalID),
		zap.Int64("amount", transfer.Amount),
		zap.Int64("platform_fee", transfer.PlatformFee),
	)
}

func (s *settlementService) handlePaymentFailed(ctx context.Context, event *gateway.Event) error {
	intentID := event.Payment.IntentID

	record, err := s.repo.PaymentRecord.FindByIntentID(ctx, intentID)
	if err != nil {
		return fmt.Errorf("load payment record for event %s: %w", event.ID, err)
	}
	if record == nil {
		s.log.Warn("Payment failed for unknown intent",
			zap.String("event_id", event.ID),
			zap.String("intent_id", intentID),
		)
		return nil
	}

	transitioned, err := s.repo.PaymentRecord.MarkFailed(ctx, intentID)
	if err != nil {
		return fmt.Errorf("record payment failure %s: %w", intentID, err)
	}
	if !transitioned {
		return nil
	}

	released, err := s.repo.Booking.MarkFailedAndRelease(ctx, record.BookingID)
	if err != nil {
		s.log.Error("Payment failure settled but slot release failed",
			zap.Error(err),
			zap.String("booking_id", record.BookingID.String()),
		)
		return nil
	}

	if released {
		s.log.Info("Booking failed, slot released",
			zap.String("booking_id", record.BookingID.String()),
			zap.String("intent_id", intentID),
		)
	}

	return nil
}

func (s *settlementService) handleAccountUpdated(ctx context.Context, event *gateway.Event) error {
	account := event.Account
	status := mapAccountStatus(account)

	err := s.repo.PayoutAccount.UpdateStatus(ctx, account.ExternalAccountID, status)
	if err == entity.ErrPayoutAccountNotFound {
		// An account this engine never onboarded; nothing to sync.
		s.log.Warn("Account update for unknown payout account",
			zap.String("event_id", event.ID),
			zap.String("external_account_id", account.ExternalAccountID),
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("sync payout account %s: %w", account.ExternalAccountID, err)
	}

	s.log.Info("Payout account status synced",
		zap.String("external_account_id", account.ExternalAccountID),
		zap.String("status", string(status)),
	)

	return nil
}

// mapAccountStatus folds the gateway's enablement and requirements signals
// into the payout account lifecycle.
func mapAccountStatus(account *gateway.AccountEvent) entity.PayoutAccountStatus {
	if account.ChargesEnabled && account.PayoutsEnabled {
		return entity.PayoutAccountStatusActive
	}
	if !account.DetailsSubmitted {
		return entity.PayoutAccountStatusPending
	}
	if account.DisabledReason != "" || len(account.RequirementsDue) > 0 {
		return entity.PayoutAccountStatusRestricted
	}
	return entity.PayoutAccountStatusPending
}

func (s *settlementService) RetryPendingTransfers(ctx context.Context) (int, error) {
	transfers, err := s.repo.Transfer.FindRetryable(ctx, 50)
	if err != nil {
		return 0, fmt.Errorf("list retryable transfers: %w", err)
	}

	sent := 0
	for _, transfer := range transfers {
		account, err := s.resolveActiveAccount(ctx, transfer)
		if err != nil {
			s.log.Error("Failed to resolve payout account for retry",
				zap.Error(err),
				zap.String("transfer_id", transfer.ID.String()),
			)
			continue
		}
		if account == nil {
			// Still not payable; leave the row for the next sweep.
			continue
		}

		if transfer.PayoutAccountID == nil {
			// Deferred before the instructor had any account row. Persist the
			// link before sending so the ledger records which account the
			// money went to.
			if err := s.repo.Transfer.AttachAccount(ctx, transfer.ID, account.ID); err != nil {
				s.log.Error("Failed to attach payout account to transfer",
					zap.Error(err),
					zap.String("transfer_id", transfer.ID.String()),
				)
				continue
			}
			transfer.PayoutAccountID = &account.ID
		}

		s.submitTransfer(ctx, transfer, *account.ExternalAccountID)

		updated, err := s.repo.Transfer.FindByIntentID(ctx, transfer.IntentID)
		if err == nil && updated != nil && updated.Status == entity.TransferStatusSent {
			sent++
		}
	}

	if sent > 0 {
		s.log.Info("Reconciliation sweep sent transfers", zap.Int("count", sent))
	}

	return sent, nil
}

// resolveActiveAccount returns the active payout account a retryable
// transfer should pay into, or nil when the instructor is still not payable.
func (s *settlementService) resolveActiveAccount(ctx context.Context, transfer *entity.Transfer) (*entity.PayoutAccount, error) {
	booking, err := s.repo.Booking.FindByID(ctx, transfer.BookingID)
	if err != nil {
		return nil, fmt.Errorf("load booking %s: %w", transfer.BookingID.String(), err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s not found for transfer", transfer.BookingID.String())
	}

	account, err := s.repo.PayoutAccount.FindByInstructorID(ctx, booking.InstructorID)
	if err != nil {
		return nil, err
	}
	if account == nil || account.ExternalAccountID == nil || account.Status != entity.PayoutAccountStatusActive {
		return nil, nil
	}

	return account, nil
}
