package repository

import (
	"context"
	"errors"
	"fmt"

	"studio-booking/internal/data/entity"
	"studio-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// ErrTransferExists reports that a transfer already exists for the payment
// intent (transfers_intent_id_key). One settled payment funds one transfer.
var ErrTransferExists = errors.New("transfer already exists for intent")

type TransferRepository interface {
	Create(ctx context.Context, transfer *entity.Transfer) error
	FindByIntentID(ctx context.Context, intentID string) (*entity.Transfer, error)
	// MarkSent records the gateway transfer identifier after submission.
	MarkSent(ctx context.Context, id uuid.UUID, externalTransferID string) error
	// AttachAccount links a transfer that was deferred before the instructor
	// had a payout account row to the account it will pay into.
	AttachAccount(ctx context.Context, id uuid.UUID, payoutAccountID uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.TransferStatus) error
	// FindRetryable lists deferred and failed transfers for the
	// reconciliation sweep, oldest first.
	FindRetryable(ctx context.Context, limit int) ([]*entity.Transfer, error)
}

type transferRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTransferRepository(db database.PgxIface, log *zap.Logger) TransferRepository {
	return &transferRepository{
		db:  db,
		log: log.With(zap.String("repository", "transfer")),
	}
}

func (r *transferRepository) Create(ctx context.Context, transfer *entity.Transfer) error {
	query := `
		INSERT INTO transfers (id, payout_account_id, booking_id, intent_id, external_transfer_id, amount, platform_fee, currency, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Exec(ctx, query,
		transfer.ID,
		transfer.PayoutAccountID,
		transfer.BookingID,
		transfer.IntentID,
		transfer.ExternalTransferID,
		transfer.Amount,
		transfer.PlatformFee,
		transfer.Currency,
		transfer.Status,
		transfer.CreatedAt,
		transfer.UpdatedAt,
	)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrTransferExists
	}

	if err != nil {
		r.log.Error("Failed to create transfer",
			zap.Error(err),
			zap.String("intent_id", transfer.IntentID),
			zap.String("booking_id", transfer.BookingID.String()),
		)
		return fmt.Errorf("create transfer for intent %s: %w", transfer.IntentID, err)
	}

	return nil
}

func (r *transferRepository) FindByIntentID(ctx context.Context, intentID string) (*entity.Transfer, error) {
	query := `
		SELECT id, payout_account_id, booking_id, intent_id, external_transfer_id, amount, platform_fee, currency, status, created_at, updated_at
		FROM transfers
		WHERE intent_id = $1
	`

	var transfer entity.Transfer
	err := r.db.QueryRow(ctx, query, intentID).Scan(
		&transfer.ID,
		&transfer.PayoutAccountID,
		&transfer.BookingID,
		&transfer.IntentID,
		&transfer.ExternalTransferID,
		&transfer.Amount,
		&transfer.PlatformFee,
		&transfer.Currency,
		&transfer.Status,
		&transfer.CreatedAt,
		&transfer.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find transfer by intent ID",
			zap.Error(err),
			zap.String("intent_id", intentID),
		)
		return nil, fmt.Errorf("find transfer by intent ID %s: %w", intentID, err)
	}

	return &transfer, nil
}

func (r *transferRepository) MarkSent(ctx context.Context, id uuid.UUID, externalTransferID string) error {
	query := `
		UPDATE transfers
		SET status = 'sent', external_transfer_id = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, id, externalTransferID)
	if err != nil {
		r.log.Error("Failed to mark transfer sent",
			zap.Error(err),
			zap.String("transfer_id", id.String()),
		)
		return fmt.Errorf("mark transfer %s sent: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("transfer %s not found", id.String())
	}

	return nil
}

func (r *transferRepository) AttachAccount(ctx context.Context, id uuid.UUID, payoutAccountID uuid.UUID) error {
	query := `
		UPDATE transfers
		SET payout_account_id = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, id, payoutAccountID)
	if err != nil {
		r.log.Error("Failed to attach payout account to transfer",
			zap.Error(err),
			zap.String("transfer_id", id.String()),
			zap.String("payout_account_id", payoutAccountID.String()),
		)
		return fmt.Errorf("attach payout account to transfer %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("transfer %s not found", id.String())
	}

	return nil
}

func (r *transferRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.TransferStatus) error {
	query := `UPDATE transfers SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		r.log.Error("Failed to update transfer status",
			zap.Error(err),
			zap.String("transfer_id", id.String()),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update transfer %s status to %s: %w", id.String(), string(status), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("transfer %s not found", id.String())
	}

	return nil
}

func (r *transferRepository) FindRetryable(ctx context.Context, limit int) ([]*entity.Transfer, error) {
	query := `
		SELECT id, payout_account_id, booking_id, intent_id, external_transfer_id, amount, platform_fee, currency, status, created_at, updated_at
		FROM transfers
		WHERE status IN ('deferred', 'failed')
		ORDER BY created_at
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		r.log.Error("Failed to find retryable transfers", zap.Error(err))
		return nil, fmt.Errorf("find retryable transfers: %w", err)
	}
	defer rows.Close()

	var transfers []*entity.Transfer
	for rows.Next() {
		var transfer entity.Transfer
		err := rows.Scan(
			&transfer.ID,
			&transfer.PayoutAccountID,
			&transfer.BookingID,
			&transfer.IntentID,
			&transfer.ExternalTransferID,
			&transfer.Amount,
			&transfer.PlatformFee,
			&transfer.Currency,
			&transfer.Status,
			&transfer.CreatedAt,
			&transfer.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan transfer row", zap.Error(err))
			return nil, fmt.Errorf("scan transfer row: %w", err)
		}
		transfers = append(transfers, &transfer)
	}

	return transfers, nil
}
