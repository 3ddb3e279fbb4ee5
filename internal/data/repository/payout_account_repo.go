package repository

import (
	"context"
	"fmt"

	"studio-booking/internal/data/entity"
	"studio-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type PayoutAccountRepository interface {
	Create(ctx context.Context, account *entity.PayoutAccount) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.PayoutAccount, error)
	FindByInstructorID(ctx context.Context, instructorID uuid.UUID) (*entity.PayoutAccount, error)
	FindByExternalID(ctx context.Context, externalAccountID string) (*entity.PayoutAccount, error)
	SetExternalAccount(ctx context.Context, id uuid.UUID, externalAccountID string, status entity.PayoutAccountStatus) error
	UpdateStatus(ctx context.Context, externalAccountID string, status entity.PayoutAccountStatus) error
}

type payoutAccountRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPayoutAccountRepository(db database.PgxIface, log *zap.Logger) PayoutAccountRepository {
	return &payoutAccountRepository{
		db:  db,
		log: log.With(zap.String("repository", "payout_account")),
	}
}

func (r *payoutAccountRepository) Create(ctx context.Context, account *entity.PayoutAccount) error {
	query := `
		INSERT INTO payout_accounts (id, instructor_id, external_account_id, status, commission_rate, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		account.ID,
		account.InstructorID,
		account.ExternalAccountID,
		account.Status,
		account.CommissionRate,
		account.CreatedAt,
		account.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create payout account",
			zap.Error(err),
			zap.String("instructor_id", account.InstructorID.String()),
		)
		return fmt.Errorf("create payout account for instructor %s: %w", account.InstructorID.String(), err)
	}

	return nil
}

func (r *payoutAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.PayoutAccount, error) {
	return r.findOne(ctx, `WHERE id = $1`, id)
}

func (r *payoutAccountRepository) FindByInstructorID(ctx context.Context, instructorID uuid.UUID) (*entity.PayoutAccount, error) {
	return r.findOne(ctx, `WHERE instructor_id = $1`, instructorID)
}

func (r *payoutAccountRepository) FindByExternalID(ctx context.Context, externalAccountID string) (*entity.PayoutAccount, error) {
	return r.findOne(ctx, `WHERE external_account_id = $1`, externalAccountID)
}

func (r *payoutAccountRepository) findOne(ctx context.Context, where string, arg any) (*entity.PayoutAccount, error) {
	query := `
		SELECT id, instructor_id, external_account_id, status, commission_rate, created_at, updated_at
		FROM payout_accounts
	` + where

	var account entity.PayoutAccount
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&account.ID,
		&account.InstructorID,
		&account.ExternalAccountID,
		&account.Status,
		&account.CommissionRate,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payout account", zap.Error(err))
		return nil, fmt.Errorf("find payout account: %w", err)
	}

	return &account, nil
}

func (r *payoutAccountRepository) SetExternalAccount(ctx context.Context, id uuid.UUID, externalAccountID string, status entity.PayoutAccountStatus) error {
	query := `
		UPDATE payout_accounts
		SET external_account_id = $2, status = $3, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, id, externalAccountID, status)
	if err != nil {
		r.log.Error("Failed to set external account",
			zap.Error(err),
			zap.String("payout_account_id", id.String()),
			zap.String("external_account_id", externalAccountID),
		)
		return fmt.Errorf("set external account on payout account %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("payout account %s not found", id.String())
	}

	return nil
}

func (r *payoutAccountRepository) UpdateStatus(ctx context.Context, externalAccountID string, status entity.PayoutAccountStatus) error {
	query := `
		UPDATE payout_accounts
		SET status = $2, updated_at = NOW()
		WHERE external_account_id = $1
	`

	result, err := r.db.Exec(ctx, query, externalAccountID, status)
	if err != nil {
		r.log.Error("Failed to update payout account status",
			zap.Error(err),
			zap.String("external_account_id", externalAccountID),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update payout account %s status to %s: %w", externalAccountID, string(status), err)
	}

	if result.RowsAffected() == 0 {
		return entity.ErrPayoutAccountNotFound
	}

	return nil
}
