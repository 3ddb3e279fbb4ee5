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

type PaymentRecordRepository interface {
	Create(ctx context.Context, record *entity.PaymentRecord) error
	FindByIntentID(ctx context.Context, intentID string) (*entity.PaymentRecord, error)
	// FindCreatedByBookingID returns the open (status=created) record for a
	// booking, if any. At most one exists: payment_records carries a partial
	// unique index on booking_id where status = 'created'.
	FindCreatedByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.PaymentRecord, error)

	// MarkSucceeded transitions created -> succeeded. Returns false when the
	// record was not in created (replayed event); callers must treat that as
	// a no-op, never as an error.
	MarkSucceeded(ctx context.Context, intentID string) (bool, error)
	// MarkFailed transitions created -> failed.
	MarkFailed(ctx context.Context, intentID string) (bool, error)
	// MarkRequiresReview flags a succeeded record whose booking was already
	// released; the money moved but no slot backs it.
	MarkRequiresReview(ctx context.Context, intentID string) error
}

type paymentRecordRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPaymentRecordRepository(db database.PgxIface, log *zap.Logger) PaymentRecordRepository {
	return &paymentRecordRepository{
		db:  db,
		log: log.With(zap.String("repository", "payment_record")),
	}
}

func (r *paymentRecordRepository) Create(ctx context.Context, record *entity.PaymentRecord) error {
	query := `
		INSERT INTO payment_records (id, intent_id, booking_id, amount, currency, client_secret, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		record.ID,
		record.IntentID,
		record.BookingID,
		record.Amount,
		record.Currency,
		record.ClientSecret,
		record.Status,
		record.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create payment record",
			zap.Error(err),
			zap.String("intent_id", record.IntentID),
			zap.String("booking_id", record.BookingID.String()),
		)
		return fmt.Errorf("create payment record %s: %w", record.IntentID, err)
	}

	return nil
}

func (r *paymentRecordRepository) FindByIntentID(ctx context.Context, intentID string) (*entity.PaymentRecord, error) {
	query := `
		SELECT id, intent_id, booking_id, amount, currency, client_secret, status, processed_at, created_at
		FROM payment_records
		WHERE intent_id = $1
	`

	var record entity.PaymentRecord
	err := r.db.QueryRow(ctx, query, intentID).Scan(
		&record.ID,
		&record.IntentID,
		&record.BookingID,
		&record.Amount,
		&record.Currency,
		&record.ClientSecret,
		&record.Status,
		&record.ProcessedAt,
		&record.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payment record by intent ID",
			zap.Error(err),
			zap.String("intent_id", intentID),
		)
		return nil, fmt.Errorf("find payment record by intent ID %s: %w", intentID, err)
	}

	return &record, nil
}

func (r *paymentRecordRepository) FindCreatedByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.PaymentRecord, error) {
	query := `
		SELECT id, intent_id, booking_id, amount, currency, client_secret, status, processed_at, created_at
		FROM payment_records
		WHERE booking_id = $1 AND status = 'created'
	`

	var record entity.PaymentRecord
	err := r.db.QueryRow(ctx, query, bookingID).Scan(
		&record.ID,
		&record.IntentID,
		&record.BookingID,
		&record.Amount,
		&record.Currency,
		&record.ClientSecret,
		&record.Status,
		&record.ProcessedAt,
		&record.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find open payment record by booking ID",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("find open payment record for booking %s: %w", bookingID.String(), err)
	}

	return &record, nil
}

func (r *paymentRecordRepository) MarkSucceeded(ctx context.Context, intentID string) (bool, error) {
	query := `
		UPDATE payment_records
		SET status = 'succeeded', processed_at = NOW()
		WHERE intent_id = $1 AND status = 'created'
	`

	result, err := r.db.Exec(ctx, query, intentID)
	if err != nil {
		r.log.Error("Failed to mark payment record succeeded",
			zap.Error(err),
			zap.String("intent_id", intentID),
		)
		return false, fmt.Errorf("mark payment record %s succeeded: %w", intentID, err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *paymentRecordRepository) MarkFailed(ctx context.Context, intentID string) (bool, error) {
	query := `
		UPDATE payment_records
		SET status = 'failed', processed_at = NOW()
		WHERE intent_id = $1 AND status = 'created'
	`

	result, err := r.db.Exec(ctx, query, intentID)
	if err != nil {
		r.log.Error("Failed to mark payment record failed",
			zap.Error(err),
			zap.String("intent_id", intentID),
		)
		return false, fmt.Errorf("mark payment record %s failed: %w", intentID, err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *paymentRecordRepository) MarkRequiresReview(ctx context.Context, intentID string) error {
	query := `
		UPDATE payment_records
		SET status = 'requires_review'
		WHERE intent_id = $1 AND status = 'succeeded'
	`

	_, err := r.db.Exec(ctx, query, intentID)
	if err != nil {
		r.log.Error("Failed to flag payment record for review",
			zap.Error(err),
			zap.String("intent_id", intentID),
		)
		return fmt.Errorf("flag payment record %s for review: %w", intentID, err)
	}

	return nil
}
