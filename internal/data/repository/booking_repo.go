package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"studio-booking/internal/data/entity"
	"studio-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// uniqueViolation is the Postgres error code for unique-key violations.
const uniqueViolation = "23505"

type BookingRepository interface {
	// Reserve atomically increments the class booked count and inserts the
	// booking in a single statement. It reports reserved=false when the
	// capacity condition failed (class full, cancelled, past or missing) and
	// entity.ErrDuplicateBooking when the customer already holds an active
	// booking for the class.
	Reserve(ctx context.Context, booking *entity.Booking) (reserved bool, err error)

	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByCustomerID(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*entity.Booking, error)
	CountByCustomerID(ctx context.Context, customerID uuid.UUID) (int64, error)

	SetPaymentIntent(ctx context.Context, bookingID uuid.UUID, intentID string) error

	// MarkPaid transitions pending_payment -> paid. Returns false when the
	// booking was not in pending_payment (already paid, or released by the
	// reaper); callers treat that as a duplicate or late event.
	MarkPaid(ctx context.Context, bookingID uuid.UUID) (bool, error)

	// MarkFailedAndRelease transitions pending_payment -> failed and gives the
	// slot back to the class in one statement.
	MarkFailedAndRelease(ctx context.Context, bookingID uuid.UUID) (bool, error)

	// ReleaseExpired cancels every booking stuck in pending_payment since
	// before the cutoff and decrements the affected class counters, all in a
	// single conditional statement. Returns the number of released bookings.
	ReleaseExpired(ctx context.Context, cutoff time.Time) (int, error)
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

func (r *bookingRepository) Reserve(ctx context.Context, booking *entity.Booking) (bool, error) {
	// The capacity check and the insert must be one statement, not
	// read-then-write: two concurrent reservations for the last slot would
	// both pass a separate read. A unique violation on the partial index
	// bookings_class_customer_active_idx aborts the whole statement, so the
	// counter increment rolls back with the insert.
	query := `
		WITH slot AS (
			UPDATE classes
			SET booked_count = booked_count + 1, updated_at = NOW()
			WHERE id = $1
			  AND status = 'active'
			  AND schedule_at > NOW()
			  AND booked_count < capacity
			RETURNING id, instructor_id, price
		)
		INSERT INTO bookings (id, reference, class_id, customer_id, instructor_id, amount, status, created_at, updated_at)
		SELECT $2, $3, slot.id, $4, slot.instructor_id, slot.price, $5, $6, $6
		FROM slot
		RETURNING instructor_id, amount
	`

	err := r.db.QueryRow(ctx, query,
		booking.ClassID,
		booking.ID,
		booking.Reference,
		booking.CustomerID,
		booking.Status,
		booking.CreatedAt,
	).Scan(&booking.InstructorID, &booking.Amount)

	if err == pgx.ErrNoRows {
		return false, nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return false, entity.ErrDuplicateBooking
	}

	if err != nil {
		r.log.Error("Failed to reserve slot",
			zap.Error(err),
			zap.String("class_id", booking.ClassID.String()),
			zap.String("customer_id", booking.CustomerID.String()),
		)
		return false, fmt.Errorf("reserve slot for class %s: %w", booking.ClassID.String(), err)
	}

	booking.UpdatedAt = booking.CreatedAt
	return true, nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `
		SELECT id, reference, class_id, customer_id, instructor_id, amount, payment_intent_id, status, created_at, updated_at
		FROM bookings
		WHERE id = $1
	`

	var booking entity.Booking
	err := r.db.QueryRow(ctx, query, id).Scan(
		&booking.ID,
		&booking.Reference,
		&booking.ClassID,
		&booking.CustomerID,
		&booking.InstructorID,
		&booking.Amount,
		&booking.PaymentIntentID,
		&booking.Status,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return &booking, nil
}

func (r *bookingRepository) FindByCustomerID(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	query := `
		SELECT id, reference, class_id, customer_id, instructor_id, amount, payment_intent_id, status, created_at, updated_at
		FROM bookings
		WHERE customer_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, customerID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find bookings by customer ID",
			zap.Error(err),
			zap.String("customer_id", customerID.String()),
		)
		return nil, fmt.Errorf("find bookings by customer ID %s: %w", customerID.String(), err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		var booking entity.Booking
		err := rows.Scan(
			&booking.ID,
			&booking.Reference,
			&booking.ClassID,
			&booking.CustomerID,
			&booking.InstructorID,
			&booking.Amount,
			&booking.PaymentIntentID,
			&booking.Status,
			&booking.CreatedAt,
			&booking.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, &booking)
	}

	return bookings, nil
}

func (r *bookingRepository) CountByCustomerID(ctx context.Context, customerID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE customer_id = $1`

	var count int64
	err := r.db.QueryRow(ctx, query, customerID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count bookings by customer ID",
			zap.Error(err),
			zap.String("customer_id", customerID.String()),
		)
		return 0, fmt.Errorf("count bookings by customer ID %s: %w", customerID.String(), err)
	}

	return count, nil
}

func (r *bookingRepository) SetPaymentIntent(ctx context.Context, bookingID uuid.UUID, intentID string) error {
	query := `UPDATE bookings SET payment_intent_id = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, bookingID, intentID)
	if err != nil {
		r.log.Error("Failed to set payment intent",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
			zap.String("intent_id", intentID),
		)
		return fmt.Errorf("set payment intent on booking %s: %w", bookingID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s not found", bookingID.String())
	}

	return nil
}

func (r *bookingRepository) MarkPaid(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	query := `
		UPDATE bookings
		SET status = 'paid', updated_at = NOW()
		WHERE id = $1 AND status = 'pending_payment'
	`

	result, err := r.db.Exec(ctx, query, bookingID)
	if err != nil {
		r.log.Error("Failed to mark booking paid",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return false, fmt.Errorf("mark booking %s paid: %w", bookingID.String(), err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *bookingRepository) ReleaseExpired(ctx context.Context, cutoff time.Time) (int, error) {
	// A class can have several expired bookings in one sweep, so the
	// decrement is grouped per class rather than joined row-by-row.
	query := `
		WITH expired AS (
			UPDATE bookings
			SET status = 'cancelled', updated_at = NOW()
			WHERE status = 'pending_payment' AND created_at < $1
			RETURNING class_id
		),
		counts AS (
			SELECT class_id, COUNT(*) AS n
			FROM expired
			GROUP BY class_id
		)
		UPDATE classes c
		SET booked_count = c.booked_count - counts.n, updated_at = NOW()
		FROM counts
		WHERE c.id = counts.class_id
		RETURNING counts.n
	`

	rows, err := r.db.Query(ctx, query, cutoff)
	if err != nil {
		r.log.Error("Failed to release expired bookings", zap.Error(err))
		return 0, fmt.Errorf("release expired bookings: %w", err)
	}
	defer rows.Close()

	released := 0
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return released, fmt.Errorf("scan released count: %w", err)
		}
		released += n
	}

	return released, nil
}

func (r *bookingRepository) MarkFailedAndRelease(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	query := `
		WITH released AS (
			UPDATE bookings
			SET status = 'failed', updated_at = NOW()
			WHERE id = $1 AND status = 'pending_payment'
			RETURNING class_id
		)
		UPDATE classes c
		SET booked_count = c.booked_count - 1, updated_at = NOW()
		FROM released
		WHERE c.id = released.class_id
	`

	result, err := r.db.Exec(ctx, query, bookingID)
	if err != nil {
		r.log.Error("Failed to release booking",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return false, fmt.Errorf("release booking %s: %w", bookingID.String(), err)
	}

	return result.RowsAffected() > 0, nil
}
