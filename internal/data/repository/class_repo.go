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

type ClassRepository interface {
	Create(ctx context.Context, class *entity.Class) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Class, error)
	FindByInstructorID(ctx context.Context, instructorID uuid.UUID, limit, offset int) ([]*entity.Class, error)
}

type classRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewClassRepository(db database.PgxIface, log *zap.Logger) ClassRepository {
	return &classRepository{
		db:  db,
		log: log.With(zap.String("repository", "class")),
	}
}

func (r *classRepository) Create(ctx context.Context, class *entity.Class) error {
	query := `
		INSERT INTO classes (id, instructor_id, title, schedule_at, capacity, booked_count, price, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(ctx, query,
		class.ID,
		class.InstructorID,
		class.Title,
		class.ScheduleAt,
		class.Capacity,
		class.BookedCount,
		class.Price,
		class.Status,
		class.CreatedAt,
		class.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create class",
			zap.Error(err),
			zap.String("instructor_id", class.InstructorID.String()),
		)
		return fmt.Errorf("create class %s: %w", class.ID.String(), err)
	}

	return nil
}

func (r *classRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Class, error) {
	query := `
		SELECT id, instructor_id, title, schedule_at, capacity, booked_count, price, status, created_at, updated_at
		FROM classes
		WHERE id = $1
	`

	var class entity.Class
	err := r.db.QueryRow(ctx, query, id).Scan(
		&class.ID,
		&class.InstructorID,
		&class.Title,
		&class.ScheduleAt,
		&class.Capacity,
		&class.BookedCount,
		&class.Price,
		&class.Status,
		&class.CreatedAt,
		&class.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find class by ID",
			zap.Error(err),
			zap.String("class_id", id.String()),
		)
		return nil, fmt.Errorf("find class by ID %s: %w", id.String(), err)
	}

	return &class, nil
}

func (r *classRepository) FindByInstructorID(ctx context.Context, instructorID uuid.UUID, limit, offset int) ([]*entity.Class, error) {
	query := `
		SELECT id, instructor_id, title, schedule_at, capacity, booked_count, price, status, created_at, updated_at
		FROM classes
		WHERE instructor_id = $1
		ORDER BY schedule_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, instructorID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find classes by instructor ID",
			zap.Error(err),
			zap.String("instructor_id", instructorID.String()),
		)
		return nil, fmt.Errorf("find classes by instructor ID %s: %w", instructorID.String(), err)
	}
	defer rows.Close()

	var classes []*entity.Class
	for rows.Next() {
		var class entity.Class
		err := rows.Scan(
			&class.ID,
			&class.InstructorID,
			&class.Title,
			&class.ScheduleAt,
			&class.Capacity,
			&class.BookedCount,
			&class.Price,
			&class.Status,
			&class.CreatedAt,
			&class.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan class row", zap.Error(err))
			return nil, fmt.Errorf("scan class row: %w", err)
		}
		classes = append(classes, &class)
	}

	return classes, nil
}
