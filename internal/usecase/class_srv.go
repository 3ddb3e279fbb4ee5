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

type ClassService interface {
	CreateClass(ctx context.Context, instructorID string, req *request.CreateClassRequest) (*response.ClassResponse, error)
	GetClass(ctx context.Context, classID string) (*response.ClassResponse, error)
}

type classService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewClassService(repo *repository.Repository, log *zap.Logger) ClassService {
	return &classService{
		repo: repo,
		log:  log.With(zap.String("service", "class")),
	}
}

func (s *classService) CreateClass(ctx context.Context, instructorID string, req *request.CreateClassRequest) (*response.ClassResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create class validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	instructorUUID, err := uuid.Parse(instructorID)
	if err != nil {
		return nil, fmt.Errorf("invalid instructor ID format %s: %w", instructorID, err)
	}

	scheduleAt, err := time.Parse(time.RFC3339, req.ScheduleAt)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule_at format %s: %w", req.ScheduleAt, err)
	}

	if !scheduleAt.After(time.Now()) {
		return nil, fmt.Errorf("invalid schedule_at: must be in the future")
	}

	now := time.Now()
	class := &entity.Class{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		InstructorID: instructorUUID,
		Title:        req.Title,
		ScheduleAt:   scheduleAt,
		Capacity:     req.Capacity,
		BookedCount:  0,
		Price:        req.Price,
		Status:       entity.ClassStatusActive,
	}

	if err := s.repo.Class.Create(ctx, class); err != nil {
		s.log.Error("Failed to create class",
			zap.Error(err),
			zap.String("instructor_id", instructorID),
		)
		return nil, fmt.Errorf("create class: %w", err)
	}

	s.log.Info("Class created",
		zap.String("class_id", class.ID.String()),
		zap.String("instructor_id", instructorID),
		zap.Int("capacity", class.Capacity),
		zap.Float64("price", class.Price),
	)

	resp := response.ClassToResponse(class)
	return &resp, nil
}

func (s *classService) GetClass(ctx context.Context, classID string) (*response.ClassResponse, error) {
	id, err := uuid.Parse(classID)
	if err != nil {
		return nil, fmt.Errorf("invalid class ID format %s: %w", classID, err)
	}

	class, err := s.repo.Class.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get class %s: %w", classID, err)
	}
	if class == nil {
		return nil, entity.ErrClassNotFound
	}

	resp := response.ClassToResponse(class)
	return &resp, nil
}
