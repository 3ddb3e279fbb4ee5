package wire

import (
	"studio-booking/internal/adaptor"
	"studio-booking/internal/data/entity"
	"studio-booking/internal/data/repository"
	"studio-booking/pkg/middleware"
	"studio-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireClass(
	r chi.Router,
	classHandler *adaptor.ClassHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// POST /api/classes - Publish a new class (instructors only)
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))
		r.Use(middleware.RequireRole(entity.RoleInstructor, log))

		r.Post("/api/classes", classHandler.CreateClass)
	})

	// GET /api/classes/{id} - Class details with remaining spots (public)
	r.Get("/api/classes/{id}", classHandler.GetClass)
}
