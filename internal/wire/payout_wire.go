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

func wirePayout(
	r chi.Router,
	payoutHandler *adaptor.PayoutHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	r.Route("/api/payout-accounts", func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))
		r.Use(middleware.RequireRole(entity.RoleInstructor, log))

		// POST /api/payout-accounts - Start or resume payout onboarding
		r.Post("/", payoutHandler.RequestOnboarding)

		// GET /api/payout-accounts/me - Current payout account state
		r.Get("/me", payoutHandler.GetAccount)
	})
}
