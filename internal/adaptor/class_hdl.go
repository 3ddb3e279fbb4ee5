package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"studio-booking/internal/data/entity"
	"studio-booking/internal/dto/request"
	"studio-booking/internal/usecase"
	"studio-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ClassHandler struct {
	service usecase.ClassService
	log     *zap.Logger
}

func NewClassHandler(service usecase.ClassService, log *zap.Logger) *ClassHandler {
	return &ClassHandler{
		service: service,
		log:     log.With(zap.String("handler", "class")),
	}
}

// CreateClass handles POST /api/classes (instructor only)
func (h *ClassHandler) CreateClass(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateClassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	class, err := h.service.CreateClass(r.Context(), userID.String(), &req)
	if err != nil {
		h.handleServiceError(w, err, "create class")
		return
	}

	utils.ResponseCreated(w, "success", class)
}

// GetClass handles GET /api/classes/{id} (public)
func (h *ClassHandler) GetClass(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "id")
	if classID == "" {
		utils.ResponseBadRequest(w, "Class ID is required", nil)
		return
	}

	class, err := h.service.GetClass(r.Context(), classID)
	if err != nil {
		h.handleServiceError(w, err, "get class")
		return
	}

	utils.ResponseSuccess(w, "success", class)
}

func (h *ClassHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, entity.ErrClassNotFound):
		utils.ResponseNotFound(w, err.Error())

	case strings.Contains(err.Error(), "validation failed"),
		strings.Contains(err.Error(), "invalid"):
		h.log.Warn("Invalid input for "+operation, zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	default:
		h.log.Error("Failed to "+operation, zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
