package adaptor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"studio-booking/internal/data/entity"
	"studio-booking/internal/dto/request"
	"studio-booking/internal/dto/response"
	"studio-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubBookingService struct {
	reserveErr error
}

func (s *stubBookingService) Reserve(ctx context.Context, customerID, classID string) (*response.BookingResponse, error) {
	if s.reserveErr != nil {
		return nil, s.reserveErr
	}
	return &response.BookingResponse{ID: uuid.New().String(), Status: entity.BookingStatusPendingPayment}, nil
}

func (s *stubBookingService) GetCustomerBookings(ctx context.Context, customerID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	return response.NewPaginatedResponse([]response.BookingResponse{}, req.Page, req.PerPage, 0), nil
}

func (s *stubBookingService) ReleaseExpired(ctx context.Context) (int, error) {
	return 0, nil
}

func postReserve(handler *BookingHandler, authenticated bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/classes/"+uuid.New().String()+"/bookings", nil)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", uuid.New().String())
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	if authenticated {
		ctx = utils.SetUserContext(ctx, uuid.New(), entity.RoleCustomer)
	}

	rec := httptest.NewRecorder()
	handler.Reserve(rec, req.WithContext(ctx))
	return rec
}

func TestReserveStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"created", nil, http.StatusCreated},
		{"class full", entity.ErrClassFull, http.StatusConflict},
		{"duplicate booking", entity.ErrDuplicateBooking, http.StatusConflict},
		{"class missing", entity.ErrClassNotFound, http.StatusNotFound},
		{"class not bookable", entity.ErrClassNotBookable, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewBookingHandler(&stubBookingService{reserveErr: tt.err}, nil, zap.NewNop())
			rec := postReserve(handler, true)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestReserveRequiresAuthentication(t *testing.T) {
	handler := NewBookingHandler(&stubBookingService{}, nil, zap.NewNop())
	rec := postReserve(handler, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
