package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"studio-booking/internal/data/entity"
	"studio-booking/internal/data/repository"
	"studio-booking/pkg/gateway"
	"studio-booking/pkg/utils"

	"github.com/google/uuid"
)

// fakeStore backs the in-memory repository fakes. A single mutex guards all
// maps so the fakes reproduce the atomicity of the real conditional
// statements under concurrent use.
type fakeStore struct {
	mu        sync.Mutex
	classes   map[uuid.UUID]*entity.Class
	bookings  map[uuid.UUID]*entity.Booking
	records   map[string]*entity.PaymentRecord // by intent ID
	accounts  map[uuid.UUID]*entity.PayoutAccount
	transfers map[string]*entity.Transfer // by intent ID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		classes:   make(map[uuid.UUID]*entity.Class),
		bookings:  make(map[uuid.UUID]*entity.Booking),
		records:   make(map[string]*entity.PaymentRecord),
		accounts:  make(map[uuid.UUID]*entity.PayoutAccount),
		transfers: make(map[string]*entity.Transfer),
	}
}

func (s *fakeStore) repo() *repository.Repository {
	return &repository.Repository{
		Class:         &fakeClassRepo{s},
		Booking:       &fakeBookingRepo{s},
		PaymentRecord: &fakeRecordRepo{s},
		PayoutAccount: &fakeAccountRepo{s},
		Transfer:      &fakeTransferRepo{s},
	}
}

func (s *fakeStore) addClass(class *entity.Class) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.classes[class.ID] = class
}

func (s *fakeStore) addBooking(booking *entity.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[booking.ID] = booking
}

func (s *fakeStore) addRecord(record *entity.PaymentRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.IntentID] = record
}

func (s *fakeStore) addAccount(account *entity.PayoutAccount) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.ID] = account
}

func (s *fakeStore) addTransfer(transfer *entity.Transfer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transfers[transfer.IntentID] = transfer
}

// ---------------- class repository ----------------

type fakeClassRepo struct{ s *fakeStore }

func (r *fakeClassRepo) Create(ctx context.Context, class *entity.Class) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.classes[class.ID] = class
	return nil
}

func (r *fakeClassRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Class, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	class, ok := r.s.classes[id]
	if !ok {
		return nil, nil
	}
	copied := *class
	return &copied, nil
}

func (r *fakeClassRepo) FindByInstructorID(ctx context.Context, instructorID uuid.UUID, limit, offset int) ([]*entity.Class, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Class
	for _, class := range r.s.classes {
		if class.InstructorID == instructorID {
			copied := *class
			out = append(out, &copied)
		}
	}
	return out, nil
}

// ---------------- booking repository ----------------

type fakeBookingRepo struct{ s *fakeStore }

func (r *fakeBookingRepo) Reserve(ctx context.Context, booking *entity.Booking) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	class, ok := r.s.classes[booking.ClassID]
	if !ok || !class.Bookable(time.Now()) || class.BookedCount >= class.Capacity {
		return false, nil
	}

	for _, existing := range r.s.bookings {
		if existing.ClassID == booking.ClassID && existing.CustomerID == booking.CustomerID && activeBookingStatus(existing.Status) {
			return false, entity.ErrDuplicateBooking
		}
	}

	class.BookedCount++
	booking.InstructorID = class.InstructorID
	booking.Amount = class.Price
	copied := *booking
	r.s.bookings[booking.ID] = &copied
	return true, nil
}

func activeBookingStatus(status entity.BookingStatus) bool {
	switch status {
	case entity.BookingStatusPendingPayment, entity.BookingStatusConfirmed, entity.BookingStatusPaid:
		return true
	}
	return false
}

func (r *fakeBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	booking, ok := r.s.bookings[id]
	if !ok {
		return nil, nil
	}
	copied := *booking
	return &copied, nil
}

func (r *fakeBookingRepo) FindByCustomerID(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Booking
	for _, booking := range r.s.bookings {
		if booking.CustomerID == customerID {
			copied := *booking
			out = append(out, &copied)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeBookingRepo) CountByCustomerID(ctx context.Context, customerID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, booking := range r.s.bookings {
		if booking.CustomerID == customerID {
			count++
		}
	}
	return count, nil
}

func (r *fakeBookingRepo) SetPaymentIntent(ctx context.Context, bookingID uuid.UUID, intentID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	booking, ok := r.s.bookings[bookingID]
	if !ok {
		return fmt.Errorf("booking %s not found", bookingID.String())
	}
	booking.PaymentIntentID = &intentID
	return nil
}

func (r *fakeBookingRepo) MarkPaid(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	booking, ok := r.s.bookings[bookingID]
	if !ok || booking.Status != entity.BookingStatusPendingPayment {
		return false, nil
	}
	booking.Status = entity.BookingStatusPaid
	return true, nil
}

func (r *fakeBookingRepo) MarkFailedAndRelease(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	booking, ok := r.s.bookings[bookingID]
	if !ok || booking.Status != entity.BookingStatusPendingPayment {
		return false, nil
	}
	booking.Status = entity.BookingStatusFailed
	if class, ok := r.s.classes[booking.ClassID]; ok {
		class.BookedCount--
	}
	return true, nil
}

func (r *fakeBookingRepo) ReleaseExpired(ctx context.Context, cutoff time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	released := 0
	for _, booking := range r.s.bookings {
		if booking.Status == entity.BookingStatusPendingPayment && booking.CreatedAt.Before(cutoff) {
			booking.Status = entity.BookingStatusCancelled
			if class, ok := r.s.classes[booking.ClassID]; ok {
				class.BookedCount--
			}
			released++
		}
	}
	return released, nil
}

// ---------------- payment record repository ----------------

type fakeRecordRepo struct{ s *fakeStore }

func (r *fakeRecordRepo) Create(ctx context.Context, record *entity.PaymentRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.records {
		if existing.BookingID == record.BookingID && existing.Status == entity.PaymentRecordStatusCreated {
			return errors.New("duplicate open payment record")
		}
	}
	copied := *record
	r.s.records[record.IntentID] = &copied
	return nil
}

func (r *fakeRecordRepo) FindByIntentID(ctx context.Context, intentID string) (*entity.PaymentRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	record, ok := r.s.records[intentID]
	if !ok {
		return nil, nil
	}
	copied := *record
	return &copied, nil
}

func (r *fakeRecordRepo) FindCreatedByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.PaymentRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, record := range r.s.records {
		if record.BookingID == bookingID && record.Status == entity.PaymentRecordStatusCreated {
			copied := *record
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeRecordRepo) MarkSucceeded(ctx context.Context, intentID string) (bool, error) {
	return r.transition(intentID, entity.PaymentRecordStatusCreated, entity.PaymentRecordStatusSucceeded)
}

func (r *fakeRecordRepo) MarkFailed(ctx context.Context, intentID string) (bool, error) {
	return r.transition(intentID, entity.PaymentRecordStatusCreated, entity.PaymentRecordStatusFailed)
}

func (r *fakeRecordRepo) MarkRequiresReview(ctx context.Context, intentID string) error {
	_, err := r.transition(intentID, entity.PaymentRecordStatusSucceeded, entity.PaymentRecordStatusRequiresReview)
	return err
}

func (r *fakeRecordRepo) transition(intentID string, from, to entity.PaymentRecordStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	record, ok := r.s.records[intentID]
	if !ok || record.Status != from {
		return false, nil
	}
	record.Status = to
	now := time.Now()
	record.ProcessedAt = &now
	return true, nil
}

// ---------------- payout account repository ----------------

type fakeAccountRepo struct{ s *fakeStore }

func (r *fakeAccountRepo) Create(ctx context.Context, account *entity.PayoutAccount) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	copied := *account
	r.s.accounts[account.ID] = &copied
	return nil
}

func (r *fakeAccountRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.PayoutAccount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	account, ok := r.s.accounts[id]
	if !ok {
		return nil, nil
	}
	copied := *account
	return &copied, nil
}

func (r *fakeAccountRepo) FindByInstructorID(ctx context.Context, instructorID uuid.UUID) (*entity.PayoutAccount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, account := range r.s.accounts {
		if account.InstructorID == instructorID {
			copied := *account
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeAccountRepo) FindByExternalID(ctx context.Context, externalAccountID string) (*entity.PayoutAccount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, account := range r.s.accounts {
		if account.ExternalAccountID != nil && *account.ExternalAccountID == externalAccountID {
			copied := *account
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeAccountRepo) SetExternalAccount(ctx context.Context, id uuid.UUID, externalAccountID string, status entity.PayoutAccountStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	account, ok := r.s.accounts[id]
	if !ok {
		return fmt.Errorf("payout account %s not found", id.String())
	}
	account.ExternalAccountID = &externalAccountID
	account.Status = status
	return nil
}

func (r *fakeAccountRepo) UpdateStatus(ctx context.Context, externalAccountID string, status entity.PayoutAccountStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, account := range r.s.accounts {
		if account.ExternalAccountID != nil && *account.ExternalAccountID == externalAccountID {
			account.Status = status
			return nil
		}
	}
	return entity.ErrPayoutAccountNotFound
}

// ---------------- transfer repository ----------------

type fakeTransferRepo struct{ s *fakeStore }

func (r *fakeTransferRepo) Create(ctx context.Context, transfer *entity.Transfer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.transfers[transfer.IntentID]; exists {
		return repository.ErrTransferExists
	}
	copied := *transfer
	r.s.transfers[transfer.IntentID] = &copied
	return nil
}

func (r *fakeTransferRepo) FindByIntentID(ctx context.Context, intentID string) (*entity.Transfer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	transfer, ok := r.s.transfers[intentID]
	if !ok {
		return nil, nil
	}
	copied := *transfer
	return &copied, nil
}

func (r *fakeTransferRepo) MarkSent(ctx context.Context, id uuid.UUID, externalTransferID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, transfer := range r.s.transfers {
		if transfer.ID == id {
			transfer.Status = entity.TransferStatusSent
			transfer.ExternalTransferID = &externalTransferID
			return nil
		}
	}
	return fmt.Errorf("transfer %s not found", id.String())
}

func (r *fakeTransferRepo) AttachAccount(ctx context.Context, id uuid.UUID, payoutAccountID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, transfer := range r.s.transfers {
		if transfer.ID == id {
			transfer.PayoutAccountID = &payoutAccountID
			return nil
		}
	}
	return fmt.Errorf("transfer %s not found", id.String())
}

func (r *fakeTransferRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.TransferStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, transfer := range r.s.transfers {
		if transfer.ID == id {
			transfer.Status = status
			return nil
		}
	}
	return fmt.Errorf("transfer %s not found", id.String())
}

func (r *fakeTransferRepo) FindRetryable(ctx context.Context, limit int) ([]*entity.Transfer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Transfer
	for _, transfer := range r.s.transfers {
		if transfer.Status == entity.TransferStatusDeferred || transfer.Status == entity.TransferStatusFailed {
			copied := *transfer
			out = append(out, &copied)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

// ---------------- payment gateway ----------------

type fakeGateway struct {
	mu sync.Mutex

	intentCalls   int
	accountCalls  int
	transferCalls []gateway.CreateTransferRequest

	intentErr   error
	transferErr error
}

func (g *fakeGateway) CreateIntent(ctx context.Context, req gateway.CreateIntentRequest) (*gateway.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.intentErr != nil {
		return nil, g.intentErr
	}
	g.intentCalls++
	id := fmt.Sprintf("pi_fake_%d", g.intentCalls)
	return &gateway.Intent{ID: id, ClientSecret: id + "_secret"}, nil
}

func (g *fakeGateway) CreateAccount(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.accountCalls++
	return fmt.Sprintf("acct_fake_%d", g.accountCalls), nil
}

func (g *fakeGateway) CreateAccountLink(ctx context.Context, externalAccountID, refreshURL, returnURL string) (string, error) {
	return "https://onboarding.example/" + externalAccountID, nil
}

func (g *fakeGateway) CreateTransfer(ctx context.Context, req gateway.CreateTransferRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	// Record the submission before deciding the outcome; a lost response
	// still reached the gateway.
	g.transferCalls = append(g.transferCalls, req)
	if g.transferErr != nil {
		return "", g.transferErr
	}
	return fmt.Sprintf("tr_fake_%d", len(g.transferCalls)), nil
}

func (g *fakeGateway) setTransferErr(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.transferErr = err
}

func (g *fakeGateway) VerifyEvent(payload []byte, signatureHeader string) (*gateway.Event, error) {
	return nil, errors.New("not used in service tests")
}

func (g *fakeGateway) transferCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.transferCalls)
}

// ---------------- helpers ----------------

func testConfig() *utils.Config {
	return &utils.Config{
		App: utils.AppConfig{BaseURL: "https://studio.example"},
		Gateway: utils.GatewayConfig{
			Currency: "usd",
		},
		Booking: utils.BookingConfig{
			CommissionRate: 0.15,
			PendingTimeout: 30 * time.Minute,
			ReaperInterval: 5 * time.Minute,
		},
	}
}

func seedClass(store *fakeStore, capacity int, price float64, scheduleAt time.Time) *entity.Class {
	now := time.Now()
	class := &entity.Class{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		InstructorID: uuid.New(),
		Title:        "Morning Vinyasa",
		ScheduleAt:   scheduleAt,
		Capacity:     capacity,
		Price:        price,
		Status:       entity.ClassStatusActive,
	}
	store.addClass(class)
	return class
}

func seedPendingBooking(store *fakeStore, class *entity.Class, customerID uuid.UUID) *entity.Booking {
	now := time.Now()
	booking := &entity.Booking{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Reference:    utils.GenerateBookingRef(),
		ClassID:      class.ID,
		CustomerID:   customerID,
		InstructorID: class.InstructorID,
		Amount:       class.Price,
		Status:       entity.BookingStatusPendingPayment,
	}
	store.addBooking(booking)
	store.mu.Lock()
	store.classes[class.ID].BookedCount++
	store.mu.Unlock()
	return booking
}
