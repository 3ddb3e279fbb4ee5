package gateway

import (
	"context"
	"errors"
)

// ErrBadSignature reports that an incoming webhook payload failed
// authenticity verification. The event must not be processed.
var ErrBadSignature = errors.New("webhook signature verification failed")

// Event types the settlement processor dispatches on. Anything else is
// acknowledged and ignored.
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
	EventAccountUpdated   = "account.updated"
)

// PaymentGateway is the engine's view of the external payment provider.
// Calls are non-transactional side effects: they may succeed remotely and
// still fail to be observed locally, so callers must tolerate retries.
type PaymentGateway interface {
	// CreateIntent authorizes a charge and returns the intent with its
	// client secret; funds are not captured here.
	CreateIntent(ctx context.Context, req CreateIntentRequest) (*Intent, error)
	// CreateAccount provisions an external payout account for an instructor
	// and returns its gateway identifier.
	CreateAccount(ctx context.Context) (string, error)
	// CreateAccountLink mints a one-time onboarding URL for an account.
	CreateAccountLink(ctx context.Context, externalAccountID, refreshURL, returnURL string) (string, error)
	// CreateTransfer moves funds to an instructor's payout account and
	// returns the gateway transfer identifier.
	CreateTransfer(ctx context.Context, req CreateTransferRequest) (string, error)
	// VerifyEvent authenticates a raw webhook payload against its signature
	// header and decodes it. Returns ErrBadSignature when verification fails.
	VerifyEvent(payload []byte, signatureHeader string) (*Event, error)
}

type CreateIntentRequest struct {
	Amount   int64 // minor currency units
	Currency string
	Metadata map[string]string
}

type Intent struct {
	ID           string
	ClientSecret string
}

type CreateTransferRequest struct {
	Amount             int64 // minor currency units
	Currency           string
	DestinationAccount string
	// IdempotencyKey makes resubmission safe: the gateway replays the
	// original transfer instead of executing a second one. Callers must keep
	// the key stable across retries of the same movement.
	IdempotencyKey string
	TransferGroup  string
}

// Event is a verified, decoded webhook event. Exactly one of Payment and
// Account is set, matching Type.
type Event struct {
	ID      string
	Type    string
	Payment *PaymentEvent
	Account *AccountEvent
}

type PaymentEvent struct {
	IntentID string
	Amount   int64
	Currency string
	Metadata map[string]string
}

type AccountEvent struct {
	ExternalAccountID string
	ChargesEnabled    bool
	PayoutsEnabled    bool
	DetailsSubmitted  bool
	DisabledReason    string
	RequirementsDue   []string
}
