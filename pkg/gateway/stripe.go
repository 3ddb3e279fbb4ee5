package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"studio-booking/pkg/utils"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

// StripeGateway implements PaymentGateway on Stripe Connect: payment intents
// for charges, Express accounts + account links for instructor onboarding,
// transfers for payouts.
type StripeGateway struct {
	client        *client.API
	webhookSecret string
	log           *zap.Logger
}

func NewStripeGateway(config utils.GatewayConfig, log *zap.Logger) *StripeGateway {
	sc := &client.API{}
	sc.Init(config.SecretKey, nil)

	return &StripeGateway{
		client:        sc,
		webhookSecret: config.WebhookSecret,
		log:           log.With(zap.String("gateway", "stripe")),
	}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, req CreateIntentRequest) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(req.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := g.client.PaymentIntents.New(params)
	if err != nil {
		g.log.Error("Failed to create payment intent",
			zap.Error(err),
			zap.Int64("amount", req.Amount),
		)
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (g *StripeGateway) CreateAccount(ctx context.Context) (string, error) {
	params := &stripe.AccountParams{
		Type: stripe.String(string(stripe.AccountTypeExpress)),
	}
	params.Context = ctx

	account, err := g.client.Accounts.New(params)
	if err != nil {
		g.log.Error("Failed to create connected account", zap.Error(err))
		return "", fmt.Errorf("create connected account: %w", err)
	}

	return account.ID, nil
}

func (g *StripeGateway) CreateAccountLink(ctx context.Context, externalAccountID, refreshURL, returnURL string) (string, error) {
	params := &stripe.AccountLinkParams{
		Account:    stripe.String(externalAccountID),
		RefreshURL: stripe.String(refreshURL),
		ReturnURL:  stripe.String(returnURL),
		Type:       stripe.String(string(stripe.AccountLinkTypeAccountOnboarding)),
	}
	params.Context = ctx

	link, err := g.client.AccountLinks.New(params)
	if err != nil {
		g.log.Error("Failed to create account link",
			zap.Error(err),
			zap.String("external_account_id", externalAccountID),
		)
		return "", fmt.Errorf("create account link for %s: %w", externalAccountID, err)
	}

	return link.URL, nil
}

func (g *StripeGateway) CreateTransfer(ctx context.Context, req CreateTransferRequest) (string, error) {
	params := &stripe.TransferParams{
		Amount:        stripe.Int64(req.Amount),
		Currency:      stripe.String(req.Currency),
		Destination:   stripe.String(req.DestinationAccount),
		TransferGroup: stripe.String(req.TransferGroup),
	}
	params.Context = ctx
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	transfer, err := g.client.Transfers.New(params)
	if err != nil {
		g.log.Error("Failed to create transfer",
			zap.Error(err),
			zap.Int64("amount", req.Amount),
			zap.String("destination", req.DestinationAccount),
		)
		return "", fmt.Errorf("create transfer to %s: %w", req.DestinationAccount, err)
	}

	return transfer.ID, nil
}

func (g *StripeGateway) VerifyEvent(payload []byte, signatureHeader string) (*Event, error) {
	stripeEvent, err := webhook.ConstructEvent(payload, signatureHeader, g.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}

	event := &Event{
		ID:   stripeEvent.ID,
		Type: string(stripeEvent.Type),
	}

	switch event.Type {
	case EventPaymentSucceeded, EventPaymentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(stripeEvent.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("decode payment intent from event %s: %w", event.ID, err)
		}
		event.Payment = &PaymentEvent{
			IntentID: pi.ID,
			Amount:   pi.Amount,
			Currency: string(pi.Currency),
			Metadata: pi.Metadata,
		}

	case EventAccountUpdated:
		var account stripe.Account
		if err := json.Unmarshal(stripeEvent.Data.Raw, &account); err != nil {
			return nil, fmt.Errorf("decode account from event %s: %w", event.ID, err)
		}
		accountEvent := &AccountEvent{
			ExternalAccountID: account.ID,
			ChargesEnabled:    account.ChargesEnabled,
			PayoutsEnabled:    account.PayoutsEnabled,
			DetailsSubmitted:  account.DetailsSubmitted,
		}
		if account.Requirements != nil {
			accountEvent.DisabledReason = string(account.Requirements.DisabledReason)
			accountEvent.RequirementsDue = account.Requirements.CurrentlyDue
		}
		event.Account = accountEvent
	}

	return event, nil
}
