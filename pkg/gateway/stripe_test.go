package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"studio-booking/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testWebhookSecret = "whsec_test_secret"

func newTestGateway() *StripeGateway {
	return NewStripeGateway(utils.GatewayConfig{
		SecretKey:     "sk_test_key",
		WebhookSecret: testWebhookSecret,
	}, zap.NewNop())
}

// signPayload builds a Stripe-Signature header the way Stripe does: an HMAC
// SHA-256 of "<timestamp>.<payload>" keyed with the endpoint secret.
func signPayload(payload []byte, secret string, at time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", at.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func paymentEventPayload(eventType, intentID string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_test_1",
		"type": "%s",
		"api_version": "2023-10-16",
		"data": {
			"object": {
				"id": "%s",
				"amount": 2500,
				"currency": "usd",
				"metadata": {"booking_id": "bk-1"}
			}
		}
	}`, eventType, intentID))
}

func TestVerifyEventValidSignature(t *testing.T) {
	g := newTestGateway()
	payload := paymentEventPayload("payment_intent.succeeded", "pi_test_123")
	header := signPayload(payload, testWebhookSecret, time.Now())

	event, err := g.VerifyEvent(payload, header)
	require.NoError(t, err)

	assert.Equal(t, "evt_test_1", event.ID)
	assert.Equal(t, EventPaymentSucceeded, event.Type)
	require.NotNil(t, event.Payment)
	assert.Equal(t, "pi_test_123", event.Payment.IntentID)
	assert.Equal(t, int64(2500), event.Payment.Amount)
	assert.Equal(t, "usd", event.Payment.Currency)
	assert.Equal(t, "bk-1", event.Payment.Metadata["booking_id"])
}

func TestVerifyEventTamperedPayload(t *testing.T) {
	g := newTestGateway()
	payload := paymentEventPayload("payment_intent.succeeded", "pi_test_123")
	header := signPayload(payload, testWebhookSecret, time.Now())

	tampered := paymentEventPayload("payment_intent.succeeded", "pi_attacker")

	_, err := g.VerifyEvent(tampered, header)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyEventWrongSecret(t *testing.T) {
	g := newTestGateway()
	payload := paymentEventPayload("payment_intent.payment_failed", "pi_test_123")
	header := signPayload(payload, "whsec_other_secret", time.Now())

	_, err := g.VerifyEvent(payload, header)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyEventGarbageHeader(t *testing.T) {
	g := newTestGateway()
	payload := paymentEventPayload("payment_intent.succeeded", "pi_test_123")

	_, err := g.VerifyEvent(payload, "not-a-signature")
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyEventStaleTimestamp(t *testing.T) {
	g := newTestGateway()
	payload := paymentEventPayload("payment_intent.succeeded", "pi_test_123")
	header := signPayload(payload, testWebhookSecret, time.Now().Add(-time.Hour))

	_, err := g.VerifyEvent(payload, header)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyEventAccountUpdated(t *testing.T) {
	g := newTestGateway()
	payload := []byte(`{
		"id": "evt_test_2",
		"type": "account.updated",
		"api_version": "2023-10-16",
		"data": {
			"object": {
				"id": "acct_test_1",
				"charges_enabled": true,
				"payouts_enabled": false,
				"details_submitted": true,
				"requirements": {
					"disabled_reason": "requirements.past_due",
					"currently_due": ["individual.id_number"]
				}
			}
		}
	}`)
	header := signPayload(payload, testWebhookSecret, time.Now())

	event, err := g.VerifyEvent(payload, header)
	require.NoError(t, err)

	assert.Equal(t, EventAccountUpdated, event.Type)
	require.NotNil(t, event.Account)
	assert.Equal(t, "acct_test_1", event.Account.ExternalAccountID)
	assert.True(t, event.Account.ChargesEnabled)
	assert.False(t, event.Account.PayoutsEnabled)
	assert.True(t, event.Account.DetailsSubmitted)
	assert.Equal(t, "requirements.past_due", event.Account.DisabledReason)
	assert.Equal(t, []string{"individual.id_number"}, event.Account.RequirementsDue)
}
