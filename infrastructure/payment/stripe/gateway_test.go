package stripe

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripego "github.com/stripe/stripe-go/v81"

	"jewelry/application/payment"
)

type fakeIntents struct {
	got *stripego.PaymentIntentParams
}

func (f *fakeIntents) New(params *stripego.PaymentIntentParams) (*stripego.PaymentIntent, error) {
	f.got = params
	return &stripego.PaymentIntent{ID: "pi_123", ClientSecret: "pi_123_secret"}, nil
}

func TestCreateInvoice(t *testing.T) {
	intents := &fakeIntents{}
	g := NewGatewayWithClient(intents, "whsec_test")

	inv, err := g.CreateInvoice(context.Background(), payment.InvoiceRequest{
		OrderID:   42,
		Reference: "ORDER_42",
		Amount:    decimal.RequireFromString("1050000.50"),
		Currency:  "MNT",
	})
	require.NoError(t, err)

	assert.Equal(t, "pi_123", inv.Ref)
	assert.Equal(t, "pi_123_secret", inv.ClientSecret)
	assert.Equal(t, int64(105000050), *intents.got.Amount)
	assert.Equal(t, "mnt", *intents.got.Currency)
	assert.Equal(t, "42", intents.got.Metadata["order_id"])
}

func sign(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestParseWebhook(t *testing.T) {
	g := NewGatewayWithClient(&fakeIntents{}, "whsec_test")
	succeeded := []byte(`{"id":"evt_1","object":"event","api_version":"2020-08-27","type":"payment_intent.succeeded","data":{"object":{"id":"pi_123","object":"payment_intent"}}}`)
	created := []byte(`{"id":"evt_2","object":"event","type":"payment_intent.created","data":{"object":{"id":"pi_123","object":"payment_intent"}}}`)

	id, ok, err := g.ParseWebhook(succeeded, sign(succeeded, "whsec_test", time.Now()))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "pi_123", id)

	_, ok, err = g.ParseWebhook(created, sign(created, "whsec_test", time.Now()))
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = g.ParseWebhook(succeeded, sign(succeeded, "whsec_other", time.Now()))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}
