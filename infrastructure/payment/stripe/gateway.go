// Package stripe takes card payments through Stripe PaymentIntents. The
// intent ID is the invoice reference; the payment_intent.succeeded webhook
// confirms it.
package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	stripego "github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
	"github.com/stripe/stripe-go/v81/webhook"

	"jewelry/application/payment"
)

var ErrInvalidSignature = errors.New("invalid stripe signature")

// IntentCreator is the part of the PaymentIntents API the gateway uses.
type IntentCreator interface {
	New(params *stripego.PaymentIntentParams) (*stripego.PaymentIntent, error)
}

type Gateway struct {
	intents       IntentCreator
	webhookSecret string
}

func NewGateway(secretKey, webhookSecret string) *Gateway {
	return NewGatewayWithClient(&paymentintent.Client{
		B:   stripego.GetBackend(stripego.APIBackend),
		Key: secretKey,
	}, webhookSecret)
}

func NewGatewayWithClient(intents IntentCreator, webhookSecret string) *Gateway {
	return &Gateway{intents: intents, webhookSecret: webhookSecret}
}

func (g *Gateway) Name() string { return "stripe" }

func (g *Gateway) CreateInvoice(ctx context.Context, r payment.InvoiceRequest) (*payment.Invoice, error) {
	params := &stripego.PaymentIntentParams{
		Amount:      stripego.Int64(minorUnits(r.Amount)),
		Currency:    stripego.String(strings.ToLower(r.Currency)),
		Description: stripego.String(r.Description),
		AutomaticPaymentMethods: &stripego.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripego.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("order_id", strconv.FormatInt(r.OrderID, 10))
	params.AddMetadata("reference", r.Reference)
	params.SetIdempotencyKey(r.Reference)

	intent, err := g.intents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe payment intent: %w", err)
	}
	return &payment.Invoice{Ref: intent.ID, ClientSecret: intent.ClientSecret}, nil
}

// ParseWebhook verifies the Stripe-Signature header and returns the intent
// ID of a payment_intent.succeeded event. Other event types return ok=false.
func (g *Gateway) ParseWebhook(payload []byte, signature string) (intentID string, ok bool, err error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	if event.Type != stripego.EventTypePaymentIntentSucceeded {
		return "", false, nil
	}

	var intent stripego.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return "", false, fmt.Errorf("decode payment intent: %w", err)
	}
	return intent.ID, true, nil
}

// minorUnits converts to the smallest currency unit Stripe expects.
func minorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

var _ payment.Gateway = (*Gateway)(nil)
