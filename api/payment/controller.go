// Package payment exposes invoice creation and the provider callbacks.
package payment

import (
	"io"
	"net/http"

	"jewelry/api/ctxutil"
	"jewelry/api/response"
	paymentapp "jewelry/application/payment"
	"jewelry/pkg/errors"
	"jewelry/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxWebhookBody = 64 << 10

// qpayPaid is the only callback status that moves an order.
const qpayPaid = "PAID"

// WebhookVerifier checks a Stripe webhook and returns the succeeded
// PaymentIntent, if any.
type WebhookVerifier interface {
	ParseWebhook(payload []byte, signature string) (intentID string, ok bool, err error)
}

type Controller struct {
	payments     *paymentapp.Service
	webhooks     WebhookVerifier
	optionalAuth gin.HandlerFunc
}

// NewController wires the payment routes. webhooks may be nil when Stripe is
// not the configured provider.
func NewController(payments *paymentapp.Service, webhooks WebhookVerifier, optionalAuth gin.HandlerFunc) *Controller {
	return &Controller{payments: payments, webhooks: webhooks, optionalAuth: optionalAuth}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/payments")
	{
		group.POST("/invoice", c.optionalAuth, c.CreateInvoice)
		group.POST("/qpay/callback", c.QPayCallback)
		if c.webhooks != nil {
			group.POST("/stripe/webhook", c.StripeWebhook)
		}
	}
}

type invoiceRequest struct {
	OrderID    string `json:"orderId" binding:"required"`
	GuestToken string `json:"guestToken"`
}

// CreateInvoice POST /api/v1/payments/invoice
func (c *Controller) CreateInvoice(ctx *gin.Context) {
	var req invoiceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "orderId is required", http.StatusBadRequest)
		return
	}

	inv, err := c.payments.CreateInvoice(ctx.Request.Context(), ctxutil.Viewer(ctx), req.OrderID, req.GuestToken)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleCreated(ctx, inv, "Invoice created")
}

type qpayCallback struct {
	InvoiceID     string `json:"invoice_id"`
	PaymentStatus string `json:"payment_status"`
}

// QPayCallback POST /api/v1/payments/qpay/callback
func (c *Controller) QPayCallback(ctx *gin.Context) {
	var body qpayCallback
	if err := ctx.ShouldBindJSON(&body); err != nil || body.InvoiceID == "" || body.PaymentStatus == "" {
		response.HandleAppError(ctx, errors.Validation("invoice_id and payment_status are required"))
		return
	}

	log := logger.FromContext(ctx.Request.Context()).With(
		zap.String("invoice_id", body.InvoiceID),
		zap.String("payment_status", body.PaymentStatus),
	)

	if body.PaymentStatus != qpayPaid {
		log.Info("QPay callback ignored")
		response.HandleSuccess(ctx, nil, "Payment status noted")
		return
	}

	updated, err := c.payments.ConfirmPaid(ctx.Request.Context(), body.InvoiceID)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	log.Info("Order paid via QPay", zap.Int64("order_id", updated.ID))
	response.HandleSuccess(ctx, updated, "Payment confirmed")
}

// StripeWebhook POST /api/v1/payments/stripe/webhook
func (c *Controller) StripeWebhook(ctx *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxWebhookBody))
	if err != nil {
		response.HandleError(ctx, err, "unreadable webhook body", http.StatusBadRequest)
		return
	}

	intentID, ok, err := c.webhooks.ParseWebhook(payload, ctx.GetHeader("Stripe-Signature"))
	if err != nil {
		response.HandleError(ctx, err, "invalid webhook", http.StatusBadRequest)
		return
	}
	if !ok {
		response.HandleSuccess(ctx, nil, "Event ignored")
		return
	}

	updated, err := c.payments.ConfirmPaid(ctx.Request.Context(), intentID)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	logger.FromContext(ctx.Request.Context()).Info("Order paid via Stripe",
		zap.String("payment_intent", intentID),
		zap.Int64("order_id", updated.ID))
	response.HandleSuccess(ctx, updated, "Payment confirmed")
}
