// Package qpay is a client for the QPay merchant API v2: bearer tokens from
// basic auth, invoice creation and payment checks.
package qpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"jewelry/application/payment"
	"jewelry/pkg/logger"
)

const (
	defaultTimeout = 15 * time.Second
	tokenLeeway    = 30 * time.Second
)

type Config struct {
	BaseURL     string
	Username    string
	Password    string
	InvoiceCode string
	CallbackURL string
	Timeout     time.Duration
}

type Client struct {
	cfg  Config
	http *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) Name() string { return "qpay" }

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// accessToken returns a cached token, fetching a new one shortly before the
// old one expires.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v2/auth/token", nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.cfg.Username, c.cfg.Password)

	var tr tokenResponse
	if err := c.do(req, &tr); err != nil {
		return "", fmt.Errorf("qpay auth: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("qpay auth: empty access token")
	}

	c.token = tr.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tr.ExpiresIn)*time.Second - tokenLeeway)
	return c.token, nil
}

type invoiceRequest struct {
	InvoiceCode         string `json:"invoice_code"`
	SenderInvoiceNo     string `json:"sender_invoice_no"`
	InvoiceReceiverCode string `json:"invoice_receiver_code"`
	InvoiceDescription  string `json:"invoice_description"`
	Amount              json.Number `json:"amount"`
	CallbackURL         string `json:"callback_url"`
}

type invoiceResponse struct {
	InvoiceID    string `json:"invoice_id"`
	QRText       string `json:"qr_text"`
	QPayShortURL string `json:"qPay_shortUrl"`
}

func (c *Client) CreateInvoice(ctx context.Context, r payment.InvoiceRequest) (*payment.Invoice, error) {
	body := invoiceRequest{
		InvoiceCode:         c.cfg.InvoiceCode,
		SenderInvoiceNo:     r.Reference,
		InvoiceReceiverCode: r.Phone,
		InvoiceDescription:  r.Description,
		Amount:              json.Number(r.Amount.String()),
		CallbackURL:         c.cfg.CallbackURL,
	}

	var ir invoiceResponse
	if err := c.postJSON(ctx, "/v2/invoice", body, &ir); err != nil {
		return nil, fmt.Errorf("qpay invoice: %w", err)
	}
	if ir.InvoiceID == "" {
		return nil, fmt.Errorf("qpay invoice: empty invoice id")
	}

	logger.FromContext(ctx).Debug("QPay invoice created",
		zap.String("invoice_id", ir.InvoiceID),
		zap.String("sender_invoice_no", r.Reference),
	)
	return &payment.Invoice{Ref: ir.InvoiceID, QR: ir.QRText, PaymentURL: ir.QPayShortURL}, nil
}

type checkRequest struct {
	ObjectType string `json:"object_type"`
	ObjectID   string `json:"object_id"`
}

type checkResponse struct {
	Count int `json:"count"`
	Rows  []struct {
		PaymentID     string `json:"payment_id"`
		PaymentStatus string `json:"payment_status"`
	} `json:"rows"`
}

// IsPaid asks QPay whether any payment on the invoice has status PAID.
func (c *Client) IsPaid(ctx context.Context, invoiceID string) (bool, error) {
	var cr checkResponse
	if err := c.postJSON(ctx, "/v2/payment/check", checkRequest{ObjectType: "INVOICE", ObjectID: invoiceID}, &cr); err != nil {
		return false, fmt.Errorf("qpay payment check: %w", err)
	}
	for _, row := range cr.Rows {
		if row.PaymentStatus == "PAID" {
			return true, nil
		}
	}
	return false, nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	err = c.do(req, out)
	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusUnauthorized {
		c.mu.Lock()
		c.token = ""
		c.mu.Unlock()
	}
	return err
}

// StatusError is a non-2xx answer from QPay.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	return json.Unmarshal(body, out)
}

var (
	_ payment.Gateway = (*Client)(nil)
	_ payment.Checker = (*Client)(nil)
)
