// Package razorpay adapts the official Razorpay SDK to what the payment
// handlers need: order creation and checkout signature verification.
package razorpay

import (
	"context"
	"fmt"
	"strings"

	sdk "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
)

// DefaultBaseURL is the live API root; the SDK appends /v1/...
const DefaultBaseURL = "https://api.razorpay.com"

type Client struct {
	api       *sdk.Client
	keyID     string
	keySecret string
}

func New(baseURL, keyID, keySecret string) *Client {
	api := sdk.NewClient(keyID, keySecret)
	if baseURL = strings.TrimRight(baseURL, "/"); baseURL != "" {
		sdk.Request.BaseURL = baseURL
	}
	return &Client{api: api, keyID: keyID, keySecret: keySecret}
}

// KeyID is the public key the checkout widget needs.
func (c *Client) KeyID() string { return c.keyID }

// OrderRequest describes an order to open. Amount is in paise.
type OrderRequest struct {
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]string
}

// Order is the subset of the order entity we keep.
type Order struct {
	ID       string
	Amount   int64
	Currency string
	Receipt  string
	Status   string
}

// CreateOrder opens an order through the SDK. The SDK takes no context, so
// ctx is only checked before the call.
func (c *Client) CreateOrder(ctx context.Context, in OrderRequest) (Order, error) {
	if err := ctx.Err(); err != nil {
		return Order{}, err
	}

	data := map[string]any{
		"amount":   in.Amount,
		"currency": in.Currency,
	}
	if in.Receipt != "" {
		data["receipt"] = in.Receipt
	}
	if len(in.Notes) > 0 {
		data["notes"] = in.Notes
	}

	res, err := c.api.Order.Create(data, nil)
	if err != nil {
		return Order{}, fmt.Errorf("razorpay: create order: %w", err)
	}

	out := Order{
		ID:       str(res["id"]),
		Amount:   num(res["amount"]),
		Currency: str(res["currency"]),
		Receipt:  str(res["receipt"]),
		Status:   str(res["status"]),
	}
	if out.ID == "" {
		return Order{}, fmt.Errorf("razorpay: empty order id in response")
	}
	return out, nil
}

// VerifySignature checks the checkout signature against the key secret.
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifySignature(c.keySecret, orderID, paymentID, signature)
}

// VerifySignature reports whether signature is Razorpay's signature of
// "<orderID>|<paymentID>" under secret.
func VerifySignature(secret, orderID, paymentID, signature string) bool {
	signature = strings.ToLower(strings.TrimSpace(signature))
	if orderID == "" || paymentID == "" || signature == "" {
		return false
	}
	return utils.VerifyPaymentSignature(map[string]any{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
		"razorpay_signature":  signature,
	}, signature, secret)
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

// num reads a JSON number decoded into an interface (float64).
func num(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	}
	return 0
}
