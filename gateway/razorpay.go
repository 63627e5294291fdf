package gateway

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/shopspring/decimal"
)

const defaultAPIURL = "https://api.razorpay.com/v1"

// ErrSignatureMismatch is returned when a payment callback carries a
// signature that does not match the order/payment pair.
var ErrSignatureMismatch = errors.New("payment signature mismatch")

// Order is the gateway-side order record referenced by the payment widget.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type orderRequest struct {
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Receipt        string `json:"receipt,omitempty"`
	PaymentCapture int    `json:"payment_capture"`
}

type apiError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// Client talks to the Razorpay REST API with key-id/key-secret basic auth.
type Client struct {
	keyID     string
	keySecret string
	apiURL    string
	http      *http.Client
}

func New(keyID, keySecret, apiURL string) *Client {
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	return &Client{keyID: keyID, keySecret: keySecret, apiURL: apiURL, http: &http.Client{}}
}

// NewFromEnv reads RAZORPAY_KEY_ID / RAZORPAY_KEY_SECRET (and the optional
// RAZORPAY_API_URL override used by tests).
func NewFromEnv() (*Client, error) {
	keyID := os.Getenv("RAZORPAY_KEY_ID")
	keySecret := os.Getenv("RAZORPAY_KEY_SECRET")
	if keyID == "" || keySecret == "" {
		return nil, fmt.Errorf("razorpay configuration missing")
	}
	return New(keyID, keySecret, os.Getenv("RAZORPAY_API_URL")), nil
}

// KeyID is the public half of the credentials, exposed to the payment widget.
func (c *Client) KeyID() string {
	return c.keyID
}

// CreateOrder registers an order with the gateway for amount in minor
// currency units and returns the gateway's order record.
func (c *Client) CreateOrder(amount int64, currency, receipt string) (*Order, error) {
	payload, _ := json.Marshal(orderRequest{
		Amount:         amount,
		Currency:       currency,
		Receipt:        receipt,
		PaymentCapture: 1,
	})

	req, err := http.NewRequest(http.MethodPost, c.apiURL+"/orders", bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach payment gateway: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Description != "" {
			return nil, fmt.Errorf("gateway order create failed: %s", apiErr.Error.Description)
		}
		return nil, fmt.Errorf("gateway API error (%d): %s", resp.StatusCode, string(body))
	}

	var order Order
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("failed to parse gateway response: %w", err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("gateway returned empty order id")
	}
	return &order, nil
}

// VerifyPaymentSignature checks the callback signature: HMAC-SHA256 of
// "<order_id>|<payment_id>" under the key secret, hex encoded. The compare is
// constant time.
func (c *Client) VerifyPaymentSignature(orderID, paymentID, signature string) error {
	mac := hmac.New(sha256.New, []byte(c.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrSignatureMismatch
	}
	return nil
}

// MinorUnits converts a major-unit total into the gateway's minor currency
// units (e.g. 25.50 -> 2550 paise), rounding half up. This is the only
// precision-sensitive arithmetic in the checkout flow.
func MinorUnits(total decimal.Decimal) int64 {
	return total.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
