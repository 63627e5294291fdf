package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMinorUnits(t *testing.T) {
	cases := []struct {
		total string
		want  int64
	}{
		{"25.50", 2550},
		{"10.00", 1000},
		{"19.99", 1999},
		{"0", 0},
		{"10.005", 1001}, // half rounds up
		{"10.004", 1000},
	}
	for _, tc := range cases {
		got := MinorUnits(decimal.RequireFromString(tc.total))
		if got != tc.want {
			t.Errorf("MinorUnits(%s) = %d, want %d", tc.total, got, tc.want)
		}
	}
}

func TestCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "rzp_test_key" || pass != "secret" {
			t.Errorf("unexpected basic auth %s:%s", user, pass)
		}
		var req struct {
			Amount         int64  `json:"amount"`
			Currency       string `json:"currency"`
			PaymentCapture int    `json:"payment_capture"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Amount != 2550 || req.Currency != "INR" || req.PaymentCapture != 1 {
			t.Errorf("unexpected order request: %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":       "order_test123",
			"amount":   req.Amount,
			"currency": req.Currency,
			"status":   "created",
		})
	}))
	defer srv.Close()

	client := New("rzp_test_key", "secret", srv.URL)
	order, err := client.CreateOrder(2550, "INR", "receipt-1")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.ID != "order_test123" {
		t.Fatalf("expected order_test123, got %s", order.ID)
	}
}

func TestCreateOrderGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"code": "BAD_REQUEST_ERROR", "description": "amount too small"},
		})
	}))
	defer srv.Close()

	client := New("rzp_test_key", "secret", srv.URL)
	if _, err := client.CreateOrder(1, "INR", ""); err == nil {
		t.Fatal("expected error from gateway")
	}
}

func TestVerifyPaymentSignature(t *testing.T) {
	client := New("rzp_test_key", "secret", "")

	mac := hmac.New(sha256.New, []byte("secret"))
	mac.Write([]byte("order_test123|pay_test456"))
	sig := hex.EncodeToString(mac.Sum(nil))

	if err := client.VerifyPaymentSignature("order_test123", "pay_test456", sig); err != nil {
		t.Fatalf("expected valid signature, got %v", err)
	}

	err := client.VerifyPaymentSignature("order_test123", "pay_test456", "tampered")
	if err != ErrSignatureMismatch {
		t.Fatalf("expected ErrSignatureMismatch, got %v", err)
	}
}
