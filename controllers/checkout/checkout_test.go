package checkoutControllers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	cartControllers "github.com/beautynest/ecommerce-api/controllers/cart"
	"github.com/beautynest/ecommerce-api/gateway"
	"github.com/beautynest/ecommerce-api/models"
)

const (
	testKeyID     = "rzp_test_key"
	testKeySecret = "secret"
)

type testEnv struct {
	db      *gorm.DB
	srv     *httptest.Server
	client  *http.Client
	gwCalls *int
}

func defaultGatewayHandler(calls *int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		*calls++
		json.NewEncoder(w).Encode(map[string]any{
			"id":       "order_gw_1",
			"amount":   2550,
			"currency": "INR",
			"status":   "created",
		})
	}
}

func newTestEnv(t *testing.T, gwHandler http.HandlerFunc) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{}, &models.Profile{}, &models.Category{}, &models.Product{},
		&models.Review{}, &models.ContactMessage{}, &models.Order{}, &models.OrderItem{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	calls := new(int)
	if gwHandler == nil {
		gwHandler = defaultGatewayHandler(calls)
	} else {
		orig := gwHandler
		gwHandler = func(w http.ResponseWriter, r *http.Request) {
			*calls++
			orig(w, r)
		}
	}
	gwSrv := httptest.NewServer(gwHandler)
	t.Cleanup(gwSrv.Close)
	gw := gateway.New(testKeyID, testKeySecret, gwSrv.URL)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-session-secret"))))
	r.Use(func(c *gin.Context) { c.Set("user_id", "user-1") })
	r.POST("/user/cart/:product_id", cartControllers.AddToCart(db))
	r.POST("/user/checkout", InitiateCheckout(db, gw))
	r.POST("/payment/callback/:orderID", PaymentCallback(db, gw))
	r.GET("/payment/callback/:orderID", PaymentStatus(db))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	jar, _ := cookiejar.New(nil)
	return &testEnv{db: db, srv: srv, client: &http.Client{Jar: jar}, gwCalls: calls}
}

func (e *testEnv) seedProducts(t *testing.T) (models.Product, models.Product) {
	t.Helper()
	a := models.Product{Name: "Rose Toner", Slug: "rose-toner", Price: decimal.RequireFromString("10.00")}
	b := models.Product{Name: "Aloe Gel", Slug: "aloe-gel", Price: decimal.RequireFromString("5.50")}
	if err := e.db.Create(&a).Error; err != nil {
		t.Fatalf("seed product a: %v", err)
	}
	if err := e.db.Create(&b).Error; err != nil {
		t.Fatalf("seed product b: %v", err)
	}
	return a, b
}

func (e *testEnv) post(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	var body string
	if form != nil {
		body = form.Encode()
	}
	req, err := http.NewRequest(http.MethodPost, e.srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	resp, err := e.client.Do(req)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func signCallback(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testKeySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func callbackForm(gwOrderID, paymentID, signature string) url.Values {
	return url.Values{
		"razorpay_order_id":   {gwOrderID},
		"razorpay_payment_id": {paymentID},
		"razorpay_signature":  {signature},
	}
}

// fillCart puts {A x2, B x1} in the session cart: total 25.50.
func (e *testEnv) fillCart(t *testing.T, a, b models.Product) {
	t.Helper()
	for _, id := range []uint{a.ID, a.ID, b.ID} {
		resp := e.post(t, fmt.Sprintf("/user/cart/%d", id), nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("add to cart returned %d", resp.StatusCode)
		}
	}
}

func (e *testEnv) checkout(t *testing.T) (orderID uint, gwOrderID string) {
	t.Helper()
	resp := e.post(t, "/user/checkout", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("checkout returned %d", resp.StatusCode)
	}
	var out struct {
		OrderID        uint   `json:"order_id"`
		GatewayOrderID string `json:"gateway_order_id"`
		Amount         int64  `json:"amount"`
	}
	decodeBody(t, resp, &out)
	return out.OrderID, out.GatewayOrderID
}

func TestCheckoutEmptyCartNeverCallsGateway(t *testing.T) {
	e := newTestEnv(t, nil)

	resp := e.post(t, "/user/checkout", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty cart, got %d", resp.StatusCode)
	}
	if *e.gwCalls != 0 {
		t.Fatalf("gateway was called %d times for an empty cart", *e.gwCalls)
	}

	var count int64
	e.db.Model(&models.Order{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no orders, found %d", count)
	}
}

func TestCheckoutCreatesPendingOrder(t *testing.T) {
	e := newTestEnv(t, nil)
	a, b := e.seedProducts(t)
	e.fillCart(t, a, b)

	resp := e.post(t, "/user/checkout", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("checkout returned %d", resp.StatusCode)
	}
	var out struct {
		OrderID        uint   `json:"order_id"`
		GatewayOrderID string `json:"gateway_order_id"`
		GatewayKeyID   string `json:"gateway_key_id"`
		Amount         int64  `json:"amount"`
	}
	decodeBody(t, resp, &out)

	if out.Amount != 2550 {
		t.Fatalf("expected minor-unit amount 2550, got %d", out.Amount)
	}
	if out.GatewayOrderID != "order_gw_1" {
		t.Fatalf("unexpected gateway order id %q", out.GatewayOrderID)
	}
	if out.GatewayKeyID != testKeyID {
		t.Fatalf("unexpected gateway key id %q", out.GatewayKeyID)
	}

	var order models.Order
	if err := e.db.First(&order, out.OrderID).Error; err != nil {
		t.Fatalf("load order: %v", err)
	}
	if order.Paid {
		t.Fatal("freshly created order must be unpaid")
	}
	if want := decimal.RequireFromString("25.50"); !order.Total.Equal(want) {
		t.Fatalf("expected total %s, got %s", want, order.Total)
	}
}

func TestCallbackSuccessMaterializesItemsOnce(t *testing.T) {
	e := newTestEnv(t, nil)
	a, b := e.seedProducts(t)
	e.fillCart(t, a, b)
	orderID, gwOrderID := e.checkout(t)

	// keep the pre-callback session cookie so the replay below still carries
	// a populated cart
	srvURL, _ := url.Parse(e.srv.URL)
	preCallbackCookies := e.client.Jar.Cookies(srvURL)

	form := callbackForm(gwOrderID, "pay_1", signCallback(gwOrderID, "pay_1"))
	resp := e.post(t, fmt.Sprintf("/payment/callback/%d", orderID), form)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("callback returned %d", resp.StatusCode)
	}

	var order models.Order
	if err := e.db.Preload("Items").First(&order, orderID).Error; err != nil {
		t.Fatalf("load order: %v", err)
	}
	if !order.Paid {
		t.Fatal("order should be paid after verified callback")
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 order items, got %d", len(order.Items))
	}
	for _, it := range order.Items {
		if it.ProductID != nil && *it.ProductID == a.ID {
			if it.Quantity != 2 || !it.Price.Equal(decimal.RequireFromString("10.00")) {
				t.Fatalf("unexpected item snapshot %+v", it)
			}
		}
	}

	// replay the identical callback with the stale (uncleared) cart cookie
	req, _ := http.NewRequest(http.MethodPost,
		fmt.Sprintf("%s/payment/callback/%d", e.srv.URL, orderID),
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, ck := range preCallbackCookies {
		req.AddCookie(ck)
	}
	replay, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("replay callback: %v", err)
	}
	replay.Body.Close()
	if replay.StatusCode != http.StatusOK {
		t.Fatalf("replayed callback returned %d", replay.StatusCode)
	}

	var itemCount int64
	e.db.Model(&models.OrderItem{}).Where("order_id = ?", orderID).Count(&itemCount)
	if itemCount != 2 {
		t.Fatalf("replayed callback duplicated items: got %d rows", itemCount)
	}
}

func TestCallbackTamperedSignature(t *testing.T) {
	e := newTestEnv(t, nil)
	a, b := e.seedProducts(t)
	e.fillCart(t, a, b)
	orderID, gwOrderID := e.checkout(t)

	resp := e.post(t, fmt.Sprintf("/payment/callback/%d", orderID),
		callbackForm(gwOrderID, "pay_1", "deadbeef"))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for tampered signature, got %d", resp.StatusCode)
	}
	var out struct {
		Error    string `json:"error"`
		Redirect string `json:"redirect"`
	}
	decodeBody(t, resp, &out)
	if out.Redirect != "/user/checkout" {
		t.Fatalf("expected redirect back to checkout, got %q", out.Redirect)
	}

	var order models.Order
	if err := e.db.First(&order, orderID).Error; err != nil {
		t.Fatalf("load order: %v", err)
	}
	if order.Paid {
		t.Fatal("order must stay unpaid after failed verification")
	}
	var itemCount int64
	e.db.Model(&models.OrderItem{}).Where("order_id = ?", orderID).Count(&itemCount)
	if itemCount != 0 {
		t.Fatalf("no items should exist after failed verification, got %d", itemCount)
	}
}

func TestCallbackUnknownOrder(t *testing.T) {
	e := newTestEnv(t, nil)

	resp := e.post(t, "/payment/callback/9999",
		callbackForm("order_gw_1", "pay_1", signCallback("order_gw_1", "pay_1")))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown order, got %d", resp.StatusCode)
	}
}

func TestCallbackStatusUnknownOrder(t *testing.T) {
	e := newTestEnv(t, nil)

	resp, err := e.client.Get(e.srv.URL + "/payment/callback/9999")
	if err != nil {
		t.Fatalf("GET callback: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	var out struct {
		Error    string `json:"error"`
		Redirect string `json:"redirect"`
	}
	decodeBody(t, resp, &out)
	if out.Redirect != "/user/checkout" {
		t.Fatalf("expected redirect to checkout, got %q", out.Redirect)
	}
}

func TestCheckoutGatewayFailureLeavesNoOrder(t *testing.T) {
	e := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"code": "BAD_REQUEST_ERROR", "description": "auth failed"},
		})
	})
	a, b := e.seedProducts(t)
	e.fillCart(t, a, b)

	resp := e.post(t, "/user/checkout", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502 on gateway failure, got %d", resp.StatusCode)
	}

	var count int64
	e.db.Model(&models.Order{}).Count(&count)
	if count != 0 {
		t.Fatalf("gateway failure must not create a local order, found %d", count)
	}
}
