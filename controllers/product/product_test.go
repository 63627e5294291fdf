package productcontroller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/beautynest/ecommerce-api/models"
)

func setup(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Category{}, &models.Product{}, &models.Review{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/products", GetProducts(db))
	r.GET("/products/:slug", GetProductBySlug(db))
	return r, db
}

func get(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seedCatalog(t *testing.T, db *gorm.DB) models.Category {
	t.Helper()
	cat := models.Category{Name: "Toners", Slug: "toners"}
	if err := db.Create(&cat).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	products := []models.Product{
		{Name: "Rose Toner", Slug: "rose-toner", Description: "Soothing rose water",
			CategoryID: &cat.ID, Price: decimal.RequireFromString("10.00"), SkinTypeTags: "dry, sensitive"},
		{Name: "Aloe Gel", Slug: "aloe-gel", Description: "Cooling gel",
			Price: decimal.RequireFromString("5.50"), SkinTypeTags: "oily"},
	}
	for i := range products {
		if err := db.Create(&products[i]).Error; err != nil {
			t.Fatalf("seed product: %v", err)
		}
	}
	return cat
}

func TestSearchByTag(t *testing.T) {
	r, db := setup(t)
	seedCatalog(t, db)

	w := get(t, r, "/products?q=sensitive")
	if w.Code != http.StatusOK {
		t.Fatalf("got %d: %s", w.Code, w.Body.String())
	}
	var products []models.Product
	if err := json.Unmarshal(w.Body.Bytes(), &products); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(products) != 1 || products[0].Slug != "rose-toner" {
		t.Fatalf("expected only rose-toner, got %+v", products)
	}
}

func TestFilterByCategory(t *testing.T) {
	r, db := setup(t)
	cat := seedCatalog(t, db)

	w := get(t, r, fmt.Sprintf("/products?category_id=%d", cat.ID))
	var products []models.Product
	if err := json.Unmarshal(w.Body.Bytes(), &products); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(products) != 1 || products[0].Slug != "rose-toner" {
		t.Fatalf("expected only the categorized product, got %+v", products)
	}
}

func TestProductDetailAverageRating(t *testing.T) {
	r, db := setup(t)
	seedCatalog(t, db)

	var p models.Product
	db.Where("slug = ?", "rose-toner").First(&p)
	db.Create(&models.Review{ProductID: p.ID, Rating: 3, Comment: "fine"})
	db.Create(&models.Review{ProductID: p.ID, Rating: 5, Comment: "love it"})

	w := get(t, r, "/products/rose-toner")
	if w.Code != http.StatusOK {
		t.Fatalf("got %d: %s", w.Code, w.Body.String())
	}
	var out struct {
		AverageRating string          `json:"average_rating"`
		Reviews       []models.Review `json:"reviews"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if avg := decimal.RequireFromString(out.AverageRating); !avg.Equal(decimal.NewFromInt(4)) {
		t.Fatalf("expected average 4, got %s", out.AverageRating)
	}
	if len(out.Reviews) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(out.Reviews))
	}
}

func TestProductDetailNoReviews(t *testing.T) {
	r, db := setup(t)
	seedCatalog(t, db)

	w := get(t, r, "/products/aloe-gel")
	var out struct {
		AverageRating *string `json:"average_rating"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.AverageRating != nil {
		t.Fatalf("expected null average rating, got %v", *out.AverageRating)
	}
}

func TestProductDetailNotFound(t *testing.T) {
	r, db := setup(t)
	seedCatalog(t, db)

	if w := get(t, r, "/products/nope"); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
