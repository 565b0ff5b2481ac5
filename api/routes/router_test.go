package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dvalenzuela/retrade-backend/api/middleware"
	"github.com/dvalenzuela/retrade-backend/internal/catalog"
	"github.com/dvalenzuela/retrade-backend/internal/orders"
	"github.com/dvalenzuela/retrade-backend/internal/quotecart"
	"github.com/dvalenzuela/retrade-backend/pkg/config"
	"github.com/dvalenzuela/retrade-backend/pkg/db/models"
)

type fixture struct {
	router    http.Handler
	modelID   uuid.UUID
	storageID uuid.UUID
	condID    uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = conn.AutoMigrate(
		&models.Category{}, &models.Brand{}, &models.DeviceModel{},
		&models.Condition{}, &models.StorageOption{}, &models.CarrierOption{},
		&models.SellOrder{}, &models.SellOrderItem{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	category := models.Category{ID: uuid.New(), Name: "Phones", Slug: "phones", IsActive: true}
	brand := models.Brand{ID: uuid.New(), Name: "Apple", Slug: "apple", IsActive: true}
	condition := models.Condition{
		ID: uuid.New(), Code: "good", Name: "Good",
		Multiplier: decimal.RequireFromString("0.8"), IsActive: true,
	}
	model := models.DeviceModel{
		ID: uuid.New(), CategoryID: category.ID, BrandID: brand.ID,
		Name: "iPhone 14", Slug: "iphone-14",
		BasePrice: decimal.RequireFromString("400.00"),
		IsActive:  true, CreatedAt: time.Now().UTC(),
	}
	storage := models.StorageOption{
		ID: uuid.New(), ModelID: model.ID, Label: "256GB",
		PriceAdjustment: decimal.RequireFromString("50.00"),
	}
	for _, row := range []any{&category, &brand, &condition, &model, &storage} {
		if err := conn.Create(row).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	carts := quotecart.NewManager(func(string) (quotecart.Adapter, error) {
		return quotecart.NewMemoryAdapter(), nil
	}, quotecart.Options{}, nil)

	catalogSvc := catalog.NewService(catalog.NewRepository(conn))
	ordersSvc := orders.NewService(orders.NewRepository(conn), carts, "RT")

	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.Admin.Token = "admin-token"
	cfg.CORS.AllowedOrigins = []string{"*"}

	return &fixture{
		router: NewRouter(Deps{
			Config:  cfg,
			Carts:   carts,
			Catalog: catalogSvc,
			Orders:  ordersSvc,
		}),
		modelID:   model.ID,
		storageID: storage.ID,
		condID:    condition.ID,
	}
}

func (f *fixture) do(t *testing.T, method, path, session string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set(middleware.SessionHeader, session)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, rec.Body.String())
	}
	if err := json.Unmarshal(envelope.Data, dest); err != nil {
		t.Fatalf("decode data: %v (body %s)", err, rec.Body.String())
	}
}

type cartView struct {
	Cart struct {
		Items []struct {
			ID          string `json:"id"`
			ModelName   string `json:"model_name"`
			QuotedPrice string `json:"quoted_price"`
		} `json:"items"`
		TotalPrice string `json:"total_price"`
		ItemCount  int    `json:"item_count"`
	} `json:"cart"`
	ItemID *string `json:"item_id"`
}

func TestHealthAndCatalogRoutes(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/health/live", "", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("live: expected 200, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/api/v1/catalog/categories", "", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("categories: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var categories []struct {
		Name string `json:"name"`
	}
	decodeData(t, rec, &categories)
	if len(categories) != 1 || categories[0].Name != "Phones" {
		t.Fatalf("unexpected categories %+v", categories)
	}

	rec = f.do(t, http.MethodGet, "/api/v1/catalog/models", "", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("models: expected 200, got %d", rec.Code)
	}
	var page struct {
		Models []struct {
			Name           string `json:"name"`
			StorageOptions []struct {
				Label string `json:"label"`
			} `json:"storage_options"`
		} `json:"models"`
	}
	decodeData(t, rec, &page)
	if len(page.Models) != 1 || len(page.Models[0].StorageOptions) != 1 {
		t.Fatalf("unexpected models page %+v", page)
	}
}

func TestQuotePreviewPricing(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/catalog/quote", "", map[string]any{
		"model_id":     f.modelID,
		"condition_id": f.condID,
		"storage_id":   f.storageID,
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("quote: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var quote struct {
		QuotedPrice string `json:"quoted_price"`
	}
	decodeData(t, rec, &quote)
	// (400 + 50) * 0.8
	if quote.QuotedPrice != "360" {
		t.Fatalf("unexpected quoted price %q", quote.QuotedPrice)
	}
}

func TestCartFlow(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/cart/items", "", map[string]any{
		"model_id":     f.modelID,
		"condition_id": f.condID,
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add item: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	session := rec.Header().Get(middleware.SessionHeader)
	if session == "" {
		t.Fatal("expected a session id header on first cart call")
	}
	var added cartView
	decodeData(t, rec, &added)
	if added.ItemID == nil || added.Cart.ItemCount != 1 {
		t.Fatalf("unexpected add response %+v", added)
	}
	if added.Cart.TotalPrice != "320" {
		t.Fatalf("unexpected total %q", added.Cart.TotalPrice)
	}

	rec = f.do(t, http.MethodGet, "/api/v1/cart/", session, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("fetch: expected 200, got %d", rec.Code)
	}
	var fetched struct {
		ItemCount int `json:"item_count"`
		Items     []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	decodeData(t, rec, &fetched)
	if fetched.ItemCount != 1 || fetched.Items[0].ID != *added.ItemID {
		t.Fatalf("session did not stick: %+v", fetched)
	}

	rec = f.do(t, http.MethodDelete, "/api/v1/cart/items/"+*added.ItemID, session, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("remove: expected 200, got %d", rec.Code)
	}
	var removed cartView
	decodeData(t, rec, &removed)
	if removed.Cart.ItemCount != 0 {
		t.Fatalf("item not removed: %+v", removed)
	}
}

func TestOrderSubmitTrackAndAdminLifecycle(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/cart/items", "", map[string]any{
		"model_id":     f.modelID,
		"condition_id": f.condID,
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add item: got %d", rec.Code)
	}
	session := rec.Header().Get(middleware.SessionHeader)

	rec = f.do(t, http.MethodPost, "/api/v1/orders/", session, map[string]any{
		"customer_name":  "Dana Smith",
		"customer_email": "dana@example.com",
		"payout_method":  "store_credit",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	var submitted struct {
		OrderNumber string `json:"order_number"`
		Status      string `json:"status"`
		TotalPayout string `json:"total_payout"`
	}
	decodeData(t, rec, &submitted)
	if submitted.Status != "submitted" || submitted.OrderNumber == "" {
		t.Fatalf("unexpected submit response %+v", submitted)
	}
	if submitted.TotalPayout != "320" {
		t.Fatalf("unexpected payout %q", submitted.TotalPayout)
	}

	// cart is cleared after a committed order
	rec = f.do(t, http.MethodGet, "/api/v1/cart/", session, nil, nil)
	var cart struct {
		ItemCount int `json:"item_count"`
	}
	decodeData(t, rec, &cart)
	if cart.ItemCount != 0 {
		t.Fatalf("cart should be empty after submit, has %d", cart.ItemCount)
	}

	rec = f.do(t, http.MethodGet,
		"/api/v1/orders/track?number="+submitted.OrderNumber+"&email=dana@example.com",
		session, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("track: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodGet,
		"/api/v1/orders/track?number="+submitted.OrderNumber+"&email=wrong@example.com",
		session, nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("track with wrong email: expected 404, got %d", rec.Code)
	}

	// admin surface requires the bearer token
	statusBody := map[string]any{"status": "kit_sent"}
	rec = f.do(t, http.MethodPost, "/api/admin/v1/orders/"+submitted.OrderNumber+"/status", "", statusBody, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("admin without token: expected 401, got %d", rec.Code)
	}

	auth := map[string]string{"Authorization": "Bearer admin-token"}
	rec = f.do(t, http.MethodPost, "/api/admin/v1/orders/"+submitted.OrderNumber+"/status", "", statusBody, auth)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin status update: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var updated struct {
		Status string `json:"status"`
	}
	decodeData(t, rec, &updated)
	if updated.Status != "kit_sent" {
		t.Fatalf("unexpected status %q", updated.Status)
	}

	// skipping straight to paid is refused
	rec = f.do(t, http.MethodPost, "/api/admin/v1/orders/"+submitted.OrderNumber+"/status", "",
		map[string]any{"status": "paid"}, auth)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid transition: expected 422, got %d (%s)", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodGet, "/api/admin/v1/orders/?status=kit_sent", "", nil, auth)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin list: expected 200, got %d", rec.Code)
	}
	var listed struct {
		Orders []struct {
			OrderNumber string `json:"order_number"`
		} `json:"orders"`
	}
	decodeData(t, rec, &listed)
	if len(listed.Orders) != 1 || listed.Orders[0].OrderNumber != submitted.OrderNumber {
		t.Fatalf("unexpected admin listing %+v", listed)
	}
}

func TestAdminPricingEndpoints(t *testing.T) {
	f := newFixture(t)
	auth := map[string]string{"Authorization": "Bearer admin-token"}

	rec := f.do(t, http.MethodPatch, "/api/admin/v1/models/"+f.modelID.String()+"/base-price", "",
		map[string]any{"base_price": "350.00"}, auth)
	if rec.Code != http.StatusOK {
		t.Fatalf("base price update: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodPost, "/api/v1/catalog/quote", "", map[string]any{
		"model_id":     f.modelID,
		"condition_id": f.condID,
	}, nil)
	var quote struct {
		QuotedPrice string `json:"quoted_price"`
	}
	decodeData(t, rec, &quote)
	// 350 * 0.8
	if quote.QuotedPrice != "280" {
		t.Fatalf("new base price not reflected, got %q", quote.QuotedPrice)
	}

	rec = f.do(t, http.MethodPatch, "/api/admin/v1/conditions/"+f.condID.String()+"/multiplier", "",
		map[string]any{"multiplier": "2.0"}, auth)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("out-of-range multiplier: expected 400, got %d", rec.Code)
	}
}
