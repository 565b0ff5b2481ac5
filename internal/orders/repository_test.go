package orders

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dvalenzuela/retrade-backend/pkg/db/models"
	"github.com/dvalenzuela/retrade-backend/pkg/enums"
	"github.com/dvalenzuela/retrade-backend/pkg/pagination"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 logger.Discard,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.SellOrder{}, &models.SellOrderItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func testOrder(number string, createdAt time.Time) *models.SellOrder {
	carrier := "Unlocked"
	return &models.SellOrder{
		ID:            uuid.New(),
		OrderNumber:   number,
		SessionID:     "sess-1",
		CustomerName:  "Dana Smith",
		CustomerEmail: "dana@example.com",
		PayoutMethod:  enums.PayoutMethodStoreCredit,
		Status:        enums.SellOrderStatusSubmitted,
		TotalPayout:   decimal.RequireFromString("199.99"),
		StatusAt:      createdAt,
		CreatedAt:     createdAt,
		Items: []models.SellOrderItem{
			{
				ID:            uuid.New(),
				ModelID:       uuid.New(),
				ModelName:     "iPhone 14",
				BrandName:     "Apple",
				CategoryName:  "Phones",
				ConditionID:   uuid.New(),
				ConditionName: "Good",
				CarrierName:   &carrier,
				Accessories:   []string{"original_box"},
				QuotedPrice:   decimal.RequireFromString("199.99"),
				QuotedAt:      createdAt,
			},
		},
	}
}

func TestRepositoryCreateAndGetByNumber(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(openTestDB(t))

	now := time.Now().UTC().Truncate(time.Second)
	order := testOrder("RT-AAAA2222", now)
	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetByNumber(ctx, "RT-AAAA2222")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != order.ID || got.CustomerEmail != "dana@example.com" {
		t.Fatalf("unexpected order %+v", got)
	}
	if len(got.Items) != 1 {
		t.Fatalf("items not preloaded, got %d", len(got.Items))
	}
	if got.Items[0].CarrierName == nil || *got.Items[0].CarrierName != "Unlocked" {
		t.Fatal("carrier name lost")
	}
	if len(got.Items[0].Accessories) != 1 || got.Items[0].Accessories[0] != "original_box" {
		t.Fatalf("accessories lost: %v", got.Items[0].Accessories)
	}
	if !got.TotalPayout.Equal(order.TotalPayout) {
		t.Fatalf("total payout drifted: %s", got.TotalPayout)
	}

	if _, err := repo.GetByNumber(ctx, "RT-MISSING2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepositoryCreateRejectsDuplicateNumber(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(openTestDB(t))

	now := time.Now().UTC()
	if err := repo.Create(ctx, testOrder("RT-DUP22222", now)); err != nil {
		t.Fatalf("first create: %v", err)
	}
	err := repo.Create(ctx, testOrder("RT-DUP22222", now))
	if !errors.Is(err, ErrDuplicateNumber) {
		t.Fatalf("expected ErrDuplicateNumber, got %v", err)
	}
}

func TestRepositoryUpdateStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(openTestDB(t))

	now := time.Now().UTC().Truncate(time.Second)
	order := testOrder("RT-STAT2222", now)
	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("create: %v", err)
	}

	later := now.Add(time.Hour)
	if err := repo.UpdateStatus(ctx, order.ID, enums.SellOrderStatusKitSent, later); err != nil {
		t.Fatalf("update status: %v", err)
	}

	got, err := repo.GetByNumber(ctx, order.OrderNumber)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != enums.SellOrderStatusKitSent {
		t.Fatalf("status not persisted: %s", got.Status)
	}
	if !got.StatusAt.Equal(later) {
		t.Fatalf("status_at not persisted: %s", got.StatusAt)
	}

	if err := repo.UpdateStatus(ctx, uuid.New(), enums.SellOrderStatusKitSent, later); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown id, got %v", err)
	}
}

func TestRepositoryListFiltersAndPaginates(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(openTestDB(t))

	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	var created []*models.SellOrder
	for i := 0; i < 3; i++ {
		order := testOrder(fmt.Sprintf("RT-LIST222%d", i), base.Add(time.Duration(i)*time.Hour))
		if i == 2 {
			order.Status = enums.SellOrderStatusKitSent
		}
		if err := repo.Create(ctx, order); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		created = append(created, order)
	}

	list, err := repo.List(ctx, ListFilter{Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != created[2].ID || list[1].ID != created[1].ID {
		t.Fatalf("unexpected newest-first page: %+v", list)
	}

	list, err = repo.List(ctx, ListFilter{
		Cursor: &pagination.Cursor{CreatedAt: created[1].CreatedAt, ID: created[1].ID},
	})
	if err != nil {
		t.Fatalf("list after cursor: %v", err)
	}
	if len(list) != 1 || list[0].ID != created[0].ID {
		t.Fatalf("unexpected cursor page: %+v", list)
	}

	submitted := enums.SellOrderStatusSubmitted
	list, err = repo.List(ctx, ListFilter{Status: &submitted})
	if err != nil {
		t.Fatalf("list by status: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 submitted orders, got %d", len(list))
	}
}
