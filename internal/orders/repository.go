package orders

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/dvalenzuela/retrade-backend/pkg/db/models"
	"github.com/dvalenzuela/retrade-backend/pkg/enums"
	"github.com/dvalenzuela/retrade-backend/pkg/pagination"
)

var (
	// ErrNotFound is returned when an order row does not exist.
	ErrNotFound = errors.New("sell order not found")
	// ErrDuplicateNumber signals an order number collision on insert.
	ErrDuplicateNumber = errors.New("order number already taken")
)

const pgUniqueViolation = "23505"

// ListFilter narrows the admin order listing.
type ListFilter struct {
	Status *enums.SellOrderStatus
	Cursor *pagination.Cursor
	Limit  int
}

// Repository is the sell order persistence surface.
type Repository interface {
	Create(ctx context.Context, order *models.SellOrder) error
	GetByNumber(ctx context.Context, orderNumber string) (*models.SellOrder, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.SellOrderStatus, statusAt time.Time) error
	List(ctx context.Context, filter ListFilter) ([]models.SellOrder, error)
}

type gormRepository struct {
	conn *gorm.DB
}

// NewRepository builds the GORM-backed sell order repository.
func NewRepository(conn *gorm.DB) Repository {
	return &gormRepository{conn: conn}
}

// Create inserts the order and its item snapshots in one transaction.
func (r *gormRepository) Create(ctx context.Context, order *models.SellOrder) error {
	err := r.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(order).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateNumber
		}
		return err
	}
	return nil
}

func (r *gormRepository) GetByNumber(ctx context.Context, orderNumber string) (*models.SellOrder, error) {
	var order models.SellOrder
	err := r.conn.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Where("order_number = ?", orderNumber).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *gormRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.SellOrderStatus, statusAt time.Time) error {
	result := r.conn.WithContext(ctx).
		Model(&models.SellOrder{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":    status,
			"status_at": statusAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormRepository) List(ctx context.Context, filter ListFilter) ([]models.SellOrder, error) {
	query := r.conn.WithContext(ctx).Model(&models.SellOrder{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			filter.Cursor.CreatedAt, filter.Cursor.CreatedAt, filter.Cursor.ID,
		)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var list []models.SellOrder
	if err := query.Order("created_at DESC, id DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return true
	}
	// sqlite surfaces constraint failures as plain strings
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
