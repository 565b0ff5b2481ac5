package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dvalenzuela/retrade-backend/pkg/db/models"
	"github.com/dvalenzuela/retrade-backend/pkg/pagination"
)

// ErrNotFound is returned when a catalog row does not exist or is inactive.
var ErrNotFound = errors.New("catalog record not found")

// ModelFilter narrows the device model listing.
type ModelFilter struct {
	CategoryID *uuid.UUID
	BrandID    *uuid.UUID
	Search     string
	Cursor     *pagination.Cursor
	Limit      int
}

// Repository is the catalog persistence surface.
type Repository interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListBrands(ctx context.Context, categoryID *uuid.UUID) ([]models.Brand, error)
	ListConditions(ctx context.Context) ([]models.Condition, error)
	ListModels(ctx context.Context, filter ModelFilter) ([]models.DeviceModel, error)
	GetModel(ctx context.Context, id uuid.UUID) (*models.DeviceModel, error)
	GetCondition(ctx context.Context, id uuid.UUID) (*models.Condition, error)
	GetBrand(ctx context.Context, id uuid.UUID) (*models.Brand, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
	UpdateModelBasePrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) error
	UpdateConditionMultiplier(ctx context.Context, id uuid.UUID, multiplier decimal.Decimal) error
}

type gormRepository struct {
	conn *gorm.DB
}

// NewRepository builds the GORM-backed catalog repository.
func NewRepository(conn *gorm.DB) Repository {
	return &gormRepository{conn: conn}
}

func (r *gormRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.conn.WithContext(ctx).
		Where("is_active = ?", true).
		Order("position ASC, name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *gormRepository) ListBrands(ctx context.Context, categoryID *uuid.UUID) ([]models.Brand, error) {
	query := r.conn.WithContext(ctx).
		Model(&models.Brand{}).
		Where("brands.is_active = ?", true)

	if categoryID != nil {
		query = query.
			Joins("JOIN device_models ON device_models.brand_id = brands.id").
			Where("device_models.category_id = ? AND device_models.is_active = ?", *categoryID, true).
			Distinct("brands.*")
	}

	var brands []models.Brand
	if err := query.Order("brands.name ASC").Find(&brands).Error; err != nil {
		return nil, err
	}
	return brands, nil
}

func (r *gormRepository) ListConditions(ctx context.Context) ([]models.Condition, error) {
	var conditions []models.Condition
	err := r.conn.WithContext(ctx).
		Where("is_active = ?", true).
		Order("rank ASC").
		Find(&conditions).Error
	if err != nil {
		return nil, err
	}
	return conditions, nil
}

func (r *gormRepository) ListModels(ctx context.Context, filter ModelFilter) ([]models.DeviceModel, error) {
	query := r.conn.WithContext(ctx).
		Preload("StorageOptions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("CarrierOptions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("is_active = ?", true)

	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.BrandID != nil {
		query = query.Where("brand_id = ?", *filter.BrandID)
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(term)+"%")
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

	var list []models.DeviceModel
	if err := query.Order("created_at DESC, id DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *gormRepository) GetModel(ctx context.Context, id uuid.UUID) (*models.DeviceModel, error) {
	var model models.DeviceModel
	err := r.conn.WithContext(ctx).
		Preload("StorageOptions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("CarrierOptions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ? AND is_active = ?", id, true).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &model, nil
}

func (r *gormRepository) GetCondition(ctx context.Context, id uuid.UUID) (*models.Condition, error) {
	var condition models.Condition
	err := r.conn.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&condition).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &condition, nil
}

func (r *gormRepository) GetBrand(ctx context.Context, id uuid.UUID) (*models.Brand, error) {
	var brand models.Brand
	err := r.conn.WithContext(ctx).Where("id = ?", id).First(&brand).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &brand, nil
}

func (r *gormRepository) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	err := r.conn.WithContext(ctx).Where("id = ?", id).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *gormRepository) UpdateModelBasePrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) error {
	result := r.conn.WithContext(ctx).
		Model(&models.DeviceModel{}).
		Where("id = ?", id).
		Update("base_price", price)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormRepository) UpdateConditionMultiplier(ctx context.Context, id uuid.UUID, multiplier decimal.Decimal) error {
	result := r.conn.WithContext(ctx).
		Model(&models.Condition{}).
		Where("id = ?", id).
		Update("multiplier", multiplier)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
