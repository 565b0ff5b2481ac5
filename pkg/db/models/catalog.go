package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Category groups device models for browsing (phones, tablets, wearables).
type Category struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Slug      string    `gorm:"column:slug;not null;uniqueIndex"`
	Position  int       `gorm:"column:position;not null;default:0"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Brand is a device manufacturer within a category tree.
type Brand struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Slug      string    `gorm:"column:slug;not null;uniqueIndex"`
	LogoURL   *string   `gorm:"column:logo_url"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// DeviceModel is a sellable device with a base buyback price. Variant options
// and conditions adjust the base before a quote is offered.
type DeviceModel struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	CategoryID     uuid.UUID       `gorm:"column:category_id;type:uuid;not null;index"`
	BrandID        uuid.UUID       `gorm:"column:brand_id;type:uuid;not null;index"`
	Name           string          `gorm:"column:name;not null"`
	Slug           string          `gorm:"column:slug;not null;uniqueIndex"`
	BasePrice      decimal.Decimal `gorm:"column:base_price;type:numeric(12,2);not null"`
	ImageURL       *string         `gorm:"column:image_url"`
	Aliases        pq.StringArray  `gorm:"column:aliases;type:text[]"`
	IsActive       bool            `gorm:"column:is_active;not null;default:true"`
	StorageOptions []StorageOption `gorm:"foreignKey:ModelID;constraint:OnDelete:CASCADE"`
	CarrierOptions []CarrierOption `gorm:"foreignKey:ModelID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// Condition is a quality tier whose multiplier scales the adjusted base price.
type Condition struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Code        string          `gorm:"column:code;not null;uniqueIndex"`
	Name        string          `gorm:"column:name;not null"`
	Description *string         `gorm:"column:description"`
	Multiplier  decimal.Decimal `gorm:"column:multiplier;type:numeric(5,4);not null"`
	Rank        int             `gorm:"column:rank;not null;default:0"`
	IsActive    bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// StorageOption is a capacity variant with a price adjustment against the base.
type StorageOption struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ModelID         uuid.UUID       `gorm:"column:model_id;type:uuid;not null;index"`
	Label           string          `gorm:"column:label;not null"`
	PriceAdjustment decimal.Decimal `gorm:"column:price_adjustment;type:numeric(12,2);not null;default:0"`
	Position        int             `gorm:"column:position;not null;default:0"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// CarrierOption is a carrier-lock variant with a price adjustment against the base.
type CarrierOption struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ModelID         uuid.UUID       `gorm:"column:model_id;type:uuid;not null;index"`
	Label           string          `gorm:"column:label;not null"`
	PriceAdjustment decimal.Decimal `gorm:"column:price_adjustment;type:numeric(12,2);not null;default:0"`
	Position        int             `gorm:"column:position;not null;default:0"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
