package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/dvalenzuela/retrade-backend/pkg/enums"
)

// SellOrder is a submitted buyback order built from a session's quote cart.
type SellOrder struct {
	ID            uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber   string                `gorm:"column:order_number;not null;uniqueIndex"`
	SessionID     string                `gorm:"column:session_id;not null;index"`
	CustomerName  string                `gorm:"column:customer_name;not null"`
	CustomerEmail string                `gorm:"column:customer_email;not null;index"`
	PayoutMethod  enums.PayoutMethod    `gorm:"column:payout_method;not null"`
	PayoutDetail  *string               `gorm:"column:payout_detail"`
	Status        enums.SellOrderStatus `gorm:"column:status;not null;default:'submitted'"`
	TotalPayout   decimal.Decimal       `gorm:"column:total_payout;type:numeric(12,2);not null"`
	Items         []SellOrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	StatusAt      time.Time             `gorm:"column:status_at;not null"`
	CreatedAt     time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// SellOrderItem snapshots a quote cart item at submission time. The quoted
// price is frozen here; later catalog price changes do not touch it.
type SellOrderItem struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID       uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ModelID       uuid.UUID       `gorm:"column:model_id;type:uuid;not null"`
	ModelName     string          `gorm:"column:model_name;not null"`
	BrandName     string          `gorm:"column:brand_name;not null"`
	CategoryName  string          `gorm:"column:category_name;not null"`
	ConditionID   uuid.UUID       `gorm:"column:condition_id;type:uuid;not null"`
	ConditionName string          `gorm:"column:condition_name;not null"`
	CarrierName   *string         `gorm:"column:carrier_name"`
	StorageName   *string         `gorm:"column:storage_name"`
	Accessories   pq.StringArray  `gorm:"column:accessories;type:text[]"`
	QuotedPrice   decimal.Decimal `gorm:"column:quoted_price;type:numeric(12,2);not null"`
	ImageURL      *string         `gorm:"column:image_url"`
	QuotedAt      time.Time       `gorm:"column:quoted_at;not null"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
