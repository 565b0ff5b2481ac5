package quotecart

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/dvalenzuela/retrade-backend/pkg/errors"
)

// QuoteItem is one pending device quote held in a session's cart. Items are
// constructed by the store only; consumers describe them via Candidate.
type QuoteItem struct {
	ID                 uuid.UUID       `json:"id"`
	ModelID            uuid.UUID       `json:"model_id"`
	ModelName          string          `json:"model_name"`
	BrandName          string          `json:"brand_name"`
	CategoryName       string          `json:"category_name"`
	ConditionID        uuid.UUID       `json:"condition_id"`
	ConditionName      string          `json:"condition_name"`
	CarrierID          *uuid.UUID      `json:"carrier_id,omitempty"`
	CarrierName        *string         `json:"carrier_name,omitempty"`
	StorageID          *uuid.UUID      `json:"storage_id,omitempty"`
	StorageName        *string         `json:"storage_name,omitempty"`
	HasOriginalBox     bool            `json:"has_original_box"`
	HasOriginalCharger bool            `json:"has_original_charger"`
	QuotedPrice        decimal.Decimal `json:"quoted_price"`
	ImageURL           *string         `json:"image_url,omitempty"`
	AddedAt            time.Time       `json:"added_at"`
}

// Candidate carries everything a QuoteItem needs except the store-generated
// id and timestamp.
type Candidate struct {
	ModelID            uuid.UUID
	ModelName          string
	BrandName          string
	CategoryName       string
	ConditionID        uuid.UUID
	ConditionName      string
	CarrierID          *uuid.UUID
	CarrierName        *string
	StorageID          *uuid.UUID
	StorageName        *string
	HasOriginalBox     bool
	HasOriginalCharger bool
	QuotedPrice        decimal.Decimal
	ImageURL           *string
}

// Validate rejects candidates that would corrupt cart state. Field-level
// pre-validation is the caller's job; this is the store's last line.
func (c Candidate) Validate() error {
	if c.ModelID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "model id is required")
	}
	if c.ConditionID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "condition id is required")
	}
	missing := []string{}
	for field, value := range map[string]string{
		"model_name":     c.ModelName,
		"brand_name":     c.BrandName,
		"category_name":  c.CategoryName,
		"condition_name": c.ConditionName,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quote item is missing identifying fields").
			WithDetails(map[string]any{"fields": missing})
	}
	if c.QuotedPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "quoted price cannot be negative")
	}
	return nil
}

func (c Candidate) toItem(id uuid.UUID, addedAt time.Time) QuoteItem {
	return QuoteItem{
		ID:                 id,
		ModelID:            c.ModelID,
		ModelName:          c.ModelName,
		BrandName:          c.BrandName,
		CategoryName:       c.CategoryName,
		ConditionID:        c.ConditionID,
		ConditionName:      c.ConditionName,
		CarrierID:          copyUUIDPtr(c.CarrierID),
		CarrierName:        copyStringPtr(c.CarrierName),
		StorageID:          copyUUIDPtr(c.StorageID),
		StorageName:        copyStringPtr(c.StorageName),
		HasOriginalBox:     c.HasOriginalBox,
		HasOriginalCharger: c.HasOriginalCharger,
		QuotedPrice:        c.QuotedPrice,
		ImageURL:           copyStringPtr(c.ImageURL),
		AddedAt:            addedAt,
	}
}

func (q QuoteItem) clone() QuoteItem {
	out := q
	out.CarrierID = copyUUIDPtr(q.CarrierID)
	out.CarrierName = copyStringPtr(q.CarrierName)
	out.StorageID = copyUUIDPtr(q.StorageID)
	out.StorageName = copyStringPtr(q.StorageName)
	out.ImageURL = copyStringPtr(q.ImageURL)
	return out
}

func cloneItems(items []QuoteItem) []QuoteItem {
	out := make([]QuoteItem, len(items))
	for i, item := range items {
		out[i] = item.clone()
	}
	return out
}

func copyStringPtr(src *string) *string {
	if src == nil {
		return nil
	}
	val := *src
	return &val
}

func copyUUIDPtr(src *uuid.UUID) *uuid.UUID {
	if src == nil {
		return nil
	}
	val := *src
	return &val
}
