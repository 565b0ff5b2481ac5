package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dvalenzuela/retrade-backend/internal/quotecart"
	"github.com/dvalenzuela/retrade-backend/pkg/db/models"
	pkgerrors "github.com/dvalenzuela/retrade-backend/pkg/errors"
	"github.com/dvalenzuela/retrade-backend/pkg/pagination"
)

// maxConditionMultiplier bounds admin multiplier updates; a multiplier above
// this would pay more than a pristine device is worth.
var maxConditionMultiplier = decimal.RequireFromString("1.5")

// ModelPage is one page of device models plus the cursor for the next one.
type ModelPage struct {
	Models     []models.DeviceModel
	NextCursor string
}

// ListModelsInput carries the public listing filters.
type ListModelsInput struct {
	CategoryID *uuid.UUID
	BrandID    *uuid.UUID
	Search     string
	Limit      int
	Cursor     string
}

// QuoteInput selects a device configuration to price.
type QuoteInput struct {
	ModelID            uuid.UUID
	ConditionID        uuid.UUID
	StorageID          *uuid.UUID
	CarrierID          *uuid.UUID
	HasOriginalBox     bool
	HasOriginalCharger bool
}

// Service owns catalog reads and quote pricing.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	return categories, nil
}

func (s *Service) ListBrands(ctx context.Context, categoryID *uuid.UUID) ([]models.Brand, error) {
	brands, err := s.repo.ListBrands(ctx, categoryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list brands")
	}
	return brands, nil
}

func (s *Service) ListConditions(ctx context.Context) ([]models.Condition, error) {
	conditions, err := s.repo.ListConditions(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list conditions")
	}
	return conditions, nil
}

// ListModels returns one cursor page of active models, newest first.
func (s *Service) ListModels(ctx context.Context, input ListModelsInput) (*ModelPage, error) {
	cursor, err := pagination.ParseCursor(input.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(input.Limit)
	list, err := s.repo.ListModels(ctx, ModelFilter{
		CategoryID: input.CategoryID,
		BrandID:    input.BrandID,
		Search:     input.Search,
		Cursor:     cursor,
		Limit:      limit + 1,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list device models")
	}

	page := &ModelPage{Models: list}
	if len(list) > limit {
		page.Models = list[:limit]
		last := page.Models[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}

func (s *Service) GetModel(ctx context.Context, id uuid.UUID) (*models.DeviceModel, error) {
	model, err := s.repo.GetModel(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "device model not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "get device model")
	}
	return model, nil
}

// BuildQuote prices a device configuration and packages it as a cart
// candidate. The offer is (base price + variant adjustments) scaled by the
// condition multiplier, never below zero. Accessory flags ride along on the
// item without affecting the price.
func (s *Service) BuildQuote(ctx context.Context, input QuoteInput) (quotecart.Candidate, error) {
	var zero quotecart.Candidate

	model, err := s.GetModel(ctx, input.ModelID)
	if err != nil {
		return zero, err
	}
	condition, err := s.repo.GetCondition(ctx, input.ConditionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return zero, pkgerrors.New(pkgerrors.CodeNotFound, "condition not found")
		}
		return zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "get condition")
	}
	brand, err := s.repo.GetBrand(ctx, model.BrandID)
	if err != nil {
		return zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "get brand")
	}
	category, err := s.repo.GetCategory(ctx, model.CategoryID)
	if err != nil {
		return zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "get category")
	}

	price := model.BasePrice
	candidate := quotecart.Candidate{
		ModelID:            model.ID,
		ModelName:          model.Name,
		BrandName:          brand.Name,
		CategoryName:       category.Name,
		ConditionID:        condition.ID,
		ConditionName:      condition.Name,
		HasOriginalBox:     input.HasOriginalBox,
		HasOriginalCharger: input.HasOriginalCharger,
		ImageURL:           model.ImageURL,
	}

	if input.StorageID != nil {
		option, ok := findStorage(model.StorageOptions, *input.StorageID)
		if !ok {
			return zero, pkgerrors.New(pkgerrors.CodeValidation, "storage option does not belong to model")
		}
		price = price.Add(option.PriceAdjustment)
		candidate.StorageID = &option.ID
		candidate.StorageName = &option.Label
	}
	if input.CarrierID != nil {
		option, ok := findCarrier(model.CarrierOptions, *input.CarrierID)
		if !ok {
			return zero, pkgerrors.New(pkgerrors.CodeValidation, "carrier option does not belong to model")
		}
		price = price.Add(option.PriceAdjustment)
		candidate.CarrierID = &option.ID
		candidate.CarrierName = &option.Label
	}

	price = price.Mul(condition.Multiplier).Round(2)
	if price.IsNegative() {
		price = decimal.Zero
	}
	candidate.QuotedPrice = price
	return candidate, nil
}

// UpdateBasePrice is the admin repricing path for a device model.
func (s *Service) UpdateBasePrice(ctx context.Context, modelID uuid.UUID, price decimal.Decimal) error {
	if price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "base price cannot be negative")
	}
	if err := s.repo.UpdateModelBasePrice(ctx, modelID, price); err != nil {
		if errors.Is(err, ErrNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "device model not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update base price")
	}
	return nil
}

// UpdateMultiplier is the admin path for retuning a condition tier.
func (s *Service) UpdateMultiplier(ctx context.Context, conditionID uuid.UUID, multiplier decimal.Decimal) error {
	if !multiplier.IsPositive() || multiplier.GreaterThan(maxConditionMultiplier) {
		return pkgerrors.New(pkgerrors.CodeValidation, "multiplier must be greater than 0 and at most 1.5")
	}
	if err := s.repo.UpdateConditionMultiplier(ctx, conditionID, multiplier); err != nil {
		if errors.Is(err, ErrNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "condition not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update multiplier")
	}
	return nil
}

func findStorage(options []models.StorageOption, id uuid.UUID) (*models.StorageOption, bool) {
	for i := range options {
		if options[i].ID == id {
			return &options[i], true
		}
	}
	return nil, false
}

func findCarrier(options []models.CarrierOption, id uuid.UUID) (*models.CarrierOption, bool) {
	for i := range options {
		if options[i].ID == id {
			return &options[i], true
		}
	}
	return nil, false
}
