package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dvalenzuela/retrade-backend/api/responses"
	"github.com/dvalenzuela/retrade-backend/api/validators"
	"github.com/dvalenzuela/retrade-backend/internal/catalog"
	"github.com/dvalenzuela/retrade-backend/pkg/db/models"
	pkgerrors "github.com/dvalenzuela/retrade-backend/pkg/errors"
	"github.com/dvalenzuela/retrade-backend/pkg/logger"
	"github.com/dvalenzuela/retrade-backend/pkg/pagination"
)

func CatalogCategories(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := svc.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]categoryResponse, 0, len(categories))
		for _, category := range categories {
			out = append(out, newCategoryResponse(category))
		}
		responses.WriteSuccess(w, out)
	}
}

func CatalogBrands(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID, err := validators.ParseQueryUUID(r, "category_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		brands, err := svc.ListBrands(r.Context(), categoryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]brandResponse, 0, len(brands))
		for _, brand := range brands {
			out = append(out, newBrandResponse(brand))
		}
		responses.WriteSuccess(w, out)
	}
}

func CatalogConditions(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conditions, err := svc.ListConditions(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]conditionResponse, 0, len(conditions))
		for _, condition := range conditions {
			out = append(out, newConditionResponse(condition))
		}
		responses.WriteSuccess(w, out)
	}
}

func CatalogModels(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID, err := validators.ParseQueryUUID(r, "category_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		brandID, err := validators.ParseQueryUUID(r, "brand_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListModels(r.Context(), catalog.ListModelsInput{
			CategoryID: categoryID,
			BrandID:    brandID,
			Search:     strings.TrimSpace(r.URL.Query().Get("search")),
			Limit:      limit,
			Cursor:     r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := modelPageResponse{
			Models:     make([]modelResponse, 0, len(page.Models)),
			NextCursor: page.NextCursor,
		}
		for _, model := range page.Models {
			out.Models = append(out.Models, newModelResponse(model))
		}
		responses.WriteSuccess(w, out)
	}
}

func CatalogModelDetail(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		modelID, err := uuid.Parse(chi.URLParam(r, "modelId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid model id"))
			return
		}

		model, err := svc.GetModel(r.Context(), modelID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newModelResponse(*model))
	}
}

// CatalogQuotePreview prices a configuration without touching the cart, so
// the frontend can show a live offer while the customer picks options.
func CatalogQuotePreview(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload quoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		candidate, err := svc.BuildQuote(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, quotePreviewResponse{
			ModelID:       candidate.ModelID,
			ModelName:     candidate.ModelName,
			BrandName:     candidate.BrandName,
			ConditionName: candidate.ConditionName,
			StorageName:   candidate.StorageName,
			CarrierName:   candidate.CarrierName,
			QuotedPrice:   candidate.QuotedPrice,
		})
	}
}

type quoteRequest struct {
	ModelID            uuid.UUID  `json:"model_id" validate:"required"`
	ConditionID        uuid.UUID  `json:"condition_id" validate:"required"`
	StorageID          *uuid.UUID `json:"storage_id"`
	CarrierID          *uuid.UUID `json:"carrier_id"`
	HasOriginalBox     bool       `json:"has_original_box"`
	HasOriginalCharger bool       `json:"has_original_charger"`
}

func (q quoteRequest) toInput() catalog.QuoteInput {
	return catalog.QuoteInput{
		ModelID:            q.ModelID,
		ConditionID:        q.ConditionID,
		StorageID:          q.StorageID,
		CarrierID:          q.CarrierID,
		HasOriginalBox:     q.HasOriginalBox,
		HasOriginalCharger: q.HasOriginalCharger,
	}
}

type quotePreviewResponse struct {
	ModelID       uuid.UUID       `json:"model_id"`
	ModelName     string          `json:"model_name"`
	BrandName     string          `json:"brand_name"`
	ConditionName string          `json:"condition_name"`
	StorageName   *string         `json:"storage_name,omitempty"`
	CarrierName   *string         `json:"carrier_name,omitempty"`
	QuotedPrice   decimal.Decimal `json:"quoted_price"`
}

type categoryResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Slug     string    `json:"slug"`
	Position int       `json:"position"`
}

func newCategoryResponse(category models.Category) categoryResponse {
	return categoryResponse{
		ID:       category.ID,
		Name:     category.Name,
		Slug:     category.Slug,
		Position: category.Position,
	}
}

type brandResponse struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Slug    string    `json:"slug"`
	LogoURL *string   `json:"logo_url,omitempty"`
}

func newBrandResponse(brand models.Brand) brandResponse {
	return brandResponse{
		ID:      brand.ID,
		Name:    brand.Name,
		Slug:    brand.Slug,
		LogoURL: brand.LogoURL,
	}
}

type conditionResponse struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Rank        int       `json:"rank"`
}

func newConditionResponse(condition models.Condition) conditionResponse {
	return conditionResponse{
		ID:          condition.ID,
		Code:        condition.Code,
		Name:        condition.Name,
		Description: condition.Description,
		Rank:        condition.Rank,
	}
}

type modelPageResponse struct {
	Models     []modelResponse `json:"models"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

type modelResponse struct {
	ID             uuid.UUID             `json:"id"`
	CategoryID     uuid.UUID             `json:"category_id"`
	BrandID        uuid.UUID             `json:"brand_id"`
	Name           string                `json:"name"`
	Slug           string                `json:"slug"`
	BasePrice      decimal.Decimal       `json:"base_price"`
	ImageURL       *string               `json:"image_url,omitempty"`
	StorageOptions []modelOptionResponse `json:"storage_options"`
	CarrierOptions []modelOptionResponse `json:"carrier_options"`
	CreatedAt      time.Time             `json:"created_at"`
}

type modelOptionResponse struct {
	ID              uuid.UUID       `json:"id"`
	Label           string          `json:"label"`
	PriceAdjustment decimal.Decimal `json:"price_adjustment"`
}

func newModelResponse(model models.DeviceModel) modelResponse {
	out := modelResponse{
		ID:             model.ID,
		CategoryID:     model.CategoryID,
		BrandID:        model.BrandID,
		Name:           model.Name,
		Slug:           model.Slug,
		BasePrice:      model.BasePrice,
		ImageURL:       model.ImageURL,
		StorageOptions: make([]modelOptionResponse, 0, len(model.StorageOptions)),
		CarrierOptions: make([]modelOptionResponse, 0, len(model.CarrierOptions)),
		CreatedAt:      model.CreatedAt,
	}
	for _, option := range model.StorageOptions {
		out.StorageOptions = append(out.StorageOptions, modelOptionResponse{
			ID:              option.ID,
			Label:           option.Label,
			PriceAdjustment: option.PriceAdjustment,
		})
	}
	for _, option := range model.CarrierOptions {
		out.CarrierOptions = append(out.CarrierOptions, modelOptionResponse{
			ID:              option.ID,
			Label:           option.Label,
			PriceAdjustment: option.PriceAdjustment,
		})
	}
	return out
}
