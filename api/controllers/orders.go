package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dvalenzuela/retrade-backend/api/middleware"
	"github.com/dvalenzuela/retrade-backend/api/responses"
	"github.com/dvalenzuela/retrade-backend/api/validators"
	"github.com/dvalenzuela/retrade-backend/internal/orders"
	"github.com/dvalenzuela/retrade-backend/pkg/db/models"
	"github.com/dvalenzuela/retrade-backend/pkg/enums"
	pkgerrors "github.com/dvalenzuela/retrade-backend/pkg/errors"
	"github.com/dvalenzuela/retrade-backend/pkg/logger"
)

// OrderSubmit turns the session's cart into a sell order.
func OrderSubmit(svc *orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionFromContext(r.Context())
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session context missing"))
			return
		}

		var payload submitOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePayoutMethod(payload.PayoutMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payout method"))
			return
		}

		order, err := svc.Submit(r.Context(), orders.SubmitInput{
			SessionID:     sessionID,
			CustomerName:  payload.CustomerName,
			CustomerEmail: payload.CustomerEmail,
			PayoutMethod:  method,
			PayoutDetail:  payload.PayoutDetail,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			logg.Info(logg.WithOrderNumber(ctx, order.OrderNumber), "order.submitted")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderResponse(order))
	}
}

// OrderTrack is the customer-facing lookup; it requires both the order number
// and the email it was submitted with.
func OrderTrack(svc *orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number := strings.TrimSpace(r.URL.Query().Get("number"))
		email := strings.TrimSpace(r.URL.Query().Get("email"))
		if number == "" || email == "" {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "number and email query parameters are required"))
			return
		}

		order, err := svc.Track(r.Context(), number, email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

type submitOrderRequest struct {
	CustomerName  string  `json:"customer_name" validate:"required,min=2,max=120"`
	CustomerEmail string  `json:"customer_email" validate:"required,email"`
	PayoutMethod  string  `json:"payout_method" validate:"required"`
	PayoutDetail  *string `json:"payout_detail"`
}

type orderResponse struct {
	OrderNumber   string              `json:"order_number"`
	Status        string              `json:"status"`
	StatusAt      time.Time           `json:"status_at"`
	CustomerName  string              `json:"customer_name"`
	CustomerEmail string              `json:"customer_email"`
	PayoutMethod  string              `json:"payout_method"`
	TotalPayout   decimal.Decimal     `json:"total_payout"`
	Items         []orderItemResponse `json:"items"`
	CreatedAt     time.Time           `json:"created_at"`
}

type orderItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	ModelName     string          `json:"model_name"`
	BrandName     string          `json:"brand_name"`
	CategoryName  string          `json:"category_name"`
	ConditionName string          `json:"condition_name"`
	CarrierName   *string         `json:"carrier_name,omitempty"`
	StorageName   *string         `json:"storage_name,omitempty"`
	Accessories   []string        `json:"accessories,omitempty"`
	QuotedPrice   decimal.Decimal `json:"quoted_price"`
	ImageURL      *string         `json:"image_url,omitempty"`
}

func newOrderResponse(order *models.SellOrder) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ID:            item.ID,
			ModelName:     item.ModelName,
			BrandName:     item.BrandName,
			CategoryName:  item.CategoryName,
			ConditionName: item.ConditionName,
			CarrierName:   item.CarrierName,
			StorageName:   item.StorageName,
			Accessories:   item.Accessories,
			QuotedPrice:   item.QuotedPrice,
			ImageURL:      item.ImageURL,
		})
	}
	return orderResponse{
		OrderNumber:   order.OrderNumber,
		Status:        order.Status.String(),
		StatusAt:      order.StatusAt,
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		PayoutMethod:  order.PayoutMethod.String(),
		TotalPayout:   order.TotalPayout,
		Items:         items,
		CreatedAt:     order.CreatedAt,
	}
}
