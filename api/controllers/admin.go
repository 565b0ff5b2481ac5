package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dvalenzuela/retrade-backend/api/responses"
	"github.com/dvalenzuela/retrade-backend/api/validators"
	"github.com/dvalenzuela/retrade-backend/internal/catalog"
	"github.com/dvalenzuela/retrade-backend/internal/orders"
	"github.com/dvalenzuela/retrade-backend/pkg/enums"
	pkgerrors "github.com/dvalenzuela/retrade-backend/pkg/errors"
	"github.com/dvalenzuela/retrade-backend/pkg/logger"
	"github.com/dvalenzuela/retrade-backend/pkg/pagination"
)

// AdminOrderList is the back-office listing with status filter and cursor.
func AdminOrderList(svc *orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), orders.ListInput{
			Status: r.URL.Query().Get("status"),
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := adminOrderPageResponse{
			Orders:     make([]orderResponse, 0, len(page.Orders)),
			NextCursor: page.NextCursor,
		}
		for i := range page.Orders {
			out.Orders = append(out.Orders, newOrderResponse(&page.Orders[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

func AdminOrderDetail(svc *orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := svc.GetByNumber(r.Context(), chi.URLParam(r, "orderNumber"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// AdminOrderUpdateStatus advances an order along its lifecycle.
func AdminOrderUpdateStatus(svc *orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload updateStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseSellOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		order, err := svc.UpdateStatus(r.Context(), chi.URLParam(r, "orderNumber"), status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithOrderNumber(ctx, order.OrderNumber)
			logg.Info(logg.WithField(ctx, "status", order.Status.String()), "order.status_updated")
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// AdminModelBasePrice reprices a device model.
func AdminModelBasePrice(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		modelID, err := uuid.Parse(chi.URLParam(r, "modelId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid model id"))
			return
		}

		var payload basePriceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.UpdateBasePrice(r.Context(), modelID, payload.BasePrice); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}

// AdminConditionMultiplier retunes a condition tier.
func AdminConditionMultiplier(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conditionID, err := uuid.Parse(chi.URLParam(r, "conditionId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid condition id"))
			return
		}

		var payload multiplierRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.UpdateMultiplier(r.Context(), conditionID, payload.Multiplier); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}

type adminOrderPageResponse struct {
	Orders     []orderResponse `json:"orders"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type basePriceRequest struct {
	BasePrice decimal.Decimal `json:"base_price" validate:"required"`
}

type multiplierRequest struct {
	Multiplier decimal.Decimal `json:"multiplier" validate:"required"`
}
