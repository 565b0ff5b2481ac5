package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dvalenzuela/retrade-backend/api/middleware"
	"github.com/dvalenzuela/retrade-backend/api/responses"
	"github.com/dvalenzuela/retrade-backend/api/validators"
	"github.com/dvalenzuela/retrade-backend/internal/catalog"
	"github.com/dvalenzuela/retrade-backend/internal/quotecart"
	pkgerrors "github.com/dvalenzuela/retrade-backend/pkg/errors"
	"github.com/dvalenzuela/retrade-backend/pkg/logger"
)

// CartFetch returns the session's current cart snapshot.
func CartFetch(carts *quotecart.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, store.Current())
	}
}

// CartAddItem prices the submitted configuration and appends it to the cart.
func CartAddItem(carts *quotecart.Manager, catalogSvc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload quoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		candidate, err := catalogSvc.BuildQuote(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := store.AddItem(r.Context(), candidate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, cartMutationResponse{
			ItemID:   &itemID,
			Snapshot: store.Current(),
		})
	}
}

// CartRemoveItem drops one item; removing an id the cart does not hold still
// returns the current snapshot.
func CartRemoveItem(carts *quotecart.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid item id"))
			return
		}

		store, err := sessionStore(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store.RemoveItem(r.Context(), itemID)
		responses.WriteSuccess(w, cartMutationResponse{Snapshot: store.Current()})
	}
}

// CartClear empties the session's cart.
func CartClear(carts *quotecart.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store.Clear(r.Context())
		responses.WriteSuccess(w, cartMutationResponse{Snapshot: store.Current()})
	}
}

type cartMutationResponse struct {
	ItemID   *uuid.UUID         `json:"item_id,omitempty"`
	Snapshot quotecart.Snapshot `json:"cart"`
}

func sessionStore(r *http.Request, carts *quotecart.Manager) (*quotecart.Store, error) {
	sessionID := middleware.SessionFromContext(r.Context())
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session context missing")
	}
	store, err := carts.Get(r.Context(), sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load quote cart")
	}
	return store, nil
}
