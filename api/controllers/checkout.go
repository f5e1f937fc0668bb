package controllers

import (
	"net/http"

	"github.com/devhaven/marketplace-backend/api/middleware"
	"github.com/devhaven/marketplace-backend/api/responses"
	"github.com/devhaven/marketplace-backend/api/validators"
	"github.com/devhaven/marketplace-backend/internal/checkout"
	pkgerrors "github.com/devhaven/marketplace-backend/pkg/errors"
	"github.com/devhaven/marketplace-backend/pkg/logger"
)

// Checkout converts the caller's cart into an order.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkout.Request
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.Checkout(r.Context(), middleware.UserIDFromContext(r.Context()), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, resp)
	}
}
