package middleware

import (
	"net/http"

	"github.com/devhaven/marketplace-backend/api/responses"
	"github.com/devhaven/marketplace-backend/pkg/enums"
	pkgerrors "github.com/devhaven/marketplace-backend/pkg/errors"
	"github.com/devhaven/marketplace-backend/pkg/logger"
)

// Action names a guarded operation on the API surface.
type Action string

const (
	ActionManageOwnProducts Action = "products.manage"
	ActionViewAnalytics     Action = "analytics.view"
	ActionTransitionOrder   Action = "orders.transition"
	ActionRespondToReview   Action = "reviews.respond"
	ActionManageCategories  Action = "categories.manage"
)

// allowedRoles is the single source of truth for role checks. Ownership
// checks (does this seller own this product) stay in the services, where
// the rows are loaded anyway.
var allowedRoles = map[Action][]enums.UserRole{
	ActionManageOwnProducts: {enums.UserRoleSeller, enums.UserRoleAdmin},
	ActionViewAnalytics:     {enums.UserRoleSeller, enums.UserRoleAdmin},
	ActionTransitionOrder:   {enums.UserRoleAdmin},
	ActionRespondToReview:   {enums.UserRoleSeller, enums.UserRoleAdmin},
	ActionManageCategories:  {enums.UserRoleAdmin},
}

func authorize(role string, action Action) bool {
	for _, allowed := range allowedRoles[action] {
		if string(allowed) == role {
			return true
		}
	}
	return false
}

// Authorize guards a subtree with the shared policy table so every denied
// request sees identical Forbidden semantics.
func Authorize(action Action, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !authorize(RoleFromContext(r.Context()), action) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
