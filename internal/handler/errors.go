package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/localbazaar/market-service/internal/entities"
	"github.com/localbazaar/market-service/internal/middleware"
	"github.com/localbazaar/market-service/pkg/utils"
)

// requireUser pulls the resolved principal out of the request context and
// writes a 401 when there is none.
func requireUser(w http.ResponseWriter, r *http.Request) (entities.User, bool) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.WriteError(w, "authentication required", http.StatusUnauthorized)
		return entities.User{}, false
	}
	return user, true
}

// writeDomainError maps the domain error taxonomy onto HTTP status codes.
// Unknown errors are logged and surfaced as a plain 500.
func writeDomainError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, entities.ErrValidation):
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, entities.ErrForbidden):
		utils.WriteError(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, entities.ErrShopNotFound),
		errors.Is(err, entities.ErrProductNotFound),
		errors.Is(err, entities.ErrOrderNotFound),
		errors.Is(err, entities.ErrUserNotFound):
		utils.WriteError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, entities.ErrInvalidTransition),
		errors.Is(err, entities.ErrInsufficientStock):
		utils.WriteError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, entities.ErrNotEligible):
		utils.WriteError(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		logger.Error("internal error", slog.Any("error", err))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
	}
}
