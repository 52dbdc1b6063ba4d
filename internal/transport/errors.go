package transport

import (
	"errors"
	"net/http"

	"stock-manager/internal/middleware"
	"stock-manager/internal/repository"
	"stock-manager/internal/service"
	"stock-manager/internal/stock"

	"go.uber.org/zap"
)

// respondServiceError translates service and repository errors into HTTP
// responses with the structured error body.
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		middleware.RespondWithError(w, http.StatusBadRequest, validationErr.Message)
		return
	}

	var stockErr *stock.InsufficientStockError
	if errors.As(err, &stockErr) {
		middleware.RespondWithError(w, http.StatusConflict, stockErr.Error())
		return
	}

	if isNotFound(err) {
		middleware.RespondWithError(w, http.StatusNotFound, err.Error())
		return
	}

	if service.IsDuplicate(err) {
		middleware.RespondWithError(w, http.StatusConflict, err.Error())
		return
	}

	logger.Error("Request failed", zap.Error(err))
	middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrClientNotFound) ||
		errors.Is(err, repository.ErrProductNotFound) ||
		errors.Is(err, repository.ErrCategoryNotFound) ||
		errors.Is(err, repository.ErrSaleNotFound) ||
		errors.Is(err, repository.ErrPurchaseNotFound) ||
		errors.Is(err, repository.ErrUserNotFound)
}

// decodeValidated decodes the body into v and writes a 400 response on
// failure. Returns false when the request was already answered.
func decodeValidated(w http.ResponseWriter, r *http.Request, logger *zap.Logger, v interface{}) bool {
	if err := middleware.DecodeAndValidate(r, v); err != nil {
		logger.Debug("Request validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return false
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
