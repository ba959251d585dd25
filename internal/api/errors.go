package api

import (
	"errors"
	"net/http"

	"github.com/Nostradam4ik/fraud-detection-ml/internal/middleware"
	"github.com/Nostradam4ik/fraud-detection-ml/internal/service"
)

// writeServiceError maps service-layer errors to HTTP statuses. Every
// response body carries a human-readable message and nothing else.
func writeServiceError(w http.ResponseWriter, err error) {
	var validationErr *service.ValidationError

	switch {
	case errors.As(err, &validationErr):
		middleware.WriteError(w, http.StatusUnprocessableEntity, validationErr.Error())
	case errors.Is(err, service.ErrUsernameTaken), errors.Is(err, service.ErrEmailTaken):
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		middleware.WriteError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrUserNotFound):
		middleware.WriteError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrAccountDisabled):
		middleware.WriteError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrModelNotLoaded):
		middleware.WriteError(w, http.StatusServiceUnavailable,
			"Model not loaded. Please ensure the model files exist.")
	default:
		middleware.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
