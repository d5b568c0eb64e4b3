package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/forgo/accounts/internal/middleware"
	"github.com/forgo/accounts/internal/model"
	"github.com/forgo/accounts/internal/service"
)

// Messages returned with a 200 status in place of an error body
const (
	msgAccountExists = "User already exists"
	msgLoginOK       = "Login successful"
	msgDeleted       = "User successfully deleted!"
)

// MapServiceError converts a service error to a ProblemDetails response.
// This centralizes error handling logic for all handlers, ensuring consistent
// HTTP status codes and error messages across the API.
func MapServiceError(err error) *model.ProblemDetails {
	if err == nil {
		return nil
	}

	switch {
	// ===== Validation Errors → 400 =====
	case errors.Is(err, service.ErrEmailRequired):
		return model.NewValidationError([]model.FieldError{{Field: "email", Message: err.Error()}})
	case errors.Is(err, service.ErrIDRequired),
		errors.Is(err, service.ErrInvalidID):
		return model.NewValidationError([]model.FieldError{{Field: "id", Message: err.Error()}})
	case errors.Is(err, service.ErrPasswordTooLong):
		return model.NewValidationError([]model.FieldError{{Field: "password", Message: err.Error()}})
	case errors.Is(err, service.ErrInvalidInput):
		return model.NewBadRequestError(err.Error())

	// ===== Not Found → 404 =====
	case errors.Is(err, service.ErrAccountNotFound):
		return model.NewNotFoundError("account")

	// ===== Conflict → 409 =====
	case errors.Is(err, service.ErrAccountExists):
		return model.NewConflictError(err.Error())

	// ===== Authentication → 401 =====
	case errors.Is(err, service.ErrInvalidCredentials):
		return model.NewUnauthorizedError(err.Error())

	// ===== Internal → 500 =====
	case errors.Is(err, service.ErrCredentialCheck):
		return model.NewInternalError(service.ErrCredentialCheck.Error())

	// ===== Persistence → 500 with the store's text =====
	default:
		return model.NewDatabaseError(err.Error())
	}
}

// writeCreateError is the create-specific view of MapServiceError: an
// existing account is reported as a 200 plain-text body rather than a conflict
func writeCreateError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, service.ErrAccountExists) {
		WriteText(w, http.StatusOK, msgAccountExists)
		return
	}
	writeServiceError(w, r, err)
}

// writeServiceError maps err and logs anything that became a 500
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	problem := MapServiceError(err)
	if problem.Status >= http.StatusInternalServerError {
		slog.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.String("error", err.Error()),
		)
	}
	WriteError(w, problem)
}
