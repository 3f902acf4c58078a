package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/avrorin/identity-server/internal/model"
)

// ValidationError describes a single failed field constraint.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// ValidationErrorResponse is returned for malformed or invalid input.
type ValidationErrorResponse struct {
	Message string            `json:"message"`
	Status  int               `json:"status"`
	Success bool              `json:"success"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

func validateRequest(obj any) []ValidationError {
	err := validate.Struct(obj)
	if err == nil {
		return nil
	}

	var validationErrors []ValidationError
	for _, fieldErr := range err.(validator.ValidationErrors) {
		validationErrors = append(validationErrors, ValidationError{
			Field:   fieldErr.Field(),
			Message: validationMessage(fieldErr),
			Type:    fieldErr.Tag(),
		})
	}

	return validationErrors
}

func validationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		return "Value is too short"
	case "max":
		return "Value is too long"
	case "eqfield":
		return "Values do not match"
	default:
		return "Invalid value"
	}
}

func respondValidationErrors(c *gin.Context, validationErrors []ValidationError) {
	c.JSON(http.StatusUnprocessableEntity, ValidationErrorResponse{
		Message: "Invalid request data",
		Status:  http.StatusUnprocessableEntity,
		Success: false,
		Errors:  validationErrors,
	})
}

func respondMalformedBody(c *gin.Context) {
	c.JSON(http.StatusUnprocessableEntity, ValidationErrorResponse{
		Message: "Invalid request body",
		Status:  http.StatusUnprocessableEntity,
		Success: false,
	})
}

// handleError maps service failures to HTTP responses. Token failures
// collapse into a generic 401 so the client cannot distinguish malformed,
// expired and revoked tokens.
func (h *Auth) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrEmailTaken):
		c.JSON(http.StatusConflict, MessageResponse{
			Message: "The email has already been taken.",
			Status:  http.StatusConflict,
			Success: false,
		})
	case errors.Is(err, model.ErrInvalidCredentials):
		c.JSON(http.StatusUnprocessableEntity, MessageResponse{
			Message: "The provided credentials are incorrect.",
			Status:  http.StatusUnprocessableEntity,
			Success: false,
		})
	case errors.Is(err, model.ErrInvalidToken),
		errors.Is(err, model.ErrTokenExpired),
		errors.Is(err, model.ErrTokenRevoked),
		errors.Is(err, model.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, MessageResponse{
			Message: "Unauthenticated",
			Status:  http.StatusUnauthorized,
			Success: false,
		})
	default:
		h.logger.Error("Auth handler: request failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, MessageResponse{
			Message: "Internal server error",
			Status:  http.StatusInternalServerError,
			Success: false,
		})
	}
}
