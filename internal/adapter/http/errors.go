package http

import (
	"context"
	"errors"

	"resume-builder/internal/export"
	"resume-builder/internal/model"
	"resume-builder/internal/store"
	"resume-builder/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// requestError is a malformed request detected before reaching the service.
type requestError struct {
	status  int
	code    string
	message string
	field   string
}

func (e *requestError) Error() string { return e.message }

func writeError(c *fiber.Ctx, status int, code, message, field string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: requestID(c),
		Error:     errorEnvelope{Code: code, Message: message, Field: field},
	})
}

// respond maps domain errors to status codes. Validation messages are safe
// to show; anything else is reported generically and logged.
func respond(c *fiber.Ctx, err error) error {
	var (
		re *requestError
		ve *model.ValidationError
		pe *store.PersistenceError
		ee *export.ExportError
	)
	switch {
	case errors.As(err, &re):
		return writeError(c, re.status, re.code, re.message, re.field)
	case errors.As(err, &ve):
		return writeError(c, fiber.StatusUnprocessableEntity, "VALIDATION_FAILED", ve.Message, ve.Field)
	case errors.Is(err, export.ErrExportInProgress):
		return writeError(c, fiber.StatusConflict, "EXPORT_IN_PROGRESS", "an export of this resume is already running", "")
	case errors.Is(err, usecase.ErrStaleAssist):
		return writeError(c, fiber.StatusConflict, "STALE_ASSIST", "the field changed before the draft arrived", "")
	case errors.As(err, &pe):
		log.Error().Err(err).Str("request_id", requestID(c)).Msg("persistence failed")
		return writeError(c, fiber.StatusServiceUnavailable, "PERSISTENCE_UNAVAILABLE", "changes are kept but could not be saved", "")
	case errors.As(err, &ee):
		log.Error().Err(err).Str("request_id", requestID(c)).Str("stage", ee.Stage).Msg("export failed")
		return writeError(c, fiber.StatusInternalServerError, "EXPORT_FAILED", "export failed", "")
	case errors.Is(err, context.DeadlineExceeded):
		return writeError(c, fiber.StatusGatewayTimeout, "TIMEOUT", "request timed out", "")
	}
	log.Error().Err(err).Str("request_id", requestID(c)).Msg("unhandled error")
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", "")
}

// ErrorHandler standardises errors that escape the handlers.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}
		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request", "")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found", "")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed", "")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error", "")
		}
	}
}
