package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"nexus-store/internal/auth"
	"nexus-store/internal/model"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MessageResponse acknowledges an operation that has no richer payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// NewValidator returns a validator that reports fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, model.ErrorResponse{
		Error:     code,
		Message:   message,
		RequestID: chimw.GetReqID(r.Context()),
	})
}

// statusFor maps a domain error kind to an HTTP status.
func statusFor(kind model.ErrorKind) int {
	switch kind {
	case model.KindValidation:
		return http.StatusBadRequest
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindForbidden:
		return http.StatusForbidden
	case model.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError renders err. Domain errors keep their code and message;
// anything else is logged and hidden behind a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		logger.Debug().
			Str("code", domainErr.Code).
			Str("path", r.URL.Path).
			Msg(domainErr.Message)
		writeError(w, r, statusFor(domainErr.Kind), domainErr.Code, domainErr.Message)
		return
	}

	logger.Error().
		Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("request_id", chimw.GetReqID(r.Context())).
		Msg("request failed")
	writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "An unexpected error occurred")
}

// decodeJSON decodes the request body into dst and validates it. It writes
// the error response and returns false on failure. With optional set, an
// empty body leaves dst at its zero value.
func decodeJSON(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst any, optional bool) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if !(optional && errors.Is(err, io.EOF)) {
			writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "Request body is not valid JSON")
			return false
		}
	}

	if err := v.Struct(dst); err != nil {
		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "Internal validation error")
			return false
		}
		writeJSON(w, http.StatusBadRequest, model.ValidationErrorResponse{
			Error:   "Validation failed",
			Details: formatValidationErrors(validationErrs),
		})
		return false
	}
	return true
}

func formatValidationErrors(errs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, fe := range errs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			details[field] = "This field is required"
		case "min", "gte":
			details[field] = "Must be at least " + fe.Param()
		case "max", "lte":
			details[field] = "Must be at most " + fe.Param()
		case "gt":
			details[field] = "Must be greater than " + fe.Param()
		case "uuid":
			details[field] = "Must be a valid UUID"
		default:
			details[field] = "Failed on the '" + fe.Tag() + "' rule"
		}
	}
	return details
}

// caller returns the authenticated caller. Routes using it sit behind
// RequireAuth, so a missing caller is answered with 401.
func caller(w http.ResponseWriter, r *http.Request) (*auth.Caller, bool) {
	c, ok := auth.CallerFrom(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, "Authentication credentials were not provided")
	}
	return c, ok
}

// uuidParam parses a UUID path parameter. Malformed ids cannot name an
// existing resource, so they are answered with notFound.
func uuidParam(w http.ResponseWriter, r *http.Request, name string, notFound *model.DomainError) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, r, http.StatusNotFound, notFound.Code, notFound.Message)
		return uuid.Nil, false
	}
	return id, true
}

func int64Param(w http.ResponseWriter, r *http.Request, name string, notFound *model.DomainError) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 1 {
		writeError(w, r, http.StatusNotFound, notFound.Code, notFound.Message)
		return 0, false
	}
	return id, true
}
