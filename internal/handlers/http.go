package handlers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/galettery/galettery/internal/errors"
	"github.com/galettery/galettery/internal/repository"
	"github.com/galettery/galettery/internal/services"
)

// Error codes for standardized API error responses
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodePrecondition       = "PRECONDITION_FAILED"
	ErrCodeInternalServer     = "INTERNAL_SERVER_ERROR"
	ErrCodeOrderingClosed     = "ORDERING_CLOSED"
	ErrCodeSessionIncomplete  = "SESSION_INCOMPLETE"
	ErrCodeEmptyCart          = "EMPTY_CART"
	ErrCodeProductUnavailable = "PRODUCT_UNAVAILABLE"
	ErrCodePriceChanged       = "PRICE_CHANGED"
	ErrCodeInvalidLine        = "INVALID_LINE"
)

// APIError represents an error with an HTTP status code and error code
type APIError struct {
	Status  int         `json:"-"`
	Code    string      `json:"code"`
	Message string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Common errors
var (
	ErrBadRequest     = &APIError{Status: http.StatusBadRequest, Code: ErrCodeBadRequest, Message: "Bad request"}
	ErrUnauthorized   = &APIError{Status: http.StatusUnauthorized, Code: ErrCodeUnauthorized, Message: "Unauthorized"}
	ErrNotFound       = &APIError{Status: http.StatusNotFound, Code: ErrCodeNotFound, Message: "Not found"}
	ErrInternalServer = &APIError{Status: http.StatusInternalServerError, Code: ErrCodeInternalServer, Message: "Internal server error"}
)

// NewAPIError creates a new API error with custom message and code
func NewAPIError(status int, code, message string) *APIError {
	return &APIError{Status: status, Code: code, Message: message}
}

// BadRequest creates a 400 error with custom message
func BadRequest(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: ErrCodeBadRequest, Message: message}
}

// Unauthorized creates a 401 error with custom message
func Unauthorized(message string) *APIError {
	return &APIError{Status: http.StatusUnauthorized, Code: ErrCodeUnauthorized, Message: message}
}

// NotFound creates a 404 error with custom message
func NotFound(message string) *APIError {
	return &APIError{Status: http.StatusNotFound, Code: ErrCodeNotFound, Message: message}
}

// Conflict creates a 409 error with custom message
func Conflict(message string) *APIError {
	return &APIError{Status: http.StatusConflict, Code: ErrCodeConflict, Message: message}
}

// InternalError creates a 500 error, logs the original error
func InternalError(err error) *APIError {
	log.Printf("Internal error: %v", err)
	return &APIError{Status: http.StatusInternalServerError, Code: ErrCodeInternalServer, Message: "Internal server error"}
}

// respondJSON writes a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondOK writes a 200 OK JSON response
func respondOK(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusOK, data)
}

// respondCreated writes a 201 Created JSON response
func respondCreated(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusCreated, data)
}

// respondSuccess writes a 200 OK with a message
func respondSuccess(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusOK, map[string]string{"message": message})
}

// respondDeleted writes a 204 No Content response
func respondDeleted(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// respondPNG writes an image response
func respondPNG(w http.ResponseWriter, png []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(png)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, err error) {
	if apiErr, ok := err.(*APIError); ok {
		respondJSON(w, apiErr.Status, apiErr)
		return
	}
	// Convert service errors to appropriate API errors
	apiErr := ToAPIError(err)
	respondJSON(w, apiErr.Status, apiErr)
}

// decodeJSON decodes JSON from request body into the target
func decodeJSON(r *http.Request, target interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		if err == io.EOF {
			return BadRequest("Request body is empty")
		}
		return BadRequest("Invalid JSON: " + err.Error())
	}
	return nil
}

// decodeOptionalJSON is decodeJSON that accepts an empty body
func decodeOptionalJSON(r *http.Request, target interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil && err != io.EOF {
		return BadRequest("Invalid JSON: " + err.Error())
	}
	return nil
}

// parseIntParam extracts and parses an integer URL parameter
func parseIntParam(r *http.Request, name string) (int, error) {
	param := chi.URLParam(r, name)
	if param == "" {
		return 0, BadRequest("Missing " + name + " parameter")
	}
	id, err := strconv.Atoi(param)
	if err != nil {
		return 0, BadRequest("Invalid " + name + " parameter")
	}
	return id, nil
}

// parseIntQuery reads an optional integer query parameter
func parseIntQuery(r *http.Request, name string, fallback int) (int, error) {
	param := r.URL.Query().Get(name)
	if param == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(param)
	if err != nil {
		return 0, BadRequest("Invalid " + name + " parameter")
	}
	return n, nil
}

// serviceErrorCodes maps sentinel service errors to status and code
var serviceErrorCodes = map[*services.ServiceError]struct {
	status int
	code   string
}{
	services.ErrOrderingClosed:     {http.StatusConflict, ErrCodeOrderingClosed},
	services.ErrSessionIncomplete:  {http.StatusUnprocessableEntity, ErrCodeSessionIncomplete},
	services.ErrEmptyCart:          {http.StatusUnprocessableEntity, ErrCodeEmptyCart},
	services.ErrProductUnavailable: {http.StatusConflict, ErrCodeProductUnavailable},
	services.ErrNotACart:           {http.StatusConflict, ErrCodeConflict},
	services.ErrCartMismatch:       {http.StatusConflict, ErrCodeConflict},
	services.ErrSessionNotFound:    {http.StatusNotFound, ErrCodeNotFound},
	services.ErrTicketNotFound:     {http.StatusNotFound, ErrCodeNotFound},
	services.ErrPersonNotFound:     {http.StatusNotFound, ErrCodeNotFound},
	services.ErrNoConfiguration:    {http.StatusNotFound, ErrCodeNotFound},
	services.ErrNoBackendURL:       {http.StatusPreconditionFailed, ErrCodePrecondition},
	services.ErrNoBaseURL:          {http.StatusPreconditionFailed, ErrCodePrecondition},
}

// ToAPIError converts service errors to appropriate API errors
func ToAPIError(err error) *APIError {
	var priceErr *services.PriceMismatchError
	if stderrors.As(err, &priceErr) {
		return &APIError{
			Status:  http.StatusConflict,
			Code:    ErrCodePriceChanged,
			Message: priceErr.Error(),
			Details: map[string]interface{}{
				"item_id":  priceErr.ItemID,
				"stored":   priceErr.Stored,
				"computed": priceErr.Computed,
			},
		}
	}
	var lineErr *services.InvalidLineError
	if stderrors.As(err, &lineErr) {
		return &APIError{
			Status:  http.StatusUnprocessableEntity,
			Code:    ErrCodeInvalidLine,
			Message: lineErr.Error(),
			Details: map[string]interface{}{
				"item_id": lineErr.ItemID,
				"issues":  lineErr.Issues,
			},
		}
	}

	// Check for application errors
	var appErr *errors.Error
	if stderrors.As(err, &appErr) {
		switch appErr.Kind {
		case errors.ErrNotFound:
			return NotFound(appErr.Message)
		case errors.ErrValidation, errors.ErrInvalidInput:
			return &APIError{Status: http.StatusBadRequest, Code: ErrCodeValidation, Message: appErr.Error()}
		case errors.ErrConflict:
			return Conflict(appErr.Message)
		case errors.ErrPrecondition:
			return &APIError{Status: http.StatusPreconditionFailed, Code: ErrCodePrecondition, Message: appErr.Message}
		default:
			return InternalError(err)
		}
	}

	var svcErr *services.ServiceError
	if stderrors.As(err, &svcErr) {
		if m, ok := serviceErrorCodes[svcErr]; ok {
			return &APIError{Status: m.status, Code: m.code, Message: svcErr.Message}
		}
		code := ErrCodeBadRequest
		if strings.Contains(strings.ToLower(svcErr.Message), "invalid") {
			code = ErrCodeValidation
		}
		return &APIError{Status: http.StatusBadRequest, Code: code, Message: svcErr.Message}
	}
	var tableErr *services.InvalidTableError
	if stderrors.As(err, &tableErr) {
		return &APIError{Status: http.StatusBadRequest, Code: ErrCodeValidation, Message: tableErr.Error()}
	}
	if stderrors.Is(err, repository.ErrNotFound) {
		return NotFound("Not found")
	}

	return InternalError(err)
}
