package errors

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

var (
	// ErrListingNotFound is returned when a listing id does not exist.
	ErrListingNotFound = errors.New("listing not found")
	// ErrUserNotFound is returned when a user id does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrSellerNotFound is returned when a listing references a nonexistent seller.
	ErrSellerNotFound = errors.New("seller not found")
	// ErrEmailTaken is returned when a user email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidPrice is returned when a price is negative.
	ErrInvalidPrice = errors.New("price must not be negative")
	// ErrInvalidSearchParams is returned when search parameters are out of range.
	ErrInvalidSearchParams = errors.New("invalid search parameters")
)

// ErrorResponse is the standardized error body returned to clients.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError carries a domain error together with its HTTP status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Not-found conditions map
// to 404, referential and validation failures to 400, everything else is an
// internal failure.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrListingNotFound):
		return NewHTTPError(fiber.StatusNotFound, err.Error(), "LISTING_NOT_FOUND")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(fiber.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrSellerNotFound):
		return NewHTTPError(fiber.StatusBadRequest, err.Error(), "SELLER_NOT_FOUND")
	case errors.Is(err, ErrEmailTaken):
		return NewHTTPError(fiber.StatusConflict, err.Error(), "EMAIL_TAKEN")
	case errors.Is(err, ErrInvalidPrice):
		return NewHTTPError(fiber.StatusBadRequest, err.Error(), "INVALID_PRICE")
	case errors.Is(err, ErrInvalidSearchParams):
		return NewHTTPError(fiber.StatusBadRequest, err.Error(), "INVALID_SEARCH_PARAMS")
	default:
		return NewHTTPError(fiber.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
