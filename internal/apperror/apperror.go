package apperror

import "net/http"

type Code string

const (
	InvalidSymbol    Code = "INVALID_SYMBOL"
	MalformedPayload Code = "MALFORMED_PAYLOAD"
	RateLimited      Code = "RATE_LIMITED"
	NotFound         Code = "NOT_FOUND"
	Transient        Code = "TRANSIENT"
	Store            Code = "STORE"
	Unavailable      Code = "UNAVAILABLE"
	Internal         Code = "INTERNAL"
)

type AppError struct {
	code    Code
	message string
	cause   error
}

func New(code Code, message string) *AppError {
	return &AppError{code: code, message: message}
}

// Wrap attaches an underlying cause, e.g. the provider failure folded into an
// UNAVAILABLE response.
func Wrap(code Code, message string, cause error) *AppError {
	return &AppError{code: code, message: message, cause: cause}
}

func (e *AppError) Error() string   { return e.message }
func (e *AppError) Code() Code      { return e.code }
func (e *AppError) Message() string { return e.message }
func (e *AppError) Unwrap() error   { return e.cause }

func (e *AppError) HTTPStatus() int {
	switch e.code {
	case InvalidSymbol:
		return http.StatusBadRequest
	case MalformedPayload:
		return http.StatusBadGateway
	case NotFound:
		return http.StatusNotFound
	case RateLimited:
		return http.StatusTooManyRequests
	case Unavailable, Transient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
