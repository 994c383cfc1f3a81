package errors

import "net/http"

// Payload is the wire form of an Error in API responses:
//
//	{"error": {"code": "MAP_NOT_FOUND", "message": "map not found: m1"}}
//
// The server serializes errors to this shape and the client reconstructs
// them, so codes survive the HTTP round trip.
type Payload struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// ToPayload converts any error to its wire form. Errors without a code are
// reported as internal.
func ToPayload(err error) Payload {
	code := GetCode(err)
	if code == "" {
		code = ErrCodeInternal
	}
	return Payload{Code: code, Message: UserMessage(err)}
}

// Err converts a wire payload back to a structured error.
func (p Payload) Err() *Error {
	code := p.Code
	if code == "" {
		code = ErrCodeInternal
	}
	return &Error{Code: code, Message: p.Message}
}

// HTTPStatus maps an error code to the HTTP status the API serves it with.
func HTTPStatus(code Code) int {
	switch code {
	case ErrCodeInvalidInput, ErrCodeInvalidID, ErrCodeInvalidTitle,
		ErrCodeInvalidShape, ErrCodeInvalidColor, ErrCodeInvalidFormat,
		ErrCodeInvalidGeometry, ErrCodeUnsupported:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodeMapNotFound, ErrCodeNodeNotFound,
		ErrCodeConnectionNotFound, ErrCodeSessionNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized, ErrCodeSessionExpired:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// FromHTTPStatus maps an HTTP status to a fallback error code, used when a
// response carries no structured payload.
func FromHTTPStatus(status int) Code {
	switch {
	case status == http.StatusNotFound:
		return ErrCodeNotFound
	case status == http.StatusUnauthorized:
		return ErrCodeUnauthorized
	case status == http.StatusForbidden:
		return ErrCodeForbidden
	case status == http.StatusTooManyRequests:
		return ErrCodeRateLimited
	case status == http.StatusGatewayTimeout:
		return ErrCodeTimeout
	case status >= 400 && status < 500:
		return ErrCodeInvalidInput
	default:
		return ErrCodeNetwork
	}
}
