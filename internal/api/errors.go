package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// Kind classifies a failed API call.
type Kind string

const (
	KindNetwork    Kind = "NetworkError"
	KindValidation Kind = "ValidationError"
	KindConflict   Kind = "ConflictError"
	KindSession    Kind = "SessionError"
	KindUnknown    Kind = "UnknownError"
)

// Error codes carried in Error.Code.
const (
	CodeNetwork         = "NETWORK_ERROR"
	CodeValidation      = "VALIDATION_ERROR"
	CodeConflict        = "CONFLICT"
	CodeUserExists      = "USER_EXISTS"
	CodeSessionExpired  = "SESSION_EXPIRED"
	CodeServer          = "SERVER_ERROR"
	CodeUnknown         = "UNKNOWN_ERROR"
	CodeInvalidResponse = "INVALID_RESPONSE"
)

const networkErrorMessage = "Network error. Please check your connection."

// Error is returned by every Client call that does not succeed.
type Error struct {
	Kind      Kind              `json:"kind"`
	Status    int               `json:"status,omitempty"`
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	Retryable bool              `json:"retryable,omitempty"`
	Err       error             `json:"-"`
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// KindOf returns the Kind of err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	if apiErr, ok := AsError(err); ok {
		return apiErr.Kind
	}
	return KindUnknown
}

// NewValidationError builds the error used for client-side form checks.
func NewValidationError(message string, fields map[string]string) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    CodeValidation,
		Message: message,
		Fields:  fields,
	}
}

func newNetworkError(err error) *Error {
	return &Error{
		Kind:      KindNetwork,
		Code:      CodeNetwork,
		Message:   networkErrorMessage,
		Retryable: true,
		Err:       err,
	}
}

func newInvalidResponse(err error) *Error {
	return &Error{
		Kind:    KindUnknown,
		Code:    CodeInvalidResponse,
		Message: "unexpected response from server",
		Err:     err,
	}
}

var fieldPatterns = []struct {
	re    *regexp.Regexp
	field string
}{
	{regexp.MustCompile(`(?i)email already (exists|registered|in use)`), "email"},
	{regexp.MustCompile(`(?i)already exists`), "email"},
	{regexp.MustCompile(`(?i)invalid email`), "email"},
	{regexp.MustCompile(`(?i)password (too short|must be)`), "password"},
	{regexp.MustCompile(`(?i)missing.+first_?name`), "firstName"},
	{regexp.MustCompile(`(?i)missing.+last_?name`), "lastName"},
	{regexp.MustCompile(`(?i)missing.+email`), "email"},
	{regexp.MustCompile(`(?i)missing.+password`), "password"},
}

// FieldsFromMessage maps a backend message onto the form field it concerns.
// It returns nil when no pattern matches.
func FieldsFromMessage(message string) map[string]string {
	for _, p := range fieldPatterns {
		if p.re.MatchString(message) {
			return map[string]string{p.field: message}
		}
	}
	return nil
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func messageFrom(status int, body []byte) string {
	var eb errorBody
	if json.Unmarshal(body, &eb) == nil {
		if msg := strings.TrimSpace(eb.Error); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(eb.Message); msg != "" {
			return msg
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "Unknown server error"
}

// classify turns a non-2xx response into an *Error.
func classify(status int, body []byte) *Error {
	msg := messageFrom(status, body)
	e := &Error{Status: status, Message: msg}
	switch {
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		e.Kind = KindValidation
		e.Code = CodeValidation
		e.Fields = FieldsFromMessage(msg)
	case status == http.StatusConflict:
		e.Kind = KindConflict
		e.Code = CodeConflict
		e.Fields = FieldsFromMessage(msg)
	case status == http.StatusUnauthorized:
		e.Kind = KindSession
		e.Code = CodeSessionExpired
	case status >= 500:
		e.Kind = KindUnknown
		e.Code = CodeServer
		e.Retryable = true
	default:
		e.Kind = KindUnknown
		e.Code = CodeUnknown
	}
	return e
}
