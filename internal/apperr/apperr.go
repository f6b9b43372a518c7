// Package apperr defines the failure kinds that cross package boundaries.
// Callers branch on Kind, never on concrete error types.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Kind classifies a failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindInputInvalid
	KindNotFound
	KindRateLimited
	KindUpstream
	KindInsufficientData
	KindModelTimeout
	KindModelUnavailable
	KindModelUnauthorized
	KindModelInvalidResponse
	KindModelServiceError
	KindModelEmptyResponse
	KindCanceled
)

var kindNames = map[Kind]string{
	KindUnknown:              "unknown",
	KindInputInvalid:         "input_invalid",
	KindNotFound:             "not_found",
	KindRateLimited:          "rate_limited",
	KindUpstream:             "upstream_error",
	KindInsufficientData:     "insufficient_data",
	KindModelTimeout:         "model_timeout",
	KindModelUnavailable:     "model_unavailable",
	KindModelUnauthorized:    "model_unauthorized",
	KindModelInvalidResponse: "model_invalid_response",
	KindModelServiceError:    "model_service_error",
	KindModelEmptyResponse:   "model_empty_response",
	KindCanceled:             "canceled",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsModel reports whether the kind belongs to the inference layer.
func (k Kind) IsModel() bool {
	switch k {
	case KindModelTimeout, KindModelUnavailable, KindModelUnauthorized,
		KindModelInvalidResponse, KindModelServiceError, KindModelEmptyResponse:
		return true
	}
	return false
}

// GenericAnalysisFailure is the only message clients see for inference-layer failures.
const GenericAnalysisFailure = "AI analysis failed. Please try again."

// Error is a classified failure.
type Error struct {
	Kind    Kind
	Message string
	// Status is the upstream HTTP status for KindUpstream and KindModelServiceError.
	Status int
	// ResetAt is set for KindRateLimited.
	ResetAt time.Time
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// UserMessage returns the text safe to show to an end user.
func (e *Error) UserMessage() string {
	switch {
	case e.Kind.IsModel():
		return GenericAnalysisFailure
	case e.Kind == KindUpstream, e.Kind == KindUnknown:
		return "Failed to fetch GitHub data. Please try again."
	case e.Kind == KindRateLimited && !e.ResetAt.IsZero():
		return fmt.Sprintf("GitHub API rate limit exceeded. Resets at %s", e.ResetAt.UTC().Format(time.Kitchen+" MST"))
	}
	return e.Message
}

// New creates a classified error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a classified error around a cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// RateLimited creates a rate limit error carrying the reset time.
func RateLimited(resetAt time.Time, err error) *Error {
	return &Error{Kind: KindRateLimited, Message: "GitHub API rate limit exceeded", ResetAt: resetAt, Err: err}
}

// Upstream creates an upstream failure carrying the remote status.
func Upstream(status int, message string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: message, Status: status, Err: err}
}

// KindOf returns the kind of the first classified error in err's chain.
// Context cancellation is reported as KindCanceled.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	return KindUnknown
}

// As returns the first classified error in err's chain, classifying
// anything else as KindUnknown.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, context.Canceled) {
		return Wrap(KindCanceled, "request canceled", err)
	}
	return Wrap(KindUnknown, "unexpected error", err)
}

// HTTPStatus maps a kind to the status code of the buffered surface.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindInputInvalid:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindInsufficientData:
		return http.StatusUnprocessableEntity
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Payload is the client-facing error body shared by the buffered and
// incremental surfaces.
type Payload struct {
	Error          string `json:"error"`
	Status         int    `json:"status,omitempty"`
	ResetTimestamp int64  `json:"resetTimestamp,omitempty"`
}

// Describe converts err into its HTTP status and client-safe payload.
func Describe(err error) (int, Payload) {
	e := As(err)
	status := HTTPStatus(e.Kind)
	p := Payload{Error: e.UserMessage(), Status: status}
	if e.Kind == KindRateLimited && !e.ResetAt.IsZero() {
		p.ResetTimestamp = e.ResetAt.Unix()
	}
	return status, p
}
