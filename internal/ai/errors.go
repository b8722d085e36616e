package ai

import (
	"errors"
	"fmt"
)

// Kind classifies a completion failure. The classification decides both
// the user-facing message and whether the request may be retried.
type Kind int

const (
	KindUnknown Kind = iota
	KindNetworkOffline
	KindCredentialMissing
	KindEmptyRequest
	KindAuth
	KindUpstreamRateLimited
	KindBadRequest
	KindUpstreamUnavailable
	KindTimeout
	KindEmptyResponse
	KindService
)

// Retryable reports whether a failure of this kind is transient and may
// be retried.
func (k Kind) Retryable() bool {
	return k == KindTimeout || k == KindUpstreamUnavailable
}

func (k Kind) String() string {
	switch k {
	case KindNetworkOffline:
		return "no internet connection"
	case KindCredentialMissing:
		return "API key is not configured"
	case KindEmptyRequest:
		return "cannot send an empty message"
	case KindAuth:
		return "authentication failed, check your API key"
	case KindUpstreamRateLimited:
		return "rate limited by the AI service, try again shortly"
	case KindBadRequest:
		return "the AI service rejected the request"
	case KindUpstreamUnavailable:
		return "the AI service is temporarily unavailable"
	case KindTimeout:
		return "the AI service took too long to respond"
	case KindEmptyResponse:
		return "the AI service returned an empty response"
	case KindService:
		return "the AI service returned an error"
	default:
		return "failed to get a response from the AI service"
	}
}

// Error is a classified completion failure.
type Error struct {
	Kind    Kind
	Status  int    // HTTP status, when the failure came from a response
	Message string // upstream-provided detail, if any
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindService && e.Status != 0:
		return fmt.Sprintf("the AI service returned status %d", e.Status)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	default:
		return e.Kind.String()
	}
}

// KindOf returns the classification of err, or KindUnknown if err does
// not carry one.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
