package ai

import (
	"errors"
	"fmt"
)

var (
	ErrProviderNotConfigured = errors.New("ai provider not configured")
	ErrEmptyReply            = errors.New("empty reply from generator")
	ErrEmptyClassification   = errors.New("classifier returned no labels")
)

const (
	ServiceClassification = "classification"
	ServiceSummarization  = "summarization"
)

// UpstreamError is returned once an upstream call gave up, either because retries ran out or
// because the failure was not retryable.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s service unavailable: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// ModelLoadingError means the hosted model is still warming up.
type ModelLoadingError struct {
	EstimatedTime float64
}

func (e *ModelLoadingError) Error() string {
	return fmt.Sprintf("model is loading, please try again in %.0fs", e.EstimatedTime)
}

type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api error: %d", e.StatusCode)
}

// TransportError covers timeouts and connection failures.
type TransportError struct {
	Timeout bool
	Err     error
}

func (e *TransportError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("request timeout: %v", e.Err)
	}
	return fmt.Sprintf("connection error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
