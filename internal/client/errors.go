package client

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/sony/gobreaker/v2"
)

// NetworkError reports a call that produced no response: a transport failure,
// a deadline, or a call rejected by the circuit breaker.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// BreakerOpen reports whether the call was rejected without reaching the API.
func (e *NetworkError) BreakerOpen() bool {
	return errors.Is(e.Err, gobreaker.ErrOpenState) || errors.Is(e.Err, gobreaker.ErrTooManyRequests)
}

// ValidationError is a 4xx response carrying structured field errors.
type ValidationError struct {
	Status  int
	Details []catalog.ErrorDetail
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		msgs = append(msgs, d.Message())
	}
	return fmt.Sprintf("validation failed (%d): %s", e.Status, strings.Join(msgs, "; "))
}

// NotFoundError is a 404 response.
type NotFoundError struct {
	ID      catalog.ID
	Details []catalog.ErrorDetail
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return "resource not found"
	}
	return fmt.Sprintf("product %s not found", e.ID)
}

// StatusError is any other non-2xx response.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Status)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Body)
}
