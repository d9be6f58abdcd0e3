package infra

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Gateway failures worth retrying. Anything else is final.
var (
	ErrTimeout = errors.New("upstream timed out")
	ErrNetwork = errors.New("upstream unreachable")
)

func NewTimeoutError(details string) error {
	return fmt.Errorf("%w: %s", ErrTimeout, details)
}

func NewNetworkError(details string) error {
	return fmt.Errorf("%w: %s", ErrNetwork, details)
}

// FromTransport classifies an error returned by an HTTP round trip to upstream.
func FromTransport(upstream string, err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return NewTimeoutError(upstream)
	}
	return NewNetworkError(fmt.Sprintf("%s: %v", upstream, err))
}

// FromStatus turns 5xx and 429 answers into retriable errors. Other codes
// return nil and are left to the caller.
func FromStatus(upstream string, code int) error {
	switch {
	case code == http.StatusGatewayTimeout:
		return NewTimeoutError(fmt.Sprintf("%s returned %d", upstream, code))
	case code >= 500 || code == http.StatusTooManyRequests:
		return NewNetworkError(fmt.Sprintf("%s returned %d", upstream, code))
	}
	return nil
}

func IsRetriable(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrNetwork)
}
