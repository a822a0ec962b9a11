package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrStatus marks a response outside the 2xx range.
var ErrStatus = errors.New("unexpected status")

// FetchError reports a failed fetch. StatusCode is zero when no response
// was received.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: http %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Retryable reports whether err is worth another attempt: network failures,
// timeouts, 408, 429 and 5xx responses. Context cancellation is never retried.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var fe *FetchError
	if !errors.As(err, &fe) {
		return false
	}
	switch {
	case fe.StatusCode == 0:
		return true
	case fe.StatusCode == http.StatusRequestTimeout, fe.StatusCode == http.StatusTooManyRequests:
		return true
	case fe.StatusCode >= 500:
		return true
	}
	return false
}
