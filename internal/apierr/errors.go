// Package apierr classifies failures of remote storage calls into a few
// sentinels and retries the transient ones with exponential backoff.
//
// Adapters wrap SDK errors with Classify; callers test the result with
// errors.Is(err, apierr.ErrRateLimit) and friends.
package apierr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/aws/smithy-go"
)

// Sentinel errors for remote storage failures.
var (
	// ErrRateLimit indicates the service asked us to slow down (retryable).
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrTimeout indicates a request or connection timed out (retryable).
	ErrTimeout = errors.New("request timeout")

	// ErrUnavailable indicates a 5xx answer or a dropped connection (retryable).
	ErrUnavailable = errors.New("service unavailable")

	// ErrAuthFailed indicates rejected or missing credentials.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrBadRequest indicates a client error that retrying will not fix,
	// such as a missing bucket.
	ErrBadRequest = errors.New("bad request")
)

// statusCoder is implemented by the SDK's HTTP response errors.
type statusCoder interface {
	HTTPStatusCode() int
}

var throttleCodes = map[string]bool{
	"SlowDown":             true,
	"Throttling":           true,
	"ThrottlingException":  true,
	"RequestLimitExceeded": true,
	"TooManyRequests":      true,
	"RequestThrottled":     true,
}

var authCodes = map[string]bool{
	"AccessDenied":          true,
	"InvalidAccessKeyId":    true,
	"SignatureDoesNotMatch": true,
	"ExpiredToken":          true,
	"InvalidToken":          true,
}

// Classify wraps err with the sentinel matching its cause, keeping the
// original error in the chain. Unrecognized errors are returned unchanged,
// and so are context cancellations.
func Classify(err error) error {
	if err == nil || errors.Is(err, context.Canceled) {
		return err
	}
	if sentinel := sentinelFor(err); sentinel != nil {
		return fmt.Errorf("%w: %w", sentinel, err)
	}
	return err
}

func sentinelFor(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		switch {
		case throttleCodes[code]:
			return ErrRateLimit
		case code == "RequestTimeout":
			return ErrTimeout
		case authCodes[code]:
			return ErrAuthFailed
		}
	}

	var sc statusCoder
	if errors.As(err, &sc) {
		switch s := sc.HTTPStatusCode(); {
		case s == http.StatusTooManyRequests:
			return ErrRateLimit
		case s == http.StatusRequestTimeout:
			return ErrTimeout
		case s == http.StatusUnauthorized || s == http.StatusForbidden:
			return ErrAuthFailed
		case s >= 500:
			return ErrUnavailable
		case s >= 400:
			return ErrBadRequest
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrTimeout
		}
		return ErrUnavailable
	}
	return nil
}

// Retryable reports whether err is worth another attempt.
func Retryable(err error) bool {
	return errors.Is(err, ErrRateLimit) || errors.Is(err, ErrTimeout) || errors.Is(err, ErrUnavailable)
}
