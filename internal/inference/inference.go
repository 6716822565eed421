// Package inference talks to LLM inference endpoints. Clients report failures
// inside domain.InferenceResult and never retry on their own.
package inference

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"articlebench/internal/domain"
)

const (
	DefaultTimeout = 300 * time.Second
	DefaultHost    = "localhost:11434"
)

var ErrTimeout = errors.New("inference timeout")

// Client generates text for a prompt with a given model.
type Client interface {
	Generate(ctx context.Context, model string, prompt string) domain.InferenceResult
}

// Error is the error form of a failed InferenceResult. Message keeps the raw
// upstream text.
type Error struct {
	Kind    domain.ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	return target == ErrTimeout && e.Kind == domain.ErrorKindTimeout
}

// ResultError converts a failed result to an *Error; it returns nil for a
// successful one.
func ResultError(r domain.InferenceResult) error {
	if r.Success {
		return nil
	}

	return &Error{Kind: r.ErrorKind, Message: r.Error}
}

// BaseURL turns "host:port" or a full URL into a base URL without a trailing
// slash.
func BaseURL(host string) string {
	host = strings.TrimSpace(host)
	if host == "" {
		host = DefaultHost
	}

	if !strings.Contains(host, "://") {
		host = "http://" + host
	}

	return strings.TrimRight(host, "/")
}

func failure(kind domain.ErrorKind, elapsed time.Duration, format string, args ...any) domain.InferenceResult {
	return domain.InferenceResult{
		Success:   false,
		Elapsed:   elapsed,
		Error:     fmt.Sprintf(format, args...),
		ErrorKind: kind,
	}
}

func transportFailure(err error, timeout time.Duration, elapsed time.Duration) domain.InferenceResult {
	if isTimeout(err) {
		return failure(domain.ErrorKindTimeout, elapsed, "timeout after %s: %v", timeout, err)
	}

	return failure(domain.ErrorKindTransport, elapsed, "do request: %v", err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var urlErr *url.Error

	return errors.As(err, &urlErr) && urlErr.Timeout()
}
