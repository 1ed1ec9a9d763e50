// Package retry runs API calls again when the failure looks transient. It sits
// above apiclient, which never retries on its own.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/thenextevent/eventdesk/internal/apiclient"
	"github.com/thenextevent/eventdesk/internal/validation"
)

type Kind string

const (
	KindNetwork    Kind = "network"
	KindAuth       Kind = "auth"
	KindValidation Kind = "validation"
	KindServer     Kind = "server"
	KindUnknown    Kind = "unknown"
)

// Classification describes an error for display and retry decisions.
type Classification struct {
	Kind        Kind
	Message     string
	ShouldRetry bool
}

// Classify sorts err into the user-facing error kinds. Only network and
// server failures are worth retrying.
func Classify(err error) Classification {
	var (
		apiErr   *apiclient.APIError
		tErr     *apiclient.TransportError
		valErr   *validation.Error
		decodeEr *apiclient.DecodeError
	)
	switch {
	case errors.As(err, &valErr):
		return Classification{KindValidation, "The submitted data is invalid. Please review it and try again.", false}
	case errors.Is(err, context.Canceled):
		return Classification{KindUnknown, "The request was cancelled.", false}
	case errors.As(err, &tErr):
		return Classification{KindNetwork, "Could not reach the server. Check your connection.", true}
	case errors.As(err, &apiErr):
		switch {
		case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
			return Classification{KindAuth, "Your session has expired. Please sign in again.", false}
		case apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500:
			return Classification{KindServer, "The server had a problem. Please try again later.", true}
		case apiErr.StatusCode >= 400:
			return Classification{KindValidation, apiErr.Message, false}
		}
	case errors.As(err, &decodeEr):
		return Classification{KindServer, "The server sent an unreadable response.", false}
	}
	msg := "An unexpected error occurred."
	if err != nil {
		msg = err.Error()
	}
	return Classification{KindUnknown, msg, false}
}

type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultPolicy makes three attempts, one second apart at first.
var DefaultPolicy = Policy{MaxAttempts: 3, BaseDelay: time.Second, MaxDelay: 10 * time.Second}

// None performs a single attempt.
var None = Policy{MaxAttempts: 1}

func (p Policy) delay(attempt int) time.Duration {
	d := p.BaseDelay << (attempt - 1)
	if d <= 0 || (p.MaxDelay > 0 && d > p.MaxDelay) {
		d = p.MaxDelay
	}
	if d <= 0 {
		return 0
	}
	// up to 25% jitter
	return d + time.Duration(rand.Int64N(int64(d)/4+1))
}

// Do calls fn until it succeeds, returns a non-retryable error, or the policy
// runs out of attempts.
func Do(ctx context.Context, p Policy, fn func(context.Context) error) error {
	attempts := max(p.MaxAttempts, 1)
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := p.delay(attempt)
			slog.WarnContext(ctx, "retrying request", "attempt", attempt+1, "total_attempts", attempts, "retry_delay_ms", delay.Milliseconds())
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("retry cancelled: %w", errors.Join(ctx.Err(), lastErr))
			}
		}
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !Classify(lastErr).ShouldRetry {
			return lastErr
		}
	}
	return lastErr
}

// Value is Do for calls that produce a result.
func Value[T any](ctx context.Context, p Policy, fn func(context.Context) (T, error)) (T, error) {
	var out T
	err := Do(ctx, p, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}
