package expert

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrExpertTimeout indicates the crew exceeded its wait budget.
	ErrExpertTimeout = errors.New("expert invocation timed out")
	// ErrExpertUnavailable indicates the crew could not produce an answer.
	ErrExpertUnavailable = errors.New("experts unavailable")
)

// DefaultTimeout is the wait budget applied when none is configured.
const DefaultTimeout = 5 * time.Minute

// Gateway bounds every invocation with a wait budget and normalizes
// transport failures, so provider error shapes never reach the planner.
// It does not retry; the caller decides whether the user re-triggers.
type Gateway struct {
	invoker Invoker
	timeout time.Duration
}

// NewGateway wraps an invoker with the given wait budget.
func NewGateway(invoker Invoker, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gateway{invoker: invoker, timeout: timeout}
}

// Invoke runs the request under the wait budget.
func (g *Gateway) Invoke(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	raw, err := g.invoker.Invoke(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("%w after %s", ErrExpertTimeout, g.timeout)
		}
		// Attach the cause as text only; the typed provider error stops here.
		return "", fmt.Errorf("%w: %v", ErrExpertUnavailable, err)
	}
	return raw, nil
}
