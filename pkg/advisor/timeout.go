package advisor

import (
	"context"
	"log/slog"
	"time"

	"github.com/careops/referralos/pkg/intelligence"
	"github.com/careops/referralos/pkg/models"
)

// DefaultTimeout bounds a single external annotator call.
const DefaultTimeout = 2 * time.Second

// Bounded wraps an annotator with a deadline and a deterministic fallback.
// An annotator that errors or outlives the deadline never blocks the caller:
// the rule-based explanation is substituted and the failure is only logged.
type Bounded struct {
	logger   *slog.Logger
	primary  Annotator
	fallback *RuleBased
	timeout  time.Duration
}

func NewBounded(logger *slog.Logger, primary Annotator, timeout time.Duration) *Bounded {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Bounded{
		logger:   logger.With("module", "advisor"),
		primary:  primary,
		fallback: NewRuleBased(),
		timeout:  timeout,
	}
}

func (b *Bounded) Explain(ctx context.Context, c models.Case, eval intelligence.Evaluation) (Explanation, error) {
	if b.primary == nil {
		return b.fallback.Explain(ctx, c, eval)
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	type outcome struct {
		explanation Explanation
		err         error
	}

	done := make(chan outcome, 1)

	go func() {
		explanation, err := b.primary.Explain(ctx, c, eval)
		done <- outcome{explanation: explanation, err: err}
	}()

	select {
	case result := <-done:
		if result.err != nil {
			b.logger.Warn("Annotator failed, using rule-based explanation",
				"case_id", c.ID, "error", result.err)

			return b.fallback.Explain(ctx, c, eval)
		}

		return result.explanation, nil
	case <-ctx.Done():
		b.logger.Warn("Annotator timed out, using rule-based explanation",
			"case_id", c.ID, "timeout", b.timeout)

		return b.fallback.Explain(context.Background(), c, eval)
	}
}
