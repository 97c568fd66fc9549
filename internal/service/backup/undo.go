package backup

import (
	"context"
	"log/slog"
)

// undoStack collects compensations for side effects that live outside the
// database transaction.
type undoStack struct {
	steps []undoStep
}

type undoStep struct {
	name string
	fn   func(ctx context.Context) error
}

func (u *undoStack) push(name string, fn func(ctx context.Context) error) {
	u.steps = append(u.steps, undoStep{name: name, fn: fn})
}

func (u *undoStack) len() int {
	return len(u.steps)
}

// run executes every step in reverse order. Failures are logged and do not
// stop the remaining steps. Returns the number of steps that failed.
func (u *undoStack) run(ctx context.Context, logger *slog.Logger) int {
	failed := 0
	for i := len(u.steps) - 1; i >= 0; i-- {
		step := u.steps[i]
		if err := step.fn(ctx); err != nil {
			failed++
			logger.Warn("compensation failed",
				"step", step.name,
				"error", err,
			)
		}
	}
	u.steps = nil
	return failed
}
