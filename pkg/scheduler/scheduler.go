package scheduler

import (
	"context"
)

//go:generate mockery --name Scheduler --output mocks

// Scheduler defines the interface for a component that schedules a contract
// for finalization once its last required signature lands. The consumer side
// is idempotent, so enqueueing the same contract more than once is harmless.
type Scheduler interface {
	// ScheduleFinalization enqueues a contract for asynchronous finalization.
	ScheduleFinalization(ctx context.Context, contractID string) error
}
