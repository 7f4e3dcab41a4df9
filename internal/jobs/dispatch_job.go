package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/partner"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
)

// DispatchJob runs the dispatch cycle in a background goroutine: advance
// order statuses, then attempt one batch assignment. The job never stops
// on its own; after a failed cycle it sleeps the error backoff instead of
// the poll interval and tries again.
type DispatchJob struct {
	advanceHandler commands.AdvanceStatusesCommandHandler
	assignHandler  commands.AssignBatchCommandHandler
	pollInterval   time.Duration
	errorBackoff   time.Duration
	logger         *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewDispatchJob creates the dispatch cycle job. A cycle runs every
// pollInterval; after a cycle fails, the next one runs after errorBackoff.
func NewDispatchJob(
	advanceHandler commands.AdvanceStatusesCommandHandler,
	assignHandler commands.AssignBatchCommandHandler,
	pollInterval time.Duration,
	errorBackoff time.Duration,
	logger *slog.Logger,
) *DispatchJob {
	return &DispatchJob{
		advanceHandler: advanceHandler,
		assignHandler:  assignHandler,
		pollInterval:   pollInterval,
		errorBackoff:   errorBackoff,
		logger:         logger.With("component", "dispatch_job"),
	}
}

// Start launches the dispatch loop. The first cycle runs immediately.
func (j *DispatchJob) Start() error {
	if j.cancel != nil {
		return errors.New("dispatch job already started")
	}

	ctx, cancel := context.WithCancel(context.Background())
	j.cancel = cancel
	j.done = make(chan struct{})

	go j.run(ctx)

	j.logger.InfoContext(ctx, "Dispatch job started",
		"poll_interval", j.pollInterval, "error_backoff", j.errorBackoff)
	return nil
}

// Stop cancels the dispatch loop and waits for the current cycle to finish.
func (j *DispatchJob) Stop() {
	if j.cancel == nil {
		return
	}

	j.cancel()
	<-j.done
	j.cancel = nil

	j.logger.Info("Dispatch job stopped")
}

func (j *DispatchJob) run(ctx context.Context) {
	defer close(j.done)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		wait := j.pollInterval
		if err := j.cycle(ctx); err != nil {
			wait = j.errorBackoff
		}

		timer.Reset(wait)
	}
}

// cycle runs one advance-then-assign pass. A non-nil return means the
// pass hit an unexpected failure and the loop should back off; wait
// conditions return nil so the loop keeps its normal rhythm.
func (j *DispatchJob) cycle(ctx context.Context) error {
	now := time.Now().UTC()

	advanceCmd, err := commands.NewAdvanceStatusesCommand(now)
	if err != nil {
		return err
	}

	promoted, err := j.advanceHandler.Handle(ctx, advanceCmd)
	if err != nil {
		j.logger.ErrorContext(ctx, "Status advancement failed", "error", err)
		return err
	}
	if promoted > 0 {
		j.logger.InfoContext(ctx, "Orders delivered", "count", promoted)
	}

	assignCmd, err := commands.NewAssignBatchCommand(now)
	if err != nil {
		return err
	}

	if err = j.assignHandler.Handle(ctx, assignCmd); err != nil {
		if isWaitCondition(err) {
			j.logger.DebugContext(ctx, "Nothing to dispatch", "reason", err)
			return nil
		}

		j.logger.ErrorContext(ctx, "Batch assignment failed", "error", err)
		return err
	}

	j.logger.InfoContext(ctx, "Batch assigned")
	return nil
}

// isWaitCondition reports whether the assignment error is an expected
// business scenario rather than a failure: an empty or half-full queue,
// a fully busy pool, or a routing provider that is temporarily down.
func isWaitCondition(err error) bool {
	return errors.Is(err, services.ErrNoPendingOrders) ||
		errors.Is(err, services.ErrAwaitingSecondOrder) ||
		errors.Is(err, partner.ErrNoPartnerAvailable) ||
		errors.Is(err, ports.ErrRoutingUnavailable)
}
