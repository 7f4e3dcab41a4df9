package jobs

import (
	"fmt"
)

// JobManager coordinates all background jobs in the application.
// Provides a unified interface to start and stop them together.
type JobManager struct {
	dispatchJob       *DispatchJob
	orderGeneratorJob *OrderGeneratorJob
}

// NewJobManager creates a job manager. The order generator is optional;
// pass nil to run dispatch against an external order source only.
func NewJobManager(dispatchJob *DispatchJob, orderGeneratorJob *OrderGeneratorJob) *JobManager {
	return &JobManager{
		dispatchJob:       dispatchJob,
		orderGeneratorJob: orderGeneratorJob,
	}
}

// StartAll starts all background jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.dispatchJob.Start(); err != nil {
		return fmt.Errorf("failed to start dispatch job: %w", err)
	}

	if jm.orderGeneratorJob != nil {
		if err := jm.orderGeneratorJob.Start(); err != nil {
			jm.dispatchJob.Stop()
			return fmt.Errorf("failed to start order generator job: %w", err)
		}
	}

	return nil
}

// StopAll stops all background jobs gracefully.
func (jm *JobManager) StopAll() {
	if jm.orderGeneratorJob != nil {
		jm.orderGeneratorJob.Stop()
	}
	jm.dispatchJob.Stop()
}
