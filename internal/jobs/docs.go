// Package jobs provides the background tasks of the dispatch engine.
//
// # Available Jobs
//
// 1. DispatchJob - runs the dispatch cycle: advance order statuses, then
// attempt one batch assignment. Uses a plain timer loop rather than cron
// because the sleep varies: the poll interval after a clean cycle, the
// error backoff after a failed one.
//
// 2. OrderGeneratorJob - optional simulated order source, driven by
// github.com/robfig/cron/v3, registering one random order per minute
// around the depot.
//
// # Usage
//
// Jobs are managed through JobManager, which provides a unified interface:
//
//	jobManager := jobs.NewJobManager(dispatchJob, orderGeneratorJob)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// The dispatch job distinguishes wait conditions (no pending orders, a
// lone order held for one more cycle, no free partner, routing provider
// down) from real failures. Wait conditions keep the normal poll rhythm;
// failures shorten the next sleep to the error backoff. Neither stops
// the loop.
package jobs
