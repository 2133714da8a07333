// Copyright (C) 2026 the starrocks-frontend authors.
// See LICENSE for copying information.

package consistency

import (
	"context"
	"time"

	"go.uber.org/zap"

	"storj.io/common/sync2"

	"github.com/dorsegal/starrocks/frontend/catalog"
)

// Config contains configurable values for the consistency checker.
type Config struct {
	Interval time.Duration `help:"the time between control loop ticks" default:"20s" devDefault:"1s"`

	CheckStartTime string `help:"hour of day (0-23) at which the daily check window opens" default:"23"`
	CheckEndTime   string `help:"hour of day (0-23) at which the daily check window closes, equal to the start hour disables new checks" default:"23"`

	JobTimeout time.Duration `help:"how long a dispatched verification waits for replica checksums before being cancelled" default:"20m"`
	MaxJobs    int           `help:"maximum number of tablets chosen for checking per selection round" default:"100"`

	TabletMetaCheckInterval time.Duration `help:"the time between tablet meta consistency sweeps" default:"2h" devDefault:"1m"`
}

// Checker drives tablet consistency verification and tablet meta garbage
// collection from a single periodic loop.
//
// architecture: Chore
type Checker struct {
	log    *zap.Logger
	config Config

	store         *catalog.Metastore
	recycleBin    *catalog.RecycleBin
	invertedIndex *catalog.InvertedIndex
	nodes         NodeLister

	registry *Registry
	guard    *CreatingTableGuard
	jobEnv   *jobEnv
	window   workWindow

	nowFn         func() time.Time
	lastMetaCheck time.Time

	Loop *sync2.Cycle
}

// NewChecker instantiates the checker. A malformed work window is a fatal
// configuration error.
func NewChecker(log *zap.Logger, config Config,
	store *catalog.Metastore, recycleBin *catalog.RecycleBin,
	invertedIndex *catalog.InvertedIndex, nodes NodeLister,
	dispatcher TaskDispatcher, journal Journal) (*Checker, error) {

	window, err := parseWorkWindow(config.CheckStartTime, config.CheckEndTime)
	if err != nil {
		return nil, err
	}

	checker := &Checker{
		log:    log,
		config: config,

		store:         store,
		recycleBin:    recycleBin,
		invertedIndex: invertedIndex,
		nodes:         nodes,

		registry: NewRegistry(),
		guard:    NewCreatingTableGuard(),
		window:   window,

		nowFn: time.Now,
		Loop:  sync2.NewCycle(config.Interval),
	}
	checker.jobEnv = &jobEnv{
		store:         store,
		invertedIndex: invertedIndex,
		dispatcher:    dispatcher,
		journal:       journal,
		nowFn:         checker.now,
		timeout:       config.JobTimeout,
	}
	return checker, nil
}

// Run starts the control loop.
func (checker *Checker) Run(ctx context.Context) (err error) {
	defer mon.Task()(&ctx)(&err)
	return checker.Loop.Run(ctx, func(ctx context.Context) error {
		checker.tick(ctx)
		return nil
	})
}

// Close stops the control loop.
func (checker *Checker) Close() error {
	checker.Loop.Close()
	return nil
}

// tick runs one control loop round: sweep when due, select and register new
// jobs inside the work window, then advance every registered job.
func (checker *Checker) tick(ctx context.Context) {
	defer mon.Task()(&ctx)(nil)

	now := checker.nowFn()
	if now.Sub(checker.lastMetaCheck) > checker.config.TabletMetaCheckInterval {
		checker.checkTabletMetaConsistency(ctx)
		checker.lastMetaCheck = checker.nowFn()
	}

	// New jobs only inside the work window, and only once the previous
	// round fully drained.
	if checker.window.contains(now) && checker.registry.Len() == 0 {
		for _, tabletID := range checker.chooseTablets(ctx) {
			job := newJob(checker.log, checker.jobEnv, tabletID)
			if checker.registry.Add(job) {
				checker.log.Info("added tablet to check consistency", zap.Int64("tablet", tabletID))
			}
		}
	}

	checker.registry.advance(func(job *Job) bool {
		switch job.State() {
		case JobStatePending:
			if !job.SendTasks(ctx) {
				job.clear()
				return true
			}
			return false
		case JobStateRunning:
			switch job.TryFinish(ctx) {
			case outcomeCancelled, outcomeFinished:
				job.clear()
				return true
			default:
				return false
			}
		default:
			// already on its way out
			return false
		}
	})
}

// HandleChecksumReply delivers a node's checksum for a tablet to the owning
// job. Called from the task transport's execution context, concurrently with
// the control loop.
func (checker *Checker) HandleChecksumReply(nodeID, tabletID int64, checksum uint64) {
	job := checker.registry.Get(tabletID)
	if job == nil {
		checker.log.Warn("no consistency job for checksum reply",
			zap.Int64("tablet", tabletID), zap.Int64("node", nodeID))
		return
	}
	job.HandleReply(nodeID, checksum)
}

// AddTabletsToCheck force-enqueues tablets for verification outside the
// normal selection cycle. Tablets that already have a job are left alone.
func (checker *Checker) AddTabletsToCheck(tabletIDs []int64) {
	for _, tabletID := range tabletIDs {
		job := newJob(checker.log, checker.jobEnv, tabletID)
		if checker.registry.Add(job) {
			checker.log.Info("added tablet to check consistency", zap.Int64("tablet", tabletID))
		}
	}
}

// AddCreatingTable brackets the start of a table creation: the table's
// tablets are excluded from the tablet meta sweep until the matching delete.
func (checker *Checker) AddCreatingTable(tableID int64) {
	checker.guard.AddCreatingTable(tableID)
}

// DeleteCreatingTable releases one AddCreatingTable bracket.
func (checker *Checker) DeleteCreatingTable(tableID int64) {
	checker.guard.DeleteCreatingTable(tableID)
}

// JobCount returns the number of registered verification jobs.
func (checker *Checker) JobCount() int {
	return checker.registry.Len()
}

func (checker *Checker) now() time.Time {
	return checker.nowFn()
}

// TestingSetNow allows tests to replace the checker's clock.
func (checker *Checker) TestingSetNow(nowFn func() time.Time) {
	checker.nowFn = nowFn
}
