// Copyright (C) 2026 the starrocks-frontend authors.
// See LICENSE for copying information.

package consistency

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dorsegal/starrocks/frontend/catalog"
)

// JobState is the lifecycle state of a verification job.
type JobState int32

const (
	// JobStatePending means the job has been registered but not dispatched.
	JobStatePending JobState = iota
	// JobStateRunning means checksum tasks are dispatched and replies are
	// being collected.
	JobStateRunning
	// JobStateFinished means all replies arrived and the verdict is recorded.
	JobStateFinished
	// JobStateCancelled means the job timed out or the tablet disappeared.
	JobStateCancelled
)

// String implements fmt.Stringer.
func (state JobState) String() string {
	switch state {
	case JobStatePending:
		return "PENDING"
	case JobStateRunning:
		return "RUNNING"
	case JobStateFinished:
		return "FINISHED"
	case JobStateCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// jobOutcome is the result of one finalize attempt on a running job.
type jobOutcome int

const (
	outcomeWaiting jobOutcome = iota
	outcomeCancelled
	outcomeFinished
)

// jobEnv bundles the collaborators a verification job needs, shared by all
// jobs of one checker.
type jobEnv struct {
	store         *catalog.Metastore
	invertedIndex *catalog.InvertedIndex
	dispatcher    TaskDispatcher
	journal       Journal
	nowFn         func() time.Time
	timeout       time.Duration
}

// Job tracks the verification of one tablet: dispatching checksum tasks to
// every replica-hosting node, collecting the replies, and recording the
// verdict. The mutex guards all mutable fields and is independent of the
// registry lock; replies arrive from the transport's execution context while
// the control loop advances the state machine.
type Job struct {
	log *zap.Logger
	env *jobEnv

	tabletID  int64
	createdAt time.Time

	mu             sync.Mutex
	state          JobState
	deadline       time.Time
	checkedVersion int64
	expected       map[int64]struct{}
	checksums      map[int64]uint64
}

func newJob(log *zap.Logger, env *jobEnv, tabletID int64) *Job {
	return &Job{
		log:       log,
		env:       env,
		tabletID:  tabletID,
		createdAt: env.nowFn(),
		state:     JobStatePending,
	}
}

// TabletID returns the tablet the job verifies.
func (job *Job) TabletID() int64 { return job.tabletID }

// State returns the job's current state.
func (job *Job) State() JobState {
	job.mu.Lock()
	defer job.mu.Unlock()
	return job.state
}

// SendTasks resolves the tablet's replica set and dispatches one checksum
// task per replica-hosting node, moving the job to RUNNING. It returns false
// when the tablet no longer resolves or dispatch fails; the caller discards
// the job and the tablet stays eligible for a later cycle.
func (job *Job) SendTasks(ctx context.Context) bool {
	tasks, ok := job.prepareTasks()
	if !ok {
		return false
	}
	for _, task := range tasks {
		if err := job.env.dispatcher.SubmitChecksumTask(ctx, task); err != nil {
			job.log.Warn("failed to dispatch checksum task",
				zap.Int64("tablet", job.tabletID),
				zap.Int64("node", task.NodeID),
				zap.Error(err))
			return false
		}
	}
	return true
}

// prepareTasks resolves the replica set under the database read lock and
// arms the job. It runs with the registry write lock held, so the database
// lock is only tried, never waited on; contention counts as dispatch failure.
func (job *Job) prepareTasks() ([]ChecksumTask, bool) {
	job.mu.Lock()
	defer job.mu.Unlock()

	meta := job.env.invertedIndex.TabletMeta(job.tabletID)
	if meta == nil {
		job.log.Debug("tablet meta is gone, dropping job", zap.Int64("tablet", job.tabletID))
		return nil, false
	}
	db := job.env.store.Database(meta.DatabaseID())
	if db == nil {
		job.log.Debug("database is gone, dropping job",
			zap.Int64("tablet", job.tabletID), zap.Int64("db", meta.DatabaseID()))
		return nil, false
	}
	if !db.TryRLock() {
		job.log.Debug("database lock contended, deferring tablet to a later cycle",
			zap.Int64("tablet", job.tabletID), zap.Int64("db", db.ID()))
		return nil, false
	}
	defer db.RUnlock()

	tablet, partition := resolveTablet(db, meta, job.tabletID)
	if tablet == nil {
		job.log.Debug("tablet no longer resolves, dropping job", zap.Int64("tablet", job.tabletID))
		return nil, false
	}
	replicas := tablet.Replicas()
	if len(replicas) == 0 {
		job.log.Debug("tablet has no replicas, dropping job", zap.Int64("tablet", job.tabletID))
		return nil, false
	}

	version := partition.VisibleVersion()
	job.expected = make(map[int64]struct{}, len(replicas))
	job.checksums = make(map[int64]uint64, len(replicas))
	tasks := make([]ChecksumTask, 0, len(replicas))
	for _, replica := range replicas {
		job.expected[replica.NodeID] = struct{}{}
		tasks = append(tasks, ChecksumTask{
			NodeID:   replica.NodeID,
			TabletID: job.tabletID,
			Version:  version,
		})
	}
	job.checkedVersion = version
	job.deadline = job.env.nowFn().Add(job.env.timeout)
	job.state = JobStateRunning

	job.log.Info("dispatched consistency check",
		zap.Int64("tablet", job.tabletID),
		zap.Int64("version", version),
		zap.Int("replicas", len(replicas)))
	return tasks, true
}

// HandleReply records the checksum reported by a node. Replies for nodes the
// job never asked, or arriving after the job left RUNNING, are dropped.
func (job *Job) HandleReply(nodeID int64, checksum uint64) {
	job.mu.Lock()
	defer job.mu.Unlock()
	if job.state != JobStateRunning {
		return
	}
	if _, expected := job.expected[nodeID]; !expected {
		job.log.Warn("checksum reply from unexpected node",
			zap.Int64("tablet", job.tabletID), zap.Int64("node", nodeID))
		return
	}
	job.checksums[nodeID] = checksum
}

// TryFinish evaluates a running job once. It returns outcomeWaiting while
// replies are outstanding and the deadline holds, outcomeCancelled when the
// deadline passed or the tablet vanished from the catalog, and
// outcomeFinished once every expected reply arrived and the verdict is
// recorded.
func (job *Job) TryFinish(ctx context.Context) jobOutcome {
	job.mu.Lock()
	defer job.mu.Unlock()

	if job.state != JobStateRunning {
		return outcomeWaiting
	}

	if len(job.checksums) < len(job.expected) {
		if job.env.nowFn().After(job.deadline) {
			job.log.Info("consistency check timed out",
				zap.Int64("tablet", job.tabletID),
				zap.Int("received", len(job.checksums)),
				zap.Int("expected", len(job.expected)))
			job.state = JobStateCancelled
			return outcomeCancelled
		}
		return outcomeWaiting
	}

	meta := job.env.invertedIndex.TabletMeta(job.tabletID)
	if meta == nil {
		job.state = JobStateCancelled
		return outcomeCancelled
	}
	db := job.env.store.Database(meta.DatabaseID())
	if db == nil {
		job.log.Info("database disappeared mid check, cancelling",
			zap.Int64("tablet", job.tabletID), zap.Int64("db", meta.DatabaseID()))
		job.state = JobStateCancelled
		return outcomeCancelled
	}
	// Runs with the registry write lock held; never wait on a contended
	// database lock here, just retry on the next tick.
	if !db.TryLock() {
		return outcomeWaiting
	}
	defer db.Unlock()

	table := db.Table(meta.TableID())
	if table == nil {
		job.state = JobStateCancelled
		return outcomeCancelled
	}
	partition := table.Partition(meta.PartitionID())
	if partition == nil {
		job.log.Info("partition disappeared mid check, cancelling",
			zap.Int64("tablet", job.tabletID), zap.Int64("partition", meta.PartitionID()))
		job.state = JobStateCancelled
		return outcomeCancelled
	}
	index := partition.Index(meta.IndexID())
	if index == nil {
		job.state = JobStateCancelled
		return outcomeCancelled
	}
	tablet := index.Tablet(job.tabletID)
	if tablet == nil {
		job.state = JobStateCancelled
		return outcomeCancelled
	}

	consistent := true
	var first uint64
	seen := false
	for _, checksum := range job.checksums {
		if !seen {
			first, seen = checksum, true
			continue
		}
		if checksum != first {
			consistent = false
			break
		}
	}

	finishedAt := job.env.nowFn()
	tablet.SetCheckedState(job.checkedVersion, consistent)
	tablet.SetLastCheckTime(finishedAt)
	index.SetLastCheckTime(finishedAt)
	partition.SetLastCheckTime(finishedAt)
	table.SetLastCheckTime(finishedAt)
	db.SetLastCheckTime(finishedAt)

	info := &CheckInfo{
		DatabaseID:     db.ID(),
		TableID:        table.ID(),
		PartitionID:    partition.ID(),
		IndexID:        index.ID(),
		TabletID:       job.tabletID,
		CheckedVersion: job.checkedVersion,
		Consistent:     consistent,
		LastCheckTime:  finishedAt,
	}
	if err := job.env.journal.LogFinishedConsistencyCheck(ctx, info); err != nil {
		job.log.Error("failed to journal finished consistency check",
			zap.Int64("tablet", job.tabletID), zap.Error(err))
	}

	if consistent {
		job.log.Info("tablet replicas are consistent",
			zap.Int64("tablet", job.tabletID),
			zap.Int64("checked version", job.checkedVersion))
		mon.Counter("consistency_check_consistent").Inc(1)
	} else {
		job.log.Warn("tablet replicas are inconsistent",
			zap.Int64("tablet", job.tabletID),
			zap.Int64("checked version", job.checkedVersion),
			zap.Any("checksums", job.checksums))
		mon.Counter("consistency_check_inconsistent").Inc(1)
	}

	job.state = JobStateFinished
	return outcomeFinished
}

// clear releases the job's collected state once it leaves the registry.
func (job *Job) clear() {
	job.mu.Lock()
	defer job.mu.Unlock()
	job.expected = nil
	job.checksums = nil
}

// resolveTablet walks meta's location chain inside db. The caller must hold
// the database lock. Returns nils when any level is missing.
func resolveTablet(db *catalog.Database, meta *catalog.TabletMeta, tabletID int64) (*catalog.Tablet, *catalog.Partition) {
	table := db.Table(meta.TableID())
	if table == nil {
		return nil, nil
	}
	partition := table.Partition(meta.PartitionID())
	if partition == nil {
		return nil, nil
	}
	index := partition.Index(meta.IndexID())
	if index == nil {
		return nil, nil
	}
	tablet := index.Tablet(tabletID)
	if tablet == nil {
		return nil, nil
	}
	return tablet, partition
}
