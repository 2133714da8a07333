// Copyright (C) 2026 the starrocks-frontend authors.
// See LICENSE for copying information.

package consistency

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/dorsegal/starrocks/frontend/catalog"
)

// testClock is a controllable replacement for the checker's clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (clock *testClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

func (clock *testClock) Advance(d time.Duration) {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	clock.now = clock.now.Add(d)
}

func (clock *testClock) Set(t time.Time) {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	clock.now = t
}

// fakeDispatcher records submitted checksum tasks and can be told to fail.
type fakeDispatcher struct {
	mu    sync.Mutex
	tasks []ChecksumTask
	err   error
}

func (d *fakeDispatcher) SubmitChecksumTask(ctx context.Context, task ChecksumTask) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.tasks = append(d.tasks, task)
	return nil
}

func (d *fakeDispatcher) Tasks() []ChecksumTask {
	d.mu.Lock()
	defer d.mu.Unlock()
	tasks := make([]ChecksumTask, len(d.tasks))
	copy(tasks, d.tasks)
	return tasks
}

// fakeJournal records finished-check records.
type fakeJournal struct {
	mu    sync.Mutex
	infos []*CheckInfo
}

func (j *fakeJournal) LogFinishedConsistencyCheck(ctx context.Context, info *CheckInfo) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.infos = append(j.infos, info)
	return nil
}

func (j *fakeJournal) Infos() []*CheckInfo {
	j.mu.Lock()
	defer j.mu.Unlock()
	infos := make([]*CheckInfo, len(j.infos))
	copy(infos, j.infos)
	return infos
}

type testEnv struct {
	clock         *testClock
	store         *catalog.Metastore
	recycleBin    *catalog.RecycleBin
	invertedIndex *catalog.InvertedIndex
	cluster       *catalog.Cluster
	dispatcher    *fakeDispatcher
	journal       *fakeJournal
	checker       *Checker
}

func newTestEnv(t *testing.T, config Config) *testEnv {
	if config.Interval == 0 {
		config.Interval = time.Second
	}
	if config.CheckStartTime == "" && config.CheckEndTime == "" {
		config.CheckStartTime, config.CheckEndTime = "0", "23"
	}
	if config.JobTimeout == 0 {
		config.JobTimeout = 10 * time.Minute
	}
	if config.MaxJobs == 0 {
		config.MaxJobs = 100
	}
	if config.TabletMetaCheckInterval == 0 {
		config.TabletMetaCheckInterval = time.Hour
	}

	env := &testEnv{
		clock:         &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		store:         catalog.NewMetastore(),
		recycleBin:    catalog.NewRecycleBin(),
		invertedIndex: catalog.NewInvertedIndex(),
		cluster:       catalog.NewCluster(),
		dispatcher:    &fakeDispatcher{},
		journal:       &fakeJournal{},
	}

	checker, err := NewChecker(zaptest.NewLogger(t), config,
		env.store, env.recycleBin, env.invertedIndex, env.cluster,
		env.dispatcher, env.journal)
	require.NoError(t, err)
	checker.TestingSetNow(env.clock.Now)
	env.checker = checker
	return env
}

// tabletLoc names every level of one tablet's catalog chain.
type tabletLoc struct {
	db        int64
	table     int64
	partition int64
	index     int64
	tablet    int64
}

// addTablet builds the missing parts of a tablet's catalog chain, registers
// the tablet in the inverted index, and returns it. The partition is created
// with three replicas configured and its visible version set to version.
func (env *testEnv) addTablet(loc tabletLoc, version int64, nodeIDs ...int64) *catalog.Tablet {
	db := env.store.Database(loc.db)
	if db == nil {
		db = catalog.NewDatabase(loc.db, fmt.Sprintf("db%d", loc.db))
		env.store.AddDatabase(db)
	}
	table := db.Table(loc.table)
	if table == nil {
		table = catalog.NewTable(loc.table, fmt.Sprintf("table%d", loc.table))
		db.AddTable(table)
	}
	partition := table.Partition(loc.partition)
	if partition == nil {
		partition = catalog.NewPartition(loc.partition, 3)
		table.AddPartition(partition)
	}
	partition.SetVisibleVersion(version)
	index := partition.Index(loc.index)
	if index == nil {
		index = catalog.NewMaterializedIndex(loc.index, catalog.IndexStateVisible)
		partition.AddIndex(index)
	}
	tablet := catalog.NewTablet(loc.tablet)
	for i, nodeID := range nodeIDs {
		tablet.AddReplica(&catalog.Replica{ID: loc.tablet*100 + int64(i), NodeID: nodeID})
		env.cluster.AddNode(nodeID)
		env.invertedIndex.AddReplica(loc.tablet, nodeID)
	}
	index.AddTablet(tablet)
	env.invertedIndex.AddTablet(loc.tablet,
		catalog.NewTabletMeta(loc.db, loc.table, loc.partition, loc.index))
	return tablet
}
