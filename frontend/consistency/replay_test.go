// Copyright (C) 2026 the starrocks-frontend authors.
// See LICENSE for copying information.

package consistency

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestReplayFinishConsistencyCheck(t *testing.T) {
	env := newTestEnv(t, Config{})
	loc := tabletLoc{db: 10, table: 11, partition: 12, index: 13, tablet: 14}
	tablet := env.addTablet(loc, 5, 1, 2, 3)

	checkedAt := time.Date(2026, 3, 1, 4, 30, 0, 0, time.UTC)
	info := &CheckInfo{
		DatabaseID:     10,
		TableID:        11,
		PartitionID:    12,
		IndexID:        13,
		TabletID:       14,
		CheckedVersion: 5,
		Consistent:     true,
		LastCheckTime:  checkedAt,
	}

	env.checker.ReplayFinishConsistencyCheck(info)

	require.Equal(t, int64(5), tablet.CheckedVersion())
	require.True(t, tablet.IsConsistent())
	require.True(t, tablet.LastCheckTime().Equal(checkedAt))

	db := env.store.Database(10)
	require.True(t, db.LastCheckTime().Equal(checkedAt))
	require.True(t, db.Table(11).LastCheckTime().Equal(checkedAt))
	require.True(t, db.Table(11).Partition(12).LastCheckTime().Equal(checkedAt))
	require.True(t, db.Table(11).Partition(12).Index(13).LastCheckTime().Equal(checkedAt))
}

func TestReplayFinishConsistencyCheckIsIdempotent(t *testing.T) {
	env := newTestEnv(t, Config{})
	loc := tabletLoc{db: 10, table: 11, partition: 12, index: 13, tablet: 14}
	tablet := env.addTablet(loc, 5, 1, 2, 3)

	info := &CheckInfo{
		DatabaseID:     10,
		TableID:        11,
		PartitionID:    12,
		IndexID:        13,
		TabletID:       14,
		CheckedVersion: 5,
		Consistent:     false,
		LastCheckTime:  time.Date(2026, 3, 1, 4, 30, 0, 0, time.UTC),
	}

	env.checker.ReplayFinishConsistencyCheck(info)

	db := env.store.Database(10)
	snapshot := func() []any {
		return []any{
			tablet.CheckedVersion(),
			tablet.IsConsistent(),
			tablet.LastCheckTime(),
			db.LastCheckTime(),
			db.Table(11).LastCheckTime(),
			db.Table(11).Partition(12).LastCheckTime(),
			db.Table(11).Partition(12).Index(13).LastCheckTime(),
		}
	}
	first := snapshot()

	env.checker.ReplayFinishConsistencyCheck(info)
	require.Equal(t, first, snapshot())
}

func TestReplayFinishConsistencyCheckMissingObjects(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.addTablet(tabletLoc{db: 10, table: 11, partition: 12, index: 13, tablet: 14}, 5, 1)

	// records for vanished objects are dropped without side effects
	env.checker.ReplayFinishConsistencyCheck(&CheckInfo{DatabaseID: 99, TabletID: 14})
	env.checker.ReplayFinishConsistencyCheck(&CheckInfo{DatabaseID: 10, TableID: 99, TabletID: 14})
	env.checker.ReplayFinishConsistencyCheck(&CheckInfo{
		DatabaseID: 10, TableID: 11, PartitionID: 99, TabletID: 14,
	})

	tablet := env.store.Database(10).Table(11).Partition(12).Index(13).Tablet(14)
	require.Equal(t, int64(0), tablet.CheckedVersion())
	require.Equal(t, time.Time{}, tablet.LastCheckTime())

}
