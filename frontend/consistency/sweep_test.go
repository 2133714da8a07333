// Copyright (C) 2026 the starrocks-frontend authors.
// See LICENSE for copying information.

package consistency

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"storj.io/common/testcontext"

	"github.com/dorsegal/starrocks/frontend/catalog"
)

func TestSweepDefersThenDeletesOrphans(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	interval := time.Hour
	env := newTestEnv(t, Config{TabletMetaCheckInterval: interval})

	// the inverted index claims node 1 hosts tablet 14, but database 10
	// does not exist anywhere
	env.cluster.AddNode(1)
	env.invertedIndex.AddTablet(14, catalog.NewTabletMeta(10, 11, 12, 13))
	env.invertedIndex.AddReplica(14, 1)

	firstDetection := env.clock.Now()

	// first sweep only arms the deferred-clean timer
	env.checker.checkTabletMetaConsistency(ctx)
	meta := env.invertedIndex.TabletMeta(14)
	require.NotNil(t, meta)
	deadline, armed := meta.ToBeCleanedTime()
	require.True(t, armed)
	require.True(t, deadline.Equal(firstDetection.Add(interval/2)))

	// a sweep before the timer elapses still takes no action
	env.clock.Advance(interval / 4)
	env.checker.checkTabletMetaConsistency(ctx)
	require.NotNil(t, env.invertedIndex.TabletMeta(14))

	// past the timer the entry is purged
	env.clock.Advance(interval/4 + time.Second)
	env.checker.checkTabletMetaConsistency(ctx)
	require.Nil(t, env.invertedIndex.TabletMeta(14))
	require.Empty(t, env.invertedIndex.TabletIDsByNode(1))
}

func TestSweepDeletesNilMetaImmediately(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	env := newTestEnv(t, Config{})
	env.cluster.AddNode(1)
	env.invertedIndex.AddTablet(14, nil)
	env.invertedIndex.AddReplica(14, 1)

	// no metadata means no timer to arm, the entry goes right away
	env.checker.checkTabletMetaConsistency(ctx)
	require.Empty(t, env.invertedIndex.TabletIDsByNode(1))
}

func TestSweepSkipsCreatingTables(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	env := newTestEnv(t, Config{})
	env.cluster.AddNode(1)
	env.invertedIndex.AddTablet(14, catalog.NewTabletMeta(10, 11, 12, 13))
	env.invertedIndex.AddReplica(14, 1)

	env.checker.AddCreatingTable(11)

	// unresolvable, but the table is mid-creation: untouched, no timer armed
	env.checker.checkTabletMetaConsistency(ctx)
	meta := env.invertedIndex.TabletMeta(14)
	require.NotNil(t, meta)
	_, armed := meta.ToBeCleanedTime()
	require.False(t, armed)

	// once creation completes the normal two-phase delete applies
	env.checker.DeleteCreatingTable(11)
	env.checker.checkTabletMetaConsistency(ctx)
	_, armed = env.invertedIndex.TabletMeta(14).ToBeCleanedTime()
	require.True(t, armed)
}

func TestSweepKeepsRecycledObjects(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	env := newTestEnv(t, Config{})
	loc := tabletLoc{db: 10, table: 11, partition: 12, index: 13, tablet: 14}
	env.addTablet(loc, 5, 1)

	// soft-delete the whole database
	db := env.store.DropDatabase(10)
	env.recycleBin.RecycleDatabase(db)

	env.checker.checkTabletMetaConsistency(ctx)
	meta := env.invertedIndex.TabletMeta(14)
	require.NotNil(t, meta)
	_, armed := meta.ToBeCleanedTime()
	require.False(t, armed)

	// same for a soft-deleted table inside a live database
	loc2 := tabletLoc{db: 20, table: 21, partition: 22, index: 23, tablet: 24}
	env.addTablet(loc2, 5, 1)
	table := env.store.Database(20).DropTable(21)
	env.recycleBin.RecycleTable(20, table)

	env.checker.checkTabletMetaConsistency(ctx)
	meta = env.invertedIndex.TabletMeta(24)
	require.NotNil(t, meta)
	_, armed = meta.ToBeCleanedTime()
	require.False(t, armed)
}

func TestSweepIgnoresUnstableTables(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	env := newTestEnv(t, Config{})
	loc := tabletLoc{db: 10, table: 11, partition: 12, index: 13, tablet: 14}
	env.addTablet(loc, 5, 1)
	env.store.Database(10).Table(11).SetState(catalog.TableStateRestore)

	// the meta points at a partition the restore job hasn't landed yet;
	// the table state check shields the tablet from the delete path
	env.invertedIndex.AddTablet(14, catalog.NewTabletMeta(10, 11, 999, 13))

	env.checker.checkTabletMetaConsistency(ctx)
	meta := env.invertedIndex.TabletMeta(14)
	require.NotNil(t, meta)
	_, armed := meta.ToBeCleanedTime()
	require.False(t, armed)
}

func TestSweepResetsMarkerOnceResolved(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	env := newTestEnv(t, Config{})
	env.cluster.AddNode(1)
	env.invertedIndex.AddTablet(14, catalog.NewTabletMeta(10, 11, 12, 13))
	env.invertedIndex.AddReplica(14, 1)

	// orphan at first: timer armed
	env.checker.checkTabletMetaConsistency(ctx)
	meta := env.invertedIndex.TabletMeta(14)
	_, armed := meta.ToBeCleanedTime()
	require.True(t, armed)

	// the catalog catches up (e.g. replay landed), the tablet resolves now
	env.addTablet(tabletLoc{db: 10, table: 11, partition: 12, index: 13, tablet: 14}, 5, 1)
	env.invertedIndex.AddTablet(14, meta)

	env.checker.checkTabletMetaConsistency(ctx)
	_, armed = env.invertedIndex.TabletMeta(14).ToBeCleanedTime()
	require.False(t, armed)

	// even long past the old deadline the entry survives
	env.clock.Advance(24 * time.Hour)
	env.checker.checkTabletMetaConsistency(ctx)
	require.NotNil(t, env.invertedIndex.TabletMeta(14))
}

func TestSweepSkipsTabletLookupForCloudNativeTables(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	env := newTestEnv(t, Config{})
	loc := tabletLoc{db: 10, table: 11, partition: 12, index: 13, tablet: 14}
	env.addTablet(loc, 5, 1)

	table := env.store.Database(10).Table(11)
	table.SetCloudNative(true)

	// register an index entry with no tablet in the tree; for a cloud
	// native table that is expected and must not count as an orphan
	env.invertedIndex.AddTablet(15, catalog.NewTabletMeta(10, 11, 12, 13))
	env.invertedIndex.AddReplica(15, 1)

	env.checker.checkTabletMetaConsistency(ctx)
	meta := env.invertedIndex.TabletMeta(15)
	require.NotNil(t, meta)
	_, armed := meta.ToBeCleanedTime()
	require.False(t, armed)
}
