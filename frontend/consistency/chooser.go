// Copyright (C) 2026 the starrocks-frontend authors.
// See LICENSE for copying information.

package consistency

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dorsegal/starrocks/frontend/catalog"
)

// chooseTablets walks the catalog in staleness order and picks up to
// MaxJobs tablets most overdue for checking. Databases, tables, partitions,
// indexes and tablets are each drained from a priority queue ordered by
// ascending last check time, so whole stale subtrees are favored. The walk
// stops as soon as the cap is reached; the next cycle continues on whatever
// remains.
func (checker *Checker) chooseTablets(ctx context.Context) (chosen []int64) {
	defer mon.Task()(&ctx)(nil)

	dbQueue := newMetaQueue()
	for _, dbID := range checker.store.DatabaseIDs() {
		if dbID == catalog.SystemDatabaseID {
			continue
		}
		if db := checker.store.Database(dbID); db != nil {
			dbQueue.push(db)
		}
	}
	if dbQueue.Len() == 0 {
		return nil
	}

	// The registry read lock is taken before any database lock to obey the
	// lock order, and held across the whole walk so the in-flight set stays
	// stable against it.
	checker.registry.mu.RLock()
	defer checker.registry.mu.RUnlock()

	for dbQueue.Len() > 0 {
		db := dbQueue.pop().(*catalog.Database)
		picked, full := checker.chooseFromDatabase(db, checker.config.MaxJobs-len(chosen))
		chosen = append(chosen, picked...)
		if full {
			break
		}
	}

	mon.IntVal("consistency_chosen_tablets").Observe(int64(len(chosen)))
	return chosen
}

// chooseFromDatabase drains one database subtree, holding its read lock for
// the whole traversal. One long hold beats thousands of short lock cycles at
// this scale; the hold duration is logged so the trade-off stays observable.
// It returns the picked tablet ids and whether the cap was reached.
func (checker *Checker) chooseFromDatabase(db *catalog.Database, limit int) (picked []int64, full bool) {
	db.RLock()
	start := time.Now()
	defer func() {
		checker.log.Info("chose tablets from database with read lock held",
			zap.String("database", db.Name()),
			zap.Int64("db", db.ID()),
			zap.Duration("held", time.Since(start)),
			zap.Int("picked", len(picked)))
		db.RUnlock()
	}()

	tableQueue := newMetaQueue()
	for _, table := range db.Tables() {
		// Tablets of a structurally unstable table may only exist
		// transiently; checking them races the mutation and poisons the
		// journal for replay.
		if table.State() != catalog.TableStateNormal {
			continue
		}
		tableQueue.push(table)
	}

	for tableQueue.Len() > 0 {
		table := tableQueue.pop().(*catalog.Table)

		partitionQueue := newMetaQueue()
		for _, partition := range table.Partitions() {
			if partition.ReplicationNum() == 1 {
				// single copy, nothing to cross-check
				continue
			}
			if partition.VisibleVersion() == catalog.PartitionInitVersion {
				// never received data
				continue
			}
			partitionQueue.push(partition)
		}

		for partitionQueue.Len() > 0 {
			partition := partitionQueue.pop().(*catalog.Partition)

			indexQueue := newMetaQueue()
			for _, index := range partition.VisibleIndexes() {
				indexQueue.push(index)
			}

			for indexQueue.Len() > 0 {
				index := indexQueue.pop().(*catalog.MaterializedIndex)

				tabletQueue := newMetaQueue()
				for _, tablet := range index.Tablets() {
					tabletQueue.push(tablet)
				}

				for tabletQueue.Len() > 0 {
					tablet := tabletQueue.pop().(*catalog.Tablet)

					if _, inFlight := checker.registry.jobs[tablet.ID()]; inFlight {
						continue
					}
					if partition.VisibleVersion() == tablet.CheckedVersion() && tablet.IsConsistent() {
						// nothing changed since the last clean audit
						continue
					}
					if len(picked) >= limit {
						continue
					}

					checker.log.Info("chose tablet to check consistency",
						zap.Int64("db", db.ID()),
						zap.Int64("table", table.ID()),
						zap.Int64("partition", partition.ID()),
						zap.Int64("index", index.ID()),
						zap.Int64("tablet", tablet.ID()))
					picked = append(picked, tablet.ID())
				}
			}

			// The cap is re-checked once per partition; finishing the
			// partition's index loop bounds the lock hold per round.
			if len(picked) >= limit {
				return picked, true
			}
		}
	}
	return picked, false
}
