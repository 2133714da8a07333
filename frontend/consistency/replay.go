// Copyright (C) 2026 the starrocks-frontend authors.
// See LICENSE for copying information.

package consistency

import (
	"time"

	"go.uber.org/zap"
)

// CheckInfo is the durable record of one finished verification. Controller
// replicas replay it to apply the same verdict to their in-memory catalog
// without re-auditing the tablet.
type CheckInfo struct {
	DatabaseID     int64     `json:"db_id"`
	TableID        int64     `json:"table_id"`
	PartitionID    int64     `json:"partition_id"`
	IndexID        int64     `json:"index_id"`
	TabletID       int64     `json:"tablet_id"`
	CheckedVersion int64     `json:"checked_version"`
	Consistent     bool      `json:"consistent"`
	LastCheckTime  time.Time `json:"last_check_time"`
}

// ReplayFinishConsistencyCheck applies a finished-check record to the local
// catalog under the database write lock. Replaying the same record twice
// yields the same state; every field is an absolute assignment.
func (checker *Checker) ReplayFinishConsistencyCheck(info *CheckInfo) {
	db := checker.store.Database(info.DatabaseID)
	if db == nil {
		checker.log.Warn("replay finish consistency check: database is gone",
			zap.Int64("db", info.DatabaseID), zap.Int64("tablet", info.TabletID))
		return
	}

	db.Lock()
	defer db.Unlock()

	table := db.Table(info.TableID)
	if table == nil {
		checker.log.Warn("replay finish consistency check: table is gone",
			zap.Int64("table", info.TableID), zap.Int64("tablet", info.TabletID))
		return
	}
	partition := table.Partition(info.PartitionID)
	if partition == nil {
		checker.log.Warn("replay finish consistency check: partition is gone",
			zap.Int64("partition", info.PartitionID), zap.Int64("tablet", info.TabletID))
		return
	}
	index := partition.Index(info.IndexID)
	if index == nil {
		checker.log.Warn("replay finish consistency check: index is gone",
			zap.Int64("index", info.IndexID), zap.Int64("tablet", info.TabletID))
		return
	}
	tablet := index.Tablet(info.TabletID)
	if tablet == nil {
		checker.log.Warn("replay finish consistency check: tablet is gone",
			zap.Int64("tablet", info.TabletID))
		return
	}

	db.SetLastCheckTime(info.LastCheckTime)
	table.SetLastCheckTime(info.LastCheckTime)
	partition.SetLastCheckTime(info.LastCheckTime)
	index.SetLastCheckTime(info.LastCheckTime)
	tablet.SetLastCheckTime(info.LastCheckTime)
	tablet.SetCheckedState(info.CheckedVersion, info.Consistent)
}
