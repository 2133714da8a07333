// Copyright (C) 2026 the starrocks-frontend authors.
// See LICENSE for copying information.

package consistency

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dorsegal/starrocks/frontend/catalog"
)

// ignoredTabletSampleSize bounds the ids kept for the summary line when
// tablets are skipped because their table is mid-mutation.
const ignoredTabletSampleSize = 20

// tabletCheckResult classifies the sweep's verdict on one inverted index
// entry.
type tabletCheckResult int

const (
	tabletLive tabletCheckResult = iota
	tabletInRecycleBin
	tabletCreating
	tabletIgnoredByState
	tabletInvalid
)

// nodeTabletTally is the per-node portion of the sweep report.
type nodeTabletTally struct {
	Live       int64
	RecycleBin int64
}

// checkTabletMetaConsistency cross-validates every inverted index entry
// against the live catalog and the recycle bin. Entries that fail to resolve
// go through a two-phase delete: the first detection arms a deferred-clean
// timer of half the sweep interval, a later sweep past that time removes the
// entry. Entries that resolve have their timer disarmed.
func (checker *Checker) checkTabletMetaConsistency(ctx context.Context) {
	defer mon.Task()(&ctx)(nil)

	start := time.Now()
	var scanned, purged, ignored int64
	ignoredSample := make([]int64, 0, ignoredTabletSampleSize)
	perNode := make(map[int64]*nodeTabletTally)

	nodeIDs := checker.nodes.NodeIDs()
	for _, nodeID := range nodeIDs {
		checker.log.Info("checking tablet meta consistency for node", zap.Int64("node", nodeID))
		tally := &nodeTabletTally{}
		perNode[nodeID] = tally

		for _, tabletID := range checker.invertedIndex.TabletIDsByNode(nodeID) {
			scanned++
			switch checker.checkTabletMeta(nodeID, tabletID, &purged) {
			case tabletLive:
				tally.Live++
			case tabletInRecycleBin:
				tally.RecycleBin++
			case tabletIgnoredByState:
				ignored++
				if len(ignoredSample) < ignoredTabletSampleSize {
					ignoredSample = append(ignoredSample, tabletID)
				}
			}
		}
	}

	var totalRecycled int64
	for _, tally := range perNode {
		totalRecycled += tally.RecycleBin
	}
	mon.IntVal("tablet_meta_scanned").Observe(scanned)
	mon.IntVal("tablet_meta_purged").Observe(purged)
	mon.IntVal("tablet_meta_ignored_by_state").Observe(ignored)

	checker.log.Info("tablet meta consistency sweep finished",
		zap.Int64("purged", purged),
		zap.Int64("scanned", scanned),
		zap.Int("nodes", len(nodeIDs)),
		zap.Duration("took", time.Since(start)),
		zap.Int64("in recycle bin", totalRecycled),
		zap.Int64("ignored by state", ignored),
		zap.Int64s("ignored sample", ignoredSample),
		zap.Any("per node", perNode))
}

// checkTabletMeta resolves one inverted index entry through the catalog
// chain, falling back to the recycle bin at each level that supports it.
func (checker *Checker) checkTabletMeta(nodeID, tabletID int64, purged *int64) tabletCheckResult {
	meta := checker.invertedIndex.TabletMeta(tabletID)
	if meta == nil {
		// no owning metadata at all, nothing to defer on
		checker.deleteTabletMeta(nil, tabletID, nodeID, "tablet meta is missing", purged)
		return tabletInvalid
	}

	// Tables mid-creation have tablets in the inverted index before the
	// catalog tree knows them; treat them as untouchable whatever the
	// resolution would say.
	if checker.guard.Contains(meta.TableID()) {
		return tabletCreating
	}

	inRecycleBin := false
	db := checker.store.Database(meta.DatabaseID())
	if db == nil {
		db = checker.recycleBin.Database(meta.DatabaseID())
		if db == nil {
			checker.deleteTabletMeta(meta, tabletID, nodeID, "database doesn't exist", purged)
			return tabletInvalid
		}
		inRecycleBin = true
	}

	db.RLock()
	defer db.RUnlock()

	table := db.Table(meta.TableID())
	if table == nil {
		table = checker.recycleBin.Table(meta.DatabaseID(), meta.TableID())
		if table == nil {
			checker.deleteTabletMeta(meta, tabletID, nodeID, "table doesn't exist", purged)
			return tabletInvalid
		}
		inRecycleBin = true
	}

	// Restore, rollup and schema change jobs own tablets that come and go;
	// deleting those would race the job.
	if table.State() != catalog.TableStateNormal {
		return tabletIgnoredByState
	}

	partition := table.Partition(meta.PartitionID())
	if partition == nil {
		partition = checker.recycleBin.Partition(meta.PartitionID())
		if partition == nil {
			checker.deleteTabletMeta(meta, tabletID, nodeID, "partition doesn't exist", purged)
			return tabletInvalid
		}
		inRecycleBin = true
	}

	index := partition.Index(meta.IndexID())
	if index == nil {
		checker.deleteTabletMeta(meta, tabletID, nodeID, "materialized index doesn't exist", purged)
		return tabletInvalid
	}

	if !table.IsCloudNative() {
		if index.Tablet(tabletID) == nil {
			checker.deleteTabletMeta(meta, tabletID, nodeID, "tablet doesn't exist", purged)
			return tabletInvalid
		}
	}

	meta.ResetToBeCleaned()
	if inRecycleBin {
		return tabletInRecycleBin
	}
	return tabletLive
}

// deleteTabletMeta removes an unresolved entry from the inverted index, but
// only once its deferred-clean timer has been armed by an earlier sweep and
// has elapsed. The deferral absorbs transient misses caused by concurrent
// catalog mutation.
func (checker *Checker) deleteTabletMeta(meta *catalog.TabletMeta, tabletID, nodeID int64, reason string, purged *int64) {
	if meta != nil {
		now := checker.nowFn()
		deadline, armed := meta.ToBeCleanedTime()
		if !armed {
			meta.MarkToBeCleaned(now.Add(checker.config.TabletMetaCheckInterval / 2))
			return
		}
		if now.Before(deadline) {
			return
		}
	}

	checker.log.Info("deleting tablet from inverted index",
		zap.Int64("tablet", tabletID),
		zap.Int64("node", nodeID),
		zap.String("reason", reason))
	checker.invertedIndex.DeleteTablet(tabletID)
	*purged++
}
