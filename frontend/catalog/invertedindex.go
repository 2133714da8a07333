// Copyright (C) 2026 the starrocks-frontend authors.
// See LICENSE for copying information.

package catalog

import (
	"sort"
	"sync"
	"time"
)

// TabletMeta is the denormalized location of a tablet kept by the inverted
// index: enough to resolve the owning catalog chain without walking the tree.
// The to-be-cleaned marker is the soft-delete timer used by the tablet meta
// sweep: set on first orphan detection, acted on only once elapsed.
type TabletMeta struct {
	dbID        int64
	tableID     int64
	partitionID int64
	indexID     int64

	mu          sync.Mutex
	toBeCleaned time.Time
}

// NewTabletMeta constructs a location descriptor.
func NewTabletMeta(dbID, tableID, partitionID, indexID int64) *TabletMeta {
	return &TabletMeta{
		dbID:        dbID,
		tableID:     tableID,
		partitionID: partitionID,
		indexID:     indexID,
	}
}

// DatabaseID returns the owning database id.
func (m *TabletMeta) DatabaseID() int64 { return m.dbID }

// TableID returns the owning table id.
func (m *TabletMeta) TableID() int64 { return m.tableID }

// PartitionID returns the owning partition id.
func (m *TabletMeta) PartitionID() int64 { return m.partitionID }

// IndexID returns the owning materialized index id.
func (m *TabletMeta) IndexID() int64 { return m.indexID }

// ToBeCleanedTime returns the deferred-clean deadline and whether it is set.
func (m *TabletMeta) ToBeCleanedTime() (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.toBeCleaned, !m.toBeCleaned.IsZero()
}

// MarkToBeCleaned arms the deferred-clean timer. It has no effect when the
// timer is already armed; the first detection wins.
func (m *TabletMeta) MarkToBeCleaned(deadline time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.toBeCleaned.IsZero() {
		m.toBeCleaned = deadline
	}
}

// ResetToBeCleaned disarms the deferred-clean timer after the tablet resolved
// as valid again.
func (m *TabletMeta) ResetToBeCleaned() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toBeCleaned = time.Time{}
}

// InvertedIndex maps tablet ids to their location metadata and tracks which
// node hosts replicas of which tablet. It is mutated by replica reports,
// table creation, and the tablet meta sweep, all concurrently.
type InvertedIndex struct {
	mu          sync.RWMutex
	tabletMetas map[int64]*TabletMeta
	nodeTablets map[int64]map[int64]struct{}
}

// NewInvertedIndex constructs an empty index.
func NewInvertedIndex() *InvertedIndex {
	return &InvertedIndex{
		tabletMetas: make(map[int64]*TabletMeta),
		nodeTablets: make(map[int64]map[int64]struct{}),
	}
}

// AddTablet registers a tablet's location metadata.
func (idx *InvertedIndex) AddTablet(tabletID int64, meta *TabletMeta) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.tabletMetas[tabletID] = meta
}

// AddReplica records that a node hosts a replica of a tablet.
func (idx *InvertedIndex) AddReplica(tabletID, nodeID int64) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	tablets, ok := idx.nodeTablets[nodeID]
	if !ok {
		tablets = make(map[int64]struct{})
		idx.nodeTablets[nodeID] = tablets
	}
	tablets[tabletID] = struct{}{}
}

// TabletMeta returns a tablet's location metadata, or nil when unknown.
func (idx *InvertedIndex) TabletMeta(tabletID int64) *TabletMeta {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.tabletMetas[tabletID]
}

// TabletIDsByNode returns the ids of all tablets claimed to have a replica on
// the node, in stable order.
func (idx *InvertedIndex) TabletIDsByNode(nodeID int64) []int64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	tabletIDs := make([]int64, 0, len(idx.nodeTablets[nodeID]))
	for tabletID := range idx.nodeTablets[nodeID] {
		tabletIDs = append(tabletIDs, tabletID)
	}
	sort.Slice(tabletIDs, func(i, j int) bool { return tabletIDs[i] < tabletIDs[j] })
	return tabletIDs
}

// DeleteTablet removes a tablet's metadata and all of its replica entries.
func (idx *InvertedIndex) DeleteTablet(tabletID int64) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.tabletMetas, tabletID)
	for _, tablets := range idx.nodeTablets {
		delete(tablets, tabletID)
	}
}

// TabletCount returns the number of tablets the index knows about.
func (idx *InvertedIndex) TabletCount() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.tabletMetas)
}
