// Copyright (C) 2026 the starrocks-frontend authors.
// See LICENSE for copying information.

package catalog

import "sync/atomic"

// PartitionInitVersion is the visible version of a partition that has never
// received data.
const PartitionInitVersion int64 = 1

// IndexState describes a materialized index's visibility. Shadow indexes are
// under construction by a schema change and are excluded from checking.
type IndexState int

const (
	// IndexStateVisible marks a fully built, queryable index.
	IndexStateVisible IndexState = iota
	// IndexStateShadow marks an index still being built.
	IndexStateShadow
)

// Partition is a horizontal slice of a table. The visible version advances on
// every committed load; it is read by the selection and verification paths
// while loads advance it, hence atomic.
type Partition struct {
	checkMeta
	visibleVersion atomic.Int64
	replicationNum int16

	indexes map[int64]*MaterializedIndex
}

// NewPartition constructs an empty partition at the initial version.
func NewPartition(id int64, replicationNum int16) *Partition {
	partition := &Partition{
		checkMeta:      checkMeta{id: id},
		replicationNum: replicationNum,
		indexes:        make(map[int64]*MaterializedIndex),
	}
	partition.visibleVersion.Store(PartitionInitVersion)
	return partition
}

// VisibleVersion returns the current committed data version.
func (p *Partition) VisibleVersion() int64 { return p.visibleVersion.Load() }

// SetVisibleVersion advances the committed data version.
func (p *Partition) SetVisibleVersion(version int64) { p.visibleVersion.Store(version) }

// ReplicationNum returns the partition's configured replica count.
func (p *Partition) ReplicationNum() int16 { return p.replicationNum }

// AddIndex registers a materialized index. Requires the database write lock.
func (p *Partition) AddIndex(index *MaterializedIndex) {
	p.indexes[index.ID()] = index
}

// Index looks up a materialized index by id. Requires the database lock.
func (p *Partition) Index(indexID int64) *MaterializedIndex {
	return p.indexes[indexID]
}

// VisibleIndexes returns the indexes in the visible state. Requires the
// database lock.
func (p *Partition) VisibleIndexes() []*MaterializedIndex {
	indexes := make([]*MaterializedIndex, 0, len(p.indexes))
	for _, index := range p.indexes {
		if index.State() == IndexStateVisible {
			indexes = append(indexes, index)
		}
	}
	return indexes
}

// MaterializedIndex groups the tablets of one index shape within a partition.
type MaterializedIndex struct {
	checkMeta
	state   IndexState
	tablets map[int64]*Tablet
}

// NewMaterializedIndex constructs an empty index.
func NewMaterializedIndex(id int64, state IndexState) *MaterializedIndex {
	return &MaterializedIndex{
		checkMeta: checkMeta{id: id},
		state:     state,
		tablets:   make(map[int64]*Tablet),
	}
}

// State returns the index visibility state.
func (idx *MaterializedIndex) State() IndexState { return idx.state }

// AddTablet registers a tablet. Requires the database write lock.
func (idx *MaterializedIndex) AddTablet(tablet *Tablet) {
	idx.tablets[tablet.ID()] = tablet
}

// Tablet looks up a tablet by id. Requires the database lock.
func (idx *MaterializedIndex) Tablet(tabletID int64) *Tablet {
	return idx.tablets[tabletID]
}

// Tablets returns all tablets. Requires the database lock.
func (idx *MaterializedIndex) Tablets() []*Tablet {
	tablets := make([]*Tablet, 0, len(idx.tablets))
	for _, tablet := range idx.tablets {
		tablets = append(tablets, tablet)
	}
	return tablets
}
