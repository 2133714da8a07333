// Copyright (C) 2026 the starrocks-frontend authors.
// See LICENSE for copying information.

package catalog

// TableState describes whether a table is structurally stable. Only tables in
// TableStateNormal participate in consistency checking; the other states mean
// a structural mutation (schema change, rollup build, restore) owns parts of
// the subtree.
type TableState int

const (
	// TableStateNormal marks a structurally stable table.
	TableStateNormal TableState = iota
	// TableStateSchemaChange marks a table with an in-flight schema change.
	TableStateSchemaChange
	// TableStateRollup marks a table with an in-flight rollup build.
	TableStateRollup
	// TableStateRestore marks a table being restored from a backup.
	TableStateRestore
)

// Table is a replicated OLAP table. Field access requires the owning
// database's lock: read lock for lookups, write lock for mutation.
type Table struct {
	checkMeta
	name        string
	state       TableState
	cloudNative bool

	partitions map[int64]*Partition
}

// NewTable constructs a table in the normal state.
func NewTable(id int64, name string) *Table {
	return &Table{
		checkMeta:  checkMeta{id: id},
		name:       name,
		state:      TableStateNormal,
		partitions: make(map[int64]*Partition),
	}
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// State returns the table's structural state.
func (t *Table) State() TableState { return t.state }

// SetState updates the table's structural state.
func (t *Table) SetState(state TableState) { t.state = state }

// IsCloudNative reports whether the table keeps its data in shared storage.
// Cloud native tables do not materialize tablets in the index tree.
func (t *Table) IsCloudNative() bool { return t.cloudNative }

// SetCloudNative marks the table as shared-storage backed.
func (t *Table) SetCloudNative(cloudNative bool) { t.cloudNative = cloudNative }

// AddPartition registers a partition.
func (t *Table) AddPartition(partition *Partition) {
	t.partitions[partition.ID()] = partition
}

// Partition looks up a partition by id.
func (t *Table) Partition(partitionID int64) *Partition {
	return t.partitions[partitionID]
}

// Partitions returns all partitions.
func (t *Table) Partitions() []*Partition {
	partitions := make([]*Partition, 0, len(t.partitions))
	for _, partition := range t.partitions {
		partitions = append(partitions, partition)
	}
	return partitions
}
