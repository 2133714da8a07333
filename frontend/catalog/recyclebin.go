// Copyright (C) 2026 the starrocks-frontend authors.
// See LICENSE for copying information.

package catalog

import "sync"

// RecycleBin holds soft-deleted catalog objects until their retention
// expires. Objects found here are still valid: the tablet meta sweep must not
// purge their tablets, only the bin's own expiry removes them.
type RecycleBin struct {
	mu         sync.RWMutex
	databases  map[int64]*Database
	tables     map[int64]map[int64]*Table
	partitions map[int64]*Partition
}

// NewRecycleBin constructs an empty recycle bin.
func NewRecycleBin() *RecycleBin {
	return &RecycleBin{
		databases:  make(map[int64]*Database),
		tables:     make(map[int64]map[int64]*Table),
		partitions: make(map[int64]*Partition),
	}
}

// RecycleDatabase stores a soft-deleted database.
func (bin *RecycleBin) RecycleDatabase(db *Database) {
	bin.mu.Lock()
	defer bin.mu.Unlock()
	bin.databases[db.ID()] = db
}

// RecycleTable stores a soft-deleted table of a database.
func (bin *RecycleBin) RecycleTable(dbID int64, table *Table) {
	bin.mu.Lock()
	defer bin.mu.Unlock()
	tables, ok := bin.tables[dbID]
	if !ok {
		tables = make(map[int64]*Table)
		bin.tables[dbID] = tables
	}
	tables[table.ID()] = table
}

// RecyclePartition stores a soft-deleted partition.
func (bin *RecycleBin) RecyclePartition(partition *Partition) {
	bin.mu.Lock()
	defer bin.mu.Unlock()
	bin.partitions[partition.ID()] = partition
}

// Database returns a soft-deleted database, or nil.
func (bin *RecycleBin) Database(dbID int64) *Database {
	bin.mu.RLock()
	defer bin.mu.RUnlock()
	return bin.databases[dbID]
}

// Table returns a soft-deleted table of a database, or nil.
func (bin *RecycleBin) Table(dbID, tableID int64) *Table {
	bin.mu.RLock()
	defer bin.mu.RUnlock()
	return bin.tables[dbID][tableID]
}

// Partition returns a soft-deleted partition, or nil.
func (bin *RecycleBin) Partition(partitionID int64) *Partition {
	bin.mu.RLock()
	defer bin.mu.RUnlock()
	return bin.partitions[partitionID]
}
