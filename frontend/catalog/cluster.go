// Copyright (C) 2026 the starrocks-frontend authors.
// See LICENSE for copying information.

package catalog

import (
	"sort"
	"sync"
)

// Cluster tracks the storage nodes known to the controller. The tablet meta
// sweep enumerates nodes from here, including nodes that currently host no
// tablets.
type Cluster struct {
	mu    sync.RWMutex
	nodes map[int64]struct{}
}

// NewCluster constructs an empty cluster view.
func NewCluster() *Cluster {
	return &Cluster{nodes: make(map[int64]struct{})}
}

// AddNode registers a storage node.
func (c *Cluster) AddNode(nodeID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nodes[nodeID] = struct{}{}
}

// RemoveNode forgets a storage node.
func (c *Cluster) RemoveNode(nodeID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.nodes, nodeID)
}

// NodeIDs returns all known node ids in stable order.
func (c *Cluster) NodeIDs() []int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]int64, 0, len(c.nodes))
	for id := range c.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
