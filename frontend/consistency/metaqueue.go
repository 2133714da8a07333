// Copyright (C) 2026 the starrocks-frontend authors.
// See LICENSE for copying information.

package consistency

import (
	"container/heap"

	"github.com/dorsegal/starrocks/frontend/catalog"
)

// metaQueue is a min-heap of catalog objects ordered by ascending last check
// time, so the most overdue object pops first. Ties resolve in arbitrary but
// stable-enough heap order.
type metaQueue []catalog.MetaObject

func newMetaQueue(objects ...catalog.MetaObject) *metaQueue {
	queue := metaQueue(objects)
	heap.Init(&queue)
	return &queue
}

func (q metaQueue) Len() int { return len(q) }

func (q metaQueue) Less(i, j int) bool {
	return q[i].LastCheckTime().Before(q[j].LastCheckTime())
}

func (q metaQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *metaQueue) Push(x any) { *q = append(*q, x.(catalog.MetaObject)) }

func (q *metaQueue) Pop() any {
	old := *q
	last := old[len(old)-1]
	old[len(old)-1] = nil
	*q = old[:len(old)-1]
	return last
}

func (q *metaQueue) push(object catalog.MetaObject) { heap.Push(q, object) }

func (q *metaQueue) pop() catalog.MetaObject {
	return heap.Pop(q).(catalog.MetaObject)
}
