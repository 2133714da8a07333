// Copyright (C) 2026 the starrocks-frontend authors.
// See LICENSE for copying information.

package consistency

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreatingTableGuardCounts(t *testing.T) {
	guard := NewCreatingTableGuard()
	require.False(t, guard.Contains(1))

	// overlapping creation attempts stack
	guard.AddCreatingTable(1)
	guard.AddCreatingTable(1)
	require.True(t, guard.Contains(1))

	guard.DeleteCreatingTable(1)
	require.True(t, guard.Contains(1))
	guard.DeleteCreatingTable(1)
	require.False(t, guard.Contains(1))

	// extra decrements never go negative
	guard.DeleteCreatingTable(1)
	require.False(t, guard.Contains(1))
	guard.AddCreatingTable(1)
	require.True(t, guard.Contains(1))
	guard.DeleteCreatingTable(1)
	require.False(t, guard.Contains(1))
}

func TestCreatingTableGuardConcurrent(t *testing.T) {
	guard := NewCreatingTableGuard()

	const workers = 32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			guard.AddCreatingTable(9)
			guard.DeleteCreatingTable(9)
		}()
	}
	wg.Wait()

	require.False(t, guard.Contains(9))
}
