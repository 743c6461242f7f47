package loader

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/solar-scout/internal/model"
)

func testRecords(n int) []model.BuildingRecord {
	out := make([]model.BuildingRecord, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, model.BuildingRecord{
			Geometry:   json.RawMessage(`{"type":"Polygon","coordinates":[]}`),
			AreaM2:     float64(1000 - i),
			DistanceKM: float64(i),
			Lat:        33.64,
			Lon:        -84.43,
		})
	}
	return out
}

func TestResultCacheHitAndMiss(t *testing.T) {
	c := newResultCache(4, time.Minute)

	_, ok := c.get("a")
	assert.False(t, ok)

	c.put("a", testRecords(3))
	got, ok := c.get("a")
	require.True(t, ok)
	assert.Len(t, got, 3)

	s := c.stats()
	assert.Equal(t, 1, s.Entries)
	assert.Equal(t, int64(1), s.Hits)
	assert.Equal(t, int64(1), s.Misses)
	assert.InDelta(t, 0.5, s.HitRate, 1e-9)
}

func TestResultCacheEvictsOldest(t *testing.T) {
	c := newResultCache(2, time.Minute)

	c.put("a", testRecords(1))
	c.put("b", testRecords(1))

	// Touch "a" so "b" becomes the eviction candidate.
	_, ok := c.get("a")
	require.True(t, ok)

	c.put("c", testRecords(1))

	_, ok = c.get("a")
	assert.True(t, ok)
	_, ok = c.get("b")
	assert.False(t, ok)
	_, ok = c.get("c")
	assert.True(t, ok)

	assert.Equal(t, 2, c.stats().Entries)
}

func TestResultCacheTTLExpiry(t *testing.T) {
	c := newResultCache(4, 10*time.Millisecond)

	c.put("a", testRecords(1))
	_, ok := c.get("a")
	require.True(t, ok)

	time.Sleep(25 * time.Millisecond)
	_, ok = c.get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.stats().Entries)
}

func TestResultCacheIsolation(t *testing.T) {
	c := newResultCache(4, time.Minute)

	original := testRecords(2)
	c.put("a", original)

	// Mutating the slice handed to put must not reach the cache.
	original[0].AreaM2 = -1
	original[0].Geometry[0] = 'X'

	got, ok := c.get("a")
	require.True(t, ok)
	assert.Equal(t, 1000.0, got[0].AreaM2)
	assert.Equal(t, byte('{'), got[0].Geometry[0])

	// Mutating a handed-out copy must not reach later readers.
	got[1].DistanceKM = 999
	got[1].Geometry[0] = 'X'

	again, ok := c.get("a")
	require.True(t, ok)
	assert.Equal(t, 1.0, again[1].DistanceKM)
	assert.Equal(t, byte('{'), again[1].Geometry[0])
}

func TestResultCacheOverwriteRefreshes(t *testing.T) {
	c := newResultCache(2, time.Minute)

	c.put("a", testRecords(1))
	c.put("a", testRecords(5))

	got, ok := c.get("a")
	require.True(t, ok)
	assert.Len(t, got, 5)
	assert.Equal(t, 1, c.stats().Entries)
}

func TestResultCacheCapacityBound(t *testing.T) {
	c := newResultCache(8, time.Minute)
	for i := 0; i < 50; i++ {
		c.put(fmt.Sprintf("k%d", i), testRecords(1))
	}
	assert.Equal(t, 8, c.stats().Entries)
}
