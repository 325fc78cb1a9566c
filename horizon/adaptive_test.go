package horizon

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVE/TuLiPa-sub002/pkg/cache"
	"github.com/NVE/TuLiPa-sub002/tptime"
)

func TestAdaptive_ReclusterGroupsBySignal(t *testing.T) {
	outer, err := NewSequential([]SequentialGroup{{Count: 1, Delta: tptime.Day(1)}})
	require.NoError(t, err)

	a, err := NewAdaptive(outer, tptime.Hour(6), 4, 2, 7)
	require.NoError(t, err)

	err = a.Recluster([][]float64{{0, 1, 100, 101}})
	require.NoError(t, err)

	assert.Equal(t, 2, a.NumPeriods())
	assert.Equal(t, tptime.Hour(12), a.Duration(0))
	assert.Equal(t, tptime.Hour(12), a.Duration(1))
	assert.Equal(t, a.TotalDuration(), outer.TotalDuration())
}

func TestAdaptive_ReclusterIsDeterministic(t *testing.T) {
	outer, err := NewSequential([]SequentialGroup{{Count: 1, Delta: tptime.Day(1)}})
	require.NoError(t, err)
	a, err := NewAdaptive(outer, tptime.Hour(6), 4, 2, 7)
	require.NoError(t, err)

	signal := [][]float64{{5, 40, 6, 42}}
	require.NoError(t, a.Recluster(signal))
	first := a.durations

	require.NoError(t, a.Recluster(signal))
	assert.Equal(t, first, a.durations)
}

func TestAdaptive_RejectsTooManyBlocks(t *testing.T) {
	outer, err := NewSequential([]SequentialGroup{{Count: 1, Delta: tptime.Day(1)}})
	require.NoError(t, err)

	_, err = NewAdaptive(outer, tptime.Hour(6), 2, 3, 1)
	assert.Error(t, err)
}

func TestAdaptive_ReclusterReusesCachedAssignment(t *testing.T) {
	outer, err := NewSequential([]SequentialGroup{{Count: 1, Delta: tptime.Day(1)}})
	require.NoError(t, err)
	a, err := NewAdaptive(outer, tptime.Hour(6), 4, 2, 7)
	require.NoError(t, err)

	backing := cache.NewMemoryCache(cache.DefaultOptions())
	a.WithCache(cache.NewClusterCache(backing, 0), "test-horizon")

	signal := [][]float64{{5, 40, 6, 42}}
	require.NoError(t, a.Recluster(signal))
	first := a.durations

	stats, err := backing.Stats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalKeys)

	require.NoError(t, a.Recluster(signal))
	assert.Equal(t, first, a.durations)

	stats, err = backing.Stats(context.Background())
	require.NoError(t, err)
	assert.Greater(t, stats.Hits, int64(0))

	// A signal whose natural split is 3-vs-1 rather than 2-vs-2 produces
	// differently sized blocks, confirming the cache miss on a changed
	// signal actually reran k-means instead of replaying the old split.
	changed := [][]float64{{1, 2, 3, 9999}}
	require.NoError(t, a.Recluster(changed))
	assert.NotEqual(t, first, a.durations)
}

func TestAdaptive_ReclusterRejectsWrongSignalShape(t *testing.T) {
	outer, err := NewSequential([]SequentialGroup{{Count: 1, Delta: tptime.Day(1)}})
	require.NoError(t, err)
	a, err := NewAdaptive(outer, tptime.Hour(6), 4, 2, 1)
	require.NoError(t, err)

	err = a.Recluster([][]float64{{1, 2}})
	assert.Error(t, err)
}
