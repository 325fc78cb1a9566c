package horizon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVE/TuLiPa-sub002/tptime"
)

func TestSequential_BuildsFromGroups(t *testing.T) {
	h, err := NewSequential([]SequentialGroup{
		{Count: 3, Delta: tptime.Day(1)},
		{Count: 2, Delta: tptime.Day(2)},
	})
	require.NoError(t, err)

	assert.Equal(t, 5, h.NumPeriods())
	assert.Equal(t, tptime.Day(1), h.Duration(0))
	assert.Equal(t, tptime.Day(2), h.Duration(4))
	assert.Equal(t, tptime.Day(3), h.StartOffset(3))
	assert.Equal(t, tptime.Day(7), h.TotalDuration())
}

func TestSequential_RejectsEmpty(t *testing.T) {
	_, err := NewSequential(nil)
	assert.Error(t, err)
}

func TestSequential_RejectsNonPositiveDelta(t *testing.T) {
	_, err := NewSequential([]SequentialGroup{{Count: 1, Delta: tptime.Zero}})
	assert.Error(t, err)
}

func TestGetSubperiods_ExactPartition(t *testing.T) {
	coarse, err := NewSequential([]SequentialGroup{{Count: 2, Delta: tptime.Day(3)}})
	require.NoError(t, err)
	fine, err := NewSequential([]SequentialGroup{{Count: 6, Delta: tptime.Day(1)}})
	require.NoError(t, err)

	lo, hi, err := GetSubperiods(coarse, fine, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, lo)
	assert.Equal(t, 3, hi)

	lo, hi, err = GetSubperiods(coarse, fine, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, lo)
	assert.Equal(t, 6, hi)
}

func TestGetSubperiods_Mismatch(t *testing.T) {
	coarse, err := NewSequential([]SequentialGroup{{Count: 1, Delta: tptime.Day(3)}})
	require.NoError(t, err)
	fine, err := NewSequential([]SequentialGroup{{Count: 2, Delta: tptime.Day(1)}})
	require.NoError(t, err)

	_, _, err = GetSubperiods(coarse, fine, 0)
	assert.Error(t, err)
}

func TestGetSubperiods_IndexOutOfRange(t *testing.T) {
	coarse, err := NewSequential([]SequentialGroup{{Count: 1, Delta: tptime.Day(1)}})
	require.NoError(t, err)

	_, _, err = GetSubperiods(coarse, coarse, 5)
	assert.Error(t, err)
}
