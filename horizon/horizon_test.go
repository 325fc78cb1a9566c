package horizon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/NVE/TuLiPa-sub002/tptime"
)

func TestGetStartTime_PlainTimeDeltaOffset(t *testing.T) {
	ref := tptime.NewTwoTime(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))

	data, scenario := GetStartTime(ref, tptime.Day(1), Offset{TimeDelta: tptime.Day(1)})

	assert.Equal(t, time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC), data)
	assert.Equal(t, time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC), scenario)
}

func TestGetStartTime_ScenarioOnlyOffset(t *testing.T) {
	ref := tptime.NewTwoTime(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))

	data, scenario := GetStartTime(ref, tptime.Zero, Offset{Scenario: tptime.Day(2)})

	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), data)
	assert.Equal(t, time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC), scenario)
}
