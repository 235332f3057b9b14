package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	today     = "2026-08-23"
	yesterday = "2026-08-22"
)

func TestApplyDailyUpdate_InitializesMissingSchedule(t *testing.T) {
	plant := &Plant{ID: "p1", BusinessID: "b1", WaterDays: 5}

	dirty := plant.ApplyDailyUpdate(false, today)

	require.True(t, dirty)
	require.NotNil(t, plant.Schedule)
	assert.Equal(t, 5, plant.Schedule.WaterDays)
	assert.Equal(t, 5, plant.Schedule.ActiveWaterDays)
	assert.False(t, plant.Schedule.NeedsWatering)
	assert.False(t, plant.Schedule.WeatherAffected)
	assert.Equal(t, today, plant.Schedule.LastWateringUpdate)
	assert.Nil(t, plant.Schedule.LastWatered)
}

func TestApplyDailyUpdate_InitializesWithDefaultInterval(t *testing.T) {
	plant := &Plant{ID: "p1", BusinessID: "b1"} // waterDays 未配置

	dirty := plant.ApplyDailyUpdate(false, today)

	require.True(t, dirty)
	assert.Equal(t, DefaultWaterDays, plant.Schedule.WaterDays)
	assert.Equal(t, DefaultWaterDays, plant.Schedule.ActiveWaterDays)
}

func TestApplyDailyUpdate_RainResetsCountdown(t *testing.T) {
	plant := &Plant{
		ID: "p1", BusinessID: "b1", WaterDays: 5,
		Schedule: &WateringSchedule{
			WaterDays:          5,
			ActiveWaterDays:    0,
			LastWateringUpdate: yesterday,
			NeedsWatering:      true,
		},
	}

	dirty := plant.ApplyDailyUpdate(true, today)

	require.True(t, dirty)
	assert.Equal(t, 5, plant.Schedule.ActiveWaterDays)
	assert.False(t, plant.Schedule.NeedsWatering)
	assert.True(t, plant.Schedule.WeatherAffected)
	assert.Equal(t, today, plant.Schedule.LastWateringUpdate)
}

func TestApplyDailyUpdate_RainResetsEvenWhenAlreadyUpdatedToday(t *testing.T) {
	plant := &Plant{
		ID: "p1", BusinessID: "b1", WaterDays: 7,
		Schedule: &WateringSchedule{
			WaterDays:          7,
			ActiveWaterDays:    3,
			LastWateringUpdate: today, // 当天已衰减过
		},
	}

	dirty := plant.ApplyDailyUpdate(true, today)

	require.True(t, dirty)
	assert.Equal(t, 7, plant.Schedule.ActiveWaterDays)
	assert.True(t, plant.Schedule.WeatherAffected)
}

func TestApplyDailyUpdate_DecrementsOncePerDay(t *testing.T) {
	plant := &Plant{
		ID: "p1", BusinessID: "b1", WaterDays: 7,
		Schedule: &WateringSchedule{
			WaterDays:          7,
			ActiveWaterDays:    4,
			LastWateringUpdate: yesterday,
		},
	}

	require.True(t, plant.ApplyDailyUpdate(false, today))
	assert.Equal(t, 3, plant.Schedule.ActiveWaterDays)
	assert.False(t, plant.Schedule.NeedsWatering)
	assert.False(t, plant.Schedule.WeatherAffected)
	assert.Equal(t, today, plant.Schedule.LastWateringUpdate)

	// 同一天的第二次执行必须是 no-op
	assert.False(t, plant.ApplyDailyUpdate(false, today))
	assert.Equal(t, 3, plant.Schedule.ActiveWaterDays)
}

func TestApplyDailyUpdate_DecrementFlagsNeedsWateringAtZero(t *testing.T) {
	plant := &Plant{
		ID: "p1", BusinessID: "b1", WaterDays: 5,
		Schedule: &WateringSchedule{
			WaterDays:          5,
			ActiveWaterDays:    1,
			LastWateringUpdate: yesterday,
		},
	}

	require.True(t, plant.ApplyDailyUpdate(false, today))
	assert.Equal(t, 0, plant.Schedule.ActiveWaterDays)
	assert.True(t, plant.Schedule.NeedsWatering)
}

func TestApplyDailyUpdate_DecrementFloorsAtZero(t *testing.T) {
	plant := &Plant{
		ID: "p1", BusinessID: "b1", WaterDays: 5,
		Schedule: &WateringSchedule{
			WaterDays:          5,
			ActiveWaterDays:    0,
			LastWateringUpdate: yesterday,
			NeedsWatering:      true,
		},
	}

	require.True(t, plant.ApplyDailyUpdate(false, today))
	assert.Equal(t, 0, plant.Schedule.ActiveWaterDays)
	assert.True(t, plant.Schedule.NeedsWatering)
}

// needsWatering 必须在每次迁移后都等价于 activeWaterDays <= 0
func TestNeedsWateringInvariant(t *testing.T) {
	for _, hasRained := range []bool{true, false} {
		for active := 0; active <= 3; active++ {
			plant := &Plant{
				ID: "p1", BusinessID: "b1", WaterDays: 3,
				Schedule: &WateringSchedule{
					WaterDays:          3,
					ActiveWaterDays:    active,
					LastWateringUpdate: yesterday,
				},
			}
			plant.ApplyDailyUpdate(hasRained, today)
			assert.Equal(t, plant.Schedule.ActiveWaterDays <= 0, plant.Schedule.NeedsWatering,
				"rain=%v active=%d", hasRained, active)
		}
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Monstera", (&Plant{Name: "Monstera"}).DisplayName())
	assert.Equal(t, "Swiss cheese plant", (&Plant{CommonName: "Swiss cheese plant"}).DisplayName())
	assert.Equal(t, "A plant", (&Plant{}).DisplayName())
}
