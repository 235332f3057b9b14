package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineKm_KnownDistance(t *testing.T) {
	// 柏林 -> 慕尼黑，约 504 公里
	d := HaversineKm(52.5200, 13.4050, 48.1351, 11.5820)
	assert.InDelta(t, 504, d, 5)
}

func TestHaversineKm_SamePointIsZero(t *testing.T) {
	assert.Zero(t, HaversineKm(52.52, 13.405, 52.52, 13.405))
}

func TestHaversineKm_IsSymmetric(t *testing.T) {
	a := HaversineKm(52.52, 13.405, 48.1351, 11.582)
	b := HaversineKm(48.1351, 11.582, 52.52, 13.405)
	assert.InDelta(t, a, b, 1e-9)
}

func TestRoundKm(t *testing.T) {
	assert.Equal(t, 3.46, RoundKm(3.456789))
	assert.Equal(t, 0.0, RoundKm(0.0049))
}
