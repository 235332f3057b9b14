package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliveryRule_EmptyExpressionAlwaysAllows(t *testing.T) {
	rule, err := CompileDeliveryRule("")
	require.NoError(t, err)

	allowed, err := rule.Allow(0, 3)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestDeliveryRule_EvaluatesInputs(t *testing.T) {
	rule, err := CompileDeliveryRule("plantCount >= 3 && hour >= 8 && hour <= 21")
	require.NoError(t, err)

	cases := []struct {
		plantCount, hour int
		want             bool
	}{
		{3, 9, true},
		{2, 9, false},  // 数量不足
		{5, 7, false},  // 太早
		{5, 22, false}, // 太晚
		{10, 21, true},
	}
	for _, c := range cases {
		allowed, err := rule.Allow(c.plantCount, c.hour)
		require.NoError(t, err)
		assert.Equal(t, c.want, allowed, "plantCount=%d hour=%d", c.plantCount, c.hour)
	}
}

func TestCompileDeliveryRule_RejectsInvalidExpression(t *testing.T) {
	_, err := CompileDeliveryRule("plantCount >=")
	assert.Error(t, err)
}

func TestCompileDeliveryRule_RejectsNonBoolExpression(t *testing.T) {
	_, err := CompileDeliveryRule("plantCount + hour")
	assert.Error(t, err)
}

func TestCompileDeliveryRule_RejectsUnknownVariable(t *testing.T) {
	_, err := CompileDeliveryRule("temperature > 20")
	assert.Error(t, err)
}
