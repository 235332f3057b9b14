package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasRained_CodeBands(t *testing.T) {
	cases := []struct {
		code int
		want bool
	}{
		{199, false}, // 区间下界之外
		{200, true},  // 雷暴
		{301, true},  // 毛毛雨
		{500, true},  // 降雨
		{599, true},
		{600, false}, // 降雪不算降雨
		{800, false}, // 晴
	}
	for _, c := range cases {
		report := &WeatherReport{Conditions: []WeatherCondition{{Code: c.code}}}
		assert.Equal(t, c.want, report.HasRained(), "code=%d", c.code)
	}
}

func TestHasRained_MalformedReportMeansNoRain(t *testing.T) {
	var nilReport *WeatherReport
	assert.False(t, nilReport.HasRained())
	assert.False(t, (&WeatherReport{}).HasRained())
}

func TestHasRained_UsesPrimaryConditionOnly(t *testing.T) {
	report := &WeatherReport{Conditions: []WeatherCondition{
		{Code: 800}, // 主状况: 晴
		{Code: 500}, // 次要状况被忽略
	}}
	assert.False(t, report.HasRained())
}
