// internal/service/watering/domain/weather.go
package domain

// 降雨判定使用的天气状况码区间 (OpenWeather 约定):
// 2xx 雷暴, 3xx 毛毛雨, 5xx 降雨。6xx 降雪及以上不算降雨。
const (
	rainCodeLow  = 200
	rainCodeHigh = 600
)

// WeatherCondition 是气象服务返回的单条天气状况。
type WeatherCondition struct {
	Code        int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
}

// WeatherReport 是某个坐标的当前天气。Conditions 为空表示
// 响应缺失或畸形，一律按"没有下雨"处理，而不是报错。
type WeatherReport struct {
	Conditions []WeatherCondition
}

// HasRained 判断主天气状况码是否落在降雨区间。nil 安全。
func (r *WeatherReport) HasRained() bool {
	if r == nil || len(r.Conditions) == 0 {
		return false
	}
	code := r.Conditions[0].Code
	return code >= rainCodeLow && code < rainCodeHigh
}
