// internal/service/watering/port/weather.go
package port

import (
	"context"

	"verdant/internal/service/watering/domain"
)

// WeatherService 是天气预言机的出站端口。
// 实现返回 error 或 nil 报告时，调用方一律按"没有下雨"降级。
type WeatherService interface {
	FetchCurrent(ctx context.Context, lat, lon float64) (*domain.WeatherReport, error)
}
