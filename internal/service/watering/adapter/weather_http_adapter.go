// internal/service/watering/adapter/weather_http_adapter.go
package adapter

import (
	"context"
	"fmt"
	"net/url"

	"verdant/internal/pkg/httpclient"
	"verdant/internal/service/watering/domain"
)

// WeatherHTTPAdapter 是 port.WeatherService 的 OpenWeather 实现。
type WeatherHTTPAdapter struct {
	client  *httpclient.Client
	baseURL string
	apiKey  string
}

// NewWeatherHTTPAdapter 创建天气适配器。
func NewWeatherHTTPAdapter(client *httpclient.Client, baseURL, apiKey string) (*WeatherHTTPAdapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("weather adapter requires an api key")
	}
	return &WeatherHTTPAdapter{
		client:  client,
		baseURL: baseURL,
		apiKey:  apiKey,
	}, nil
}

// openWeatherResponse 只解码我们关心的字段。
type openWeatherResponse struct {
	Weather []struct {
		ID          int    `json:"id"`
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
}

// FetchCurrent 查询坐标处的当前天气。任何传输或解码错误都原样返回，
// 由调用方决定降级 (跑批侧按"没有下雨"处理)。
func (a *WeatherHTTPAdapter) FetchCurrent(ctx context.Context, lat, lon float64) (*domain.WeatherReport, error) {
	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%g", lat))
	params.Set("lon", fmt.Sprintf("%g", lon))
	params.Set("appid", a.apiKey)

	var resp openWeatherResponse
	if err := a.client.GetJSON(ctx, a.baseURL, params, &resp); err != nil {
		return nil, fmt.Errorf("weather adapter failed to fetch conditions: %w", err)
	}

	report := &domain.WeatherReport{}
	for _, w := range resp.Weather {
		report.Conditions = append(report.Conditions, domain.WeatherCondition{
			Code:        w.ID,
			Main:        w.Main,
			Description: w.Description,
		})
	}
	return report, nil
}
