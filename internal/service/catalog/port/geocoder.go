// internal/service/catalog/port/geocoder.go
package port

import "context"

// Geocoder 把城市名解析成坐标。实现带缓存，失败时返回错误而不是零值。
type Geocoder interface {
	Resolve(ctx context.Context, city string) (lat, lon float64, err error)
}
