// internal/service/catalog/domain/geo.go
package domain

import "math"

const earthRadiusKm = 6371.0

// HaversineKm 计算两个经纬度点的大圆距离，单位公里。
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// RoundKm 把距离保留两位小数，用于展示。
func RoundKm(km float64) float64 {
	return math.Round(km*100) / 100
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
