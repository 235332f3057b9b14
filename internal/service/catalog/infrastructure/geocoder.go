// internal/service/catalog/infrastructure/geocoder.go
package infrastructure

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"verdant/internal/pkg/httpclient"
	"verdant/internal/pkg/logger"
	"verdant/internal/pkg/redis"
)

const (
	geocodeCachePrefix = "geocache:"
	geocodeCacheTTL    = 30 * 24 * time.Hour
)

var ErrCityNotFound = errors.New("city could not be geocoded")

type cachedCoordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// nominatim 风格的响应，lat/lon 是字符串。
type geocodeResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// CachedGeocoder 先查 Redis，未命中再调地理编码服务并回填缓存。
type CachedGeocoder struct {
	cache   *redis.Client
	client  *httpclient.Client
	baseURL string
}

func NewCachedGeocoder(cache *redis.Client, client *httpclient.Client, baseURL string) *CachedGeocoder {
	return &CachedGeocoder{cache: cache, client: client, baseURL: baseURL}
}

func (g *CachedGeocoder) Resolve(ctx context.Context, city string) (float64, float64, error) {
	key := geocodeCachePrefix + strings.ToLower(strings.TrimSpace(city))

	var cached cachedCoordinates
	err := g.cache.GetJSON(ctx, key, &cached)
	if err == nil {
		return cached.Latitude, cached.Longitude, nil
	}
	if !errors.Is(err, redis.ErrCacheMiss) {
		logger.Ctx(ctx).Warn().Err(err).Str("city", city).Msg("geocode cache read failed")
	}

	lat, lon, err := g.fetch(ctx, city)
	if err != nil {
		return 0, 0, err
	}

	if err := g.cache.SetJSON(ctx, key, cachedCoordinates{Latitude: lat, Longitude: lon}, geocodeCacheTTL); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("city", city).Msg("geocode cache write failed")
	}
	return lat, lon, nil
}

func (g *CachedGeocoder) fetch(ctx context.Context, city string) (float64, float64, error) {
	var results []geocodeResult
	params := url.Values{}
	params.Set("q", city)
	params.Set("format", "json")
	params.Set("limit", "1")

	if err := g.client.GetJSON(ctx, g.baseURL+"/search", params, &results); err != nil {
		return 0, 0, errors.Wrap(err, "geocode request failed")
	}
	if len(results) == 0 {
		return 0, 0, errors.Wrapf(ErrCityNotFound, "city %q", city)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed longitude %q: %w", results[0].Lon, err)
	}
	return lat, lon, nil
}
