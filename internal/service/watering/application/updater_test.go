package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"verdant/internal/service/watering/domain"
)

// fakePlantRepo 是 domain.PlantRepository 的内存实现。
type fakePlantRepo struct {
	plants map[string][]*domain.Plant // businessID -> plants
	// 写回的 (businessID, plantID) 记录，用于断言持久化行为
	upserts []string
	// 注入错误
	listPlantsErr map[string]error
	upsertErr     error
}

func newFakePlantRepo() *fakePlantRepo {
	return &fakePlantRepo{
		plants:        make(map[string][]*domain.Plant),
		listPlantsErr: make(map[string]error),
	}
}

func (f *fakePlantRepo) add(p *domain.Plant) {
	f.plants[p.BusinessID] = append(f.plants[p.BusinessID], p)
}

func (f *fakePlantRepo) ListBusinessIDs(ctx context.Context) ([]string, error) {
	var ids []string
	for id, plants := range f.plants {
		for _, p := range plants {
			if p.Location != nil {
				ids = append(ids, id)
				break
			}
		}
	}
	return ids, nil
}

func (f *fakePlantRepo) RepresentativeLocation(ctx context.Context, businessID string) (*domain.GPSCoordinates, error) {
	var best *domain.Plant
	for _, p := range f.plants[businessID] {
		if p.Location == nil {
			continue
		}
		if best == nil || p.ID < best.ID {
			best = p
		}
	}
	if best == nil {
		return nil, nil
	}
	return best.Location, nil
}

func (f *fakePlantRepo) ListPlants(ctx context.Context, businessID string) ([]*domain.Plant, error) {
	if err := f.listPlantsErr[businessID]; err != nil {
		return nil, err
	}
	return f.plants[businessID], nil
}

func (f *fakePlantRepo) ListPlantsNeedingWater(ctx context.Context, businessID string) ([]*domain.Plant, error) {
	var out []*domain.Plant
	for _, p := range f.plants[businessID] {
		if p.Schedule != nil && p.Schedule.NeedsWatering {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePlantRepo) UpsertSchedule(ctx context.Context, plant *domain.Plant) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts = append(f.upserts, plant.BusinessID+"/"+plant.ID)
	return nil
}

// fakeWeather 是 port.WeatherService 的可编程实现。
type fakeWeather struct {
	report *domain.WeatherReport
	err    error
	calls  int
}

func (f *fakeWeather) FetchCurrent(ctx context.Context, lat, lon float64) (*domain.WeatherReport, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

func rainReport() *domain.WeatherReport {
	return &domain.WeatherReport{Conditions: []domain.WeatherCondition{{Code: 500, Main: "Rain"}}}
}

func clearReport() *domain.WeatherReport {
	return &domain.WeatherReport{Conditions: []domain.WeatherCondition{{Code: 800, Main: "Clear"}}}
}

func fixedClock(date string) func() time.Time {
	ts, _ := time.Parse(domain.DateLayout, date)
	return func() time.Time { return ts }
}

func gps(lat, lon float64) *domain.GPSCoordinates {
	return &domain.GPSCoordinates{Latitude: lat, Longitude: lon}
}

func newUpdater(repo *fakePlantRepo, weather *fakeWeather, date string) *DailyUpdater {
	u := NewDailyUpdater(repo, weather, otel.Tracer("test"))
	u.now = fixedClock(date)
	return u
}

func TestRun_InitializesMissingSchedules(t *testing.T) {
	repo := newFakePlantRepo()
	repo.add(&domain.Plant{ID: "p1", BusinessID: "b1", WaterDays: 5, Location: gps(52.5, 13.4)})
	repo.add(&domain.Plant{ID: "p2", BusinessID: "b1"}) // 无坐标、无配置间隔

	u := newUpdater(repo, &fakeWeather{report: clearReport()}, "2026-08-23")
	require.NoError(t, u.Run(context.Background()))

	for _, p := range repo.plants["b1"] {
		require.NotNil(t, p.Schedule, "plant %s", p.ID)
		assert.Equal(t, p.Schedule.WaterDays, p.Schedule.ActiveWaterDays)
		assert.False(t, p.Schedule.NeedsWatering)
		assert.False(t, p.Schedule.WeatherAffected)
	}
	assert.Equal(t, 5, repo.plants["b1"][0].Schedule.WaterDays)
	assert.Equal(t, domain.DefaultWaterDays, repo.plants["b1"][1].Schedule.WaterDays)
	assert.Len(t, repo.upserts, 2)
}

func TestRun_RainResetsEveryPlantOfBusiness(t *testing.T) {
	repo := newFakePlantRepo()
	repo.add(&domain.Plant{
		ID: "p1", BusinessID: "b1", WaterDays: 5, Location: gps(52.5, 13.4),
		Schedule: &domain.WateringSchedule{WaterDays: 5, ActiveWaterDays: 0, NeedsWatering: true, LastWateringUpdate: "2026-08-22"},
	})
	repo.add(&domain.Plant{
		ID: "p2", BusinessID: "b1", WaterDays: 9,
		Schedule: &domain.WateringSchedule{WaterDays: 9, ActiveWaterDays: 2, LastWateringUpdate: "2026-08-22"},
	})

	u := newUpdater(repo, &fakeWeather{report: rainReport()}, "2026-08-23")
	require.NoError(t, u.Run(context.Background()))

	for _, p := range repo.plants["b1"] {
		assert.Equal(t, p.Schedule.WaterDays, p.Schedule.ActiveWaterDays, "plant %s", p.ID)
		assert.True(t, p.Schedule.WeatherAffected, "plant %s", p.ID)
		assert.False(t, p.Schedule.NeedsWatering, "plant %s", p.ID)
		assert.Equal(t, "2026-08-23", p.Schedule.LastWateringUpdate)
	}
}

func TestRun_SecondRunSameDayIsIdempotent(t *testing.T) {
	repo := newFakePlantRepo()
	repo.add(&domain.Plant{
		ID: "p1", BusinessID: "b1", WaterDays: 5, Location: gps(52.5, 13.4),
		Schedule: &domain.WateringSchedule{WaterDays: 5, ActiveWaterDays: 3, LastWateringUpdate: "2026-08-22"},
	})

	u := newUpdater(repo, &fakeWeather{report: clearReport()}, "2026-08-23")
	require.NoError(t, u.Run(context.Background()))
	assert.Equal(t, 2, repo.plants["b1"][0].Schedule.ActiveWaterDays)
	assert.Len(t, repo.upserts, 1)

	// 同一天第二轮: 不产生任何状态变化和写回
	require.NoError(t, u.Run(context.Background()))
	assert.Equal(t, 2, repo.plants["b1"][0].Schedule.ActiveWaterDays)
	assert.Len(t, repo.upserts, 1)
}

func TestRun_WeatherFailureMeansNoRain(t *testing.T) {
	repo := newFakePlantRepo()
	repo.add(&domain.Plant{
		ID: "p1", BusinessID: "b1", WaterDays: 5, Location: gps(52.5, 13.4),
		Schedule: &domain.WateringSchedule{WaterDays: 5, ActiveWaterDays: 1, LastWateringUpdate: "2026-08-22"},
	})

	u := newUpdater(repo, &fakeWeather{err: errors.New("oracle down")}, "2026-08-23")
	require.NoError(t, u.Run(context.Background()))

	// 天气失败按无雨处理: 走衰减路径而不是跳过商家
	s := repo.plants["b1"][0].Schedule
	assert.Equal(t, 0, s.ActiveWaterDays)
	assert.True(t, s.NeedsWatering)
	assert.False(t, s.WeatherAffected)
}

func TestRun_MalformedWeatherPayloadMeansNoRain(t *testing.T) {
	repo := newFakePlantRepo()
	repo.add(&domain.Plant{
		ID: "p1", BusinessID: "b1", WaterDays: 5, Location: gps(52.5, 13.4),
		Schedule: &domain.WateringSchedule{WaterDays: 5, ActiveWaterDays: 2, LastWateringUpdate: "2026-08-22"},
	})

	u := newUpdater(repo, &fakeWeather{report: &domain.WeatherReport{}}, "2026-08-23")
	require.NoError(t, u.Run(context.Background()))

	s := repo.plants["b1"][0].Schedule
	assert.Equal(t, 1, s.ActiveWaterDays)
	assert.False(t, s.WeatherAffected)
}

func TestRun_BusinessWithoutCoordinatesIsSkipped(t *testing.T) {
	repo := newFakePlantRepo()
	// b1 没有任何坐标 -> 不会被发现；手工塞进发现结果验证跳过路径
	repo.plants["b1"] = []*domain.Plant{{ID: "p1", BusinessID: "b1", WaterDays: 5}}

	weather := &fakeWeather{report: clearReport()}
	u := newUpdater(repo, weather, "2026-08-23")
	require.NoError(t, u.processBusiness(context.Background(), "b1"))

	assert.Nil(t, repo.plants["b1"][0].Schedule, "skipped business must not be mutated")
	assert.Zero(t, weather.calls)
	assert.Empty(t, repo.upserts)
}

func TestRun_BusinessFailureIsIsolated(t *testing.T) {
	repo := newFakePlantRepo()
	repo.add(&domain.Plant{ID: "p1", BusinessID: "b-bad", WaterDays: 5, Location: gps(1, 1)})
	repo.add(&domain.Plant{ID: "p2", BusinessID: "b-good", WaterDays: 5, Location: gps(2, 2)})
	repo.listPlantsErr["b-bad"] = domain.ErrStoreUnavailable

	u := newUpdater(repo, &fakeWeather{report: clearReport()}, "2026-08-23")
	require.NoError(t, u.Run(context.Background()), "a single business failure must not fail the run")

	assert.NotNil(t, repo.plants["b-good"][0].Schedule, "other businesses still processed")
	assert.Nil(t, repo.plants["b-bad"][0].Schedule)
}

func TestRun_UpsertFailureDoesNotAbortBatch(t *testing.T) {
	repo := newFakePlantRepo()
	repo.add(&domain.Plant{ID: "p1", BusinessID: "b1", WaterDays: 5, Location: gps(1, 1)})
	repo.add(&domain.Plant{ID: "p2", BusinessID: "b1", WaterDays: 5})
	repo.upsertErr = domain.ErrStoreUnavailable

	u := newUpdater(repo, &fakeWeather{report: clearReport()}, "2026-08-23")
	// 单条写回失败只记录日志，既不中断批次也不算商家失败
	require.NoError(t, u.Run(context.Background()))
}
