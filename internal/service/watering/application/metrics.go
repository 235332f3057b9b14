// internal/service/watering/application/metrics.go
package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	businessesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "watering_businesses_processed_total",
		Help: "Businesses whose plants were reconciled by the daily update.",
	})
	businessesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "watering_businesses_skipped_total",
		Help: "Businesses skipped because no plant carries GPS coordinates.",
	})
	businessesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "watering_businesses_failed_total",
		Help: "Businesses whose processing failed and was isolated.",
	})
	plantsUpdated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "watering_plants_updated_total",
		Help: "Plant schedules written back by the daily update.",
	})
	rainResets = promauto.NewCounter(prometheus.CounterOpts{
		Name: "watering_rain_resets_total",
		Help: "Businesses for which rain was detected and countdowns reset.",
	})
	remindersPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "watering_reminders_published_total",
		Help: "Watering reminder events published to the notification pipeline.",
	})
)
