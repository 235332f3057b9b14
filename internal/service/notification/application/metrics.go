package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	remindersSuppressed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notification_reminders_suppressed_total",
		Help: "Reminders dropped by a business delivery rule.",
	})
	pushesRouted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notification_pushes_routed_total",
		Help: "Push messages routed to a gateway node.",
	})
)
