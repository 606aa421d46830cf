package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Domain counters, exposed at /metrics alongside the default Go and process
// collectors.
var (
	Checkins = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gymkiosk_checkins_total",
		Help: "Visits recorded for already-registered users.",
	})
	Registrations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gymkiosk_registrations_total",
		Help: "New users registered (each also records a first visit).",
	})
	Updates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gymkiosk_updates_total",
		Help: "User rows overwritten (or created) by the edit flow.",
	})
	LookupMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gymkiosk_lookup_misses_total",
		Help: "Check-in attempts with an id absent from the Users table.",
	})
	StoreErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gymkiosk_store_errors_total",
		Help: "Record store operations that failed.",
	})
)
