package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thr_requests_total",
			Help: "Total number of requests",
		},
		[]string{"route", "code", "method"},
	)

	DBTxDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "thr_db_tx_seconds",
			Help:    "Duration of DB transactions",
			Buckets: prometheus.DefBuckets,
		},
	)

	ReservationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "thr_reservations_total",
			Help: "Total reservations created",
		},
	)

	TicketsReserved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "thr_tickets_reserved_total",
			Help: "Total tickets committed across reservations",
		},
	)

	SeatConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "thr_seat_conflicts_total",
			Help: "Total reservation attempts rejected on seat uniqueness",
		},
	)

	RateLimitExceeded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "thr_rate_limit_exceeded_total",
			Help: "Total rate limit exceeded",
		},
	)
)
