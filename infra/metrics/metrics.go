package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	AvailabilityChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "motorent_availability_checks_total",
			Help: "Availability calculations by outcome",
		},
		[]string{"outcome"},
	)
	RentalsReserved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "motorent_rentals_reserved_total",
			Help: "Rental units written by checkout",
		},
	)
	CheckoutFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "motorent_checkout_failures_total",
			Help: "Checkouts that did not complete, by reason",
		},
		[]string{"reason"},
	)
	RentalTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "motorent_rental_transitions_total",
			Help: "Rental status changes by target status",
		},
		[]string{"status"},
	)
)

// Route labels requests by their route template so ids do not explode cardinality.
func Route(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}

func Middleware(c *gin.Context) {
	if c.Request.URL.Path == "/metrics" {
		c.Next()
		return
	}
	start := time.Now()
	c.Next()
	route := Route(c)
	RequestTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	RequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
}

func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

func ObserveAvailability(available bool) {
	if available {
		AvailabilityChecks.WithLabelValues("available").Inc()
		return
	}
	AvailabilityChecks.WithLabelValues("unavailable").Inc()
}
