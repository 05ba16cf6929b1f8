package prometheus

import (
	"strconv"
	"sync"
	"time"

	"github.com/juniormojica/estuarriendo-sub000/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec
	HttpStatusCategory  *prometheus.CounterVec

	// Authentication metrics
	AuthAttemptsCounter prometheus.Counter
	AuthSuccessCounter  prometheus.Counter
	AuthErrorsCounter   prometheus.Counter

	// Database operation metrics
	DbOperationDuration *prometheus.HistogramVec

	// Listing metrics
	ListingOperationsCounter   *prometheus.CounterVec
	ContainerOperationsCounter *prometheus.CounterVec
	UnitOperationsCounter      *prometheus.CounterVec

	// Rental mode and occupancy metrics
	RentalTransitionsCounter *prometheus.CounterVec

	// Notification metrics
	NotificationsCounter *prometheus.CounterVec

	initOnce sync.Once
)

// InitMetrics registers the metrics under the configured prefix. Only the first call registers.
func InitMetrics(config *config.Config) {
	initOnce.Do(func() {
		prefix := config.Metrics.Prefix

		HttpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		)

		HttpRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		)

		HttpStatusCategory = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_status_category_total",
				Help: "Total number of responses by status category (2xx, 4xx, 5xx)",
			},
			[]string{"category"},
		)

		AuthAttemptsCounter = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_auth_attempts_total",
				Help: "Total number of authentication attempts",
			},
		)

		AuthSuccessCounter = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_auth_success_total",
				Help: "Total number of successful authentications",
			},
		)

		AuthErrorsCounter = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_auth_errors_total",
				Help: "Total number of authentication errors",
			},
		)

		DbOperationDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_db_operation_duration_seconds",
				Help:    "Duration of database operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation_type"},
		)

		ListingOperationsCounter = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_listing_operations_total",
				Help: "Total number of standalone listing operations",
			},
			[]string{"operation"},
		)

		ContainerOperationsCounter = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_container_operations_total",
				Help: "Total number of container operations",
			},
			[]string{"operation"},
		)

		UnitOperationsCounter = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_unit_operations_total",
				Help: "Total number of unit operations",
			},
			[]string{"operation"},
		)

		RentalTransitionsCounter = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_rental_mode_transitions_total",
				Help: "Rental mode transitions by target mode and outcome",
			},
			[]string{"to", "result"},
		)

		NotificationsCounter = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_notifications_total",
				Help: "Notification deliveries by event type and outcome",
			},
			[]string{"type", "result"},
		)
	})
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		if DbOperationDuration == nil {
			return
		}
		DbOperationDuration.WithLabelValues(operationType).Observe(time.Since(startTime).Seconds())
	}
}

// TimeDBOperation starts timing a database operation. The returned function
// records the elapsed time when called.
func TimeDBOperation(operationType string) func() {
	track := TrackDBOperation(operationType)
	start := time.Now()
	return func() { track(start) }
}

// RecordHTTPRequest records one served request
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if HttpRequestsTotal == nil {
		return
	}
	statusStr := strconv.Itoa(status)
	HttpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	HttpRequestDuration.WithLabelValues(method, path, statusStr).Observe(duration.Seconds())

	switch {
	case status >= 200 && status < 300:
		HttpStatusCategory.WithLabelValues("2xx").Inc()
	case status >= 400 && status < 500:
		HttpStatusCategory.WithLabelValues("4xx").Inc()
	case status >= 500:
		HttpStatusCategory.WithLabelValues("5xx").Inc()
	}
}

// RecordAuth records an authentication attempt and its outcome
func RecordAuth(ok bool) {
	if AuthAttemptsCounter == nil {
		return
	}
	AuthAttemptsCounter.Inc()
	if ok {
		AuthSuccessCounter.Inc()
	} else {
		AuthErrorsCounter.Inc()
	}
}

// RecordListingOperation increments the counter for standalone listing operations
func RecordListingOperation(operation string) {
	if ListingOperationsCounter != nil {
		ListingOperationsCounter.WithLabelValues(operation).Inc()
	}
}

// RecordContainerOperation increments the counter for container operations
func RecordContainerOperation(operation string) {
	if ContainerOperationsCounter != nil {
		ContainerOperationsCounter.WithLabelValues(operation).Inc()
	}
}

// RecordUnitOperation increments the counter for unit operations
func RecordUnitOperation(operation string) {
	if UnitOperationsCounter != nil {
		UnitOperationsCounter.WithLabelValues(operation).Inc()
	}
}

// RecordRentalTransition counts an attempted rental mode change
func RecordRentalTransition(to string, accepted bool) {
	if RentalTransitionsCounter == nil {
		return
	}
	result := "accepted"
	if !accepted {
		result = "rejected"
	}
	RentalTransitionsCounter.WithLabelValues(to, result).Inc()
}

// RecordNotification counts a notification delivery
func RecordNotification(eventType string, err error) {
	if NotificationsCounter == nil {
		return
	}
	result := "sent"
	if err != nil {
		result = "failed"
	}
	NotificationsCounter.WithLabelValues(eventType, result).Inc()
}
