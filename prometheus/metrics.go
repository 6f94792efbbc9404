package prometheus

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/fx0883/productsShow/pkg/config"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Authentication metrics
	AuthAttemptsCounter prometheus.Counter
	AuthErrorsCounter   *prometheus.CounterVec

	// Tenant isolation metrics
	TenantContextMissingCounter prometheus.Counter
	UnrestrictedAccessCounter   *prometheus.CounterVec

	// Quota metrics
	QuotaRejectionsCounter       *prometheus.CounterVec
	StorageRecomputeDuration     prometheus.Histogram
	StorageUsedGauge             *prometheus.GaugeVec

	// Database operation metrics
	DbOperationDuration *prometheus.HistogramVec

	// Catalog metrics
	ProductOperationsCounter  *prometheus.CounterVec
	CategoryOperationsCounter *prometheus.CounterVec

	// CSV transfer metrics
	ImportRowsCounter   *prometheus.CounterVec
	ExportRowsCounter   prometheus.Counter
	TransferJobsCounter *prometheus.CounterVec
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(config *config.Config) {
	// Use metric prefix from configuration
	prefix := config.Metrics.Prefix

	// HTTP request metrics
	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	AuthAttemptsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
	)

	AuthErrorsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_auth_errors_total",
			Help: "Total number of authentication errors by reason",
		},
		[]string{"reason"},
	)

	TenantContextMissingCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_tenant_context_missing_total",
			Help: "Total number of writes rejected for lack of a tenant context",
		},
	)

	UnrestrictedAccessCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_unrestricted_access_total",
			Help: "Total number of explicit cross-tenant data accesses by reason",
		},
		[]string{"reason"},
	)

	QuotaRejectionsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_quota_rejections_total",
			Help: "Total number of writes rejected by quota kind",
		},
		[]string{"kind"},
	)

	StorageRecomputeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    prefix + "_storage_recompute_duration_seconds",
			Help:    "Duration of tenant storage usage recomputation",
			Buckets: prometheus.DefBuckets,
		},
	)

	StorageUsedGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: prefix + "_storage_used_mb",
			Help: "Cached storage usage per tenant in MB",
		},
		[]string{"tenant_id"},
	)

	DbOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	ProductOperationsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_product_operations_total",
			Help: "Total number of product operations",
		},
		[]string{"operation"},
	)

	CategoryOperationsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_category_operations_total",
			Help: "Total number of category operations",
		},
		[]string{"operation"},
	)

	ImportRowsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_import_rows_total",
			Help: "Total number of CSV rows imported by outcome",
		},
		[]string{"outcome"},
	)

	ExportRowsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_export_rows_total",
			Help: "Total number of CSV rows exported",
		},
	)

	TransferJobsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_transfer_jobs_total",
			Help: "Total number of import/export jobs by direction and status",
		},
		[]string{"direction", "status"},
	)
}

// RecordAuthError increments the auth error counter for a reason.
func RecordAuthError(reason string) {
	if AuthErrorsCounter != nil {
		AuthErrorsCounter.WithLabelValues(reason).Inc()
	}
}

// RecordUnrestrictedAccess increments the cross-tenant access counter.
func RecordUnrestrictedAccess(reason string) {
	if UnrestrictedAccessCounter != nil {
		UnrestrictedAccessCounter.WithLabelValues(reason).Inc()
	}
}

// RecordQuotaRejection increments the quota rejection counter for a kind.
func RecordQuotaRejection(kind string) {
	if QuotaRejectionsCounter != nil {
		QuotaRejectionsCounter.WithLabelValues(kind).Inc()
	}
}

// ObserveStorageRecompute records the duration of a storage usage recompute.
func ObserveStorageRecompute(seconds float64) {
	if StorageRecomputeDuration != nil {
		StorageRecomputeDuration.Observe(seconds)
	}
}

// SetStorageUsed updates the cached storage gauge for a tenant.
func SetStorageUsed(tenantID uint, usedMB float64) {
	if StorageUsedGauge != nil {
		StorageUsedGauge.WithLabelValues(strconv.FormatUint(uint64(tenantID), 10)).Set(usedMB)
	}
}

// TrackDBOperation returns a function that records the elapsed time of a
// database operation when deferred.
func TrackDBOperation(operation string) func(time.Time) {
	return func(start time.Time) {
		if DbOperationDuration != nil {
			DbOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
		}
	}
}
