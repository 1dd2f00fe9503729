package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the provisioning workflow.
type Metrics struct {
	StudentsProvisioned  prometheus.Counter
	ProvisioningFailures *prometheus.CounterVec
	Compensations        *prometheus.CounterVec
	RegistrationWarnings prometheus.Counter
	ProvisioningDuration prometheus.Histogram
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the metrics against a specific registerer. Tests use a
// fresh registry to avoid duplicate registration across cases.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		StudentsProvisioned: factory.NewCounter(prometheus.CounterOpts{
			Name: "registrar_students_provisioned_total",
			Help: "Total number of students successfully provisioned",
		}),
		ProvisioningFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registrar_provisioning_failures_total",
			Help: "Total number of failed provisioning requests by error code",
		}, []string{"code"}),
		Compensations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registrar_compensations_total",
			Help: "Total number of saga compensations executed by step",
		}, []string{"step"}),
		RegistrationWarnings: factory.NewCounter(prometheus.CounterOpts{
			Name: "registrar_registration_warnings_total",
			Help: "Total number of students provisioned with a deferred registration",
		}),
		ProvisioningDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "registrar_provisioning_duration_seconds",
			Help:    "End-to-end provisioning workflow duration",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
