// Package metrics exposes Prometheus counters and gauges for job
// throughput and queue depth, scraped via an HTTP handler.
package metrics

import (
	"net/http"

	"github.com/dkowalski/queuectl/job"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector tracks job lifecycle counts and point-in-time queue depth.
type Collector struct {
	registry *prometheus.Registry

	enqueued  prometheus.Counter
	completed prometheus.Counter
	failed    prometheus.Counter
	dead      prometheus.Counter

	jobsByState *prometheus.GaugeVec
}

// NewCollector creates a Collector registered against its own
// prometheus.Registry, so multiple Collectors (e.g. one per test) can
// coexist without colliding on the global default registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		enqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "queuectl_jobs_enqueued_total",
			Help: "Total number of jobs submitted.",
		}),
		completed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "queuectl_jobs_completed_total",
			Help: "Total number of jobs that completed successfully.",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "queuectl_jobs_failed_total",
			Help: "Total number of failed attempts that were scheduled for retry.",
		}),
		dead: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "queuectl_jobs_dead_total",
			Help: "Total number of jobs moved to the dead letter state.",
		}),
		jobsByState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "queuectl_jobs_by_state",
			Help: "Current number of jobs in each state.",
		}, []string{"state"}),
	}

	c.registry.MustRegister(c.enqueued, c.completed, c.failed, c.dead, c.jobsByState)
	return c
}

// RecordEnqueue records a successful Submit.
func (c *Collector) RecordEnqueue() {
	c.enqueued.Inc()
}

// RecordCompleted records a job reaching Completed.
func (c *Collector) RecordCompleted() {
	c.completed.Inc()
}

// RecordFailed records a job reaching Failed (retry scheduled).
func (c *Collector) RecordFailed() {
	c.failed.Inc()
}

// RecordDead records a job reaching Dead.
func (c *Collector) RecordDead() {
	c.dead.Inc()
}

// SetStats overwrites the jobs-by-state gauge from a Store.Stats
// snapshot.
func (c *Collector) SetStats(stats map[job.Status]int64) {
	for _, s := range []job.Status{job.Pending, job.Processing, job.Completed, job.Failed, job.Dead} {
		c.jobsByState.WithLabelValues(s.String()).Set(float64(stats[s]))
	}
}

// Handler returns the HTTP handler to mount at /metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
