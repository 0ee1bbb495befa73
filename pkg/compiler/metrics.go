package compiler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	plansTotal        prometheus.Counter
	planFailuresTotal prometheus.Counter
	joinNodesTotal    prometheus.Counter
	compileDuration   prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	return &metrics{
		plansTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "millrace_compiler_plans_total",
			Help: "Total number of successfully compiled join plans.",
		}),
		planFailuresTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "millrace_compiler_plan_failures_total",
			Help: "Total number of join plan compilations that failed.",
		}),
		joinNodesTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "millrace_compiler_join_nodes_total",
			Help: "Total number of join operator nodes created.",
		}),
		compileDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "millrace_compiler_compile_duration_seconds",
			Help:    "Time spent compiling a join plan.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
