// Package metrics exposes Prometheus collectors for mutations and remote calls.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/dukerupert/chorehub/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "chorehub"

var (
	mutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Optimistic mutations by action and outcome.",
		},
		[]string{"action", "result"},
	)

	rollbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rollbacks_total",
			Help:      "Workspace reverts after a failed remote call.",
		},
		[]string{"action"},
	)

	remoteCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_calls_total",
			Help:      "Calls issued to the remote store.",
		},
		[]string{"op", "kind", "result"},
	)

	remoteCallSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "remote_call_duration_seconds",
			Help:      "Latency of calls to the remote store.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op", "kind"},
	)

	workspacesActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "workspaces_active",
			Help:      "Loaded household workspaces.",
		},
	)
)

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveMutation records the outcome of one coordinated mutation. Input
// rejected before any remote call is counted as "rejected".
func ObserveMutation(action string, err error) {
	res := result(err)
	if model.IsValidation(err) || errors.Is(err, model.ErrNotFound) {
		res = "rejected"
	}
	mutationsTotal.WithLabelValues(action, res).Inc()
}

// ObserveRollback records a workspace revert.
func ObserveRollback(action string) {
	rollbacksTotal.WithLabelValues(action).Inc()
}

// ObserveRemote records one remote call and its latency.
func ObserveRemote(op, kind string, start time.Time, err error) {
	remoteCallsTotal.WithLabelValues(op, kind, result(err)).Inc()
	remoteCallSeconds.WithLabelValues(op, kind).Observe(time.Since(start).Seconds())
}

// SetWorkspaces sets the number of loaded workspaces.
func SetWorkspaces(n int) {
	workspacesActive.Set(float64(n))
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
