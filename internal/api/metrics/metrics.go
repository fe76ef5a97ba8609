// Package metrics defines the custom Prometheus metrics for the task API. It
// is the single source of truth for metric names, labels, and help strings.
// Request-level metrics (count, duration, size) come from the echoprometheus
// middleware wired in the router; only domain-level metrics live here.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "taskapi"

// SignupsTotal counts successfully registered users.
var SignupsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of successful user registrations.",
	},
)

// SigninsTotal counts signin attempts.
// Label:
//   - result: "success" or "failure"
var SigninsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signins_total",
		Help:      "Total number of signin attempts, labelled by result.",
	},
	[]string{"result"},
)

// TasksCreatedTotal counts created tasks.
var TasksCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_created_total",
		Help:      "Total number of tasks created.",
	},
)

// TasksCompletedTotal counts completion calls, including repeats on tasks
// that were already completed.
var TasksCompletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_completed_total",
		Help:      "Total number of tasks marked completed.",
	},
)

// TasksDeletedTotal counts deleted tasks.
var TasksDeletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_deleted_total",
		Help:      "Total number of tasks deleted.",
	},
)

// TaskOpDuration measures how long a single task operation takes end-to-end,
// cache and store included.
// Label:
//   - op: "list", "get", "create", "update", "complete", or "delete"
var TaskOpDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "task_op_duration_seconds",
		Help:      "Duration of task operations, labelled by operation.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"op"},
)

// TaskListCacheTotal counts task-list cache lookups.
// Label:
//   - result: "hit" or "miss"
var TaskListCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_list_cache_total",
		Help:      "Total number of task listing cache lookups, labelled by result.",
	},
	[]string{"result"},
)
