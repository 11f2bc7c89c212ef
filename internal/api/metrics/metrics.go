// Package metrics defines and registers the custom Prometheus metrics of the
// brokerage API. It is the single source of truth for metric names, labels,
// and help strings; everything registers with the default registry at import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "realty"

// MutationsTotal counts committed store mutations reaching the API.
// Labels:
//   - entity: the collection touched (user, property, client, pipeline, settings)
//   - action: create, update, delete, restore, approval
var MutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mutations_total",
		Help:      "Total number of committed store mutations, by entity and action.",
	},
	[]string{"entity", "action"},
)

// MutationErrorsTotal counts refused mutations.
// Label:
//   - entity: the collection the refused mutation targeted
var MutationErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mutation_errors_total",
		Help:      "Total number of mutations refused by a precondition.",
	},
	[]string{"entity"},
)

// LoginsTotal counts authentication attempts by outcome.
// Label:
//   - result: "ok", "blocked", or "invalid"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)
