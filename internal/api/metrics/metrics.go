// Package metrics defines all custom Prometheus metrics for the rental API.
// It is the single source of truth for metric names, labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "rental"

// ListingsCreatedTotal counts newly created listings.
// Label:
//   - kind: "residence" or "annonce"
var ListingsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listings_created_total",
		Help:      "Total number of listings created, by listing kind.",
	},
	[]string{"kind"},
)

// ReservationsCreatedTotal counts newly created reservations.
var ReservationsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reservations_created_total",
		Help:      "Total number of reservations created.",
	},
)

// ReservationTransitionsTotal counts status transitions applied to reservations.
// Label:
//   - status: the new status ("confirmée" or "annulée")
var ReservationTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reservation_transitions_total",
		Help:      "Total number of reservation status transitions, by target status.",
	},
	[]string{"status"},
)

// AuthLoginsTotal counts login attempts.
// Label:
//   - outcome: "success" or "failure"
var AuthLoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_logins_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"outcome"},
)
