// kz-api - CS2KZ records and game-server backend
// SPDX-License-Identifier: MIT

package gameserver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kz_gameserver_connections_active",
		Help: "Currently connected game servers.",
	})

	metricConnectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kz_gameserver_connections_total",
		Help: "Game-server connections accepted since start.",
	})

	metricConnectionCloses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kz_gameserver_connection_closes_total",
		Help: "Game-server connection closures, by reason.",
	}, []string{"reason"})

	metricMessagesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kz_gameserver_messages_received_total",
		Help: "Inbound game-server messages, by type.",
	}, []string{"type"})

	metricAuthFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kz_gameserver_auth_failures_total",
		Help: "Rejected game-server upgrade attempts.",
	})
)
