// kz-api - CS2KZ records and game-server backend
// SPDX-License-Identifier: MIT

package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricSessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kz_sessions_created_total",
		Help: "Sessions created via login.",
	})

	metricSessionsRevoked = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kz_sessions_revoked_total",
		Help: "Sessions revoked, by cause.",
	}, []string{"cause"})

	metricSessionRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kz_session_rejections_total",
		Help: "Requests rejected by the session middleware, by reason.",
	}, []string{"reason"})

	metricSessionRefreshes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kz_session_refreshes_total",
		Help: "Sliding-expiry session refreshes.",
	})
)
