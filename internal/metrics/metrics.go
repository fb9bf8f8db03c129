package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// User Activity Metrics
	NewUsersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "app_new_users_total",
		Help: "Total number of users created through the admin API.",
	})
	TotalUsers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "app_total_users",
		Help: "Total number of registered users in the application.",
	})
	AuthAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "app_auth_attempts_total",
		Help: "Total number of basic auth attempts (successful and failed).",
	}, []string{"status"}) // status: "success" or "failed"

	// Application-Specific Feature Usage Metrics
	DocumentsCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "app_documents_created_total",
		Help: "Total number of documents created, by entity.",
	}, []string{"entity"})
	DocumentsUpdatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "app_documents_updated_total",
		Help: "Total number of documents updated, by entity.",
	}, []string{"entity"})
	DocumentsDeletedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "app_documents_deleted_total",
		Help: "Total number of documents deleted, by entity.",
	}, []string{"entity"})
)
