package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	contentOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ventures_content_operations_total",
			Help: "Content write operations by type, operation and result",
		},
		[]string{"type", "operation", "result"},
	)

	tenderForksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ventures_tender_forks_total",
			Help: "Tender version forks by result",
		},
		[]string{"result"},
	)

	storageObjectsDeleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ventures_storage_objects_deleted_total",
			Help: "Stored objects removed after record changes, by result",
		},
		[]string{"result"},
	)
)

func observeOperation(contentType, operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	contentOperationsTotal.WithLabelValues(contentType, operation, result).Inc()
}
