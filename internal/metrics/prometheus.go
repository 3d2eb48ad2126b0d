package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docuassist_query_duration_seconds",
			Help:    "Query processing duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"mode"},
	)

	QueryTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docuassist_query_total",
			Help: "Total number of queries processed",
		},
		[]string{"mode", "status"},
	)

	RetrievedDocuments = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "docuassist_retrieved_documents",
			Help:    "Number of documents retrieved per query",
			Buckets: []float64{0, 1, 2, 3, 5, 10},
		},
	)

	FeedbackRating = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "docuassist_feedback_rating",
			Help:    "User feedback ratings",
			Buckets: []float64{1, 2, 3, 4, 5},
		},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docuassist_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docuassist_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)

	DocumentsIndexed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "docuassist_documents_indexed_total",
			Help: "Total documents indexed",
		},
	)
)

func Init() {
	prometheus.MustRegister(QueryDuration)
	prometheus.MustRegister(QueryTotal)
	prometheus.MustRegister(RetrievedDocuments)
	prometheus.MustRegister(FeedbackRating)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(DocumentsIndexed)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
