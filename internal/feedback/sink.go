// Package feedback records user-supplied quality ratings. Submissions
// are accepted for any query id; no referential check is made against
// previously issued queries.
package feedback

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/docuassist/backend/internal/metrics"
	"github.com/docuassist/backend/internal/storage/models"
	"github.com/docuassist/backend/pkg/logger"
)

// Writer is the persistence behind the sink.
type Writer interface {
	InsertFeedback(record *models.FeedbackRecord) error
	GetFeedbackStats() (*models.FeedbackStats, error)
}

// Sink is a write-only capture of feedback records.
type Sink struct {
	writer Writer
}

func NewSink(writer Writer) *Sink {
	return &Sink{writer: writer}
}

// Record stores one rating. Any underlying write failure surfaces as
// false; the caller may retry at the boundary.
func (s *Sink) Record(ctx context.Context, queryID, userID string, rating int, text string) bool {
	record := &models.FeedbackRecord{
		QueryID:   queryID,
		UserID:    userID,
		Rating:    rating,
		Comment:   text,
		CreatedAt: time.Now(),
	}

	if err := s.writer.InsertFeedback(record); err != nil {
		logger.Error("Failed to record feedback",
			zap.Error(err),
			zap.String("query_id", queryID),
		)
		return false
	}

	metrics.FeedbackRating.Observe(float64(rating))
	logger.Info("Feedback recorded",
		zap.String("query_id", queryID),
		zap.Int("rating", rating),
	)

	return true
}

// Stats reports the aggregate rating count and average.
func (s *Sink) Stats(ctx context.Context) (*models.FeedbackStats, error) {
	return s.writer.GetFeedbackStats()
}
