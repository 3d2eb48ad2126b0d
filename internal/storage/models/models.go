package models

import "time"

type QueryRecord struct {
	ID                  string
	UserID              string
	QueryText           string
	Response            string
	Mode                string
	Success             bool
	DocumentCount       int
	RetrievalLatencyMS  float64
	GenerationLatencyMS float64
	TotalLatencyMS      float64
	CreatedAt           time.Time
}

type FeedbackRecord struct {
	ID        int
	QueryID   string
	UserID    string
	Rating    int
	Comment   string
	CreatedAt time.Time
}

type FeedbackStats struct {
	Count         int
	AverageRating float64
}
