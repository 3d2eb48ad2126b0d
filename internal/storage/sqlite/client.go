package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/docuassist/backend/internal/storage/models"
	"github.com/docuassist/backend/pkg/logger"
)

// Client persists query records and feedback. Conversation history is
// deliberately not stored here; it lives in memory for process lifetime.
type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS query_history (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		query_text TEXT NOT NULL,
		response TEXT,
		mode TEXT,
		success INTEGER NOT NULL DEFAULT 1,
		document_count INTEGER,
		retrieval_latency_ms REAL,
		generation_latency_ms REAL,
		total_latency_ms REAL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_query_user ON query_history(user_id);
	CREATE INDEX IF NOT EXISTS idx_query_created ON query_history(created_at);

	CREATE TABLE IF NOT EXISTS feedback (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		query_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		rating INTEGER NOT NULL,
		comment TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_feedback_query ON feedback(query_id);
	CREATE INDEX IF NOT EXISTS idx_feedback_created ON feedback(created_at);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) InsertQueryRecord(record *models.QueryRecord) error {
	query := `
		INSERT INTO query_history (id, user_id, query_text, response, mode, success,
			document_count, retrieval_latency_ms, generation_latency_ms, total_latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	success := 0
	if record.Success {
		success = 1
	}

	_, err := c.db.Exec(
		query,
		record.ID,
		record.UserID,
		record.QueryText,
		record.Response,
		record.Mode,
		success,
		record.DocumentCount,
		record.RetrievalLatencyMS,
		record.GenerationLatencyMS,
		record.TotalLatencyMS,
		record.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert query record: %w", err)
	}

	return nil
}

func (c *Client) InsertFeedback(record *models.FeedbackRecord) error {
	query := `
		INSERT INTO feedback (query_id, user_id, rating, comment, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := c.db.Exec(
		query,
		record.QueryID,
		record.UserID,
		record.Rating,
		record.Comment,
		createdAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert feedback: %w", err)
	}

	return nil
}

func (c *Client) GetFeedbackStats() (*models.FeedbackStats, error) {
	row := c.db.QueryRow(`SELECT COUNT(*), COALESCE(AVG(rating), 0) FROM feedback`)

	var stats models.FeedbackStats
	if err := row.Scan(&stats.Count, &stats.AverageRating); err != nil {
		return nil, fmt.Errorf("failed to read feedback stats: %w", err)
	}

	return &stats, nil
}
