/**
 * Postgres event sink (D1).
 *
 * Persists each ProcessingEvent into a single processing_events table.
 * Adapted from the teacher's internal/storage/postgres.go connection-pool
 * tuning and statement style, trimmed down: this pipeline has no job
 * lifecycle to UPSERT against, only a terminal, one-shot event per file.
 */

package sink

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"

	"github.com/adverant/intake-router/internal/logging"
	"github.com/adverant/intake-router/internal/model"
)

// PostgresSink writes events into a processing_events table.
type PostgresSink struct {
	db  *sql.DB
	log *logging.Logger
}

// NewPostgresSink opens the connection pool and verifies connectivity.
func NewPostgresSink(databaseURL string) (*PostgresSink, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	return &PostgresSink{db: db, log: logging.NewLogger("sink.postgres")}, nil
}

const insertEventQuery = `
	INSERT INTO processing_events (
		original_filename, final_filename, file_size, status,
		extracted_name, extracted_account, destination_path, error_message, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

func (s *PostgresSink) Emit(event model.ProcessingEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := s.db.ExecContext(ctx, insertEventQuery,
		event.OriginalFilename,
		event.FinalFilename,
		event.FileSize,
		event.Status,
		event.ExtractedName,
		event.ExtractedAccount,
		event.DestinationPath,
		event.ErrorMessage,
		event.Timestamp,
	)
	if err != nil {
		s.log.Error("failed to persist event", "error", err.Error())
	}
}

// Close closes the connection pool.
func (s *PostgresSink) Close() error {
	return s.db.Close()
}
