// Package store handles SQLite persistence of test results.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/speedtype/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNotFound is returned when a result does not exist.
var ErrNotFound = errors.New("result not found")

// Store wraps SQLite access for result data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS results (
			id INTEGER PRIMARY KEY,
			uuid TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			mode TEXT NOT NULL,
			time_limit INTEGER NOT NULL,
			word_limit INTEGER NOT NULL,
			lang TEXT NOT NULL,
			punctuation INTEGER NOT NULL,
			numbers INTEGER NOT NULL,
			difficulty TEXT NOT NULL,
			quote_length TEXT NOT NULL,
			quote_source TEXT NOT NULL,
			quick_restart INTEGER NOT NULL,
			quick_end INTEGER NOT NULL,
			stop_on_error TEXT NOT NULL,
			confidence TEXT NOT NULL,
			wpm INTEGER NOT NULL,
			raw_wpm INTEGER NOT NULL,
			accuracy REAL NOT NULL,
			consistency INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			extra INTEGER NOT NULL,
			missed INTEGER NOT NULL,
			elapsed INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS result_words (
			result_id INTEGER NOT NULL,
			idx INTEGER NOT NULL,
			word TEXT NOT NULL,
			typed TEXT NOT NULL,
			states TEXT NOT NULL,
			completed_at TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			PRIMARY KEY (result_id, idx)
		);`,
		`CREATE TABLE IF NOT EXISTS result_samples (
			result_id INTEGER NOT NULL,
			idx INTEGER NOT NULL,
			elapsed REAL NOT NULL,
			wpm INTEGER NOT NULL,
			raw_wpm INTEGER NOT NULL,
			accuracy REAL NOT NULL,
			PRIMARY KEY (result_id, idx)
		);`,
		`CREATE TABLE IF NOT EXISTS result_char_stats (
			result_id INTEGER NOT NULL,
			char TEXT NOT NULL,
			correct INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			missed INTEGER NOT NULL,
			PRIMARY KEY (result_id, char)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_results_ended_at ON results(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_result_char_stats_char ON result_char_stats(char);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertResult stores a completed run with its words, samples and per-character stats.
func (s *Store) InsertResult(ctx context.Context, r model.Result, chars []model.CharAggregate) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO results (uuid, created_at, started_at, ended_at, mode, time_limit, word_limit, lang,
			punctuation, numbers, difficulty, quote_length, quote_source, quick_restart, quick_end,
			stop_on_error, confidence, wpm, raw_wpm, accuracy, consistency, correct, incorrect, extra, missed, elapsed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		formatTime(r.CreatedAt),
		formatTime(r.StartedAt),
		formatTime(r.EndedAt),
		r.Config.Mode.String(),
		r.Config.TimeLimit,
		r.Config.WordLimit,
		r.Config.Lang,
		r.Config.Punctuation,
		r.Config.Numbers,
		r.Config.Difficulty.String(),
		r.Config.QuoteLength.String(),
		r.QuoteSource,
		r.Settings.QuickRestart,
		r.Settings.QuickEnd,
		r.Settings.StopOnError.String(),
		r.Settings.Confidence.String(),
		r.Stats.WPM,
		r.Stats.RawWPM,
		r.Stats.Accuracy,
		r.Stats.Consistency,
		r.Stats.Correct,
		r.Stats.Incorrect,
		r.Stats.Extra,
		r.Stats.Missed,
		r.Stats.Elapsed,
	)
	if err != nil {
		return 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if err = insertRows(ctx, tx,
		`INSERT INTO result_words (result_id, idx, word, typed, states, completed_at, duration_ms) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		len(r.History), func(i int) []any {
			w := r.History[i]
			return []any{id, i, w.Word, w.Typed, EncodeStates(w.States), formatTime(w.CompletedAt), w.Duration.Milliseconds()}
		}); err != nil {
		return 0, err
	}
	if err = insertRows(ctx, tx,
		`INSERT INTO result_samples (result_id, idx, elapsed, wpm, raw_wpm, accuracy) VALUES (?, ?, ?, ?, ?, ?)`,
		len(r.Samples), func(i int) []any {
			p := r.Samples[i]
			return []any{id, i, p.Elapsed, p.WPM, p.RawWPM, p.Accuracy}
		}); err != nil {
		return 0, err
	}
	if err = insertRows(ctx, tx,
		`INSERT INTO result_char_stats (result_id, char, correct, incorrect, missed) VALUES (?, ?, ?, ?, ?)`,
		len(chars), func(i int) []any {
			c := chars[i]
			return []any{id, c.Char, c.Correct, c.Incorrect, c.Missed}
		}); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

func insertRows(ctx context.Context, tx *sql.Tx, query string, n int, args func(i int) []any) error {
	if n == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			return err
		}
	}
	return nil
}

// GetWeakChars aggregates character stats over the most recent results.
func (s *Store) GetWeakChars(ctx context.Context, window int, lang string) ([]model.CharAggregate, error) {
	if window <= 0 {
		return nil, nil
	}
	query := `WITH recent AS (
		SELECT id FROM results
		WHERE (? = '' OR lang = ?)
		ORDER BY ended_at DESC
		LIMIT ?
	)
	SELECT cs.char, SUM(cs.correct), SUM(cs.incorrect), SUM(cs.missed)
	FROM result_char_stats cs
	JOIN recent r ON r.id = cs.result_id
	GROUP BY cs.char
	ORDER BY cs.char`

	rows, err := s.db.QueryContext(ctx, query, lang, lang, window)
	if err != nil {
		return nil, err
	}
	return scanCharAggregates(rows)
}

// ListCharAggregatesForResults aggregates per-character stats across results.
func (s *Store) ListCharAggregatesForResults(ctx context.Context, resultIDs []int64) ([]model.CharAggregate, error) {
	if len(resultIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(resultIDs))
	args := make([]any, len(resultIDs))
	for i, id := range resultIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT char, SUM(correct), SUM(incorrect), SUM(missed)
		FROM result_char_stats
		WHERE result_id IN (%s)
		GROUP BY char
		ORDER BY char`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanCharAggregates(rows)
}

func scanCharAggregates(rows *sql.Rows) ([]model.CharAggregate, error) {
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	var result []model.CharAggregate
	for rows.Next() {
		var agg model.CharAggregate
		if err := rows.Scan(&agg.Char, &agg.Correct, &agg.Incorrect, &agg.Missed); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
