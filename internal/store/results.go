package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/verte-zerg/speedtype/internal/model"
)

// stateCodes maps character states to their single-byte storage form.
var stateCodes = map[model.CharState]byte{
	model.StatePending:   'p',
	model.StateCorrect:   'c',
	model.StateIncorrect: 'i',
	model.StateExtra:     'e',
	model.StateMissed:    'm',
}

// EncodeStates packs character states into a compact string.
func EncodeStates(states []model.CharState) string {
	b := make([]byte, len(states))
	for i, s := range states {
		code, ok := stateCodes[s]
		if !ok {
			code = 'p'
		}
		b[i] = code
	}
	return string(b)
}

// DecodeStates reverses EncodeStates.
func DecodeStates(s string) ([]model.CharState, error) {
	out := make([]model.CharState, len(s))
	for i := 0; i < len(s); i++ {
		found := false
		for state, code := range stateCodes {
			if code == s[i] {
				out[i] = state
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("invalid state code %q: %w", s[i], model.ErrUnknownValue)
		}
	}
	return out, nil
}

// ListResults returns stored result summaries in chronological order.
func (s *Store) ListResults(ctx context.Context, cfg model.StatsConfig) ([]model.ResultSummary, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Lang != "" {
		clauses = append(clauses, "lang = ?")
		args = append(args, cfg.Lang)
	}
	if cfg.Mode != "" {
		clauses = append(clauses, "mode = ?")
		args = append(args, cfg.Mode)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, formatTime(*cfg.Since))
	}
	query := fmt.Sprintf(`SELECT id, uuid, ended_at, mode, lang, wpm, raw_wpm, accuracy, consistency, elapsed
		FROM results
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var results []model.ResultSummary
	for rows.Next() {
		var sum model.ResultSummary
		var endedAt, mode string
		if err := rows.Scan(&sum.ResultID, &sum.UUID, &endedAt, &mode, &sum.Lang,
			&sum.WPM, &sum.RawWPM, &sum.Accuracy, &sum.Consistency, &sum.Elapsed); err != nil {
			return nil, err
		}
		if sum.EndedAt, err = parseTime(endedAt); err != nil {
			return nil, err
		}
		if sum.Mode, err = model.ParseMode(mode); err != nil {
			return nil, err
		}
		results = append(results, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(results) > cfg.Last {
		results = results[len(results)-cfg.Last:]
	}
	return results, nil
}

// GetResult loads a full result including its word history and samples.
func (s *Store) GetResult(ctx context.Context, id int64) (model.Result, error) {
	var (
		r                                              model.Result
		createdAt, startedAt, endedAt                  string
		mode, difficulty, quoteLength, stopOn, confide string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT uuid, created_at, started_at, ended_at, mode, time_limit, word_limit, lang,
			punctuation, numbers, difficulty, quote_length, quote_source, quick_restart, quick_end,
			stop_on_error, confidence, wpm, raw_wpm, accuracy, consistency, correct, incorrect, extra, missed, elapsed
		 FROM results WHERE id = ?`, id).Scan(
		&r.ID, &createdAt, &startedAt, &endedAt, &mode, &r.Config.TimeLimit, &r.Config.WordLimit, &r.Config.Lang,
		&r.Config.Punctuation, &r.Config.Numbers, &difficulty, &quoteLength, &r.QuoteSource,
		&r.Settings.QuickRestart, &r.Settings.QuickEnd, &stopOn, &confide,
		&r.Stats.WPM, &r.Stats.RawWPM, &r.Stats.Accuracy, &r.Stats.Consistency,
		&r.Stats.Correct, &r.Stats.Incorrect, &r.Stats.Extra, &r.Stats.Missed, &r.Stats.Elapsed,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Result{}, fmt.Errorf("result %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Result{}, err
	}

	for _, t := range []struct {
		raw string
		dst *time.Time
	}{{createdAt, &r.CreatedAt}, {startedAt, &r.StartedAt}, {endedAt, &r.EndedAt}} {
		if *t.dst, err = parseTime(t.raw); err != nil {
			return model.Result{}, err
		}
	}
	if r.Config.Mode, err = model.ParseMode(mode); err != nil {
		return model.Result{}, err
	}
	if r.Config.Difficulty, err = model.ParseDifficulty(difficulty); err != nil {
		return model.Result{}, err
	}
	if r.Config.QuoteLength, err = model.ParseQuoteLength(quoteLength); err != nil {
		return model.Result{}, err
	}
	if r.Settings.StopOnError, err = model.ParseStopOnError(stopOn); err != nil {
		return model.Result{}, err
	}
	if r.Settings.Confidence, err = model.ParseConfidence(confide); err != nil {
		return model.Result{}, err
	}

	if r.History, err = s.resultWords(ctx, id); err != nil {
		return model.Result{}, err
	}
	if r.Samples, err = s.resultSamples(ctx, id); err != nil {
		return model.Result{}, err
	}
	return r, nil
}

func (s *Store) resultWords(ctx context.Context, id int64) ([]model.CompletedWord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT word, typed, states, completed_at, duration_ms FROM result_words WHERE result_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	var words []model.CompletedWord
	for rows.Next() {
		var (
			w                   model.CompletedWord
			states, completedAt string
			durationMs          int64
		)
		if err := rows.Scan(&w.Word, &w.Typed, &states, &completedAt, &durationMs); err != nil {
			return nil, err
		}
		if w.States, err = DecodeStates(states); err != nil {
			return nil, err
		}
		if w.CompletedAt, err = parseTime(completedAt); err != nil {
			return nil, err
		}
		w.Duration = time.Duration(durationMs) * time.Millisecond
		words = append(words, w)
	}
	return words, rows.Err()
}

func (s *Store) resultSamples(ctx context.Context, id int64) ([]model.WpmSample, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT elapsed, wpm, raw_wpm, accuracy FROM result_samples WHERE result_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	var samples []model.WpmSample
	for rows.Next() {
		var p model.WpmSample
		if err := rows.Scan(&p.Elapsed, &p.WPM, &p.RawWPM, &p.Accuracy); err != nil {
			return nil, err
		}
		samples = append(samples, p)
	}
	return samples, rows.Err()
}
