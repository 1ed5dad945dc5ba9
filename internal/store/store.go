// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/tuitables/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for session data.
type Store struct {
	db *sql.DB
}

// DeviceState holds the settings that persist between sessions on this device.
type DeviceState struct {
	DeviceID  string
	PerQ      float64
	HasPerQ   bool
	UpdatedAt time.Time
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
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			uuid TEXT NOT NULL UNIQUE,
			user TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			min_table INTEGER NOT NULL,
			max_table INTEGER NOT NULL,
			total_seconds INTEGER NOT NULL,
			questions INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			time_spent_ms INTEGER NOT NULL,
			final_per_q REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS session_item_stats (
			session_id INTEGER NOT NULL,
			a INTEGER NOT NULL,
			b INTEGER NOT NULL,
			asked INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			wrong INTEGER NOT NULL,
			timed_out INTEGER NOT NULL,
			time_spent_ms INTEGER NOT NULL,
			PRIMARY KEY (session_id, a, b)
		);`,
		`CREATE TABLE IF NOT EXISTS device_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			device_id TEXT NOT NULL,
			per_q REAL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_session_item_stats_item ON session_item_stats(a, b);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertSession stores a finished session and its per-item stats.
func (s *Store) InsertSession(ctx context.Context, sum model.Summary) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rerr := tx.Rollback(); rerr != nil {
			// Best-effort rollback.
			_ = rerr
		}
	}()

	sessionUUID := sum.SessionID
	if sessionUUID == "" {
		sessionUUID = uuid.NewString()
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (uuid, user, started_at, ended_at, min_table, max_table, total_seconds, questions, correct, time_spent_ms, final_per_q)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionUUID,
		sum.User,
		formatTime(sum.StartedAt),
		formatTime(sum.EndedAt),
		sum.MinTable,
		sum.MaxTable,
		sum.TotalSeconds,
		sum.TotalQuestions,
		sum.CorrectQuestions,
		int64(math.Round(sum.TotalTimeSpent*1000)),
		sum.FinalPerQ,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(sum.Items) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO session_item_stats (session_id, a, b, asked, correct, wrong, timed_out, time_spent_ms)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, st := range sum.Items {
			if _, err := stmt.ExecContext(ctx, id, st.Item.A, st.Item.B, st.Asked, st.Correct, st.Wrong, st.TimedOut, st.TimeSpentMs); err != nil {
				return 0, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return id, nil
}

// LastCarryOver returns the missed items of the user's most recent session.
// It returns nil when there is no previous session.
func (s *Store) LastCarryOver(ctx context.Context, user string) (*model.CarryOver, error) {
	var (
		id       int64
		minTable int
		maxTable int
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, min_table, max_table FROM sessions
		 WHERE user = ?
		 ORDER BY ended_at DESC, id DESC
		 LIMIT 1`, user).Scan(&id, &minTable, &maxTable)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT a, b FROM session_item_stats
		 WHERE session_id = ? AND wrong > 0
		 ORDER BY a, b`, id)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	carry := &model.CarryOver{MinTable: minTable, MaxTable: maxTable}
	for rows.Next() {
		var it model.Item
		if err := rows.Scan(&it.A, &it.B); err != nil {
			return nil, err
		}
		carry.Items = append(carry.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return carry, nil
}

// GetWeakItems aggregates item stats over the user's most recent sessions.
func (s *Store) GetWeakItems(ctx context.Context, window int, user string) ([]model.ItemAggregate, error) {
	if window <= 0 {
		return nil, nil
	}
	query := `WITH recent_sessions AS (
		SELECT id FROM sessions
		WHERE (? = '' OR user = ?)
		ORDER BY ended_at DESC
		LIMIT ?
	)
	SELECT st.a, st.b, SUM(st.asked), SUM(st.correct), SUM(st.wrong), SUM(st.timed_out), SUM(st.time_spent_ms)
	FROM session_item_stats st
	JOIN recent_sessions r ON r.id = st.session_id
	GROUP BY st.a, st.b`

	rows, err := s.db.QueryContext(ctx, query, user, user, window)
	if err != nil {
		return nil, err
	}
	return scanItemAggregates(rows)
}

// ListSessions returns session aggregates filtered by stats config.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.User != "" {
		clauses = append(clauses, "user = ?")
		args = append(args, cfg.User)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, formatTime(*cfg.Since))
	}
	query := fmt.Sprintf(`SELECT id, ended_at, questions, correct, time_spent_ms, final_per_q
		FROM sessions
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

	var sessions []model.SessionAggregate
	for rows.Next() {
		var agg model.SessionAggregate
		var endedAt string
		if err := rows.Scan(&agg.SessionID, &endedAt, &agg.Questions, &agg.Correct, &agg.TimeSpentMs, &agg.FinalPerQ); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		sessions = append(sessions, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListItemAggregatesForSessions aggregates per-item stats across sessions.
func (s *Store) ListItemAggregatesForSessions(ctx context.Context, sessionIDs []int64) ([]model.ItemAggregate, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(sessionIDs))
	args := make([]any, len(sessionIDs))
	for i, id := range sessionIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT a, b, SUM(asked), SUM(correct), SUM(wrong), SUM(timed_out), SUM(time_spent_ms)
		FROM session_item_stats
		WHERE session_id IN (%s)
		GROUP BY a, b`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanItemAggregates(rows)
}

// ListItemStatsBySession returns per-session stats for the given items.
func (s *Store) ListItemStatsBySession(ctx context.Context, sessionIDs []int64, items []model.Item) (map[int64]map[model.Item]model.ItemAggregate, error) {
	result := make(map[int64]map[model.Item]model.ItemAggregate)
	if len(sessionIDs) == 0 || len(items) == 0 {
		return result, nil
	}
	sessionPlaceholders := make([]string, len(sessionIDs))
	args := make([]any, 0, len(sessionIDs)+2*len(items))
	for i, id := range sessionIDs {
		sessionPlaceholders[i] = "?"
		args = append(args, id)
	}
	itemClauses := make([]string, len(items))
	for i, it := range items {
		itemClauses[i] = "(a = ? AND b = ?)"
		args = append(args, it.A, it.B)
	}
	query := fmt.Sprintf(`SELECT session_id, a, b, asked, correct, wrong, timed_out, time_spent_ms
		FROM session_item_stats
		WHERE session_id IN (%s) AND (%s)`,
		strings.Join(sessionPlaceholders, ","), strings.Join(itemClauses, " OR "))
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

	for rows.Next() {
		var (
			sessionID int64
			agg       model.ItemAggregate
		)
		if err := rows.Scan(&sessionID, &agg.Item.A, &agg.Item.B, &agg.Asked, &agg.Correct, &agg.Wrong, &agg.TimedOut, &agg.TimeSpentMs); err != nil {
			return nil, err
		}
		if result[sessionID] == nil {
			result[sessionID] = make(map[model.Item]model.ItemAggregate)
		}
		result[sessionID][agg.Item] = agg
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanItemAggregates(rows *sql.Rows) ([]model.ItemAggregate, error) {
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.ItemAggregate
	for rows.Next() {
		var agg model.ItemAggregate
		if err := rows.Scan(&agg.Item.A, &agg.Item.B, &agg.Asked, &agg.Correct, &agg.Wrong, &agg.TimedOut, &agg.TimeSpentMs); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// LoadDeviceState returns the device settings, creating a device id on first use.
func (s *Store) LoadDeviceState(ctx context.Context) (DeviceState, error) {
	var (
		state     DeviceState
		perQ      sql.NullFloat64
		updatedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT device_id, per_q, updated_at FROM device_state WHERE id = 1`).Scan(&state.DeviceID, &perQ, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		state = DeviceState{DeviceID: uuid.NewString(), UpdatedAt: time.Now().UTC()}
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO device_state (id, device_id, per_q, updated_at) VALUES (1, ?, NULL, ?)`,
			state.DeviceID, formatTime(state.UpdatedAt)); err != nil {
			return DeviceState{}, err
		}
		return state, nil
	}
	if err != nil {
		return DeviceState{}, err
	}
	state.PerQ = perQ.Float64
	state.HasPerQ = perQ.Valid
	parsed, err := time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return DeviceState{}, err
	}
	state.UpdatedAt = parsed
	return state, nil
}

// SavePerQuestion stores the adapted per-question budget for the next session.
func (s *Store) SavePerQuestion(ctx context.Context, perQ float64) error {
	if _, err := s.LoadDeviceState(ctx); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE device_state SET per_q = ?, updated_at = ? WHERE id = 1`,
		perQ, formatTime(time.Now()))
	return err
}

// timeLayout is fixed-width so that stored UTC timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
