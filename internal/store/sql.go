package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/lox/gtotrainer/internal/history"
	"github.com/lox/gtotrainer/internal/tracker"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPgx      = "pgx"
	DriverPostgres = "postgres"
)

// ErrSessionExists is returned when a session summary is stored twice.
var ErrSessionExists = errors.New("session already stored")

// SQL is a Store over database/sql. SQLite and Postgres share one schema;
// queries are written with ? placeholders and rebound per driver.
type SQL struct {
	db     *sql.DB
	driver string
	logger zerolog.Logger
}

var _ Store = (*SQL)(nil)

// OpenSQL connects, applies pragmas for SQLite and creates the schema.
func OpenSQL(ctx context.Context, driver, dsn string, logger zerolog.Logger) (*SQL, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("empty %s dsn", driver)
	}

	switch driver {
	case DriverSQLite:
		if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
			if parent := filepath.Dir(dsn); parent != "" && parent != "." {
				if err := os.MkdirAll(parent, 0o755); err != nil {
					return nil, err
				}
			}
		}
	case DriverPgx, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	s := &SQL{db: db, driver: driver, logger: logger.With().Str("component", "store").Str("driver", driver).Logger()}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if driver == DriverSQLite {
		// One writer; WAL lets readers run alongside it.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		for _, pragma := range []string{
			`PRAGMA busy_timeout = 5000;`,
			`PRAGMA journal_mode = WAL;`,
		} {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("sqlite pragma: %w", err)
			}
		}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQL) migrate(ctx context.Context) error {
	statements := []string{
		`
CREATE TABLE IF NOT EXISTS decisions (
    hand_id TEXT NOT NULL,
    seq INTEGER NOT NULL,
    session_id TEXT NOT NULL,
    stage TEXT NOT NULL,
    is_correct BOOLEAN NOT NULL,
    ev_loss DOUBLE PRECISION NOT NULL,
    recorded_at_ms BIGINT NOT NULL,
    payload TEXT NOT NULL,
    PRIMARY KEY (hand_id, seq)
)`,
		`CREATE INDEX IF NOT EXISTS idx_decisions_session ON decisions(session_id, recorded_at_ms)`,
		`
CREATE TABLE IF NOT EXISTS sessions (
    session_id TEXT PRIMARY KEY,
    started_at_ms BIGINT NOT NULL,
    ended_at_ms BIGINT NOT NULL,
    payload TEXT NOT NULL
)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// rebind rewrites ? placeholders as $1, $2, ... for Postgres drivers.
func (s *SQL) rebind(query string) string {
	if s.driver == DriverSQLite {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// AppendDecision stores rec. Storing the same (hand, seq) twice returns
// history.ErrDuplicateRecord; existing rows are never updated.
func (s *SQL) AppendDecision(ctx context.Context, rec history.DecisionRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode decision: %w", err)
	}
	res, err := s.db.ExecContext(ctx, s.rebind(`
INSERT INTO decisions (hand_id, seq, session_id, stage, is_correct, ev_loss, recorded_at_ms, payload)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (hand_id, seq) DO NOTHING`),
		rec.HandID, rec.Seq, rec.SessionID, rec.Stage().String(), rec.IsCorrect, rec.EVLoss,
		rec.Timestamp.UnixMilli(), string(payload))
	if err != nil {
		return fmt.Errorf("append decision: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("hand %s seq %d: %w", rec.HandID, rec.Seq, history.ErrDuplicateRecord)
	}
	s.logger.Debug().Str("hand_id", rec.HandID).Int("seq", rec.Seq).Msg("Stored decision")
	return nil
}

// AppendSession stores a closed session summary.
func (s *SQL) AppendSession(ctx context.Context, sum tracker.SessionSummary) error {
	if !sum.Closed {
		return fmt.Errorf("session %s is still open", sum.SessionID)
	}
	payload, err := json.Marshal(sum)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	res, err := s.db.ExecContext(ctx, s.rebind(`
INSERT INTO sessions (session_id, started_at_ms, ended_at_ms, payload)
VALUES (?, ?, ?, ?)
ON CONFLICT (session_id) DO NOTHING`),
		sum.SessionID, sum.StartedAt.UnixMilli(), sum.EndedAt.UnixMilli(), string(payload))
	if err != nil {
		return fmt.Errorf("append session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("session %s: %w", sum.SessionID, ErrSessionExists)
	}
	s.logger.Debug().Str("session_id", sum.SessionID).Int("decisions", sum.TotalDecisions).Msg("Stored session")
	return nil
}

// Decisions loads matching records in timestamp order.
func (s *SQL) Decisions(ctx context.Context, f history.Filter) ([]history.DecisionRecord, error) {
	var (
		where []string
		args  []any
	)
	if f.HandID != "" {
		where = append(where, "hand_id = ?")
		args = append(args, f.HandID)
	}
	if f.SessionID != "" {
		where = append(where, "session_id = ?")
		args = append(args, f.SessionID)
	}
	if f.Stage != nil {
		where = append(where, "stage = ?")
		args = append(args, f.Stage.String())
	}
	query := `SELECT payload FROM decisions`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY recorded_at_ms, hand_id, seq`

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	var out []history.DecisionRecord
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var rec history.DecisionRecord
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, fmt.Errorf("decode decision: %w", err)
		}
		if err := rec.RestoreCards(); err != nil {
			return nil, fmt.Errorf("decode decision %s/%d: %w", rec.HandID, rec.Seq, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Millisecond columns can tie; the payload keeps full precision.
	history.SortRecords(out)
	return out, nil
}

// Sessions loads every stored session, oldest first.
func (s *SQL) Sessions(ctx context.Context) ([]tracker.SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM sessions ORDER BY started_at_ms, session_id`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []tracker.SessionSummary
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var sum tracker.SessionSummary
		if err := json.Unmarshal([]byte(payload), &sum); err != nil {
			return nil, fmt.Errorf("decode session: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *SQL) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
