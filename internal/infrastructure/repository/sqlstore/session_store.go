package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	_ "modernc.org/sqlite"

	"github.com/riskibarqy/belote-scorekeeper/internal/domain/round"
	"github.com/riskibarqy/belote-scorekeeper/internal/domain/session"
	"github.com/riskibarqy/belote-scorekeeper/internal/infrastructure/repository/record"
	"github.com/riskibarqy/belote-scorekeeper/internal/platform/logging"
	"github.com/riskibarqy/belote-scorekeeper/internal/platform/resilience"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var ErrUnsupportedDriver = errors.New("unsupported sql driver")

type SessionStore struct {
	db      *sqlx.DB
	logger  *logging.Logger
	breaker *resilience.Breaker
	now     func() time.Time
}

type Option func(*SessionStore)

// WithBreaker fails calls fast with session.ErrStorageUnavailable while the database keeps failing.
func WithBreaker(b *resilience.Breaker) Option {
	return func(s *SessionStore) {
		s.breaker = b
	}
}

func NewSessionStore(db *sqlx.DB, logger *logging.Logger, opts ...Option) *SessionStore {
	if logger == nil {
		logger = logging.Default()
	}
	s := &SessionStore{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open connects with tracing enabled, checks the connection and applies migrations.
func Open(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("db dsn is required")
	}

	switch driver {
	case DriverSQLite:
		dsn = sqliteDSN(dsn)
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	db, err := otelsqlx.Open(driver, dsn,
		otelsql.WithDBSystem(driver),
		otelsql.WithDBName(DBName(driver, dsn)),
		otelsql.WithQueryFormatter(formatQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", driver, err)
	}
	if driver == DriverSQLite {
		// sqlite serializes writers.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s db: %w", driver, err)
	}
	if err := Migrate(driver, dsn); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (s *SessionStore) Load(ctx context.Context) (session.Snapshot, error) {
	query, args, err := sqlx.In(`
SELECT record_key, payload
FROM session_records
WHERE record_key IN (?)`, []string{record.KeyTeamNames, record.KeyRounds})
	if err != nil {
		return session.Snapshot{}, fmt.Errorf("build load query: %w", err)
	}

	var rows []struct {
		Key     string `db:"record_key"`
		Payload string `db:"payload"`
	}
	err = s.guard(ctx, func(ctx context.Context) error {
		return s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...)
	})
	if err != nil {
		return session.Snapshot{}, fmt.Errorf("%w: load session records: %w", session.ErrStorageUnavailable, err)
	}

	var names, rounds []byte
	for _, row := range rows {
		switch row.Key {
		case record.KeyTeamNames:
			names = []byte(row.Payload)
		case record.KeyRounds:
			rounds = []byte(row.Payload)
		}
	}
	return record.Snapshot(ctx, s.logger, names, rounds), nil
}

func (s *SessionStore) SaveTeamNames(ctx context.Context, names round.TeamNames) error {
	payload, err := record.EncodeTeamNames(names)
	if err != nil {
		return err
	}
	return s.upsert(ctx, record.KeyTeamNames, payload)
}

func (s *SessionStore) SaveRounds(ctx context.Context, rounds []round.Round) error {
	payload, err := record.EncodeRounds(rounds)
	if err != nil {
		return err
	}
	return s.upsert(ctx, record.KeyRounds, payload)
}

func (s *SessionStore) ClearTeamNames(ctx context.Context) error {
	return s.delete(ctx, record.KeyTeamNames)
}

func (s *SessionStore) ClearRounds(ctx context.Context) error {
	return s.delete(ctx, record.KeyRounds)
}

// PutRaw writes an encoded payload as-is. Used by imports of data written by older versions.
func (s *SessionStore) PutRaw(ctx context.Context, key string, payload []byte) error {
	return s.upsert(ctx, key, payload)
}

func (s *SessionStore) upsert(ctx context.Context, key string, payload []byte) error {
	const query = `
INSERT INTO session_records (record_key, payload, updated_at)
VALUES (?, ?, ?)
ON CONFLICT (record_key) DO UPDATE
SET payload = excluded.payload,
    updated_at = excluded.updated_at`

	err := s.guard(ctx, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, s.db.Rebind(query), key, string(payload), s.now().UTC().UnixMilli())
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: save session record %s: %w", session.ErrStorageUnavailable, key, err)
	}
	return nil
}

func (s *SessionStore) delete(ctx context.Context, key string) error {
	const query = `DELETE FROM session_records WHERE record_key = ?`

	err := s.guard(ctx, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, s.db.Rebind(query), key)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: clear session record %s: %w", session.ErrStorageUnavailable, key, err)
	}
	return nil
}

func (s *SessionStore) guard(ctx context.Context, fn func(context.Context) error) error {
	err := s.breaker.Do(ctx, fn)
	if errors.Is(err, resilience.ErrCircuitOpen) {
		s.logger.WarnContext(ctx, "session store circuit open, skipping call")
	}
	return err
}

func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// DBName derives a database name for tracing attributes.
func DBName(driver, dsn string) string {
	trimmed := strings.TrimSpace(dsn)
	if driver == DriverSQLite {
		path := strings.TrimPrefix(trimmed, "file:")
		if idx := strings.Index(path, "?"); idx >= 0 {
			path = path[:idx]
		}
		return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	parsed, err := url.Parse(trimmed)
	if err == nil && parsed != nil && parsed.Scheme != "" {
		name := strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/"))
		if name != "" {
			return name
		}
	}

	for _, token := range strings.Fields(trimmed) {
		if !strings.HasPrefix(token, "dbname=") {
			continue
		}
		name := strings.Trim(strings.TrimSpace(strings.TrimPrefix(token, "dbname=")), `"'`)
		if name != "" {
			return name
		}
	}
	return ""
}

var _ session.Store = (*SessionStore)(nil)
