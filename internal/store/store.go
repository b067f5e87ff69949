package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Поддерживаемые драйверы
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// фиксированная ширина, чтобы строки в SQLite сортировались как время
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store — хранилище поверх database/sql: PostgreSQL (основной бэкенд)
// или SQLite (локальный файл / память).
type Store struct {
	db     *sql.DB
	driver string
}

// Open открывает базу и создаёт схему, если её ещё нет.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unknown db driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if driver == DriverSQLite {
		// одна коннекция: ":memory:" живёт внутри соединения
		db.SetMaxOpenConns(1)
		pragmas := []string{
			"PRAGMA journal_mode = WAL",
			"PRAGMA synchronous = NORMAL",
			"PRAGMA busy_timeout = 5000",
		}
		for _, p := range pragmas {
			if _, err := db.ExecContext(ctx, p); err != nil {
				db.Close()
				return nil, fmt.Errorf("set pragma %s: %w", p, err)
			}
		}
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	s := &Store{db: db, driver: driver}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensureSchema: %w", err)
	}
	return s, nil
}

// Close закрывает соединение
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping проверяет соединение
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Driver — имя драйвера (postgres / sqlite)
func (s *Store) Driver() string { return s.driver }

// ensureSchema создаёт нужные таблицы, если их ещё нет.
func (s *Store) ensureSchema(ctx context.Context) error {
	types := strings.NewReplacer(
		"{{money}}", "REAL", "{{ts}}", "TEXT", "{{json}}", "TEXT", "{{bool}}", "INTEGER",
	)
	if s.driver == DriverPostgres {
		types = strings.NewReplacer(
			"{{money}}", "NUMERIC(14,2)", "{{ts}}", "TIMESTAMPTZ", "{{json}}", "JSONB", "{{bool}}", "BOOLEAN",
		)
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS products (
    id            TEXT PRIMARY KEY,
    position      INTEGER NOT NULL DEFAULT 0,
    internal_only {{bool}} NOT NULL DEFAULT FALSE,
    body          {{json}} NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS quotes (
    id             TEXT PRIMARY KEY,
    customer       {{json}} NOT NULL,
    items          {{json}} NOT NULL,
    total_estimate {{money}} NOT NULL,
    status         TEXT NOT NULL,
    created_at     {{ts}} NOT NULL,
    created_by     TEXT NOT NULL,
    assigned_to    TEXT NOT NULL DEFAULT '',
    discount_value {{money}} NOT NULL DEFAULT 0,
    public_token   TEXT NOT NULL DEFAULT ''
)`,
		`CREATE INDEX IF NOT EXISTS idx_quotes_created ON quotes(created_at)`,
		`CREATE TABLE IF NOT EXISTS workflow_rules (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    condition  TEXT NOT NULL,
    threshold  {{money}} NOT NULL,
    approver   TEXT NOT NULL,
    created_at {{ts}} NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS config_rules (
    id                TEXT PRIMARY KEY,
    name              TEXT NOT NULL,
    product_id        TEXT NOT NULL,
    trigger_config    TEXT NOT NULL,
    trigger_value     TEXT NOT NULL,
    restricted_config TEXT NOT NULL,
    action            TEXT NOT NULL,
    created_at        {{ts}} NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    email         TEXT NOT NULL,
    role          TEXT NOT NULL,
    password_hash TEXT NOT NULL DEFAULT '',
    created_at    {{ts}} NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS settings (
    id                 INTEGER PRIMARY KEY,
    telegram_bot_token TEXT NOT NULL DEFAULT '',
    telegram_chat_id   TEXT NOT NULL DEFAULT ''
)`,
		// гарантируем, что запись с id = 1 существует
		`INSERT INTO settings (id) VALUES (1) ON CONFLICT (id) DO NOTHING`,
		`CREATE TABLE IF NOT EXISTS kv (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, types.Replace(stmt)); err != nil {
			return err
		}
	}
	return nil
}

// rebind переводит "?" в "$1, $2..." для PostgreSQL
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.rebind(query), args...)
}

func (s *Store) query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return s.db.QueryRowContext(ctx, s.rebind(query), args...)
}

func (s *Store) count(ctx context.Context, table string) (int, error) {
	var n int
	err := s.queryRow(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n)
	return n, err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(tsLayout)
}

// timeValue сканирует время и из TIMESTAMPTZ (postgres), и из TEXT (sqlite)
type timeValue struct {
	t *time.Time
}

func (v timeValue) Scan(src interface{}) error {
	switch x := src.(type) {
	case nil:
		*v.t = time.Time{}
		return nil
	case time.Time:
		*v.t = x
		return nil
	case []byte:
		return v.parse(string(x))
	case string:
		return v.parse(x)
	}
	return fmt.Errorf("cannot scan %T into time", src)
}

func (v timeValue) parse(s string) error {
	for _, layout := range []string{tsLayout, time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			*v.t = t
			return nil
		}
	}
	return fmt.Errorf("cannot parse time %q", s)
}
