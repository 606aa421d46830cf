package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Postgres is the RecordStore for deployments that have outgrown the
// spreadsheet. Deliberately no UNIQUE constraint on users.id: the other
// backends cannot enforce one either, so lookups stay "first row wins"
// everywhere and duplicate ids remain a known gap of the system.
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens a pool with the usual defaults and creates the two
// tables when missing.
func NewPostgres(ctx context.Context, connString string) (*Postgres, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	if err := migrate(ctx, db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Postgres{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		seq        BIGSERIAL PRIMARY KEY,
		id         TEXT NOT NULL,
		full_name  TEXT NOT NULL,
		program    TEXT NOT NULL,
		semester   TEXT NOT NULL,
		email      TEXT NOT NULL,
		sex        TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS visits (
		seq        BIGSERIAL PRIMARY KEY,
		date       TEXT NOT NULL,
		time       TEXT NOT NULL,
		id         TEXT NOT NULL,
		full_name  TEXT NOT NULL,
		program    TEXT NOT NULL,
		semester   TEXT NOT NULL,
		email      TEXT NOT NULL,
		sex        TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_users_id  ON users(id);
	CREATE INDEX IF NOT EXISTS idx_visits_id ON visits(id);
	`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Close closes the pool.
func (p *Postgres) Close() error { return p.db.Close() }

// Healthy verifies database connectivity.
func (p *Postgres) Healthy(ctx context.Context) bool {
	return p.db.PingContext(ctx) == nil
}

// FetchAll returns every row in insertion order.
func (p *Postgres) FetchAll(ctx context.Context, table Table) ([]Record, error) {
	cols := table.Columns()
	q := fmt.Sprintf(`SELECT %s FROM %s ORDER BY seq`, strings.Join(cols, ", "), sqlTable(table))
	rows, err := p.db.QueryContext(ctx, q)
	if err != nil {
		return nil, storeErr("fetch", table, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows, cols)
		if err != nil {
			return nil, storeErr("fetch", table, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("fetch", table, err)
	}
	return out, nil
}

// Find returns the earliest-inserted row matching the key, with its seq as
// the ref.
func (p *Postgres) Find(ctx context.Context, table Table, keyColumn, keyValue string) (Record, RowRef, error) {
	if !validColumn(table, keyColumn) {
		return nil, "", storeErr("find", table, fmt.Errorf("unknown column %q", keyColumn))
	}
	cols := table.Columns()
	q := fmt.Sprintf(`SELECT seq, %s FROM %s WHERE %s = $1 ORDER BY seq LIMIT 1`,
		strings.Join(cols, ", "), sqlTable(table), keyColumn)
	row := p.db.QueryRowContext(ctx, q, keyValue)
	rec, seq, err := scanRecordRow(row, cols)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrNotFound
		}
		return nil, "", storeErr("find", table, err)
	}
	return rec, RowRef(seq), nil
}

// Append inserts one row.
func (p *Postgres) Append(ctx context.Context, table Table, rec Record) error {
	cols := table.Columns()
	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = rec[col]
	}
	q := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		sqlTable(table), strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	if _, err := p.db.ExecContext(ctx, q, args...); err != nil {
		return storeErr("append", table, err)
	}
	return nil
}

// Update overwrites the row a previous Find referenced.
func (p *Postgres) Update(ctx context.Context, table Table, ref RowRef, rec Record) error {
	cols := table.Columns()
	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols)+1)
	for i, col := range cols {
		sets[i] = fmt.Sprintf("%s = $%d", col, i+1)
		args = append(args, rec[col])
	}
	args = append(args, string(ref))
	q := fmt.Sprintf(`UPDATE %s SET %s WHERE seq = $%d`, sqlTable(table), strings.Join(sets, ", "), len(cols)+1)
	res, err := p.db.ExecContext(ctx, q, args...)
	if err != nil {
		return storeErr("update", table, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storeErr("update", table, ErrNotFound)
	}
	return nil
}

func sqlTable(table Table) string {
	return strings.ToLower(string(table))
}

func validColumn(table Table, col string) bool {
	for _, c := range table.Columns() {
		if c == col {
			return true
		}
	}
	return false
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecordRow(s scanner, cols []string) (Record, string, error) {
	var seq int64
	vals := make([]sql.NullString, len(cols))
	dest := make([]any, 0, len(cols)+1)
	dest = append(dest, &seq)
	for i := range vals {
		dest = append(dest, &vals[i])
	}
	if err := s.Scan(dest...); err != nil {
		return nil, "", err
	}
	rec := Record{}
	for i, col := range cols {
		rec[col] = vals[i].String
	}
	return rec, fmt.Sprintf("%d", seq), nil
}

func scanRecord(s scanner, cols []string) (Record, error) {
	vals := make([]sql.NullString, len(cols))
	dest := make([]any, len(cols))
	for i := range vals {
		dest[i] = &vals[i]
	}
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}
	rec := Record{}
	for i, col := range cols {
		rec[col] = vals[i].String
	}
	return rec, nil
}
