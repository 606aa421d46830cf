package store

import (
	"context"
	"errors"
	"fmt"

	"gymkiosk/internal/model"
)

// Table names one of the two tables in the record store.
type Table string

const (
	Users  Table = "Users"
	Visits Table = "Visits"
)

// Columns returns the column order for a table. Every backend persists rows
// in exactly this order.
func (t Table) Columns() []string {
	switch t {
	case Users:
		return []string{"id", "full_name", "program", "semester", "email", "sex"}
	case Visits:
		return []string{"date", "time", "id", "full_name", "program", "semester", "email", "sex"}
	}
	return nil
}

// Record is one row, keyed by column name. All values are strings; the
// store never interprets them (an id like "0012345678" must survive intact).
type Record map[string]string

// RowRef is an opaque reference to a stored row, produced by Find and
// consumed by Update. It is only meaningful to the store that issued it.
type RowRef string

// RecordStore is the contract every backend implements. Appends and updates
// go straight to the backing store; nothing is cached, so callers re-read
// before deciding.
type RecordStore interface {
	FetchAll(ctx context.Context, table Table) ([]Record, error)
	Find(ctx context.Context, table Table, keyColumn, keyValue string) (Record, RowRef, error)
	Append(ctx context.Context, table Table, rec Record) error
	Update(ctx context.Context, table Table, ref RowRef, rec Record) error
}

// ErrNotFound reports that Find matched no row.
var ErrNotFound = errors.New("record not found")

// StoreError wraps any backend failure (connectivity, auth, schema). The
// operation it interrupted is aborted and not retried.
type StoreError struct {
	Op    string
	Table Table
	Err   error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s %s: %v", e.Op, e.Table, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op string, table Table, err error) error {
	return &StoreError{Op: op, Table: table, Err: err}
}

// UserRecord flattens a user into a Users row.
func UserRecord(u model.User) Record {
	return Record{
		"id":        u.ID,
		"full_name": u.FullName,
		"program":   u.Program,
		"semester":  string(u.Semester),
		"email":     u.Email,
		"sex":       string(u.Sex),
	}
}

// VisitRecord flattens a visit into a Visits row.
func VisitRecord(v model.Visit) Record {
	return Record{
		"date":      v.Date,
		"time":      v.Time,
		"id":        v.ID,
		"full_name": v.FullName,
		"program":   v.Program,
		"semester":  string(v.Semester),
		"email":     v.Email,
		"sex":       string(v.Sex),
	}
}

// UserFromRecord rebuilds a user from a Users row. Enum columns are taken
// as-is: rows already in the store are trusted even if hand-edited.
func UserFromRecord(rec Record) model.User {
	return model.User{
		ID:       rec["id"],
		FullName: rec["full_name"],
		Program:  rec["program"],
		Semester: model.Semester(rec["semester"]),
		Email:    rec["email"],
		Sex:      model.Sex(rec["sex"]),
	}
}

// VisitFromRecord rebuilds a visit from a Visits row.
func VisitFromRecord(rec Record) model.Visit {
	return model.Visit{
		Date:     rec["date"],
		Time:     rec["time"],
		ID:       rec["id"],
		FullName: rec["full_name"],
		Program:  rec["program"],
		Semester: model.Semester(rec["semester"]),
		Email:    rec["email"],
		Sex:      model.Sex(rec["sex"]),
	}
}
