package store

import (
	"context"
	"strconv"
	"sync"
)

// Memory is an in-process RecordStore for dev and tests. Rows keep their
// insertion order, matching how the remote backends behave.
type Memory struct {
	mu     sync.Mutex
	tables map[Table][]Record
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{tables: map[Table][]Record{
		Users:  {},
		Visits: {},
	}}
}

// FetchAll returns copies of every row in the table.
func (m *Memory) FetchAll(_ context.Context, table Table) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.tables[table]
	out := make([]Record, len(rows))
	for i, r := range rows {
		out[i] = cloneRecord(r)
	}
	return out, nil
}

// Find returns the first row whose key column equals keyValue.
func (m *Memory) Find(_ context.Context, table Table, keyColumn, keyValue string) (Record, RowRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.tables[table] {
		if r[keyColumn] == keyValue {
			return cloneRecord(r), RowRef(strconv.Itoa(i)), nil
		}
	}
	return nil, "", ErrNotFound
}

// Append adds a row at the end of the table.
func (m *Memory) Append(_ context.Context, table Table, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[table] = append(m.tables[table], cloneRecord(rec))
	return nil
}

// Update overwrites the row a previous Find referenced.
func (m *Memory) Update(_ context.Context, table Table, ref RowRef, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, err := strconv.Atoi(string(ref))
	if err != nil || i < 0 || i >= len(m.tables[table]) {
		return storeErr("update", table, ErrNotFound)
	}
	m.tables[table][i] = cloneRecord(rec)
	return nil
}

func cloneRecord(r Record) Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
