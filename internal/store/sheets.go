package store

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Sheets is the RecordStore backed by a Google spreadsheet, the original
// system of record. Each table is a worksheet whose first row is the header;
// data starts at row 2. RowRefs are sheet row numbers.
type Sheets struct {
	svc           *sheets.Service
	spreadsheetID string
}

// NewSheets authenticates with service-account credentials (raw JSON) and
// binds to the spreadsheet.
func NewSheets(ctx context.Context, credsJSON []byte, spreadsheetID string) (*Sheets, error) {
	creds, err := google.CredentialsFromJSON(ctx, credsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	svc, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("sheets client: %w", err)
	}
	return &Sheets{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// Verify checks that both worksheets exist and carry the expected header.
// Called once at startup; a failure here is fatal.
func (s *Sheets) Verify(ctx context.Context) error {
	for _, table := range []Table{Users, Visits} {
		resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.headerRange(table)).Context(ctx).Do()
		if err != nil {
			return storeErr("verify", table, err)
		}
		cols := table.Columns()
		if len(resp.Values) == 0 || len(resp.Values[0]) < len(cols) {
			return storeErr("verify", table, fmt.Errorf("header row missing, want columns %v", cols))
		}
	}
	return nil
}

// FetchAll reads every data row of the table.
func (s *Sheets) FetchAll(ctx context.Context, table Table) ([]Record, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.dataRange(table)).Context(ctx).Do()
	if err != nil {
		return nil, storeErr("fetch", table, err)
	}
	out := make([]Record, 0, len(resp.Values))
	for _, row := range resp.Values {
		out = append(out, recordFromCells(table, row))
	}
	return out, nil
}

// Find scans the table top-down and returns the first row whose key column
// equals keyValue, with its sheet row number as the ref.
func (s *Sheets) Find(ctx context.Context, table Table, keyColumn, keyValue string) (Record, RowRef, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.dataRange(table)).Context(ctx).Do()
	if err != nil {
		return nil, "", storeErr("find", table, err)
	}
	for i, row := range resp.Values {
		rec := recordFromCells(table, row)
		if rec[keyColumn] == keyValue {
			return rec, RowRef(fmt.Sprintf("%d", i+2)), nil
		}
	}
	return nil, "", ErrNotFound
}

// Append adds one row after the last data row.
func (s *Sheets) Append(ctx context.Context, table Table, rec Record) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{cellsFromRecord(table, rec)}}
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, s.dataRange(table), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return storeErr("append", table, err)
	}
	return nil
}

// Update overwrites the exact row range a previous Find referenced.
func (s *Sheets) Update(ctx context.Context, table Table, ref RowRef, rec Record) error {
	rangeStr := fmt.Sprintf("%s!A%s:%s%s", table, ref, endColumn(table), ref)
	vr := &sheets.ValueRange{Values: [][]interface{}{cellsFromRecord(table, rec)}}
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rangeStr, vr).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return storeErr("update", table, err)
	}
	return nil
}

func (s *Sheets) headerRange(table Table) string {
	return fmt.Sprintf("%s!A1:%s1", table, endColumn(table))
}

func (s *Sheets) dataRange(table Table) string {
	return fmt.Sprintf("%s!A2:%s", table, endColumn(table))
}

func endColumn(table Table) string {
	return string(rune('A' + len(table.Columns()) - 1))
}

// recordFromCells maps a sheet row onto the table's columns. Short rows
// (trailing blank cells are not returned by the API) read as empty strings.
func recordFromCells(table Table, row []interface{}) Record {
	rec := Record{}
	for i, col := range table.Columns() {
		if i < len(row) {
			rec[col] = fmt.Sprintf("%v", row[i])
		} else {
			rec[col] = ""
		}
	}
	return rec
}

func cellsFromRecord(table Table, rec Record) []interface{} {
	cols := table.Columns()
	cells := make([]interface{}, len(cols))
	for i, col := range cols {
		cells[i] = rec[col]
	}
	return cells
}
