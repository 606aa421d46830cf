package store

import (
	"context"
	"errors"
	"testing"
)

func userRec(id, name string) Record {
	return Record{
		"id": id, "full_name": name, "program": "CS",
		"semester": "5", "email": "a@x.edu", "sex": "Femenino",
	}
}

func TestMemoryFindFirstMatch(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Append(ctx, Users, userRec("1", "First"))
	m.Append(ctx, Users, userRec("2", "Second"))
	m.Append(ctx, Users, userRec("1", "Duplicate"))

	rec, ref, err := m.Find(ctx, Users, "id", "1")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if rec["full_name"] != "First" {
		t.Errorf("Find returned %q, want first matching row", rec["full_name"])
	}
	if ref != "0" {
		t.Errorf("ref = %q, want 0", ref)
	}
}

func TestMemoryFindNotFound(t *testing.T) {
	m := NewMemory()
	_, _, err := m.Find(context.Background(), Users, "id", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryUpdateInPlace(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Append(ctx, Users, userRec("1", "Before"))
	m.Append(ctx, Users, userRec("2", "Other"))

	_, ref, err := m.Find(ctx, Users, "id", "1")
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Update(ctx, Users, ref, userRec("1", "After")); err != nil {
		t.Fatalf("Update: %v", err)
	}

	all, _ := m.FetchAll(ctx, Users)
	if len(all) != 2 {
		t.Fatalf("rows = %d, want 2", len(all))
	}
	if all[0]["full_name"] != "After" || all[1]["full_name"] != "Other" {
		t.Errorf("rows after update = %v", all)
	}
}

func TestMemoryUpdateBadRef(t *testing.T) {
	m := NewMemory()
	err := m.Update(context.Background(), Users, "7", userRec("1", "X"))
	var serr *StoreError
	if !errors.As(err, &serr) {
		t.Errorf("err = %v, want StoreError", err)
	}
}

func TestMemoryFetchAllReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Append(ctx, Users, userRec("1", "Original"))

	all, _ := m.FetchAll(ctx, Users)
	all[0]["full_name"] = "Mutated"

	again, _ := m.FetchAll(ctx, Users)
	if again[0]["full_name"] != "Original" {
		t.Error("FetchAll exposed internal storage")
	}
}

func TestTableColumns(t *testing.T) {
	if got := len(Users.Columns()); got != 6 {
		t.Errorf("Users has %d columns, want 6", got)
	}
	if got := len(Visits.Columns()); got != 8 {
		t.Errorf("Visits has %d columns, want 8", got)
	}
	if Table("Nope").Columns() != nil {
		t.Error("unknown table should have no columns")
	}
}

func TestRecordRoundTrip(t *testing.T) {
	rec := userRec("0012345678", "Ana")
	u := UserFromRecord(rec)
	if u.ID != "0012345678" {
		t.Errorf("leading zeros lost: %q", u.ID)
	}
	back := UserRecord(u)
	for _, col := range Users.Columns() {
		if back[col] != rec[col] {
			t.Errorf("column %s = %q, want %q", col, back[col], rec[col])
		}
	}
}
