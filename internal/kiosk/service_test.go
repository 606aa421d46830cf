package kiosk

import (
	"context"
	"errors"
	"testing"
	"time"

	"gymkiosk/internal/model"
	"gymkiosk/internal/store"
)

var testTime = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func newTestService(t *testing.T, users ...model.User) (*Service, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	for _, u := range users {
		if err := mem.Append(context.Background(), store.Users, store.UserRecord(u)); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	return NewService(mem, FixedClock{Time: testTime}), mem
}

func ana() model.User {
	return model.User{
		ID:       "1712345678",
		FullName: "Ana Ruiz",
		Program:  "CS",
		Semester: "5",
		Email:    "a@x.edu",
		Sex:      model.SexFemenino,
	}
}

func countRows(t *testing.T, mem *store.Memory, table store.Table) int {
	t.Helper()
	recs, err := mem.FetchAll(context.Background(), table)
	if err != nil {
		t.Fatalf("FetchAll(%s): %v", table, err)
	}
	return len(recs)
}

func TestCheckInExistingUser(t *testing.T) {
	svc, mem := newTestService(t, ana())

	visit, err := svc.CheckIn(context.Background(), "1712345678")
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}

	want := model.Visit{
		Date: "2025-03-14", Time: "09:26:53",
		ID: "1712345678", FullName: "Ana Ruiz", Program: "CS",
		Semester: "5", Email: "a@x.edu", Sex: model.SexFemenino,
	}
	if visit != want {
		t.Errorf("visit = %+v, want %+v", visit, want)
	}
	if n := countRows(t, mem, store.Visits); n != 1 {
		t.Errorf("visit rows = %d, want 1", n)
	}

	recs, _ := mem.FetchAll(context.Background(), store.Visits)
	if got := store.VisitFromRecord(recs[0]); got != want {
		t.Errorf("stored visit = %+v, want %+v", got, want)
	}
}

func TestCheckInTrimsWhitespace(t *testing.T) {
	svc, _ := newTestService(t, ana())
	if _, err := svc.CheckIn(context.Background(), "  1712345678 "); err != nil {
		t.Fatalf("CheckIn with padding: %v", err)
	}
}

func TestCheckInUnknownIDWritesNothing(t *testing.T) {
	svc, mem := newTestService(t, ana())

	_, err := svc.CheckIn(context.Background(), "0000000000")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("CheckIn unknown id: err = %v, want ErrUserNotFound", err)
	}
	if n := countRows(t, mem, store.Visits); n != 0 {
		t.Errorf("visit rows = %d, want 0", n)
	}
	if n := countRows(t, mem, store.Users); n != 1 {
		t.Errorf("user rows = %d, want 1", n)
	}
}

func TestCheckInEmptyID(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.CheckIn(context.Background(), "   ")
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "id" {
		t.Fatalf("CheckIn empty id: err = %v, want ValidationError on id", err)
	}
}

func TestLookupFirstRowWinsOnDuplicateIDs(t *testing.T) {
	first := ana()
	second := ana()
	second.FullName = "Otra Persona"
	svc, _ := newTestService(t, first, second)

	user, _, err := svc.Lookup(context.Background(), "1712345678")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if user.FullName != "Ana Ruiz" {
		t.Errorf("duplicate id resolved to %q, want first row %q", user.FullName, "Ana Ruiz")
	}
}

func TestLookupIDIsOpaqueString(t *testing.T) {
	u := ana()
	u.ID = "0012345678"
	svc, _ := newTestService(t, u)

	if _, _, err := svc.Lookup(context.Background(), "12345678"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("numeric-equal id matched; ids must compare as strings")
	}
	if _, _, err := svc.Lookup(context.Background(), "0012345678"); err != nil {
		t.Errorf("exact id did not match: %v", err)
	}
}

func TestRegisterWritesUserAndVisit(t *testing.T) {
	svc, mem := newTestService(t)

	form := Form{
		ID:       "0912345678",
		FullName: "Luis Vega",
		Program:  "Medicina",
		Semester: "3",
		Email:    "luis@x.edu",
		Sex:      "Masculino",
	}
	user, visit, err := svc.Register(context.Background(), form)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if n := countRows(t, mem, store.Users); n != 1 {
		t.Errorf("user rows = %d, want 1", n)
	}
	if n := countRows(t, mem, store.Visits); n != 1 {
		t.Errorf("visit rows = %d, want 1", n)
	}
	if visit.ID != user.ID || visit.FullName != user.FullName || visit.Program != user.Program ||
		visit.Semester != user.Semester || visit.Email != user.Email || visit.Sex != user.Sex {
		t.Errorf("visit %+v does not snapshot user %+v", visit, user)
	}
	if visit.Date != "2025-03-14" || visit.Time != "09:26:53" {
		t.Errorf("visit stamped %s %s, want clock reading", visit.Date, visit.Time)
	}
}

func TestRegisterDefaultsEnums(t *testing.T) {
	svc, _ := newTestService(t)
	user, _, err := svc.Register(context.Background(), Form{
		ID: "1", FullName: "N", Program: "P", Email: "n@x.edu",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Semester != "1" || user.Sex != model.SexMasculino {
		t.Errorf("defaults = %s/%s, want 1/Masculino", user.Semester, user.Sex)
	}
}

func TestRegisterValidation(t *testing.T) {
	valid := Form{
		ID: "0912345678", FullName: "Luis Vega", Program: "Medicina",
		Semester: "3", Email: "luis@x.edu", Sex: "Masculino",
	}
	tests := []struct {
		name   string
		mutate func(*Form)
		field  string
	}{
		{"empty id", func(f *Form) { f.ID = "" }, "id"},
		{"id too long", func(f *Form) { f.ID = "09123456789" }, "id"},
		{"empty name", func(f *Form) { f.FullName = "  " }, "full_name"},
		{"empty program", func(f *Form) { f.Program = "" }, "program"},
		{"empty email", func(f *Form) { f.Email = "" }, "email"},
		{"email without at-sign", func(f *Form) { f.Email = "luis.x.edu" }, "email"},
		{"unknown semester", func(f *Form) { f.Semester = "12" }, "semester"},
		{"unknown sex", func(f *Form) { f.Sex = "X" }, "sex"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mem := newTestService(t)
			form := valid
			tt.mutate(&form)

			_, _, err := svc.Register(context.Background(), form)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if verr.Field != tt.field {
				t.Errorf("failing field = %q, want %q", verr.Field, tt.field)
			}
			if countRows(t, mem, store.Users) != 0 || countRows(t, mem, store.Visits) != 0 {
				t.Error("invalid registration wrote to the store")
			}
		})
	}
}

func TestUpdateOverwritesExistingRow(t *testing.T) {
	svc, mem := newTestService(t, ana())

	form := Form{
		ID: "1712345678", FullName: "Ana Ruiz Paredes", Program: "Matemática",
		Semester: "Egresado", Email: "ana@nueva.edu", Sex: "Femenino",
	}
	user, created, err := svc.Update(context.Background(), form)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if created {
		t.Error("Update reported created for an existing id")
	}
	if n := countRows(t, mem, store.Users); n != 1 {
		t.Errorf("user rows = %d, want 1 (overwrite in place)", n)
	}
	if n := countRows(t, mem, store.Visits); n != 0 {
		t.Errorf("visit rows = %d, want 0 (edit never registers a visit)", n)
	}

	got, _, _ := svc.Lookup(context.Background(), "1712345678")
	if got != user {
		t.Errorf("stored user = %+v, want %+v", got, user)
	}
	if got.FullName != "Ana Ruiz Paredes" || got.Semester != model.SemesterEgresado {
		t.Errorf("row not overwritten: %+v", got)
	}
}

func TestUpdateUnknownIDFallsBackToCreate(t *testing.T) {
	svc, mem := newTestService(t)

	form := Form{
		ID: "0400000001", FullName: "Nueva Persona", Program: "Derecho",
		Semester: "2", Email: "np@x.edu", Sex: "Otro",
	}
	_, created, err := svc.Update(context.Background(), form)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !created {
		t.Error("Update did not report created for an unknown id")
	}
	if n := countRows(t, mem, store.Users); n != 1 {
		t.Errorf("user rows = %d, want 1", n)
	}
	if n := countRows(t, mem, store.Visits); n != 0 {
		t.Errorf("visit rows = %d, want 0 (fallback create still records no visit)", n)
	}
}

func TestVisitsNewestFirst(t *testing.T) {
	svc, _ := newTestService(t, ana())
	ctx := context.Background()

	if _, err := svc.CheckIn(ctx, "1712345678"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CheckIn(ctx, "1712345678"); err != nil {
		t.Fatal(err)
	}

	visits, err := svc.Visits(ctx, 10)
	if err != nil {
		t.Fatalf("Visits: %v", err)
	}
	if len(visits) != 2 {
		t.Fatalf("visits = %d, want 2 (multiple visits per day are allowed)", len(visits))
	}
}

func TestZoneClockZone(t *testing.T) {
	clock, err := NewZoneClock("America/Guayaquil")
	if err != nil {
		t.Fatalf("NewZoneClock: %v", err)
	}
	if got := clock.Now().Location().String(); got != "America/Guayaquil" {
		t.Errorf("clock zone = %s, want America/Guayaquil", got)
	}

	if _, err := NewZoneClock("Not/AZone"); err == nil {
		t.Error("NewZoneClock accepted an unknown zone")
	}
}
