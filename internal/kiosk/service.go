package kiosk

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gymkiosk/internal/metrics"
	"gymkiosk/internal/model"
	"gymkiosk/internal/store"
)

// ErrUserNotFound reports a check-in for an id with no Users row.
var ErrUserNotFound = errors.New("user not found")

// ValidationError is a recoverable form error; the form stays open with the
// entered values and the message is shown inline.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

const maxIDLen = 10

// Form carries the raw registration/edit fields as submitted.
type Form struct {
	ID       string `form:"id" json:"id"`
	FullName string `form:"full_name" json:"full_name"`
	Program  string `form:"program" json:"program"`
	Semester string `form:"semester" json:"semester"`
	Email    string `form:"email" json:"email"`
	Sex      string `form:"sex" json:"sex"`
}

// Service implements the kiosk flows over an injected record store. Writes
// are not retried and there is no rollback between the two appends of a
// registration; a failed second append leaves the first in place.
type Service struct {
	store store.RecordStore
	clock Clock
}

// NewService builds a service.
func NewService(st store.RecordStore, clock Clock) *Service {
	return &Service{store: st, clock: clock}
}

// Lookup resolves an id against the Users table. The id is trimmed and
// compared as an exact string; the first matching row wins.
func (s *Service) Lookup(ctx context.Context, id string) (model.User, store.RowRef, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.User{}, "", &ValidationError{Field: "id", Reason: "la cédula es obligatoria"}
	}
	rec, ref, err := s.store.Find(ctx, store.Users, "id", id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.LookupMisses.Inc()
			return model.User{}, "", ErrUserNotFound
		}
		metrics.StoreErrors.Inc()
		return model.User{}, "", err
	}
	return store.UserFromRecord(rec), ref, nil
}

// CheckIn records a visit for an existing user: one Visits row carrying a
// snapshot of the user's current fields and the local date and time.
func (s *Service) CheckIn(ctx context.Context, id string) (model.Visit, error) {
	user, _, err := s.Lookup(ctx, id)
	if err != nil {
		return model.Visit{}, err
	}
	visit := s.visitFor(user)
	if err := s.store.Append(ctx, store.Visits, store.VisitRecord(visit)); err != nil {
		metrics.StoreErrors.Inc()
		return model.Visit{}, err
	}
	metrics.Checkins.Inc()
	return visit, nil
}

// Register creates a new user and their first visit.
func (s *Service) Register(ctx context.Context, form Form) (model.User, model.Visit, error) {
	user, err := validate(form)
	if err != nil {
		return model.User{}, model.Visit{}, err
	}
	if err := s.store.Append(ctx, store.Users, store.UserRecord(user)); err != nil {
		metrics.StoreErrors.Inc()
		return model.User{}, model.Visit{}, err
	}
	visit := s.visitFor(user)
	if err := s.store.Append(ctx, store.Visits, store.VisitRecord(visit)); err != nil {
		metrics.StoreErrors.Inc()
		return model.User{}, model.Visit{}, err
	}
	metrics.Registrations.Inc()
	return user, visit, nil
}

// Update overwrites an existing user's row in place, id unchanged. When the
// id does not exist it falls back to creating the row. Neither path records
// a visit.
func (s *Service) Update(ctx context.Context, form Form) (model.User, bool, error) {
	user, err := validate(form)
	if err != nil {
		return model.User{}, false, err
	}
	_, ref, err := s.store.Find(ctx, store.Users, "id", user.ID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			metrics.StoreErrors.Inc()
			return model.User{}, false, err
		}
		if err := s.store.Append(ctx, store.Users, store.UserRecord(user)); err != nil {
			metrics.StoreErrors.Inc()
			return model.User{}, false, err
		}
		metrics.Updates.Inc()
		return user, true, nil
	}
	if err := s.store.Update(ctx, store.Users, ref, store.UserRecord(user)); err != nil {
		metrics.StoreErrors.Inc()
		return model.User{}, false, err
	}
	metrics.Updates.Inc()
	return user, false, nil
}

// Visits lists the most recent visits, newest first.
func (s *Service) Visits(ctx context.Context, limit int) ([]model.Visit, error) {
	if limit <= 0 {
		limit = 50
	}
	recs, err := s.store.FetchAll(ctx, store.Visits)
	if err != nil {
		metrics.StoreErrors.Inc()
		return nil, err
	}
	out := make([]model.Visit, 0, limit)
	for i := len(recs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, store.VisitFromRecord(recs[i]))
	}
	return out, nil
}

func (s *Service) visitFor(user model.User) model.Visit {
	now := s.clock.Now()
	return model.Visit{
		Date:     now.Format("2006-01-02"),
		Time:     now.Format("15:04:05"),
		ID:       user.ID,
		FullName: user.FullName,
		Program:  user.Program,
		Semester: user.Semester,
		Email:    user.Email,
		Sex:      user.Sex,
	}
}

// validate normalizes the form into a user or reports the first failing
// field. Emails only need an "@"; the sheet has years of addresses that a
// stricter check would reject.
func validate(form Form) (model.User, error) {
	id := strings.TrimSpace(form.ID)
	if id == "" {
		return model.User{}, &ValidationError{Field: "id", Reason: "la cédula es obligatoria"}
	}
	if len(id) > maxIDLen {
		return model.User{}, &ValidationError{Field: "id", Reason: "la cédula admite máximo 10 caracteres"}
	}
	name := strings.TrimSpace(form.FullName)
	if name == "" {
		return model.User{}, &ValidationError{Field: "full_name", Reason: "el nombre es obligatorio"}
	}
	program := strings.TrimSpace(form.Program)
	if program == "" {
		return model.User{}, &ValidationError{Field: "program", Reason: "la carrera es obligatoria"}
	}
	email := strings.TrimSpace(form.Email)
	if email == "" {
		return model.User{}, &ValidationError{Field: "email", Reason: "el correo es obligatorio"}
	}
	if !strings.Contains(email, "@") {
		return model.User{}, &ValidationError{Field: "email", Reason: "el correo no es válido"}
	}
	semester, err := model.ParseSemester(form.Semester)
	if err != nil {
		return model.User{}, &ValidationError{Field: "semester", Reason: "semestre inválido"}
	}
	sex, err := model.ParseSex(form.Sex)
	if err != nil {
		return model.User{}, &ValidationError{Field: "sex", Reason: "valor de sexo inválido"}
	}
	return model.User{
		ID:       id,
		FullName: name,
		Program:  program,
		Semester: semester,
		Email:    email,
		Sex:      sex,
	}, nil
}
