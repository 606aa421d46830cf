package model

import "fmt"

// Sex is the closed set of values accepted by the registration form.
type Sex string

const (
	SexMasculino Sex = "Masculino"
	SexFemenino  Sex = "Femenino"
	SexOtro      Sex = "Otro"
)

// Sexes lists the options in form display order. The first entry is the
// default when the form field is left untouched.
func Sexes() []Sex {
	return []Sex{SexMasculino, SexFemenino, SexOtro}
}

// ParseSex maps a raw form value to a Sex. Empty input selects the default.
func ParseSex(s string) (Sex, error) {
	if s == "" {
		return SexMasculino, nil
	}
	for _, v := range Sexes() {
		if s == string(v) {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown sex %q", s)
}

// Semester is "1".."10" or "Egresado" (alumni).
type Semester string

const SemesterEgresado Semester = "Egresado"

// Semesters lists the options in form display order.
func Semesters() []Semester {
	return []Semester{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", SemesterEgresado}
}

// ParseSemester maps a raw form value to a Semester. Empty input selects "1".
func ParseSemester(s string) (Semester, error) {
	if s == "" {
		return "1", nil
	}
	for _, v := range Semesters() {
		if s == string(v) {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown semester %q", s)
}

// User is a registered gym member. ID is the national id number, kept as a
// string so leading zeros survive the round trip through the store.
type User struct {
	ID       string   `json:"id"`
	FullName string   `json:"full_name"`
	Program  string   `json:"program"`
	Semester Semester `json:"semester"`
	Email    string   `json:"email"`
	Sex      Sex      `json:"sex"`
}

// Visit is one check-in. It carries a denormalized snapshot of the user at
// the moment of the visit; the snapshot is never updated afterwards.
type Visit struct {
	Date     string   `json:"date"` // YYYY-MM-DD
	Time     string   `json:"time"` // HH:MM:SS
	ID       string   `json:"id"`
	FullName string   `json:"full_name"`
	Program  string   `json:"program"`
	Semester Semester `json:"semester"`
	Email    string   `json:"email"`
	Sex      Sex      `json:"sex"`
}
