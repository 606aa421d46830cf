package model

import "testing"

func TestParseSex(t *testing.T) {
	tests := []struct {
		in      string
		want    Sex
		wantErr bool
	}{
		{"", SexMasculino, false}, // default is the first option
		{"Masculino", SexMasculino, false},
		{"Femenino", SexFemenino, false},
		{"Otro", SexOtro, false},
		{"femenino", "", true}, // values are case-sensitive
		{"M", "", true},
	}
	for _, tt := range tests {
		got, err := ParseSex(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSex(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSex(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseSemester(t *testing.T) {
	tests := []struct {
		in      string
		want    Semester
		wantErr bool
	}{
		{"", "1", false},
		{"1", "1", false},
		{"10", "10", false},
		{"Egresado", SemesterEgresado, false},
		{"11", "", true},
		{"0", "", true},
		{"egresado", "", true},
	}
	for _, tt := range tests {
		got, err := ParseSemester(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSemester(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSemester(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEnumOrder(t *testing.T) {
	if Sexes()[0] != SexMasculino {
		t.Error("first sex option must be Masculino (the form default)")
	}
	if Semesters()[0] != "1" {
		t.Error("first semester option must be 1 (the form default)")
	}
	if n := len(Semesters()); n != 11 {
		t.Errorf("semesters = %d options, want 11", n)
	}
}
