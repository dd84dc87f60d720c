package store

import (
	"errors"
	"testing"
	"time"

	"apteka/m/domain"
)

func TestCreateEmployeeAndAuthenticate(t *testing.T) {
	s := newTestStore(t)
	emp := mustEmployee(t, s, "anna")

	if emp.Password == "secret" {
		t.Fatalf("password stored in plaintext")
	}

	got, err := s.AuthenticateEmployee("anna", "secret")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.ID != emp.ID {
		t.Fatalf("authenticated id = %d, want %d", got.ID, emp.ID)
	}

	if _, err := s.AuthenticateEmployee("anna", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := s.AuthenticateEmployee("ghost", "secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown login: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestCreateEmployeeValidation(t *testing.T) {
	s := newTestStore(t)

	base := domain.Employee{
		FirstName: "Anna", LastName: "Petrova", Phone: "123",
		Position: "pharmacist", Login: "anna", Password: "pw", HiredOn: "2020-03-15",
	}

	var validation *ValidationError

	missing := base
	missing.Position = ""
	if _, err := s.CreateEmployee(missing); !errors.As(err, &validation) {
		t.Fatalf("missing position: err = %v, want ValidationError", err)
	}

	badDate := base
	badDate.HiredOn = "15.03.2020"
	if _, err := s.CreateEmployee(badDate); !errors.As(err, &validation) {
		t.Fatalf("bad hire date: err = %v, want ValidationError", err)
	}

	if _, err := s.CreateEmployee(base); err != nil {
		t.Fatalf("valid employee rejected: %v", err)
	}

	var uniqueness *UniquenessError
	if _, err := s.CreateEmployee(base); !errors.As(err, &uniqueness) {
		t.Fatalf("duplicate login: err = %v, want UniquenessError", err)
	}
}

func TestEmployeeExperience(t *testing.T) {
	s := newTestStore(t)
	now := time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		hiredOn string
		want    int
	}{
		{"exactly three years", "2023-09-01", 3},
		{"three years and a day", "2023-08-31", 3},
		{"one day short of three years", "2023-09-02", 2},
		{"hired today", "2026-09-01", 0},
		{"anniversary next month", "2020-10-01", 5},
	}
	for i, tc := range cases {
		emp, err := s.CreateEmployee(domain.Employee{
			FirstName: "E", LastName: "Mp", Phone: "1", Position: "p",
			Login: tc.name, Password: "pw", HiredOn: tc.hiredOn,
		})
		if err != nil {
			t.Fatalf("create employee %d: %v", i, err)
		}
		years, err := s.EmployeeExperience(emp.ID, now)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if years != tc.want {
			t.Errorf("%s: experience = %d, want %d", tc.name, years, tc.want)
		}
	}

	if _, err := s.EmployeeExperience(999, now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing employee: err = %v, want ErrNotFound", err)
	}
}

func TestUpdateEmployeePartial(t *testing.T) {
	s := newTestStore(t)
	emp := mustEmployee(t, s, "anna")

	position := "head pharmacist"
	admin := true
	updated, err := s.UpdateEmployee(emp.ID, EmployeeUpdate{Position: &position, IsAdmin: &admin})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Position != position || !updated.IsAdmin {
		t.Fatalf("update not applied: %+v", updated)
	}
	if updated.Login != emp.Login || updated.HiredOn != emp.HiredOn {
		t.Fatalf("untouched fields changed: %+v", updated)
	}

	newPass := "rotated"
	if _, err := s.UpdateEmployee(emp.ID, EmployeeUpdate{Password: &newPass}); err != nil {
		t.Fatalf("update password: %v", err)
	}
	if _, err := s.AuthenticateEmployee("anna", "rotated"); err != nil {
		t.Fatalf("authenticate after rotation: %v", err)
	}
}

func TestEmployeeLoginUniquenessOnUpdate(t *testing.T) {
	s := newTestStore(t)
	mustEmployee(t, s, "anna")
	boris := mustEmployee(t, s, "boris")

	taken := "anna"
	_, err := s.UpdateEmployee(boris.ID, EmployeeUpdate{Login: &taken})
	var uniqueness *UniquenessError
	if !errors.As(err, &uniqueness) {
		t.Fatalf("err = %v, want UniquenessError", err)
	}

	// Re-submitting the current login is not a collision.
	same := "boris"
	if _, err := s.UpdateEmployee(boris.ID, EmployeeUpdate{Login: &same}); err != nil {
		t.Fatalf("same login rejected: %v", err)
	}
}
