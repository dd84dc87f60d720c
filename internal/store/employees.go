package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"apteka/m/domain"
)

const employeeColumns = `id, first_name, last_name, phone, position, login, password, hired_on, is_admin`

// CreateEmployee registers a new employee. The password is hashed
// before storage; the login must be unique.
func (s *Store) CreateEmployee(e domain.Employee) (domain.Employee, error) {
	if strings.TrimSpace(e.FirstName) == "" || strings.TrimSpace(e.LastName) == "" {
		return domain.Employee{}, validationf("first and last name are required")
	}
	if strings.TrimSpace(e.Position) == "" {
		return domain.Employee{}, validationf("position is required")
	}
	if strings.TrimSpace(e.Login) == "" || e.Password == "" {
		return domain.Employee{}, validationf("login and password are required")
	}
	if strings.TrimSpace(e.Phone) == "" {
		return domain.Employee{}, validationf("phone is required")
	}
	if _, err := domain.ParseDate(e.HiredOn); err != nil {
		return domain.Employee{}, validationf("hired_on must be a YYYY-MM-DD date")
	}

	taken, err := s.loginTaken("employees", e.Login, 0)
	if err != nil {
		return domain.Employee{}, err
	}
	if taken {
		return domain.Employee{}, &UniquenessError{Field: "login", Value: e.Login}
	}

	hashed, err := s.hasher.Hash(e.Password)
	if err != nil {
		return domain.Employee{}, fmt.Errorf("hash password: %w", err)
	}

	res, err := s.db.Exec(`INSERT INTO employees (first_name, last_name, phone, position, login, password, hired_on, is_admin)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.FirstName, e.LastName, e.Phone, e.Position, e.Login, hashed, e.HiredOn, e.IsAdmin)
	if err != nil {
		return domain.Employee{}, fmt.Errorf("insert employee: %w", err)
	}
	e.ID, _ = res.LastInsertId()
	e.Password = hashed
	return e, nil
}

// GetEmployee returns the employee or ErrNotFound.
func (s *Store) GetEmployee(id int64) (domain.Employee, error) {
	var e domain.Employee
	err := s.db.Get(&e, `SELECT `+employeeColumns+` FROM employees WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Employee{}, ErrNotFound
	}
	if err != nil {
		return domain.Employee{}, fmt.Errorf("get employee: %w", err)
	}
	return e, nil
}

// EmployeeUpdate carries the fields to overwrite; nil fields are left
// as they are. A provided password is re-hashed.
type EmployeeUpdate struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Position  *string
	Login     *string
	Password  *string
	HiredOn   *string
	IsAdmin   *bool
}

// UpdateEmployee applies the provided fields and returns the updated row.
func (s *Store) UpdateEmployee(id int64, upd EmployeeUpdate) (domain.Employee, error) {
	e, err := s.GetEmployee(id)
	if err != nil {
		return domain.Employee{}, err
	}

	if upd.FirstName != nil {
		if strings.TrimSpace(*upd.FirstName) == "" {
			return domain.Employee{}, validationf("first name must not be empty")
		}
		e.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		if strings.TrimSpace(*upd.LastName) == "" {
			return domain.Employee{}, validationf("last name must not be empty")
		}
		e.LastName = *upd.LastName
	}
	if upd.Phone != nil {
		if strings.TrimSpace(*upd.Phone) == "" {
			return domain.Employee{}, validationf("phone must not be empty")
		}
		e.Phone = *upd.Phone
	}
	if upd.Position != nil {
		if strings.TrimSpace(*upd.Position) == "" {
			return domain.Employee{}, validationf("position must not be empty")
		}
		e.Position = *upd.Position
	}
	if upd.Login != nil && *upd.Login != e.Login {
		if strings.TrimSpace(*upd.Login) == "" {
			return domain.Employee{}, validationf("login must not be empty")
		}
		taken, err := s.loginTaken("employees", *upd.Login, id)
		if err != nil {
			return domain.Employee{}, err
		}
		if taken {
			return domain.Employee{}, &UniquenessError{Field: "login", Value: *upd.Login}
		}
		e.Login = *upd.Login
	}
	if upd.Password != nil {
		if *upd.Password == "" {
			return domain.Employee{}, validationf("password must not be empty")
		}
		hashed, err := s.hasher.Hash(*upd.Password)
		if err != nil {
			return domain.Employee{}, fmt.Errorf("hash password: %w", err)
		}
		e.Password = hashed
	}
	if upd.HiredOn != nil {
		if _, err := domain.ParseDate(*upd.HiredOn); err != nil {
			return domain.Employee{}, validationf("hired_on must be a YYYY-MM-DD date")
		}
		e.HiredOn = *upd.HiredOn
	}
	if upd.IsAdmin != nil {
		e.IsAdmin = *upd.IsAdmin
	}

	_, err = s.db.Exec(`UPDATE employees SET first_name = ?, last_name = ?, phone = ?, position = ?, login = ?, password = ?, hired_on = ?, is_admin = ?
        WHERE id = ?`,
		e.FirstName, e.LastName, e.Phone, e.Position, e.Login, e.Password, e.HiredOn, e.IsAdmin, id)
	if err != nil {
		return domain.Employee{}, fmt.Errorf("update employee: %w", err)
	}
	return e, nil
}

// DeleteEmployee removes the employee.
func (s *Store) DeleteEmployee(id int64) error {
	res, err := s.db.Exec(`DELETE FROM employees WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListEmployees returns all employees ordered by last name.
func (s *Store) ListEmployees() ([]domain.Employee, error) {
	var employees []domain.Employee
	err := s.db.Select(&employees, `SELECT `+employeeColumns+` FROM employees ORDER BY last_name, first_name`)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return employees, nil
}

// AuthenticateEmployee verifies the login/password pair. Any failure
// yields ErrInvalidCredentials.
func (s *Store) AuthenticateEmployee(login, password string) (domain.Employee, error) {
	var e domain.Employee
	err := s.db.Get(&e, `SELECT `+employeeColumns+` FROM employees WHERE login = ?`, login)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Employee{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.Employee{}, fmt.Errorf("lookup employee: %w", err)
	}
	if !s.hasher.Verify(password, e.Password) {
		return domain.Employee{}, ErrInvalidCredentials
	}
	return e, nil
}

// EmployeeExperience reports the employee's tenure in whole years.
func (s *Store) EmployeeExperience(id int64, now time.Time) (int, error) {
	e, err := s.GetEmployee(id)
	if err != nil {
		return 0, err
	}
	return e.Experience(now)
}
