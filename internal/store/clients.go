package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"apteka/m/domain"
)

// CreateClient registers a new client. The password is hashed before
// storage; the login must be unique.
func (s *Store) CreateClient(c domain.Client) (domain.Client, error) {
	if strings.TrimSpace(c.FirstName) == "" || strings.TrimSpace(c.LastName) == "" {
		return domain.Client{}, validationf("first and last name are required")
	}
	if strings.TrimSpace(c.Login) == "" || c.Password == "" {
		return domain.Client{}, validationf("login and password are required")
	}
	if strings.TrimSpace(c.Phone) == "" {
		return domain.Client{}, validationf("phone is required")
	}

	taken, err := s.loginTaken("clients", c.Login, 0)
	if err != nil {
		return domain.Client{}, err
	}
	if taken {
		return domain.Client{}, &UniquenessError{Field: "login", Value: c.Login}
	}

	hashed, err := s.hasher.Hash(c.Password)
	if err != nil {
		return domain.Client{}, fmt.Errorf("hash password: %w", err)
	}

	res, err := s.db.Exec(`INSERT INTO clients (first_name, last_name, phone, login, password, balance)
        VALUES (?, ?, ?, ?, ?, ?)`,
		c.FirstName, c.LastName, c.Phone, c.Login, hashed, c.Balance)
	if err != nil {
		return domain.Client{}, fmt.Errorf("insert client: %w", err)
	}
	c.ID, _ = res.LastInsertId()
	c.Password = hashed
	return c, nil
}

// GetClient returns the client or ErrNotFound.
func (s *Store) GetClient(id int64) (domain.Client, error) {
	var c domain.Client
	err := s.db.Get(&c, `SELECT id, first_name, last_name, phone, login, password, balance
        FROM clients WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Client{}, ErrNotFound
	}
	if err != nil {
		return domain.Client{}, fmt.Errorf("get client: %w", err)
	}
	return c, nil
}

// ClientUpdate carries the fields to overwrite; nil fields are left as
// they are. A provided password is re-hashed.
type ClientUpdate struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Login     *string
	Password  *string
}

// UpdateClient applies the provided fields and returns the updated row.
func (s *Store) UpdateClient(id int64, upd ClientUpdate) (domain.Client, error) {
	c, err := s.GetClient(id)
	if err != nil {
		return domain.Client{}, err
	}

	if upd.FirstName != nil {
		if strings.TrimSpace(*upd.FirstName) == "" {
			return domain.Client{}, validationf("first name must not be empty")
		}
		c.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		if strings.TrimSpace(*upd.LastName) == "" {
			return domain.Client{}, validationf("last name must not be empty")
		}
		c.LastName = *upd.LastName
	}
	if upd.Phone != nil {
		if strings.TrimSpace(*upd.Phone) == "" {
			return domain.Client{}, validationf("phone must not be empty")
		}
		c.Phone = *upd.Phone
	}
	if upd.Login != nil && *upd.Login != c.Login {
		if strings.TrimSpace(*upd.Login) == "" {
			return domain.Client{}, validationf("login must not be empty")
		}
		taken, err := s.loginTaken("clients", *upd.Login, id)
		if err != nil {
			return domain.Client{}, err
		}
		if taken {
			return domain.Client{}, &UniquenessError{Field: "login", Value: *upd.Login}
		}
		c.Login = *upd.Login
	}
	if upd.Password != nil {
		if *upd.Password == "" {
			return domain.Client{}, validationf("password must not be empty")
		}
		hashed, err := s.hasher.Hash(*upd.Password)
		if err != nil {
			return domain.Client{}, fmt.Errorf("hash password: %w", err)
		}
		c.Password = hashed
	}

	_, err = s.db.Exec(`UPDATE clients SET first_name = ?, last_name = ?, phone = ?, login = ?, password = ?
        WHERE id = ?`,
		c.FirstName, c.LastName, c.Phone, c.Login, c.Password, id)
	if err != nil {
		return domain.Client{}, fmt.Errorf("update client: %w", err)
	}
	return c, nil
}

// DeleteClient removes the client. Historical orders are untouched:
// they reference employees and medicines, not clients.
func (s *Store) DeleteClient(id int64) error {
	res, err := s.db.Exec(`DELETE FROM clients WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListClients returns all clients ordered by last name.
func (s *Store) ListClients() ([]domain.Client, error) {
	var clients []domain.Client
	err := s.db.Select(&clients, `SELECT id, first_name, last_name, phone, login, password, balance
        FROM clients ORDER BY last_name, first_name`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return clients, nil
}

// TopUpBalance adds a positive amount to the client's balance and
// returns the updated row.
func (s *Store) TopUpBalance(id int64, amount float64) (domain.Client, error) {
	if amount <= 0 {
		return domain.Client{}, validationf("top-up amount must be positive")
	}
	res, err := s.db.Exec(`UPDATE clients SET balance = balance + ? WHERE id = ?`, amount, id)
	if err != nil {
		return domain.Client{}, fmt.Errorf("top up balance: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Client{}, ErrNotFound
	}
	return s.GetClient(id)
}

// AuthenticateClient verifies the login/password pair. Any failure
// yields ErrInvalidCredentials.
func (s *Store) AuthenticateClient(login, password string) (domain.Client, error) {
	var c domain.Client
	err := s.db.Get(&c, `SELECT id, first_name, last_name, phone, login, password, balance
        FROM clients WHERE login = ?`, login)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Client{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.Client{}, fmt.Errorf("lookup client: %w", err)
	}
	if !s.hasher.Verify(password, c.Password) {
		return domain.Client{}, ErrInvalidCredentials
	}
	return c, nil
}

func (s *Store) loginTaken(table, login string, excludeID int64) (bool, error) {
	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE login = ? AND id != ?`, table)
	if err := s.db.Get(&count, query, login, excludeID); err != nil {
		return false, fmt.Errorf("check login uniqueness: %w", err)
	}
	return count > 0, nil
}
