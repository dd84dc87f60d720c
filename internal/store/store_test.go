package store

import (
	"testing"

	"apteka/m/domain"
	"apteka/m/internal/database"
	"apteka/m/internal/migrations"
	"apteka/m/internal/security"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db := database.Connect(":memory:")
	t.Cleanup(func() { db.Close() })
	if err := migrations.Apply(db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return New(db, security.NewHasherWithIterations(1000))
}

func mustSupplier(t *testing.T, s *Store, name string) domain.Supplier {
	t.Helper()
	sup, err := s.CreateSupplier(domain.Supplier{
		CompanyName: name,
		Address:     "1 Main St",
		Phone:       "+7 900 1234567",
		INN:         "1234567890",
	})
	if err != nil {
		t.Fatalf("create supplier %s: %v", name, err)
	}
	return sup
}

func mustEmployee(t *testing.T, s *Store, login string) domain.Employee {
	t.Helper()
	emp, err := s.CreateEmployee(domain.Employee{
		FirstName: "Anna",
		LastName:  "Petrova",
		Phone:     "79001112233",
		Position:  "pharmacist",
		Login:     login,
		Password:  "secret",
		HiredOn:   "2020-03-15",
	})
	if err != nil {
		t.Fatalf("create employee %s: %v", login, err)
	}
	return emp
}

func mustMedicine(t *testing.T, s *Store, name string, price float64, count int64) domain.Medicine {
	t.Helper()
	med, err := s.CreateMedicine(domain.Medicine{
		Name:     name,
		Price:    price,
		Count:    count,
		Category: "analgesic",
	})
	if err != nil {
		t.Fatalf("create medicine %s: %v", name, err)
	}
	return med
}
