package store

import (
	"errors"
	"testing"

	"apteka/m/domain"
)

// Creating two suppliers with the same company name must fail the
// second time and leave a single row.
func TestCreateSupplierUniqueCompanyName(t *testing.T) {
	s := newTestStore(t)
	mustSupplier(t, s, "PharmCo")

	_, err := s.CreateSupplier(domain.Supplier{
		CompanyName: "PharmCo",
		Address:     "2 Other St",
		Phone:       "79000000000",
		INN:         "123456789012",
	})
	var uniqueness *UniquenessError
	if !errors.As(err, &uniqueness) {
		t.Fatalf("err = %v, want UniquenessError", err)
	}

	suppliers, err := s.ListSuppliers(SupplierFilter{})
	if err != nil {
		t.Fatalf("list suppliers: %v", err)
	}
	if len(suppliers) != 1 {
		t.Fatalf("got %d suppliers, want 1", len(suppliers))
	}
}

func TestSupplierValidation(t *testing.T) {
	s := newTestStore(t)

	cases := []struct {
		name     string
		supplier domain.Supplier
	}{
		{"empty company", domain.Supplier{Address: "a", Phone: "123", INN: "1234567890"}},
		{"empty address", domain.Supplier{CompanyName: "X", Phone: "123", INN: "1234567890"}},
		{"letters in phone", domain.Supplier{CompanyName: "X", Address: "a", Phone: "12ab34", INN: "1234567890"}},
		{"letters in inn", domain.Supplier{CompanyName: "X", Address: "a", Phone: "123", INN: "12345abcde"}},
		{"inn too short", domain.Supplier{CompanyName: "X", Address: "a", Phone: "123", INN: "123456789"}},
		{"inn 11 digits", domain.Supplier{CompanyName: "X", Address: "a", Phone: "123", INN: "12345678901"}},
	}
	for _, tc := range cases {
		_, err := s.CreateSupplier(tc.supplier)
		var validation *ValidationError
		if !errors.As(err, &validation) {
			t.Errorf("%s: err = %v, want ValidationError", tc.name, err)
		}
	}

	// Both INN lengths and formatted phones are accepted.
	for i, inn := range []string{"1234567890", "123456789012"} {
		_, err := s.CreateSupplier(domain.Supplier{
			CompanyName: []string{"Ten", "Twelve"}[i],
			Address:     "a",
			Phone:       "+7 900 123 45 67",
			INN:         inn,
		})
		if err != nil {
			t.Errorf("valid inn %s rejected: %v", inn, err)
		}
	}
}

func TestListSuppliersSearch(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.CreateSupplier(domain.Supplier{CompanyName: "Alfa Pharma", Address: "Moscow", Phone: "123", INN: "1234567890"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.CreateSupplier(domain.Supplier{CompanyName: "Beta Med", Address: "Kazan", Phone: "123", INN: "123456789012"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	byName, err := s.ListSuppliers(SupplierFilter{Search: "Pharma"})
	if err != nil {
		t.Fatalf("search by name: %v", err)
	}
	if len(byName) != 1 || byName[0].CompanyName != "Alfa Pharma" {
		t.Fatalf("search by name: got %+v", byName)
	}

	byAddress, err := s.ListSuppliers(SupplierFilter{Search: "Kazan"})
	if err != nil {
		t.Fatalf("search by address: %v", err)
	}
	if len(byAddress) != 1 || byAddress[0].CompanyName != "Beta Med" {
		t.Fatalf("search by address: got %+v", byAddress)
	}

	byINN, err := s.ListSuppliers(SupplierFilter{INN: "1234567890"})
	if err != nil {
		t.Fatalf("filter by inn: %v", err)
	}
	if len(byINN) != 1 || byINN[0].CompanyName != "Alfa Pharma" {
		t.Fatalf("filter by inn: got %+v", byINN)
	}

	all, err := s.ListSuppliers(SupplierFilter{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 || all[0].CompanyName != "Alfa Pharma" {
		t.Fatalf("expected alphabetical order, got %+v", all)
	}
}

func TestUpdateSupplierPartial(t *testing.T) {
	s := newTestStore(t)
	sup := mustSupplier(t, s, "PharmCo")

	address := "New address 5"
	updated, err := s.UpdateSupplier(sup.ID, SupplierUpdate{Address: &address})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Address != address {
		t.Fatalf("address = %q, want %q", updated.Address, address)
	}
	if updated.CompanyName != sup.CompanyName || updated.Phone != sup.Phone || updated.INN != sup.INN {
		t.Fatalf("untouched fields changed: %+v", updated)
	}

	badINN := "12"
	if _, err := s.UpdateSupplier(sup.ID, SupplierUpdate{INN: &badINN}); err == nil {
		t.Fatalf("invalid inn accepted on update")
	}
}

func TestSupplierStatsAndMedicines(t *testing.T) {
	s := newTestStore(t)
	withMeds := mustSupplier(t, s, "PharmCo")
	mustSupplier(t, s, "EmptyCo")

	med, err := s.CreateMedicine(domain.Medicine{Name: "Aspirin", Price: 10, SupplierID: &withMeds.ID})
	if err != nil {
		t.Fatalf("create medicine: %v", err)
	}

	stats, err := s.SupplierStats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalSuppliers != 2 || stats.SuppliersWithMedicines != 1 || stats.SuppliersWithoutMedicines != 1 {
		t.Fatalf("stats = %+v", stats)
	}

	medicines, err := s.SupplierMedicines(withMeds.ID)
	if err != nil {
		t.Fatalf("supplier medicines: %v", err)
	}
	if len(medicines) != 1 || medicines[0].ID != med.ID {
		t.Fatalf("medicines = %+v", medicines)
	}

	if _, err := s.SupplierMedicines(999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing supplier: err = %v, want ErrNotFound", err)
	}
}

func TestDeleteSupplier(t *testing.T) {
	s := newTestStore(t)
	sup := mustSupplier(t, s, "PharmCo")

	if err := s.DeleteSupplier(sup.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetSupplier(sup.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get deleted: err = %v, want ErrNotFound", err)
	}
	if err := s.DeleteSupplier(sup.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double delete: err = %v, want ErrNotFound", err)
	}
}
