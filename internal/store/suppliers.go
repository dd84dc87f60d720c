package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"apteka/m/domain"
)

// CreateSupplier registers a new supplier after validating the phone
// and tax identifier. The company name must be unique.
func (s *Store) CreateSupplier(sup domain.Supplier) (domain.Supplier, error) {
	if strings.TrimSpace(sup.CompanyName) == "" {
		return domain.Supplier{}, validationf("company name is required")
	}
	if strings.TrimSpace(sup.Address) == "" {
		return domain.Supplier{}, validationf("address is required")
	}
	if err := validatePhone(sup.Phone); err != nil {
		return domain.Supplier{}, err
	}
	if err := validateINN(sup.INN); err != nil {
		return domain.Supplier{}, err
	}

	taken, err := s.companyNameTaken(sup.CompanyName, 0)
	if err != nil {
		return domain.Supplier{}, err
	}
	if taken {
		return domain.Supplier{}, &UniquenessError{Field: "company name", Value: sup.CompanyName}
	}

	res, err := s.db.Exec(`INSERT INTO suppliers (company_name, address, phone, inn) VALUES (?, ?, ?, ?)`,
		sup.CompanyName, sup.Address, sup.Phone, sup.INN)
	if err != nil {
		return domain.Supplier{}, fmt.Errorf("insert supplier: %w", err)
	}
	sup.ID, _ = res.LastInsertId()
	return sup, nil
}

// GetSupplier returns the supplier or ErrNotFound.
func (s *Store) GetSupplier(id int64) (domain.Supplier, error) {
	var sup domain.Supplier
	err := s.db.Get(&sup, `SELECT id, company_name, address, phone, inn FROM suppliers WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Supplier{}, ErrNotFound
	}
	if err != nil {
		return domain.Supplier{}, fmt.Errorf("get supplier: %w", err)
	}
	return sup, nil
}

// SupplierUpdate carries the fields to overwrite; nil fields are left
// as they are.
type SupplierUpdate struct {
	CompanyName *string
	Address     *string
	Phone       *string
	INN         *string
}

// UpdateSupplier applies the provided fields and returns the updated row.
func (s *Store) UpdateSupplier(id int64, upd SupplierUpdate) (domain.Supplier, error) {
	sup, err := s.GetSupplier(id)
	if err != nil {
		return domain.Supplier{}, err
	}

	if upd.CompanyName != nil && *upd.CompanyName != sup.CompanyName {
		if strings.TrimSpace(*upd.CompanyName) == "" {
			return domain.Supplier{}, validationf("company name must not be empty")
		}
		taken, err := s.companyNameTaken(*upd.CompanyName, id)
		if err != nil {
			return domain.Supplier{}, err
		}
		if taken {
			return domain.Supplier{}, &UniquenessError{Field: "company name", Value: *upd.CompanyName}
		}
		sup.CompanyName = *upd.CompanyName
	}
	if upd.Address != nil {
		if strings.TrimSpace(*upd.Address) == "" {
			return domain.Supplier{}, validationf("address must not be empty")
		}
		sup.Address = *upd.Address
	}
	if upd.Phone != nil {
		if err := validatePhone(*upd.Phone); err != nil {
			return domain.Supplier{}, err
		}
		sup.Phone = *upd.Phone
	}
	if upd.INN != nil {
		if err := validateINN(*upd.INN); err != nil {
			return domain.Supplier{}, err
		}
		sup.INN = *upd.INN
	}

	_, err = s.db.Exec(`UPDATE suppliers SET company_name = ?, address = ?, phone = ?, inn = ? WHERE id = ?`,
		sup.CompanyName, sup.Address, sup.Phone, sup.INN, id)
	if err != nil {
		return domain.Supplier{}, fmt.Errorf("update supplier: %w", err)
	}
	return sup, nil
}

// DeleteSupplier removes the supplier.
func (s *Store) DeleteSupplier(id int64) error {
	res, err := s.db.Exec(`DELETE FROM suppliers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete supplier: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SupplierFilter narrows ListSuppliers. Search matches company name or
// address, case-insensitively.
type SupplierFilter struct {
	Search string
	INN    string
}

// ListSuppliers returns suppliers matching the filter, ordered by
// company name.
func (s *Store) ListSuppliers(f SupplierFilter) ([]domain.Supplier, error) {
	query := `SELECT id, company_name, address, phone, inn FROM suppliers`
	var (
		clauses []string
		args    []any
	)
	if f.Search != "" {
		like := "%" + f.Search + "%"
		clauses = append(clauses, `(company_name LIKE ? OR address LIKE ?)`)
		args = append(args, like, like)
	}
	if f.INN != "" {
		clauses = append(clauses, `inn = ?`)
		args = append(args, f.INN)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY company_name"

	var suppliers []domain.Supplier
	if err := s.db.Select(&suppliers, query, args...); err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	return suppliers, nil
}

// SupplierMedicines returns the medicines owned by the supplier.
func (s *Store) SupplierMedicines(id int64) ([]domain.Medicine, error) {
	if _, err := s.GetSupplier(id); err != nil {
		return nil, err
	}
	var medicines []domain.Medicine
	err := s.db.Select(&medicines, `SELECT `+medicineColumns+` FROM medicines WHERE supplier_id = ? ORDER BY name`, id)
	if err != nil {
		return nil, fmt.Errorf("supplier medicines: %w", err)
	}
	return medicines, nil
}

// SupplierStatistics partitions suppliers by whether they own at least
// one medicine.
type SupplierStatistics struct {
	TotalSuppliers            int64 `json:"total_suppliers"`
	SuppliersWithMedicines    int64 `json:"suppliers_with_medicines"`
	SuppliersWithoutMedicines int64 `json:"suppliers_without_medicines"`
}

// SupplierStats computes the supplier partition counts.
func (s *Store) SupplierStats() (SupplierStatistics, error) {
	var stats SupplierStatistics
	if err := s.db.Get(&stats.TotalSuppliers, `SELECT COUNT(*) FROM suppliers`); err != nil {
		return SupplierStatistics{}, fmt.Errorf("count suppliers: %w", err)
	}
	err := s.db.Get(&stats.SuppliersWithMedicines,
		`SELECT COUNT(*) FROM suppliers s WHERE EXISTS (SELECT 1 FROM medicines m WHERE m.supplier_id = s.id)`)
	if err != nil {
		return SupplierStatistics{}, fmt.Errorf("count suppliers with medicines: %w", err)
	}
	stats.SuppliersWithoutMedicines = stats.TotalSuppliers - stats.SuppliersWithMedicines
	return stats, nil
}

func (s *Store) companyNameTaken(name string, excludeID int64) (bool, error) {
	var count int
	err := s.db.Get(&count, `SELECT COUNT(*) FROM suppliers WHERE company_name = ? AND id != ?`, name, excludeID)
	if err != nil {
		return false, fmt.Errorf("check company name uniqueness: %w", err)
	}
	return count > 0, nil
}

func validatePhone(phone string) error {
	stripped := strings.NewReplacer("+", "", " ", "").Replace(phone)
	if stripped == "" {
		return validationf("phone is required")
	}
	for _, r := range stripped {
		if r < '0' || r > '9' {
			return validationf("phone must contain only digits")
		}
	}
	return nil
}

func validateINN(inn string) error {
	if inn == "" {
		return validationf("inn is required")
	}
	for _, r := range inn {
		if r < '0' || r > '9' {
			return validationf("inn must contain only digits")
		}
	}
	if len(inn) != 10 && len(inn) != 12 {
		return validationf("inn must be 10 or 12 digits long")
	}
	return nil
}
