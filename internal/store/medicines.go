package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"apteka/m/domain"
)

const medicineColumns = `id, name, price, count, description, category, best_before, supplier_id`

// CreateMedicine registers a new medicine. The name must be unique and
// the price and count non-negative.
func (s *Store) CreateMedicine(m domain.Medicine) (domain.Medicine, error) {
	if strings.TrimSpace(m.Name) == "" {
		return domain.Medicine{}, validationf("name is required")
	}
	if m.Price < 0 {
		return domain.Medicine{}, validationf("price must not be negative")
	}
	if m.Count < 0 {
		return domain.Medicine{}, validationf("count must not be negative")
	}
	if m.SupplierID != nil {
		if _, err := s.GetSupplier(*m.SupplierID); err != nil {
			return domain.Medicine{}, err
		}
	}

	taken, err := s.medicineNameTaken(m.Name, 0)
	if err != nil {
		return domain.Medicine{}, err
	}
	if taken {
		return domain.Medicine{}, &UniquenessError{Field: "medicine name", Value: m.Name}
	}

	res, err := s.db.Exec(`INSERT INTO medicines (name, price, count, description, category, best_before, supplier_id)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.Name, m.Price, m.Count, m.Description, m.Category, m.BestBefore, m.SupplierID)
	if err != nil {
		return domain.Medicine{}, fmt.Errorf("insert medicine: %w", err)
	}
	m.ID, _ = res.LastInsertId()
	return m, nil
}

// GetMedicine returns the medicine or ErrNotFound.
func (s *Store) GetMedicine(id int64) (domain.Medicine, error) {
	var m domain.Medicine
	err := s.db.Get(&m, `SELECT `+medicineColumns+` FROM medicines WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Medicine{}, ErrNotFound
	}
	if err != nil {
		return domain.Medicine{}, fmt.Errorf("get medicine: %w", err)
	}
	return m, nil
}

// MedicineUpdate carries the fields to overwrite; nil fields are left
// as they are. Count is deliberately absent: stock moves only through
// orders and shipments.
type MedicineUpdate struct {
	Name        *string
	Price       *float64
	Description *string
	Category    *string
	BestBefore  *string
	SupplierID  *int64
}

// UpdateMedicine applies the provided fields and returns the updated row.
func (s *Store) UpdateMedicine(id int64, upd MedicineUpdate) (domain.Medicine, error) {
	m, err := s.GetMedicine(id)
	if err != nil {
		return domain.Medicine{}, err
	}

	if upd.Name != nil && *upd.Name != m.Name {
		if strings.TrimSpace(*upd.Name) == "" {
			return domain.Medicine{}, validationf("name must not be empty")
		}
		taken, err := s.medicineNameTaken(*upd.Name, id)
		if err != nil {
			return domain.Medicine{}, err
		}
		if taken {
			return domain.Medicine{}, &UniquenessError{Field: "medicine name", Value: *upd.Name}
		}
		m.Name = *upd.Name
	}
	if upd.Price != nil {
		if *upd.Price < 0 {
			return domain.Medicine{}, validationf("price must not be negative")
		}
		m.Price = *upd.Price
	}
	if upd.Description != nil {
		m.Description = *upd.Description
	}
	if upd.Category != nil {
		m.Category = *upd.Category
	}
	if upd.BestBefore != nil {
		m.BestBefore = *upd.BestBefore
	}
	if upd.SupplierID != nil {
		if _, err := s.GetSupplier(*upd.SupplierID); err != nil {
			return domain.Medicine{}, err
		}
		m.SupplierID = upd.SupplierID
	}

	_, err = s.db.Exec(`UPDATE medicines SET name = ?, price = ?, description = ?, category = ?, best_before = ?, supplier_id = ?
        WHERE id = ?`,
		m.Name, m.Price, m.Description, m.Category, m.BestBefore, m.SupplierID, id)
	if err != nil {
		return domain.Medicine{}, fmt.Errorf("update medicine: %w", err)
	}
	return m, nil
}

// DeleteMedicine removes the medicine unless orders or shipment items
// still reference it, so historical rows keep valid references.
func (s *Store) DeleteMedicine(id int64) error {
	var refs int
	err := s.db.Get(&refs, `SELECT
        (SELECT COUNT(*) FROM orders WHERE medicine_id = ?) +
        (SELECT COUNT(*) FROM shipment_items WHERE medicine_id = ?)`, id, id)
	if err != nil {
		return fmt.Errorf("check medicine references: %w", err)
	}
	if refs > 0 {
		return ErrMedicineInUse
	}
	res, err := s.db.Exec(`DELETE FROM medicines WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete medicine: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// MedicineFilter narrows ListMedicines.
type MedicineFilter struct {
	Category   string
	SupplierID int64
}

// ListMedicines returns medicines matching the filter, ordered by name.
func (s *Store) ListMedicines(f MedicineFilter) ([]domain.Medicine, error) {
	query := `SELECT ` + medicineColumns + ` FROM medicines`
	var (
		clauses []string
		args    []any
	)
	if f.Category != "" {
		clauses = append(clauses, `category = ?`)
		args = append(args, f.Category)
	}
	if f.SupplierID > 0 {
		clauses = append(clauses, `supplier_id = ?`)
		args = append(args, f.SupplierID)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY name"

	var medicines []domain.Medicine
	if err := s.db.Select(&medicines, query, args...); err != nil {
		return nil, fmt.Errorf("list medicines: %w", err)
	}
	return medicines, nil
}

// MedicinesExpiringAfter returns medicines whose best-before marker is
// strictly after the given one.
func (s *Store) MedicinesExpiringAfter(marker string) ([]domain.Medicine, error) {
	var medicines []domain.Medicine
	err := s.db.Select(&medicines, `SELECT `+medicineColumns+` FROM medicines WHERE best_before > ? ORDER BY best_before`, marker)
	if err != nil {
		return nil, fmt.Errorf("medicines expiring after: %w", err)
	}
	return medicines, nil
}

func (s *Store) medicineNameTaken(name string, excludeID int64) (bool, error) {
	var count int
	err := s.db.Get(&count, `SELECT COUNT(*) FROM medicines WHERE name = ? AND id != ?`, name, excludeID)
	if err != nil {
		return false, fmt.Errorf("check medicine name uniqueness: %w", err)
	}
	return count > 0, nil
}
