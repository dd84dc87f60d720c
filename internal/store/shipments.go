package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"apteka/m/domain"
)

// ShipmentLine is one (medicine, quantity) pair of a shipment request.
type ShipmentLine struct {
	MedicineID int64
	Quantity   int64
}

// ShipmentRequest carries the input for ReceiveShipment.
type ShipmentRequest struct {
	SupplierID   int64
	EmployeeID   int64
	RegisteredOn string
	Status       string
	Items        []ShipmentLine
}

// ReceiveShipment records a batch receipt from a supplier: it prices
// every line at the medicine's current price, inserts the shipment and
// its items, and increments the stock counts — all inside one
// transaction, so a failure on any line leaves nothing behind.
// Duplicate medicine ids in the request are merged before mutation.
func (s *Store) ReceiveShipment(req ShipmentRequest) (domain.Shipment, error) {
	if len(req.Items) == 0 {
		return domain.Shipment{}, validationf("shipment must contain at least one item")
	}
	for _, line := range req.Items {
		if line.Quantity <= 0 {
			return domain.Shipment{}, validationf("item quantity must be positive")
		}
	}
	if strings.TrimSpace(req.Status) == "" {
		return domain.Shipment{}, validationf("status is required")
	}
	if _, err := domain.ParseDate(req.RegisteredOn); err != nil {
		return domain.Shipment{}, validationf("registered_on must be a YYYY-MM-DD date")
	}
	if _, err := s.GetSupplier(req.SupplierID); err != nil {
		return domain.Shipment{}, err
	}
	if _, err := s.GetEmployee(req.EmployeeID); err != nil {
		return domain.Shipment{}, err
	}

	lines := mergeLines(req.Items)

	tx, err := s.db.Beginx()
	if err != nil {
		return domain.Shipment{}, fmt.Errorf("begin shipment: %w", err)
	}
	defer tx.Rollback()

	var total float64
	for _, line := range lines {
		var price float64
		err := tx.Get(&price, `SELECT price FROM medicines WHERE id = ?`, line.MedicineID)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Shipment{}, ErrNotFound
		}
		if err != nil {
			return domain.Shipment{}, fmt.Errorf("read medicine price: %w", err)
		}
		total += price * float64(line.Quantity)
	}

	res, err := tx.Exec(`INSERT INTO shipments (registered_on, total_price, status, supplier_id, employee_id)
        VALUES (?, ?, ?, ?, ?)`,
		req.RegisteredOn, total, req.Status, req.SupplierID, req.EmployeeID)
	if err != nil {
		return domain.Shipment{}, fmt.Errorf("insert shipment: %w", err)
	}
	shipmentID, _ := res.LastInsertId()

	shipment := domain.Shipment{
		ID:           shipmentID,
		RegisteredOn: req.RegisteredOn,
		TotalPrice:   total,
		Status:       req.Status,
		SupplierID:   req.SupplierID,
		EmployeeID:   req.EmployeeID,
	}

	for _, line := range lines {
		ins, err := tx.Exec(`INSERT INTO shipment_items (shipment_id, medicine_id, quantity) VALUES (?, ?, ?)`,
			shipmentID, line.MedicineID, line.Quantity)
		if err != nil {
			return domain.Shipment{}, fmt.Errorf("insert shipment item: %w", err)
		}
		itemID, _ := ins.LastInsertId()
		shipment.Items = append(shipment.Items, domain.ShipmentItem{
			ID:         itemID,
			ShipmentID: shipmentID,
			MedicineID: line.MedicineID,
			Quantity:   line.Quantity,
		})

		if _, err := tx.Exec(`UPDATE medicines SET count = count + ? WHERE id = ?`,
			line.Quantity, line.MedicineID); err != nil {
			return domain.Shipment{}, fmt.Errorf("increment stock: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Shipment{}, fmt.Errorf("commit shipment: %w", err)
	}
	return shipment, nil
}

// mergeLines sums quantities of duplicate medicine ids, preserving the
// order of first occurrence.
func mergeLines(items []ShipmentLine) []ShipmentLine {
	index := make(map[int64]int, len(items))
	merged := make([]ShipmentLine, 0, len(items))
	for _, line := range items {
		if i, ok := index[line.MedicineID]; ok {
			merged[i].Quantity += line.Quantity
			continue
		}
		index[line.MedicineID] = len(merged)
		merged = append(merged, line)
	}
	return merged
}

// GetShipment returns the shipment with its items, or ErrNotFound.
func (s *Store) GetShipment(id int64) (domain.Shipment, error) {
	var sh domain.Shipment
	err := s.db.Get(&sh, `SELECT id, registered_on, total_price, status, supplier_id, employee_id
        FROM shipments WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Shipment{}, ErrNotFound
	}
	if err != nil {
		return domain.Shipment{}, fmt.Errorf("get shipment: %w", err)
	}
	err = s.db.Select(&sh.Items, `SELECT id, shipment_id, medicine_id, quantity
        FROM shipment_items WHERE shipment_id = ? ORDER BY id`, id)
	if err != nil {
		return domain.Shipment{}, fmt.Errorf("get shipment items: %w", err)
	}
	return sh, nil
}

// DeleteShipment removes the shipment and its items in one transaction.
// Stock is not reverted: the goods were still received.
func (s *Store) DeleteShipment(id int64) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin shipment delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM shipment_items WHERE shipment_id = ?`, id); err != nil {
		return fmt.Errorf("delete shipment items: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM shipments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete shipment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// ShipmentFilter narrows ListShipments; zero fields are not applied.
type ShipmentFilter struct {
	SupplierID int64
	From       string
	To         string
}

// ListShipments returns shipments matching the filter, newest first,
// without their items.
func (s *Store) ListShipments(f ShipmentFilter) ([]domain.Shipment, error) {
	query := `SELECT id, registered_on, total_price, status, supplier_id, employee_id FROM shipments`
	var (
		clauses []string
		args    []any
	)
	if f.SupplierID > 0 {
		clauses = append(clauses, `supplier_id = ?`)
		args = append(args, f.SupplierID)
	}
	if f.From != "" {
		clauses = append(clauses, `registered_on >= ?`)
		args = append(args, f.From)
	}
	if f.To != "" {
		clauses = append(clauses, `registered_on <= ?`)
		args = append(args, f.To)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY registered_on DESC, id DESC"

	var shipments []domain.Shipment
	if err := s.db.Select(&shipments, query, args...); err != nil {
		return nil, fmt.Errorf("list shipments: %w", err)
	}
	return shipments, nil
}

// VerifyShipmentTotal recomputes the shipment total from its items at
// current medicine prices and returns it alongside the stored total.
// The two diverge once prices change after receipt.
func (s *Store) VerifyShipmentTotal(id int64) (stored, computed float64, err error) {
	sh, err := s.GetShipment(id)
	if err != nil {
		return 0, 0, err
	}
	err = s.db.Get(&computed, `SELECT COALESCE(SUM(m.price * si.quantity), 0)
        FROM shipment_items si JOIN medicines m ON m.id = si.medicine_id
        WHERE si.shipment_id = ?`, id)
	if err != nil {
		return 0, 0, fmt.Errorf("recompute shipment total: %w", err)
	}
	return sh.TotalPrice, computed, nil
}
