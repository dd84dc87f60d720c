package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"apteka/m/domain"
)

const orderColumns = `id, registered_on, quantity, status, employee_id, medicine_id`

// OrderRequest carries the input for CreateOrder.
type OrderRequest struct {
	EmployeeID   int64
	MedicineID   int64
	Quantity     int64
	RegisteredOn string
	Status       string
}

// CreateOrder records a sale and decrements the medicine stock inside
// one transaction. The decrement is conditional on sufficient stock, so
// two concurrent orders can never oversubscribe a medicine.
func (s *Store) CreateOrder(req OrderRequest) (domain.Order, error) {
	if req.Quantity <= 0 {
		return domain.Order{}, validationf("quantity must be positive")
	}
	if strings.TrimSpace(req.Status) == "" {
		return domain.Order{}, validationf("status is required")
	}
	if _, err := domain.ParseDate(req.RegisteredOn); err != nil {
		return domain.Order{}, validationf("registered_on must be a YYYY-MM-DD date")
	}
	if _, err := s.GetEmployee(req.EmployeeID); err != nil {
		return domain.Order{}, err
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return domain.Order{}, fmt.Errorf("begin order: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`UPDATE medicines SET count = count - ? WHERE id = ? AND count >= ?`,
		req.Quantity, req.MedicineID, req.Quantity)
	if err != nil {
		return domain.Order{}, fmt.Errorf("decrement stock: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Either the medicine does not exist or the stock is short.
		var available int64
		err := tx.Get(&available, `SELECT count FROM medicines WHERE id = ?`, req.MedicineID)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, ErrNotFound
		}
		if err != nil {
			return domain.Order{}, fmt.Errorf("read stock: %w", err)
		}
		return domain.Order{}, &InsufficientStockError{
			MedicineID: req.MedicineID,
			Requested:  req.Quantity,
			Available:  available,
		}
	}

	ins, err := tx.Exec(`INSERT INTO orders (registered_on, quantity, status, employee_id, medicine_id)
        VALUES (?, ?, ?, ?, ?)`,
		req.RegisteredOn, req.Quantity, req.Status, req.EmployeeID, req.MedicineID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("insert order: %w", err)
	}
	id, _ := ins.LastInsertId()

	if err := tx.Commit(); err != nil {
		return domain.Order{}, fmt.Errorf("commit order: %w", err)
	}

	return domain.Order{
		ID:           id,
		RegisteredOn: req.RegisteredOn,
		Quantity:     req.Quantity,
		Status:       req.Status,
		EmployeeID:   req.EmployeeID,
		MedicineID:   req.MedicineID,
	}, nil
}

// GetOrder returns the order or ErrNotFound.
func (s *Store) GetOrder(id int64) (domain.Order, error) {
	var o domain.Order
	err := s.db.Get(&o, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, ErrNotFound
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// UpdateOrderStatus changes the order status. Quantity and medicine are
// immutable after creation: changing them would desynchronize stock.
func (s *Store) UpdateOrderStatus(id int64, status string) (domain.Order, error) {
	if strings.TrimSpace(status) == "" {
		return domain.Order{}, validationf("status is required")
	}
	res, err := s.db.Exec(`UPDATE orders SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return domain.Order{}, fmt.Errorf("update order status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Order{}, ErrNotFound
	}
	return s.GetOrder(id)
}

// DeleteOrder removes the order row. Stock is not restored: a deleted
// order is a record correction, not a return.
func (s *Store) DeleteOrder(id int64) error {
	res, err := s.db.Exec(`DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// OrderFilter narrows ListOrders; zero fields are not applied. Dates
// are inclusive YYYY-MM-DD bounds.
type OrderFilter struct {
	EmployeeID int64
	MedicineID int64
	Status     string
	From       string
	To         string
}

// ListOrders returns orders matching all provided criteria.
func (s *Store) ListOrders(f OrderFilter) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	var (
		clauses []string
		args    []any
	)
	if f.EmployeeID > 0 {
		clauses = append(clauses, `employee_id = ?`)
		args = append(args, f.EmployeeID)
	}
	if f.MedicineID > 0 {
		clauses = append(clauses, `medicine_id = ?`)
		args = append(args, f.MedicineID)
	}
	if f.Status != "" {
		clauses = append(clauses, `status = ?`)
		args = append(args, f.Status)
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

	var orders []domain.Order
	if err := s.db.Select(&orders, query, args...); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// OrderTotal computes the order cost: medicine price times quantity.
func (s *Store) OrderTotal(id int64) (float64, error) {
	var total float64
	err := s.db.Get(&total, `SELECT m.price * o.quantity FROM orders o
        JOIN medicines m ON m.id = o.medicine_id WHERE o.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("order total: %w", err)
	}
	return total, nil
}

// OrderStatistics aggregates the order table.
type OrderStatistics struct {
	TotalOrders  int64   `json:"total_orders"`
	TotalAmount  float64 `json:"total_amount"`
	AverageOrder float64 `json:"average_order"`
}

// OrderStats reports order count, total revenue (price x quantity) and
// the average order value; zeros for an empty table.
func (s *Store) OrderStats() (OrderStatistics, error) {
	var stats OrderStatistics
	err := s.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(m.price * o.quantity), 0)
        FROM orders o JOIN medicines m ON m.id = o.medicine_id`).
		Scan(&stats.TotalOrders, &stats.TotalAmount)
	if err != nil {
		return OrderStatistics{}, fmt.Errorf("order statistics: %w", err)
	}
	if stats.TotalOrders > 0 {
		stats.AverageOrder = stats.TotalAmount / float64(stats.TotalOrders)
	}
	return stats, nil
}
