package domain

type Shipment struct {
	ID           int64          `db:"id" json:"id"`
	RegisteredOn string         `db:"registered_on" json:"registered_on"`
	TotalPrice   float64        `db:"total_price" json:"total_price"`
	Status       string         `db:"status" json:"status"`
	SupplierID   int64          `db:"supplier_id" json:"supplier_id"`
	EmployeeID   int64          `db:"employee_id" json:"employee_id"`
	Items        []ShipmentItem `db:"-" json:"items,omitempty"`
}

type ShipmentItem struct {
	ID         int64 `db:"id" json:"id"`
	ShipmentID int64 `db:"shipment_id" json:"shipment_id"`
	MedicineID int64 `db:"medicine_id" json:"medicine_id"`
	Quantity   int64 `db:"quantity" json:"quantity"`
}

// TotalQuantity sums the received quantity across all line items.
func (s Shipment) TotalQuantity() int64 {
	var total int64
	for _, item := range s.Items {
		total += item.Quantity
	}
	return total
}
