package domain

type Order struct {
	ID           int64  `db:"id" json:"id"`
	RegisteredOn string `db:"registered_on" json:"registered_on"`
	Quantity     int64  `db:"quantity" json:"quantity"`
	Status       string `db:"status" json:"status"`
	EmployeeID   int64  `db:"employee_id" json:"employee_id"`
	MedicineID   int64  `db:"medicine_id" json:"medicine_id"`
}
