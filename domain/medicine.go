package domain

type Medicine struct {
	ID          int64   `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Price       float64 `db:"price" json:"price"`
	Count       int64   `db:"count" json:"count"`
	Description string  `db:"description" json:"description"`
	Category    string  `db:"category" json:"category"`
	BestBefore  string  `db:"best_before" json:"best_before"`
	SupplierID  *int64  `db:"supplier_id" json:"supplier_id,omitempty"`
}
