package domain

type Supplier struct {
	ID          int64  `db:"id" json:"id"`
	CompanyName string `db:"company_name" json:"company_name"`
	Address     string `db:"address" json:"address"`
	Phone       string `db:"phone" json:"phone"`
	INN         string `db:"inn" json:"inn"`
}
