package domain

type Client struct {
	ID        int64   `db:"id" json:"id"`
	FirstName string  `db:"first_name" json:"first_name"`
	LastName  string  `db:"last_name" json:"last_name"`
	Phone     string  `db:"phone" json:"phone"`
	Login     string  `db:"login" json:"login"`
	Password  string  `db:"password" json:"-"`
	Balance   float64 `db:"balance" json:"balance"`
}
