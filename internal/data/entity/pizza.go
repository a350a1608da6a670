package entity

// Pizza is a catalog entry. Price is in cents.
type Pizza struct {
	Base
	Name        string `db:"name"`
	Description string `db:"description"`
	Price       int64  `db:"price"`
}
