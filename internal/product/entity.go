// AngelaMos | 2026
// entity.go

package product

import (
	"time"
)

type Product struct {
	ID          string     `db:"id"          json:"id"`
	Name        string     `db:"name"        json:"name"`
	Slug        string     `db:"slug"        json:"slug"`
	Description string     `db:"description" json:"description"`
	PriceCents  int64      `db:"price_cents" json:"price_cents"`
	Stock       int        `db:"stock"       json:"stock"`
	CreatedAt   time.Time  `db:"created_at"  json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"  json:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at"  json:"-"`
}
