package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a product in the catalog.
type Product struct {
	ID          uint            `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string          `json:"name" gorm:"type:varchar(100);not null;index" validate:"required,notblank,max=100"`
	Description string          `json:"description" gorm:"type:varchar(250)" validate:"max=250"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null" validate:"gte=0"`
	Available   bool            `json:"available" gorm:"not null;index"`
	Category    Category        `json:"category" gorm:"type:varchar(20);not null;index" validate:"category"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName pins the table name regardless of naming strategy.
func (Product) TableName() string {
	return "products"
}

// ProductFilter narrows a product listing. Nil fields are not applied;
// set fields compose with AND.
type ProductFilter struct {
	Name      *string
	Category  *Category
	Available *bool
}

// Matches reports whether p satisfies every set field of the filter.
func (f ProductFilter) Matches(p Product) bool {
	if f.Name != nil && p.Name != *f.Name {
		return false
	}
	if f.Category != nil && p.Category != *f.Category {
		return false
	}
	if f.Available != nil && p.Available != *f.Available {
		return false
	}
	return true
}
