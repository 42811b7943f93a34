package models

import "github.com/shopspring/decimal"

// ProductPayload is the wire form of a product in create and update requests.
// A nil field was absent from the request body.
type ProductPayload struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Available   *bool            `json:"available"`
	Category    *Category        `json:"category"`
}

// NewProduct builds a product from the payload, filling absent optional fields
// with their defaults: zero price, available, UNKNOWN category.
func (p ProductPayload) NewProduct() Product {
	product := Product{
		Price:     decimal.Zero,
		Available: true,
		Category:  CategoryUnknown,
	}
	p.ApplyTo(&product)
	return product
}

// ApplyTo overwrites the fields of product that are present in the payload.
func (p ProductPayload) ApplyTo(product *Product) {
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.Available != nil {
		product.Available = *p.Available
	}
	if p.Category != nil {
		product.Category = *p.Category
	}
}
