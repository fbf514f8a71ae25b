// Package product holds the shop catalogue record. It is migrated and serializable but has no
// routes yet.
package product

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound      = errors.New("product not found")
	ErrSlugTaken     = errors.New("product slug already exists")
	errNegativePrice = errors.New("must not be negative")
)

type Product struct {
	ID          int64           `json:"id,string"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ImageURL    *string         `json:"image_url"`
}

func (p Product) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&p.Slug, validation.Required, validation.Length(1, 120)),
		validation.Field(&p.Description, validation.Required),
		validation.Field(&p.Price, validation.By(nonNegativePrice)),
		validation.Field(&p.Stock, validation.Min(0)),
	)
}

func nonNegativePrice(v interface{}) error {
	price, ok := v.(decimal.Decimal)
	if !ok {
		return errors.New("must be a decimal")
	}

	if price.IsNegative() {
		return errNegativePrice
	}

	return nil
}
