package request

import (
	"github.com/shopspring/decimal"
)

type UpsertProduct struct {
	Name        string          `validate:"required" json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `validate:"required" json:"price"`
	ImageUrl    string          `json:"image_url"`
}
