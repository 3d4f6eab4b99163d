package response

import (
	"github.com/shopspring/decimal"

	"github.com/obarros/lojinha/internal/cart"
)

// Cart is the wire view of a cart with all derived amounts resolved.
type Cart struct {
	Items        []cart.Item     `json:"items"`
	ItemCount    int32           `json:"item_count"`
	Cep          string          `json:"cep"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	Total        decimal.Decimal `json:"total"`
}

func NewCart(manager *cart.Manager) Cart {
	return Cart{
		Items:        manager.Items(),
		ItemCount:    manager.ItemCount(),
		Cep:          manager.Cep(),
		Subtotal:     manager.Subtotal(),
		ShippingCost: manager.ShippingCost(),
		Total:        manager.Total(),
	}
}
