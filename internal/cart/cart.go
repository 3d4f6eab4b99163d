package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/obarros/lojinha/internal/constants"
	"github.com/obarros/lojinha/internal/store"
)

type Item struct {
	Product  store.Product `json:"product"`
	Quantity int32         `json:"quantity"`
}

var (
	freeShippingThreshold = decimal.NewFromInt(100)
	flatShippingCost      = decimal.New(1500, -2)
)

// Manager owns one user's cart: the ordered item list, the postal
// code, and the shipping cost derived from it. Totals are recomputed
// on every read. Every mutation, the shipping quote included, is
// written back to the session storage; a saved cart that does not
// deserialize is treated as no saved cart.
type Manager struct {
	storage      Storage
	key          string
	items        []Item
	cep          string
	shippingCost decimal.Decimal
}

// savedCart is the storage payload. The cep and shipping cost ride
// along with the items because each request rebuilds the manager from
// storage: a quote kept only in memory would be gone by checkout.
type savedCart struct {
	Items        []Item          `json:"items"`
	Cep          string          `json:"cep"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
}

func NewManager(c context.Context, storage Storage, key string) *Manager {
	m := &Manager{storage: storage, key: key, shippingCost: decimal.Zero}
	m.restore(c)
	return m
}

func (m *Manager) restore(c context.Context) {
	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "CartManager restore").
		Str(constants.KEY_CART_KEY, m.key).
		Logger()

	saved, ok, err := m.storage.Load(c, m.key)
	if err != nil {
		logger.Error().Err(err).Msgf("failed loading saved cart with error=%s", err.Error())
		return
	}
	if !ok {
		return
	}

	payload := savedCart{}
	if err := json.Unmarshal(saved, &payload); err != nil {
		logger.Error().Err(err).Msgf("failed decoding saved cart with error=%s", err.Error())
		return
	}
	m.items = payload.Items
	m.cep = payload.Cep
	m.shippingCost = payload.ShippingCost
	logger.Info().
		Int(constants.KEY_CART_ITEMS, len(payload.Items)).
		Str(constants.KEY_CEP, payload.Cep).
		Msg("restored saved cart")
}

func (m *Manager) persist(c context.Context) {
	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "CartManager persist").
		Str(constants.KEY_CART_KEY, m.key).
		Logger()

	saved, err := json.Marshal(savedCart{
		Items:        m.items,
		Cep:          m.cep,
		ShippingCost: m.shippingCost,
	})
	if err != nil {
		logger.Error().Err(err).Msgf("failed encoding cart with error=%s", err.Error())
		return
	}
	if err := m.storage.Save(c, m.key, saved); err != nil {
		logger.Error().Err(err).Msgf("failed saving cart with error=%s", err.Error())
	}
}

// AddToCart appends the product with quantity 1, or bumps the
// quantity when it is already in the cart.
func (m *Manager) AddToCart(c context.Context, product store.Product) {
	for i, item := range m.items {
		if item.Product.ID == product.ID {
			m.items[i].Quantity++
			m.persist(c)
			return
		}
	}
	m.items = append(m.items, Item{Product: product, Quantity: 1})
	m.persist(c)
}

// UpdateQuantity replaces the quantity of the matching item.
// Quantities below 1 are ignored.
func (m *Manager) UpdateQuantity(c context.Context, productID uuid.UUID, quantity int32) {
	if quantity < 1 {
		return
	}
	for i, item := range m.items {
		if item.Product.ID == productID {
			m.items[i].Quantity = quantity
			break
		}
	}
	m.persist(c)
}

func (m *Manager) IncrementQuantity(c context.Context, productID uuid.UUID) {
	for _, item := range m.items {
		if item.Product.ID == productID {
			m.UpdateQuantity(c, productID, item.Quantity+1)
			return
		}
	}
}

// DecrementQuantity lowers the quantity by one but never below 1;
// removal is only ever explicit.
func (m *Manager) DecrementQuantity(c context.Context, productID uuid.UUID) {
	for _, item := range m.items {
		if item.Product.ID == productID && item.Quantity > 1 {
			m.UpdateQuantity(c, productID, item.Quantity-1)
			return
		}
	}
}

func (m *Manager) RemoveItem(c context.Context, productID uuid.UUID) {
	kept := m.items[:0]
	for _, item := range m.items {
		if item.Product.ID != productID {
			kept = append(kept, item)
		}
	}
	m.items = kept
	m.persist(c)
}

func (m *Manager) Clear(c context.Context) {
	m.items = nil
	m.cep = ""
	m.shippingCost = decimal.Zero
	m.persist(c)
}

// CalculateShipping stores the postal code and derives the shipping
// cost: free above the subtotal threshold, a flat rate for a valid
// 8-digit CEP, zero otherwise. Placeholder policy, no carrier lookup.
func (m *Manager) CalculateShipping(c context.Context, cep string) {
	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "CartManager CalculateShipping").
		Str(constants.KEY_CEP, cep).
		Logger()

	m.cep = cep

	if m.Subtotal().GreaterThanOrEqual(freeShippingThreshold) {
		m.shippingCost = decimal.Zero
		m.persist(c)
		logger.Info().Msg("subtotal above threshold, shipping is free")
		return
	}

	cleaned := strings.Map(func(r rune) rune {
		if r < '0' || r > '9' {
			return -1
		}
		return r
	}, cep)

	if len(cleaned) == 8 {
		m.shippingCost = flatShippingCost
	} else {
		m.shippingCost = decimal.Zero
	}
	m.persist(c)
	logger.Info().
		Str(constants.KEY_SHIPPING_COST, m.shippingCost.String()).
		Msg("calculated shipping")
}

func (m *Manager) Items() []Item {
	items := make([]Item, len(m.items))
	copy(items, m.items)
	return items
}

func (m *Manager) Cep() string {
	return m.cep
}

func (m *Manager) ShippingCost() decimal.Decimal {
	return m.shippingCost
}

func (m *Manager) ItemCount() int32 {
	var count int32
	for _, item := range m.items {
		count += item.Quantity
	}
	return count
}

func (m *Manager) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range m.items {
		subtotal = subtotal.Add(item.Product.Price.Mul(decimal.NewFromInt32(item.Quantity)))
	}
	return subtotal
}

func (m *Manager) Total() decimal.Decimal {
	return m.Subtotal().Add(m.shippingCost)
}

func (m *Manager) IsInCart(productID uuid.UUID) bool {
	for _, item := range m.items {
		if item.Product.ID == productID {
			return true
		}
	}
	return false
}

func (m *Manager) Quantity(productID uuid.UUID) int32 {
	for _, item := range m.items {
		if item.Product.ID == productID {
			return item.Quantity
		}
	}
	return 0
}

func (m *Manager) String() string {
	return fmt.Sprintf("cart key=%s items=%d subtotal=%s", m.key, len(m.items), m.Subtotal())
}
