package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/obarros/lojinha/internal/store"
)

func newProduct(price string) store.Product {
	return store.Product{
		ID:    uuid.New(),
		Name:  "product",
		Price: decimal.RequireFromString(price),
	}
}

func TestAddToCartIncrementsExistingItem(t *testing.T) {
	c := context.Background()
	manager := NewManager(c, NewMemoryStorage(), "user")
	product := newProduct("10.00")

	manager.AddToCart(c, product)
	manager.AddToCart(c, product)

	assert.Len(t, manager.Items(), 1)
	assert.EqualValues(t, 2, manager.Quantity(product.ID))
	assert.EqualValues(t, 2, manager.ItemCount())
}

func TestSubtotalIsSumOfLineSubtotals(t *testing.T) {
	c := context.Background()
	manager := NewManager(c, NewMemoryStorage(), "user")
	first := newProduct("10.50")
	second := newProduct("5.25")

	manager.AddToCart(c, first)
	manager.AddToCart(c, first)
	manager.AddToCart(c, second)

	assert.True(t, manager.Subtotal().Equal(decimal.RequireFromString("26.25")))
	assert.True(t, manager.Total().Equal(decimal.RequireFromString("26.25")))
}

func TestUpdateQuantityIgnoresBelowOne(t *testing.T) {
	c := context.Background()
	manager := NewManager(c, NewMemoryStorage(), "user")
	product := newProduct("10.00")
	manager.AddToCart(c, product)
	manager.UpdateQuantity(c, product.ID, 5)

	manager.UpdateQuantity(c, product.ID, 0)
	assert.EqualValues(t, 5, manager.Quantity(product.ID))

	manager.UpdateQuantity(c, product.ID, -3)
	assert.EqualValues(t, 5, manager.Quantity(product.ID))
}

func TestDecrementStopsAtOne(t *testing.T) {
	c := context.Background()
	manager := NewManager(c, NewMemoryStorage(), "user")
	product := newProduct("10.00")
	manager.AddToCart(c, product)

	manager.DecrementQuantity(c, product.ID)

	assert.EqualValues(t, 1, manager.Quantity(product.ID))
	assert.True(t, manager.IsInCart(product.ID))
}

func TestRemoveItemRemovesWholeLine(t *testing.T) {
	c := context.Background()
	manager := NewManager(c, NewMemoryStorage(), "user")
	product := newProduct("10.00")
	manager.AddToCart(c, product)
	manager.AddToCart(c, product)

	manager.RemoveItem(c, product.ID)

	assert.False(t, manager.IsInCart(product.ID))
	assert.Empty(t, manager.Items())
}

func TestClearResetsCepAndShipping(t *testing.T) {
	c := context.Background()
	manager := NewManager(c, NewMemoryStorage(), "user")
	manager.AddToCart(c, newProduct("50.00"))
	manager.CalculateShipping(c, "01310-100")
	assert.True(t, manager.ShippingCost().Equal(decimal.RequireFromString("15.00")))

	manager.Clear(c)

	assert.Empty(t, manager.Items())
	assert.Empty(t, manager.Cep())
	assert.True(t, manager.ShippingCost().IsZero())
}

func TestCalculateShipping(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		cep      string
		expected string
	}{
		{name: "free above threshold", price: "100.00", cep: "123", expected: "0"},
		{name: "flat rate for valid cep", price: "50.00", cep: "01310-100", expected: "15.00"},
		{name: "zero for invalid cep", price: "50.00", cep: "123", expected: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := context.Background()
			manager := NewManager(c, NewMemoryStorage(), "user")
			manager.AddToCart(c, newProduct(tt.price))

			manager.CalculateShipping(c, tt.cep)

			assert.Equal(t, tt.cep, manager.Cep())
			assert.True(t, manager.ShippingCost().Equal(decimal.RequireFromString(tt.expected)))
			assert.True(
				t,
				manager.Total().Equal(manager.Subtotal().Add(manager.ShippingCost())),
			)
		})
	}
}

func TestCartSurvivesRestore(t *testing.T) {
	c := context.Background()
	storage := NewMemoryStorage()
	first := newProduct("10.00")
	second := newProduct("20.00")

	manager := NewManager(c, storage, "user")
	manager.AddToCart(c, first)
	manager.AddToCart(c, first)
	manager.AddToCart(c, second)

	restored := NewManager(c, storage, "user")

	assert.Len(t, restored.Items(), 2)
	assert.EqualValues(t, 2, restored.Quantity(first.ID))
	assert.True(t, restored.Subtotal().Equal(manager.Subtotal()))
}

func TestShippingSurvivesRestore(t *testing.T) {
	c := context.Background()
	storage := NewMemoryStorage()

	manager := NewManager(c, storage, "user")
	manager.AddToCart(c, newProduct("50.00"))
	manager.CalculateShipping(c, "01310-100")

	restored := NewManager(c, storage, "user")

	assert.Equal(t, "01310-100", restored.Cep())
	assert.True(t, restored.ShippingCost().Equal(decimal.RequireFromString("15.00")))
	assert.True(t, restored.Total().Equal(decimal.RequireFromString("65.00")))
}

func TestClearedShippingSurvivesRestore(t *testing.T) {
	c := context.Background()
	storage := NewMemoryStorage()

	manager := NewManager(c, storage, "user")
	manager.AddToCart(c, newProduct("50.00"))
	manager.CalculateShipping(c, "01310-100")
	manager.Clear(c)

	restored := NewManager(c, storage, "user")

	assert.Empty(t, restored.Items())
	assert.Empty(t, restored.Cep())
	assert.True(t, restored.ShippingCost().IsZero())
}

func TestCartsAreIsolatedByKey(t *testing.T) {
	c := context.Background()
	storage := NewMemoryStorage()

	first := NewManager(c, storage, "first")
	first.AddToCart(c, newProduct("10.00"))

	second := NewManager(c, storage, "second")

	assert.Empty(t, second.Items())
}

func TestCorruptSavedCartIsTreatedAsEmpty(t *testing.T) {
	c := context.Background()
	storage := NewMemoryStorage()
	err := storage.Save(c, "user", []byte("{not json"))
	assert.NoError(t, err)

	manager := NewManager(c, storage, "user")

	assert.Empty(t, manager.Items())
	assert.True(t, manager.Subtotal().IsZero())
}
