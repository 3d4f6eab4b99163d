package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/obarros/lojinha/internal/cart"
	inErrors "github.com/obarros/lojinha/internal/errors"
	"github.com/obarros/lojinha/internal/order"
	"github.com/obarros/lojinha/internal/store"
)

type fakeStore struct {
	mu               sync.Mutex
	createOrderCalls int
	listOrdersCalls  int
	createOrderErr   error
	lastCreate       store.CreateOrder
	blockCreate      chan struct{}
	createStarted    chan struct{}
}

func (f *fakeStore) ListProducts(c context.Context) ([]store.Product, error) {
	return nil, nil
}

func (f *fakeStore) InsertProduct(c context.Context, p store.Product) (store.Product, error) {
	return p, nil
}

func (f *fakeStore) UpdateProduct(c context.Context, p store.Product) (store.Product, error) {
	return p, nil
}

func (f *fakeStore) DeleteProduct(c context.Context, id uuid.UUID) error {
	return nil
}

func (f *fakeStore) ListOrders(c context.Context, userID uuid.UUID) ([]store.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listOrdersCalls++
	return []store.Order{}, nil
}

func (f *fakeStore) FindOrderById(
	c context.Context,
	userID uuid.UUID,
	orderID uuid.UUID,
) (store.Order, error) {
	return store.Order{}, inErrors.ErrOrderNotFound
}

func (f *fakeStore) CreateOrder(c context.Context, param store.CreateOrder) (store.Order, error) {
	if f.createStarted != nil {
		select {
		case f.createStarted <- struct{}{}:
		default:
		}
	}
	if f.blockCreate != nil {
		<-f.blockCreate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createOrderCalls++
	f.lastCreate = param
	if f.createOrderErr != nil {
		return store.Order{}, f.createOrderErr
	}
	return store.Order{
		ID:           uuid.New(),
		UserID:       param.UserID,
		Cep:          param.Cep,
		Subtotal:     param.Subtotal,
		ShippingCost: param.ShippingCost,
		Total:        param.Total,
		Status:       store.StatusConfirmed,
	}, nil
}

func (f *fakeStore) UpdateOrderStatus(
	c context.Context,
	userID uuid.UUID,
	orderID uuid.UUID,
	status store.OrderStatus,
) error {
	return nil
}

func (f *fakeStore) DeleteOrder(c context.Context, userID uuid.UUID, orderID uuid.UUID) error {
	return nil
}

func newCart(c context.Context, price string, cep string) *cart.Manager {
	manager := cart.NewManager(c, cart.NewMemoryStorage(), "user")
	manager.AddToCart(c, store.Product{
		ID:    uuid.New(),
		Name:  "product",
		Price: decimal.RequireFromString(price),
	})
	if cep != "" {
		manager.CalculateShipping(c, cep)
	}
	return manager
}

func TestSubmitRejectsEmptyCartWithoutRemoteCall(t *testing.T) {
	c := context.Background()
	backend := &fakeStore{}
	flow := NewFlow(backend, order.NewHistory(backend))
	manager := cart.NewManager(c, cart.NewMemoryStorage(), "user")

	_, err := flow.Submit(c, uuid.New(), manager)

	assert.ErrorIs(t, err, inErrors.ErrCartEmpty)
	assert.Zero(t, backend.createOrderCalls)
	assert.Zero(t, backend.listOrdersCalls)
}

func TestSubmitRejectsMissingCepWithoutRemoteCall(t *testing.T) {
	c := context.Background()
	backend := &fakeStore{}
	flow := NewFlow(backend, order.NewHistory(backend))
	manager := newCart(c, "50.00", "")

	_, err := flow.Submit(c, uuid.New(), manager)

	assert.ErrorIs(t, err, inErrors.ErrCepRequired)
	assert.Zero(t, backend.createOrderCalls)
	assert.Len(t, manager.Items(), 1)
}

func TestSubmitBuildsOrderFromCart(t *testing.T) {
	c := context.Background()
	backend := &fakeStore{}
	flow := NewFlow(backend, order.NewHistory(backend))
	manager := newCart(c, "50.00", "01310-100")
	userId := uuid.New()

	placed, err := flow.Submit(c, userId, manager)

	assert.NoError(t, err)
	assert.Equal(t, 1, backend.createOrderCalls)
	assert.Equal(t, userId, backend.lastCreate.UserID)
	assert.Equal(t, "01310-100", backend.lastCreate.Cep)
	assert.True(t, backend.lastCreate.Subtotal.Equal(decimal.RequireFromString("50.00")))
	assert.True(t, backend.lastCreate.ShippingCost.Equal(decimal.RequireFromString("15.00")))
	assert.True(t, backend.lastCreate.Total.Equal(decimal.RequireFromString("65.00")))
	assert.Len(t, backend.lastCreate.Items, 1)
	assert.True(
		t,
		backend.lastCreate.Items[0].Subtotal.Equal(decimal.RequireFromString("50.00")),
	)
	assert.Equal(t, store.StatusConfirmed, placed.Status)

	assert.Empty(t, manager.Items())
	assert.Empty(t, manager.Cep())
	assert.Equal(t, StateIdle, flow.State())
}

func TestSubmitUsesCartRestoredFromStorage(t *testing.T) {
	c := context.Background()
	backend := &fakeStore{}
	flow := NewFlow(backend, order.NewHistory(backend))
	storage := cart.NewMemoryStorage()
	userId := uuid.New()

	first := cart.NewManager(c, storage, userId.String())
	first.AddToCart(c, store.Product{
		ID:    uuid.New(),
		Name:  "product",
		Price: decimal.RequireFromString("50.00"),
	})
	first.CalculateShipping(c, "01310-100")

	// A separate manager over the same storage, the way each request
	// rebuilds the cart from the session store.
	rebuilt := cart.NewManager(c, storage, userId.String())
	placed, err := flow.Submit(c, userId, rebuilt)

	assert.NoError(t, err)
	assert.Equal(t, 1, backend.createOrderCalls)
	assert.Equal(t, "01310-100", backend.lastCreate.Cep)
	assert.True(t, backend.lastCreate.ShippingCost.Equal(decimal.RequireFromString("15.00")))
	assert.True(t, backend.lastCreate.Total.Equal(decimal.RequireFromString("65.00")))
	assert.Equal(t, store.StatusConfirmed, placed.Status)

	afterCheckout := cart.NewManager(c, storage, userId.String())
	assert.Empty(t, afterCheckout.Items())
	assert.Empty(t, afterCheckout.Cep())
}

func TestSubmitFailureLeavesCartUntouched(t *testing.T) {
	c := context.Background()
	backend := &fakeStore{createOrderErr: errors.New("backend unavailable")}
	flow := NewFlow(backend, order.NewHistory(backend))
	manager := newCart(c, "50.00", "01310-100")

	_, err := flow.Submit(c, uuid.New(), manager)

	assert.Error(t, err)
	assert.Len(t, manager.Items(), 1)
	assert.Equal(t, "01310-100", manager.Cep())
	assert.Zero(t, backend.listOrdersCalls)
}

func TestSubmitRejectsConcurrentSubmission(t *testing.T) {
	c := context.Background()
	backend := &fakeStore{
		blockCreate:   make(chan struct{}),
		createStarted: make(chan struct{}, 1),
	}
	flow := NewFlow(backend, order.NewHistory(backend))
	first := newCart(c, "50.00", "01310-100")
	second := newCart(c, "30.00", "01310-100")

	firstDone := make(chan error, 1)
	go func() {
		_, err := flow.Submit(c, uuid.New(), first)
		firstDone <- err
	}()
	<-backend.createStarted

	_, duplicateErr := flow.Submit(c, uuid.New(), second)
	assert.ErrorIs(t, duplicateErr, inErrors.ErrCheckoutInFlight)

	close(backend.blockCreate)
	assert.NoError(t, <-firstDone)
	assert.Equal(t, 1, backend.createOrderCalls)
	assert.Len(t, second.Items(), 1)
}
