package order

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	inErrors "github.com/obarros/lojinha/internal/errors"
	"github.com/obarros/lojinha/internal/store"
)

type fakeStore struct {
	store.Store

	orders     []store.Order
	listCalls  int
	statusSets map[uuid.UUID]store.OrderStatus
}

func (f *fakeStore) ListOrders(c context.Context, userID uuid.UUID) ([]store.Order, error) {
	f.listCalls++
	orders := []store.Order{}
	for _, o := range f.orders {
		if o.UserID == userID {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

func (f *fakeStore) FindOrderById(
	c context.Context,
	userID uuid.UUID,
	orderID uuid.UUID,
) (store.Order, error) {
	for _, o := range f.orders {
		if o.ID == orderID && o.UserID == userID {
			return o, nil
		}
	}
	return store.Order{}, inErrors.ErrOrderNotFound
}

func (f *fakeStore) UpdateOrderStatus(
	c context.Context,
	userID uuid.UUID,
	orderID uuid.UUID,
	status store.OrderStatus,
) error {
	if f.statusSets == nil {
		f.statusSets = map[uuid.UUID]store.OrderStatus{}
	}
	updated := false
	for i := range f.orders {
		if f.orders[i].ID == orderID && f.orders[i].UserID == userID {
			f.orders[i].Status = status
			updated = true
		}
	}
	if !updated {
		return inErrors.ErrOrderNotFound
	}
	f.statusSets[orderID] = status
	return nil
}

func (f *fakeStore) DeleteOrder(c context.Context, userID uuid.UUID, orderID uuid.UUID) error {
	kept := f.orders[:0]
	deleted := false
	for _, o := range f.orders {
		if o.ID == orderID && o.UserID == userID {
			deleted = true
			continue
		}
		kept = append(kept, o)
	}
	f.orders = kept
	if !deleted {
		return inErrors.ErrOrderNotFound
	}
	return nil
}

func TestHistoryReloadScopesToUser(t *testing.T) {
	c := context.Background()
	userId := uuid.New()
	backend := &fakeStore{orders: []store.Order{
		{ID: uuid.New(), UserID: userId},
		{ID: uuid.New(), UserID: uuid.New()},
	}}
	history := NewHistory(backend)

	assert.NoError(t, history.Reload(c, userId))
	assert.Len(t, history.Orders(userId), 1)
}

func TestHistorySnapshotsAreIsolatedByUser(t *testing.T) {
	c := context.Background()
	alice, bob := uuid.New(), uuid.New()
	aliceOrder := store.Order{ID: uuid.New(), UserID: alice}
	backend := &fakeStore{orders: []store.Order{aliceOrder}}
	history := NewHistory(backend)
	assert.NoError(t, history.Reload(c, alice))

	assert.Empty(t, history.Orders(bob))

	_, err := history.FindById(c, bob, aliceOrder.ID)
	assert.ErrorIs(t, err, inErrors.ErrOrderNotFound)

	assert.NoError(t, history.Reload(c, bob))
	assert.Len(t, history.Orders(alice), 1)
	assert.Empty(t, history.Orders(bob))
}

func TestHistoryFindByIdPrefersSnapshot(t *testing.T) {
	c := context.Background()
	userId := uuid.New()
	order := store.Order{ID: uuid.New(), UserID: userId, Status: store.StatusConfirmed}
	backend := &fakeStore{orders: []store.Order{order}}
	history := NewHistory(backend)
	assert.NoError(t, history.Reload(c, userId))

	found, err := history.FindById(c, userId, order.ID)
	assert.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)

	_, err = history.FindById(c, userId, uuid.New())
	assert.ErrorIs(t, err, inErrors.ErrOrderNotFound)
}

func TestHistoryUpdateStatusWritesThroughAndReloads(t *testing.T) {
	c := context.Background()
	userId := uuid.New()
	order := store.Order{ID: uuid.New(), UserID: userId, Status: store.StatusConfirmed}
	backend := &fakeStore{orders: []store.Order{order}}
	history := NewHistory(backend)
	assert.NoError(t, history.Reload(c, userId))

	assert.NoError(t, history.UpdateStatus(c, userId, order.ID, store.StatusShipped))

	assert.Equal(t, store.StatusShipped, backend.statusSets[order.ID])
	assert.Equal(t, store.StatusShipped, history.Orders(userId)[0].Status)
}

func TestHistoryRejectsMutatingAnotherUsersOrder(t *testing.T) {
	c := context.Background()
	alice, bob := uuid.New(), uuid.New()
	order := store.Order{ID: uuid.New(), UserID: alice, Status: store.StatusConfirmed}
	backend := &fakeStore{orders: []store.Order{order}}
	history := NewHistory(backend)
	assert.NoError(t, history.Reload(c, alice))

	err := history.UpdateStatus(c, bob, order.ID, store.StatusCancelled)
	assert.ErrorIs(t, err, inErrors.ErrOrderNotFound)

	err = history.Delete(c, bob, order.ID)
	assert.ErrorIs(t, err, inErrors.ErrOrderNotFound)

	assert.Equal(t, store.StatusConfirmed, history.Orders(alice)[0].Status)
}

func TestHistoryDeleteWritesThroughAndReloads(t *testing.T) {
	c := context.Background()
	userId := uuid.New()
	order := store.Order{ID: uuid.New(), UserID: userId}
	backend := &fakeStore{orders: []store.Order{order}}
	history := NewHistory(backend)
	assert.NoError(t, history.Reload(c, userId))

	assert.NoError(t, history.Delete(c, userId, order.ID))
	assert.Empty(t, history.Orders(userId))
}
