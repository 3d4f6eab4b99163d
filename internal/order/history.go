package order

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/obarros/lojinha/internal/constants"
	"github.com/obarros/lojinha/internal/otel"
	"github.com/obarros/lojinha/internal/store"
)

// History holds the most recently loaded order list per user, newest
// first. The instance is shared across requests, so snapshots are
// keyed by user id; one user's reload never leaks into another user's
// reads. Status changes and deletions write through the store and
// reload.
type History struct {
	store store.Store

	mu     sync.RWMutex
	orders map[uuid.UUID][]store.Order
}

func NewHistory(s store.Store) *History {
	return &History{store: s, orders: map[uuid.UUID][]store.Order{}}
}

func (h *History) Reload(c context.Context, userID uuid.UUID) error {
	c, span := otel.Tracer.Start(c, "OrderHistory Reload")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "OrderHistory Reload").
		Str(constants.KEY_USER_ID, userID.String()).
		Str(constants.KEY_PROCESS, "reloading orders").
		Logger()

	logger.Info().Msg("reloading orders")
	orders, err := h.store.ListOrders(c, userID)
	if err != nil {
		err = fmt.Errorf("failed reloading orders with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	h.mu.Lock()
	h.orders[userID] = orders
	h.mu.Unlock()
	logger.Info().Msgf("reloaded %d orders", len(orders))

	return nil
}

func (h *History) Orders(userID uuid.UUID) []store.Order {
	h.mu.RLock()
	defer h.mu.RUnlock()
	orders := make([]store.Order, len(h.orders[userID]))
	copy(orders, h.orders[userID])
	return orders
}

func (h *History) FindById(
	c context.Context,
	userID uuid.UUID,
	orderID uuid.UUID,
) (store.Order, error) {
	h.mu.RLock()
	for _, order := range h.orders[userID] {
		if order.ID == orderID && order.UserID == userID {
			h.mu.RUnlock()
			return order, nil
		}
	}
	h.mu.RUnlock()
	return h.store.FindOrderById(c, userID, orderID)
}

func (h *History) UpdateStatus(
	c context.Context,
	userID uuid.UUID,
	orderID uuid.UUID,
	status store.OrderStatus,
) error {
	c, span := otel.Tracer.Start(c, "OrderHistory UpdateStatus")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "OrderHistory UpdateStatus").
		Str(constants.KEY_USER_ID, userID.String()).
		Str(constants.KEY_ORDER_ID, orderID.String()).
		Str(constants.KEY_ORDER_STATUS, string(status)).
		Str(constants.KEY_PROCESS, "updating order status").
		Logger()

	logger.Info().Msg("updating order status")
	if err := h.store.UpdateOrderStatus(c, userID, orderID, status); err != nil {
		err = fmt.Errorf("failed updating order status with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("updated order status")

	return h.Reload(c, userID)
}

func (h *History) Delete(c context.Context, userID uuid.UUID, orderID uuid.UUID) error {
	c, span := otel.Tracer.Start(c, "OrderHistory Delete")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "OrderHistory Delete").
		Str(constants.KEY_USER_ID, userID.String()).
		Str(constants.KEY_ORDER_ID, orderID.String()).
		Str(constants.KEY_PROCESS, "deleting order").
		Logger()

	logger.Info().Msg("deleting order")
	if err := h.store.DeleteOrder(c, userID, orderID); err != nil {
		err = fmt.Errorf("failed deleting order with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("deleted order")

	return h.Reload(c, userID)
}
