package checkout

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/obarros/lojinha/internal/cart"
	"github.com/obarros/lojinha/internal/constants"
	inErrors "github.com/obarros/lojinha/internal/errors"
	"github.com/obarros/lojinha/internal/order"
	"github.com/obarros/lojinha/internal/otel"
	"github.com/obarros/lojinha/internal/store"
)

type State int32

const (
	StateIdle State = iota
	StateValidating
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Flow turns a cart into a persisted order. Validation failures and
// duplicate submissions are caught before any remote call, so a cart
// that fails checkout is always left exactly as it was.
type Flow struct {
	store    store.Store
	history  *order.History
	state    atomic.Int32
	inFlight atomic.Bool
}

func NewFlow(store store.Store, history *order.History) *Flow {
	return &Flow{store: store, history: history}
}

func (f *Flow) State() State {
	return State(f.state.Load())
}

func (f *Flow) setState(s State) {
	f.state.Store(int32(s))
}

// Submit places the order for the given cart. Exactly one submission
// runs at a time; a second call while one is in flight is rejected
// without touching the backend. On success the order history is
// reloaded and the cart cleared; on failure the cart is untouched.
func (f *Flow) Submit(
	c context.Context,
	userID uuid.UUID,
	manager *cart.Manager,
) (store.Order, error) {
	c, span := otel.Tracer.Start(c, "CheckoutFlow Submit")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "CheckoutFlow Submit").
		Str(constants.KEY_USER_ID, userID.String()).
		Logger()

	if !f.inFlight.CompareAndSwap(false, true) {
		err := fmt.Errorf("failed submitting checkout with error=%w", inErrors.ErrCheckoutInFlight)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return store.Order{}, err
	}
	defer f.inFlight.Store(false)

	logger = logger.With().Str(constants.KEY_PROCESS, "validating cart").Logger()
	logger.Info().Msg("validating cart")
	f.setState(StateValidating)
	if len(manager.Items()) == 0 {
		f.setState(StateFailed)
		err := fmt.Errorf("failed validating cart with error=%w", inErrors.ErrCartEmpty)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		f.setState(StateIdle)
		return store.Order{}, err
	}
	if manager.Cep() == "" {
		f.setState(StateFailed)
		err := fmt.Errorf("failed validating cart with error=%w", inErrors.ErrCepRequired)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		f.setState(StateIdle)
		return store.Order{}, err
	}
	logger.Info().Msg("validated cart")

	logger = logger.With().Str(constants.KEY_PROCESS, "submitting order").Logger()
	logger.Info().Msg("submitting order")
	f.setState(StateSubmitting)
	placed, err := f.store.CreateOrder(c, orderFromCart(userID, manager))
	if err != nil {
		f.setState(StateFailed)
		err = fmt.Errorf("failed submitting order with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		f.setState(StateIdle)
		return store.Order{}, err
	}
	f.setState(StateSucceeded)
	logger = logger.With().Str(constants.KEY_ORDER_ID, placed.ID.String()).Logger()
	logger.Info().Msg("submitted order")

	logger = logger.With().Str(constants.KEY_PROCESS, "reloading order history").Logger()
	logger.Info().Msg("reloading order history")
	if err := f.history.Reload(c, userID); err != nil {
		// The order is already placed; a stale history list is not a
		// checkout failure.
		err = fmt.Errorf("failed reloading order history with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
	} else {
		logger.Info().Msg("reloaded order history")
	}

	logger = logger.With().Str(constants.KEY_PROCESS, "clearing cart").Logger()
	logger.Info().Msg("clearing cart")
	manager.Clear(c)
	logger.Info().Msg("cleared cart")

	f.setState(StateIdle)
	return placed, nil
}

func orderFromCart(userID uuid.UUID, manager *cart.Manager) store.CreateOrder {
	items := manager.Items()
	lines := make([]store.CreateOrderItem, len(items))
	for i, item := range items {
		lines[i] = store.CreateOrderItem{
			ProductID:    item.Product.ID,
			ProductName:  item.Product.Name,
			ProductPrice: item.Product.Price,
			Quantity:     item.Quantity,
			Subtotal:     item.Product.Price.Mul(decimal.NewFromInt32(item.Quantity)),
		}
	}
	return store.CreateOrder{
		UserID:       userID,
		Cep:          manager.Cep(),
		Subtotal:     manager.Subtotal(),
		ShippingCost: manager.ShippingCost(),
		Total:        manager.Total(),
		Items:        lines,
	}
}
