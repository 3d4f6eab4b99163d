package supabase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/obarros/lojinha/internal/constants"
	"github.com/obarros/lojinha/internal/otel"
	"github.com/obarros/lojinha/internal/store"
)

const orderWithItems = "*,items:order_items(*)"

func (cl *Client) ListOrders(c context.Context, userID uuid.UUID) ([]store.Order, error) {
	c, span := otel.Tracer.Start(c, "SupabaseStore ListOrders")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "SupabaseStore ListOrders").
		Str(constants.KEY_USER_ID, userID.String()).
		Str(constants.KEY_PROCESS, "listing orders").
		Logger()

	logger.Info().Msg("listing orders")
	orders := []store.Order{}
	err := cl.do(c, request{
		method: http.MethodGet,
		table:  "orders",
		query: url.Values{
			"select":  {orderWithItems},
			"user_id": {eq(userID)},
			"order":   {"created_at.desc"},
		},
	}, &orders)
	if err != nil {
		err = fmt.Errorf("failed listing orders with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msgf("listed %d orders", len(orders))

	return orders, nil
}

func (cl *Client) FindOrderById(
	c context.Context,
	userID uuid.UUID,
	orderID uuid.UUID,
) (store.Order, error) {
	c, span := otel.Tracer.Start(c, "SupabaseStore FindOrderById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "SupabaseStore FindOrderById").
		Str(constants.KEY_USER_ID, userID.String()).
		Str(constants.KEY_ORDER_ID, orderID.String()).
		Str(constants.KEY_PROCESS, "finding order by id").
		Logger()

	logger.Info().Msg("finding order by id")
	order := store.Order{}
	err := cl.do(c, request{
		method: http.MethodGet,
		table:  "orders",
		query: url.Values{
			"select":  {orderWithItems},
			"id":      {eq(orderID)},
			"user_id": {eq(userID)},
		},
		single: true,
	}, &order)
	if err != nil {
		err = fmt.Errorf("failed finding order by id with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return store.Order{}, err
	}
	logger.Info().Msg("found order by id")

	return order, nil
}

func (cl *Client) CreateOrder(c context.Context, param store.CreateOrder) (store.Order, error) {
	c, span := otel.Tracer.Start(c, "SupabaseStore CreateOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "SupabaseStore CreateOrder").
		Str(constants.KEY_USER_ID, param.UserID.String()).
		Int(constants.KEY_ORDER_ITEMS, len(param.Items)).
		Logger()

	logger = logger.With().Str(constants.KEY_PROCESS, "inserting order").Logger()
	logger.Info().Msg("inserting order")
	header := store.Order{}
	err := cl.do(c, request{
		method: http.MethodPost,
		table:  "orders",
		prefer: preferRepresentation,
		single: true,
		body: map[string]interface{}{
			"user_id":       param.UserID,
			"cep":           param.Cep,
			"subtotal":      param.Subtotal,
			"shipping_cost": param.ShippingCost,
			"total":         param.Total,
			"status":        store.StatusConfirmed,
		},
	}, &header)
	if err != nil {
		err = fmt.Errorf("failed inserting order with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return store.Order{}, err
	}
	logger = logger.With().Str(constants.KEY_ORDER_ID, header.ID.String()).Logger()
	logger.Info().Msg("inserted order")

	logger = logger.With().Str(constants.KEY_PROCESS, "inserting order items").Logger()
	logger.Info().Msg("inserting order items")
	items := make([]map[string]interface{}, len(param.Items))
	for i, item := range param.Items {
		items[i] = map[string]interface{}{
			"order_id":      header.ID,
			"product_id":    item.ProductID,
			"product_name":  item.ProductName,
			"product_price": item.ProductPrice,
			"quantity":      item.Quantity,
			"subtotal":      item.Subtotal,
		}
	}
	err = cl.do(c, request{
		method: http.MethodPost,
		table:  "order_items",
		body:   items,
	}, nil)
	if err != nil {
		err = fmt.Errorf("failed inserting order items with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())

		// The data API has no transaction across the two inserts, so
		// delete the header rather than strand an order with no lines.
		logger = logger.With().Str(constants.KEY_PROCESS, "removing orphaned order").Logger()
		logger.Info().Msg("removing orphaned order")
		cleanupErr := cl.do(c, request{
			method: http.MethodDelete,
			table:  "orders",
			query:  url.Values{"id": {eq(header.ID)}},
		}, nil)
		if cleanupErr != nil {
			cleanupErr = fmt.Errorf("failed removing orphaned order with error=%w", cleanupErr)
			otel.RecordError(cleanupErr, span)
			logger.Error().Err(cleanupErr).Msg(cleanupErr.Error())
			return store.Order{}, errors.Join(err, cleanupErr)
		}
		logger.Info().Msg("removed orphaned order")
		return store.Order{}, err
	}
	logger.Info().Msg("inserted order items")

	logger = logger.With().Str(constants.KEY_PROCESS, "getting inserted order").Logger()
	logger.Info().Msg("getting inserted order")
	order, err := cl.FindOrderById(c, param.UserID, header.ID)
	if err != nil {
		err = fmt.Errorf("failed getting inserted order with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return store.Order{}, err
	}
	logger.Info().Msg("got inserted order")

	return order, nil
}

func (cl *Client) UpdateOrderStatus(
	c context.Context,
	userID uuid.UUID,
	orderID uuid.UUID,
	status store.OrderStatus,
) error {
	c, span := otel.Tracer.Start(c, "SupabaseStore UpdateOrderStatus")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "SupabaseStore UpdateOrderStatus").
		Str(constants.KEY_USER_ID, userID.String()).
		Str(constants.KEY_ORDER_ID, orderID.String()).
		Str(constants.KEY_ORDER_STATUS, string(status)).
		Str(constants.KEY_PROCESS, "updating order status").
		Logger()

	logger.Info().Msg("updating order status")
	err := cl.do(c, request{
		method: http.MethodPatch,
		table:  "orders",
		query: url.Values{
			"id":      {eq(orderID)},
			"user_id": {eq(userID)},
		},
		body: map[string]interface{}{"status": status},
	}, nil)
	if err != nil {
		err = fmt.Errorf("failed updating order status with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("updated order status")

	return nil
}

func (cl *Client) DeleteOrder(c context.Context, userID uuid.UUID, orderID uuid.UUID) error {
	c, span := otel.Tracer.Start(c, "SupabaseStore DeleteOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "SupabaseStore DeleteOrder").
		Str(constants.KEY_USER_ID, userID.String()).
		Str(constants.KEY_ORDER_ID, orderID.String()).
		Str(constants.KEY_PROCESS, "deleting order").
		Logger()

	logger.Info().Msg("deleting order")
	err := cl.do(c, request{
		method: http.MethodDelete,
		table:  "orders",
		query: url.Values{
			"id":      {eq(orderID)},
			"user_id": {eq(userID)},
		},
	}, nil)
	if err != nil {
		err = fmt.Errorf("failed deleting order with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("deleted order")

	return nil
}
