package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/obarros/lojinha/internal/constants"
	inErrors "github.com/obarros/lojinha/internal/errors"
	"github.com/obarros/lojinha/internal/otel"
	"github.com/obarros/lojinha/internal/store"
)

// Store is the SQL accessor used when the service talks to its own
// database instead of the hosted data API. The two order inserts run
// in one transaction here.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const queryListProducts = `
select id, name, description, price, image_url, created_at, updated_at
from products
order by created_at desc
`

func (s *Store) ListProducts(c context.Context) ([]store.Product, error) {
	c, span := otel.Tracer.Start(c, "PostgresStore ListProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "PostgresStore ListProducts").
		Str(constants.KEY_PROCESS, "listing products").
		Logger()

	logger.Info().Msg("listing products")
	rows, err := s.pool.Query(c, queryListProducts)
	if err != nil {
		err = fmt.Errorf("failed listing products with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	defer rows.Close()

	products := []store.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			err = fmt.Errorf("failed scanning product with error=%w", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return nil, err
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		err = fmt.Errorf("failed listing products with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msgf("listed %d products", len(products))

	return products, nil
}

const queryInsertProduct = `
insert into products (name, description, price, image_url)
values ($1, $2, $3, $4)
returning id, name, description, price, image_url, created_at, updated_at
`

func (s *Store) InsertProduct(c context.Context, product store.Product) (store.Product, error) {
	c, span := otel.Tracer.Start(c, "PostgresStore InsertProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "PostgresStore InsertProduct").
		Str(constants.KEY_PROCESS, "inserting product").
		Logger()

	logger.Info().Msg("inserting product")
	row := s.pool.QueryRow(c, queryInsertProduct,
		product.Name,
		product.Description,
		decimalToNumeric(product.Price),
		product.ImageUrl,
	)
	inserted, err := scanProduct(row)
	if err != nil {
		err = fmt.Errorf("failed inserting product with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return store.Product{}, err
	}
	logger = logger.With().Str(constants.KEY_PRODUCT_ID, inserted.ID.String()).Logger()
	logger.Info().Msg("inserted product")

	return inserted, nil
}

const queryUpdateProduct = `
update products
set name = $2, description = $3, price = $4, image_url = $5, updated_at = now()
where id = $1
returning id, name, description, price, image_url, created_at, updated_at
`

func (s *Store) UpdateProduct(c context.Context, product store.Product) (store.Product, error) {
	c, span := otel.Tracer.Start(c, "PostgresStore UpdateProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "PostgresStore UpdateProduct").
		Str(constants.KEY_PRODUCT_ID, product.ID.String()).
		Str(constants.KEY_PROCESS, "updating product").
		Logger()

	logger.Info().Msg("updating product")
	row := s.pool.QueryRow(c, queryUpdateProduct,
		product.ID,
		product.Name,
		product.Description,
		decimalToNumeric(product.Price),
		product.ImageUrl,
	)
	updated, err := scanProduct(row)
	if err != nil {
		err = fmt.Errorf("failed updating product with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return store.Product{}, err
	}
	logger.Info().Msg("updated product")

	return updated, nil
}

func (s *Store) DeleteProduct(c context.Context, id uuid.UUID) error {
	c, span := otel.Tracer.Start(c, "PostgresStore DeleteProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "PostgresStore DeleteProduct").
		Str(constants.KEY_PRODUCT_ID, id.String()).
		Str(constants.KEY_PROCESS, "deleting product").
		Logger()

	logger.Info().Msg("deleting product")
	_, err := s.pool.Exec(c, "delete from products where id = $1", id)
	if err != nil {
		err = fmt.Errorf("failed deleting product with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("deleted product")

	return nil
}

const queryListOrders = `
select id, user_id, cep, subtotal, shipping_cost, total, status, created_at, updated_at
from orders
where user_id = $1
order by created_at desc
`

func (s *Store) ListOrders(c context.Context, userID uuid.UUID) ([]store.Order, error) {
	c, span := otel.Tracer.Start(c, "PostgresStore ListOrders")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "PostgresStore ListOrders").
		Str(constants.KEY_USER_ID, userID.String()).
		Str(constants.KEY_PROCESS, "listing orders").
		Logger()

	logger.Info().Msg("listing orders")
	rows, err := s.pool.Query(c, queryListOrders, userID)
	if err != nil {
		err = fmt.Errorf("failed listing orders with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	defer rows.Close()

	orders := []store.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			err = fmt.Errorf("failed scanning order with error=%w", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		err = fmt.Errorf("failed listing orders with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	rows.Close()

	for i := range orders {
		items, err := s.findOrderItems(c, orders[i].ID)
		if err != nil {
			err = fmt.Errorf("failed listing order items with error=%w", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return nil, err
		}
		orders[i].Items = items
	}
	logger.Info().Msgf("listed %d orders", len(orders))

	return orders, nil
}

const queryFindOrderById = `
select id, user_id, cep, subtotal, shipping_cost, total, status, created_at, updated_at
from orders
where id = $1 and user_id = $2
`

func (s *Store) FindOrderById(
	c context.Context,
	userID uuid.UUID,
	orderID uuid.UUID,
) (store.Order, error) {
	c, span := otel.Tracer.Start(c, "PostgresStore FindOrderById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "PostgresStore FindOrderById").
		Str(constants.KEY_USER_ID, userID.String()).
		Str(constants.KEY_ORDER_ID, orderID.String()).
		Str(constants.KEY_PROCESS, "finding order by id").
		Logger()

	logger.Info().Msg("finding order by id")
	order, err := scanOrder(s.pool.QueryRow(c, queryFindOrderById, orderID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		err = fmt.Errorf("failed finding order by id with error=%w", inErrors.ErrOrderNotFound)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return store.Order{}, err
	}
	if err != nil {
		err = fmt.Errorf("failed finding order by id with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return store.Order{}, err
	}

	order.Items, err = s.findOrderItems(c, order.ID)
	if err != nil {
		err = fmt.Errorf("failed listing order items with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return store.Order{}, err
	}
	logger.Info().Msg("found order by id")

	return order, nil
}

const queryInsertOrder = `
insert into orders (user_id, cep, subtotal, shipping_cost, total, status)
values ($1, $2, $3, $4, $5, $6)
returning id, user_id, cep, subtotal, shipping_cost, total, status, created_at, updated_at
`

const queryInsertOrderItem = `
insert into order_items (order_id, product_id, product_name, product_price, quantity, subtotal)
values ($1, $2, $3, $4, $5, $6)
`

func (s *Store) CreateOrder(c context.Context, param store.CreateOrder) (store.Order, error) {
	c, span := otel.Tracer.Start(c, "PostgresStore CreateOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "PostgresStore CreateOrder").
		Str(constants.KEY_USER_ID, param.UserID.String()).
		Int(constants.KEY_ORDER_ITEMS, len(param.Items)).
		Logger()

	logger = logger.With().Str(constants.KEY_PROCESS, "beginning transaction").Logger()
	logger.Info().Msg("beginning transaction")
	tx, err := s.pool.Begin(c)
	if err != nil {
		err = fmt.Errorf("failed beginning transaction with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return store.Order{}, err
	}
	defer func() {
		if err := tx.Rollback(c); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			err = fmt.Errorf("failed rolling back transaction with error=%w", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
		}
	}()
	logger.Info().Msg("began transaction")

	logger = logger.With().Str(constants.KEY_PROCESS, "inserting order").Logger()
	logger.Info().Msg("inserting order")
	order, err := scanOrder(tx.QueryRow(c, queryInsertOrder,
		param.UserID,
		param.Cep,
		decimalToNumeric(param.Subtotal),
		decimalToNumeric(param.ShippingCost),
		decimalToNumeric(param.Total),
		store.StatusConfirmed,
	))
	if err != nil {
		err = fmt.Errorf("failed inserting order with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return store.Order{}, err
	}
	logger = logger.With().Str(constants.KEY_ORDER_ID, order.ID.String()).Logger()
	logger.Info().Msg("inserted order")

	logger = logger.With().Str(constants.KEY_PROCESS, "inserting order items").Logger()
	logger.Info().Msg("inserting order items")
	for _, item := range param.Items {
		_, err = tx.Exec(c, queryInsertOrderItem,
			order.ID,
			item.ProductID,
			item.ProductName,
			decimalToNumeric(item.ProductPrice),
			item.Quantity,
			decimalToNumeric(item.Subtotal),
		)
		if err != nil {
			err = fmt.Errorf("failed inserting order items with error=%w", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return store.Order{}, err
		}
	}
	logger.Info().Msg("inserted order items")

	logger = logger.With().Str(constants.KEY_PROCESS, "committing transaction").Logger()
	logger.Info().Msg("committing transaction")
	if err = tx.Commit(c); err != nil {
		err = fmt.Errorf("failed committing transaction with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return store.Order{}, err
	}
	logger.Info().Msg("committed transaction")

	return s.FindOrderById(c, param.UserID, order.ID)
}

const queryUpdateOrderStatus = `
update orders
set status = $3, updated_at = now()
where id = $1 and user_id = $2
`

func (s *Store) UpdateOrderStatus(
	c context.Context,
	userID uuid.UUID,
	orderID uuid.UUID,
	status store.OrderStatus,
) error {
	c, span := otel.Tracer.Start(c, "PostgresStore UpdateOrderStatus")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "PostgresStore UpdateOrderStatus").
		Str(constants.KEY_USER_ID, userID.String()).
		Str(constants.KEY_ORDER_ID, orderID.String()).
		Str(constants.KEY_ORDER_STATUS, string(status)).
		Str(constants.KEY_PROCESS, "updating order status").
		Logger()

	logger.Info().Msg("updating order status")
	tag, err := s.pool.Exec(c, queryUpdateOrderStatus, orderID, userID, status)
	if err != nil {
		err = fmt.Errorf("failed updating order status with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	if tag.RowsAffected() == 0 {
		err = fmt.Errorf("failed updating order status with error=%w", inErrors.ErrOrderNotFound)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("updated order status")

	return nil
}

func (s *Store) DeleteOrder(c context.Context, userID uuid.UUID, orderID uuid.UUID) error {
	c, span := otel.Tracer.Start(c, "PostgresStore DeleteOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "PostgresStore DeleteOrder").
		Str(constants.KEY_USER_ID, userID.String()).
		Str(constants.KEY_ORDER_ID, orderID.String()).
		Str(constants.KEY_PROCESS, "deleting order").
		Logger()

	logger.Info().Msg("deleting order")
	tag, err := s.pool.Exec(c, "delete from orders where id = $1 and user_id = $2", orderID, userID)
	if err != nil {
		err = fmt.Errorf("failed deleting order with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	if tag.RowsAffected() == 0 {
		err = fmt.Errorf("failed deleting order with error=%w", inErrors.ErrOrderNotFound)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("deleted order")

	return nil
}

const queryFindOrderItems = `
select id, order_id, product_id, product_name, product_price, quantity, subtotal, created_at
from order_items
where order_id = $1
order by created_at
`

func (s *Store) findOrderItems(c context.Context, orderID uuid.UUID) ([]store.OrderItem, error) {
	rows, err := s.pool.Query(c, queryFindOrderItems, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []store.OrderItem{}
	for rows.Next() {
		item := store.OrderItem{}
		price, subtotal := pgtype.Numeric{}, pgtype.Numeric{}
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&price,
			&item.Quantity,
			&subtotal,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		item.ProductPrice = numericToDecimal(price)
		item.Subtotal = numericToDecimal(subtotal)
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanProduct(row pgx.Row) (store.Product, error) {
	product := store.Product{}
	price := pgtype.Numeric{}
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&price,
		&product.ImageUrl,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return store.Product{}, err
	}
	product.Price = numericToDecimal(price)
	return product, nil
}

func scanOrder(row pgx.Row) (store.Order, error) {
	order := store.Order{}
	subtotal, shipping, total := pgtype.Numeric{}, pgtype.Numeric{}, pgtype.Numeric{}
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.Cep,
		&subtotal,
		&shipping,
		&total,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return store.Order{}, err
	}
	order.Subtotal = numericToDecimal(subtotal)
	order.ShippingCost = numericToDecimal(shipping)
	order.Total = numericToDecimal(total)
	return order, nil
}
