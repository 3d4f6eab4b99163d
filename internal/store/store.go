package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

type Product struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageUrl    string          `json:"image_url"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// OrderItem is a snapshot of the product at purchase time. It is
// deliberately decoupled from Product so past orders stay unchanged
// when the catalog changes.
type OrderItem struct {
	ID           uuid.UUID       `json:"id"`
	OrderID      uuid.UUID       `json:"order_id"`
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	ProductPrice decimal.Decimal `json:"product_price"`
	Quantity     int32           `json:"quantity"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	CreatedAt    time.Time       `json:"created_at"`
}

type Order struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	Cep          string          `json:"cep"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	Total        decimal.Decimal `json:"total"`
	Status       OrderStatus     `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Items        []OrderItem     `json:"items"`
}

type CreateOrderItem struct {
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	ProductPrice decimal.Decimal `json:"product_price"`
	Quantity     int32           `json:"quantity"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

type CreateOrder struct {
	UserID       uuid.UUID         `json:"user_id"`
	Cep          string            `json:"cep"`
	Subtotal     decimal.Decimal   `json:"subtotal"`
	ShippingCost decimal.Decimal   `json:"shipping_cost"`
	Total        decimal.Decimal   `json:"total"`
	Items        []CreateOrderItem `json:"items"`
}

// Store is the accessor over the remote backend. Every operation is a
// single request/response pair, no retry or backoff; remote errors are
// returned as-is to the caller. Order reads and mutations are scoped
// to the owning user.
type Store interface {
	ListProducts(c context.Context) ([]Product, error)
	InsertProduct(c context.Context, product Product) (Product, error)
	UpdateProduct(c context.Context, product Product) (Product, error)
	DeleteProduct(c context.Context, id uuid.UUID) error

	ListOrders(c context.Context, userID uuid.UUID) ([]Order, error)
	FindOrderById(c context.Context, userID uuid.UUID, orderID uuid.UUID) (Order, error)
	CreateOrder(c context.Context, param CreateOrder) (Order, error)
	UpdateOrderStatus(c context.Context, userID uuid.UUID, orderID uuid.UUID, status OrderStatus) error
	DeleteOrder(c context.Context, userID uuid.UUID, orderID uuid.UUID) error
}
