package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/obarros/lojinha/internal/store"
)

func TestListOrdersScopesToUserNewestFirst(t *testing.T) {
	userId := uuid.New()
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/rest/v1/orders", r.URL.Path)
			assert.Equal(t, "*,items:order_items(*)", r.URL.Query().Get("select"))
			assert.Equal(t, "eq."+userId.String(), r.URL.Query().Get("user_id"))
			assert.Equal(t, "created_at.desc", r.URL.Query().Get("order"))
			json.NewEncoder(w).Encode([]store.Order{})
		}),
	)
	defer server.Close()

	orders, err := newTestClient(server.URL).ListOrders(context.Background(), userId)

	assert.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCreateOrderInsertsHeaderThenItems(t *testing.T) {
	orderId := uuid.New()
	userId := uuid.New()
	var mu sync.Mutex
	calls := []string{}
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			calls = append(calls, r.Method+" "+r.URL.Path)
			mu.Unlock()

			switch {
			case r.Method == http.MethodPost && r.URL.Path == "/rest/v1/orders":
				body := map[string]interface{}{}
				json.NewDecoder(r.Body).Decode(&body)
				assert.Equal(t, "confirmed", body["status"])
				json.NewEncoder(w).Encode(map[string]interface{}{
					"id":      orderId,
					"user_id": userId,
				})
			case r.Method == http.MethodPost && r.URL.Path == "/rest/v1/order_items":
				lines := []map[string]interface{}{}
				json.NewDecoder(r.Body).Decode(&lines)
				assert.Len(t, lines, 1)
				assert.Equal(t, orderId.String(), lines[0]["order_id"])
				w.WriteHeader(http.StatusCreated)
			case r.Method == http.MethodGet && r.URL.Path == "/rest/v1/orders":
				json.NewEncoder(w).Encode(map[string]interface{}{
					"id":      orderId,
					"user_id": userId,
					"status":  "confirmed",
					"items": []map[string]interface{}{
						{"order_id": orderId, "quantity": 2},
					},
				})
			default:
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
		}),
	)
	defer server.Close()

	placed, err := newTestClient(server.URL).CreateOrder(context.Background(), store.CreateOrder{
		UserID: userId,
		Cep:    "01310100",
		Items: []store.CreateOrderItem{
			{ProductID: uuid.New(), Quantity: 2, Subtotal: decimal.RequireFromString("20.00")},
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, orderId, placed.ID)
	assert.Len(t, placed.Items, 1)
	assert.Equal(t, []string{
		"POST /rest/v1/orders",
		"POST /rest/v1/order_items",
		"GET /rest/v1/orders",
	}, calls)
}

func TestCreateOrderRemovesHeaderWhenItemsFail(t *testing.T) {
	orderId := uuid.New()
	var mu sync.Mutex
	deleted := false
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.Method == http.MethodPost && r.URL.Path == "/rest/v1/orders":
				json.NewEncoder(w).Encode(map[string]interface{}{"id": orderId})
			case r.Method == http.MethodPost && r.URL.Path == "/rest/v1/order_items":
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]string{"message": "invalid line"})
			case r.Method == http.MethodDelete && r.URL.Path == "/rest/v1/orders":
				assert.Equal(t, "eq."+orderId.String(), r.URL.Query().Get("id"))
				mu.Lock()
				deleted = true
				mu.Unlock()
				w.WriteHeader(http.StatusNoContent)
			default:
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
		}),
	)
	defer server.Close()

	_, err := newTestClient(server.URL).CreateOrder(context.Background(), store.CreateOrder{
		UserID: uuid.New(),
		Items:  []store.CreateOrderItem{{ProductID: uuid.New(), Quantity: 1}},
	})

	assert.Error(t, err)
	assert.True(t, deleted)
	storeErr := &Error{}
	assert.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "invalid line", storeErr.Message)
}

func TestCreateOrderJoinsCleanupFailure(t *testing.T) {
	orderId := uuid.New()
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.Method == http.MethodPost && r.URL.Path == "/rest/v1/orders":
				json.NewEncoder(w).Encode(map[string]interface{}{"id": orderId})
			case r.Method == http.MethodPost && r.URL.Path == "/rest/v1/order_items":
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]string{"message": "invalid line"})
			case r.Method == http.MethodDelete && r.URL.Path == "/rest/v1/orders":
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]string{"message": "cleanup failed"})
			}
		}),
	)
	defer server.Close()

	_, err := newTestClient(server.URL).CreateOrder(context.Background(), store.CreateOrder{
		UserID: uuid.New(),
		Items:  []store.CreateOrderItem{{ProductID: uuid.New(), Quantity: 1}},
	})

	assert.Error(t, err)
	var storeErr *Error
	assert.True(t, errors.As(err, &storeErr))
	assert.Contains(t, err.Error(), "invalid line")
	assert.Contains(t, err.Error(), "cleanup failed")
}

func TestUpdateOrderStatusFiltersByOwner(t *testing.T) {
	orderId := uuid.New()
	userId := uuid.New()
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPatch, r.Method)
			assert.Equal(t, "/rest/v1/orders", r.URL.Path)
			assert.Equal(t, "eq."+orderId.String(), r.URL.Query().Get("id"))
			assert.Equal(t, "eq."+userId.String(), r.URL.Query().Get("user_id"))
			body := map[string]interface{}{}
			json.NewDecoder(r.Body).Decode(&body)
			assert.Equal(t, "shipped", body["status"])
			w.WriteHeader(http.StatusNoContent)
		}),
	)
	defer server.Close()

	err := newTestClient(server.URL).
		UpdateOrderStatus(context.Background(), userId, orderId, store.StatusShipped)

	assert.NoError(t, err)
}

func TestDeleteOrderFiltersByOwner(t *testing.T) {
	orderId := uuid.New()
	userId := uuid.New()
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			assert.Equal(t, "/rest/v1/orders", r.URL.Path)
			assert.Equal(t, "eq."+orderId.String(), r.URL.Query().Get("id"))
			assert.Equal(t, "eq."+userId.String(), r.URL.Query().Get("user_id"))
			w.WriteHeader(http.StatusNoContent)
		}),
	)
	defer server.Close()

	err := newTestClient(server.URL).DeleteOrder(context.Background(), userId, orderId)

	assert.NoError(t, err)
}

func TestFindOrderByIdRequestsSingleObject(t *testing.T) {
	orderId := uuid.New()
	userId := uuid.New()
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "application/vnd.pgrst.object+json", r.Header.Get("Accept"))
			assert.Equal(t, "eq."+orderId.String(), r.URL.Query().Get("id"))
			assert.Equal(t, "eq."+userId.String(), r.URL.Query().Get("user_id"))
			json.NewEncoder(w).Encode(map[string]interface{}{"id": orderId, "user_id": userId})
		}),
	)
	defer server.Close()

	found, err := newTestClient(server.URL).FindOrderById(context.Background(), userId, orderId)

	assert.NoError(t, err)
	assert.Equal(t, orderId, found.ID)
}
