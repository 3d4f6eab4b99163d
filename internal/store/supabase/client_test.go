package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/obarros/lojinha/internal/auth"
	"github.com/obarros/lojinha/internal/config"
	"github.com/obarros/lojinha/internal/store"
)

func newTestClient(url string) *Client {
	return NewClient(config.Store{Url: url, Key: "anon-key"})
}

func TestListProductsQueriesNewestFirst(t *testing.T) {
	productId := uuid.New()
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/rest/v1/products", r.URL.Path)
			assert.Equal(t, "*", r.URL.Query().Get("select"))
			assert.Equal(t, "created_at.desc", r.URL.Query().Get("order"))
			assert.Equal(t, "anon-key", r.Header.Get("apikey"))
			assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))

			json.NewEncoder(w).Encode([]map[string]interface{}{
				{"id": productId, "name": "caneca", "price": "29.90"},
			})
		}),
	)
	defer server.Close()

	products, err := newTestClient(server.URL).ListProducts(context.Background())

	assert.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, productId, products[0].ID)
	assert.True(t, products[0].Price.Equal(decimal.RequireFromString("29.90")))
}

func TestDoForwardsCallerAccessToken(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer caller-token", r.Header.Get("Authorization"))
			assert.Equal(t, "anon-key", r.Header.Get("apikey"))
			json.NewEncoder(w).Encode([]store.Product{})
		}),
	)
	defer server.Close()

	c := auth.AttachAccessToken(context.Background(), "caller-token")
	_, err := newTestClient(server.URL).ListProducts(c)

	assert.NoError(t, err)
}

func TestErrorPayloadIsReturnedVerbatim(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]string{
				"message": "duplicate key value violates unique constraint",
				"code":    "23505",
			})
		}),
	)
	defer server.Close()

	_, err := newTestClient(server.URL).InsertProduct(context.Background(), store.Product{})

	assert.Error(t, err)
	storeErr := &Error{}
	assert.ErrorAs(t, err, &storeErr)
	assert.Equal(t, http.StatusConflict, storeErr.StatusCode)
	assert.Equal(t, "23505", storeErr.Code)
	assert.Contains(t, err.Error(), "duplicate key value")
}

func TestInsertProductRequestsRepresentation(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/rest/v1/products", r.URL.Path)
			assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
			assert.Equal(t, "application/vnd.pgrst.object+json", r.Header.Get("Accept"))

			body := map[string]interface{}{}
			json.NewDecoder(r.Body).Decode(&body)
			assert.Equal(t, "caneca", body["name"])

			json.NewEncoder(w).Encode(map[string]interface{}{
				"id":   uuid.New(),
				"name": "caneca",
			})
		}),
	)
	defer server.Close()

	inserted, err := newTestClient(server.URL).InsertProduct(context.Background(), store.Product{
		Name:  "caneca",
		Price: decimal.RequireFromString("29.90"),
	})

	assert.NoError(t, err)
	assert.Equal(t, "caneca", inserted.Name)
}
