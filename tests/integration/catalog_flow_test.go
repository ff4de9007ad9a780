package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type productResponse struct {
	ID     string  `json:"id"`
	UserID string  `json:"user_id"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Stock  int     `json:"stock"`
	Status string  `json:"status"`
}

type cartItemResponse struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// seller registers a verified user directly and issues a session token for it
func seller(t *testing.T, ts *TestServer, suffix string) (userID, token string) {
	t.Helper()

	name, email, password := TestUser(suffix)
	user, err := SeedUser(context.Background(), testDB.DB, name, email, password, true)
	require.NoError(t, err)

	token, err = ts.TokenManager.Issue(user.ID)
	require.NoError(t, err)

	return user.ID, token
}

func TestCatalog_CreateAndPublicGet(t *testing.T) {
	ts := newFlowServer(t)
	userID, token := seller(t, ts, "catalog")

	resp, err := ts.RequestWithAuth(http.MethodPost, "/api/items", token, map[string]any{
		"name":  "Walnut desk",
		"price": 249.99,
		"stock": 3,
		"type":  "furniture",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created productResponse
	require.NoError(t, ParseJSONResponse(resp, &created))
	assert.Equal(t, userID, created.UserID)
	assert.Equal(t, "Walnut desk", created.Name)
	assert.Equal(t, "active", created.Status)

	// Product lookup needs no session
	resp, err = ts.Request(http.MethodGet, "/api/items/"+created.ID, nil, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var fetched productResponse
	require.NoError(t, ParseJSONResponse(resp, &fetched))
	assert.Equal(t, created.ID, fetched.ID)
}

func TestCatalog_OwnerScopedMutation(t *testing.T) {
	ts := newFlowServer(t)
	_, ownerToken := seller(t, ts, "owner")
	_, otherToken := seller(t, ts, "other")

	resp, err := ts.RequestWithAuth(http.MethodPost, "/api/items", ownerToken, map[string]any{
		"name":  "Ceramic mug",
		"price": 12.50,
		"stock": 40,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created productResponse
	require.NoError(t, ParseJSONResponse(resp, &created))

	// A different seller cannot delete it
	resp, err = ts.RequestWithAuth(http.MethodDelete, "/api/items/"+created.ID, otherToken, nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// The owner can
	resp, err = ts.RequestWithAuth(http.MethodDelete, "/api/items/"+created.ID, ownerToken, nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCart_AddIncrementAndClear(t *testing.T) {
	ts := newFlowServer(t)
	_, sellerToken := seller(t, ts, "cartseller")
	_, buyerToken := seller(t, ts, "cartbuyer")

	resp, err := ts.RequestWithAuth(http.MethodPost, "/api/items", sellerToken, map[string]any{
		"name":  "Linen tote",
		"price": 18.00,
		"stock": 15,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var product productResponse
	require.NoError(t, ParseJSONResponse(resp, &product))

	// Adding the same product twice folds into one line
	for i := 0; i < 2; i++ {
		resp, err = ts.RequestWithAuth(http.MethodPost, "/api/cart", buyerToken, map[string]any{
			"productId": product.ID,
			"quantity":  2,
		})
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	resp, err = ts.RequestWithAuth(http.MethodGet, "/api/cart", buyerToken, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var items []cartItemResponse
	require.NoError(t, ParseJSONResponse(resp, &items))
	require.Len(t, items, 1)
	assert.Equal(t, product.ID, items[0].ProductID)
	assert.Equal(t, 4, items[0].Quantity)

	resp, err = ts.RequestWithAuth(http.MethodDelete, "/api/cart", buyerToken, nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = ts.RequestWithAuth(http.MethodGet, "/api/cart", buyerToken, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, ParseJSONResponse(resp, &items))
	assert.Empty(t, items)
}
