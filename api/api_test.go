package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gomarketplace/cart"
	"gomarketplace/dashboard"
	"gomarketplace/store"
)

type staticCatalog []cart.Product

func (s staticCatalog) Products(context.Context) ([]cart.Product, error) {
	return s, nil
}

func newTestApi(t *testing.T, withScreen bool) (*Api, *test.Hook) {
	t.Helper()

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	c, err := cart.New(store.NewInMemoryStore(), cart.WithLogger(logger))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close(context.Background()) })

	var screen *dashboard.Screen
	if withScreen {
		screen, err = dashboard.New(c, staticCatalog{{ID: "1", Title: "Cadeira", Price: 100}}, nil)
		require.NoError(t, err)
		require.NoError(t, screen.Load(context.Background()))
	}

	a, err := New("localhost", 0, c, screen, logger)
	require.NoError(t, err)

	return a, hook
}

func do(t *testing.T, a *Api, method, path, body string) (*httptest.ResponseRecorder, CartResponse) {
	t.Helper()

	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))

	var resp CartResponse
	if rec.Code < 300 {
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	}

	return rec, resp
}

func TestNew_RequiresCart(t *testing.T) {
	_, err := New("", 0, nil, nil, nil)
	assert.ErrorIs(t, err, ErrNoCart)
}

func TestCartLifecycle(t *testing.T) {
	a, _ := newTestApi(t, false)

	rec, resp := do(t, a, http.MethodGet, "/cart", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, resp.Products)

	body := `{"id":"a","title":"T","image_url":"u","price":10}`
	rec, resp = do(t, a, http.MethodPost, "/cart/items", body)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []cart.Line{{Product: cart.Product{ID: "a", Title: "T", ImageURL: "u", Price: 10}, Quantity: 1}}, resp.Products)

	_, resp = do(t, a, http.MethodPost, "/cart/items", body)
	assert.Equal(t, 2, resp.Products[0].Quantity)

	_, resp = do(t, a, http.MethodPost, "/cart/items/a/increment", "")
	assert.Equal(t, 3, resp.Products[0].Quantity)
	assert.Equal(t, cart.Totals{Items: 3, Amount: 30}, resp.Totals)

	for i := 0; i < 3; i++ {
		_, resp = do(t, a, http.MethodPost, "/cart/items/a/decrement", "")
	}
	assert.Empty(t, resp.Products)
}

func TestAddToCart_BadBody(t *testing.T) {
	a, _ := newTestApi(t, false)

	rec, _ := do(t, a, http.MethodPost, "/cart/items", `{"id":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, a, http.MethodPost, "/cart/items", `{"title":"no id"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, a, http.MethodPost, "/cart/items", `{"id":"a","quantity":4}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProducts_NoScreen(t *testing.T) {
	a, _ := newTestApi(t, false)

	rec, _ := do(t, a, http.MethodGet, "/products", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec, _ = do(t, a, http.MethodPost, "/products/1/cart", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestProducts_AddListed(t *testing.T) {
	a, _ := newTestApi(t, true)

	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Cadeira")

	rec, resp := do(t, a, http.MethodPost, "/products/1/cart", "")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, resp.Products[0].Quantity)

	rec, _ = do(t, a, http.MethodPost, "/products/9/cart", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var e ErrResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&e))
	assert.Equal(t, http.StatusNotFound, e.HTTPStatusCode)
}

func TestRequestsAreLogged(t *testing.T) {
	a, hook := newTestApi(t, false)

	do(t, a, http.MethodGet, "/cart", "")

	var found bool
	for _, e := range hook.AllEntries() {
		if e.Message == "request" && e.Data["path"] == "/cart" && e.Data["status"] == http.StatusOK {
			found = true
		}
	}
	assert.True(t, found)
}

func TestShutdownBeforeStart(t *testing.T) {
	a, _ := newTestApi(t, false)
	assert.NoError(t, a.Shutdown(context.Background()))
}

func TestShutdownStopsStart(t *testing.T) {
	a, _ := newTestApi(t, false)

	errc := make(chan error, 1)
	go func() { errc <- a.Start() }()
	require.NoError(t, a.Shutdown(context.Background()))

	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after Shutdown")
	}
}
