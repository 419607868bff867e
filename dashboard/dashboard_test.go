package dashboard

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gomarketplace/cart"
	"gomarketplace/store"
)

type fakeCatalog struct {
	products []cart.Product
	err      error
	calls    int
}

func (f *fakeCatalog) Products(context.Context) ([]cart.Product, error) {
	f.calls++
	return f.products, f.err
}

type recordedAlert struct{ title, message string }

type fakeAlerter struct{ alerts []recordedAlert }

func (f *fakeAlerter) Alert(title, message string) {
	f.alerts = append(f.alerts, recordedAlert{title, message})
}

var listed = []cart.Product{
	{ID: "1", Title: "Cadeira", ImageURL: "u1", Price: 1400.9},
	{ID: "2", Title: "Mesa", ImageURL: "u2", Price: 300},
}

func newCart(t *testing.T) *cart.Store {
	t.Helper()
	c, err := cart.New(store.NewInMemoryStore())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close(context.Background()) })
	return c
}

func TestNew_RequiresCart(t *testing.T) {
	_, err := New(nil, &fakeCatalog{}, nil)
	assert.ErrorIs(t, err, ErrNoCart)

	_, err = New(newCart(t), nil, nil)
	assert.ErrorIs(t, err, ErrNoCatalog)
}

func TestLoad_FetchesOnce(t *testing.T) {
	f := &fakeCatalog{products: listed}
	s, err := New(newCart(t), f, nil)
	require.NoError(t, err)

	require.NoError(t, s.Load(context.Background()))
	require.NoError(t, s.Load(context.Background()))

	assert.Equal(t, 1, f.calls)
	assert.Equal(t, listed, s.Products())
}

func TestLoad_FailureAlertsAndStaysEmpty(t *testing.T) {
	boom := errors.New("offline")
	a := &fakeAlerter{}
	s, err := New(newCart(t), &fakeCatalog{err: boom}, a)
	require.NoError(t, err)

	err = s.Load(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, s.Products())
	assert.Equal(t, []recordedAlert{{AlertTitle, AlertMessage}}, a.alerts)
}

func TestAddToCart(t *testing.T) {
	c := newCart(t)
	s, err := New(c, &fakeCatalog{products: listed}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Load(context.Background()))

	_, err = s.AddToCart("1")
	require.NoError(t, err)
	_, err = s.AddToCart("1")
	require.NoError(t, err)

	_, err = s.AddToCart("nope")
	assert.ErrorIs(t, err, ErrUnknownProduct)

	assert.Equal(t, []cart.Line{{Product: listed[0], Quantity: 2}}, c.Products())
}

func TestRender(t *testing.T) {
	s, err := New(newCart(t), &fakeCatalog{products: listed}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Load(context.Background()))

	var buf bytes.Buffer
	require.NoError(t, s.Render(&buf))

	assert.Contains(t, buf.String(), "Cadeira")
	assert.Contains(t, buf.String(), "R$ 1.400,90")
}

func TestFormatValue(t *testing.T) {
	cases := map[float64]string{
		0:          "R$ 0,00",
		10:         "R$ 10,00",
		1400.9:     "R$ 1.400,90",
		1234567.89: "R$ 1.234.567,89",
		-5.5:       "-R$ 5,50",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatValue(in))
	}

	huge := FormatValue(1e19)
	assert.True(t, strings.HasPrefix(huge, "R$ 10.000.000.000.000.000.000"), huge)
	assert.NotContains(t, huge, "-")
}

func TestWriterAlerter(t *testing.T) {
	var buf bytes.Buffer
	WriterAlerter{W: &buf}.Alert("t", "m")
	assert.Equal(t, "t: m\n", buf.String())
}

type blockingCatalog struct {
	release chan struct{}
}

func (b blockingCatalog) Products(ctx context.Context) ([]cart.Product, error) {
	<-b.release
	return listed, nil
}

func TestLoad_ListingReadableWhileFetching(t *testing.T) {
	f := blockingCatalog{release: make(chan struct{})}
	s, err := New(newCart(t), f, nil)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.Load(context.Background()) }()

	got := make(chan []cart.Product, 1)
	go func() { got <- s.Products() }()
	select {
	case products := <-got:
		assert.Empty(t, products)
	case <-time.After(time.Second):
		t.Fatal("Products blocked on the catalog fetch")
	}

	close(f.release)
	require.NoError(t, <-done)
	assert.Equal(t, listed, s.Products())
}
