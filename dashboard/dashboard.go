// Package dashboard lists the catalog and puts products into the cart.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"gomarketplace/cart"
)

const (
	AlertTitle   = "Erro ao buscar produtos"
	AlertMessage = "Não foi possível buscar os produtos, verifique a conexão"
)

var (
	ErrNoCart         = errors.New("dashboard: constructed without a cart store")
	ErrNoCatalog      = errors.New("dashboard: constructed without a catalog")
	ErrUnknownProduct = errors.New("dashboard: product not listed")
)

type Fetcher interface {
	Products(ctx context.Context) ([]cart.Product, error)
}

// Alerter shows a message to the user.
type Alerter interface {
	Alert(title, message string)
}

type LogAlerter struct {
	Log *logrus.Entry
}

func (a LogAlerter) Alert(title, message string) {
	a.Log.WithField("title", title).Error(message)
}

type WriterAlerter struct {
	W io.Writer
}

func (a WriterAlerter) Alert(title, message string) {
	fmt.Fprintf(a.W, "%s: %s\n", title, message)
}

type Screen struct {
	cart    *cart.Store
	catalog Fetcher
	alert   Alerter

	mu       sync.RWMutex
	loaded   bool
	products []cart.Product
}

func New(c *cart.Store, f Fetcher, a Alerter) (*Screen, error) {
	if c == nil {
		return nil, ErrNoCart
	}
	if f == nil {
		return nil, ErrNoCatalog
	}
	if a == nil {
		a = LogAlerter{Log: logrus.WithField("component", "dashboard")}
	}

	return &Screen{
		cart:     c,
		catalog:  f,
		alert:    a,
		products: []cart.Product{},
	}, nil
}

// Load fetches the catalog on the first call only. A failed fetch raises an
// alert and leaves the listing empty.
func (s *Screen) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.loaded {
		s.mu.Unlock()
		return nil
	}
	s.loaded = true
	s.mu.Unlock()

	// the listing stays empty and readable while the fetch is in flight
	products, err := s.catalog.Products(ctx)
	if err != nil {
		s.alert.Alert(AlertTitle, AlertMessage)
		return fmt.Errorf("loading catalog: %w", err)
	}

	if products != nil {
		s.mu.Lock()
		s.products = products
		s.mu.Unlock()
	}

	return nil
}

func (s *Screen) Products() []cart.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]cart.Product, len(s.products))
	copy(out, s.products)
	return out
}

// AddToCart adds the listed product with the given id to the cart.
func (s *Screen) AddToCart(id string) (cart.Product, error) {
	for _, p := range s.Products() {
		if p.ID == id {
			s.cart.AddToCart(p)
			return p, nil
		}
	}

	return cart.Product{}, fmt.Errorf("%w: %s", ErrUnknownProduct, id)
}

func (s *Screen) Render(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPRICE")
	for _, p := range s.Products() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.Title, FormatValue(p.Price))
	}

	return tw.Flush()
}

var (
	brl       = message.NewPrinter(language.BrazilianPortuguese)
	brlSymbol = brl.Sprint(currency.Symbol(currency.BRL))
)

// FormatValue renders a price the way the storefront shows it, e.g. R$ 1.400,90.
func FormatValue(v float64) string {
	if v < 0 {
		return "-" + FormatValue(-v)
	}

	return brlSymbol + " " + brl.Sprintf("%.2f", v)
}
