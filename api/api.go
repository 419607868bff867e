package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"gomarketplace/cart"
	"gomarketplace/dashboard"
)

var ErrNoCart = errors.New("api: constructed without a cart store")

type ErrResponse struct {
	HTTPStatusCode int
	Message        string
}

// CartResponse is the body returned by every /cart endpoint.
type CartResponse struct {
	Products []cart.Line `json:"products"`
	Totals   cart.Totals `json:"totals"`
}

type Api struct {
	Address   string
	Port      int
	Cart      *cart.Store
	Dashboard *dashboard.Screen
	Router    *chi.Mux

	log    *logrus.Entry
	server *http.Server
}

// New builds the HTTP surface. screen may be nil, in which case the
// /products routes answer 503.
func New(address string, port int, c *cart.Store, screen *dashboard.Screen, logger *logrus.Logger) (*Api, error) {
	if c == nil {
		return nil, ErrNoCart
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	a := &Api{
		Address:   address,
		Port:      port,
		Cart:      c,
		Dashboard: screen,
		log:       logger.WithField("component", "api"),
	}
	a.initRouter()
	a.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.Address, a.Port),
		Handler:           a.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return a, nil
}

func (a *Api) initRouter() {
	a.Router = chi.NewRouter()
	a.Router.Use(middleware.RequestID)
	a.Router.Use(a.logRequests)
	a.Router.Use(middleware.Recoverer)

	a.Router.Route("/cart", func(r chi.Router) {
		r.Get("/", a.GetCartHandler)
		r.Route("/items", func(r chi.Router) {
			r.Post("/", a.AddToCartHandler)
			r.Route("/{productID}", func(r chi.Router) {
				r.Post("/increment", a.IncrementHandler)
				r.Post("/decrement", a.DecrementHandler)
			})
		})
	})

	a.Router.Route("/products", func(r chi.Router) {
		r.Get("/", a.ListProductsHandler)
		r.Post("/{productID}/cart", a.AddListedProductHandler)
	})
}

func (a *Api) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		a.log.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start),
			"request_id": middleware.GetReqID(r.Context()),
		}).Info("request")
	})
}

// Start serves until Shutdown. Once Shutdown has been called, including
// before Start, it returns nil without listening.
func (a *Api) Start() error {
	a.log.Infof("listening on %s", a.server.Addr)
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}

func (a *Api) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}
