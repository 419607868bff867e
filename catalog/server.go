package catalog

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gomarketplace/cart"
)

type ErrResponse struct {
	HTTPStatusCode int
	Message        string
}

// Server serves a fixed product list, standing in for the real catalog
// during development.
type Server struct {
	Products []cart.Product
	Router   chi.Router
}

func NewServer(products []cart.Product) *Server {
	s := &Server{Products: products}
	if s.Products == nil {
		s.Products = []cart.Product{}
	}
	s.initRouter()

	return s
}

// LoadFile reads a JSON array of products.
func LoadFile(path string) ([]cart.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var products []cart.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return products, nil
}

func (s *Server) initRouter() {
	s.Router = chi.NewRouter()
	s.Router.Use(middleware.Recoverer)
	s.Router.Route("/products", func(r chi.Router) {
		r.Get("/", s.ListProductsHandler)
		r.Get("/{productID}", s.GetProductHandler)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(s.Products)
}

func (s *Server) GetProductHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productID")

	w.Header().Set("Content-Type", "application/json")
	for _, p := range s.Products {
		if p.ID == id {
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(p)
			return
		}
	}

	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(ErrResponse{
		HTTPStatusCode: http.StatusNotFound,
		Message:        fmt.Sprintf("product %s not found", id),
	})
}
