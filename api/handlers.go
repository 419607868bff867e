package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gomarketplace/cart"
	"gomarketplace/dashboard"
)

func (a *Api) GetCartHandler(w http.ResponseWriter, r *http.Request) {
	a.writeCart(w, http.StatusOK)
}

func (a *Api) AddToCartHandler(w http.ResponseWriter, r *http.Request) {
	d := json.NewDecoder(r.Body)
	d.DisallowUnknownFields()

	p := cart.Product{}
	if err := d.Decode(&p); err != nil {
		msg := fmt.Sprintf("Error unmarshalling body: %v", err)
		a.log.Warn(msg)
		a.writeError(w, http.StatusBadRequest, msg)
		return
	}

	if p.ID == "" {
		a.writeError(w, http.StatusBadRequest, "product id is required")
		return
	}

	a.Cart.AddToCart(p)
	a.log.Debugf("added %s to cart", p.ID)
	a.writeCart(w, http.StatusCreated)
}

func (a *Api) IncrementHandler(w http.ResponseWriter, r *http.Request) {
	a.Cart.Increment(chi.URLParam(r, "productID"))
	a.writeCart(w, http.StatusOK)
}

func (a *Api) DecrementHandler(w http.ResponseWriter, r *http.Request) {
	a.Cart.Decrement(chi.URLParam(r, "productID"))
	a.writeCart(w, http.StatusOK)
}

func (a *Api) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	if a.Dashboard == nil {
		a.writeError(w, http.StatusServiceUnavailable, "no catalog configured")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(a.Dashboard.Products())
}

func (a *Api) AddListedProductHandler(w http.ResponseWriter, r *http.Request) {
	if a.Dashboard == nil {
		a.writeError(w, http.StatusServiceUnavailable, "no catalog configured")
		return
	}

	id := chi.URLParam(r, "productID")
	if _, err := a.Dashboard.AddToCart(id); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, dashboard.ErrUnknownProduct) {
			status = http.StatusNotFound
		}
		a.writeError(w, status, err.Error())
		return
	}

	a.writeCart(w, http.StatusCreated)
}

func (a *Api) writeCart(w http.ResponseWriter, status int) {
	lines := a.Cart.Products()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(CartResponse{
		Products: lines,
		Totals:   cart.Sum(lines),
	})
}

func (a *Api) writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrResponse{
		HTTPStatusCode: status,
		Message:        msg,
	})
}
