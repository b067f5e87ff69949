package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pricepoint-backend/internal/domain"
	"pricepoint-backend/internal/pricing"
)

// GET /api/products?search=&category=
func (e *Env) HandleProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	p, ok := e.persona(w, r)
	if !ok {
		return
	}

	products, err := e.Store.ListProducts(r.Context())
	if err != nil {
		e.writeError(w, r, fmt.Errorf("list products: %w", err))
		return
	}

	q := r.URL.Query()
	e.writeJSON(w, domain.FilterProducts(p, products, q.Get("search"), q.Get("category")))
}

// GET /api/products/{id}
func (e *Env) HandleProduct(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	p, ok := e.persona(w, r)
	if !ok {
		return
	}

	prod, err := e.visibleProduct(r, p, chi.URLParam(r, "id"))
	if err != nil {
		e.writeError(w, r, err)
		return
	}
	e.writeJSON(w, prod)
}

// скрытая от персоны услуга выглядит как отсутствующая
func (e *Env) visibleProduct(r *http.Request, p domain.Persona, id string) (*domain.Product, error) {
	prod, err := e.Store.GetProduct(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if !domain.ProductVisible(p, prod) {
		return nil, domain.ErrNotFound
	}
	return prod, nil
}

// GET /api/categories
func (e *Env) HandleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	e.writeJSON(w, domain.DefaultCategories())
}

type configureRequest struct {
	ProductID string `json:"productId"`
	pricing.Draft
}

// POST /api/pricing/configure — цена позиции до добавления в корзину
func (e *Env) HandleConfigure(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	p, ok := e.persona(w, r)
	if !ok {
		return
	}

	var req configureRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ProductID == "" {
		http.Error(w, "productId is required", http.StatusBadRequest)
		return
	}

	prod, err := e.visibleProduct(r, p, req.ProductID)
	if err != nil {
		e.writeError(w, r, err)
		return
	}

	item, err := e.Calc.Configure(prod, req.Draft)
	if err != nil {
		e.writeError(w, r, err)
		return
	}
	e.writeJSON(w, item)
}
