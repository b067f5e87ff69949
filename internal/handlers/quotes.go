package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"pricepoint-backend/internal/domain"
	"pricepoint-backend/internal/quotes"
)

type createQuoteRequest struct {
	Customer domain.ContactDetails `json:"customer"`
	Items    []domain.CartItem     `json:"items"`
}

// HandleQuotes обслуживает /api/quotes.
//
// GET  -> КП, видимые текущей персоне (новые сверху).
// POST -> оформить корзину в КП (цены пересчитываются на сервере).
func (e *Env) HandleQuotes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		e.handleListQuotes(w, r)
	case http.MethodPost:
		e.handleCreateQuote(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (e *Env) handleListQuotes(w http.ResponseWriter, r *http.Request) {
	p, ok := e.persona(w, r)
	if !ok {
		return
	}
	list, err := e.Quotes.List(r.Context(), p)
	if err != nil {
		e.writeError(w, r, err)
		return
	}
	e.writeJSON(w, list)
}

func (e *Env) handleCreateQuote(w http.ResponseWriter, r *http.Request) {
	p, ok := e.persona(w, r)
	if !ok {
		return
	}

	var req createQuoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	q, err := e.Quotes.Create(r.Context(), p, req.Customer, req.Items)
	if err != nil {
		e.writeError(w, r, err)
		return
	}
	e.writeJSONStatus(w, http.StatusCreated, q)
}

// HandleQuote обслуживает /api/quotes/{id}: GET и PUT (частичное обновление).
func (e *Env) HandleQuote(w http.ResponseWriter, r *http.Request) {
	p, ok := e.persona(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	switch r.Method {
	case http.MethodGet:
		q, err := e.Quotes.Get(r.Context(), p, id)
		if err != nil {
			e.writeError(w, r, err)
			return
		}
		e.writeJSON(w, q)

	case http.MethodPut:
		var patch quotes.Patch
		if !decodeJSON(w, r, &patch) {
			return
		}
		q, err := e.Quotes.Update(r.Context(), p, id, patch)
		if err != nil {
			e.writeError(w, r, err)
			return
		}
		e.writeJSON(w, q)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// GET /api/quotes/stats — сводка для дашборда (только сотрудники)
func (e *Env) HandleQuoteStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	p, ok := e.requireInternal(w, r)
	if !ok {
		return
	}
	stats, err := e.Quotes.Stats(r.Context(), p)
	if err != nil {
		e.writeError(w, r, err)
		return
	}
	e.writeJSON(w, stats)
}
