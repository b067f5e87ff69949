package handlers

import (
	"net/http"

	"pricepoint-backend/internal/domain"
)

type MeResponse struct {
	Persona  domain.Persona     `json:"persona"`
	Label    string             `json:"label"`
	Internal bool               `json:"internal"`
	Sections []string           `json:"sections"` // какие разделы показывать в навигации
	Stats    *domain.QuoteStats `json:"stats,omitempty"`
}

// HandleMe — текущая персона, доступные разделы и сводка по КП для сотрудников.
func (e *Env) HandleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	p, ok := e.persona(w, r)
	if !ok {
		return
	}

	resp := MeResponse{
		Persona:  p,
		Label:    p.Label(),
		Internal: p.IsInternal(),
		Sections: domain.Sections(p),
	}
	if p.IsInternal() {
		stats, err := e.Quotes.Stats(r.Context(), p)
		if err != nil {
			e.writeError(w, r, err)
			return
		}
		resp.Stats = &stats
	}
	e.writeJSON(w, resp)
}

// GET /api/notifications — последние уведомления, новые сверху
func (e *Env) HandleNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if e.Feed == nil {
		e.writeJSON(w, []string{})
		return
	}
	e.writeJSON(w, e.Feed.List())
}
