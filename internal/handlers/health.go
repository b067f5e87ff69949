package handlers

import (
	"net/http"
)

// GET /health
func (e *Env) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := e.Store.Ping(r.Context()); err != nil {
		e.writeJSONStatus(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"error":  err.Error(),
		})
		return
	}
	e.writeJSON(w, map[string]string{"status": "ok"})
}
