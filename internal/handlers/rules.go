package handlers

import (
	"errors"
	"net/http"

	"pricepoint-backend/internal/domain"
)

// HandleWorkflowRules — GET/POST /api/admin/rules.
// Правила только хранятся, к КП они не применяются.
func (e *Env) HandleWorkflowRules(w http.ResponseWriter, r *http.Request) {
	if _, ok := e.requireAdmin(w, r); !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		list, err := e.Store.ListWorkflowRules(r.Context())
		if err != nil {
			e.writeError(w, r, err)
			return
		}
		e.writeJSON(w, list)

	case http.MethodPost:
		var rule domain.WorkflowRule
		if !decodeJSON(w, r, &rule) {
			return
		}
		rule.ID = ""
		if err := rule.Validate(); err != nil {
			e.writeError(w, r, err)
			return
		}
		if err := e.Store.CreateWorkflowRule(r.Context(), &rule); err != nil {
			e.writeError(w, r, err)
			return
		}
		e.writeJSONStatus(w, http.StatusCreated, rule)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleConfigRules — GET/POST /api/admin/config-rules
func (e *Env) HandleConfigRules(w http.ResponseWriter, r *http.Request) {
	if _, ok := e.requireAdmin(w, r); !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		list, err := e.Store.ListConfigRules(r.Context())
		if err != nil {
			e.writeError(w, r, err)
			return
		}
		e.writeJSON(w, list)

	case http.MethodPost:
		var rule domain.ConfigRule
		if !decodeJSON(w, r, &rule) {
			return
		}
		rule.ID = ""
		if err := rule.Validate(); err != nil {
			e.writeError(w, r, err)
			return
		}
		if _, err := e.Store.GetProduct(r.Context(), rule.ProductID); errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "unknown productId", http.StatusBadRequest)
			return
		} else if err != nil {
			e.writeError(w, r, err)
			return
		}
		if err := e.Store.CreateConfigRule(r.Context(), &rule); err != nil {
			e.writeError(w, r, err)
			return
		}
		e.writeJSONStatus(w, http.StatusCreated, rule)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
