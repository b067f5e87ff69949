package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"pricepoint-backend/internal/domain"
	"pricepoint-backend/internal/notify"
	"pricepoint-backend/internal/pricing"
	"pricepoint-backend/internal/quotes"
	"pricepoint-backend/internal/store"
)

// Store — хранилище, с которым работают хендлеры
type Store interface {
	store.CatalogRepository
	store.QuoteRepository
	store.RuleRepository
	store.UserRepository
	store.SettingsRepository
	Ping(ctx context.Context) error
}

// Env хранит зависимости для хендлеров.
type Env struct {
	Store  Store
	Quotes *quotes.Service
	Calc   *pricing.Calculator
	Feed   *notify.Feed
	Log    *zap.Logger
}

// PersonaHeader — альтернатива ?as= для не-браузерных клиентов
const PersonaHeader = "X-Persona"

// writeJSON — простой helper для JSON-ответов
func (e *Env) writeJSON(w http.ResponseWriter, v interface{}) {
	e.writeJSONStatus(w, http.StatusOK, v)
}

// writeJSONStatus кодирует в буфер до отправки заголовка: ошибка
// кодирования отдаётся как 500, а не как пустой ответ с исходным статусом.
func (e *Env) writeJSONStatus(w http.ResponseWriter, status int, v interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		e.Log.Error("encode json", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		e.Log.Warn("write json", zap.Error(err))
	}
}

// decodeJSON читает тело; при ошибке отвечает 400 "bad json: ..."
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// writeError переводит доменные ошибки в HTTP-статусы
func (e *Env) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrEmptyCart):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrOffline):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		e.Log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// CurrentPersona — "текущая персона" запроса: ?as=..., затем заголовок
// X-Persona, иначе PUBLIC. Это переключатель, а не аутентификация.
func CurrentPersona(r *http.Request) (domain.Persona, bool) {
	as := r.URL.Query().Get("as")
	if as == "" {
		as = r.Header.Get(PersonaHeader)
	}
	return domain.ParsePersona(as)
}

// persona — CurrentPersona с ответом 400 на неизвестную роль
func (e *Env) persona(w http.ResponseWriter, r *http.Request) (domain.Persona, bool) {
	p, ok := CurrentPersona(r)
	if !ok {
		http.Error(w, "unknown persona", http.StatusBadRequest)
		return "", false
	}
	return p, true
}

// requireAdmin — проверка, что текущая персона SALES_ADMIN
func (e *Env) requireAdmin(w http.ResponseWriter, r *http.Request) (domain.Persona, bool) {
	p, ok := e.persona(w, r)
	if !ok {
		return "", false
	}
	if !p.CanAdmin() {
		http.Error(w, "forbidden", http.StatusForbidden)
		return "", false
	}
	return p, true
}

// requireInternal — любая роль сотрудника
func (e *Env) requireInternal(w http.ResponseWriter, r *http.Request) (domain.Persona, bool) {
	p, ok := e.persona(w, r)
	if !ok {
		return "", false
	}
	if !p.IsInternal() {
		http.Error(w, "forbidden", http.StatusForbidden)
		return "", false
	}
	return p, true
}
