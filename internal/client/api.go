// Package client — доступ к API PricePoint и оффлайн-режим поверх локальной базы.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pricepoint-backend/internal/domain"
	"pricepoint-backend/internal/pricing"
	"pricepoint-backend/internal/quotes"
)

// APIError — ответ сервера с кодом >= 400
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// Unwrap позволяет проверять ответ через errors.Is(err, domain.ErrXxx)
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusForbidden:
		return domain.ErrForbidden
	case http.StatusBadRequest:
		return domain.ErrInvalidInput
	case http.StatusConflict:
		return domain.ErrInvalidTransition
	case http.StatusServiceUnavailable:
		return domain.ErrOffline
	}
	return nil
}

// API — REST-клиент. Персона передаётся в ?as=.
type API struct {
	base string
	http *http.Client
}

// NewAPI создаёт клиент с таймаутом на запрос
func NewAPI(base string, timeout time.Duration) *API {
	return &API{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

func (a *API) do(ctx context.Context, method, path string, p domain.Persona, query url.Values, in, out interface{}) error {
	if query == nil {
		query = url.Values{}
	}
	if p != "" {
		query.Set("as", string(p))
	}
	u := a.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// Health — GET /health
func (a *API) Health(ctx context.Context) error {
	return a.do(ctx, http.MethodGet, "/health", "", nil, nil, nil)
}

// Products — каталог, видимый персоне
func (a *API) Products(ctx context.Context, p domain.Persona) ([]domain.Product, error) {
	var out []domain.Product
	err := a.do(ctx, http.MethodGet, "/api/products", p, nil, nil, &out)
	return out, err
}

// Configure — расчёт позиции на сервере
func (a *API) Configure(ctx context.Context, p domain.Persona, productID string, d pricing.Draft) (domain.CartItem, error) {
	in := struct {
		ProductID string `json:"productId"`
		pricing.Draft
	}{productID, d}
	var out domain.CartItem
	err := a.do(ctx, http.MethodPost, "/api/pricing/configure", p, nil, in, &out)
	return out, err
}

// ListQuotes — GET /api/quotes
func (a *API) ListQuotes(ctx context.Context, p domain.Persona) ([]*domain.Quote, error) {
	var out []*domain.Quote
	err := a.do(ctx, http.MethodGet, "/api/quotes", p, nil, nil, &out)
	return out, err
}

// GetQuote — GET /api/quotes/{id}
func (a *API) GetQuote(ctx context.Context, p domain.Persona, id string) (*domain.Quote, error) {
	var out domain.Quote
	if err := a.do(ctx, http.MethodGet, "/api/quotes/"+url.PathEscape(id), p, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateQuote — POST /api/quotes
func (a *API) CreateQuote(ctx context.Context, p domain.Persona, customer domain.ContactDetails, items []domain.CartItem) (*domain.Quote, error) {
	in := map[string]interface{}{"customer": customer, "items": items}
	var out domain.Quote
	if err := a.do(ctx, http.MethodPost, "/api/quotes", p, nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateQuote — PUT /api/quotes/{id}
func (a *API) UpdateQuote(ctx context.Context, p domain.Persona, id string, patch quotes.Patch) (*domain.Quote, error) {
	var out domain.Quote
	if err := a.do(ctx, http.MethodPut, "/api/quotes/"+url.PathEscape(id), p, nil, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Notifications — GET /api/notifications
func (a *API) Notifications(ctx context.Context) ([]string, error) {
	var out []string
	err := a.do(ctx, http.MethodGet, "/api/notifications", "", nil, nil, &out)
	return out, err
}

// ListWorkflowRules — GET /api/admin/rules
func (a *API) ListWorkflowRules(ctx context.Context, p domain.Persona) ([]domain.WorkflowRule, error) {
	var out []domain.WorkflowRule
	err := a.do(ctx, http.MethodGet, "/api/admin/rules", p, nil, nil, &out)
	return out, err
}

// CreateWorkflowRule — POST /api/admin/rules
func (a *API) CreateWorkflowRule(ctx context.Context, p domain.Persona, r domain.WorkflowRule) (*domain.WorkflowRule, error) {
	var out domain.WorkflowRule
	if err := a.do(ctx, http.MethodPost, "/api/admin/rules", p, nil, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListConfigRules — GET /api/admin/config-rules
func (a *API) ListConfigRules(ctx context.Context, p domain.Persona) ([]domain.ConfigRule, error) {
	var out []domain.ConfigRule
	err := a.do(ctx, http.MethodGet, "/api/admin/config-rules", p, nil, nil, &out)
	return out, err
}

// CreateConfigRule — POST /api/admin/config-rules
func (a *API) CreateConfigRule(ctx context.Context, p domain.Persona, r domain.ConfigRule) (*domain.ConfigRule, error) {
	var out domain.ConfigRule
	if err := a.do(ctx, http.MethodPost, "/api/admin/config-rules", p, nil, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListUsers — GET /api/admin/users
func (a *API) ListUsers(ctx context.Context, p domain.Persona) ([]*domain.User, error) {
	var out []*domain.User
	err := a.do(ctx, http.MethodGet, "/api/admin/users", p, nil, nil, &out)
	return out, err
}

// CreateUser — POST /api/admin/users
func (a *API) CreateUser(ctx context.Context, p domain.Persona, name, email string, role domain.Persona) (*domain.User, error) {
	in := map[string]string{"name": name, "email": email, "role": string(role)}
	var out domain.User
	if err := a.do(ctx, http.MethodPost, "/api/admin/users", p, nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
