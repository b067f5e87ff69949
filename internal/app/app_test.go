package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pricepoint-backend/internal/config"
	"pricepoint-backend/internal/domain"
	"pricepoint-backend/internal/handlers"
	"pricepoint-backend/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv, _ := newTestServerWithStore(t)
	return srv
}

func newTestServerWithStore(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "")

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Database = config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"}

	st, err := OpenStore(context.Background(), cfg.Database, true, zapNop())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	srv := httptest.NewServer(New(st, cfg, nil).Router())
	t.Cleanup(srv.Close)
	return srv, st
}

func do(t *testing.T, method, url string, body interface{}) (int, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func TestHealthAndCORS(t *testing.T) {
	srv := newTestServer(t)

	code, body := do(t, http.MethodGet, srv.URL+"/health", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/quotes", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), handlers.PersonaHeader)
}

func TestProducts(t *testing.T) {
	srv := newTestServer(t)

	var list []domain.Product
	code, body := do(t, http.MethodGet, srv.URL+"/api/products", nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Len(t, list, 3)

	code, body = do(t, http.MethodGet, srv.URL+"/api/products?as=PRESALES&search=gpu", nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "adv-gpu", list[0].ID)

	code, _ = do(t, http.MethodGet, srv.URL+"/api/products/adv-gpu", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, http.MethodGet, srv.URL+"/api/products/adv-gpu?as=SALES_ADMIN", nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = do(t, http.MethodGet, srv.URL+"/api/products?as=ROOT", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	var cats []string
	code, body = do(t, http.MethodGet, srv.URL+"/api/categories", nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(body, &cats))
	assert.Contains(t, cats, "Compute")
}

func TestConfigure(t *testing.T) {
	srv := newTestServer(t)

	var item domain.CartItem
	code, body := do(t, http.MethodPost, srv.URL+"/api/pricing/configure", map[string]interface{}{
		"productId":       "vm-basic",
		"quantity":        2,
		"selectedConfigs": map[string]interface{}{"Operating System": "windows", "Instance Configuration": "large"},
		"selectedAddons":  []string{"backup", "monitoring"},
	})
	require.Equal(t, http.StatusOK, code, string(body))
	require.NoError(t, json.Unmarshal(body, &item))
	assert.InDelta(t, 325.0, item.UnitPrice, 0.001)
	assert.InDelta(t, 650.0, item.TotalPrice, 0.001)

	code, _ = do(t, http.MethodPost, srv.URL+"/api/pricing/configure", map[string]interface{}{
		"productId":       "storage-blob",
		"selectedConfigs": map[string]interface{}{"Capacity (GB)": 0},
	})
	assert.Equal(t, http.StatusBadRequest, code)

	for _, bad := range []string{"NaN", "Inf"} {
		code, body = do(t, http.MethodPost, srv.URL+"/api/pricing/configure", map[string]interface{}{
			"productId":       "storage-blob",
			"selectedConfigs": map[string]interface{}{"Capacity (GB)": bad},
		})
		assert.Equal(t, http.StatusBadRequest, code, bad)
		assert.Contains(t, string(body), "must be a number", bad)
	}

	code, _ = do(t, http.MethodPost, srv.URL+"/api/pricing/configure", map[string]interface{}{"productId": "adv-gpu"})
	assert.Equal(t, http.StatusNotFound, code)

	code, body = do(t, http.MethodGet, srv.URL+"/api/pricing/configure", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, code, string(body))
}

func TestQuoteLifecycle(t *testing.T) {
	srv := newTestServer(t)

	req := map[string]interface{}{
		"customer": domain.ContactDetails{FullName: "Jane Roe", Organization: "Initech", Mobile: "1", Email: "jane@initech.io"},
		"items": []domain.CartItem{{
			ID:        "abc123xyz",
			ProductID: "db-postgres",
			Quantity:  2,
			// клиентские цены игнорируются
			UnitPrice:      1,
			TotalPrice:     2,
			SelectedAddons: []string{"ha"},
		}},
	}

	var q domain.Quote
	code, body := do(t, http.MethodPost, srv.URL+"/api/quotes", req)
	require.Equal(t, http.StatusCreated, code, string(body))
	require.NoError(t, json.Unmarshal(body, &q))
	assert.Equal(t, domain.QuoteStatusDraft, q.Status)
	assert.InDelta(t, 260.0, q.TotalEstimate, 0.001)
	require.NotEmpty(t, q.PublicPath)

	// PUBLIC видит только свои
	var list []domain.Quote
	_, body = do(t, http.MethodGet, srv.URL+"/api/quotes", nil)
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Len(t, list, 1)

	_, body = do(t, http.MethodGet, srv.URL+"/api/quotes?as=SALES_MANAGER", nil)
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Len(t, list, 2)

	code, _ = do(t, http.MethodPut, srv.URL+"/api/quotes/"+q.ID+"?as=PRESALES", map[string]string{"status": "APPROVED"})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = do(t, http.MethodPut, srv.URL+"/api/quotes/"+q.ID+"?as=PRESALES", map[string]string{"status": "PENDING_APPROVAL"})
	assert.Equal(t, http.StatusOK, code)

	code, _ = do(t, http.MethodPut, srv.URL+"/api/quotes/"+q.ID+"?as=PRESALES", map[string]string{"status": "APPROVED"})
	assert.Equal(t, http.StatusForbidden, code)

	code, body = do(t, http.MethodPut, srv.URL+"/api/quotes/"+q.ID+"?as=SALES_MANAGER", map[string]interface{}{
		"status":        "APPROVED",
		"discountValue": 60,
	})
	require.Equal(t, http.StatusOK, code, string(body))
	require.NoError(t, json.Unmarshal(body, &q))
	assert.Equal(t, domain.QuoteStatusApproved, q.Status)
	assert.InDelta(t, 200.0, q.NetTotal(), 0.001)

	code, _ = do(t, http.MethodGet, srv.URL+"/api/quotes/"+q.ID, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = do(t, http.MethodGet, srv.URL+"/api/quotes/QT-DEMO1", nil)
	assert.Equal(t, http.StatusNotFound, code)

	var stats domain.QuoteStats
	code, body = do(t, http.MethodGet, srv.URL+"/api/quotes/stats?as=SALES_ADMIN", nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(body, &stats))
	assert.Equal(t, 2, stats.Total)
	code, _ = do(t, http.MethodGet, srv.URL+"/api/quotes/stats", nil)
	assert.Equal(t, http.StatusForbidden, code)

	var notes []string
	_, body = do(t, http.MethodGet, srv.URL+"/api/notifications", nil)
	require.NoError(t, json.Unmarshal(body, &notes))
	require.Len(t, notes, 3)
	assert.Equal(t, "Quote "+q.ID+" updated", notes[0])
	assert.Equal(t, "New quote "+q.ID+" created for Jane Roe", notes[2])

	t.Run("printable page", func(t *testing.T) {
		code, body := do(t, http.MethodGet, srv.URL+q.PublicPath, nil)
		require.Equal(t, http.StatusOK, code)
		page := string(body)
		assert.Contains(t, page, "Quote "+q.ID)
		assert.Contains(t, page, "PostgreSQL Database")
		assert.Contains(t, page, "$200.00")

		code, _ = do(t, http.MethodGet, srv.URL+"/p/"+q.ID+"/wrong", nil)
		assert.Equal(t, http.StatusNotFound, code)
	})
}

func TestCreateQuoteErrors(t *testing.T) {
	srv := newTestServer(t)

	code, _ := do(t, http.MethodPost, srv.URL+"/api/quotes", map[string]interface{}{
		"customer": domain.ContactDetails{FullName: "A", Organization: "B", Mobile: "1", Email: "a@b.io"},
		"items":    []domain.CartItem{},
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body := do(t, http.MethodPost, srv.URL+"/api/quotes", map[string]interface{}{
		"customer": domain.ContactDetails{FullName: "A", Organization: "B", Mobile: "1", Email: "a@b.io"},
		"items": []map[string]interface{}{{
			"id": "item1", "productId": "storage-blob", "quantity": 1,
			"selectedConfigs": map[string]interface{}{"Capacity (GB)": "NaN"},
		}},
	})
	assert.Equal(t, http.StatusBadRequest, code, string(body))

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/quotes", strings.NewReader("{"))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(b), "bad json")
}

func TestMe(t *testing.T) {
	srv := newTestServer(t)

	var me handlers.MeResponse
	_, body := do(t, http.MethodGet, srv.URL+"/api/me", nil)
	require.NoError(t, json.Unmarshal(body, &me))
	assert.Equal(t, domain.PersonaPublic, me.Persona)
	assert.Equal(t, []string{"products"}, me.Sections)
	assert.Nil(t, me.Stats)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/me", nil)
	req.Header.Set(handlers.PersonaHeader, "SALES_ADMIN")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&me))
	assert.Equal(t, "SALES ADMIN", me.Label)
	assert.Equal(t, []string{"products", "dashboard", "admin"}, me.Sections)
	require.NotNil(t, me.Stats)
	assert.Equal(t, 1, me.Stats.Total)
}

func TestAdmin(t *testing.T) {
	srv, st := newTestServerWithStore(t)
	admin := "?as=SALES_ADMIN"

	code, _ := do(t, http.MethodGet, srv.URL+"/api/admin/rules?as=SALES_MANAGER", nil)
	assert.Equal(t, http.StatusForbidden, code)

	t.Run("workflow rules", func(t *testing.T) {
		var rule domain.WorkflowRule
		code, body := do(t, http.MethodPost, srv.URL+"/api/admin/rules"+admin, domain.WorkflowRule{
			ID: "ignored", Name: "Big item", Condition: domain.ConditionItemValue, Threshold: 9000, Approver: domain.PersonaSalesManager,
		})
		require.Equal(t, http.StatusCreated, code, string(body))
		require.NoError(t, json.Unmarshal(body, &rule))
		assert.Len(t, rule.ID, 8)

		var list []domain.WorkflowRule
		_, body = do(t, http.MethodGet, srv.URL+"/api/admin/rules"+admin, nil)
		require.NoError(t, json.Unmarshal(body, &list))
		assert.Len(t, list, 3)

		code, _ = do(t, http.MethodPost, srv.URL+"/api/admin/rules"+admin, domain.WorkflowRule{Name: "x", Condition: "weather"})
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("config rules", func(t *testing.T) {
		code, _ := do(t, http.MethodPost, srv.URL+"/api/admin/config-rules"+admin, domain.ConfigRule{
			Name: "r", ProductID: "nope", Action: domain.RuleActionDisable,
		})
		assert.Equal(t, http.StatusBadRequest, code)

		code, _ = do(t, http.MethodPost, srv.URL+"/api/admin/config-rules"+admin, domain.ConfigRule{
			Name: "r", ProductID: "db-postgres", TriggerConfig: "Tier", TriggerValue: "premium", RestrictedConfig: "High Availability", Action: domain.RuleActionRequire,
		})
		assert.Equal(t, http.StatusCreated, code)

		var list []domain.ConfigRule
		_, body := do(t, http.MethodGet, srv.URL+"/api/admin/config-rules"+admin, nil)
		require.NoError(t, json.Unmarshal(body, &list))
		assert.Len(t, list, 2)
	})

	t.Run("users", func(t *testing.T) {
		var u domain.User
		code, body := do(t, http.MethodPost, srv.URL+"/api/admin/users"+admin, map[string]string{
			"name": "Kim", "email": "kim@pricepoint.com", "role": "PRESALES",
		})
		require.Equal(t, http.StatusCreated, code, string(body))
		require.NoError(t, json.Unmarshal(body, &u))

		code, _ = do(t, http.MethodPost, srv.URL+"/api/admin/users"+admin, map[string]string{
			"name": "Eve", "email": "eve@x.io", "role": "PUBLIC",
		})
		assert.Equal(t, http.StatusBadRequest, code)

		code, body = do(t, http.MethodPut, srv.URL+"/api/admin/users/"+u.ID+admin, map[string]string{"role": "SALES_MANAGER"})
		require.Equal(t, http.StatusOK, code)
		require.NoError(t, json.Unmarshal(body, &u))
		assert.Equal(t, domain.PersonaSalesManager, u.Role)

		code, _ = do(t, http.MethodPost, srv.URL+"/api/admin/users/"+u.ID+"/password"+admin, map[string]string{"password": "s3cret!"})
		assert.Equal(t, http.StatusOK, code)
		code, _ = do(t, http.MethodPost, srv.URL+"/api/admin/users/"+u.ID+"/password"+admin, map[string]string{"password": strings.Repeat("x", 73)})
		assert.Equal(t, http.StatusBadRequest, code)

		// u1 — единственный SALES_ADMIN
		code, _ = do(t, http.MethodDelete, srv.URL+"/api/admin/users/u1"+admin, nil)
		assert.Equal(t, http.StatusBadRequest, code)

		code, _ = do(t, http.MethodDelete, srv.URL+"/api/admin/users/"+u.ID+admin, nil)
		assert.Equal(t, http.StatusNoContent, code)
		code, _ = do(t, http.MethodDelete, srv.URL+"/api/admin/users/"+u.ID+admin, nil)
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("settings", func(t *testing.T) {
		var s handlers.AdminSettings
		code, body := do(t, http.MethodPost, srv.URL+"/api/admin/settings"+admin, handlers.AdminSettings{
			TelegramBotToken: "123456:ABCDEF", TelegramChatID: "-100",
		})
		require.Equal(t, http.StatusOK, code)
		require.NoError(t, json.Unmarshal(body, &s))
		assert.Equal(t, "123*******DEF", s.TelegramBotToken)
		assert.Equal(t, "-100", s.TelegramChatID)

		// форма отправляет обратно то, что получила в GET
		code, body = do(t, http.MethodGet, srv.URL+"/api/admin/settings"+admin, nil)
		require.Equal(t, http.StatusOK, code)
		require.NoError(t, json.Unmarshal(body, &s))
		s.TelegramChatID = "-200"
		code, _ = do(t, http.MethodPost, srv.URL+"/api/admin/settings"+admin, s)
		require.Equal(t, http.StatusOK, code)

		stored, err := st.LoadSettings(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "123456:ABCDEF", stored.TelegramBotToken)
		assert.Equal(t, "-200", stored.TelegramChatID)

		code, _ = do(t, http.MethodPost, srv.URL+"/api/admin/settings"+admin, handlers.AdminSettings{TelegramBotToken: "654321:NEWTOKEN"})
		require.Equal(t, http.StatusOK, code)
		stored, err = st.LoadSettings(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "654321:NEWTOKEN", stored.TelegramBotToken)
	})
}

func zapNop() *zap.Logger { return zap.NewNop() }
