package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/http/httputil"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricepoint-backend/internal/app"
	"pricepoint-backend/internal/config"
	"pricepoint-backend/internal/domain"
	"pricepoint-backend/internal/pricing"
	"pricepoint-backend/internal/quotes"
	"pricepoint-backend/internal/store"
)

var contact = domain.ContactDetails{FullName: "Jane Roe", Organization: "Initech", Mobile: "1", Email: "jane@initech.io"}

func backend(t *testing.T) *httptest.Server {
	t.Helper()
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "")
	cfg, err := config.Load("")
	require.NoError(t, err)

	st, err := store.Open(context.Background(), store.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	_, err = st.Seed(context.Background())
	require.NoError(t, err)

	srv := httptest.NewServer(app.New(st, cfg, nil).Router())
	t.Cleanup(srv.Close)
	return srv
}

func localStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(context.Background(), store.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func vmItem() domain.CartItem {
	return domain.CartItem{ID: "item00001", ProductID: "vm-basic", Quantity: 1}
}

func TestRepository_Online(t *testing.T) {
	srv := backend(t)
	ctx := context.Background()
	local := localStore(t)

	repo := NewRepository(NewAPI(srv.URL, time.Second), local, nil, time.Second, nil)
	repo.Init(ctx, domain.PersonaSalesManager)
	require.True(t, repo.BackendActive())
	assert.Len(t, repo.Products(domain.PersonaSalesManager, "", ""), 4)

	q, isLocal, err := repo.CreateQuote(ctx, domain.PersonaSalesManager, contact, []domain.CartItem{vmItem()})
	require.NoError(t, err)
	assert.False(t, isLocal)
	assert.Regexp(t, `^QT-[0-9A-F]{5}$`, q.ID)

	st := domain.QuoteStatusPendingApproval
	updated, err := repo.UpdateQuote(ctx, domain.PersonaSalesManager, q.ID, quotes.Patch{Status: &st})
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusPendingApproval, updated.Status)

	// локальная копия пишется всегда
	cached, err := local.GetQuote(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusPendingApproval, cached.Status)

	// отказ по правилам не уходит в локальный режим
	bad := domain.QuoteStatusDraft
	_, err = repo.UpdateQuote(ctx, domain.PersonaSalesManager, q.ID, quotes.Patch{Status: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	list, err := repo.Quotes(ctx, domain.PersonaSalesManager)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	stats, err := repo.Stats(ctx, domain.PersonaSalesManager)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Pending)

	rule, err := repo.CreateWorkflowRule(ctx, domain.PersonaSalesAdmin, domain.WorkflowRule{
		Name: "x", Condition: domain.ConditionTotalValue, Threshold: 1, Approver: domain.PersonaSalesAdmin,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, rule.ID)

	_, err = repo.Users(ctx, domain.PersonaPresales)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	assert.Equal(t, []string{
		"Quote " + q.ID + " updated",
		"New quote " + q.ID + " created for Jane Roe",
	}, repo.Notifications())
}

func TestRepository_Offline(t *testing.T) {
	ctx := context.Background()
	local := localStore(t)

	// порт 1 никто не слушает
	repo := NewRepository(NewAPI("http://127.0.0.1:1", 200*time.Millisecond), local, pricing.New(pricing.ModeProduct, 0), 200*time.Millisecond, nil)
	repo.Init(ctx, domain.PersonaPublic)
	require.False(t, repo.BackendActive())

	assert.Len(t, repo.Products(domain.PersonaPublic, "", ""), 3)

	q, isLocal, err := repo.CreateQuote(ctx, domain.PersonaPublic, contact, []domain.CartItem{vmItem()})
	require.NoError(t, err)
	assert.True(t, isLocal)
	assert.True(t, domain.IsLocalQuoteID(q.ID))
	assert.InDelta(t, 50.0, q.TotalEstimate, 0.001)

	got, err := repo.Quote(ctx, domain.PersonaPublic, q.ID)
	require.NoError(t, err)
	assert.Equal(t, q.ID, got.ID)

	final := domain.QuoteStatusFinal
	updated, err := repo.UpdateQuote(ctx, domain.PersonaPublic, q.ID, quotes.Patch{Status: &final})
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusFinal, updated.Status)

	_, err = repo.CreateUser(ctx, domain.PersonaSalesAdmin, "a", "a@b.io", domain.PersonaPresales)
	assert.ErrorIs(t, err, domain.ErrOffline)
	_, err = repo.CreateConfigRule(ctx, domain.PersonaSalesAdmin, domain.ConfigRule{})
	assert.ErrorIs(t, err, domain.ErrOffline)

	users, err := repo.Users(ctx, domain.PersonaSalesAdmin)
	require.NoError(t, err)
	assert.Len(t, users, 3)

	assert.Equal(t, "Quote "+q.ID+" saved locally", repo.Notifications()[1])
}

func TestRepository_FallbackOnServerError(t *testing.T) {
	ctx := context.Background()
	var fail atomic.Bool
	target, err := url.Parse(backend(t).URL)
	require.NoError(t, err)
	rp := httputil.NewSingleHostReverseProxy(target)
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.Error(w, "boom", http.StatusBadGateway)
			return
		}
		rp.ServeHTTP(w, r)
	}))
	defer proxy.Close()

	repo := NewRepository(NewAPI(proxy.URL, time.Second), localStore(t), nil, time.Second, nil)
	repo.Init(ctx, domain.PersonaPresales)
	require.True(t, repo.BackendActive())

	fail.Store(true)
	q, isLocal, err := repo.CreateQuote(ctx, domain.PersonaPresales, contact, []domain.CartItem{vmItem()})
	require.NoError(t, err)
	assert.True(t, isLocal)
	assert.True(t, domain.IsLocalQuoteID(q.ID))
}

func TestRepository_UpdateAfterBackendLost(t *testing.T) {
	ctx := context.Background()
	srv := backend(t)
	local := localStore(t)

	repo := NewRepository(NewAPI(srv.URL, time.Second), local, nil, time.Second, nil)
	repo.Init(ctx, domain.PersonaSalesManager)
	require.True(t, repo.BackendActive())

	q, isLocal, err := repo.CreateQuote(ctx, domain.PersonaSalesManager, contact, []domain.CartItem{vmItem()})
	require.NoError(t, err)
	require.False(t, isLocal)

	cached, err := local.GetQuote(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusDraft, cached.Status)

	// список и карточка тоже оставляют копию
	_, err = repo.Quotes(ctx, domain.PersonaSalesManager)
	require.NoError(t, err)
	_, err = local.GetQuote(ctx, "QT-DEMO1")
	require.NoError(t, err)

	srv.Close()

	final := domain.QuoteStatusFinal
	updated, err := repo.UpdateQuote(ctx, domain.PersonaSalesManager, q.ID, quotes.Patch{Status: &final})
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusFinal, updated.Status)

	cached, err = local.GetQuote(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusFinal, cached.Status)

	got, err := repo.Quote(ctx, domain.PersonaSalesManager, q.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusFinal, got.Status)
}

func TestAPIError(t *testing.T) {
	err := &APIError{Status: http.StatusForbidden, Message: "forbidden"}
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, "api: 403 forbidden", err.Error())
	assert.False(t, isTransport(err))
	assert.True(t, isTransport(&APIError{Status: 502}))
}
