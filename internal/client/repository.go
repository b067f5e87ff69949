package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"pricepoint-backend/internal/domain"
	"pricepoint-backend/internal/notify"
	"pricepoint-backend/internal/pricing"
	"pricepoint-backend/internal/quotes"
	"pricepoint-backend/internal/store"
)

// LocalStore — локальная база клиента (КП в оффлайне и ключи сессии)
type LocalStore interface {
	store.QuoteRepository
	store.KV
}

// Repository — КП и каталог: через API, когда бэкенд доступен,
// иначе локально (статический каталог + локальная база).
type Repository struct {
	api     *API
	local   LocalStore
	calc    *pricing.Calculator
	feed    *notify.Feed
	log     *zap.Logger
	timeout time.Duration

	mu       sync.RWMutex
	active   bool
	products []domain.Product
	offline  *quotes.Service
}

// NewRepository собирает репозиторий. Пока не вызван Init, работает оффлайн.
func NewRepository(api *API, local LocalStore, calc *pricing.Calculator, timeout time.Duration, log *zap.Logger) *Repository {
	if log == nil {
		log = zap.NewNop()
	}
	if calc == nil {
		calc = pricing.New(pricing.ModeProduct, 0)
	}
	r := &Repository{
		api:      api,
		local:    local,
		calc:     calc,
		feed:     notify.NewFeed(),
		log:      log,
		timeout:  timeout,
		products: domain.DefaultProducts(),
	}
	r.offline = quotes.NewService(offlineStore{r}, calc, nil, log.Named("offline")).
		WithIDs(domain.NewLocalQuoteID)
	return r
}

// offlineStore — локальная база + статический каталог
type offlineStore struct{ r *Repository }

func (o offlineStore) ListProducts(context.Context) ([]domain.Product, error) {
	return domain.DefaultProducts(), nil
}
func (o offlineStore) ListQuotes(ctx context.Context) ([]*domain.Quote, error) {
	return o.r.local.ListQuotes(ctx)
}
func (o offlineStore) GetQuote(ctx context.Context, id string) (*domain.Quote, error) {
	return o.r.local.GetQuote(ctx, id)
}
func (o offlineStore) SaveQuote(ctx context.Context, q *domain.Quote) error {
	return o.r.local.SaveQuote(ctx, q)
}

// Init проверяет бэкенд: грузит каталог с таймаутом. Ошибка связи не ошибка
// Init, а переход в локальный режим.
func (r *Repository) Init(ctx context.Context, p domain.Persona) {
	if r.api == nil {
		r.setOffline()
		return
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	products, err := r.api.Products(ctx, p)
	if err != nil {
		r.log.Warn("backend not reachable, using local data", zap.Error(err))
		r.setOffline()
		return
	}

	r.mu.Lock()
	r.active = true
	r.products = products
	r.mu.Unlock()
	r.log.Debug("backend active", zap.Int("products", len(products)))
}

func (r *Repository) setOffline() {
	r.mu.Lock()
	r.active = false
	r.products = domain.DefaultProducts()
	r.mu.Unlock()
}

// BackendActive — работаем ли через API
func (r *Repository) BackendActive() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// Products — каталог с фильтрами витрины
func (r *Repository) Products(p domain.Persona, search, category string) []domain.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return domain.FilterProducts(p, r.products, search, category)
}

// Product — услуга по id, если видна персоне
func (r *Repository) Product(p domain.Persona, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	prod := domain.FindProduct(r.products, id)
	if prod == nil || !domain.ProductVisible(p, prod) {
		return nil, fmt.Errorf("%w: product %q", domain.ErrNotFound, id)
	}
	cp := *prod
	return &cp, nil
}

// Configure считает позицию локально по текущему каталогу
func (r *Repository) Configure(p domain.Persona, productID string, d pricing.Draft) (domain.CartItem, error) {
	prod, err := r.Product(p, productID)
	if err != nil {
		return domain.CartItem{}, err
	}
	return r.calc.Configure(prod, d)
}

// Notifications — уведомления этого клиента, новые сверху
func (r *Repository) Notifications() []string {
	return r.feed.List()
}

// isTransport — сбой связи или сервера, а не отказ по правилам
func isTransport(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500
	}
	return err != nil
}

// keepLocal сохраняет копию КП с бэкенда, чтобы с ним можно было работать
// после потери связи. Ошибка только логируется.
func (r *Repository) keepLocal(ctx context.Context, list ...*domain.Quote) {
	for _, q := range list {
		if err := r.local.SaveQuote(ctx, q); err != nil {
			r.log.Warn("save local copy", zap.String("id", q.ID), zap.Error(err))
		}
	}
}

// Quotes — список КП
func (r *Repository) Quotes(ctx context.Context, p domain.Persona) ([]*domain.Quote, error) {
	if r.BackendActive() {
		list, err := r.api.ListQuotes(ctx, p)
		if err == nil {
			r.keepLocal(ctx, list...)
			return list, nil
		}
		if !isTransport(err) {
			return nil, err
		}
		r.log.Warn("list quotes on backend failed, using local copy", zap.Error(err))
	}
	return r.offline.List(ctx, p)
}

// Quote — КП по id. Локальные КП (QT-LOC-*) всегда берутся из локальной базы.
func (r *Repository) Quote(ctx context.Context, p domain.Persona, id string) (*domain.Quote, error) {
	if r.BackendActive() && !domain.IsLocalQuoteID(id) {
		q, err := r.api.GetQuote(ctx, p, id)
		if err == nil {
			r.keepLocal(ctx, q)
			return q, nil
		}
		if !isTransport(err) {
			return nil, err
		}
		r.log.Warn("get quote on backend failed, using local copy", zap.String("id", id), zap.Error(err))
	}
	return r.offline.Get(ctx, p, id)
}

// CreateQuote оформляет КП. local=true, если КП сохранено только локально.
func (r *Repository) CreateQuote(ctx context.Context, p domain.Persona, customer domain.ContactDetails, items []domain.CartItem) (q *domain.Quote, local bool, err error) {
	if r.BackendActive() {
		q, err = r.api.CreateQuote(ctx, p, customer, items)
		if err == nil {
			r.keepLocal(ctx, q)
			r.feed.Notify(ctx, fmt.Sprintf("New quote %s created for %s", q.ID, customer.FullName))
			return q, false, nil
		}
		if !isTransport(err) {
			return nil, false, err
		}
		r.log.Warn("create quote on backend failed, saving locally", zap.Error(err))
	}

	q, err = r.offline.Create(ctx, p, customer, items)
	if err != nil {
		return nil, true, err
	}
	r.feed.Notify(ctx, fmt.Sprintf("Quote %s saved locally", q.ID))
	return q, true, nil
}

// UpdateQuote: при активном бэкенде сначала PUT (сбой связи только логируется),
// локальная копия пишется всегда.
func (r *Repository) UpdateQuote(ctx context.Context, p domain.Persona, id string, patch quotes.Patch) (*domain.Quote, error) {
	if r.BackendActive() && !domain.IsLocalQuoteID(id) {
		q, err := r.api.UpdateQuote(ctx, p, id, patch)
		switch {
		case err == nil:
			r.keepLocal(ctx, q)
			r.feed.Notify(ctx, fmt.Sprintf("Quote %s updated", q.ID))
			return q, nil
		case !isTransport(err):
			return nil, err
		default:
			r.log.Error("failed to update quote on backend", zap.String("id", id), zap.Error(err))
		}
	}

	q, err := r.offline.Update(ctx, p, id, patch)
	if err != nil {
		return nil, err
	}
	r.feed.Notify(ctx, fmt.Sprintf("Quote %s updated", q.ID))
	return q, nil
}

// Stats — сводка для дашборда
func (r *Repository) Stats(ctx context.Context, p domain.Persona) (domain.QuoteStats, error) {
	list, err := r.Quotes(ctx, p)
	if err != nil {
		return domain.QuoteStats{}, err
	}
	return domain.ComputeStats(list), nil
}

// WorkflowRules — правила согласования; оффлайн показываются стартовые
func (r *Repository) WorkflowRules(ctx context.Context, p domain.Persona) ([]domain.WorkflowRule, error) {
	if !r.BackendActive() {
		if !p.CanAdmin() {
			return nil, domain.ErrForbidden
		}
		return domain.DefaultWorkflowRules(), nil
	}
	return r.api.ListWorkflowRules(ctx, p)
}

// CreateWorkflowRule — только онлайн
func (r *Repository) CreateWorkflowRule(ctx context.Context, p domain.Persona, rule domain.WorkflowRule) (*domain.WorkflowRule, error) {
	if !r.BackendActive() {
		return nil, domain.ErrOffline
	}
	return r.api.CreateWorkflowRule(ctx, p, rule)
}

// ConfigRules — продуктовые правила; оффлайн показываются стартовые
func (r *Repository) ConfigRules(ctx context.Context, p domain.Persona) ([]domain.ConfigRule, error) {
	if !r.BackendActive() {
		if !p.CanAdmin() {
			return nil, domain.ErrForbidden
		}
		return domain.DefaultConfigRules(), nil
	}
	return r.api.ListConfigRules(ctx, p)
}

// CreateConfigRule — только онлайн
func (r *Repository) CreateConfigRule(ctx context.Context, p domain.Persona, rule domain.ConfigRule) (*domain.ConfigRule, error) {
	if !r.BackendActive() {
		return nil, domain.ErrOffline
	}
	return r.api.CreateConfigRule(ctx, p, rule)
}

// Users — справочник сотрудников; оффлайн показываются демо-пользователи
func (r *Repository) Users(ctx context.Context, p domain.Persona) ([]*domain.User, error) {
	if !r.BackendActive() {
		if !p.CanAdmin() {
			return nil, domain.ErrForbidden
		}
		return domain.MockUsers(), nil
	}
	return r.api.ListUsers(ctx, p)
}

// CreateUser — только онлайн
func (r *Repository) CreateUser(ctx context.Context, p domain.Persona, name, email string, role domain.Persona) (*domain.User, error) {
	if !r.BackendActive() {
		return nil, domain.ErrOffline
	}
	return r.api.CreateUser(ctx, p, name, email, role)
}
