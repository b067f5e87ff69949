package store

import (
	"context"

	"pricepoint-backend/internal/domain"
)

// CatalogRepository — каталог услуг
type CatalogRepository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	SaveProduct(ctx context.Context, p *domain.Product, position int) error
}

// QuoteRepository — хранилище КП
type QuoteRepository interface {
	ListQuotes(ctx context.Context) ([]*domain.Quote, error)
	GetQuote(ctx context.Context, id string) (*domain.Quote, error)
	SaveQuote(ctx context.Context, q *domain.Quote) error
}

// RuleRepository — правила согласования и продуктовые правила
type RuleRepository interface {
	ListWorkflowRules(ctx context.Context) ([]domain.WorkflowRule, error)
	CreateWorkflowRule(ctx context.Context, r *domain.WorkflowRule) error
	ListConfigRules(ctx context.Context) ([]domain.ConfigRule, error)
	CreateConfigRule(ctx context.Context, r *domain.ConfigRule) error
}

// UserRepository — справочник сотрудников
type UserRepository interface {
	ListUsers(ctx context.Context) ([]*domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	CreateUser(ctx context.Context, u *domain.User) error
	UpdateUser(ctx context.Context, u *domain.User) error
	DeleteUser(ctx context.Context, id string) error
	SetUserPassword(ctx context.Context, id, password string) error
}

// SettingsRepository — одна строка настроек (id = 1)
type SettingsRepository interface {
	LoadSettings(ctx context.Context) (*domain.Settings, error)
	SaveSettings(ctx context.Context, s *domain.Settings) error
}

// KV — локальные ключи сессии (pp_persona, pp_cart)
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

var (
	_ CatalogRepository  = (*Store)(nil)
	_ QuoteRepository    = (*Store)(nil)
	_ RuleRepository     = (*Store)(nil)
	_ UserRepository     = (*Store)(nil)
	_ SettingsRepository = (*Store)(nil)
	_ KV                 = (*Store)(nil)
)
