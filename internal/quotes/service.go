// Package quotes — жизненный цикл КП: корзина → КП → статусы.
package quotes

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"pricepoint-backend/internal/domain"
	"pricepoint-backend/internal/notify"
	"pricepoint-backend/internal/pricing"
)

// Store — то, что сервису нужно от хранилища
type Store interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	ListQuotes(ctx context.Context) ([]*domain.Quote, error)
	GetQuote(ctx context.Context, id string) (*domain.Quote, error)
	SaveQuote(ctx context.Context, q *domain.Quote) error
}

// Service создаёт и обновляет КП
type Service struct {
	store    Store
	calc     *pricing.Calculator
	notifier notify.Notifier
	log      *zap.Logger

	// подменяются в тестах и в оффлайн-режиме клиента
	now   func() time.Time
	newID func() string
}

// NewService собирает сервис. notifier и log могут быть nil.
func NewService(st Store, calc *pricing.Calculator, notifier notify.Notifier, log *zap.Logger) *Service {
	if calc == nil {
		calc = pricing.New(pricing.ModeProduct, 0)
	}
	if notifier == nil {
		notifier = notify.Multi(nil)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:    st,
		calc:     calc,
		notifier: notifier,
		log:      log,
		now:      time.Now,
		newID:    domain.NewQuoteID,
	}
}

// WithIDs задаёт генератор ID новых КП (например, QT-LOC-NNNN для локальных)
func (s *Service) WithIDs(gen func() string) *Service {
	s.newID = gen
	return s
}

// Create оформляет корзину в КП со статусом DRAFT. Цены пересчитываются
// по каталогу, присланные клиентом цены игнорируются.
func (s *Service) Create(ctx context.Context, p domain.Persona, customer domain.ContactDetails, items []domain.CartItem) (*domain.Quote, error) {
	if err := customer.Validate(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	for _, it := range items {
		prod := domain.FindProduct(products, it.ProductID)
		if prod != nil && !domain.ProductVisible(p, prod) {
			return nil, fmt.Errorf("%w: product %s", domain.ErrForbidden, it.ProductID)
		}
	}
	priced, err := s.calc.Reprice(products, items)
	if err != nil {
		return nil, err
	}

	token := domain.GeneratePublicToken()
	q := &domain.Quote{
		ID:            s.newID(),
		Customer:      customer,
		Items:         priced,
		TotalEstimate: pricing.Round(pricing.Total(priced)),
		Status:        domain.QuoteStatusDraft,
		CreatedAt:     s.now().UTC(),
		CreatedBy:     p,
		PublicToken:   token,
	}
	q.PublicPath = domain.QuotePublicPath(q.ID, token)

	if err := s.store.SaveQuote(ctx, q); err != nil {
		return nil, fmt.Errorf("save quote: %w", err)
	}

	s.log.Info("quote created",
		zap.String("id", q.ID),
		zap.String("persona", string(p)),
		zap.Int("items", len(q.Items)),
		zap.Float64("total", q.TotalEstimate),
	)
	s.notifier.Notify(ctx, fmt.Sprintf("New quote %s created for %s", q.ID, customer.FullName))
	return q, nil
}

// List — КП, видимые персоне, новые сверху
func (s *Service) List(ctx context.Context, p domain.Persona) ([]*domain.Quote, error) {
	all, err := s.store.ListQuotes(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Quote, 0, len(all))
	for _, q := range all {
		if domain.QuoteVisible(p, q) {
			out = append(out, q)
		}
	}
	return out, nil
}

// Get — КП по id. Невидимое КП выглядит как отсутствующее.
func (s *Service) Get(ctx context.Context, p domain.Persona, id string) (*domain.Quote, error) {
	q, err := s.store.GetQuote(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.QuoteVisible(p, q) {
		return nil, domain.ErrNotFound
	}
	return q, nil
}

// Patch — изменяемые поля КП; nil = не менять
type Patch struct {
	Status        *domain.QuoteStatus    `json:"status,omitempty"`
	DiscountValue *float64               `json:"discountValue,omitempty"`
	AssignedTo    *string                `json:"assignedTo,omitempty"`
	Customer      *domain.ContactDetails `json:"customer,omitempty"`
}

// Update применяет патч с проверкой прав и переходов статуса.
func (s *Service) Update(ctx context.Context, p domain.Persona, id string, patch Patch) (*domain.Quote, error) {
	q, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanEditQuote(p, q) {
		return nil, fmt.Errorf("%w: %s cannot edit quote %s", domain.ErrForbidden, p, id)
	}

	if patch.Status != nil {
		to, ok := domain.ParseQuoteStatus(string(*patch.Status))
		if !ok {
			return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, *patch.Status)
		}
		if !domain.CanTransition(q.Status, to) {
			return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, q.Status, to)
		}
		if to != q.Status && (to == domain.QuoteStatusApproved || to == domain.QuoteStatusRejected) && !p.CanApprove() {
			return nil, fmt.Errorf("%w: %s cannot set %s", domain.ErrForbidden, p, to)
		}
		q.Status = to
	}

	if patch.DiscountValue != nil {
		if !p.IsInternal() {
			return nil, fmt.Errorf("%w: discount requires an internal persona", domain.ErrForbidden)
		}
		d := *patch.DiscountValue
		if d < 0 || d > q.TotalEstimate {
			return nil, fmt.Errorf("%w: discount must be within [0, %.2f]", domain.ErrInvalidInput, q.TotalEstimate)
		}
		q.DiscountValue = pricing.Round(d)
	}

	if patch.AssignedTo != nil {
		if !p.IsInternal() {
			return nil, fmt.Errorf("%w: assignment requires an internal persona", domain.ErrForbidden)
		}
		q.AssignedTo = *patch.AssignedTo
	}

	if patch.Customer != nil {
		if err := patch.Customer.Validate(); err != nil {
			return nil, err
		}
		q.Customer = *patch.Customer
	}

	if err := s.store.SaveQuote(ctx, q); err != nil {
		return nil, fmt.Errorf("save quote: %w", err)
	}

	s.log.Info("quote updated", zap.String("id", q.ID), zap.String("status", string(q.Status)))
	s.notifier.Notify(ctx, fmt.Sprintf("Quote %s updated", q.ID))
	return q, nil
}

// Stats — сводка по видимым персоне КП
func (s *Service) Stats(ctx context.Context, p domain.Persona) (domain.QuoteStats, error) {
	list, err := s.List(ctx, p)
	if err != nil {
		return domain.QuoteStats{}, err
	}
	return domain.ComputeStats(list), nil
}
