package store

import (
	"context"

	"pricepoint-backend/internal/domain"
)

// SeedReport — сколько записей добавлено в пустые таблицы
type SeedReport struct {
	Products      int
	WorkflowRules int
	ConfigRules   int
	Users         int
	Quotes        int
}

// Seed заполняет пустые таблицы стартовыми данными.
// Непустые таблицы не трогает.
func (s *Store) Seed(ctx context.Context) (SeedReport, error) {
	var rep SeedReport

	if n, err := s.count(ctx, "products"); err != nil {
		return rep, err
	} else if n == 0 {
		for i, p := range domain.DefaultProducts() {
			p := p
			if err := s.SaveProduct(ctx, &p, i); err != nil {
				return rep, err
			}
			rep.Products++
		}
	}

	if n, err := s.count(ctx, "workflow_rules"); err != nil {
		return rep, err
	} else if n == 0 {
		for _, r := range domain.DefaultWorkflowRules() {
			r := r
			if err := s.CreateWorkflowRule(ctx, &r); err != nil {
				return rep, err
			}
			rep.WorkflowRules++
		}
	}

	if n, err := s.count(ctx, "config_rules"); err != nil {
		return rep, err
	} else if n == 0 {
		for _, r := range domain.DefaultConfigRules() {
			r := r
			if err := s.CreateConfigRule(ctx, &r); err != nil {
				return rep, err
			}
			rep.ConfigRules++
		}
	}

	if n, err := s.count(ctx, "users"); err != nil {
		return rep, err
	} else if n == 0 {
		for _, u := range domain.MockUsers() {
			if err := s.CreateUser(ctx, u); err != nil {
				return rep, err
			}
			rep.Users++
		}
	}

	if n, err := s.count(ctx, "quotes"); err != nil {
		return rep, err
	} else if n == 0 {
		for _, q := range domain.DemoQuotes() {
			if err := s.SaveQuote(ctx, q); err != nil {
				return rep, err
			}
			rep.Quotes++
		}
	}

	return rep, nil
}
