package store

import (
	"context"
	"time"

	"pricepoint-backend/internal/domain"
)

// ListWorkflowRules — правила согласования в порядке создания
func (s *Store) ListWorkflowRules(ctx context.Context) ([]domain.WorkflowRule, error) {
	rows, err := s.query(ctx, `
SELECT id, name, condition, threshold, approver
FROM workflow_rules
ORDER BY created_at ASC, id ASC;
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.WorkflowRule{}
	for rows.Next() {
		var (
			r        domain.WorkflowRule
			approver string
		)
		if err := rows.Scan(&r.ID, &r.Name, &r.Condition, &r.Threshold, &approver); err != nil {
			return nil, err
		}
		r.Approver = domain.Persona(approver)
		out = append(out, r)
	}
	return out, rows.Err()
}

// CreateWorkflowRule добавляет правило; пустой ID генерируется.
func (s *Store) CreateWorkflowRule(ctx context.Context, r *domain.WorkflowRule) error {
	if r.ID == "" {
		r.ID = domain.NewShortID()
	}
	_, err := s.exec(ctx, `
INSERT INTO workflow_rules (id, name, condition, threshold, approver, created_at)
VALUES (?, ?, ?, ?, ?, ?);
`, r.ID, r.Name, r.Condition, r.Threshold, string(r.Approver), formatTime(time.Now()))
	return err
}

// ListConfigRules — продуктовые правила в порядке создания
func (s *Store) ListConfigRules(ctx context.Context) ([]domain.ConfigRule, error) {
	rows, err := s.query(ctx, `
SELECT id, name, product_id, trigger_config, trigger_value, restricted_config, action
FROM config_rules
ORDER BY created_at ASC, id ASC;
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.ConfigRule{}
	for rows.Next() {
		var r domain.ConfigRule
		if err := rows.Scan(
			&r.ID,
			&r.Name,
			&r.ProductID,
			&r.TriggerConfig,
			&r.TriggerValue,
			&r.RestrictedConfig,
			&r.Action,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CreateConfigRule добавляет продуктовое правило; пустой ID генерируется.
func (s *Store) CreateConfigRule(ctx context.Context, r *domain.ConfigRule) error {
	if r.ID == "" {
		r.ID = domain.NewShortID()
	}
	_, err := s.exec(ctx, `
INSERT INTO config_rules (id, name, product_id, trigger_config, trigger_value, restricted_config, action, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?);
`, r.ID, r.Name, r.ProductID, r.TriggerConfig, r.TriggerValue, r.RestrictedConfig, r.Action, formatTime(time.Now()))
	return err
}
