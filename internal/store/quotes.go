package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"pricepoint-backend/internal/domain"
)

const quoteColumns = `id, customer, items, total_estimate, status, created_at,
       created_by, assigned_to, discount_value, public_token`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanQuote(r rowScanner) (*domain.Quote, error) {
	var (
		q        domain.Quote
		customer string
		items    string
		status   string
		by       string
	)
	if err := r.Scan(
		&q.ID,
		&customer,
		&items,
		&q.TotalEstimate,
		&status,
		timeValue{&q.CreatedAt},
		&by,
		&q.AssignedTo,
		&q.DiscountValue,
		&q.PublicToken,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(customer), &q.Customer); err != nil {
		return nil, fmt.Errorf("decode customer of %s: %w", q.ID, err)
	}
	if err := json.Unmarshal([]byte(items), &q.Items); err != nil {
		return nil, fmt.Errorf("decode items of %s: %w", q.ID, err)
	}
	if q.Items == nil {
		q.Items = []domain.CartItem{}
	}
	q.Status = domain.QuoteStatus(status)
	q.CreatedBy = domain.Persona(by)
	if q.PublicToken != "" {
		q.PublicPath = domain.QuotePublicPath(q.ID, q.PublicToken)
	}
	return &q, nil
}

// ListQuotes — все КП, новые сверху.
func (s *Store) ListQuotes(ctx context.Context) ([]*domain.Quote, error) {
	rows, err := s.query(ctx, `
SELECT `+quoteColumns+`
FROM quotes
ORDER BY created_at DESC, id DESC;
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Quote{}
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// GetQuote возвращает КП по id или domain.ErrNotFound.
func (s *Store) GetQuote(ctx context.Context, id string) (*domain.Quote, error) {
	q, err := scanQuote(s.queryRow(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return q, err
}

// SaveQuote — upsert КП по id
func (s *Store) SaveQuote(ctx context.Context, q *domain.Quote) error {
	if q == nil {
		return fmt.Errorf("quote is nil")
	}
	customer, err := json.Marshal(q.Customer)
	if err != nil {
		return err
	}
	items := q.Items
	if items == nil {
		items = []domain.CartItem{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return err
	}

	_, err = s.exec(ctx, `
INSERT INTO quotes (`+quoteColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE
  SET customer       = EXCLUDED.customer,
      items          = EXCLUDED.items,
      total_estimate = EXCLUDED.total_estimate,
      status         = EXCLUDED.status,
      assigned_to    = EXCLUDED.assigned_to,
      discount_value = EXCLUDED.discount_value,
      public_token   = EXCLUDED.public_token;
`,
		q.ID,
		string(customer),
		string(itemsJSON),
		q.TotalEstimate,
		string(q.Status),
		formatTime(q.CreatedAt),
		string(q.CreatedBy),
		q.AssignedTo,
		q.DiscountValue,
		q.PublicToken,
	)
	return err
}
