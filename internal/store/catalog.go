package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"pricepoint-backend/internal/domain"
)

// ListProducts загружает каталог в порядке position.
func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.query(ctx, `
SELECT body
FROM products
ORDER BY position ASC, id ASC;
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		var p domain.Product
		if err := json.Unmarshal([]byte(body), &p); err != nil {
			return nil, fmt.Errorf("decode product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetProduct возвращает услугу по id или domain.ErrNotFound.
func (s *Store) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var body string
	err := s.queryRow(ctx, `SELECT body FROM products WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var p domain.Product
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return nil, fmt.Errorf("decode product: %w", err)
	}
	return &p, nil
}

// SaveProduct — upsert услуги целиком
func (s *Store) SaveProduct(ctx context.Context, p *domain.Product, position int) error {
	body, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = s.exec(ctx, `
INSERT INTO products (id, position, internal_only, body)
VALUES (?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE
  SET position      = EXCLUDED.position,
      internal_only = EXCLUDED.internal_only,
      body          = EXCLUDED.body;
`, p.ID, position, p.InternalOnly, string(body))
	return err
}
