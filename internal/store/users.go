package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"pricepoint-backend/internal/domain"
)

func scanUser(r rowScanner) (*domain.User, error) {
	var (
		u    domain.User
		role string
	)
	if err := r.Scan(&u.ID, &u.Name, &u.Email, &role, timeValue{&u.CreatedAt}); err != nil {
		return nil, err
	}
	u.Role = domain.Persona(role)
	return &u, nil
}

// ListUsers возвращает всех сотрудников (для /api/admin/users).
func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	rows, err := s.query(ctx, `
SELECT id, name, email, role, created_at
FROM users
ORDER BY created_at ASC, id ASC
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := []*domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// GetUser достаёт сотрудника по id или domain.ErrNotFound.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	u, err := scanUser(s.queryRow(ctx, `
SELECT id, name, email, role, created_at
FROM users
WHERE id = ?
`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return u, err
}

// CreateUser добавляет сотрудника; пустые ID и CreatedAt заполняются.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = domain.NewShortID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := s.exec(ctx, `
INSERT INTO users (id, name, email, role, created_at)
VALUES (?, ?, ?, ?, ?)
`, u.ID, u.Name, u.Email, string(u.Role), formatTime(u.CreatedAt))
	return err
}

// UpdateUser сохраняет изменения сотрудника.
func (s *Store) UpdateUser(ctx context.Context, u *domain.User) error {
	res, err := s.exec(ctx, `
UPDATE users
SET name = ?,
    email = ?,
    role = ?
WHERE id = ?
`,
		u.Name,
		u.Email,
		string(u.Role),
		u.ID,
	)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

// DeleteUser удаляет сотрудника.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res, err := s.exec(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

// SetUserPassword устанавливает новый пароль (bcrypt-хеш).
func (s *Store) SetUserPassword(ctx context.Context, id, password string) error {
	if len(password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", domain.ErrInvalidInput)
	}
	// bcrypt принимает не больше 72 байт
	if len(password) > 72 {
		return fmt.Errorf("%w: password must be at most 72 bytes", domain.ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	res, err := s.exec(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, string(hash), id)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func mustAffect(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
