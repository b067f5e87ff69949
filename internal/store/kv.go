package store

import (
	"context"
	"database/sql"
	"errors"
)

// Get возвращает значение ключа; ok=false, если ключа нет.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.queryRow(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Put записывает значение ключа
func (s *Store) Put(ctx context.Context, key, value string) error {
	_, err := s.exec(ctx, `
INSERT INTO kv (key, value)
VALUES (?, ?)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value;
`, key, value)
	return err
}

// Delete удаляет ключ; отсутствие ключа не ошибка.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.exec(ctx, `DELETE FROM kv WHERE key = ?`, key)
	return err
}
