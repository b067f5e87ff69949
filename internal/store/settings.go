package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pricepoint-backend/internal/domain"
)

// LoadSettings загружает настройки из таблицы settings (id = 1).
func (s *Store) LoadSettings(ctx context.Context) (*domain.Settings, error) {
	var st domain.Settings
	err := s.queryRow(ctx, `
SELECT telegram_bot_token, telegram_chat_id
FROM settings
WHERE id = 1;
`).Scan(&st.TelegramBotToken, &st.TelegramChatID)
	if errors.Is(err, sql.ErrNoRows) {
		// настроек ещё нет — вернём пустую структуру
		return &domain.Settings{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// SaveSettings сохраняет настройки (id всегда = 1).
func (s *Store) SaveSettings(ctx context.Context, st *domain.Settings) error {
	if st == nil {
		return fmt.Errorf("settings is nil")
	}
	_, err := s.exec(ctx, `
INSERT INTO settings (id, telegram_bot_token, telegram_chat_id)
VALUES (1, ?, ?)
ON CONFLICT (id) DO UPDATE
  SET telegram_bot_token = EXCLUDED.telegram_bot_token,
      telegram_chat_id   = EXCLUDED.telegram_chat_id;
`, st.TelegramBotToken, st.TelegramChatID)
	return err
}
