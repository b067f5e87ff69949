package notify

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"pricepoint-backend/internal/domain"
)

// DefaultTelegramAPI — адрес Bot API
const DefaultTelegramAPI = "https://api.telegram.org"

const sendTimeout = 10 * time.Second

// SettingsSource — откуда брать токен и чат (таблица settings)
type SettingsSource interface {
	LoadSettings(ctx context.Context) (*domain.Settings, error)
}

// Telegram пересылает уведомления в чат. Токен и чат читаются из settings
// на каждую отправку; если там пусто, используются значения из конфига.
type Telegram struct {
	Settings SettingsSource
	Fallback domain.Settings
	APIBase  string
	Client   *http.Client
	Log      *zap.Logger

	wg sync.WaitGroup
}

// NewTelegram создаёт отправителя
func NewTelegram(settings SettingsSource, fallback domain.Settings, log *zap.Logger) *Telegram {
	if log == nil {
		log = zap.NewNop()
	}
	return &Telegram{
		Settings: settings,
		Fallback: fallback,
		APIBase:  DefaultTelegramAPI,
		Client:   &http.Client{Timeout: sendTimeout},
		Log:      log,
	}
}

func (t *Telegram) credentials(ctx context.Context) (token, chatID string) {
	token = strings.TrimSpace(t.Fallback.TelegramBotToken)
	chatID = strings.TrimSpace(t.Fallback.TelegramChatID)
	if t.Settings == nil {
		return token, chatID
	}

	s, err := t.Settings.LoadSettings(ctx)
	if err != nil {
		t.Log.Warn("telegram: load settings", zap.Error(err))
		return token, chatID
	}
	if v := strings.TrimSpace(s.TelegramBotToken); v != "" {
		token = v
	}
	if v := strings.TrimSpace(s.TelegramChatID); v != "" {
		chatID = v
	}
	return token, chatID
}

// Notify отправляет сообщение в фоне. Контекст запроса не используется:
// отправка живёт дольше HTTP-ответа.
func (t *Telegram) Notify(_ context.Context, msg string) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := t.Send(ctx, msg); err != nil {
			t.Log.Warn("telegram: send failed", zap.Error(err))
		}
	}()
}

// Wait ждёт завершения фоновых отправок
func (t *Telegram) Wait() {
	t.wg.Wait()
}

// Send — синхронная отправка. Пустой токен или чат — тихий пропуск.
func (t *Telegram) Send(ctx context.Context, msg string) error {
	token, chatID := t.credentials(ctx)
	if token == "" || chatID == "" {
		t.Log.Debug("telegram: skip send, empty bot token or chat id")
		return nil
	}

	base := strings.TrimRight(t.APIBase, "/")
	if base == "" {
		base = DefaultTelegramAPI
	}
	apiURL := base + "/bot" + token + "/sendMessage"

	form := url.Values{}
	form.Set("chat_id", chatID)
	form.Set("text", "🧾 "+html.EscapeString(msg))
	form.Set("parse_mode", "HTML")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := t.Client
	if client == nil {
		client = &http.Client{Timeout: sendTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		// в ошибке net/http есть URL с токеном
		return fmt.Errorf("send: %w", redact(err, token))
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("non-OK status %s", resp.Status)
	}
	return nil
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

func redact(err error, token string) error {
	return &redactedError{msg: strings.ReplaceAll(err.Error(), token, "***"), err: err}
}
