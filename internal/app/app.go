package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"pricepoint-backend/internal/config"
	"pricepoint-backend/internal/domain"
	"pricepoint-backend/internal/handlers"
	"pricepoint-backend/internal/notify"
	"pricepoint-backend/internal/quotes"
)

type App struct {
	router   chi.Router
	Env      *handlers.Env
	Telegram *notify.Telegram
}

// New собирает приложение поверх открытого хранилища.
func New(st handlers.Store, cfg *config.Config, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}

	// уведомления: лента для /api/notifications + Telegram
	feed := notify.NewFeed()
	tg := notify.NewTelegram(st, domain.Settings{
		TelegramBotToken: cfg.Telegram.BotToken,
		TelegramChatID:   cfg.Telegram.ChatID,
	}, log.Named("telegram"))

	calc := cfg.Pricing.Calculator()

	env := &handlers.Env{
		Store:  st,
		Quotes: quotes.NewService(st, calc, notify.Multi{feed, tg}, log.Named("quotes")),
		Calc:   calc,
		Feed:   feed,
		Log:    log.Named("http"),
	}

	r := chi.NewRouter()
	registerRoutes(r, env, log.Named("access"))

	return &App{
		router:   r,
		Env:      env,
		Telegram: tg,
	}
}

func (a *App) Router() http.Handler {
	return a.router
}

// Wait дожидается фоновых отправок в Telegram (при остановке)
func (a *App) Wait() {
	a.Telegram.Wait()
}
