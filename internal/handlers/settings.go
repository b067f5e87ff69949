package handlers

import (
	"net/http"
	"strings"

	"pricepoint-backend/internal/domain"
)

// AdminSettings — настройки уведомлений. Токен бота наружу не отдаём целиком.
type AdminSettings struct {
	TelegramBotToken string `json:"telegramBotToken"`
	TelegramChatID   string `json:"telegramChatId"`
}

func maskToken(t string) string {
	if len(t) <= 6 {
		return strings.Repeat("*", len(t))
	}
	return t[:3] + strings.Repeat("*", len(t)-6) + t[len(t)-3:]
}

// maskedToken — прислали то, что отдал GET (маска), а не новый токен.
// В настоящих токенах бота звёздочек не бывает.
func maskedToken(v, stored string) bool {
	return v == maskToken(stored) || strings.Contains(v, "*")
}

func settingsView(s *domain.Settings) AdminSettings {
	return AdminSettings{
		TelegramBotToken: maskToken(s.TelegramBotToken),
		TelegramChatID:   s.TelegramChatID,
	}
}

// GET/POST /api/admin/settings
func (e *Env) HandleAdminSettings(w http.ResponseWriter, r *http.Request) {
	if _, ok := e.requireAdmin(w, r); !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		s, err := e.Store.LoadSettings(r.Context())
		if err != nil {
			e.writeError(w, r, err)
			return
		}
		e.writeJSON(w, settingsView(s))

	case http.MethodPost:
		var req AdminSettings
		if !decodeJSON(w, r, &req) {
			return
		}

		s, err := e.Store.LoadSettings(r.Context())
		if err != nil {
			e.writeError(w, r, err)
			return
		}

		// Обновляем только если что-то прислали
		if v := strings.TrimSpace(req.TelegramBotToken); v != "" && !maskedToken(v, s.TelegramBotToken) {
			s.TelegramBotToken = v
		}
		if v := strings.TrimSpace(req.TelegramChatID); v != "" {
			s.TelegramChatID = v
		}
		if err := e.Store.SaveSettings(r.Context(), s); err != nil {
			e.writeError(w, r, err)
			return
		}
		e.writeJSON(w, settingsView(s))

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
