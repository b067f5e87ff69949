package app

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"pricepoint-backend/internal/handlers"
)

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+handlers.PersonaHeader)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requestLogger пишет одну строку на запрос
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			log.Info("http",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("as", r.URL.Query().Get("as")),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("took", time.Since(start)),
			)
		})
	}
}

func registerRoutes(r chi.Router, env *handlers.Env, log *zap.Logger) {
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	// --- API ---
	r.Route("/api", func(api chi.Router) {
		api.Use(withCORS)

		// каталог и расчёт позиции
		api.HandleFunc("/products", env.HandleProducts)
		api.HandleFunc("/products/{id}", env.HandleProduct)
		api.HandleFunc("/categories", env.HandleCategories)
		api.HandleFunc("/pricing/configure", env.HandleConfigure)

		// КП
		api.HandleFunc("/quotes", env.HandleQuotes)
		api.HandleFunc("/quotes/stats", env.HandleQuoteStats)
		api.HandleFunc("/quotes/{id}", env.HandleQuote)

		api.HandleFunc("/me", env.HandleMe)
		api.HandleFunc("/notifications", env.HandleNotifications)

		// админка
		api.HandleFunc("/admin/rules", env.HandleWorkflowRules)
		api.HandleFunc("/admin/config-rules", env.HandleConfigRules)
		api.HandleFunc("/admin/users", env.HandleAdminUsers)
		api.HandleFunc("/admin/users/{id}", env.HandleAdminUserDetail)
		api.HandleFunc("/admin/users/{id}/password", env.HandleAdminUserPassword)
		api.HandleFunc("/admin/settings", env.HandleAdminSettings)
	})

	// печатная версия КП
	r.Get("/p/{quoteId}/{token}", env.HandlePublicQuotePage)

	r.Get("/health", env.HandleHealth)
}
