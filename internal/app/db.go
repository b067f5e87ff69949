package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"pricepoint-backend/internal/config"
	"pricepoint-backend/internal/store"
)

// OpenStore открывает базу из конфига и, если включено, засевает пустые таблицы.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig, seed bool, log *zap.Logger) (*store.Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	st, err := store.Open(ctx, cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Driver, err)
	}
	log.Info("DB connected", zap.String("driver", cfg.Driver))

	if !seed {
		return st, nil
	}

	rep, err := st.Seed(ctx)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("seed: %w", err)
	}
	if rep != (store.SeedReport{}) {
		log.Info("seeded empty tables",
			zap.Int("products", rep.Products),
			zap.Int("workflow_rules", rep.WorkflowRules),
			zap.Int("config_rules", rep.ConfigRules),
			zap.Int("users", rep.Users),
			zap.Int("quotes", rep.Quotes),
		)
	}
	return st, nil
}
