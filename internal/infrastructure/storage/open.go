package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/GriffinCanCode/erpshell/internal/infrastructure/config"
	"github.com/GriffinCanCode/erpshell/internal/shared/paths"
)

// Open builds the Store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	layout := paths.NewLayout(cfg.Path)
	switch cfg.Driver {
	case "", "file":
		return NewFileStore(layout.Snapshots(), cfg.Compress)
	case "sqlite":
		if err := os.MkdirAll(layout.Root, 0o700); err != nil {
			return nil, fmt.Errorf("storage: %w", err)
		}
		return NewSQLiteStore(layout.Database())
	case "redis":
		return NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.KeyPrefix)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
	}
}
