package repository

import (
	"fmt"

	"aa-consent-gateway/internal/config"
)

// Open connects the session store selected by cfg.Backend
func Open(cfg *config.SessionConfig) (SessionStore, error) {
	switch cfg.Backend {
	case config.BackendRedis:
		return NewRedisSessionStore(&RedisConfig{
			Addr:     cfg.Redis.Addr(),
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TLS:      cfg.Redis.TLS,
		})
	case config.BackendSQLite:
		return NewSQLiteSessionStore(cfg.DBPath)
	default:
		return nil, fmt.Errorf("unknown session store backend: %s", cfg.Backend)
	}
}
