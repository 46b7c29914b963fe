// Package storage provides the persistent history.Store backends.
package storage

import (
	"context"
	"fmt"
	"time"

	"fitness-chatter/internal/config"
	"fitness-chatter/internal/history"
)

// Open builds the store selected by cfg.HistoryBackend. The returned close
// function releases the backend's connections and is never nil.
func Open(ctx context.Context, cfg *config.Config) (history.Store, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	switch cfg.HistoryBackend {
	case config.BackendMongo:
		s, err := NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	case config.BackendSQLite:
		s, err := NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		return s, func(context.Context) error { return s.Close() }, nil
	case config.BackendFile:
		s, err := NewFileStore(cfg.HistoryFilePath)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil
	case config.BackendMemory:
		return history.NewMemoryStore(), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown history backend: %s", cfg.HistoryBackend)
	}
}

func unixNanoUTC(ns int64) time.Time {
	return time.Unix(0, ns).UTC()
}
