package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rx3lixir/event-discovery/pkg/logger"
)

const defaultTable = "events"

// Интерфейс для абстракции методов базы данных от pgxpool
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore выполняет поиск событий в PostgreSQL.
type PostgresStore struct {
	db      DBTX
	table   string
	timeout time.Duration
	logger  logger.Logger
}

// StoreOption настраивает PostgresStore
type StoreOption func(*PostgresStore)

// WithTable задает имя таблицы событий
func WithTable(table string) StoreOption {
	return func(s *PostgresStore) {
		if table != "" {
			s.table = table
		}
	}
}

// WithQueryTimeout задает таймаут одного запроса
func WithQueryTimeout(timeout time.Duration) StoreOption {
	return func(s *PostgresStore) {
		s.timeout = timeout
	}
}

// NewPostgresStore создает новый экземпляр PostgresStore.
func NewPostgresStore(pool DBTX, log logger.Logger, opts ...StoreOption) *PostgresStore {
	s := &PostgresStore{
		db:      pool,
		table:   defaultTable,
		timeout: 3 * time.Second,
		logger:  log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EventSearcher определяет поиск событий по фильтру. Реализуется PostgreSQL и OpenSearch.
type EventSearcher interface {
	SearchEvents(ctx context.Context, filter *EventFilter) (*SearchResult, error)
}

// CreatePostgresPool создает и проверяет пул соединений к PostgreSQL.
func CreatePostgresPool(parentCtx context.Context, dburl string, maxConns int32) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(parentCtx, time.Second*3)
	defer cancel()

	cfg, err := pgxpool.ParseConfig(dburl)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres dsn: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	// Проверяем соединение
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return pool, nil
}
