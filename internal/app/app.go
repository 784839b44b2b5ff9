package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/belote-scorekeeper/internal/config"
	"github.com/riskibarqy/belote-scorekeeper/internal/domain/round"
	"github.com/riskibarqy/belote-scorekeeper/internal/domain/session"
	"github.com/riskibarqy/belote-scorekeeper/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/belote-scorekeeper/internal/infrastructure/repository/sqlstore"
	"github.com/riskibarqy/belote-scorekeeper/internal/interfaces/httpapi"
	"github.com/riskibarqy/belote-scorekeeper/internal/platform/cache"
	idgen "github.com/riskibarqy/belote-scorekeeper/internal/platform/id"
	"github.com/riskibarqy/belote-scorekeeper/internal/platform/logging"
	"github.com/riskibarqy/belote-scorekeeper/internal/platform/resilience"
	"github.com/riskibarqy/belote-scorekeeper/internal/platform/writeback"
	"github.com/riskibarqy/belote-scorekeeper/internal/usecase"
)

// App holds the HTTP server and everything that must be released on shutdown.
type App struct {
	Server  *http.Server
	Session *usecase.GameSessionService

	writer *writeback.Writer
	db     *sqlx.DB
	logger *logging.Logger
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	store, db, err := newSessionStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	writer, err := writeback.New(writeback.Config{
		Async:     cfg.StoreAsyncWrites,
		QueueSize: cfg.StoreWriteQueueSize,
	}, logger.Named("writeback"))
	if err != nil {
		closeDB(db)
		return nil, fmt.Errorf("start snapshot writer: %w", err)
	}

	rule, err := round.RuleFor(cfg.GameScoringVariant)
	if err != nil {
		writer.Close()
		closeDB(db)
		return nil, err
	}

	sessionSvc := usecase.NewGameSessionService(
		store,
		writer,
		usecase.GameSessionConfig{Rule: rule, WinThreshold: cfg.GameWinThreshold},
		idgen.NewClockGenerator(),
		logger.Named("session"),
	)
	sessionSvc.Restore(ctx)

	handler := httpapi.NewHandler(sessionSvc, cache.NewStore[struct{}](cfg.FreshRoundTTL), logger.Named("httpapi"))
	router := httpapi.NewRouter(handler, logger, httpapi.RouterConfig{
		ServiceName:        cfg.ServiceName,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	return &App{
		Server: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		Session: sessionSvc,
		writer:  writer,
		db:      db,
		logger:  logger,
	}, nil
}

// Shutdown stops the server, drains pending writes and closes the database.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if err := a.Server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}
	a.writer.Close()
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close db: %w", err))
		}
	}
	return errors.Join(errs...)
}

func newSessionStore(ctx context.Context, cfg config.Config, logger *logging.Logger) (session.Store, *sqlx.DB, error) {
	storeLogger := logger.Named("store")
	if cfg.StoreDriver == config.StoreMemory {
		logger.Warn("session store is in-memory, state is lost on restart")
		return memory.NewSessionStore(storeLogger), nil, nil
	}

	dsn := cfg.DBURL
	if cfg.StoreDriver == config.StorePostgres {
		dsn = sqlstore.PostgresDSN(dsn, cfg.DBDisablePreparedBinary)
	}
	db, err := sqlstore.Open(ctx, cfg.StoreDriver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open session store: %w", err)
	}

	breaker := resilience.NewBreaker(resilience.BreakerConfig{
		Enabled:          cfg.StoreCircuitEnabled,
		FailureThreshold: cfg.StoreCircuitFailureCount,
		Cooldown:         cfg.StoreCircuitCooldown,
	})

	logger.Info("session store ready", "driver", cfg.StoreDriver, "db_name", sqlstore.DBName(cfg.StoreDriver, dsn))
	return sqlstore.NewSessionStore(db, storeLogger, sqlstore.WithBreaker(breaker)), db, nil
}

func closeDB(db *sqlx.DB) {
	if db != nil {
		_ = db.Close()
	}
}
