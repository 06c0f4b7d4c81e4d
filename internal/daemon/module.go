// Package daemon composes the parley daemon: configuration, storage,
// services, and the HTTP server, wired together with fx.
package daemon

import (
	"context"
	"time"

	"github.com/pcordeiro/parley/internal/auth"
	"github.com/pcordeiro/parley/internal/bus"
	"github.com/pcordeiro/parley/internal/chat"
	"github.com/pcordeiro/parley/internal/config"
	"github.com/pcordeiro/parley/internal/httpapi"
	"github.com/pcordeiro/parley/internal/lock"
	"github.com/pcordeiro/parley/internal/logging"
	"github.com/pcordeiro/parley/internal/presence"
	"github.com/pcordeiro/parley/internal/status"
	"github.com/pcordeiro/parley/internal/store"
	"github.com/pcordeiro/parley/internal/upload"
	"github.com/pcordeiro/parley/internal/visibility"
	"github.com/pcordeiro/parley/internal/workdir"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved daemon settings passed to the fx module.
type Params struct {
	DataDir string
	Addr    string // optional override; empty = config listen_addr
}

// Module returns the fx module for the daemon, composing all providers and
// lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideBus,
			provideStateMachine,
			provideLock,
			provideStore,
			provideUploadStore,
			provideLedger,
			provideAuthManager,
			provideTracker,
			provideReaper,
			provideChatService,
			provideServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideConfig(p Params) (*config.Config, error) {
	if err := workdir.EnsureDirs(p.DataDir); err != nil {
		return nil, err
	}
	return config.LoadOrInit(workdir.ConfigPath(p.DataDir))
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(workdir.LogPath(p.DataDir), "parleyd")
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStateMachine(b *bus.Bus) *status.Machine {
	return status.NewMachine(b)
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	logger.Info("acquiring data dir lock", zap.String("dir", p.DataDir))
	l, err := lock.Acquire(p.DataDir)
	if err != nil {
		return nil, err
	}
	logger.Info("data dir lock acquired")
	return l, nil
}

func provideStore(p Params, logger *zap.Logger) (*store.DB, error) {
	dbPath := workdir.DBPath(p.DataDir)
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("store initialized", zap.String("path", dbPath))
	return db, nil
}

func provideUploadStore(p Params, cfg *config.Config) (*upload.Store, error) {
	return upload.NewStore(workdir.UploadsDir(p.DataDir), cfg.PublicBaseURL)
}

func provideLedger(db *store.DB) *visibility.Ledger {
	return visibility.NewLedger(db)
}

func provideAuthManager(cfg *config.Config) *auth.Manager {
	ttl := time.Duration(cfg.TokenTTLHours) * time.Hour
	return auth.NewManager(cfg.TokenSecret, ttl, cfg.BcryptCost)
}

func provideTracker(db *store.DB) *presence.Tracker {
	return presence.NewTracker(db)
}

func provideReaper(db *store.DB, logger *zap.Logger) *presence.Reaper {
	return presence.NewReaper(db, logger)
}

func provideChatService(db *store.DB, ledger *visibility.Ledger, uploads *upload.Store, b *bus.Bus, logger *zap.Logger) *chat.Service {
	return chat.NewService(db, ledger, uploads, b, logger)
}

func provideServer(
	p Params,
	cfg *config.Config,
	db *store.DB,
	svc *chat.Service,
	tracker *presence.Tracker,
	authMgr *auth.Manager,
	uploads *upload.Store,
	machine *status.Machine,
	logger *zap.Logger,
) (*httpapi.Server, error) {
	addr := p.Addr
	if addr == "" {
		addr = cfg.ListenAddr
	}
	return httpapi.NewServer(addr, db, svc, tracker, authMgr, uploads, machine, logger)
}

func registerLifecycle(lc fx.Lifecycle, srv *httpapi.Server, lk *lock.Lock, reaper *presence.Reaper, machine *status.Machine, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			reaper.Start(context.Background())

			// Serve HTTP in background.
			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("http server error", zap.Error(err))
					_ = machine.Transition(status.Error)
				}
			}()

			if err := machine.Transition(status.Ready); err != nil {
				return err
			}
			logger.Info("daemon ready", zap.String("addr", srv.Addr()))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			_ = machine.Transition(status.ShuttingDown)
			reaper.Stop()
			srv.Stop(ctx)
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			return nil
		},
	})
}
