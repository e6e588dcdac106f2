// Package server assembles and runs the gophauth service: it opens the
// refresh token store, connects to the identity directory, wires the token
// lifecycle engine behind the REST endpoint and runs the periodic sweep.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/identity"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/rest"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	repos   repomanager.RepositoryManager
	closers []io.Closer
	metrics *metrics.Metrics
	codec   *auth.Codec
	auth    *services.AuthService

	closeOnce sync.Once
	closeErr  error
}

// NewApp opens every backing service named by c and runs migrations.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(os.Stdout, c.LogFormat, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	repos, err := openStore(c)
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}

	if err := repos.RunMigrations(ctx); err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("store migration error: %w", err)
	}

	conn, err := identity.Dial(c.IdentityServiceAddr, c.IdentityCallTimeout, logger.With("module", "identity"))
	if err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("identity client init error: %w", err)
	}

	app, err := newApp(c, logger, repos, identity.NewGRPCGateway(conn))
	if err != nil {
		_ = conn.Close()
		_ = repos.Close()
		return nil, err
	}
	app.closers = append(app.closers, conn)
	return app, nil
}

func newApp(c *config.Config, logger logging.Logger, repos repomanager.RepositoryManager, gateway identity.Gateway) (*App, error) {
	signer, err := auth.NewSigner([]byte(c.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("signer init error: %w", err)
	}
	codec := auth.NewCodec(signer, c.AccessTokenValidityDuration, c.RefreshTokenValidityDuration)

	m := metrics.New()
	tokens := services.NewRefreshTokenService(repos.RefreshTokens(), codec.RefreshTTL())
	as := services.NewAuthService(gateway, codec, tokens, logger, services.WithRecorder(m))

	return &App{
		config:  c,
		logger:  logger,
		repos:   repos,
		metrics: m,
		codec:   codec,
		auth:    as,
	}, nil
}

func openStore(c *config.Config) (repomanager.RepositoryManager, error) {
	switch c.StoreBackend {
	case config.BackendRedis:
		return repomanager.NewRedisRepositoryManager(&redis.Options{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		}), nil
	case config.BackendPostgres:
		m, err := repomanager.NewPostgresRepositoryManager(c.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) func() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	done := make(chan struct{})
	go func() {
		select {
		case <-sigs:
			cancelFunc()
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigs)
		close(done)
	}
}

// Handler returns the HTTP handler with every route mounted.
func (app *App) Handler() http.Handler {
	return rest.NewRouter(rest.Deps{
		Auth:       app.auth,
		Tokens:     app.codec,
		Logger:     app.logger,
		Metrics:    app.metrics,
		EnableDocs: app.config.EnableDocs,
	})
}

// Run serves HTTP and runs the sweep loop until ctx is cancelled or a
// termination signal arrives, then releases every resource.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	stopSignals := app.initSignalHandler(cancelFunc)
	defer stopSignals()

	app.logger.Info(ctx, "Starting app...", "backend", app.config.StoreBackend)

	g, ctx := errgroup.WithContext(ctx)

	srv := rest.NewServer(app.config.EndpointAddrHTTP, app.Handler(), app.logger)
	g.Go(func() error {
		return srv.Run(ctx)
	})

	if app.config.SweepInterval > 0 {
		g.Go(func() error {
			app.runSweeper(ctx, app.config.SweepInterval)
			return nil
		})
	}

	err := g.Wait()
	app.logger.Info(context.Background(), "App stopped")

	return errors.Join(err, app.Close())
}

func (app *App) runSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := app.SweepOnce(ctx); err != nil && ctx.Err() == nil {
				app.logger.Error(ctx, "sweep failed", "error", err)
			}
		}
	}
}

// SweepOnce removes every expired refresh token and returns how many went.
func (app *App) SweepOnce(ctx context.Context) (int64, error) {
	n, err := app.auth.SweepExpiredTokens(ctx)
	app.metrics.AddSwept(n)
	return n, err
}

// Close releases the store and the directory connection. Later calls
// return the first result.
func (app *App) Close() error {
	app.closeOnce.Do(func() {
		errs := make([]error, 0, len(app.closers)+1)
		for _, c := range app.closers {
			errs = append(errs, c.Close())
		}
		errs = append(errs, app.repos.Close())
		app.closeErr = errors.Join(errs...)
	})
	return app.closeErr
}
