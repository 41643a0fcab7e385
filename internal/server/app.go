// Package server wires the ArtVault server together: configuration,
// database and migrations, collaborators, the submission engine, the gRPC
// endpoint and the Prometheus metrics endpoint.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/artvault/internal/logging"
	"github.com/dmitrijs2005/artvault/internal/server/config"
	"github.com/dmitrijs2005/artvault/internal/server/identity"
	"github.com/dmitrijs2005/artvault/internal/server/issuer"
	"github.com/dmitrijs2005/artvault/internal/server/ledger"
	"github.com/dmitrijs2005/artvault/internal/server/recognition"
	"github.com/dmitrijs2005/artvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/artvault/internal/server/services"
	"github.com/dmitrijs2005/artvault/internal/server/storage"
	"github.com/dmitrijs2005/artvault/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	gs "github.com/dmitrijs2005/artvault/internal/server/grpc"
)

const serviceName = "artvault-server"

// collaboratorTimeout bounds each HTTP call to the ledger and the recognition service.
const collaboratorTimeout = 30 * time.Second

type App struct {
	config          *config.Config
	logger          logging.Logger
	db              *sql.DB
	metrics         *prometheus.Registry
	submissions     *services.SubmissionService
	shutdownTracing func(context.Context) error
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	level, err := parseLogLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.NewJSONLogger(os.Stdout, level)

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, c.OTLPEndpoint)
	if err != nil {
		return nil, fmt.Errorf("tracing init error: %w", err)
	}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	collab, err := newCollaborators(ctx, c, db, rm, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := services.NewMetrics(reg)

	registry := services.NewRegistry(db, rm, metrics, logger)
	submissions := services.NewSubmissionService(registry, collab, c, metrics, logger)

	return &App{
		config:          c,
		logger:          logger,
		db:              db,
		metrics:         reg,
		submissions:     submissions,
		shutdownTracing: shutdownTracing,
	}, nil
}

// newCollaborators picks the external adapters. Empty addresses select the
// in-memory development implementations.
func newCollaborators(ctx context.Context, c *config.Config, db *sql.DB, rm repomanager.RepositoryManager, logger logging.Logger) (services.Collaborators, error) {
	hc := &http.Client{Timeout: collaboratorTimeout}
	out := services.Collaborators{Issuer: issuer.NewLocalIssuer(db, rm)}

	if c.S3Bucket != "" {
		store, err := storage.NewS3Store(ctx, storage.S3Config{
			Region:       c.S3Region,
			RootUser:     c.S3RootUser,
			RootPassword: c.S3RootPassword,
			Bucket:       c.S3Bucket,
			BaseEndpoint: c.S3BaseEndpoint,
		})
		if err != nil {
			return services.Collaborators{}, fmt.Errorf("storage init error: %w", err)
		}
		out.Store = store
	} else {
		logger.Warn(ctx, "no S3 bucket configured, assets are kept in memory")
		out.Store = storage.NewMemoryStore()
	}

	if c.LedgerURL != "" {
		out.Ledger = ledger.NewHTTPClient(c.LedgerURL, hc)
	} else {
		logger.Warn(ctx, "no ledger configured, using in-memory ledger")
		out.Ledger = ledger.NewMemory()
	}

	var scorer recognition.Scorer
	if c.OracleURL != "" {
		scorer = recognition.NewHTTPScorer(c.OracleURL, hc)
	} else {
		logger.Warn(ctx, "no recognition service configured, every asset gets the maximum score")
		scorer = recognition.Static{Scores: recognition.Scores{Originality: recognition.MaxScore, Visibility: recognition.MaxScore}}
	}
	out.Oracle = recognition.NewOracle(scorer, recognition.Policy{
		MinOriginality: c.MinOriginality,
		MinVisibility:  c.MinVisibility,
	})

	return out, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log level %q: %w", s, err)
	}
	return level, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	provider := identity.NewJWTProvider([]byte(app.config.SecretKey))
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.submissions, provider)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startMetricsServer(ctx context.Context, cancelFunc context.CancelFunc) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(app.metrics, promhttp.HandlerOpts{Registry: app.metrics}))

	srv := &http.Server{
		Addr:              app.config.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	app.logger.Info(ctx, "Serving metrics", "address", app.config.MetricsAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startMetricsServer(ctx, cancelFunc)
	}()

	wg.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.shutdownTracing(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "tracing shutdown", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(shutdownCtx, "db close", "error", err)
	}
	app.logger.Info(shutdownCtx, "App stopped")
}
