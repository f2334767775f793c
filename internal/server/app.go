// Package server wires the roster service together: it opens the database,
// applies migrations, picks a media backend, and runs the HTTP API next to the
// gRPC health endpoint until a termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/employeehub/internal/common"
	"github.com/dmitrijs2005/employeehub/internal/logging"
	"github.com/dmitrijs2005/employeehub/internal/server/config"
	"github.com/dmitrijs2005/employeehub/internal/server/httpapi"
	"github.com/dmitrijs2005/employeehub/internal/server/media"
	"github.com/dmitrijs2005/employeehub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/employeehub/internal/server/services"
	"github.com/gin-gonic/gin"

	gs "github.com/dmitrijs2005/employeehub/internal/server/grpc"
)

// publicUploadsPath is where the filesystem backend is served over HTTP.
const publicUploadsPath = "/uploads"

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	http   *httpapi.Server
	grpc   *gs.GRPCServer
}

// openDB is a seam so tests can avoid a real PostgreSQL.
var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.Environment)

	setGinMode(c)

	if err := ensureSecret(ctx, c, logger); err != nil {
		return nil, err
	}

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	backend, uploadsDir, err := newMediaBackend(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("media init error: %w", err)
	}
	store := media.NewManager(backend, logger)

	us := services.NewUserService(db, rm, c)
	es := services.NewEmployeeService(db, rm, store, logger)

	opts := httpapi.Options{
		Production:       c.IsProduction(),
		ProtectEmployees: c.ProtectEmployees,
		MaxUploadSize:    c.MaxUploadSize,
		AllowedOrigins:   c.AllowedOrigins,
		UploadsDir:       uploadsDir,
	}

	health := healthChecks{db, store}

	app := &App{
		config: c,
		logger: logger,
		db:     db,
		http:   httpapi.NewServer(c.EndpointAddrHTTP, opts, us, es, health, logger),
	}
	if c.EndpointAddrGRPC != "" {
		app.grpc = gs.NewGRPCServer(c.EndpointAddrGRPC, logger, health, 0)
	}
	return app, nil
}

// setGinMode switches gin to release mode in production. The mode is
// process wide, so it is set here once rather than per router.
func setGinMode(c *config.Config) {
	if c.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
}

// ensureSecret generates a random signing key when none is configured.
// Sessions issued with it do not survive a restart.
func ensureSecret(ctx context.Context, c *config.Config, logger logging.Logger) error {
	if c.SecretKey != "" {
		return nil
	}
	key, err := common.MakeRandHexString(32)
	if err != nil {
		return fmt.Errorf("secret key: %w", err)
	}
	c.SecretKey = key
	logger.Warn(ctx, "no secret key configured, using a random one")
	return nil
}

// newMediaBackend returns the configured backend and, for the filesystem
// backend, the directory to serve at /uploads.
func newMediaBackend(ctx context.Context, c *config.Config) (media.Backend, string, error) {
	switch c.MediaBackend {
	case config.MediaBackendFilesystem, "":
		return media.NewFileSystem(c.MediaRoot, publicUploadsPath), c.MediaRoot, nil
	case config.MediaBackendS3:
		b, err := media.NewS3(ctx, media.S3Options{
			Region:       c.S3Region,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			Bucket:       c.S3Bucket,
			BaseEndpoint: c.S3BaseEndpoint,
		})
		if err != nil {
			return nil, "", err
		}
		return b, "", nil
	default:
		return nil, "", fmt.Errorf("unknown media backend %q", c.MediaBackend)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// healthChecks fails with the first dependency that does not answer.
type healthChecks []httpapi.Pinger

func (hc healthChecks) PingContext(ctx context.Context) error {
	for _, p := range hc {
		if err := p.PingContext(ctx); err != nil {
			return err
		}
	}
	return nil
}

type runner interface {
	Run(ctx context.Context) error
}

func (app *App) start(ctx context.Context, cancelFunc context.CancelFunc, name string, r runner) {
	if err := r.Run(ctx); err != nil {
		app.logger.Error(ctx, name+" server failed", "error", err)
		cancelFunc()
	}
}

// Run blocks until a signal arrives or one of the servers fails.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.start(ctx, cancelFunc, "HTTP", app.http)
	}()

	if app.grpc != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.start(ctx, cancelFunc, "gRPC", app.grpc)
		}()
	}

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "closing database", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}
