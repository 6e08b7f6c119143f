package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/noah-isme/escolinha-api/internal/handler"
	"github.com/noah-isme/escolinha-api/internal/repository"
	"github.com/noah-isme/escolinha-api/internal/service"
	"github.com/noah-isme/escolinha-api/pkg/cache"
	"github.com/noah-isme/escolinha-api/pkg/config"
	"github.com/noah-isme/escolinha-api/pkg/database"
	"github.com/noah-isme/escolinha-api/pkg/logger"
	"github.com/noah-isme/escolinha-api/pkg/storage"
)

// @title Escolinha de Futebol API
// @version 1.0.0
// @description Registration, roster management and owner access for a youth football school
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const spoolMaxAge = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("bootstrap failed", zap.Error(err))
	}
	defer app.close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           newRouter(app.deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env),
			zap.String("store", cfg.StoreDriver), zap.String("blob", cfg.Blob.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

type application struct {
	deps    routerDeps
	closers []func()
}

func (a *application) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func bootstrap(ctx context.Context, cfg *config.Config, logr *zap.Logger) (*application, error) {
	app := &application{}
	checks := map[string]handler.ReadinessCheck{}

	startCtx, cancel := context.WithTimeout(ctx, cfg.Mongo.Timeout)
	defer cancel()

	var mongoDB *mongo.Database
	if cfg.StoreDriver == config.StoreMongo || cfg.Blob.Driver == config.BlobGridFS {
		client, db, err := database.NewMongo(startCtx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		mongoDB = db
		app.closers = append(app.closers, func() { _ = client.Disconnect(context.Background()) })
		checks["mongo"] = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx, readpref.Primary())
		}
	}

	var students repository.StudentStore
	switch cfg.StoreDriver {
	case config.StoreMongo:
		repo := repository.NewStudentMongoRepository(mongoDB)
		if err := repo.EnsureIndexes(startCtx); err != nil {
			return nil, fmt.Errorf("ensure student indexes: %w", err)
		}
		students = repo
	case config.StorePostgres:
		db, err := database.NewPostgres(startCtx, cfg.Database)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, func() { _ = db.Close() })
		checks["postgres"] = pingPostgres(db)
		repo := repository.NewStudentRepository(db)
		if err := repo.EnsureSchema(startCtx); err != nil {
			return nil, fmt.Errorf("ensure student schema: %w", err)
		}
		students = repo
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	blobs, photoHandler, err := openBlobStore(cfg, mongoDB, logr)
	if err != nil {
		return nil, err
	}

	spool, err := storage.NewLocalStorage(cfg.Upload.TempDir)
	if err != nil {
		return nil, err
	}
	if removed, err := spool.CleanupOlderThan(spoolMaxAge); err != nil {
		logr.Warn("spool cleanup failed", zap.Error(err))
	} else if len(removed) > 0 {
		logr.Info("removed stale spool files", zap.Int("count", len(removed)))
	}

	var cacheRepo service.CacheRepository
	if cfg.Roster.CacheEnabled {
		client, err := cache.NewRedis(startCtx, cfg.Redis)
		if err != nil {
			logr.Warn("roster cache disabled: redis unavailable", zap.Error(err))
		} else {
			app.closers = append(app.closers, func() { _ = client.Close() })
			checks["redis"] = pingRedis(client)
			cacheRepo = repository.NewCacheRepository(client, "escolinha:")
		}
	}
	rosterCache := service.NewCacheService(cacheRepo, metrics, cfg.Roster.CacheTTL, logr, cacheRepo != nil)

	validate := validator.New()
	photos := service.NewPhotoUploader(blobs, spool, cfg.Blob.Folder, metrics, logr)
	registration := service.NewRegistrationService(students, photos, rosterCache, validate, logr)
	roster := service.NewRosterService(students, photos, rosterCache, logr)
	exports := service.NewExportService(roster, logr)

	access := service.NewAccessService(service.AccessConfig{
		SigningKey: cfg.JWT.Secret,
		TokenTTL:   cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, validate, metrics, logr)
	if err := installAdminHash(access, cfg.Admin.Password); err != nil {
		logr.Error("owner login unavailable", zap.Error(err))
	}
	if cfg.JWT.Secret == "" {
		logr.Error("owner login unavailable: JWT_SECRET is empty")
	}
	checks["owner_login"] = ownerLoginCheck(access)

	policy := handler.PhotoPolicy{MaxBytes: cfg.Upload.MaxSizeBytes, AllowedMIMEs: cfg.Upload.AllowedMIMEs}
	app.deps = routerDeps{
		cfg:     cfg,
		logger:  logr,
		metrics: metrics,
		tokens:  access,
		parent:  handler.NewParentHandler(registration, spool, policy),
		owner:   handler.NewOwnerHandler(roster, exports, spool, policy),
		auth:    handler.NewAuthHandler(access),
		photos:  photoHandler,
		system:  handler.NewMetricsHandler(metrics, checks),
	}
	return app, nil
}

type blobStore interface {
	Upload(ctx context.Context, blob storage.Blob, folder string) (storage.BlobRef, error)
	Delete(ctx context.Context, id string) error
	IDFromURL(url string) string
}

// openBlobStore selects the photo backend. Incomplete Cloudinary credentials
// leave photos disabled instead of stopping the API.
func openBlobStore(cfg *config.Config, mongoDB *mongo.Database, logr *zap.Logger) (blobStore, *handler.PhotoHandler, error) {
	switch cfg.Blob.Driver {
	case config.BlobCloudinary:
		store, err := storage.NewCloudinaryStore(cfg.Cloudinary, cfg.Blob.Folder, logr)
		if err != nil {
			logr.Error("student photos disabled", zap.Error(err))
			return nil, nil, nil
		}
		return store, nil, nil
	case config.BlobGridFS:
		store, err := storage.NewGridFSStore(mongoDB, cfg.PublicBaseURL+cfg.APIPrefix+"/fotos")
		if err != nil {
			return nil, nil, err
		}
		return store, handler.NewPhotoHandler(store), nil
	default:
		return nil, nil, fmt.Errorf("unknown BLOB_DRIVER %q", cfg.Blob.Driver)
	}
}

func ownerLoginCheck(access *service.AccessService) handler.ReadinessCheck {
	return func() error {
		if !access.Ready() {
			return errors.New("admin access code or signing key not configured")
		}
		return nil
	}
}

func installAdminHash(access *service.AccessService, password string) error {
	if password == "" {
		return errors.New("ADMIN_PASSWORD is empty")
	}
	hash, err := service.HashAdminSecret(password)
	if err != nil {
		return err
	}
	return access.SetAdminHash(hash)
}

func pingPostgres(db *sqlx.DB) handler.ReadinessCheck {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return db.PingContext(ctx)
	}
}

func pingRedis(client *redis.Client) handler.ReadinessCheck {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return client.Ping(ctx).Err()
	}
}
