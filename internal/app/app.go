package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/saurab2057/Filetool/internal/cloudconvert"
	"github.com/saurab2057/Filetool/internal/config"
	"github.com/saurab2057/Filetool/internal/db"
	"github.com/saurab2057/Filetool/internal/metrics"
	"github.com/saurab2057/Filetool/internal/repository"
	mongorepo "github.com/saurab2057/Filetool/internal/repository/mongo"
	"github.com/saurab2057/Filetool/internal/service"
	"github.com/saurab2057/Filetool/internal/storage"
)

const federatedTimeout = 10 * time.Second

type App struct {
	Cfg     *config.Config
	Store   *Store
	Repos   Repositories
	Metrics *metrics.Metrics

	SessionService    *service.SessionService
	AuthService       *service.AuthService
	ConversionService *service.ConversionService
	UserService       *service.UserService
	AdminService      *service.AdminService
	EmailService      service.EmailSender
}

// Repositories is the persistence backend selected by DB_DRIVER.
type Repositories struct {
	Accounts repository.AccountRepository
	Jobs     repository.JobRepository
	Settings repository.SettingsRepository
	Metadata repository.MetadataRepository
}

// Store owns the open database connection behind Repositories.
type Store struct {
	DB    *sqlx.DB
	Mongo *mongorepo.Mongo
	Repositories
}

// Deps are the collaborators Assemble wires into services. Nil Email and
// Federated fall back to the configured implementations.
type Deps struct {
	Repos     Repositories
	Storage   storage.Storage
	Converter service.Converter
	Email     service.EmailSender
	Federated service.FederatedVerifier
	Metrics   *metrics.Metrics
}

// OpenStore connects to the configured database. SQL databases are migrated to
// the latest version.
func OpenStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	switch {
	case db.IsSQL(cfg.DBDriver):
		database, err := db.Init(ctx, cfg.DBDriver, cfg.DBConnection)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := db.RunMigrations(ctx, database.DB, cfg.DBDriver); err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return &Store{DB: database, Repositories: SQLRepositories(database)}, nil
	case cfg.DBDriver == "mongo":
		m, err := mongorepo.New(ctx, cfg.DBConnection)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize mongo: %w", err)
		}
		return &Store{Mongo: m, Repositories: MongoRepositories(m)}, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.DBDriver)
	}
}

func (s *Store) Close(ctx context.Context) error {
	var errs []error
	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	if s.Mongo != nil {
		if err := s.Mongo.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close mongo: %w", err))
		}
	}
	return errors.Join(errs...)
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	fileStorage, err := storage.New(ctx, cfg)
	if err != nil {
		_ = store.Close(ctx)
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	converter := cloudconvert.New(cloudconvert.Options{
		APIKey:  cfg.CloudConvertAPIKey,
		Sandbox: cfg.CloudConvertSandbox,
	})

	a := Assemble(cfg, Deps{
		Repos:     store.Repositories,
		Storage:   fileStorage,
		Converter: converter,
		Metrics:   m,
	})
	a.Store = store
	return a, nil
}

// Assemble builds every service from already opened backends.
func Assemble(cfg *config.Config, deps Deps) *App {
	email := deps.Email
	if email == nil {
		email = service.NewEmailService(cfg.ResendAPIKey, cfg.EmailFrom, cfg.FrontendURL, cfg.AppName, cfg.IsDevelopment())
	}
	federated := deps.Federated
	if federated == nil {
		federated = service.NewGoogleVerifier(cfg.GoogleUserInfoURL, &http.Client{Timeout: federatedTimeout})
	}

	sessions := service.NewSessionService(deps.Repos.Accounts, service.SessionConfig{
		AccessSecret:  cfg.AccessTokenSecret,
		RefreshSecret: cfg.RefreshTokenSecret,
		ResetSecret:   cfg.ResetTokenSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
		ResetTTL:      cfg.ResetTokenTTL,
		Rotate:        cfg.RefreshRotation,
	}, deps.Metrics)

	metadata := service.NewMetadataService(deps.Repos.Metadata)
	files := service.NewFileService(deps.Storage)

	return &App{
		Cfg:            cfg,
		Repos:          deps.Repos,
		Metrics:        deps.Metrics,
		SessionService: sessions,
		AuthService: service.NewAuthService(deps.Repos.Accounts, sessions, email, federated, metadata, deps.Metrics, service.AuthConfig{
			FrontendURL:  cfg.FrontendURL,
			IsProduction: cfg.IsProduction(),
			RefreshTTL:   cfg.RefreshTokenTTL,
		}),
		ConversionService: service.NewConversionService(deps.Repos.Jobs, deps.Converter, deps.Metrics, cfg.CloudConvertTimeout),
		UserService:       service.NewUserService(deps.Repos.Accounts, files),
		AdminService:      service.NewAdminService(deps.Repos.Accounts, deps.Repos.Jobs, deps.Repos.Settings, deps.Repos.Metadata),
		EmailService:      email,
	}
}

func SQLRepositories(database *sqlx.DB) Repositories {
	return Repositories{
		Accounts: repository.NewAccountRepository(database),
		Jobs:     repository.NewJobRepository(database),
		Settings: repository.NewSettingsRepository(database),
		Metadata: repository.NewMetadataRepository(database),
	}
}

func MongoRepositories(m *mongorepo.Mongo) Repositories {
	return Repositories{
		Accounts: mongorepo.NewAccountRepository(m),
		Jobs:     mongorepo.NewJobRepository(m),
		Settings: mongorepo.NewSettingsRepository(m),
		Metadata: mongorepo.NewMetadataRepository(m),
	}
}

func (a *App) Close(ctx context.Context) error {
	if a.Store == nil {
		return nil
	}
	if err := a.Store.Close(ctx); err != nil {
		return err
	}
	slog.Info("app closed")
	return nil
}
