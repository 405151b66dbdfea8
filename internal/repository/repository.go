// Package repository stores applications and their sections.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"grant-portal/internal/common/config"
	"grant-portal/internal/common/database"
	"grant-portal/internal/common/logger"
	"grant-portal/internal/migrations"
	"grant-portal/internal/models"
)

var (
	ErrNotFound    = errors.New("NOT_FOUND")
	ErrUnsupported = errors.New("UNSUPPORTED_DRIVER")
)

// Repository is the persistence contract of the data API. Application
// methods are scoped to the owning user; section methods assume the caller
// already checked ownership of the application.
type Repository interface {
	ListApplications(ctx context.Context, userID string) ([]models.Application, error)
	CreateApplication(ctx context.Context, app models.Application) (*models.Application, error)
	GetApplication(ctx context.Context, userID, id string) (*models.Application, error)
	UpdateApplication(ctx context.Context, userID, id string, patch models.ApplicationPatch) (*models.Application, error)
	DeleteApplication(ctx context.Context, userID, id string) error

	ListSections(ctx context.Context, applicationID string) ([]models.Section, error)
	FindSection(ctx context.Context, applicationID, sectionName string) (*models.Section, error)
	CreateSection(ctx context.Context, section models.Section) (*models.Section, error)
	UpdateSection(ctx context.Context, id string, section models.Section) (*models.Section, error)
}

// UpsertSection updates the section named section.SectionName for its
// application, or creates it. created reports which branch ran.
func UpsertSection(ctx context.Context, repo Repository, section models.Section) (saved *models.Section, created bool, err error) {
	existing, err := repo.FindSection(ctx, section.ApplicationID, section.SectionName)
	switch {
	case err == nil:
		saved, err = repo.UpdateSection(ctx, existing.ID, section)
		return saved, false, err
	case errors.Is(err, ErrNotFound):
		saved, err = repo.CreateSection(ctx, section)
		return saved, true, err
	default:
		return nil, false, err
	}
}

func now() time.Time {
	return time.Now().UTC()
}

// New builds the repository selected by cfg.Driver. The returned close
// function releases any pooled connections.
func New(ctx context.Context, cfg config.DatabaseConfig, log logger.Logger) (Repository, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Driver {
	case config.DriverMemory:
		return NewMemoryRepository(), noop, nil

	case config.DriverSupabase:
		client, err := database.NewSupabase(cfg.Supabase)
		if err != nil {
			return nil, noop, err
		}
		return NewSupabaseRepository(client), noop, nil

	case config.DriverPostgres:
		pg, err := database.NewPostgres(cfg.Postgres)
		if err != nil {
			return nil, noop, err
		}
		if err := pg.Ping(ctx); err != nil {
			pg.Close()
			return nil, noop, err
		}
		if cfg.Postgres.AutoMigrate {
			if err := database.Migrate(pg, migrations.FS); err != nil {
				pg.Close()
				return nil, noop, err
			}
			log.Info("database migrations applied", nil)
		}
		return NewPostgresRepository(pg, log), pg.Close, nil

	default:
		return nil, noop, fmt.Errorf("%w: %q", ErrUnsupported, cfg.Driver)
	}
}
