package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/saurab2057/Filetool/internal/model"
	"github.com/saurab2057/Filetool/internal/repository"
)

// settingsReadOnlyKeys are dropped from configuration updates.
var settingsReadOnlyKeys = []string{"key", "_id", "createdAt", "updatedAt"}

type AdminService struct {
	accounts repository.AccountRepository
	jobs     repository.JobRepository
	settings repository.SettingsRepository
	metadata repository.MetadataRepository
}

func NewAdminService(
	accounts repository.AccountRepository,
	jobs repository.JobRepository,
	settings repository.SettingsRepository,
	metadata repository.MetadataRepository,
) *AdminService {
	return &AdminService{
		accounts: accounts,
		jobs:     jobs,
		settings: settings,
		metadata: metadata,
	}
}

// Settings returns the system configuration, creating the defaults on first use.
func (s *AdminService) Settings(ctx context.Context) (*model.SystemSettings, error) {
	settings, err := s.settings.Get(ctx)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, repository.ErrSettingsNotFound) {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	settings = model.DefaultSettings()
	if err := s.settings.Upsert(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to create default settings: %w", err)
	}
	slog.Info("created default system settings")
	return settings, nil
}

// UpdateSettings merges the supplied JSON fields into the stored configuration.
// Identity and timestamp fields are ignored.
func (s *AdminService) UpdateSettings(ctx context.Context, patch map[string]json.RawMessage) (*model.SystemSettings, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}

	for _, k := range settingsReadOnlyKeys {
		delete(patch, k)
	}

	raw, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("failed to encode settings patch: %w", err)
	}
	if err := json.Unmarshal(raw, settings); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, invalidField(typeErr.Field, fmt.Sprintf("Expected a %s value.", typeErr.Type.Kind()))
		}
		return nil, invalidField("config", "Invalid configuration payload.")
	}

	settings.UpdatedAt = time.Now().UTC()
	if err := s.settings.Upsert(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}
	return settings, nil
}

// Users lists every account together with its latest login metadata.
func (s *AdminService) Users(ctx context.Context) ([]*model.AccountOverview, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	all, err := s.metadata.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list login metadata: %w", err)
	}
	byUser := make(map[string]*model.LoginMetadata, len(all))
	for _, m := range all {
		byUser[m.UserID] = m
	}

	overviews := make([]*model.AccountOverview, 0, len(accounts))
	for _, a := range accounts {
		overviews = append(overviews, &model.AccountOverview{
			Identity:       a.Identity(),
			LatestMetadata: byUser[a.ID],
		})
	}
	return overviews, nil
}

// UpdateUser changes status and/or role. Empty values keep the current ones.
// Banning an account also ends its session.
func (s *AdminService) UpdateUser(ctx context.Context, id, status, role string) (*model.AccountOverview, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, invalidField("id", "Invalid user ID.")
	}

	verr := &ValidationError{}
	if status != "" && !model.ValidStatus(status) {
		verr.Add("status", "Status must be one of active, banned or flagged.")
	}
	if role != "" && !model.ValidRole(role) {
		verr.Add("role", "Role must be user or admin.")
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	updated, err := s.accounts.UpdateAccess(ctx, id, status, role)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, publicError(ErrNotFound, "User not found.")
		}
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	slog.Info("account access updated", "user_id", id, "status", updated.Status, "role", updated.Role)

	overview := &model.AccountOverview{Identity: updated.Identity()}
	latest, err := s.metadata.ByUser(ctx, id)
	switch {
	case err == nil:
		overview.LatestMetadata = latest
	case !errors.Is(err, repository.ErrMetadataNotFound):
		slog.Warn("failed to load login metadata", "error", err, "user_id", id)
	}
	return overview, nil
}

func (s *AdminService) Jobs(ctx context.Context) ([]*model.JobWithOwner, error) {
	jobs, err := s.jobs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}
