package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/saurab2057/Filetool/internal/model"
	"github.com/saurab2057/Filetool/internal/repository"
	"github.com/saurab2057/Filetool/mocks"
	"github.com/stretchr/testify/require"
)

type adminMocks struct {
	accounts *mocks.MockAccountRepository
	jobs     *mocks.MockJobRepository
	settings *mocks.MockSettingsRepository
	metadata *mocks.MockMetadataRepository
}

func newAdminServiceWithMocks(t *testing.T) (*AdminService, adminMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := adminMocks{
		accounts: mocks.NewMockAccountRepository(ctrl),
		jobs:     mocks.NewMockJobRepository(ctrl),
		settings: mocks.NewMockSettingsRepository(ctrl),
		metadata: mocks.NewMockMetadataRepository(ctrl),
	}
	return NewAdminService(m.accounts, m.jobs, m.settings, m.metadata), m
}

func TestAdminService_Settings_CreatesDefaults(t *testing.T) {
	svc, m := newAdminServiceWithMocks(t)
	ctx := context.Background()

	m.settings.EXPECT().Get(ctx).Return(nil, repository.ErrSettingsNotFound)
	m.settings.EXPECT().Upsert(ctx, gomock.Any()).Return(nil)

	settings, err := svc.Settings(ctx)
	require.NoError(t, err)
	require.Equal(t, model.DefaultSettings().MaxJobsPerHour, settings.MaxJobsPerHour)
}

func TestAdminService_UpdateSettings(t *testing.T) {
	svc, m := newAdminServiceWithMocks(t)
	ctx := context.Background()

	current := model.DefaultSettings()
	createdAt := current.CreatedAt
	m.settings.EXPECT().Get(ctx).Return(current, nil)
	m.settings.EXPECT().Upsert(ctx, gomock.Any()).Return(nil)

	patch := map[string]json.RawMessage{
		"maxJobsPerHour":  json.RawMessage(`50`),
		"enableRateLimit": json.RawMessage(`false`),
		"createdAt":       json.RawMessage(`"1999-01-01T00:00:00Z"`),
		"_id":             json.RawMessage(`"other"`),
		"key":             json.RawMessage(`"other"`),
	}

	updated, err := svc.UpdateSettings(ctx, patch)
	require.NoError(t, err)
	require.Equal(t, 50, updated.MaxJobsPerHour)
	require.False(t, updated.EnableRateLimit)
	require.Equal(t, 300, updated.MaxProcessingTime)
	require.Equal(t, createdAt, updated.CreatedAt)
}

func TestAdminService_UpdateSettings_TypeMismatch(t *testing.T) {
	svc, m := newAdminServiceWithMocks(t)
	ctx := context.Background()

	m.settings.EXPECT().Get(ctx).Return(model.DefaultSettings(), nil)

	_, err := svc.UpdateSettings(ctx, map[string]json.RawMessage{
		"maxJobsPerHour": json.RawMessage(`"lots"`),
	})
	fields := validationFields(t, err)
	require.Contains(t, fields, "maxJobsPerHour")
}

func TestAdminService_Users(t *testing.T) {
	svc, m := newAdminServiceWithMocks(t)
	ctx := context.Background()

	a := testAccount(model.RoleUser)
	b := testAccount(model.RoleAdmin)
	b.ID = "b"
	m.accounts.EXPECT().List(ctx).Return([]*model.Account{a, b}, nil)
	m.metadata.EXPECT().All(ctx).Return([]*model.LoginMetadata{{UserID: a.ID, IP: "203.0.113.1"}}, nil)

	users, err := svc.Users(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Equal(t, "203.0.113.1", users[0].LatestMetadata.IP)
	require.Nil(t, users[1].LatestMetadata)
}

func TestAdminService_UpdateUser(t *testing.T) {
	svc, m := newAdminServiceWithMocks(t)
	ctx := context.Background()
	account := testAccount(model.RoleUser)

	_, err := svc.UpdateUser(ctx, "not-a-uuid", model.StatusBanned, "")
	require.Equal(t, "Invalid user ID.", validationFields(t, err)["id"])

	_, err = svc.UpdateUser(ctx, account.ID, "sleeping", "owner")
	fields := validationFields(t, err)
	require.Contains(t, fields, "status")
	require.Contains(t, fields, "role")

	// The empty role goes to the repository unchanged, which keeps the stored one.
	banned := *account
	banned.Status = model.StatusBanned
	m.accounts.EXPECT().UpdateAccess(ctx, account.ID, model.StatusBanned, "").Return(&banned, nil)
	m.metadata.EXPECT().ByUser(ctx, account.ID).Return(nil, repository.ErrMetadataNotFound)

	overview, err := svc.UpdateUser(ctx, account.ID, model.StatusBanned, "")
	require.NoError(t, err)
	require.Equal(t, model.StatusBanned, overview.Status)
	require.Nil(t, overview.LatestMetadata)

	m.accounts.EXPECT().UpdateAccess(ctx, account.ID, "", model.RoleAdmin).Return(nil, repository.ErrAccountNotFound)
	_, err = svc.UpdateUser(ctx, account.ID, "", model.RoleAdmin)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAdminService_Jobs(t *testing.T) {
	svc, m := newAdminServiceWithMocks(t)
	ctx := context.Background()

	want := []*model.JobWithOwner{{ConversionJob: model.ConversionJob{ID: "j1"}, OwnerEmail: "ada@example.com"}}
	m.jobs.EXPECT().List(ctx).Return(want, nil)

	got, err := svc.Jobs(ctx)
	require.NoError(t, err)
	require.Equal(t, want, got)
}
