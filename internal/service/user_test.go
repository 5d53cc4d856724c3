package service

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/saurab2057/Filetool/internal/model"
	"github.com/saurab2057/Filetool/internal/repository"
	"github.com/saurab2057/Filetool/mocks"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

// fileHeader builds a *multipart.FileHeader the way net/http would after parsing a form.
func fileHeader(t *testing.T, field, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	form, err := multipart.NewReader(&body, mw.Boundary()).ReadForm(10 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File[field][0]
}

func newUserServiceWithMocks(t *testing.T) (*UserService, *mocks.MockAccountRepository, *mocks.MockStorage) {
	t.Helper()
	ctrl := gomock.NewController(t)
	accounts := mocks.NewMockAccountRepository(ctrl)
	store := mocks.NewMockStorage(ctrl)
	return NewUserService(accounts, NewFileService(store)), accounts, store
}

func TestUserService_Profile(t *testing.T) {
	svc, accounts, _ := newUserServiceWithMocks(t)
	ctx := context.Background()
	account := testAccount(model.RoleUser)

	accounts.EXPECT().ByID(ctx, account.ID).Return(account, nil)
	identity, err := svc.Profile(ctx, account.ID)
	require.NoError(t, err)
	require.Equal(t, account.Email, identity.Email)

	accounts.EXPECT().ByID(ctx, "missing").Return(nil, repository.ErrAccountNotFound)
	_, err = svc.Profile(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUserService_UpdateProfile_NameOnly(t *testing.T) {
	svc, accounts, _ := newUserServiceWithMocks(t)
	ctx := context.Background()
	account := testAccount(model.RoleUser)

	renamed := *account
	renamed.Name = "Ada Lovelace"

	gomock.InOrder(
		accounts.EXPECT().ByID(ctx, account.ID).Return(account, nil),
		accounts.EXPECT().UpdateProfile(ctx, account.ID, "Ada Lovelace", (*string)(nil)).Return(nil),
		accounts.EXPECT().ByID(ctx, account.ID).Return(&renamed, nil),
	)

	identity, err := svc.UpdateProfile(ctx, account.ID, "  Ada Lovelace ", nil)
	require.NoError(t, err)
	require.Equal(t, "Ada Lovelace", identity.Name)
}

func TestUserService_UpdateProfile_KeepsNameWhenEmpty(t *testing.T) {
	svc, accounts, _ := newUserServiceWithMocks(t)
	ctx := context.Background()
	account := testAccount(model.RoleUser)

	accounts.EXPECT().ByID(ctx, account.ID).Return(account, nil).Times(2)
	accounts.EXPECT().UpdateProfile(ctx, account.ID, "Ada", (*string)(nil)).Return(nil)

	_, err := svc.UpdateProfile(ctx, account.ID, "", nil)
	require.NoError(t, err)

	accounts.EXPECT().ByID(ctx, account.ID).Return(account, nil)
	_, err = svc.UpdateProfile(ctx, account.ID, strings.Repeat("a", 101), nil)
	require.Contains(t, validationFields(t, err), "name")
}

func TestUserService_UpdateProfile_Avatar(t *testing.T) {
	svc, accounts, store := newUserServiceWithMocks(t)
	ctx := context.Background()
	account := testAccount(model.RoleUser)
	avatar := fileHeader(t, "profilePicture", "me.PNG", "image/png", pngHeader)

	var storedPath string
	accounts.EXPECT().ByID(ctx, account.ID).Return(account, nil).Times(2)
	store.EXPECT().Save(ctx, gomock.Any(), gomock.Any(), avatar.Size, "image/png").
		DoAndReturn(func(_ context.Context, path string, _ any, _ int64, _ string) error {
			storedPath = path
			return nil
		})
	store.EXPECT().URL(ctx, gomock.Any()).Return("https://cdn.example.com/avatar.png")
	accounts.EXPECT().UpdateProfile(ctx, account.ID, "Ada", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, url *string) error {
			require.Equal(t, "https://cdn.example.com/avatar.png", *url)
			return nil
		})

	_, err := svc.UpdateProfile(ctx, account.ID, "", avatar)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(storedPath, "public/avatars/"))
	require.True(t, strings.HasSuffix(storedPath, ".png"))
}

func TestUserService_UpdateProfile_AvatarRollback(t *testing.T) {
	svc, accounts, store := newUserServiceWithMocks(t)
	ctx := context.Background()
	account := testAccount(model.RoleUser)
	avatar := fileHeader(t, "profilePicture", "me.png", "image/png", pngHeader)

	accounts.EXPECT().ByID(ctx, account.ID).Return(account, nil)
	store.EXPECT().Save(ctx, gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	store.EXPECT().URL(ctx, gomock.Any()).Return("https://cdn.example.com/avatar.png")
	accounts.EXPECT().UpdateProfile(ctx, account.ID, "Ada", gomock.Any()).Return(errors.New("db down"))
	store.EXPECT().Delete(ctx, gomock.Any()).Return(nil)

	_, err := svc.UpdateProfile(ctx, account.ID, "", avatar)
	require.Error(t, err)
}

func TestFileService_UploadAvatar_Rejects(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := NewFileService(mocks.NewMockStorage(ctrl))
	ctx := context.Background()

	text := fileHeader(t, "profilePicture", "me.png", "image/png", []byte("just some text"))
	_, _, err := svc.UploadAvatar(ctx, "u1", text)
	require.Contains(t, validationFields(t, err), "profilePicture")

	big := fileHeader(t, "profilePicture", "me.png", "image/png", append(pngHeader, make([]byte, 6<<20)...))
	_, _, err = svc.UploadAvatar(ctx, "u1", big)
	require.Contains(t, validationFields(t, err), "profilePicture")
}
