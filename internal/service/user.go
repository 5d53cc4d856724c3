package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/saurab2057/Filetool/internal/model"
	"github.com/saurab2057/Filetool/internal/repository"
	"github.com/saurab2057/Filetool/internal/validation"
)

type UserService struct {
	accounts repository.AccountRepository
	files    *FileService
}

func NewUserService(accounts repository.AccountRepository, files *FileService) *UserService {
	return &UserService{accounts: accounts, files: files}
}

func (s *UserService) Profile(ctx context.Context, id string) (*model.Identity, error) {
	account, err := s.accounts.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, publicError(ErrNotFound, "User not found.")
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account.Identity(), nil
}

// UpdateProfile changes the display name and, when avatar is given, the profile picture.
// An empty name keeps the current one.
func (s *UserService) UpdateProfile(ctx context.Context, id, name string, avatar *multipart.FileHeader) (*model.Identity, error) {
	current, err := s.Profile(ctx, id)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = current.Name
	} else if err := validation.ValidateName(name); err != nil {
		return nil, invalidField("name", "Name must be at most 100 characters.")
	}

	var avatarURL, storagePath *string
	if avatar != nil {
		p, u, err := s.files.UploadAvatar(ctx, id, avatar)
		if err != nil {
			return nil, err
		}
		storagePath, avatarURL = &p, &u
	}

	if err := s.accounts.UpdateProfile(ctx, id, name, avatarURL); err != nil {
		if storagePath != nil {
			s.files.Delete(ctx, *storagePath)
		}
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, publicError(ErrNotFound, "User not found.")
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return s.Profile(ctx, id)
}
