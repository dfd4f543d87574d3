// Package account handles registration, password changes and full account
// purge.
package account

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/mediatrack/mediatrack/internal/auth"
	"github.com/mediatrack/mediatrack/internal/database"
	"github.com/mediatrack/mediatrack/internal/social"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrDuplicateHandle = errors.New("handle already registered")
	ErrInvalidHandle   = errors.New("invalid handle")
)

type Service struct {
	log  *log.Logger
	repo database.Repository
}

func NewService(logger *log.Logger, repo database.Repository) *Service {
	return &Service{log: logger, repo: repo}
}

func validateHandle(handle string) error {
	if handle == "" || len(handle) > 64 {
		return ErrInvalidHandle
	}
	for _, r := range handle {
		// the handle is embedded in the serialized participant list, so the
		// delimiter is off limits
		if r == ',' || r == ' ' {
			return ErrInvalidHandle
		}
	}
	return nil
}

func (s *Service) Register(ctx context.Context, handle, password string) (database.Account, error) {
	if err := validateHandle(handle); err != nil {
		return database.Account{}, err
	}
	if password == "" {
		return database.Account{}, fmt.Errorf("password cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return database.Account{}, fmt.Errorf("hash password: %w", err)
	}

	account, err := s.repo.CreateAccount(ctx, database.CreateAccountParams{
		Handle:       handle,
		PasswordHash: string(hash),
		Role:         auth.RoleUser,
	})
	if err != nil {
		if errors.Is(err, database.ErrDuplicateKey) {
			return database.Account{}, ErrDuplicateHandle
		}
		return database.Account{}, err
	}

	return account, nil
}

func (s *Service) ChangePassword(ctx context.Context, handle, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("password cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.repo.UpdatePassword(ctx, handle, string(hash))
}

// Purge removes the account and everything it owns: media records, the
// device binding, friend edges and requests in either role, every
// conversation whose participant set contains the handle along with those
// conversations' messages, and every message the handle authored. The
// repository applies the whole purge as one transaction.
func (s *Service) Purge(ctx context.Context, handle string) error {
	return s.repo.PurgeAccount(ctx, handle, social.ParticipantToken(handle))
}
