package identity

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Bootstrap creates the initial admin user idempotently.
type Bootstrap struct {
	repo PartyRepo
	auth *UserAuth
	log  *slog.Logger
}

// NewBootstrap creates a new bootstrap handler.
func NewBootstrap(repo PartyRepo, auth *UserAuth, log *slog.Logger) *Bootstrap {
	return &Bootstrap{
		repo: repo,
		auth: auth,
		log:  log,
	}
}

// EnsureAdmin creates the admin user if it does not exist.
// When no password is configured, a random one is generated and logged once
// so the operator can log in and change it.
func (b *Bootstrap) EnsureAdmin(ctx context.Context, username, password string, explicitPassword bool) error {
	_, err := b.repo.GetByUsername(ctx, username)
	if err == nil {
		b.log.Debug("bootstrap admin already exists", "username", username)
		return nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return err
	}

	generated := false
	if !explicitPassword || password == "" {
		password, err = generatePassword()
		if err != nil {
			return err
		}
		generated = true
	}

	hash, err := b.auth.HashPassword(password)
	if err != nil {
		return err
	}

	user := &User{
		ID:           uuid.NewString(),
		Username:     username,
		DisplayName:  "Administrator",
		PasswordHash: hash,
		Role:         RoleAdmin,
		Bootstrap:    true,
		CreatedAt:    time.Now(),
	}

	if err := b.repo.Create(ctx, user); err != nil {
		return err
	}

	if generated {
		b.log.Warn("created bootstrap admin with generated password",
			"username", username,
			"password", password)
	} else {
		b.log.Info("created bootstrap admin", "username", username)
	}
	return nil
}

// generatePassword returns a random URL-safe password.
func generatePassword() (string, error) {
	b := make([]byte, 18)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
