package identity_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/vaadly/vaadly/internal/identity"
)

func newBootstrap(repo identity.PartyRepo) *identity.Bootstrap {
	auth := identity.NewUserAuth(4) // Low cost for fast tests
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return identity.NewBootstrap(repo, auth, logger)
}

func TestEnsureAdminCreatesUser(t *testing.T) {
	ctx := context.Background()
	repo := identity.NewMemoryPartyRepo()
	b := newBootstrap(repo)

	if err := b.EnsureAdmin(ctx, "admin", "hunter2", true); err != nil {
		t.Fatalf("EnsureAdmin() error = %v", err)
	}

	user, err := repo.GetByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("admin not created: %v", err)
	}
	if user.Role != identity.RoleAdmin {
		t.Errorf("unexpected role: %s", user.Role)
	}
	if !user.Bootstrap {
		t.Error("bootstrap flag must be set on the seeded admin")
	}

	auth := identity.NewUserAuth(4)
	if err := auth.VerifyPassword(user.PasswordHash, "hunter2"); err != nil {
		t.Errorf("configured password must verify: %v", err)
	}
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := identity.NewMemoryPartyRepo()
	b := newBootstrap(repo)

	if err := b.EnsureAdmin(ctx, "admin", "first-password", true); err != nil {
		t.Fatal(err)
	}
	before, err := repo.GetByUsername(ctx, "admin")
	if err != nil {
		t.Fatal(err)
	}

	// A second run with a different password must not touch the existing user
	if err := b.EnsureAdmin(ctx, "admin", "second-password", true); err != nil {
		t.Fatalf("second EnsureAdmin() error = %v", err)
	}
	after, err := repo.GetByUsername(ctx, "admin")
	if err != nil {
		t.Fatal(err)
	}

	if before.ID != after.ID {
		t.Error("admin user was recreated")
	}
	if before.PasswordHash != after.PasswordHash {
		t.Error("existing admin password was overwritten")
	}
}

func TestEnsureAdminGeneratesPassword(t *testing.T) {
	ctx := context.Background()
	repo := identity.NewMemoryPartyRepo()
	b := newBootstrap(repo)

	if err := b.EnsureAdmin(ctx, "admin", "", false); err != nil {
		t.Fatalf("EnsureAdmin() error = %v", err)
	}

	user, err := repo.GetByUsername(ctx, "admin")
	if err != nil {
		t.Fatal(err)
	}
	if user.PasswordHash == "" {
		t.Error("generated-password path must still hash a password")
	}
}
