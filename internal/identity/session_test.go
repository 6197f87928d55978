package identity_test

import (
	"context"
	"testing"
	"time"

	"github.com/vaadly/vaadly/internal/identity"
)

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := identity.NewMemorySessionRepo()
	user := &identity.User{ID: "user-1", Username: "treasurer", Role: identity.RoleEditor}

	session, err := repo.Create(ctx, user, time.Hour)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if session.Token == "" {
		t.Fatal("Create() must generate a token")
	}
	if session.IsExpired() {
		t.Fatal("fresh session must not be expired")
	}

	got, err := repo.Get(ctx, session.Token)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.UserID != "user-1" {
		t.Errorf("unexpected user id: %s", got.UserID)
	}

	if err := repo.Delete(ctx, session.Token); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.Get(ctx, session.Token); err != identity.ErrSessionNotFound {
		t.Errorf("Get() after delete error = %v, want ErrSessionNotFound", err)
	}

	// Deleting a missing session is not an error
	if err := repo.Delete(ctx, "no-such-token"); err != nil {
		t.Errorf("Delete() of missing session error = %v", err)
	}
}

func TestSessionSnapshotsRole(t *testing.T) {
	ctx := context.Background()
	repo := identity.NewMemorySessionRepo()
	user := &identity.User{ID: "user-1", Username: "chair", Role: identity.RoleAdmin}

	session, err := repo.Create(ctx, user, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if session.Username != "chair" || session.Role != identity.RoleAdmin {
		t.Errorf("session did not snapshot the user: %+v", session)
	}

	rebuilt := session.User()
	if rebuilt.ID != "user-1" || rebuilt.Username != "chair" {
		t.Errorf("User() lost identity fields: %+v", rebuilt)
	}
	if !rebuilt.IsAdmin() {
		t.Error("rebuilt user must keep the snapshotted role")
	}
}

func TestSessionTokensAreUnique(t *testing.T) {
	ctx := context.Background()
	repo := identity.NewMemorySessionRepo()
	user := &identity.User{ID: "user-1"}

	s1, err := repo.Create(ctx, user, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	s2, err := repo.Create(ctx, user, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if s1.Token == s2.Token {
		t.Error("tokens must be unique")
	}
}

func TestExpiredSessionRejected(t *testing.T) {
	ctx := context.Background()
	repo := identity.NewMemorySessionRepo()

	session, err := repo.Create(ctx, &identity.User{ID: "user-1"}, -time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := repo.Get(ctx, session.Token); err != identity.ErrSessionExpired {
		t.Errorf("Get() expired session error = %v, want ErrSessionExpired", err)
	}
}

func TestDeleteByUser(t *testing.T) {
	ctx := context.Background()
	repo := identity.NewMemorySessionRepo()

	s1, err := repo.Create(ctx, &identity.User{ID: "user-1"}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	s2, err := repo.Create(ctx, &identity.User{ID: "user-1"}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	other, err := repo.Create(ctx, &identity.User{ID: "user-2"}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	if err := repo.DeleteByUser(ctx, "user-1"); err != nil {
		t.Fatalf("DeleteByUser() error = %v", err)
	}

	if _, err := repo.Get(ctx, s1.Token); err != identity.ErrSessionNotFound {
		t.Errorf("first session still present: %v", err)
	}
	if _, err := repo.Get(ctx, s2.Token); err != identity.ErrSessionNotFound {
		t.Errorf("second session still present: %v", err)
	}
	if _, err := repo.Get(ctx, other.Token); err != nil {
		t.Errorf("other user's session must survive: %v", err)
	}
}

func TestDeleteExpired(t *testing.T) {
	ctx := context.Background()
	repo := identity.NewMemorySessionRepo()

	if _, err := repo.Create(ctx, &identity.User{ID: "user-1"}, -time.Minute); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Create(ctx, &identity.User{ID: "user-1"}, -time.Minute); err != nil {
		t.Fatal(err)
	}
	live, err := repo.Create(ctx, &identity.User{ID: "user-2"}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	removed, err := repo.DeleteExpired(ctx)
	if err != nil {
		t.Fatalf("DeleteExpired() error = %v", err)
	}
	if removed != 2 {
		t.Errorf("DeleteExpired() removed %d, want 2", removed)
	}

	if _, err := repo.Get(ctx, live.Token); err != nil {
		t.Errorf("live session must survive cleanup: %v", err)
	}
}
