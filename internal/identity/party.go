// Package identity provides user management, authentication, and session handling.
package identity

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUserExists      = errors.New("user already exists")
	ErrInvalidPassword = errors.New("invalid password")
	ErrSessionExpired  = errors.New("session expired")
	ErrSessionNotFound = errors.New("session not found")
	ErrAdminProtected  = errors.New("bootstrap admin cannot be deleted or demoted")
)

// Role constants for user roles.
const (
	RoleMember = "member"
	RoleEditor = "editor"
	RoleAdmin  = "admin"
)

// User represents a committee member account.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`     // Unique login name
	Email        string    `json:"email"`        // Optional email
	DisplayName  string    `json:"display_name"` // Human-readable name
	PasswordHash string    `json:"-"`            // bcrypt hash, never serialized
	Role         string    `json:"role"`         // admin, editor, member
	Bootstrap    bool      `json:"-"`            // true for the seeded admin
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin returns true if the user is an admin.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanEdit returns true if the user may perform write operations.
func (u *User) CanEdit() bool {
	return u.Role == RoleAdmin || u.Role == RoleEditor
}

// PartyRepo provides user storage operations.
type PartyRepo interface {
	// Create creates a new user. Returns ErrUserExists if username is taken.
	Create(ctx context.Context, user *User) error

	// Get retrieves a user by ID. Returns ErrUserNotFound if not found.
	Get(ctx context.Context, id string) (*User, error)

	// GetByUsername retrieves a user by username. Returns ErrUserNotFound if not found.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// Update updates an existing user.
	Update(ctx context.Context, user *User) error

	// Delete removes a user by ID.
	Delete(ctx context.Context, id string) error

	// List returns all users.
	List(ctx context.Context) ([]*User, error)
}

// MemoryPartyRepo is an in-memory implementation of PartyRepo.
type MemoryPartyRepo struct {
	mu         sync.RWMutex
	users      map[string]*User  // by ID
	byUsername map[string]string // username -> ID
}

// NewMemoryPartyRepo creates a new in-memory party repository.
func NewMemoryPartyRepo() *MemoryPartyRepo {
	return &MemoryPartyRepo{
		users:      make(map[string]*User),
		byUsername: make(map[string]string),
	}
}

func (r *MemoryPartyRepo) Create(ctx context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUsername[user.Username]; exists {
		return ErrUserExists
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	// Store a copy
	u := *user
	r.users[user.ID] = &u
	r.byUsername[user.Username] = user.ID

	return nil
}

func (r *MemoryPartyRepo) Get(ctx context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}

	u := *user
	return &u, nil
}

func (r *MemoryPartyRepo) GetByUsername(ctx context.Context, username string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return nil, ErrUserNotFound
	}

	user := r.users[id]
	u := *user
	return &u, nil
}

func (r *MemoryPartyRepo) Update(ctx context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[user.ID]
	if !ok {
		return ErrUserNotFound
	}

	// The bootstrap admin keeps its role
	if existing.Bootstrap && user.Role != RoleAdmin {
		return ErrAdminProtected
	}

	// If username changed, update the index
	if existing.Username != user.Username {
		delete(r.byUsername, existing.Username)
		r.byUsername[user.Username] = user.ID
	}

	u := *user
	r.users[user.ID] = &u
	return nil
}

func (r *MemoryPartyRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}

	if user.Bootstrap {
		return ErrAdminProtected
	}

	delete(r.byUsername, user.Username)
	delete(r.users, id)
	return nil
}

func (r *MemoryPartyRepo) List(ctx context.Context) ([]*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*User, 0, len(r.users))
	for _, user := range r.users {
		u := *user
		result = append(result, &u)
	}
	return result, nil
}
