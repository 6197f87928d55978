package identity

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"
)

// Session is the server-side record of a signed-in device. The username and
// role are snapshotted onto the session at login so the auth middleware can
// gate writes without a user lookup per request; a role change therefore
// takes effect at the member's next login.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// User rebuilds the request-scoped user from the session snapshot.
func (s *Session) User() *User {
	return &User{
		ID:       s.UserID,
		Username: s.Username,
		Role:     s.Role,
	}
}

// SessionRepo provides session storage operations.
type SessionRepo interface {
	// Create opens a session for the user, snapshotting username and role.
	Create(ctx context.Context, user *User, ttl time.Duration) (*Session, error)

	// Get retrieves a live session by token. Returns ErrSessionNotFound for
	// unknown tokens and ErrSessionExpired for expired ones.
	Get(ctx context.Context, token string) (*Session, error)

	// Delete removes a session (logout). Unknown tokens are a no-op.
	Delete(ctx context.Context, token string) error

	// DeleteByUser removes every session of one user.
	DeleteByUser(ctx context.Context, userID string) error

	// DeleteExpired removes all expired sessions and reports how many.
	DeleteExpired(ctx context.Context) (int, error)
}

// newSessionToken returns a 256-bit random token.
func newSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// MemorySessionRepo keeps sessions in a token-keyed map. The PTA deployments
// this serves hold at most a few dozen live sessions, so DeleteByUser and
// DeleteExpired scan instead of maintaining a per-user index.
type MemorySessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemorySessionRepo creates an empty in-memory session repository.
func NewMemorySessionRepo() *MemorySessionRepo {
	return &MemorySessionRepo{sessions: make(map[string]*Session)}
}

func (r *MemorySessionRepo) Create(ctx context.Context, user *User, ttl time.Duration) (*Session, error) {
	token, err := newSessionToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &Session{
		Token:     token,
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	r.mu.Lock()
	r.sessions[token] = session
	r.mu.Unlock()

	return session, nil
}

func (r *MemorySessionRepo) Get(ctx context.Context, token string) (*Session, error) {
	r.mu.RLock()
	session, ok := r.sessions[token]
	r.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.IsExpired() {
		return nil, ErrSessionExpired
	}
	return session, nil
}

func (r *MemorySessionRepo) Delete(ctx context.Context, token string) error {
	r.mu.Lock()
	delete(r.sessions, token)
	r.mu.Unlock()
	return nil
}

func (r *MemorySessionRepo) DeleteByUser(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for token, session := range r.sessions {
		if session.UserID == userID {
			delete(r.sessions, token)
		}
	}
	return nil
}

func (r *MemorySessionRepo) DeleteExpired(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int
	now := time.Now()
	for token, session := range r.sessions {
		if now.After(session.ExpiresAt) {
			delete(r.sessions, token)
			count++
		}
	}
	return count, nil
}
