package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/vaadly/vaadly/internal/identity"
)

// DefaultSessionTTL is used when the config does not set one.
const DefaultSessionTTL = 24 * time.Hour

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	repo       identity.PartyRepo
	sessions   identity.SessionRepo
	auth       *identity.UserAuth
	sessionTTL time.Duration
}

// NewAuthHandler creates a new authentication handler.
func NewAuthHandler(repo identity.PartyRepo, sessions identity.SessionRepo, auth *identity.UserAuth, sessionTTL time.Duration) *AuthHandler {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &AuthHandler{
		repo:       repo,
		sessions:   sessions,
		auth:       auth,
		sessionTTL: sessionTTL,
	}
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// userView is the user shape returned to clients.
type userView struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
	Role        string `json:"role"`
	IsAdmin     bool   `json:"is_admin"`
	CanEdit     bool   `json:"can_edit"`
}

func viewOf(user *identity.User) userView {
	return userView{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Role:        user.Role,
		IsAdmin:     user.IsAdmin(),
		CanEdit:     user.CanEdit(),
	}
}

// LoginResponse is the response for a successful login.
type LoginResponse struct {
	Token     string   `json:"token"`
	ExpiresAt string   `json:"expires_at"`
	User      userView `json:"user"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	ctx := r.Context()

	user, err := h.auth.Authenticate(ctx, h.repo, req.Username, req.Password)
	if err != nil {
		WriteUnauthorized(w, "invalid username or password")
		return
	}

	session, err := h.sessions.Create(ctx, user, h.sessionTTL)
	if err != nil {
		WriteInternalError(w)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "session",
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	WriteData(w, http.StatusOK, LoginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.Format(time.RFC3339),
		User:      viewOf(user),
	})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := ExtractToken(r)
	if token == "" {
		WriteUnauthorized(w, "no session token provided")
		return
	}

	_ = h.sessions.Delete(r.Context(), token)

	http.SetCookie(w, &http.Cookie{
		Name:     "session",
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		MaxAge:   -1,
	})

	WriteData(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// GetCurrentUser handles GET /api/auth/me.
func (h *AuthHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	token := ExtractToken(r)
	if token == "" {
		WriteUnauthorized(w, "no session token provided")
		return
	}

	ctx := r.Context()
	session, err := h.sessions.Get(ctx, token)
	if err != nil {
		WriteUnauthorized(w, "session expired or invalid")
		return
	}

	user, err := h.repo.Get(ctx, session.UserID)
	if err != nil {
		WriteUnauthorized(w, "user not found")
		return
	}

	WriteData(w, http.StatusOK, viewOf(user))
}

// ExtractToken gets the session token from the Authorization header or the
// session cookie.
func ExtractToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}

	cookie, err := r.Cookie("session")
	if err == nil {
		return cookie.Value
	}

	return ""
}
