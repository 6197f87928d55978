package identity

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// decoyPlaintext feeds the decoy hash built in NewUserAuth.
const decoyPlaintext = "vaadly.invalid"

// UserAuth hashes and checks member passwords with bcrypt.
type UserAuth struct {
	cost      int
	decoyHash []byte // compared against for unknown usernames, see Authenticate
}

// NewUserAuth creates a UserAuth with the given bcrypt cost. Costs below
// bcrypt.MinCost fall back to the default; production should use 12 or more.
func NewUserAuth(cost int) *UserAuth {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	decoy, err := bcrypt.GenerateFromPassword([]byte(decoyPlaintext), cost)
	if err != nil {
		decoy = nil
	}
	return &UserAuth{cost: cost, decoyHash: decoy}
}

// HashPassword creates a bcrypt hash of the password.
func (a *UserAuth) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports ErrInvalidPassword unless password matches hash.
func (a *UserAuth) VerifyPassword(hash, password string) error {
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return ErrInvalidPassword
	}
	return nil
}

// Authenticate checks credentials and returns the account. An unknown
// username burns a bcrypt comparison against a decoy hash and reports the
// same ErrInvalidPassword as a wrong password, so neither the error nor the
// response time reveals which usernames exist.
func (a *UserAuth) Authenticate(ctx context.Context, repo PartyRepo, username, password string) (*User, error) {
	user, err := repo.GetByUsername(ctx, username)
	if errors.Is(err, ErrUserNotFound) {
		_ = bcrypt.CompareHashAndPassword(a.decoyHash, []byte(password))
		return nil, ErrInvalidPassword
	}
	if err != nil {
		return nil, err
	}

	if err := a.VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, err
	}
	return user, nil
}
