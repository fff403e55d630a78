// Package session owns the authenticated identity and the bearer
// credential. Everything else reaches auth state only through the Store:
// the api client pulls the token from it, and any unauthorized response
// funnels back into Invalidate. There are no ambient globals.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pz-dev/bibliocli/internal/console/api"
	"github.com/pz-dev/bibliocli/internal/console/models"
	"github.com/pz-dev/bibliocli/internal/console/normalize"
	"github.com/pz-dev/bibliocli/internal/console/optimistic"
	"github.com/pz-dev/bibliocli/internal/logging"
)

// ErrValidation marks client-side pre-submit failures. They never reach
// the network.
var ErrValidation = errors.New("validation")

// ErrNotLoggedIn is returned by operations that need an identity.
var ErrNotLoggedIn = errors.New("not logged in")

// Backend is the slice of the remote API the session store uses.
type Backend interface {
	Login(ctx context.Context, email, password string) (normalize.Auth, error)
	Register(ctx context.Context, name, email, password string) (normalize.Auth, error)
	Me(ctx context.Context) (models.User, error)
	UpdateUser(ctx context.Context, id string, patch map[string]any) (models.User, error)
}

// Store holds the current identity and credential. It follows the
// console's single-threaded model; methods are not safe for concurrent use.
type Store struct {
	backend Backend
	cred    *CredentialFile
	token   string
	user    *models.User
	log     logging.Logger
}

// NewStore creates a Store persisting its credential in cred. Bind must be
// called with the api client before any network-backed method.
func NewStore(cred *CredentialFile, log logging.Logger) *Store {
	if log == nil {
		log = logging.Discard()
	}
	return &Store{cred: cred, log: log}
}

// Bind attaches the remote backend. Separate from construction because the
// api client itself needs the Store as its token source.
func (s *Store) Bind(b Backend) { s.backend = b }

// Token implements api.TokenSource.
func (s *Store) Token() string { return s.token }

// Current returns the authenticated identity, or nil when logged out.
func (s *Store) Current() *models.User { return s.user }

// LoggedIn reports whether an identity is present.
func (s *Store) LoggedIn() bool { return s.user != nil }

// Init loads the persisted credential and, when one exists, validates it
// against the server. A rejected credential is cleared silently; the user
// simply starts logged out. Transport failures leave the credential in
// place and are reported.
func (s *Store) Init(ctx context.Context) error {
	tok, err := s.cred.Load()
	if err != nil {
		return err
	}
	if tok == "" {
		return nil
	}
	s.token = tok
	return s.Refresh(ctx)
}

// Refresh re-validates the current credential and refreshes the identity
// behind it.
func (s *Store) Refresh(ctx context.Context) error {
	if s.token == "" {
		return nil
	}
	u, err := s.backend.Me(ctx)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			// expired or revoked; no user-facing error
			s.Invalidate()
			return nil
		}
		return err
	}
	s.user = &u
	return nil
}

// Login authenticates and stores the credential plus identity.
func (s *Store) Login(ctx context.Context, email, password string) (*models.User, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password must not be empty", ErrValidation)
	}

	auth, err := s.backend.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.accept(auth)
}

// Register creates an account and logs it in. Email uniqueness is the
// server's authority; only shape checks happen here.
func (s *Store) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name must not be empty", ErrValidation)
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}

	auth, err := s.backend.Register(ctx, name, email, password)
	if err != nil {
		return nil, err
	}
	return s.accept(auth)
}

func (s *Store) accept(auth normalize.Auth) (*models.User, error) {
	if auth.Token == "" {
		return nil, fmt.Errorf("%w: server sent no token", api.ErrBadRequest)
	}
	if err := s.cred.Save(auth.Token); err != nil {
		return nil, err
	}
	s.token = auth.Token
	u := auth.User
	s.user = &u
	s.log.Info(context.Background(), "logged in", "user", u.ID, "role", u.Role)
	return s.user, nil
}

// Logout clears the identity and the persisted credential. No round-trip.
func (s *Store) Logout() error {
	s.user = nil
	s.token = ""
	return s.cred.Clear()
}

// Invalidate drops the session silently. Wired into the api client's
// unauthorized handler so that any 401, even mid-mutation, clears the
// credential globally.
func (s *Store) Invalidate() {
	if s.user != nil || s.token != "" {
		s.log.Debug(context.Background(), "session invalidated")
	}
	s.user = nil
	s.token = ""
	_ = s.cred.Clear()
}

// ToggleFavorite flips bookID in the identity's favorites optimistically:
// the local set changes immediately, the server's PATCH response wins on
// success, and the previous set is restored exactly on failure.
func (s *Store) ToggleFavorite(ctx context.Context, bookID string) error {
	u := s.user
	if u == nil {
		return ErrNotLoggedIn
	}
	next := u.ToggledFavorites(bookID)

	return optimistic.Attempt(ctx, &u.Favorites, next, func(ctx context.Context) (*[]string, error) {
		updated, err := s.backend.UpdateUser(ctx, u.ID, map[string]any{"favorites": next})
		if err != nil {
			return nil, err
		}
		return &updated.Favorites, nil
	})
}

// ProfilePatch is a partial profile update; empty fields are left as-is.
type ProfilePatch struct {
	Name     string
	Email    string
	Password string
}

// UpdateProfile applies the patch and adopts the identity only after the
// server confirms. Identity correctness matters more than responsiveness
// here, so this mutation is deliberately not optimistic.
func (s *Store) UpdateProfile(ctx context.Context, p ProfilePatch) (*models.User, error) {
	u := s.user
	if u == nil {
		return nil, ErrNotLoggedIn
	}

	patch := map[string]any{}
	if v := strings.TrimSpace(p.Name); v != "" {
		patch["name"] = v
	}
	if v := strings.TrimSpace(p.Email); v != "" {
		if err := validateEmail(v); err != nil {
			return nil, err
		}
		patch["email"] = v
	}
	if p.Password != "" {
		if len(p.Password) < 6 {
			return nil, fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
		}
		patch["password"] = p.Password
	}
	if len(patch) == 0 {
		return nil, fmt.Errorf("%w: nothing to update", ErrValidation)
	}

	updated, err := s.backend.UpdateUser(ctx, u.ID, patch)
	if err != nil {
		return nil, err
	}
	s.user = &updated
	return s.user, nil
}

// TokenClaims is the subset of the bearer token the console displays.
type TokenClaims struct {
	Subject   string
	ExpiresAt time.Time
}

// Claims parses the current bearer token without verifying its signature;
// the server is the verifying party, the console only reads the expiry and
// subject for display. Returns false when no token is present or it is not
// a JWT.
func (s *Store) Claims() (TokenClaims, bool) {
	if s.token == "" {
		return TokenClaims{}, false
	}
	var claims jwt.RegisteredClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(s.token, &claims); err != nil {
		return TokenClaims{}, false
	}
	tc := TokenClaims{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		tc.ExpiresAt = claims.ExpiresAt.Time
	}
	return tc, true
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("%w: email must not be empty", ErrValidation)
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return fmt.Errorf("%w: email looks malformed", ErrValidation)
	}
	return nil
}
