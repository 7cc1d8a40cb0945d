package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/storage"
)

// AuthAPI is the part of the backend auth client the session needs.
type AuthAPI interface {
	Register(ctx context.Context, req clients.RegisterRequest) (clients.AuthResponse, error)
	Login(ctx context.Context, req clients.LoginRequest) (clients.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (clients.AuthResponse, error)
	Me(ctx context.Context, token string) (clients.UserInfo, error)
}

var ErrNoRefreshToken = errors.New("no refresh token")

var sessionKeys = []string{storage.KeyAccessToken, storage.KeyRefreshToken, storage.KeyUser}

// Store is one shopper's authentication state.
type Store struct {
	mu        sync.Mutex
	sessionID string
	kv        storage.Store
	auth      AuthAPI
	now       func() time.Time

	accessToken  string
	refreshToken string
	user         *clients.UserInfo
}

func NewStore(kv storage.Store, sessionID string, auth AuthAPI) *Store {
	return &Store{kv: kv, sessionID: sessionID, auth: auth, now: time.Now}
}

// Load restores tokens and profile from storage.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var access, refresh string
	var user *clients.UserInfo
	for key, dst := range map[string]any{
		storage.KeyAccessToken:  &access,
		storage.KeyRefreshToken: &refresh,
		storage.KeyUser:         &user,
	} {
		if err := storage.GetJSON(ctx, s.kv, s.sessionID, key, dst); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("load session: %w", err)
		}
	}

	s.accessToken, s.refreshToken, s.user = access, refresh, user
	return nil
}

func (s *Store) Login(ctx context.Context, email, password string) (clients.UserInfo, error) {
	res, err := s.auth.Login(ctx, clients.LoginRequest{Email: email, Password: password})
	if err != nil {
		return clients.UserInfo{}, err
	}
	return s.adopt(ctx, res)
}

func (s *Store) Register(ctx context.Context, req clients.RegisterRequest) (clients.UserInfo, error) {
	res, err := s.auth.Register(ctx, req)
	if err != nil {
		return clients.UserInfo{}, err
	}
	return s.adopt(ctx, res)
}

// CheckAuth validates the stored token against the backend. It reports
// whether the shopper is signed in afterwards. A token the backend rejects
// is discarded; a locally expired one is refreshed first when possible.
// Transport failures leave the stored session untouched.
func (s *Store) CheckAuth(ctx context.Context) (bool, error) {
	token := s.Token()
	if token == "" {
		return false, nil
	}

	if s.expired(token) {
		if err := s.Refresh(ctx); err != nil {
			if errors.Is(err, ErrNoRefreshToken) || clients.IsUnauthorized(err) {
				return false, s.Clear(ctx)
			}
			return false, err
		}
		token = s.Token()
	}

	user, err := s.auth.Me(ctx, token)
	if err != nil {
		if clients.IsUnauthorized(err) {
			return false, s.Clear(ctx)
		}
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.accessToken != token {
		// logged out or replaced meanwhile
		return s.accessToken != "", nil
	}
	if err := s.persistLocked(ctx, map[string]any{storage.KeyUser: user}); err != nil {
		return true, err
	}
	s.user = &user
	return true, nil
}

// Refresh trades the refresh token for a new token pair.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	refresh := s.refreshToken
	s.mu.Unlock()

	if refresh == "" {
		return ErrNoRefreshToken
	}
	res, err := s.auth.RefreshToken(ctx, refresh)
	if err != nil {
		return err
	}
	if res.RefreshToken == "" {
		res.RefreshToken = refresh
	}
	_, err = s.adopt(ctx, res)
	return err
}

// Logout discards tokens and profile.
func (s *Store) Logout(ctx context.Context) error {
	return s.Clear(ctx)
}

// Clear forgets the session locally and in storage.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(ctx, s.sessionID, sessionKeys...); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.accessToken, s.refreshToken, s.user = "", "", nil
	return nil
}

func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken
}

func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

func (s *Store) User() (clients.UserInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return clients.UserInfo{}, false
	}
	return *s.user, true
}

func (s *Store) adopt(ctx context.Context, res clients.AuthResponse) (clients.UserInfo, error) {
	if res.AccessToken == "" {
		return clients.UserInfo{}, errors.New("auth response without access token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	values := map[string]any{
		storage.KeyAccessToken:  res.AccessToken,
		storage.KeyRefreshToken: res.RefreshToken,
	}
	user := res.User
	if user.ID == 0 && s.user != nil {
		// refresh responses may omit the profile
		user = *s.user
	}
	values[storage.KeyUser] = user

	if err := s.persistLocked(ctx, values); err != nil {
		return clients.UserInfo{}, err
	}
	s.accessToken, s.refreshToken, s.user = res.AccessToken, res.RefreshToken, &user
	return user, nil
}

func (s *Store) persistLocked(ctx context.Context, values map[string]any) error {
	raw, err := storage.Encode(values)
	if err != nil {
		return err
	}
	if err := s.kv.Put(ctx, s.sessionID, raw); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// expired reads the exp claim without verifying the signature; the backend
// remains the authority. Tokens that are not JWTs never count as expired.
func (s *Store) expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !s.now().Before(exp.Time)
}

