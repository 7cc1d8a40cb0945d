package clients

import (
	"context"
	"net/http"
)

type AuthClient struct{ c *Client }

func NewAuthClient(c *Client) *AuthClient { return &AuthClient{c: c} }

func (ac *AuthClient) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	var out AuthResponse
	err := ac.c.call(ctx, http.MethodPost, "/auth/register", nil, "", req, &out)
	return out, err
}

func (ac *AuthClient) Login(ctx context.Context, req LoginRequest) (AuthResponse, error) {
	var out AuthResponse
	err := ac.c.call(ctx, http.MethodPost, "/auth/login", nil, "", req, &out)
	return out, err
}

func (ac *AuthClient) RefreshToken(ctx context.Context, refreshToken string) (AuthResponse, error) {
	var out AuthResponse
	in := map[string]string{"refreshToken": refreshToken}
	err := ac.c.call(ctx, http.MethodPost, "/auth/refresh-token", nil, "", in, &out)
	return out, err
}

// Me returns the profile owning token.
func (ac *AuthClient) Me(ctx context.Context, token string) (UserInfo, error) {
	var out UserInfo
	err := ac.c.call(ctx, http.MethodGet, "/auth/me", nil, token, nil, &out)
	return out, err
}
