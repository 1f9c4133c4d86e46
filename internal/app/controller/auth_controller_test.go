package controller

import (
	"net/http"
	"testing"

	"github.com/aldenair/storefront-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authResponse struct {
	User struct {
		ID    uint   `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
	Tokens util.TokenPair `json:"tokens"`
}

func TestAuthController_RegisterLoginMe(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, request{method: http.MethodPost, path: "/api/v1/auth/register", body: RegisterRequest{
		Email: "  Lena@Example.com ", Password: "Parfum2024", Name: "Lena",
	}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var registered authResponse
	decode(t, w, &registered)
	assert.Equal(t, "lena@example.com", registered.User.Email)
	assert.Equal(t, "user", registered.User.Role)
	assert.NotEmpty(t, registered.Tokens.AccessToken)

	w = env.do(t, request{method: http.MethodPost, path: "/api/v1/auth/login", body: LoginRequest{
		Email: "lena@example.com", Password: "Parfum2024",
	}})
	require.Equal(t, http.StatusOK, w.Code)
	var loggedIn authResponse
	decode(t, w, &loggedIn)

	w = env.do(t, request{method: http.MethodGet, path: "/api/v1/auth/me", token: loggedIn.Tokens.AccessToken})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"loyalty_tier":"bronze"`)
}

func TestAuthController_RegisterErrors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		body     RegisterRequest
		wantCode int
		wantErr  string
	}{
		{name: "invalid email", body: RegisterRequest{Email: "nope", Password: "Parfum2024", Name: "A"}, wantCode: http.StatusBadRequest, wantErr: "VALIDATION_INVALID_INPUT"},
		{name: "weak password", body: RegisterRequest{Email: "a@example.com", Password: "short", Name: "A"}, wantCode: http.StatusBadRequest, wantErr: "AUTH_WEAK_PASSWORD"},
		{name: "taken email", body: RegisterRequest{Email: "kunde@example.com", Password: "Parfum2024", Name: "A"}, wantCode: http.StatusConflict, wantErr: "AUTH_EMAIL_EXISTS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, request{method: http.MethodPost, path: "/api/v1/auth/register", body: tt.body})
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantErr)
		})
	}
}

func TestAuthController_LoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, request{method: http.MethodPost, path: "/api/v1/auth/login", body: LoginRequest{
		Email: "kunde@example.com", Password: "Falsch12345",
	}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_INVALID_CREDENTIALS")
}

func TestAuthController_Refresh(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, request{method: http.MethodPost, path: "/api/v1/auth/login", body: LoginRequest{
		Email: "kunde@example.com", Password: "Passwort123",
	}})
	require.Equal(t, http.StatusOK, w.Code)
	var resp authResponse
	decode(t, w, &resp)

	w = env.do(t, request{method: http.MethodPost, path: "/api/v1/auth/refresh", body: RefreshTokenRequest{
		RefreshToken: resp.Tokens.RefreshToken,
	}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "access_token")

	// access tokens are not accepted as refresh tokens
	w = env.do(t, request{method: http.MethodPost, path: "/api/v1/auth/refresh", body: RefreshTokenRequest{
		RefreshToken: resp.Tokens.AccessToken,
	}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthController_Logout(t *testing.T) {
	env := newTestEnv(t)
	token := env.tokenFor(t, env.user)

	w := env.do(t, request{method: http.MethodPost, path: "/api/v1/auth/logout", token: token})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, request{method: http.MethodGet, path: "/api/v1/auth/me", token: token})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_TOKEN_REVOKED")
}
