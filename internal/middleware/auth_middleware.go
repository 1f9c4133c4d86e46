package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/aldenair/storefront-backend/internal/app/model"
	apperrors "github.com/aldenair/storefront-backend/internal/errors"
	"github.com/aldenair/storefront-backend/pkg/util"
	"github.com/gin-gonic/gin"
)

// Context keys for user information
const (
	UserIDKey    = "user_id"
	UserEmailKey = "user_email"
	UserRoleKey  = "user_role"
	tokenKey     = "access_token"
)

// TokenRevocations reports tokens revoked before their expiry (logout).
type TokenRevocations interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

type AuthMiddleware struct {
	jwtSecret   string
	revocations TokenRevocations
}

// NewAuthMiddleware builds the JWT middleware. revocations may be nil, in
// which case logout only discards tokens client side.
func NewAuthMiddleware(jwtSecret string, revocations TokenRevocations) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret:   jwtSecret,
		revocations: revocations,
	}
}

var errMalformedHeader = errors.New("malformed authorization header")

func bearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", nil
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", errMalformedHeader
	}
	return parts[1], nil
}

// verify checks signature, expiry, token type and revocation
func (m *AuthMiddleware) verify(c *gin.Context, token string) (*util.Claims, error) {
	claims, err := util.ValidateToken(token, m.jwtSecret)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != util.TokenTypeAccess {
		return nil, util.ErrInvalidToken
	}
	if m.revocations != nil {
		revoked, err := m.revocations.IsRevoked(c.Request.Context(), token)
		if err != nil {
			// revocation store down: trust the signature
			GetLoggerFromContext(c).Warn("Token revocation check failed", map[string]interface{}{
				"error": err.Error(),
			})
		} else if revoked {
			return nil, errTokenRevoked
		}
	}
	return claims, nil
}

var errTokenRevoked = errors.New("token revoked")

func setIdentity(c *gin.Context, token string, claims *util.Claims) {
	c.Set(UserIDKey, claims.UserID)
	c.Set(UserEmailKey, claims.Email)
	c.Set(UserRoleKey, model.UserRole(claims.Role))
	c.Set(tokenKey, token)
}

// Authenticate requires a valid access token
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		token, err := bearerToken(c)
		if err != nil {
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenInvalid, "Malformed authorization header")
			c.Abort()
			return
		}
		if token == "" {
			apperrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		claims, err := m.verify(c, token)
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			switch {
			case errors.Is(err, util.ErrExpiredToken):
				apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenExpired, "Your session has expired")
			case errors.Is(err, errTokenRevoked):
				apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenRevoked, "This token has been revoked")
			default:
				apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenInvalid, "Invalid access token")
			}
			c.Abort()
			return
		}

		setIdentity(c, token, claims)
		c.Next()
	}
}

// OptionalAuthenticate sets the user when a valid token is present and
// otherwise continues as a guest. Guests can shop and check out.
func (m *AuthMiddleware) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c)
		if err != nil || token == "" {
			c.Next()
			return
		}

		claims, err := m.verify(c, token)
		if err != nil {
			GetLoggerFromContext(c).Debug("Ignoring invalid token, continuing as guest", map[string]interface{}{
				"error": err.Error(),
			})
			c.Next()
			return
		}

		setIdentity(c, token, claims)
		c.Next()
	}
}

// RequireRole must run after Authenticate
func (m *AuthMiddleware) RequireRole(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetUserRole(c)
		if !ok {
			apperrors.Forbidden(c, "")
			c.Abort()
			return
		}

		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}

		userID, _ := GetUserID(c)
		GetLoggerFromContext(c).Warn("Insufficient permissions", map[string]interface{}{
			"user_id":        userID,
			"user_role":      role,
			"required_roles": roles,
			"path":           c.Request.URL.Path,
		})
		apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthzAdminOnly, "This action requires more permissions")
		c.Abort()
	}
}

func GetUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

func GetUserEmail(c *gin.Context) (string, bool) {
	v, ok := c.Get(UserEmailKey)
	if !ok {
		return "", false
	}
	email, ok := v.(string)
	return email, ok
}

func GetUserRole(c *gin.Context) (model.UserRole, bool) {
	v, ok := c.Get(UserRoleKey)
	if !ok {
		return "", false
	}
	role, ok := v.(model.UserRole)
	return role, ok
}

// GetAccessToken returns the raw token Authenticate accepted
func GetAccessToken(c *gin.Context) (string, bool) {
	v, ok := c.Get(tokenKey)
	if !ok {
		return "", false
	}
	token, ok := v.(string)
	return token, ok
}
