package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"shop-kita.backend/pkg/jwt"
	"shop-kita.backend/pkg/logger"
	"shop-kita.backend/pkg/redis"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// SessionIDHeader carries the opaque session id for cookie-session mode
	SessionIDHeader = "X-Session-Id"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// AccountIDKey is the context key for the authenticated account id
	AccountIDKey = "accountId"
	// AccountRoleKey is the context key for the authenticated account role
	AccountRoleKey = "accountRole"
)

// AuthMiddleware authenticates a request from either a bearer access token
// or a session id resolving to a stored token pair in Redis. sessionStore
// may be nil when session mode is disabled.
func AuthMiddleware(jwtService *jwt.Service, sessionStore *redis.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""

		if sessionID := c.GetHeader(SessionIDHeader); sessionID != "" && sessionStore != nil {
			session, err := sessionStore.GetSession(c.Request.Context(), sessionID)
			if err == nil && session != nil {
				tokenString = session.AccessToken
			}
		}

		if tokenString == "" {
			authHeader := c.GetHeader(AuthorizationHeader)
			if authHeader == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
				return
			}
			if !strings.HasPrefix(authHeader, BearerPrefix) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization format. Use: Bearer <token>"})
				return
			}
			tokenString = strings.TrimPrefix(authHeader, BearerPrefix)
		}

		claims, err := jwtService.ParseAccess(tokenString)
		if err != nil {
			logger.Debug(c.Request.Context(), "access token rejected")
			if err == jwt.ErrExpiredToken {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has expired"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(AccountIDKey, claims.AccountID)
		c.Set(AccountRoleKey, claims.Role)

		c.Next()
	}
}

// GetAccountID gets the authenticated account id from context
func GetAccountID(c *gin.Context) (uuid.UUID, bool) {
	val, exists := c.Get(AccountIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := val.(uuid.UUID)
	return id, ok
}

// GetAccountRole gets the authenticated account role from context
func GetAccountRole(c *gin.Context) (string, bool) {
	val, exists := c.Get(AccountRoleKey)
	if !exists {
		return "", false
	}
	role, ok := val.(string)
	return role, ok
}

// RequireRole creates a middleware that requires one of the given roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := GetAccountRole(c)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Account role not found"})
			return
		}

		for _, want := range roles {
			if role == want {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
	}
}
