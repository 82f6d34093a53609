package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/bitnshop/bitnshop/internal/authz"
	"github.com/bitnshop/bitnshop/internal/utils"
	"github.com/gin-gonic/gin"
)

// Context keys set by Authenticate.
const (
	ContextClaims    = "claims"
	ContextPrincipal = "principal"
	ContextUserID    = "user_id"
)

const loginPath = "/login"

// Authenticate resolves the current principal from the session cookie or
// a bearer token and stores it in the request context. It never rejects:
// anonymous requests simply carry no principal, and the guards downstream
// decide what that means.
func Authenticate(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.Next()
			return
		}

		claims, err := utils.ValidateToken(tokenString, jwtSecret)
		if err != nil {
			// Expired or tampered token: treat as anonymous.
			c.Next()
			return
		}

		c.Set(ContextClaims, claims)
		c.Set(ContextPrincipal, claims.Principal())
		c.Set(ContextUserID, claims.UserID)
		c.Next()
	}
}

// RequireRoles admits only principals holding at least one of the
// policy's roles. The two denial kinds stay distinct: anonymous requests
// get 401 with a login redirect preserving the requested path, while
// authenticated principals lacking the role get 403.
func RequireRoles(policy authz.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch authz.Decide(CurrentPrincipal(c), policy) {
		case authz.Admit:
			c.Next()
		case authz.DenyUnauthenticated:
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":     "Authentication required",
				"login_url": loginPath + "?next=" + url.QueryEscape(c.Request.URL.RequestURI()),
			})
			c.Abort()
		case authz.DenyForbidden:
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Access denied: you do not have the required roles to access this resource",
			})
			c.Abort()
		}
	}
}

// RequireAuthenticated is the coarse cpanel gate: session presence only,
// roles are not consulted.
func RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if authz.DecideAuthenticated(CurrentPrincipal(c)) != authz.Admit {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":     "You need to login first",
				"login_url": loginPath + "?next=" + url.QueryEscape(c.Request.URL.RequestURI()),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentPrincipal returns the request's principal, or nil when the
// request is anonymous.
func CurrentPrincipal(c *gin.Context) *authz.Principal {
	value, exists := c.Get(ContextPrincipal)
	if !exists {
		return nil
	}
	principal, ok := value.(*authz.Principal)
	if !ok {
		return nil
	}
	return principal
}

// CurrentUserID returns the authenticated user's ID, or 0 for anonymous
// requests.
func CurrentUserID(c *gin.Context) uint {
	value, exists := c.Get(ContextUserID)
	if !exists {
		return 0
	}
	id, ok := value.(uint)
	if !ok {
		return 0
	}
	return id
}

// extractToken looks in the session cookie first, then the
// "Authorization: Bearer <token>" header.
func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie("token"); err == nil && cookie != "" {
		return cookie
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == authHeader {
		return ""
	}
	return token
}
