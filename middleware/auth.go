package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"catalog-service/apperrors"
	"catalog-service/models"
	"catalog-service/services"

	"github.com/gin-gonic/gin"
)

const (
	SessionCookie   = "catalog_session"
	AdminContextKey = "admin_user"
)

// Authenticator resolves a session token to an admin user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.AdminUser, *services.ServiceError)
}

// RequireAdminAPI guards JSON endpoints. Failures abort with the error body.
func RequireAdminAPI(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			c.AbortWithStatusJSON(apperrors.ErrUnauthorized.Status, gin.H{"error": "Authentication credentials were not provided"})
			return
		}
		user, svcErr := auth.Authenticate(c.Request.Context(), token)
		if svcErr != nil {
			c.AbortWithStatusJSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
			return
		}
		c.Set(AdminContextKey, user)
		c.Next()
	}
}

// RequireAdminPage guards HTML pages and sends anonymous visitors to
// loginPath with a next parameter.
func RequireAdminPage(auth Authenticator, loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token != "" {
			if user, svcErr := auth.Authenticate(c.Request.Context(), token); svcErr == nil {
				c.Set(AdminContextKey, user)
				c.Next()
				return
			}
		}
		c.Redirect(http.StatusFound, loginPath+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
		c.Abort()
	}
}

// AdminFromContext returns the user stored by the auth middleware.
func AdminFromContext(c *gin.Context) (*models.AdminUser, error) {
	val, exists := c.Get(AdminContextKey)
	if !exists {
		return nil, errors.New("admin user not found in context")
	}
	user, ok := val.(*models.AdminUser)
	if !ok || user == nil {
		return nil, errors.New("admin user has invalid type in context")
	}
	return user, nil
}

// sessionToken reads the session cookie, falling back to a bearer token.
func sessionToken(c *gin.Context) string {
	if v, err := c.Cookie(SessionCookie); err == nil && v != "" {
		return v
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}
