package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"catalog-service/middleware"
	"catalog-service/models"
	"catalog-service/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAuth struct {
	user *models.AdminUser
	err  *services.ServiceError
}

func (s stubAuth) Authenticate(_ context.Context, token string) (*models.AdminUser, *services.ServiceError) {
	if token != "good" {
		return nil, &services.ServiceError{StatusCode: http.StatusUnauthorized, Message: "Invalid token"}
	}
	return s.user, s.err
}

func protectedRouter(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/admin/api/things", mw, func(c *gin.Context) {
		user, err := middleware.AdminFromContext(c)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user.Username})
	})
	return r
}

func TestRequireAdminAPI(t *testing.T) {
	r := protectedRouter(middleware.RequireAdminAPI(stubAuth{user: &models.AdminUser{Username: "admin"}}))

	t.Run("No credentials", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/api/things", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Bad token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/api/things", nil)
		req.Header.Set("Authorization", "Bearer bad")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid token")
	})

	t.Run("Cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/api/things", nil)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "good"})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "admin")
	})

	t.Run("Bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/api/things", nil)
		req.Header.Set("Authorization", "Bearer good")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRequireAdminPage_Redirects(t *testing.T) {
	r := gin.New()
	r.GET("/admin/", middleware.RequireAdminPage(stubAuth{}, "/admin/login/"), func(c *gin.Context) {
		c.String(http.StatusOK, "index")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/login/?next=%2Fadmin%2F", w.Header().Get("Location"))
}

func TestAdminFromContext_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, err := middleware.AdminFromContext(c)
	assert.Error(t, err)
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(middleware.SecurityHeaders())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RateLimit(middleware.NewRateLimiter(rate.Every(time.Hour), 2, time.Minute)))
	r.POST("/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimiter_DropsIdleClients(t *testing.T) {
	rl := middleware.NewRateLimiter(rate.Every(time.Hour), 1, time.Nanosecond)
	assert.True(t, rl.Allow("10.0.0.1"))
	time.Sleep(time.Millisecond)
	assert.True(t, rl.Allow("10.0.0.2"))
	assert.Equal(t, 1, rl.Len())
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(middleware.CORSMiddleware([]string{"http://localhost:3000/"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("Allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("Rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.example")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("No origin", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(middleware.Timeout(50 * time.Millisecond))
	r.GET("/", func(c *gin.Context) {
		deadline, ok := c.Request.Context().Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, time.Second)
		c.Status(http.StatusOK)
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

type recorder struct {
	mu     sync.Mutex
	counts []string
}

func (r *recorder) RecordCount(_ context.Context, name string, _ map[string]string) error {
	r.mu.Lock()
	r.counts = append(r.counts, name)
	r.mu.Unlock()
	return nil
}

func (r *recorder) RecordLatency(context.Context, string, time.Duration, map[string]string) error {
	return nil
}

func (r *recorder) IsEnabled() bool { return true }

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.counts...)
}

func TestMetricsMiddleware(t *testing.T) {
	rec := &recorder{}
	r := gin.New()
	r.Use(middleware.MetricsMiddleware(rec, "catalog-service"))
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, []string{"HTTPRequests", "HTTP4xxErrors"}, rec.snapshot())
}

func TestMetricsMiddleware_Disabled(t *testing.T) {
	r := gin.New()
	r.Use(middleware.MetricsMiddleware(nil, "catalog-service"))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
