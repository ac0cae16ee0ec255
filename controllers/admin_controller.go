package controllers

import (
	"embed"
	"html/template"
	"net/http"
	"strings"
	"time"

	"catalog-service/middleware"
	"catalog-service/models"
	"catalog-service/services"

	"github.com/gin-gonic/gin"
)

const (
	adminIndexPath = "/admin/"
	adminLoginPath = "/admin/login/"
)

//go:embed templates/*.html
var templateFS embed.FS

// AdminTemplates parses the embedded admin pages.
func AdminTemplates() *template.Template {
	return template.Must(template.New("admin").ParseFS(templateFS, "templates/*.html"))
}

// AdminController serves the HTML login and index pages.
type AdminController struct {
	authService      services.AuthService
	dashboardService services.DashboardService
	sessionTTL       time.Duration
	secureCookie     bool
}

func NewAdminController(authService services.AuthService, dashboardService services.DashboardService, sessionTTL time.Duration, secureCookie bool) *AdminController {
	return &AdminController{
		authService:      authService,
		dashboardService: dashboardService,
		sessionTTL:       sessionTTL,
		secureCookie:     secureCookie,
	}
}

type loginPage struct {
	Error    string
	Username string
	Next     string
}

// LoginPage handles GET /admin/login/.
func (ac *AdminController) LoginPage(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "login.html", loginPage{Next: ctx.Query("next")})
}

// Login handles POST /admin/login/. Failures re-render the form.
func (ac *AdminController) Login(ctx *gin.Context) {
	var form models.LoginForm
	if err := ctx.ShouldBind(&form); err != nil {
		ctx.HTML(http.StatusOK, "login.html", loginPage{
			Error:    "Please enter the username and password.",
			Username: form.Username,
			Next:     form.Next,
		})
		return
	}

	_, token, svcErr := ac.authService.Login(ctx.Request.Context(), form.Username, form.Password)
	if svcErr != nil {
		status := http.StatusOK
		if svcErr.StatusCode >= http.StatusInternalServerError {
			status = svcErr.StatusCode
		}
		ctx.HTML(status, "login.html", loginPage{Error: svcErr.Message, Username: form.Username, Next: form.Next})
		return
	}

	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(middleware.SessionCookie, token, int(ac.sessionTTL/time.Second), "/", "", ac.secureCookie, true)
	ctx.Redirect(http.StatusFound, safeNext(form.Next))
}

// Logout handles POST /admin/logout/.
func (ac *AdminController) Logout(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(middleware.SessionCookie, "", -1, "/", "", ac.secureCookie, true)
	ctx.Redirect(http.StatusFound, adminLoginPath)
}

type indexPage struct {
	User   *models.AdminUser
	Models []models.ModelCount
}

// Index handles GET /admin/ behind the page session guard.
func (ac *AdminController) Index(ctx *gin.Context) {
	user, err := middleware.AdminFromContext(ctx)
	if err != nil {
		ctx.Redirect(http.StatusFound, adminLoginPath)
		return
	}

	counts, svcErr := ac.dashboardService.ModelCounts(ctx.Request.Context())
	if svcErr != nil {
		ctx.String(svcErr.StatusCode, svcErr.Message)
		return
	}
	ctx.HTML(http.StatusOK, "index.html", indexPage{User: user, Models: counts})
}

// Me handles GET /admin/api/me.
func (ac *AdminController) Me(ctx *gin.Context) {
	user, err := middleware.AdminFromContext(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"user": user})
}

// safeNext keeps redirects on this site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return adminIndexPath
	}
	return next
}
