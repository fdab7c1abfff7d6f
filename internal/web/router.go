package web

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"dtv-fixtures/internal/config"
	"dtv-fixtures/internal/jobs"
	"dtv-fixtures/internal/service"
)

//go:embed templates/*.html
var templatesFS embed.FS

type Handler struct {
	cfg  *config.Config
	svc  *service.FixtureService
	jobs *jobs.Store
}

func NewHandler(cfg *config.Config, svc *service.FixtureService, store *jobs.Store) *Handler {
	return &Handler{cfg: cfg, svc: svc, jobs: store}
}

// NewRouter wires the web UI. With an empty LOGIN_PASS every route is open.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	secret := h.cfg.SessionSecret
	if secret == "" {
		secret = uuid.New().String()
	}
	store := cookie.NewStore([]byte(secret))
	r.Use(sessions.Sessions("fixturesession", store))

	r.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.html")))

	r.GET("/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "login.html", gin.H{})
	})
	r.POST("/login", h.login)
	r.GET("/logout", h.logout)

	authorized := r.Group("/")
	authorized.Use(h.authRequired)
	{
		authorized.GET("/", h.index)
		authorized.POST("/run", h.run)
		authorized.POST("/verify", h.verify)
		authorized.GET("/logs", h.logs)
		authorized.GET("/status", h.status)
		authorized.POST("/cancel", h.cancel)
		authorized.GET("/download-result/:filename", h.download)
	}
	return r
}

func (h *Handler) authEnabled() bool {
	return h.cfg.LoginPass != ""
}

func (h *Handler) authRequired(c *gin.Context) {
	if !h.authEnabled() {
		c.Next()
		return
	}
	session := sessions.Default(c)
	if session.Get("user") == nil {
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return
	}
	c.Next()
}

func (h *Handler) login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	if h.authEnabled() && username == h.cfg.LoginUser && password == h.cfg.LoginPass {
		session := sessions.Default(c)
		session.Set("user", username)
		_ = session.Save()
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.HTML(http.StatusOK, "login.html", gin.H{
		"Error": "Usuario o contraseña incorrectos",
	})
}

func (h *Handler) logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	_ = session.Save()
	c.Redirect(http.StatusFound, "/login")
}
