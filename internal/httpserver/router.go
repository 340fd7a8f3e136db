package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"taskdesk/internal/handler"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth     *handler.AuthHandler
	Tasks    *handler.TaskHandler
	Category *handler.CategoryHandler
	Admin    *handler.AdminHandler
	Contact  *handler.ContactHandler
}

func NewRouter(h Handlers, jwtSecret string, users UserLoader, tokens TokenDenylist, pool *pgxpool.Pool, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(logger))

	health := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	r.GET("/healthz", health)
	r.GET("/health", health)
	r.GET("/readyz", func(c *gin.Context) {
		if err := pool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.POST("/register", h.Auth.Register)
		api.POST("/login", h.Auth.Login)
		api.POST("/contact", h.Contact.Submit)
	}

	authed := api.Group("")
	authed.Use(AuthRequired(jwtSecret, users, tokens, logger))
	{
		authed.POST("/logout", h.Auth.Logout)
		authed.GET("/user", h.Auth.CurrentUser)
		authed.GET("/users/profile", h.Auth.GetProfile)
		authed.PUT("/users/profile", h.Auth.UpdateProfile)
		authed.PUT("/users/change-password", h.Auth.ChangePassword)

		authed.GET("/tasks", h.Tasks.List)
		authed.POST("/tasks", h.Tasks.Create)
		authed.GET("/tasks/:id", h.Tasks.Get)
		authed.PUT("/tasks/:id", h.Tasks.Update)
		authed.DELETE("/tasks/:id", h.Tasks.Delete)

		authed.GET("/categories", h.Category.List)
		authed.POST("/categories", h.Category.Create)
		authed.PUT("/categories/:id", h.Category.Update)
		authed.DELETE("/categories/:id", h.Category.Delete)
	}

	admin := authed.Group("/admin")
	admin.Use(AdminRequired())
	{
		admin.GET("/users", h.Admin.ListUsers)
		admin.PUT("/users/:id", h.Admin.UpdateUser)
		admin.DELETE("/users/:id", h.Admin.DeleteUser)
		admin.GET("/stats", h.Admin.Stats)
		admin.GET("/messages", h.Contact.List)
		admin.PUT("/messages/:id/read", h.Contact.MarkRead)
	}

	return r
}
