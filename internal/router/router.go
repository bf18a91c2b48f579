package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/sposusu/eat-aware-scheduler/internal/leaderboard"
	"github.com/sposusu/eat-aware-scheduler/internal/middleware"
	"github.com/sposusu/eat-aware-scheduler/internal/session"
)

// Deps are the handlers and settings the HTTP surface is built from.
type Deps struct {
	Leaderboard  *leaderboard.Handler
	Sessions     *session.Handler
	AllowOrigins []string
	AdminKeyHash string
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     d.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.AdminKeyHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check route
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	if d.Leaderboard != nil {
		api.GET("/leaderboard", d.Leaderboard.Get)
		api.POST("/leaderboard", d.Leaderboard.Post)

		admin := api.Group("/admin")
		admin.Use(middleware.RequireAdminKey(d.AdminKeyHash))
		{
			admin.DELETE("/users/:id", d.Leaderboard.Reset)
		}
	}

	if d.Sessions != nil {
		d.Sessions.Register(api)
	}

	return r
}
