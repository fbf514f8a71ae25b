package http

import (
	"context"
	"log/slog"

	"github.com/geocoder89/blogapi/internal/http/handlers"
	"github.com/geocoder89/blogapi/internal/http/middlewares"
	"github.com/geocoder89/blogapi/internal/observability"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type RouterDeps struct {
	Env  string
	Log  *slog.Logger
	Prom *observability.Prom
	Ping func(ctx context.Context) error

	Credentials handlers.Credentials
	Articles    handlers.Articles

	CORSAllowedOrigins []string
	MaxBodyBytes       int64

	// TracingService enables the otelgin middleware when non-empty.
	TracingService string
}

func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	if deps.TracingService != "" {
		r.Use(otelgin.Middleware(deps.TracingService))
	}
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(deps.Log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(deps.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(deps.MaxBodyBytes))

	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
		r.GET("/metrics", gin.WrapH(deps.Prom.Handler()))
	}

	// health
	h := handlers.NewHealthHandler(deps.Ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	// docs
	r.GET("/docs", handlers.SwaggerUI)
	r.GET("/docs/openapi.yaml", handlers.OpenAPISpec)

	api := r.Group("/api")
	api.Use(middlewares.RequireJSON())

	authHandler := handlers.NewAuthHandler(deps.Credentials, deps.Log)
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)
	api.PUT("/user/update/:id", authHandler.UpdateProfile)

	articlesHandler := handlers.NewArticlesHandler(deps.Articles, deps.Log)
	blog := api.Group("/blog")
	blog.GET("/articles", articlesHandler.List)
	blog.POST("/articles", articlesHandler.Create)
	blog.DELETE("/articles", articlesHandler.DeleteAll)
	blog.GET("/articles/search", articlesHandler.Search)
	blog.GET("/articles/:ref", articlesHandler.Get)
	blog.DELETE("/articles/:ref", articlesHandler.Delete)
	blog.GET("/categories", articlesHandler.Categories)
	blog.GET("/recent-posts", articlesHandler.Recent)

	return r
}
