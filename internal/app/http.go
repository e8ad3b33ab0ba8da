package app

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"

	"admin-console/internal/auth/handler"
	"admin-console/internal/backend"
	"admin-console/internal/config"
	"admin-console/internal/logger"
	"admin-console/internal/middleware"
	"admin-console/internal/resources"
	"admin-console/internal/session"

	"github.com/gin-gonic/gin"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	router, err := newRouter(cfg, infra)
	if err != nil {
		_ = infra.Close()
		return nil, nil, err
	}

	return router, infra.Close, nil
}

func newRouter(cfg config.Config, infra *Infra) (*gin.Engine, error) {

	// ----------------------------
	// Dependencies
	// ----------------------------

	cookieOpts := session.CookieOptions{
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}

	guardOpts := []middleware.GuardOption{middleware.WithGuardCookieOptions(cookieOpts)}
	if cfg.TokenVerifyKey != "" {
		verifier, err := middleware.NewHMACVerifier(cfg.TokenVerifyKey)
		if err != nil {
			return nil, err
		}
		guardOpts = append(guardOpts, middleware.WithVerifier(verifier))
		logger.Info("token signature verification enabled", nil)
	}

	cms := backend.New(cfg.BackendURL, cfg.BackendTimeout)
	guard := middleware.NewRouteGuard(guardOpts...)
	sessions := middleware.NewSessionMiddleware(cookieOpts)

	authHandler := handler.NewHandler(cms, cookieOpts)
	resourceHandler := resources.NewHandler(cms, infra.ListCache, infra.Audit)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog())
	router.Use(middleware.Gin(guard.Protect))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ----------------------------
	// Auth
	// ----------------------------

	authHandler.RegisterRoutes(router)

	router.GET(session.SignInPath, page(cfg.StaticDir, "auth/sign-in.html"))
	router.GET("/auth/forgot-password", page(cfg.StaticDir, "auth/forgot-password.html"))

	// ----------------------------
	// Resources
	// ----------------------------

	api := router.Group("/api/resources")
	api.Use(middleware.Gin(sessions.RequireSession))
	resourceHandler.RegisterRoutes(api)

	// ----------------------------
	// Console pages
	// ----------------------------

	router.Static("/assets", filepath.Join(cfg.StaticDir, "assets"))

	index := page(cfg.StaticDir, "index.html")
	router.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet || strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
			return
		}
		index(c)
	})

	return router, nil
}

func page(dir, name string) gin.HandlerFunc {
	path := filepath.Join(dir, filepath.FromSlash(name))
	return func(c *gin.Context) {
		c.File(path)
	}
}
