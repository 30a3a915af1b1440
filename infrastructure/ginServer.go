package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apperrors "ekyc.io/application/appErrors"
	"ekyc.io/infrastructure/env"
	"ekyc.io/infrastructure/logger"
	middlewares "ekyc.io/infrastructure/middleware"
	ratelimit "ekyc.io/infrastructure/ratelimit"
	webRoutev1 "ekyc.io/infrastructure/routes/ginRouter/web/v1"
	server_response "ekyc.io/infrastructure/serverResponse"
	startup "ekyc.io/infrastructure/startUp"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type ginServer struct {
	cfg *env.Config
}

// NewRouter mounts every route on a fresh engine. Services must already be
// started.
func NewRouter(cfg *env.Config) *gin.Engine {
	server := gin.New()
	server.Use(gin.Logger(), gin.Recovery())
	origins := []string{"http://localhost:5174"}
	if os.Getenv("GIN_MODE") == "release" {
		origins = cfg.Server.AllowedOrigins
	}
	corsConfig := cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-Id", "User-Agent"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOrigins = []string{"http://localhost:5174"}
	}
	server.Use(cors.New(corsConfig))
	server.Use(ratelimit.TokenBucketPerIP(cfg.Server.RateLimitRPS))
	server.MaxMultipartMemory = 32 << 20

	v1 := server.Group("/api")
	v1.Use(middlewares.RequestContextMiddleware())

	routerV1 := v1.Group("/v1")
	{
		webRoutev1.VerificationRouter(routerV1)
		webRoutev1.AnalysisRouter(routerV1)
		webRoutev1.AdminRouter(routerV1, cfg.Server)
	}

	server.GET("/ping", func(ctx *gin.Context) {
		server_response.Responder.Respond(ctx, http.StatusOK, "pong!", nil, nil, nil)
	})

	server.NoRoute(func(ctx *gin.Context) {
		apperrors.NotFoundError(ctx, fmt.Sprintf("%s %s does not exist", ctx.Request.Method, ctx.Request.URL))
	})
	return server
}

func (s *ginServer) Start() error {
	if err := startup.StartServices(s.cfg); err != nil {
		return err
	}
	defer startup.CleanUpServices()

	gin_mode := os.Getenv("GIN_MODE")
	if gin_mode != "" && gin_mode != "debug" && gin_mode != "release" && gin_mode != "test" {
		return fmt.Errorf("invalid gin mode used - %s", gin_mode)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", s.cfg.Server.Port),
		Handler:           NewRouter(s.cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("Server starting on PORT %s", s.cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
