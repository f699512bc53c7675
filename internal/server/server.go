package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipeshare/internal/auth"
	"recipeshare/internal/config"
	"recipeshare/internal/handler"
	"recipeshare/internal/middleware"
	"recipeshare/internal/service"
	"recipeshare/internal/store"
)

type Server struct {
	router *gin.Engine
	logger *zap.Logger
}

// NewServer wires the services and routes on top of the given collections.
// The signing configuration is fixed here for the process lifetime.
func NewServer(users, recipes store.Collection, cfg *config.Config, logger *zap.Logger) (*Server, error) {
	tokens, err := auth.NewTokenService([]byte(cfg.Auth.SecretKey), cfg.Auth.Algorithm, auth.DefaultTokenTTL)
	if err != nil {
		return nil, err
	}
	hasher := auth.NewPasswordHasher(auth.DefaultBcryptCost)

	router := gin.Default()

	s := &Server{
		router: router,
		logger: logger,
	}
	s.setupRoutes(users, recipes, hasher, tokens)

	return s, nil
}

func (s *Server) setupRoutes(users, recipes store.Collection, hasher *auth.PasswordHasher, tokens *auth.TokenService) {
	authService := service.NewAuthService(users, recipes, hasher, tokens, s.logger)
	recipeService := service.NewRecipeService(recipes, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	recipeHandler := handler.NewRecipeHandler(recipeService, s.logger)

	authRequired := middleware.AuthMiddleware(authService, s.logger)

	// Ping route for health check
	s.router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	userGroup := s.router.Group("/users")
	userGroup.POST("", authHandler.Register)
	userGroup.POST("/token", authHandler.Login)
	userGroup.GET("/me", authRequired, authHandler.Me)
	userGroup.DELETE("/delete/:user_id", authRequired, authHandler.DeleteUser)

	recipeGroup := s.router.Group("/recipes")
	recipeGroup.GET("", recipeHandler.List)
	recipeGroup.GET("/:recipe_id", recipeHandler.Get)
	recipeGroup.POST("", authRequired, recipeHandler.Create)
	recipeGroup.PUT("/:recipe_id", authRequired, recipeHandler.Update)
	recipeGroup.DELETE("/:recipe_id", authRequired, recipeHandler.Delete)

	recipeGroup.POST("/comments/:recipe_id", authRequired, recipeHandler.AddComment)
	recipeGroup.GET("/comments/:recipe_id", recipeHandler.Comments)
	recipeGroup.DELETE("/comments/:recipe_id/:comment_id", authRequired, recipeHandler.DeleteComment)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves HTTP until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Server shutdown failed", zap.Error(err))
		}
	}()

	s.logger.Info("Server starting", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
