package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"returns-desk/config"
	"returns-desk/internal/container"
)

type Server struct {
	httpServer *http.Server
	log        *zap.Logger
}

// NewRouter собирает маршруты дашборда.
func NewRouter(deps *container.Container, maxUploadSize int64, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), Logger(log))

	h := NewHandler(deps, maxUploadSize, log)

	router.GET("/health", h.HealthCheck)

	api := router.Group("/api")
	{
		api.GET("/categories", h.Categories)
		api.GET("/items/:itemNumber", h.ItemDetails)
		api.PATCH("/items/:itemNumber", h.UpdateItem)
		api.GET("/items/:itemNumber/tags", h.ItemTags)
		api.POST("/search", h.Search)
		api.POST("/search/tags", h.SearchTags)
		api.POST("/tags/toggle", h.ToggleTag)
		api.POST("/quality-check", h.QualityCheck)
		api.POST("/claims", h.Claim)
		api.POST("/onboard", h.Onboard)
		api.POST("/export", h.Export)
	}

	return router
}

func New(cfg *config.Config, deps *container.Container, log *zap.Logger) *Server {
	if cfg.App.Release() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := NewRouter(deps, cfg.App.MaxUploadSize, log)

	return &Server{
		httpServer: &http.Server{
			Addr:           cfg.HTTP.Addr,
			Handler:        router,
			ReadTimeout:    cfg.HTTP.ReadTimeout,
			WriteTimeout:   cfg.HTTP.WriteTimeout,
			MaxHeaderBytes: 1 << 20, // 1 MB
		},
		log: log,
	}
}

// Run блокируется до остановки сервера. После Shutdown возвращает nil.
func (s *Server) Run() error {
	s.log.Info("http server is running", zap.String("address", s.httpServer.Addr))

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down http server")
	return s.httpServer.Shutdown(ctx)
}
