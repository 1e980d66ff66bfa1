package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/talberry/sdsu-study-bot/docs"
	"github.com/talberry/sdsu-study-bot/internal/ai/agent"
	"github.com/talberry/sdsu-study-bot/internal/ai/component"
	"github.com/talberry/sdsu-study-bot/internal/ai/tools"
	"github.com/talberry/sdsu-study-bot/internal/config"
	"github.com/talberry/sdsu-study-bot/internal/handler"
	"github.com/talberry/sdsu-study-bot/internal/pkg/cache"
	"github.com/talberry/sdsu-study-bot/internal/pkg/canvas"
	"github.com/talberry/sdsu-study-bot/internal/pkg/mongodb"
	"github.com/talberry/sdsu-study-bot/internal/repository"
	"github.com/talberry/sdsu-study-bot/internal/server/middleware"
	"github.com/talberry/sdsu-study-bot/internal/service"
)

const shutdownTimeout = 10 * time.Second

// Server HTTP server
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	mongo  *mongodb.Client
	redis  *cache.RedisCache

	chat      *handler.ChatHandler
	studyPack *handler.StudyPackHandler
	canvas    *handler.CanvasHandler
	health    *handler.HealthHandler
}

// New builds the server and its dependencies
func New(cfg *config.Config) (*Server, error) {
	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &Server{
		cfg:    cfg,
		engine: gin.New(),
	}
	deps := map[string]handler.Pinger{}

	// MongoDB (optional): chat run log
	var runs repository.ChatRunRepository
	if cfg.Mongo.URI != "" {
		client, err := mongodb.New(&cfg.Mongo)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to MongoDB, continuing without the run log")
		} else {
			srv.mongo = client
			deps["mongo"] = client
			log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

			if err := mongodb.EnsureIndexes(client.Database()); err != nil {
				log.Warn().Err(err).Msg("failed to ensure indexes")
			}
			runs = repository.NewChatRunRepo(client.Database())
		}
	}

	// Redis (optional): Canvas snapshot cache
	var snapshots canvas.SnapshotCache
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without the snapshot cache")
		} else {
			srv.redis = rc
			snapshots = rc
			deps["redis"] = rc
			log.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.Canvas.CacheTTL).Msg("connected to Redis")
		}
	}

	cm, err := component.NewChatModel(context.Background(), &cfg.AI)
	if err != nil {
		srv.closeStores()
		return nil, fmt.Errorf("create chat model: %w", err)
	}
	runner, err := agent.NewRunner(cm, tools.NewDefaultRegistry(),
		agent.WithMaxSteps(cfg.Agent.MaxSteps),
		agent.WithToolConcurrency(cfg.Agent.ToolConcurrency),
	)
	if err != nil {
		srv.closeStores()
		return nil, fmt.Errorf("create conversation runner: %w", err)
	}
	log.Info().
		Str("provider", cfg.AI.Provider).
		Str("model", cfg.AI.Model).
		Int("tool_concurrency", cfg.Agent.ToolConcurrency).
		Msg("initialized conversation runner")

	clients := service.NewClientFactory(&cfg.Canvas, snapshots)
	srv.chat = handler.NewChatHandler(service.NewChatService(runner, clients, runs))
	srv.studyPack = handler.NewStudyPackHandler(service.NewStudyPackService(cm, clients))
	srv.canvas = handler.NewCanvasHandler(service.NewCanvasService(clients))
	srv.health = handler.NewHealthHandler(deps)

	srv.setupRoutes()

	return srv, nil
}

// setupRoutes registers middleware and routes
func (s *Server) setupRoutes() {
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger())
	s.engine.Use(middleware.CORS())

	s.engine.GET("/health", s.health.Health)
	s.engine.GET("/ready", s.health.Ready)

	docs.SwaggerInfo.BasePath = "/"
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := s.engine.Group("/api")
	{
		api.POST("/chat", s.chat.Chat)
		api.GET("/chat/runs", s.chat.ListRuns)
		api.GET("/chat/runs/:run_id", s.chat.GetRun)

		api.POST("/study-pack", s.studyPack.Generate)

		cv := api.Group("/canvas")
		cv.GET("/courses", s.canvas.Courses)
		cv.GET("/modules", s.canvas.Modules)
		cv.GET("/assignments", s.canvas.Assignments)
		cv.GET("/pages", s.canvas.Pages)
		cv.GET("/quizzes", s.canvas.Quizzes)
		cv.GET("/files", s.canvas.Files)
	}
}

// Run serves addr until ctx is cancelled
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		s.closeStores()
		return err
	case err := <-errCh:
		s.closeStores()
		return err
	}
}

func (s *Server) closeStores() {
	if s.mongo != nil {
		if err := s.mongo.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("failed to close MongoDB connection")
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close Redis connection")
		}
	}
}

// Engine returns the gin engine (for tests)
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
