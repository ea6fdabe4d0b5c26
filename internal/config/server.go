package config

import (
	"PoseDetection/internal/api/pose"
	poseHandler "PoseDetection/internal/api/pose/handler"
	poseService "PoseDetection/internal/api/pose/service"
	"PoseDetection/internal/middleware"
	"PoseDetection/pkg/utils"
	websocketPkg "PoseDetection/pkg/websocket"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/sirupsen/logrus"
)

const BannerMessage = "API de detección de pose 3D funcionando"

type ServerOption func(*Server) error

type Server struct {
	engine       *fiber.App
	env          *Env
	log          *logrus.Logger
	middleware   middleware.Middleware
	validator    *validator.Validate
	utils        utils.IUtils
	handlers     []handler
	poseDetector websocketPkg.IWebsocket
	poseService  poseService.IPoseService
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.env == nil {
		return nil, fmt.Errorf("env config is required")
	}
	if server.middleware == nil {
		return nil, fmt.Errorf("middleware is required")
	}
	if server.utils == nil {
		server.utils = utils.New()
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithEnv(env *Env) ServerOption {
	return func(s *Server) error {
		s.env = env
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

// WithPoseDetector sets the pose model adapter. A nil detector is allowed: the
// server still starts and reports itself unhealthy.
func WithPoseDetector(detector websocketPkg.IWebsocket) ServerOption {
	return func(s *Server) error {
		s.poseDetector = detector
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		if s.env == nil {
			return fmt.Errorf("env config must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log, middleware.RateLimitConfig{
			Enabled: s.env.RateLimit.Enabled,
			RPS:     s.env.RateLimit.RPS,
			Burst:   s.env.RateLimit.Burst,
		})
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,PUT,PATCH,DELETE,HEAD,OPTIONS",
		AllowHeaders:  "*",
		ExposeHeaders: middleware.RequestIDKey,
	}))
	s.engine.Use(s.middleware.NewLoggingMiddleware())

	// Pose Domain
	s.poseService = poseService.NewPoseService(s.log, s.poseDetector, s.utils)
	poseHandlers := poseHandler.New(s.log, s.middleware, s.poseService, s.utils)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, poseHandlers)

	router := s.engine.Group("/api")
	for _, h := range s.handlers {
		h.Start(router)
	}
}

func (s *Server) Run() error {
	return s.engine.Listen(fmt.Sprintf(":%s", s.env.App.Port))
}

// Shutdown stops accepting requests, waits for in-flight ones and then releases
// the pose detector connection.
func (s *Server) Shutdown() error {
	err := s.engine.ShutdownWithTimeout(s.env.App.ShutdownTimeout)

	if s.poseDetector != nil {
		s.poseDetector.CloseConnections()
	}

	return err
}

func (s *Server) App() *fiber.App {
	return s.engine
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(pose.BannerResponse{
			Message: BannerMessage,
			Status:  "running",
			Version: s.env.App.Version,
		})
	})

	s.engine.Get("/health", func(ctx *fiber.Ctx) error {
		if !s.poseService.IsReady() {
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(pose.HealthResponse{
				Status: "unhealthy",
			})
		}
		return ctx.JSON(pose.HealthResponse{
			Status: "healthy",
		})
	})
}
