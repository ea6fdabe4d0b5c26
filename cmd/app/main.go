package main

import (
	"PoseDetection/internal/config"
	"PoseDetection/pkg/log"
	websocketPkg "PoseDetection/pkg/websocket"
	"github.com/joho/godotenv"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	envErr := godotenv.Load()

	logger := log.NewLogger()
	if envErr != nil && !os.IsNotExist(envErr) {
		logger.Warnf("Error loading .env file: %v", envErr)
	}
	validator := config.NewValidator()

	env, err := config.NewEnv(validator)
	if err != nil {
		log.Fatal(log.Fields{"error": err.Error()}, "Failed to load configuration")
	}

	if err := log.SetLevel(env.Log.Level); err != nil {
		logger.Warn(err)
	}

	fiberApp := config.NewFiber(logger, env)
	poseDetector := websocketPkg.NewAIWebSocketClient(websocketPkg.Options{
		URL:                    env.Pose.URL,
		HandshakeTimeout:       env.Pose.HandshakeTimeout,
		ReadTimeout:            env.Pose.ReadTimeout,
		WriteTimeout:           env.Pose.WriteTimeout,
		PingInterval:           env.Pose.PingInterval,
		ReconnectBackoff:       env.Pose.ReconnectBackoff,
		ReconnectMaxBackoff:    env.Pose.ReconnectMaxBackoff,
		ModelComplexity:        env.Pose.ModelComplexity,
		MinDetectionConfidence: env.Pose.MinDetectionConfidence,
	}, logger)

	server, err := config.NewServer(
		config.WithFiber(fiberApp),
		config.WithEnv(env),
		config.WithLogger(logger),
		config.WithValidator(validator),
		config.WithMiddleware(),
		config.WithPoseDetector(poseDetector),
		config.WithUtils(),
	)
	if err != nil {
		log.Fatal(log.Fields{"error": err.Error()}, "Failed to build server")
	}

	server.RegisterHandler()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Run(); err != nil {
			log.Fatal(log.Fields{"error": err.Error(), "port": env.App.Port}, "Error starting server")
		}
	}()

	logger.Infof("Server started successfully on port %s", env.App.Port)

	<-sigChan
	logger.Info("Shutting down server...")

	if err := server.Shutdown(); err != nil {
		logger.Errorf("Error during shutdown: %v", err)
	}
}
