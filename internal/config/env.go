package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type (
	Env struct {
		App       App
		Log       Log
		Pose      Pose
		RateLimit RateLimit
	}

	App struct {
		Name            string        `env:"APP_NAME" envDefault:"Pose Detection API"`
		Env             string        `env:"APP_ENV" envDefault:"development" validate:"oneof=development test staging production"`
		Port            string        `env:"APP_PORT" envDefault:"8000" validate:"required,numeric"`
		Version         string        `env:"APP_VERSION" envDefault:"1.0.0" validate:"required"`
		ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s" validate:"gt=0"`
	}

	Log struct {
		Level string `env:"LOG_LEVEL" envDefault:"debug" validate:"oneof=trace debug info warn warning error fatal panic"`
	}

	Pose struct {
		URL                    string        `env:"AI_POSE_DETECTION_URL" envDefault:"ws://localhost:8001/api/v1/pose/ws" validate:"required,url"`
		HandshakeTimeout       time.Duration `env:"AI_POSE_HANDSHAKE_TIMEOUT" envDefault:"10s" validate:"gt=0"`
		ReadTimeout            time.Duration `env:"AI_POSE_READ_TIMEOUT" envDefault:"30s" validate:"gt=0"`
		WriteTimeout           time.Duration `env:"AI_POSE_WRITE_TIMEOUT" envDefault:"5s" validate:"gt=0"`
		PingInterval           time.Duration `env:"AI_POSE_PING_INTERVAL" envDefault:"30s" validate:"gt=0"`
		ReconnectBackoff       time.Duration `env:"AI_POSE_RECONNECT_BACKOFF" envDefault:"1s" validate:"gt=0"`
		ReconnectMaxBackoff    time.Duration `env:"AI_POSE_RECONNECT_MAX_BACKOFF" envDefault:"30s" validate:"gtefield=ReconnectBackoff"`
		ModelComplexity        int           `env:"AI_POSE_MODEL_COMPLEXITY" envDefault:"2" validate:"gte=0,lte=2"`
		MinDetectionConfidence float64       `env:"AI_POSE_MIN_DETECTION_CONFIDENCE" envDefault:"0.5" validate:"gt=0,lte=1"`
	}

	RateLimit struct {
		Enabled bool    `env:"RATE_LIMIT_ENABLED" envDefault:"false"`
		RPS     float64 `env:"RATE_LIMIT_RPS" envDefault:"50" validate:"gt=0"`
		Burst   int     `env:"RATE_LIMIT_BURST" envDefault:"100" validate:"gt=0"`
	}
)

func NewEnv(validate *validator.Validate) (*Env, error) {
	cfg := &Env{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return cfg, nil
}
