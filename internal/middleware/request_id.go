package middleware

import (
	"PoseDetection/pkg/utils"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	RequestIDKey = "X-Request-ID"

	maxClientRequestIDLen = 128
)

type idGenerator func(time.Time) (string, error)

func newRequestIDMiddleware(logger *logrus.Logger, generate idGenerator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(RequestIDKey)

		if !validClientRequestID(requestID) {
			id, err := generate(time.Now())
			if err != nil {
				id = uuid.NewString()
				logger.WithFields(logrus.Fields{
					"fallback_id": id,
					"error":       err.Error(),
				}).Warn("Failed to generate ULID request id")
			}
			requestID = id
		}

		c.Locals(RequestIDKey, requestID)
		c.Set(RequestIDKey, requestID)

		return c.Next()
	}
}

// validClientRequestID accepts short printable ASCII ids so they are safe to echo
// back in a header and into logs.
func validClientRequestID(id string) bool {
	if id == "" || len(id) > maxClientRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

func defaultIDGenerator() idGenerator {
	return utils.New().NewULIDFromTimestamp
}
