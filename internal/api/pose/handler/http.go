package poseHandler

import (
	poseService "PoseDetection/internal/api/pose/service"
	"PoseDetection/internal/middleware"
	"PoseDetection/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type PoseHandler struct {
	log         *logrus.Logger
	middleware  middleware.Middleware
	poseService poseService.IPoseService
	utils       utils.IUtils
}

func New(
	log *logrus.Logger,
	middleware middleware.Middleware,
	ps poseService.IPoseService,
	utils utils.IUtils,
) *PoseHandler {
	return &PoseHandler{
		log:         log,
		middleware:  middleware,
		poseService: ps,
		utils:       utils,
	}
}

func (h *PoseHandler) Start(srv fiber.Router) {
	srv.Post("/detect-pose", h.middleware.NewRateLimiter, h.DetectPose)
}
