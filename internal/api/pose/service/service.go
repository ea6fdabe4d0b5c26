package poseService

import (
	"PoseDetection/internal/api/pose"
	"PoseDetection/pkg/utils"
	websocketPkg "PoseDetection/pkg/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type IPoseService interface {
	DetectPose(ctx context.Context, data []byte) (*pose.DetectionResponse, error)
	IsReady() bool
}

type poseService struct {
	log          *logrus.Logger
	websocketPkg websocketPkg.IWebsocket
	utils        utils.IUtils
}

func NewPoseService(
	log *logrus.Logger,
	websocket websocketPkg.IWebsocket,
	utils utils.IUtils,
) IPoseService {
	return &poseService{
		log:          log,
		websocketPkg: websocket,
		utils:        utils,
	}
}
