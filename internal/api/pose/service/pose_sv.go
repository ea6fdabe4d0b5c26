package poseService

import (
	"PoseDetection/internal/api/pose"
	"PoseDetection/internal/entity"
	"PoseDetection/pkg/log"
	"PoseDetection/pkg/utils"
	"errors"
	"fmt"
	"golang.org/x/net/context"
)

func (s *poseService) IsReady() bool {
	return s.websocketPkg != nil && s.websocketPkg.IsConnected()
}

func (s *poseService) DetectPose(ctx context.Context, data []byte) (*pose.DetectionResponse, error) {
	img, err := s.utils.DecodeImage(data)
	if err != nil {
		if errors.Is(err, utils.ErrDecodeImage) {
			log.Warn(log.Fields{
				"request_id": log.RequestIDFrom(ctx),
				"error":      err.Error(),
			}, "Image could not be decoded")
			return nil, pose.ErrImageDecode
		}
		return nil, err
	}

	bounds := img.Bounds()
	dimensions := &pose.ImageDimensions{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}

	frame, err := s.utils.EncodeRGBFrame(img)
	if err != nil {
		return nil, err
	}

	if s.websocketPkg == nil {
		return nil, errors.New("pose detector is not initialized")
	}

	result, err := s.websocketPkg.ProcessPoseFrame(ctx, frame)
	if err != nil {
		log.Error(log.Fields{
			"request_id": log.RequestIDFrom(ctx),
			"frame_size": len(frame),
			"error":      err.Error(),
		}, "Pose detector round trip failed")
		return nil, fmt.Errorf("pose detection failed: %w", err)
	}

	if result == nil || !result.Detected || len(result.WorldLandmarks) == 0 {
		log.Info(log.Fields{
			"request_id": log.RequestIDFrom(ctx),
			"width":      dimensions.Width,
			"height":     dimensions.Height,
		}, "No person detected in image")
		return pose.NoPersonResponse(), nil
	}

	landmarks := mapLandmarks(result.WorldLandmarks)

	s.log.WithFields(log.Fields{
		"request_id": log.RequestIDFrom(ctx),
		"landmarks":  len(landmarks),
		"width":      dimensions.Width,
		"height":     dimensions.Height,
	}).Debug("Pose detected")

	return &pose.DetectionResponse{
		Success:         true,
		Landmarks:       landmarks,
		Connections:     pose.Connections(),
		TotalLandmarks:  len(landmarks),
		ImageDimensions: dimensions,
	}, nil
}

func mapLandmarks(world []entity.WorldLandmark) []pose.Landmark {
	landmarks := make([]pose.Landmark, 0, len(world))
	for idx, lm := range world {
		landmarks = append(landmarks, pose.Landmark{
			ID:         idx,
			X:          lm.X,
			Y:          lm.Y,
			Z:          lm.Z,
			Visibility: lm.VisibilityOrDefault(),
		})
	}
	return landmarks
}
