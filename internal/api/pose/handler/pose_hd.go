package poseHandler

import (
	"PoseDetection/internal/api/pose"
	contextPkg "PoseDetection/pkg/context"
	"PoseDetection/pkg/handlerUtil"
	"PoseDetection/pkg/log"
	"PoseDetection/pkg/utils"
	"errors"
	"github.com/gofiber/fiber/v2"
)

func (h *PoseHandler) DetectPose(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c := contextPkg.FromFiberCtx(ctx)

	errHandler := handlerUtil.New(h.log)

	file, err := ctx.FormFile("file")
	if err != nil {
		return errHandler.Handle(ctx, requestID, pose.ErrNoFile, ctx.Path(), "form_file")
	}

	h.log.WithFields(log.Fields{
		"request_id":   requestID,
		"path":         ctx.Path(),
		"file_name":    file.Filename,
		"file_size":    file.Size,
		"content_type": file.Header.Get("Content-Type"),
	}).Debug("Processing pose detection upload")

	if err := h.utils.ValidateImageFile(file); err != nil {
		return errHandler.Handle(ctx, requestID, uploadError(err), ctx.Path(), "validate_image_file")
	}

	data, err := h.utils.ReadImageFile(file)
	if err != nil {
		return errHandler.Handle(ctx, requestID, uploadError(err), ctx.Path(), "read_image_file")
	}

	result, err := h.poseService.DetectPose(c, data)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "detect_pose")
	}

	h.log.WithFields(log.Fields{
		"request_id":      requestID,
		"path":            ctx.Path(),
		"success":         result.Success,
		"total_landmarks": result.TotalLandmarks,
	}).Info("Pose detection finished")

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, result)
}

func uploadError(err error) error {
	switch {
	case errors.Is(err, utils.ErrNoFile):
		return pose.ErrNoFile
	case errors.Is(err, utils.ErrNotAnImage):
		return pose.ErrInvalidFileType
	case errors.Is(err, utils.ErrFileTooLarge):
		return pose.ErrFileTooLarge
	default:
		return err
	}
}
