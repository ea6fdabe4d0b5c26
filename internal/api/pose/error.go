package pose

import (
	"PoseDetection/pkg/response"
	"net/http"
)

var (
	ErrNoFile          = response.NewError(http.StatusBadRequest, "No se recibió ningún archivo")
	ErrInvalidFileType = response.NewError(http.StatusBadRequest, "El archivo debe ser una imagen")
	ErrFileTooLarge    = response.NewError(http.StatusBadRequest, "El archivo es demasiado grande. Máximo 10MB")
	ErrImageDecode     = response.NewError(http.StatusBadRequest, "No se pudo decodificar la imagen")
)
