package utils

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/oklog/ulid/v2"
	_ "golang.org/x/image/webp"
)

const MaxImageSize int64 = 10 * 1024 * 1024

var (
	ErrNoFile       = errors.New("no file uploaded")
	ErrNotAnImage   = errors.New("uploaded file is not an image")
	ErrFileTooLarge = errors.New("file size exceeds limit")
	ErrDecodeImage  = errors.New("cannot decode image")
)

type IUtils interface {
	NewULIDFromTimestamp(t time.Time) (string, error)
	ValidateImageFile(file *multipart.FileHeader) error
	ReadImageFile(file *multipart.FileHeader) ([]byte, error)
	DecodeImage(data []byte) (image.Image, error)
	EncodeRGBFrame(img image.Image) ([]byte, error)
}

type utils struct {
	maxFileSize  int64
	frameQuality int
}

func New() IUtils {
	return &utils{
		maxFileSize:  MaxImageSize,
		frameQuality: 95,
	}
}

func (u *utils) NewULIDFromTimestamp(t time.Time) (string, error) {
	ms := ulid.Timestamp(t)
	entropy := ulid.Monotonic(rand.Reader, 0)

	id, err := ulid.New(ms, entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

// ValidateImageFile checks the declared content type first and the size second.
func (u *utils) ValidateImageFile(file *multipart.FileHeader) error {
	if file == nil {
		return ErrNoFile
	}

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return ErrNotAnImage
	}

	if file.Size > u.maxFileSize {
		return ErrFileTooLarge
	}

	return nil
}

// ReadImageFile reads at most maxFileSize+1 bytes so an understated header size
// still trips the limit.
func (u *utils) ReadImageFile(file *multipart.FileHeader) ([]byte, error) {
	if file == nil {
		return nil, ErrNoFile
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open uploaded file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, u.maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read uploaded file: %w", err)
	}

	if int64(len(data)) > u.maxFileSize {
		return nil, ErrFileTooLarge
	}

	return data, nil
}

// DecodeImage decodes JPEG, PNG, GIF, BMP, TIFF or WebP bytes, applying the EXIF
// orientation when present.
func (u *utils) DecodeImage(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrDecodeImage
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeImage, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, ErrDecodeImage
	}

	return img, nil
}

// EncodeRGBFrame re-encodes img as an alpha-free JPEG frame for the pose model.
func (u *utils) EncodeRGBFrame(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(u.frameQuality)); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}

	return buf.Bytes(), nil
}
