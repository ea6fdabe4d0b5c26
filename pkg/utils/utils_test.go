package utils

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/textproto"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.NRGBA{R: 255, A: 128})
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// multipartFile round-trips data through a multipart form so the returned header
// can be opened like a real upload.
func multipartFile(t *testing.T, contentType string, data []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="upload.bin"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	return form.File["file"][0]
}

// jpegWithOrientation encodes a w x h JPEG carrying a big-endian EXIF block whose
// only IFD0 entry is the orientation tag.
func jpegWithOrientation(t *testing.T, w, h int, orientation uint16) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, w, h)), imaging.JPEG))
	data := buf.Bytes()

	app1 := []byte{
		0xff, 0xe1, 0x00, 0x22,
		'E', 'x', 'i', 'f', 0x00, 0x00,
		'M', 'M', 0x00, 0x2a, 0x00, 0x00, 0x00, 0x08,
		0x00, 0x01,
		0x01, 0x12, 0x00, 0x03, 0x00, 0x00, 0x00, 0x01, byte(orientation >> 8), byte(orientation), 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
	}

	out := append([]byte{}, data[:2]...)
	out = append(out, app1...)
	return append(out, data[2:]...)
}

// 1x1 lossless WebP.
const tinyWebP = "UklGRhoAAABXRUJQVlA4TA0AAAAvAAAAEAcQERGIiP4HAA=="

func TestNewULIDFromTimestamp(t *testing.T) {
	u := New()

	a, err := u.NewULIDFromTimestamp(time.Now())
	require.NoError(t, err)
	b, err := u.NewULIDFromTimestamp(time.Now())
	require.NoError(t, err)

	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)
}

func TestValidateImageFile(t *testing.T) {
	u := New()

	t.Run("nil file", func(t *testing.T) {
		assert.ErrorIs(t, u.ValidateImageFile(nil), ErrNoFile)
	})

	t.Run("not an image", func(t *testing.T) {
		file := multipartFile(t, "application/pdf", []byte("%PDF-1.4"))
		assert.ErrorIs(t, u.ValidateImageFile(file), ErrNotAnImage)
	})

	t.Run("content type checked before size", func(t *testing.T) {
		file := multipartFile(t, "text/plain", make([]byte, MaxImageSize+1))
		assert.ErrorIs(t, u.ValidateImageFile(file), ErrNotAnImage)
	})

	t.Run("too large", func(t *testing.T) {
		file := multipartFile(t, "image/png", make([]byte, MaxImageSize+1))
		assert.ErrorIs(t, u.ValidateImageFile(file), ErrFileTooLarge)
	})

	t.Run("exactly at limit", func(t *testing.T) {
		file := multipartFile(t, "image/jpeg", make([]byte, MaxImageSize))
		assert.NoError(t, u.ValidateImageFile(file))
	})
}

func TestReadImageFile(t *testing.T) {
	u := New()

	data := encodePNG(t, 8, 8)
	got, err := u.ReadImageFile(multipartFile(t, "image/png", data))
	require.NoError(t, err)
	assert.Equal(t, data, got)

	_, err = u.ReadImageFile(nil)
	assert.ErrorIs(t, err, ErrNoFile)

	_, err = u.ReadImageFile(multipartFile(t, "image/png", make([]byte, MaxImageSize+1)))
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestDecodeImage(t *testing.T) {
	u := New()

	t.Run("png keeps pixel dimensions", func(t *testing.T) {
		img, err := u.DecodeImage(encodePNG(t, 64, 48))
		require.NoError(t, err)
		assert.Equal(t, 64, img.Bounds().Dx())
		assert.Equal(t, 48, img.Bounds().Dy())
	})

	t.Run("jpeg", func(t *testing.T) {
		var buf bytes.Buffer
		src := image.NewNRGBA(image.Rect(0, 0, 30, 20))
		require.NoError(t, imaging.Encode(&buf, src, imaging.JPEG))

		img, err := u.DecodeImage(buf.Bytes())
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 30, 20), img.Bounds())
	})

	t.Run("exif orientation swaps dimensions", func(t *testing.T) {
		img, err := u.DecodeImage(jpegWithOrientation(t, 30, 20, 6))
		require.NoError(t, err)
		assert.Equal(t, 20, img.Bounds().Dx())
		assert.Equal(t, 30, img.Bounds().Dy())
	})

	t.Run("exif orientation without rotation", func(t *testing.T) {
		img, err := u.DecodeImage(jpegWithOrientation(t, 30, 20, 1))
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 30, 20), img.Bounds())
	})

	t.Run("webp", func(t *testing.T) {
		data, err := base64.StdEncoding.DecodeString(tinyWebP)
		require.NoError(t, err)

		_, format, err := image.DecodeConfig(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, "webp", format)

		img, err := u.DecodeImage(data)
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 1, 1), img.Bounds())
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := u.DecodeImage([]byte("definitely not an image"))
		assert.ErrorIs(t, err, ErrDecodeImage)
	})

	t.Run("truncated png", func(t *testing.T) {
		data := encodePNG(t, 64, 48)
		_, err := u.DecodeImage(data[:len(data)/2])
		assert.ErrorIs(t, err, ErrDecodeImage)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := u.DecodeImage(nil)
		assert.ErrorIs(t, err, ErrDecodeImage)
	})
}

func TestEncodeRGBFrame(t *testing.T) {
	u := New()

	img, err := u.DecodeImage(encodePNG(t, 40, 25))
	require.NoError(t, err)

	frame, err := u.EncodeRGBFrame(img)
	require.NoError(t, err)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(frame))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 40, cfg.Width)
	assert.Equal(t, 25, cfg.Height)
}
