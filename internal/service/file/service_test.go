package file

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestPhotoService_UploadAttendancePhoto(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	svc := NewPhotoService(store)
	ctx := context.Background()
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	key, err := svc.UploadAttendancePhoto(ctx, "u-1", date, bytes.NewReader(pngBytes(t, 2000, 1000)), "selfie.PNG", "check_in")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "attendance/2025-03-10/u-1-check_in-"), key)
	assert.True(t, strings.HasSuffix(key, ".jpg"), key)

	rc, err := svc.OpenPhoto(ctx, key)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, maxPhotoDimension, cfg.Width)
	assert.Equal(t, maxPhotoDimension/2, cfg.Height)

	require.NoError(t, svc.DeletePhoto(ctx, key))
	_, err = svc.OpenPhoto(ctx, key)
	assert.ErrorIs(t, err, storage.ErrFileNotFound)
}

func TestPhotoService_RejectsNonImages(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	svc := NewPhotoService(store)

	_, err = svc.UploadAttendancePhoto(context.Background(), "u-1", time.Now(), strings.NewReader("%PDF"), "proof.pdf", "check_in")
	assert.Error(t, err)

	_, err = svc.UploadAttendancePhoto(context.Background(), "u-1", time.Now(), strings.NewReader("not an image"), "selfie.jpg", "check_in")
	assert.Error(t, err)
}

func TestFitWithin_KeepsSmallImages(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 640, 480))
	assert.Same(t, img, fitWithin(img, maxPhotoDimension))

	tall := fitWithin(image.NewRGBA(image.Rect(0, 0, 1000, 4000)), 1000)
	assert.Equal(t, 250, tall.Bounds().Dx())
	assert.Equal(t, 1000, tall.Bounds().Dy())
}
