package file

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // Import for PNG decoding support
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/storage"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

const (
	maxPhotoBytes     = 150 * 1024
	maxPhotoDimension = 1280
	minPhotoQuality   = 50
)

// PhotoService stores check-in and check-out selfies. The returned key is the
// opaque reference kept on the attendance record.
type PhotoService interface {
	UploadAttendancePhoto(ctx context.Context, userID string, date time.Time, file io.Reader, filename string, kind string) (string, error)
	OpenPhoto(ctx context.Context, key string) (io.ReadCloser, error)
	DeletePhoto(ctx context.Context, key string) error
}

type photoServiceImpl struct {
	storage storage.FileStorage
}

func NewPhotoService(storage storage.FileStorage) PhotoService {
	return &photoServiceImpl{
		storage: storage,
	}
}

// UploadAttendancePhoto re-encodes the image as a bounded JPEG and stores it
// as attendance/{date}/{userID}-{kind}-{uuid}.jpg.
func (s *photoServiceImpl) UploadAttendancePhoto(ctx context.Context, userID string, date time.Time, file io.Reader, filename string, kind string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		return "", fmt.Errorf("invalid file type: only jpg, jpeg, png allowed")
	}

	buffer, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}

	compressed, err := compressImage(buffer, maxPhotoBytes)
	if err != nil {
		return "", fmt.Errorf("failed to compress image: %w", err)
	}

	key := path.Join("attendance", date.Format("2006-01-02"), fmt.Sprintf("%s-%s-%s.jpg", userID, kind, uuid.NewString()))

	uploaded, err := s.storage.Upload(ctx, bytes.NewReader(compressed), key, "image/jpeg")
	if err != nil {
		return "", fmt.Errorf("failed to upload attendance photo: %w", err)
	}

	return uploaded, nil
}

func (s *photoServiceImpl) OpenPhoto(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.storage.Download(ctx, key)
}

func (s *photoServiceImpl) DeletePhoto(ctx context.Context, key string) error {
	return s.storage.Delete(ctx, key)
}

// compressImage downsizes oversized images and lowers JPEG quality until the
// result fits in maxSize or the quality floor is reached.
func compressImage(buffer []byte, maxSize int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(buffer))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	img = fitWithin(img, maxPhotoDimension)

	var out []byte
	for quality := 85; quality >= minPhotoQuality; quality -= 5 {
		buf := new(bytes.Buffer)
		if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("failed to encode JPEG: %w", err)
		}
		out = buf.Bytes()
		if len(out) <= maxSize {
			break
		}
	}

	return out, nil
}

// fitWithin scales img so its longer side is at most limit, keeping the aspect ratio.
func fitWithin(img image.Image, limit int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= limit && h <= limit {
		return img
	}

	if w >= h {
		h = h * limit / w
		w = limit
	} else {
		w = w * limit / h
		h = limit
	}

	dst := image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
	// CatmullRom for high-quality downscaling
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
