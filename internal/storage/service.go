package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"path"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/betcleverde/betclever-landing-hub/internal/apperr"
)

// Document slots a user may upload into.
var documentSlots = map[string]bool{
	"id_front":      true,
	"id_back":       true,
	"id_selfie":     true,
	"giro_front":    true,
	"giro_back":     true,
	"credit_front":  true,
	"credit_back":   true,
	"bank_document": true,
}

var allowedExts = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "pdf": true,
}

// Uploader is the Upload surface of S3Store, split out so the service can be
// tested without AWS.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
}

type Service struct {
	store Uploader
	log   *zap.SugaredLogger
	now   func() time.Time
}

func NewService(store Uploader, log *zap.SugaredLogger) *Service {
	return &Service{store: store, log: log, now: time.Now}
}

// ObjectKey builds the storage path for a document upload:
// {userId}/{logicalName}-{timestamp}.{ext}. A re-upload of the same slot gets
// a fresh timestamp; stale objects are left behind deliberately.
func ObjectKey(userID, logicalName, ext string, now time.Time) string {
	return fmt.Sprintf("%s/%s-%d.%s", userID, logicalName, now.UnixMilli(), ext)
}

// UploadDocument validates the slot and file type, uploads, and returns the
// public URL. Image documents additionally get a thumbnail next to the
// original; a failed thumbnail never fails the upload.
func (s *Service) UploadDocument(ctx context.Context, userID, logicalName, filename, contentType string, data []byte) (string, error) {
	if !documentSlots[logicalName] {
		return "", fmt.Errorf("%w: unknown document slot %q", apperr.ErrValidation, logicalName)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", apperr.ErrValidation)
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if !allowedExts[ext] {
		return "", fmt.Errorf("%w: file type %q not allowed", apperr.ErrValidation, ext)
	}

	key := ObjectKey(userID, logicalName, ext, s.now())
	url, err := s.store.Upload(ctx, key, contentType, data)
	if err != nil {
		s.log.Errorw("upload document", "user_id", userID, "slot", logicalName, "err", err)
		return "", fmt.Errorf("%w: %v", apperr.ErrUpload, err)
	}

	if strings.HasPrefix(contentType, "image/") {
		if thumb, terr := generateThumbnail(data); terr == nil {
			thumbKey := strings.TrimSuffix(key, path.Ext(key)) + "_thumb.jpg"
			if _, terr := s.store.Upload(ctx, thumbKey, "image/jpeg", thumb); terr != nil {
				s.log.Warnw("upload thumbnail", "key", thumbKey, "err", terr)
			}
		}
	}
	return url, nil
}

func generateThumbnail(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	thumb := imaging.Resize(img, 320, 0, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
