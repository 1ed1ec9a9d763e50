package backend

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/thenextevent/eventdesk/internal/blob"
	"github.com/thenextevent/eventdesk/internal/models"
	"github.com/thenextevent/eventdesk/internal/repository"
)

// Upload is one file received from a multipart request.
type Upload struct {
	Name        string
	ContentType string
	Body        io.Reader
}

var allowedPrefixes = []string{"image/", "video/", "audio/"}

var allowedTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"text/plain": true,
	"text/csv":   true,
}

func allowed(contentType string) bool {
	for _, p := range allowedPrefixes {
		if strings.HasPrefix(contentType, p) {
			return true
		}
	}
	return allowedTypes[contentType]
}

type MediaService struct {
	media    *repository.MediaRepo
	store    blob.Store
	maxBytes int64
	now      func() time.Time
}

func NewMediaService(media *repository.MediaRepo, store blob.Store, maxBytes int64) *MediaService {
	return &MediaService{media: media, store: store, maxBytes: maxBytes, now: time.Now}
}

// Upload stores the body under a fresh key and records it. Image
// dimensions are read when the format is decodable.
func (s *MediaService) Upload(ctx context.Context, up Upload, category, altText string, uploadedBy int64) (*models.MediaFile, error) {
	data, err := io.ReadAll(io.LimitReader(up.Body, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, FieldErrors{"file": {"file data is empty"}}
	}
	if int64(len(data)) > s.maxBytes {
		return nil, FieldErrors{"file": {fmt.Sprintf("file exceeds %d bytes", s.maxBytes)}}
	}

	contentType := up.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = detectContentType(up.Name, data)
	}
	if !allowed(contentType) {
		return nil, FieldErrors{"file": {fmt.Sprintf("file type %s is not allowed", contentType)}}
	}

	now := s.now().UTC()
	ext := strings.ToLower(filepath.Ext(up.Name))
	key := path.Join(now.Format("2006/01"), uuid.NewString()+ext)
	url, err := s.store.Put(ctx, key, contentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("upload blob: %w", err)
	}

	f := &models.MediaFile{
		FileName:     path.Base(key),
		OriginalName: filepath.Base(up.Name),
		FileType:     contentType,
		FileSize:     int64(len(data)),
		URL:          url,
		BlobKey:      key,
		AltText:      altText,
		Category:     category,
		UploadedBy:   uploadedBy,
		UploadedAt:   now,
	}
	if strings.HasPrefix(contentType, "image/") {
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
			f.Width, f.Height = cfg.Width, cfg.Height
		}
	}
	id, err := s.media.Create(ctx, f)
	if err != nil {
		if derr := s.store.Delete(ctx, key); derr != nil {
			slog.WarnContext(ctx, "orphaned blob", "key", key, "error", derr)
		}
		return nil, err
	}
	return s.media.FindByID(ctx, id)
}

// UploadMultiple stores every file concurrently. If any upload fails the
// ones that succeeded are removed again.
func (s *MediaService) UploadMultiple(ctx context.Context, ups []Upload, category string, uploadedBy int64) ([]models.MediaFile, error) {
	if len(ups) == 0 {
		return nil, FieldErrors{"files": {"at least one file is required"}}
	}
	out := make([]*models.MediaFile, len(ups))
	g, gctx := errgroup.WithContext(ctx)
	for i, up := range ups {
		g.Go(func() error {
			f, err := s.Upload(gctx, up, category, "", uploadedBy)
			if err != nil {
				return fmt.Errorf("%s: %w", up.Name, err)
			}
			out[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, f := range out {
			if f != nil {
				s.Delete(context.WithoutCancel(ctx), f.ID)
			}
		}
		return nil, err
	}
	files := make([]models.MediaFile, len(out))
	for i, f := range out {
		files[i] = *f
	}
	return files, nil
}

func (s *MediaService) List(ctx context.Context, p models.MediaListParams) (models.PagedItems[models.MediaFile], error) {
	return s.media.List(ctx, p)
}

func (s *MediaService) Get(ctx context.Context, id int64) (*models.MediaFile, error) {
	return s.media.FindByID(ctx, id)
}

func (s *MediaService) Public(ctx context.Context, category string) ([]models.MediaFile, error) {
	return s.media.Public(ctx, category)
}

func (s *MediaService) Update(ctx context.Context, id int64, upd models.MediaUpdate) (*models.MediaFile, error) {
	if err := s.media.Update(ctx, id, upd, s.now()); err != nil {
		return nil, err
	}
	return s.media.FindByID(ctx, id)
}

func (s *MediaService) SetPublic(ctx context.Context, id int64, public bool) error {
	return s.media.Update(ctx, id, models.MediaUpdate{IsPublic: &public}, s.now())
}

// Delete removes the record, then the blob. A blob that cannot be removed
// is logged and left behind.
func (s *MediaService) Delete(ctx context.Context, id int64) error {
	f, err := s.media.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.media.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, f.BlobKey); err != nil {
		slog.WarnContext(ctx, "orphaned blob", "key", f.BlobKey, "error", err)
	}
	return nil
}

func (s *MediaService) DeleteMany(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return FieldErrors{"fileIds": {"at least one id is required"}}
	}
	for _, id := range ids {
		if err := s.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete media %d: %w", id, err)
		}
	}
	return nil
}

func (s *MediaService) Statistics(ctx context.Context) (*models.MediaStatistics, error) {
	return s.media.Statistics(ctx)
}

var extensionTypes = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".svg":  "image/svg+xml",
	".mp4":  "video/mp4",
	".mp3":  "audio/mpeg",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".csv":  "text/csv",
	".txt":  "text/plain",
}

// detectContentType trusts the extension first and sniffs the body
// otherwise.
func detectContentType(fileName string, data []byte) string {
	if ct, ok := extensionTypes[strings.ToLower(filepath.Ext(fileName))]; ok {
		return ct
	}
	ct, _, _ := strings.Cut(http.DetectContentType(data), ";")
	return ct
}
