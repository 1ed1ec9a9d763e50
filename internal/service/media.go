package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"net/url"
	"path"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/thenextevent/eventdesk/internal/apiclient"
	"github.com/thenextevent/eventdesk/internal/models"
)

// UploadFile is a file read from disk or a request, ready to send.
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

type Media struct {
	api API
}

func NewMedia(api API) *Media { return &Media{api: api} }

func (s *Media) Upload(ctx context.Context, f UploadFile, category, altText string) (*models.MediaFile, error) {
	form := apiclient.NewMultipart().File("file", f.Name, f.ContentType, f.Body)
	if category != "" {
		form.Field("category", category)
	}
	if altText != "" {
		form.Field("altText", altText)
	}
	var out models.MediaFile
	if err := s.api.Upload(ctx, "/media/upload", form, &out); err != nil {
		return nil, fmt.Errorf("upload %s: %w", f.Name, err)
	}
	return &out, nil
}

func (s *Media) UploadMultiple(ctx context.Context, files []UploadFile, category string) ([]models.MediaFile, error) {
	form := apiclient.NewMultipart()
	for i, f := range files {
		form.File(fmt.Sprintf("files[%d]", i), f.Name, f.ContentType, f.Body)
	}
	if category != "" {
		form.Field("category", category)
	}
	var out []models.MediaFile
	if err := s.api.Upload(ctx, "/media/upload-multiple", form, &out); err != nil {
		return nil, fmt.Errorf("upload %d files: %w", len(files), err)
	}
	return out, nil
}

func (s *Media) List(ctx context.Context, params models.MediaListParams) (models.PagedItems[models.MediaFile], error) {
	var out models.PagedItems[models.MediaFile]
	err := s.api.Get(ctx, "/media", params, &out)
	return out, err
}

func (s *Media) Get(ctx context.Context, id int64) (*models.MediaFile, error) {
	var out models.MediaFile
	if err := s.api.Get(ctx, fmt.Sprintf("/media/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Media) Public(ctx context.Context, category string) ([]models.MediaFile, error) {
	q := map[string]string{}
	if category != "" {
		q["category"] = category
	}
	var out []models.MediaFile
	err := s.api.Get(ctx, "/media/public", q, &out)
	return out, err
}

func (s *Media) Update(ctx context.Context, id int64, upd models.MediaUpdate) (*models.MediaFile, error) {
	var out models.MediaFile
	if err := s.api.Put(ctx, fmt.Sprintf("/media/%d", id), upd, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Media) Delete(ctx context.Context, id int64) error {
	return s.api.Delete(ctx, fmt.Sprintf("/media/%d", id), nil)
}

func (s *Media) DeleteMultiple(ctx context.Context, ids []int64) error {
	return s.api.Post(ctx, "/media/bulk-delete", map[string][]int64{"fileIds": ids}, nil)
}

func (s *Media) SetPublic(ctx context.Context, id int64, public bool) error {
	return s.api.Patch(ctx, fmt.Sprintf("/media/%d/public-status", id), map[string]bool{"isPublic": public}, nil)
}

func (s *Media) Statistics(ctx context.Context) (*models.MediaStatistics, error) {
	var out models.MediaStatistics
	if err := s.api.Get(ctx, "/media/statistics", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Media) Optimize(ctx context.Context, id int64, opts models.OptimizeOptions) (*models.MediaFile, error) {
	var out models.MediaFile
	if err := s.api.Post(ctx, fmt.Sprintf("/media/%d/optimize", id), opts, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Thumbnail asks the server for a square thumbnail; size defaults to 150.
func (s *Media) Thumbnail(ctx context.Context, id int64, size int) (string, error) {
	if size <= 0 {
		size = 150
	}
	var out struct {
		ThumbnailURL string `json:"thumbnailUrl"`
	}
	if err := s.api.Post(ctx, fmt.Sprintf("/media/%d/thumbnail", id), map[string]int{"size": size}, &out); err != nil {
		return "", err
	}
	return out.ThumbnailURL, nil
}

// Search matches alt text, names and category. Filter fields in params
// narrow the result; params.Search is overwritten by query.
func (s *Media) Search(ctx context.Context, query string, params models.MediaListParams) ([]models.MediaFile, error) {
	params.Search = query
	var out models.PagedItems[models.MediaFile]
	if err := s.api.Get(ctx, "/media/search", params, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

type urlUpload struct {
	URL      string `json:"url"`
	Category string `json:"category,omitempty"`
	AltText  string `json:"altText,omitempty"`
}

func (s *Media) UploadFromURL(ctx context.Context, src, category, altText string) (*models.MediaFile, error) {
	var out models.MediaFile
	if err := s.api.Post(ctx, "/media/upload-from-url", urlUpload{URL: src, Category: category, AltText: altText}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DownloadLink returns a temporary URL; expiresIn is in seconds and
// defaults to an hour.
func (s *Media) DownloadLink(ctx context.Context, id int64, expiresIn int) (string, error) {
	if expiresIn <= 0 {
		expiresIn = 3600
	}
	var out struct {
		DownloadURL string `json:"downloadUrl"`
	}
	if err := s.api.Post(ctx, fmt.Sprintf("/media/%d/download-link", id), map[string]int{"expiresIn": expiresIn}, &out); err != nil {
		return "", err
	}
	return out.DownloadURL, nil
}

func IsImage(contentType string) bool { return strings.HasPrefix(contentType, "image/") }
func IsVideo(contentType string) bool { return strings.HasPrefix(contentType, "video/") }
func IsAudio(contentType string) bool { return strings.HasPrefix(contentType, "audio/") }

var documentTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"application/vnd.ms-powerpoint",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"text/plain",
}

func IsDocument(contentType string) bool { return slices.Contains(documentTypes, contentType) }

var sizeUnits = []string{"Bytes", "KB", "MB", "GB", "TB"}

// FormatFileSize renders a byte count with binary units and at most two
// decimals, e.g. "1.5 KB".
func FormatFileSize(n int64) string {
	if n <= 0 {
		return "0 Bytes"
	}
	i := int(math.Floor(math.Log(float64(n)) / math.Log(1024)))
	i = min(i, len(sizeUnits)-1)
	v := float64(n) / math.Pow(1024, float64(i))
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64) + " " + sizeUnits[i]
}

func FileNameWithoutExt(name string) string {
	ext := path.Ext(name)
	if ext == "" || strings.Contains(ext, "/") {
		return name
	}
	return strings.TrimSuffix(name, ext)
}

func FileExtension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return strings.ToLower(name)
	}
	return strings.ToLower(name[i+1:])
}

// OptimizedImageURL appends w, h and q resize hints to image URLs.
func OptimizedImageURL(f models.MediaFile, width, height, quality int) string {
	if !IsImage(f.FileType) {
		return f.URL
	}
	q := url.Values{}
	if width > 0 {
		q.Set("w", strconv.Itoa(width))
	}
	if height > 0 {
		q.Set("h", strconv.Itoa(height))
	}
	if quality > 0 {
		q.Set("q", strconv.Itoa(quality))
	}
	if len(q) == 0 {
		return f.URL
	}
	return f.URL + "?" + q.Encode()
}

func ValidateFileType(contentType string, allowed []string) bool {
	return slices.Contains(allowed, contentType)
}

func ValidateFileSize(size int64, maxMB float64) bool {
	return float64(size) <= maxMB*1024*1024
}

var previewTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

var ErrPreviewUnsupported = errors.New("file type not supported for preview")

// FilePreview encodes an image as a data URL.
func FilePreview(contentType string, r io.Reader) (string, error) {
	if !ValidateFileType(contentType, previewTypes) {
		return "", ErrPreviewUnsupported
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read preview: %w", err)
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

const (
	DefaultQuality  = 0.8
	DefaultMaxWidth = 1920
)

// CompressImage scales an image down to maxWidth, keeping its aspect
// ratio, and re-encodes it. Non-images are returned unchanged. quality is
// in (0,1] and only affects JPEG output; WebP input is re-encoded as JPEG.
func CompressImage(r io.Reader, contentType string, quality float64, maxWidth int) ([]byte, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("read image: %w", err)
	}
	if !IsImage(contentType) {
		return data, contentType, nil
	}
	if quality <= 0 || quality > 1 {
		quality = DefaultQuality
	}
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > maxWidth {
		h = max(h*maxWidth/w, 1)
		w = maxWidth
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var buf bytes.Buffer
	switch format {
	case "png":
		err = png.Encode(&buf, dst)
		contentType = "image/png"
	case "gif":
		err = gif.Encode(&buf, dst, nil)
		contentType = "image/gif"
	default:
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: int(quality * 100)})
		contentType = "image/jpeg"
	}
	if err != nil {
		return nil, "", fmt.Errorf("encode %s: %w", format, err)
	}
	return buf.Bytes(), contentType, nil
}
