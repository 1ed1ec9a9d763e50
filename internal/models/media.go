package models

import "time"

type MediaFile struct {
	ID           int64     `json:"id"`
	FileName     string    `json:"fileName"`
	OriginalName string    `json:"originalName"`
	FileType     string    `json:"fileType"`
	FileSize     int64     `json:"fileSize"`
	URL          string    `json:"url"`
	BlobKey      string    `json:"-"`
	Width        int       `json:"width,omitempty"`
	Height       int       `json:"height,omitempty"`
	AltText      string    `json:"altText,omitempty"`
	Category     string    `json:"category,omitempty"`
	IsPublic     bool      `json:"isPublic"`
	UploadedBy   int64     `json:"uploadedBy,omitempty"`
	UploadedAt   time.Time `json:"uploadedAt"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type MediaUpdate struct {
	AltText  *string `json:"altText,omitempty"`
	Category *string `json:"category,omitempty"`
	IsPublic *bool   `json:"isPublic,omitempty"`
}

type MediaListParams struct {
	Page     int    `url:"page,omitempty"`
	PageSize int    `url:"pageSize,omitempty"`
	Category string `url:"category,omitempty"`
	FileType string `url:"fileType,omitempty"`
	Search   string `url:"search,omitempty"`
}

type MediaStatistics struct {
	TotalFiles int64            `json:"totalFiles"`
	TotalSize  int64            `json:"totalSize"`
	ByType     map[string]int64 `json:"filesByType"`
	ByCategory map[string]int64 `json:"filesByCategory"`
}

type OptimizeOptions struct {
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
	Quality int    `json:"quality,omitempty"`
	Format  string `json:"format,omitempty"`
}
