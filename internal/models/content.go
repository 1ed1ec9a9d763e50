package models

import "time"

type ContentItem struct {
	ID           int64     `json:"id"`
	ContentKey   string    `json:"contentKey"`
	SectionKey   string    `json:"sectionKey"`
	ContentValue string    `json:"contentValue"`
	Language     string    `json:"language"`
	SortOrder    int       `json:"sortOrder"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ContentInput is a content item without its server-assigned fields.
type ContentInput struct {
	ContentKey   string `json:"contentKey"`
	SectionKey   string `json:"sectionKey"`
	ContentValue string `json:"contentValue"`
	Language     string `json:"language"`
	SortOrder    int    `json:"sortOrder"`
	IsActive     bool   `json:"isActive"`
}

type ContentListParams struct {
	Page       int    `url:"page,omitempty"`
	PageSize   int    `url:"pageSize,omitempty"`
	Language   string `url:"language,omitempty"`
	SectionKey string `url:"sectionKey,omitempty"`
	ContentKey string `url:"contentKey,omitempty"`
	IsActive   *bool  `url:"isActive,omitempty"`
}
