package models

import "time"

type MetaTag struct {
	Name     string `json:"name,omitempty"`
	Property string `json:"property,omitempty"`
	Content  string `json:"content"`
}

type SEOConfiguration struct {
	ID                 int64          `json:"id,omitempty"`
	PageName           string         `json:"pageName"`
	Language           string         `json:"language"`
	MetaTitle          string         `json:"metaTitle"`
	MetaDescription    string         `json:"metaDescription"`
	MetaKeywords       string         `json:"metaKeywords,omitempty"`
	OGTitle            string         `json:"ogTitle,omitempty"`
	OGDescription      string         `json:"ogDescription,omitempty"`
	OGImage            string         `json:"ogImage,omitempty"`
	OGURL              string         `json:"ogUrl,omitempty"`
	CanonicalURL       string         `json:"canonicalUrl,omitempty"`
	IsActive           bool           `json:"isActive"`
	AdditionalMetaTags []MetaTag      `json:"additionalMetaTags,omitempty"`
	StructuredData     map[string]any `json:"structuredData,omitempty"`
	CreatedAt          *time.Time     `json:"createdAt,omitempty"`
	UpdatedAt          *time.Time     `json:"updatedAt,omitempty"`
}

type SEOListParams struct {
	Page     int    `url:"page,omitempty"`
	PageSize int    `url:"pageSize,omitempty"`
	Language string `url:"language,omitempty"`
	Search   string `url:"search,omitempty"`
}
