package service

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"maps"
	"net/url"
	"strings"

	"github.com/thenextevent/eventdesk/internal/models"
)

const (
	SiteName = "The Next Event"
	SiteURL  = "https://thenextevent.com"
)

type SEO struct {
	api API
}

func NewSEO(api API) *SEO { return &SEO{api: api} }

// Public lists the active configurations for every page.
func (s *SEO) Public(ctx context.Context) ([]models.SEOConfiguration, error) {
	var out []models.SEOConfiguration
	err := s.api.Get(ctx, "/seo/public", nil, &out)
	return out, err
}

// ByPage looks up one page. Callers normally fall back to nil, or to
// DefaultConfig.
func (s *SEO) ByPage(ctx context.Context, page, lang string) Result[*models.SEOConfiguration] {
	q := map[string]string{}
	if lang != "" {
		q["language"] = lang
	}
	var out models.SEOConfiguration
	if err := s.api.Get(ctx, "/seo/public/page/"+url.PathEscape(page), q, &out); err != nil {
		slog.WarnContext(ctx, "no seo configuration for page", "page", page, "error", err)
		return failed[*models.SEOConfiguration](err)
	}
	return ok(&out)
}

func (s *SEO) AdminList(ctx context.Context, params models.SEOListParams) (models.PagedItems[models.SEOConfiguration], error) {
	var out models.PagedItems[models.SEOConfiguration]
	err := s.api.Get(ctx, "/seo", params, &out)
	return out, err
}

func (s *SEO) Get(ctx context.Context, id int64) (*models.SEOConfiguration, error) {
	var out models.SEOConfiguration
	if err := s.api.Get(ctx, fmt.Sprintf("/seo/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *SEO) Create(ctx context.Context, cfg models.SEOConfiguration) (*models.SEOConfiguration, error) {
	var out models.SEOConfiguration
	if err := s.api.Post(ctx, "/seo", cfg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *SEO) Update(ctx context.Context, id int64, cfg models.SEOConfiguration) (*models.SEOConfiguration, error) {
	var out models.SEOConfiguration
	if err := s.api.Put(ctx, fmt.Sprintf("/seo/%d", id), cfg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *SEO) Delete(ctx context.Context, id int64) error {
	return s.api.Delete(ctx, fmt.Sprintf("/seo/%d", id), nil)
}

func (s *SEO) SetActive(ctx context.Context, id int64, active bool) error {
	return s.api.Patch(ctx, fmt.Sprintf("/seo/%d/status", id), map[string]bool{"isActive": active}, nil)
}

// GenerateMetaTags renders the head tags for a page, one per line. Every
// value is HTML-escaped.
func GenerateMetaTags(cfg models.SEOConfiguration) string {
	var tags []string
	meta := func(attr, key, value string) {
		tags = append(tags, fmt.Sprintf(`<meta %s="%s" content="%s" />`, attr, html.EscapeString(key), html.EscapeString(value)))
	}
	if cfg.MetaTitle != "" {
		tags = append(tags, "<title>"+html.EscapeString(cfg.MetaTitle)+"</title>")
	}
	if cfg.MetaDescription != "" {
		meta("name", "description", cfg.MetaDescription)
	}
	if cfg.MetaKeywords != "" {
		meta("name", "keywords", cfg.MetaKeywords)
	}
	if cfg.OGTitle != "" {
		meta("property", "og:title", cfg.OGTitle)
	}
	if cfg.OGDescription != "" {
		meta("property", "og:description", cfg.OGDescription)
	}
	if cfg.OGImage != "" {
		meta("property", "og:image", cfg.OGImage)
	}
	if cfg.OGURL != "" {
		meta("property", "og:url", cfg.OGURL)
	}
	meta("property", "og:type", "website")
	meta("name", "twitter:card", "summary_large_image")
	if cfg.OGTitle != "" {
		meta("name", "twitter:title", cfg.OGTitle)
	}
	if cfg.OGDescription != "" {
		meta("name", "twitter:description", cfg.OGDescription)
	}
	if cfg.OGImage != "" {
		meta("name", "twitter:image", cfg.OGImage)
	}
	for _, t := range cfg.AdditionalMetaTags {
		switch {
		case t.Content == "":
		case t.Name != "":
			meta("name", t.Name, t.Content)
		case t.Property != "":
			meta("property", t.Property, t.Content)
		}
	}
	if cfg.CanonicalURL != "" {
		tags = append(tags, `<link rel="canonical" href="`+html.EscapeString(cfg.CanonicalURL)+`" />`)
	}
	return strings.Join(tags, "\n")
}

// GenerateStructuredData builds the Organization JSON-LD block, overlaid
// with the page's structured data and then extra. It returns "" when the
// page has no structured data and extra is empty.
func GenerateStructuredData(cfg models.SEOConfiguration, extra map[string]any) (string, error) {
	if cfg.StructuredData == nil && extra == nil {
		return "", nil
	}
	desc := cfg.MetaDescription
	if desc == "" {
		desc = "شركة سعودية رائدة في تنظيم الفعاليات"
	}
	doc := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "Organization",
		"name":        SiteName,
		"url":         SiteURL,
		"logo":        SiteURL + "/logo.png",
		"description": desc,
		"address": map[string]any{
			"@type":           "PostalAddress",
			"addressCountry":  "SA",
			"addressLocality": "Riyadh",
		},
		"contactPoint": map[string]any{
			"@type":       "ContactPoint",
			"contactType": "customer service",
			"email":       "info@thenextevent.com",
		},
	}
	maps.Copy(doc, cfg.StructuredData)
	maps.Copy(doc, extra)
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode structured data: %w", err)
	}
	return string(out), nil
}

type pageTexts struct {
	title, description, keywords string
}

var defaultPages = map[string]map[string]pageTexts{
	"home": {
		"ar": {
			"The Next Event - شركة تنظيم الفعاليات الرائدة في السعودية",
			"شركة سعودية رائدة في تنظيم الفعاليات والمؤتمرات والمعارض. نقدم خدمات متكاملة لتنظيم فعاليات استثنائية تواكب رؤية 2030",
			"تنظيم فعاليات, مؤتمرات, معارض, السعودية, رؤية 2030, إدارة فعاليات",
		},
		"en": {
			"The Next Event - Leading Event Management Company in Saudi Arabia",
			"Leading Saudi company in organizing events, conferences, and exhibitions. We provide comprehensive services for exceptional events aligned with Vision 2030",
			"event management, conferences, exhibitions, Saudi Arabia, Vision 2030, event planning",
		},
	},
	"about": {
		"ar": {"عن الشركة - The Next Event", "تعرف على The Next Event، الشركة السعودية الرائدة في تنظيم الفعاليات مع فريق محترف وخبرة واسعة", ""},
		"en": {"About Us - The Next Event", "Learn about The Next Event, the leading Saudi event management company with professional team and extensive experience", ""},
	},
	"services": {
		"ar": {"خدماتنا - The Next Event", "اكتشف خدماتنا المتنوعة في تنظيم الفعاليات من مؤتمرات ومعارض وحفلات وفعاليات الشركات", ""},
		"en": {"Our Services - The Next Event", "Discover our diverse event management services including conferences, exhibitions, parties, and corporate events", ""},
	},
	"contact": {
		"ar": {"اتصل بنا - The Next Event", "تواصل معنا لتنظيم فعاليتك القادمة. فريقنا مستعد لتقديم استشارة مجانية وتحويل أفكارك لواقع", ""},
		"en": {"Contact Us - The Next Event", "Contact us to organize your next event. Our team is ready to provide free consultation and turn your ideas into reality", ""},
	},
}

// DefaultConfig returns the built-in configuration for page. Unknown pages
// use the home page texts; any language other than "ar" uses English.
func DefaultConfig(page, lang string) models.SEOConfiguration {
	texts, found := defaultPages[page]
	if !found {
		texts = defaultPages["home"]
	}
	siteLang, locale, inLang := "en", "en_US", "en-US"
	if lang == "ar" {
		siteLang, locale, inLang = "ar", "ar_SA", "ar-SA"
	}
	t := texts[siteLang]
	pageURL := fmt.Sprintf("%s/%s/%s", SiteURL, siteLang, page)
	return models.SEOConfiguration{
		PageName:        page,
		Language:        lang,
		MetaTitle:       t.title,
		MetaDescription: t.description,
		MetaKeywords:    t.keywords,
		OGTitle:         t.title,
		OGDescription:   t.description,
		OGImage:         SiteURL + "/og-image.jpg",
		OGURL:           pageURL,
		CanonicalURL:    pageURL,
		IsActive:        true,
		AdditionalMetaTags: []models.MetaTag{
			{Name: "robots", Content: "index, follow"},
			{Name: "author", Content: SiteName},
			{Name: "viewport", Content: "width=device-width, initial-scale=1"},
			{Property: "og:locale", Content: locale},
		},
		StructuredData: map[string]any{
			"@type":       "WebPage",
			"name":        t.title,
			"description": t.description,
			"url":         pageURL,
			"inLanguage":  inLang,
		},
	}
}

// Merge overlays the non-empty fields of custom on def. Meta tags are
// concatenated and structured data is merged key by key. IsActive and the
// identity fields stay those of def.
func Merge(def models.SEOConfiguration, custom *models.SEOConfiguration) models.SEOConfiguration {
	if custom == nil {
		return def
	}
	out := def
	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&out.PageName, custom.PageName)
	override(&out.Language, custom.Language)
	override(&out.MetaTitle, custom.MetaTitle)
	override(&out.MetaDescription, custom.MetaDescription)
	override(&out.MetaKeywords, custom.MetaKeywords)
	override(&out.OGTitle, custom.OGTitle)
	override(&out.OGDescription, custom.OGDescription)
	override(&out.OGImage, custom.OGImage)
	override(&out.OGURL, custom.OGURL)
	override(&out.CanonicalURL, custom.CanonicalURL)
	out.AdditionalMetaTags = append(append([]models.MetaTag(nil), def.AdditionalMetaTags...), custom.AdditionalMetaTags...)
	out.StructuredData = make(map[string]any, len(def.StructuredData)+len(custom.StructuredData))
	maps.Copy(out.StructuredData, def.StructuredData)
	maps.Copy(out.StructuredData, custom.StructuredData)
	return out
}
