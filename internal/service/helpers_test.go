package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenextevent/eventdesk/internal/models"
)

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "0 Bytes", FormatFileSize(0))
	assert.Equal(t, "512 Bytes", FormatFileSize(512))
	assert.Equal(t, "1.5 KB", FormatFileSize(1536))
	assert.Equal(t, "1.5 MB", FormatFileSize(1536*1024))
}

func TestFileNames(t *testing.T) {
	assert.Equal(t, "report.final", FileNameWithoutExt("report.final.pdf"))
	assert.Equal(t, "README", FileNameWithoutExt("README"))
	assert.Equal(t, "pdf", FileExtension("Report.PDF"))
	assert.True(t, IsDocument("application/pdf"))
	assert.False(t, IsDocument("image/png"))
	assert.True(t, ValidateFileSize(5<<20, 5))
	assert.False(t, ValidateFileSize(5<<20+1, 5))
}

func TestOptimizedImageURL(t *testing.T) {
	img := models.MediaFile{FileType: "image/png", URL: "/uploads/a.png"}
	assert.Equal(t, "/uploads/a.png?h=200&q=80&w=300", OptimizedImageURL(img, 300, 200, 80))
	assert.Equal(t, "/uploads/a.png", OptimizedImageURL(img, 0, 0, 0))

	doc := models.MediaFile{FileType: "application/pdf", URL: "/uploads/a.pdf"}
	assert.Equal(t, "/uploads/a.pdf", OptimizedImageURL(doc, 300, 200, 80))
}

func TestMetaTagsEscaped(t *testing.T) {
	out := GenerateMetaTags(models.SEOConfiguration{
		MetaTitle:          `Events & "More"`,
		MetaDescription:    "desc",
		CanonicalURL:       "https://example.com/en/home",
		AdditionalMetaTags: []models.MetaTag{{Name: "robots", Content: "noindex"}, {Name: "empty"}},
	})
	assert.Contains(t, out, "<title>Events &amp; &#34;More&#34;</title>")
	assert.Contains(t, out, `<meta name="robots" content="noindex" />`)
	assert.NotContains(t, out, `name="empty"`)
	assert.True(t, strings.HasSuffix(out, `<link rel="canonical" href="https://example.com/en/home" />`))
}

func TestStructuredDataEmptyWithoutInput(t *testing.T) {
	out, err := GenerateStructuredData(models.SEOConfiguration{}, nil)
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = GenerateStructuredData(models.SEOConfiguration{}, map[string]any{"@type": "Event"})
	require.NoError(t, err)
	assert.Contains(t, out, `"@type": "Event"`)
	assert.Contains(t, out, `"addressCountry": "SA"`)
}

func TestDefaultConfigAndMerge(t *testing.T) {
	def := DefaultConfig("contact", "ar")
	assert.Equal(t, "اتصل بنا - The Next Event", def.MetaTitle)
	assert.True(t, def.IsActive)
	assert.Contains(t, def.CanonicalURL, "/ar/contact")

	unknown := DefaultConfig("pricing", "fr")
	assert.Equal(t, DefaultConfig("home", "en").MetaTitle, unknown.MetaTitle)

	merged := Merge(def, &models.SEOConfiguration{
		MetaTitle:          "Custom",
		IsActive:           false,
		AdditionalMetaTags: []models.MetaTag{{Name: "theme-color", Content: "#000"}},
		StructuredData:     map[string]any{"name": "Custom"},
	})
	assert.Equal(t, "Custom", merged.MetaTitle)
	assert.Equal(t, def.MetaDescription, merged.MetaDescription)
	assert.True(t, merged.IsActive)
	assert.Len(t, merged.AdditionalMetaTags, len(def.AdditionalMetaTags)+1)
	assert.Equal(t, "Custom", merged.StructuredData["name"])
	assert.Equal(t, "WebPage", merged.StructuredData["@type"])
	assert.Len(t, def.AdditionalMetaTags, 4)
}

func TestCleanEmailList(t *testing.T) {
	got := CleanEmailList([]string{" A@Example.com", "bad", "a@example.com", "b@example.com"})
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, got)
}

func TestRenderTemplateUnknownEmpty(t *testing.T) {
	out, err := RenderTemplate("Hello {{ name }}{{ missing }}!", map[string]string{"name": "Sara"})
	require.NoError(t, err)
	assert.Equal(t, "Hello Sara!", out)
}

func TestFormatEmailForDisplay(t *testing.T) {
	sent := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	d := FormatEmailForDisplay(models.EmailLog{Recipient: "a@example.com", Status: models.EmailBounced, SentAt: sent}, nil)
	assert.Equal(t, "orange", d.StatusColor)
	assert.Equal(t, "2024-05-01 09:30", d.SentDate)
	assert.Empty(t, d.DeliveredDate)
}

func TestContentHelpers(t *testing.T) {
	items := []models.ContentItem{
		{ContentKey: "hero-title", SectionKey: "hero", ContentValue: "Welcome", SortOrder: 2, IsActive: true},
		{ContentKey: "hero-sub", SectionKey: "hero", ContentValue: "Events", SortOrder: 1, IsActive: true},
		{ContentKey: "old", SectionKey: "footer", ContentValue: "gone", IsActive: false},
	}
	assert.Equal(t, map[string]string{"hero-title": "Welcome", "hero-sub": "Events"}, ToMap(items))

	groups := GroupBySection(items)
	require.Len(t, groups["hero"], 2)
	assert.Equal(t, "hero-sub", groups["hero"][0].ContentKey)
	assert.NotContains(t, groups, "footer")

	assert.Len(t, SearchContent(items, "HERO"), 2)
	assert.Len(t, SearchContent(items, "gone"), 1)
}

func TestFormatForDisplay(t *testing.T) {
	d := FormatForDisplay(models.Submission{
		SubmitterName: "Sara",
		AdditionalData: map[string]any{
			"services": []any{"catering", "venue"},
			"budget":   "",
			"venue":    "Riyadh",
		},
	}, "en")
	assert.Equal(t, "Name", d.Basic[0].Label)
	assert.Equal(t, []DisplayField{{"Requested services", "catering, venue"}, {"venue", "Riyadh"}}, d.Additional)
}
