package backend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/thenextevent/eventdesk/internal/models"
	"github.com/thenextevent/eventdesk/internal/repository"
	"github.com/thenextevent/eventdesk/internal/validation"
)

// DefaultLanguage is served when a public content request names none.
const DefaultLanguage = "ar"

var languages = []string{"ar", "en"}

type ContentService struct {
	content *repository.ContentRepo
	now     func() time.Time
}

func NewContentService(content *repository.ContentRepo) *ContentService {
	return &ContentService{content: content, now: time.Now}
}

func (s *ContentService) List(ctx context.Context, p models.ContentListParams) (models.PagedItems[models.ContentItem], error) {
	return s.content.List(ctx, p)
}

func (s *ContentService) Get(ctx context.Context, id int64) (*models.ContentItem, error) {
	return s.content.FindByID(ctx, id)
}

func (s *ContentService) ByKey(ctx context.Context, key, lang string) (*models.ContentItem, error) {
	if lang == "" {
		lang = DefaultLanguage
	}
	return s.content.FindByKey(ctx, key, lang)
}

func (s *ContentService) ByLanguage(ctx context.Context, lang string) ([]models.ContentItem, error) {
	return s.content.Active(ctx, "language", lang)
}

func (s *ContentService) BySection(ctx context.Context, section string) ([]models.ContentItem, error) {
	return s.content.Active(ctx, "section_key", section)
}

func (s *ContentService) Create(ctx context.Context, in models.ContentInput) (*models.ContentItem, error) {
	in, err := checkContent(in, "")
	if err != nil {
		return nil, err
	}
	return s.content.Create(ctx, in, s.now())
}

func (s *ContentService) Update(ctx context.Context, id int64, in models.ContentInput) (*models.ContentItem, error) {
	in, err := checkContent(in, "")
	if err != nil {
		return nil, err
	}
	return s.content.Update(ctx, id, in, s.now())
}

func (s *ContentService) Delete(ctx context.Context, id int64) error {
	return s.content.Delete(ctx, id)
}

func (s *ContentService) SetSortOrder(ctx context.Context, id int64, order int) error {
	if order < 0 {
		return FieldErrors{"sortOrder": {"sort order must not be negative"}}
	}
	return s.content.SetSortOrder(ctx, id, order, s.now())
}

func (s *ContentService) ToggleActive(ctx context.Context, id int64) (*models.ContentItem, error) {
	return s.content.ToggleActive(ctx, id, s.now())
}

// BulkUpdate validates every item before writing any of them, then upserts
// them in one transaction keyed on content key and language.
func (s *ContentService) BulkUpdate(ctx context.Context, items []models.ContentInput) ([]models.ContentItem, error) {
	if len(items) == 0 {
		return nil, FieldErrors{"items": {"at least one item is required"}}
	}
	errs := FieldErrors{}
	for i := range items {
		in, err := checkContent(items[i], fmt.Sprintf("items[%d].", i))
		if err != nil {
			for f, msgs := range err.(FieldErrors) {
				errs[f] = append(errs[f], msgs...)
			}
			continue
		}
		items[i] = in
	}
	if err := errs.err(); err != nil {
		return nil, err
	}
	return s.content.Upsert(ctx, items, s.now())
}

// checkContent normalizes the key to a slug and reports missing fields
// under prefix.
func checkContent(in models.ContentInput, prefix string) (models.ContentInput, error) {
	errs := FieldErrors{}
	in.ContentKey = validation.Slugify(in.ContentKey)
	in.SectionKey = strings.TrimSpace(in.SectionKey)
	if in.ContentKey == "" {
		errs.add(prefix+"contentKey", "content key is required")
	}
	if in.SectionKey == "" {
		errs.add(prefix+"sectionKey", "section key is required")
	}
	if strings.TrimSpace(in.ContentValue) == "" {
		errs.add(prefix+"contentValue", "content value is required")
	}
	if !oneOf(in.Language, languages) {
		errs.add(prefix+"language", "language must be ar or en")
	}
	if in.SortOrder < 0 {
		errs.add(prefix+"sortOrder", "sort order must not be negative")
	}
	return in, errs.err()
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
