package backend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/thenextevent/eventdesk/internal/models"
	"github.com/thenextevent/eventdesk/internal/repository"
)

type SEOService struct {
	seo *repository.SEORepo
	now func() time.Time
}

func NewSEOService(seo *repository.SEORepo) *SEOService {
	return &SEOService{seo: seo, now: time.Now}
}

func (s *SEOService) Public(ctx context.Context) ([]models.SEOConfiguration, error) {
	return s.seo.Active(ctx)
}

func (s *SEOService) ByPage(ctx context.Context, page, lang string) (*models.SEOConfiguration, error) {
	if lang == "" {
		lang = DefaultLanguage
	}
	return s.seo.FindByPage(ctx, page, lang)
}

func (s *SEOService) List(ctx context.Context, p models.SEOListParams) (models.PagedItems[models.SEOConfiguration], error) {
	return s.seo.List(ctx, p)
}

func (s *SEOService) Get(ctx context.Context, id int64) (*models.SEOConfiguration, error) {
	return s.seo.FindByID(ctx, id)
}

func (s *SEOService) Create(ctx context.Context, c models.SEOConfiguration) (*models.SEOConfiguration, error) {
	if err := checkSEO(&c); err != nil {
		return nil, err
	}
	id, err := s.seo.Create(ctx, c, s.now())
	if err != nil {
		return nil, err
	}
	return s.seo.FindByID(ctx, id)
}

func (s *SEOService) Update(ctx context.Context, id int64, c models.SEOConfiguration) (*models.SEOConfiguration, error) {
	if err := checkSEO(&c); err != nil {
		return nil, err
	}
	if err := s.seo.Update(ctx, id, c, s.now()); err != nil {
		return nil, err
	}
	return s.seo.FindByID(ctx, id)
}

func (s *SEOService) SetActive(ctx context.Context, id int64, active bool) error {
	return s.seo.SetActive(ctx, id, active, s.now())
}

func (s *SEOService) Delete(ctx context.Context, id int64) error {
	return s.seo.Delete(ctx, id)
}

func checkSEO(c *models.SEOConfiguration) error {
	errs := FieldErrors{}
	c.PageName = strings.TrimSpace(c.PageName)
	c.MetaTitle = strings.TrimSpace(c.MetaTitle)
	c.MetaDescription = strings.TrimSpace(c.MetaDescription)
	if c.PageName == "" {
		errs.add("pageName", "page name is required")
	}
	if !oneOf(c.Language, languages) {
		errs.add("language", "language must be ar or en")
	}
	if c.MetaTitle == "" {
		errs.add("metaTitle", "meta title is required")
	}
	if c.MetaDescription == "" {
		errs.add("metaDescription", "meta description is required")
	}
	for i, tag := range c.AdditionalMetaTags {
		if tag.Name == "" && tag.Property == "" {
			errs.add("additionalMetaTags", fmt.Sprintf("tag %d needs a name or a property", i))
		}
	}
	return errs.err()
}
