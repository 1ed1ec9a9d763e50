package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/thenextevent/eventdesk/internal/models"
)

type SEORepo struct {
	db *sql.DB
}

func NewSEORepo(db *sql.DB) *SEORepo {
	return &SEORepo{db: db}
}

const seoColumns = `id, page_name, language, meta_title, meta_description, meta_keywords, og_title, og_description,
	og_image, og_url, canonical_url, is_active, additional_meta_tags, structured_data, created_at, updated_at`

func (r *SEORepo) FindByID(ctx context.Context, id int64) (*models.SEOConfiguration, error) {
	return scanSEO(r.db.QueryRowContext(ctx, `SELECT `+seoColumns+` FROM seo_configs WHERE id = $1`, id))
}

// FindByPage returns the active configuration for page in language.
func (r *SEORepo) FindByPage(ctx context.Context, page, language string) (*models.SEOConfiguration, error) {
	return scanSEO(r.db.QueryRowContext(ctx,
		`SELECT `+seoColumns+` FROM seo_configs WHERE page_name = $1 AND language = $2 AND is_active = $3`,
		page, language, true))
}

func (r *SEORepo) Active(ctx context.Context) ([]models.SEOConfiguration, error) {
	return r.query(ctx, `SELECT `+seoColumns+` FROM seo_configs WHERE is_active = $1 ORDER BY page_name, language`, true)
}

func (r *SEORepo) List(ctx context.Context, p models.SEOListParams) (models.PagedItems[models.SEOConfiguration], error) {
	var w where
	if p.Language != "" {
		w.add("language = ?", p.Language)
	}
	if p.Search != "" {
		w.add("(LOWER(page_name) LIKE ? OR LOWER(meta_title) LIKE ?)", likeArg(p.Search))
	}
	page, size := pageBounds(p.Page, p.PageSize)
	total, err := count(ctx, r.db, `SELECT COUNT(*) FROM seo_configs`+w.String(), w.args...)
	if err != nil {
		return models.PagedItems[models.SEOConfiguration]{}, err
	}
	filter := w.String()
	limit := w.next(size)
	offset := w.next(pageOffset(page, size))
	items, err := r.query(ctx, `SELECT `+seoColumns+` FROM seo_configs`+filter+
		` ORDER BY page_name, language LIMIT `+limit+` OFFSET `+offset, w.args...)
	if err != nil {
		return models.PagedItems[models.SEOConfiguration]{}, err
	}
	return models.PagedItems[models.SEOConfiguration]{
		Items: items, TotalCount: total, PageNumber: page, PageSize: size, TotalPages: totalPages(total, size),
	}, nil
}

func (r *SEORepo) Create(ctx context.Context, c models.SEOConfiguration, at time.Time) (int64, error) {
	tags, data, err := seoJSON(c)
	if err != nil {
		return 0, err
	}
	var id int64
	err = r.db.QueryRowContext(ctx,
		`INSERT INTO seo_configs (page_name, language, meta_title, meta_description, meta_keywords, og_title,
			og_description, og_image, og_url, canonical_url, is_active, additional_meta_tags, structured_data,
			created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14) RETURNING id`,
		c.PageName, c.Language, c.MetaTitle, c.MetaDescription, c.MetaKeywords, c.OGTitle, c.OGDescription,
		c.OGImage, c.OGURL, c.CanonicalURL, c.IsActive, tags, data, formatTime(at),
	).Scan(&id)
	if err != nil {
		return 0, mapErr(err)
	}
	return id, nil
}

func (r *SEORepo) Update(ctx context.Context, id int64, c models.SEOConfiguration, at time.Time) error {
	tags, data, err := seoJSON(c)
	if err != nil {
		return err
	}
	return expectOne(r.db.ExecContext(ctx,
		`UPDATE seo_configs SET page_name = $1, language = $2, meta_title = $3, meta_description = $4,
			meta_keywords = $5, og_title = $6, og_description = $7, og_image = $8, og_url = $9,
			canonical_url = $10, is_active = $11, additional_meta_tags = $12, structured_data = $13,
			updated_at = $14
		 WHERE id = $15`,
		c.PageName, c.Language, c.MetaTitle, c.MetaDescription, c.MetaKeywords, c.OGTitle, c.OGDescription,
		c.OGImage, c.OGURL, c.CanonicalURL, c.IsActive, tags, data, formatTime(at), id))
}

func (r *SEORepo) SetActive(ctx context.Context, id int64, active bool, at time.Time) error {
	return expectOne(r.db.ExecContext(ctx,
		`UPDATE seo_configs SET is_active = $1, updated_at = $2 WHERE id = $3`, active, formatTime(at), id))
}

func (r *SEORepo) Delete(ctx context.Context, id int64) error {
	return expectOne(r.db.ExecContext(ctx, `DELETE FROM seo_configs WHERE id = $1`, id))
}

func seoJSON(c models.SEOConfiguration) (string, string, error) {
	tags := c.AdditionalMetaTags
	if tags == nil {
		tags = []models.MetaTag{}
	}
	t, err := encodeJSON(tags)
	if err != nil {
		return "", "", err
	}
	data := c.StructuredData
	if data == nil {
		data = map[string]any{}
	}
	d, err := encodeJSON(data)
	if err != nil {
		return "", "", err
	}
	return t, d, nil
}

func (r *SEORepo) query(ctx context.Context, query string, args ...any) ([]models.SEOConfiguration, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.SEOConfiguration{}
	for rows.Next() {
		c, err := scanSEO(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func scanSEO(s scanner) (*models.SEOConfiguration, error) {
	var (
		c                    models.SEOConfiguration
		tags, data           string
		createdAt, updatedAt string
	)
	err := s.Scan(&c.ID, &c.PageName, &c.Language, &c.MetaTitle, &c.MetaDescription, &c.MetaKeywords, &c.OGTitle,
		&c.OGDescription, &c.OGImage, &c.OGURL, &c.CanonicalURL, &c.IsActive, &tags, &data, &createdAt, &updatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	if err := decodeJSON(tags, &c.AdditionalMetaTags); err != nil {
		return nil, err
	}
	if err := decodeJSON(data, &c.StructuredData); err != nil {
		return nil, err
	}
	if len(c.AdditionalMetaTags) == 0 {
		c.AdditionalMetaTags = nil
	}
	if len(c.StructuredData) == 0 {
		c.StructuredData = nil
	}
	created, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	updated, err := parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	c.CreatedAt, c.UpdatedAt = &created, &updated
	return &c, nil
}
