package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/thenextevent/eventdesk/internal/models"
)

type ContentRepo struct {
	db *sql.DB
}

func NewContentRepo(db *sql.DB) *ContentRepo {
	return &ContentRepo{db: db}
}

const contentColumns = `id, content_key, section_key, content_value, language, sort_order, is_active, created_at, updated_at`

func (r *ContentRepo) List(ctx context.Context, p models.ContentListParams) (models.PagedItems[models.ContentItem], error) {
	var w where
	if p.Language != "" {
		w.add("language = ?", p.Language)
	}
	if p.SectionKey != "" {
		w.add("section_key = ?", p.SectionKey)
	}
	if p.ContentKey != "" {
		w.add("LOWER(content_key) LIKE ?", likeArg(p.ContentKey))
	}
	if p.IsActive != nil {
		w.add("is_active = ?", *p.IsActive)
	}
	page, size := pageBounds(p.Page, p.PageSize)
	total, err := count(ctx, r.db, `SELECT COUNT(*) FROM content_items`+w.String(), w.args...)
	if err != nil {
		return models.PagedItems[models.ContentItem]{}, err
	}
	filter := w.String()
	limit := w.next(size)
	offset := w.next(pageOffset(page, size))
	items, err := r.query(ctx, `SELECT `+contentColumns+` FROM content_items`+filter+
		` ORDER BY section_key, sort_order, id LIMIT `+limit+` OFFSET `+offset, w.args...)
	if err != nil {
		return models.PagedItems[models.ContentItem]{}, err
	}
	return models.PagedItems[models.ContentItem]{
		Items: items, TotalCount: total, PageNumber: page, PageSize: size, TotalPages: totalPages(total, size),
	}, nil
}

func (r *ContentRepo) FindByID(ctx context.Context, id int64) (*models.ContentItem, error) {
	return scanContent(r.db.QueryRowContext(ctx, `SELECT `+contentColumns+` FROM content_items WHERE id = $1`, id))
}

// FindByKey returns the active item for key. An empty language picks the
// first language alphabetically.
func (r *ContentRepo) FindByKey(ctx context.Context, key, language string) (*models.ContentItem, error) {
	var w where
	w.add("content_key = ?", key)
	w.add("is_active = ?", true)
	if language != "" {
		w.add("language = ?", language)
	}
	return scanContent(r.db.QueryRowContext(ctx,
		`SELECT `+contentColumns+` FROM content_items`+w.String()+` ORDER BY language LIMIT 1`, w.args...))
}

// Active lists active items filtered by column, which is language or
// section_key, in display order.
func (r *ContentRepo) Active(ctx context.Context, column, value string) ([]models.ContentItem, error) {
	if column != "language" && column != "section_key" {
		return nil, ErrInvalid
	}
	return r.query(ctx, `SELECT `+contentColumns+` FROM content_items
		WHERE `+column+` = $1 AND is_active = $2 ORDER BY section_key, sort_order, id`, value, true)
}

func (r *ContentRepo) Create(ctx context.Context, in models.ContentInput, at time.Time) (*models.ContentItem, error) {
	ts := formatTime(at)
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO content_items (content_key, section_key, content_value, language, sort_order, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7) RETURNING id`,
		in.ContentKey, in.SectionKey, in.ContentValue, in.Language, in.SortOrder, in.IsActive, ts,
	).Scan(&id)
	if err != nil {
		return nil, mapErr(err)
	}
	return r.FindByID(ctx, id)
}

func (r *ContentRepo) Update(ctx context.Context, id int64, in models.ContentInput, at time.Time) (*models.ContentItem, error) {
	err := expectOne(r.db.ExecContext(ctx,
		`UPDATE content_items SET content_key = $1, section_key = $2, content_value = $3, language = $4,
			sort_order = $5, is_active = $6, updated_at = $7 WHERE id = $8`,
		in.ContentKey, in.SectionKey, in.ContentValue, in.Language, in.SortOrder, in.IsActive, formatTime(at), id))
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// Upsert updates the item with the same key and language, or creates it.
func (r *ContentRepo) Upsert(ctx context.Context, items []models.ContentInput, at time.Time) ([]models.ContentItem, error) {
	ts := formatTime(at)
	ids := make([]int64, 0, len(items))
	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, in := range items {
			var id int64
			err := tx.QueryRowContext(ctx,
				`SELECT id FROM content_items WHERE content_key = $1 AND language = $2`, in.ContentKey, in.Language).Scan(&id)
			switch {
			case errors.Is(err, sql.ErrNoRows):
				err = tx.QueryRowContext(ctx,
					`INSERT INTO content_items (content_key, section_key, content_value, language, sort_order, is_active, created_at, updated_at)
					 VALUES ($1, $2, $3, $4, $5, $6, $7, $7) RETURNING id`,
					in.ContentKey, in.SectionKey, in.ContentValue, in.Language, in.SortOrder, in.IsActive, ts,
				).Scan(&id)
			case err == nil:
				_, err = tx.ExecContext(ctx,
					`UPDATE content_items SET section_key = $1, content_value = $2, sort_order = $3, is_active = $4, updated_at = $5
					 WHERE id = $6`, in.SectionKey, in.ContentValue, in.SortOrder, in.IsActive, ts, id)
			}
			if err != nil {
				return mapErr(err)
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]models.ContentItem, 0, len(ids))
	for _, id := range ids {
		it, err := r.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	return out, nil
}

func (r *ContentRepo) SetSortOrder(ctx context.Context, id int64, order int, at time.Time) error {
	return expectOne(r.db.ExecContext(ctx,
		`UPDATE content_items SET sort_order = $1, updated_at = $2 WHERE id = $3`, order, formatTime(at), id))
}

func (r *ContentRepo) ToggleActive(ctx context.Context, id int64, at time.Time) (*models.ContentItem, error) {
	err := expectOne(r.db.ExecContext(ctx,
		`UPDATE content_items SET is_active = NOT is_active, updated_at = $1 WHERE id = $2`, formatTime(at), id))
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *ContentRepo) Delete(ctx context.Context, id int64) error {
	return expectOne(r.db.ExecContext(ctx, `DELETE FROM content_items WHERE id = $1`, id))
}

func (r *ContentRepo) query(ctx context.Context, query string, args ...any) ([]models.ContentItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []models.ContentItem{}
	for rows.Next() {
		it, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func scanContent(s scanner) (*models.ContentItem, error) {
	var (
		it                   models.ContentItem
		createdAt, updatedAt string
	)
	err := s.Scan(&it.ID, &it.ContentKey, &it.SectionKey, &it.ContentValue, &it.Language, &it.SortOrder,
		&it.IsActive, &createdAt, &updatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	if it.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if it.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &it, nil
}
