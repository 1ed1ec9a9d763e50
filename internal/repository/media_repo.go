package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/thenextevent/eventdesk/internal/models"
)

type MediaRepo struct {
	db *sql.DB
}

func NewMediaRepo(db *sql.DB) *MediaRepo {
	return &MediaRepo{db: db}
}

const mediaColumns = `id, file_name, original_name, file_type, file_size, url, blob_key, width, height,
	alt_text, category, is_public, uploaded_by, uploaded_at, created_at, updated_at`

func (r *MediaRepo) Create(ctx context.Context, f *models.MediaFile) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO media_files (file_name, original_name, file_type, file_size, url, blob_key, width, height,
			alt_text, category, is_public, uploaded_by, uploaded_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13, $13) RETURNING id`,
		f.FileName, f.OriginalName, f.FileType, f.FileSize, f.URL, f.BlobKey, f.Width, f.Height,
		f.AltText, f.Category, f.IsPublic, f.UploadedBy, formatTime(f.UploadedAt),
	).Scan(&id)
	if err != nil {
		return 0, mapErr(err)
	}
	return id, nil
}

func (r *MediaRepo) FindByID(ctx context.Context, id int64) (*models.MediaFile, error) {
	return scanMedia(r.db.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media_files WHERE id = $1`, id))
}

func (r *MediaRepo) List(ctx context.Context, p models.MediaListParams) (models.PagedItems[models.MediaFile], error) {
	var w where
	if p.Category != "" {
		w.add("category = ?", p.Category)
	}
	if p.FileType != "" {
		w.add("file_type LIKE ?", p.FileType+"%")
	}
	if p.Search != "" {
		w.add("(LOWER(original_name) LIKE ? OR LOWER(alt_text) LIKE ?)", likeArg(p.Search))
	}
	page, size := pageBounds(p.Page, p.PageSize)
	total, err := count(ctx, r.db, `SELECT COUNT(*) FROM media_files`+w.String(), w.args...)
	if err != nil {
		return models.PagedItems[models.MediaFile]{}, err
	}
	filter := w.String()
	limit := w.next(size)
	offset := w.next(pageOffset(page, size))
	files, err := r.query(ctx, `SELECT `+mediaColumns+` FROM media_files`+filter+
		` ORDER BY uploaded_at DESC, id DESC LIMIT `+limit+` OFFSET `+offset, w.args...)
	if err != nil {
		return models.PagedItems[models.MediaFile]{}, err
	}
	return models.PagedItems[models.MediaFile]{
		Items: files, TotalCount: total, PageNumber: page, PageSize: size, TotalPages: totalPages(total, size),
	}, nil
}

// Public lists public files, optionally limited to one category.
func (r *MediaRepo) Public(ctx context.Context, category string) ([]models.MediaFile, error) {
	var w where
	w.add("is_public = ?", true)
	if category != "" {
		w.add("category = ?", category)
	}
	return r.query(ctx, `SELECT `+mediaColumns+` FROM media_files`+w.String()+` ORDER BY uploaded_at DESC, id DESC`, w.args...)
}

func (r *MediaRepo) Update(ctx context.Context, id int64, upd models.MediaUpdate, at time.Time) error {
	var w where
	sets := []string{}
	if upd.AltText != nil {
		sets = append(sets, "alt_text = "+w.next(*upd.AltText))
	}
	if upd.Category != nil {
		sets = append(sets, "category = "+w.next(*upd.Category))
	}
	if upd.IsPublic != nil {
		sets = append(sets, "is_public = "+w.next(*upd.IsPublic))
	}
	sets = append(sets, "updated_at = "+w.next(formatTime(at)))
	query := `UPDATE media_files SET ` + strings.Join(sets, ", ") + ` WHERE id = ` + w.next(id)
	return expectOne(r.db.ExecContext(ctx, query, w.args...))
}

func (r *MediaRepo) Delete(ctx context.Context, id int64) error {
	return expectOne(r.db.ExecContext(ctx, `DELETE FROM media_files WHERE id = $1`, id))
}

func (r *MediaRepo) Statistics(ctx context.Context) (*models.MediaStatistics, error) {
	stats := &models.MediaStatistics{ByType: map[string]int64{}, ByCategory: map[string]int64{}}
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(file_size), 0) FROM media_files`).
		Scan(&stats.TotalFiles, &stats.TotalSize)
	if err != nil {
		return nil, err
	}
	for column, into := range map[string]map[string]int64{"file_type": stats.ByType, "category": stats.ByCategory} {
		rows, err := r.db.QueryContext(ctx, `SELECT `+column+`, COUNT(*) FROM media_files GROUP BY `+column)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var (
				key string
				n   int64
			)
			if err := rows.Scan(&key, &n); err != nil {
				rows.Close()
				return nil, err
			}
			into[key] = n
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}
	}
	return stats, nil
}

func (r *MediaRepo) query(ctx context.Context, query string, args ...any) ([]models.MediaFile, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	files := []models.MediaFile{}
	for rows.Next() {
		f, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, *f)
	}
	return files, rows.Err()
}

func scanMedia(s scanner) (*models.MediaFile, error) {
	var (
		f                                models.MediaFile
		uploadedAt, createdAt, updatedAt string
	)
	err := s.Scan(&f.ID, &f.FileName, &f.OriginalName, &f.FileType, &f.FileSize, &f.URL, &f.BlobKey, &f.Width, &f.Height,
		&f.AltText, &f.Category, &f.IsPublic, &f.UploadedBy, &uploadedAt, &createdAt, &updatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	if f.UploadedAt, err = parseTime(uploadedAt); err != nil {
		return nil, err
	}
	if f.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if f.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}
