package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/thenextevent/eventdesk/internal/models"
)

type EmailRepo struct {
	db *sql.DB
}

func NewEmailRepo(db *sql.DB) *EmailRepo {
	return &EmailRepo{db: db}
}

const (
	templateColumns = `id, name, subject, html_content, text_content, language, category, is_active, variables, created_at, updated_at`
	logColumns      = `id, recipient, subject, status, message_id, sent_at, delivered_at, error_message, template_id`
)

func (r *EmailRepo) Template(ctx context.Context, id int64) (*models.EmailTemplate, error) {
	return scanTemplate(r.db.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM email_templates WHERE id = $1`, id))
}

// TemplateByName returns the active template called name in language.
func (r *EmailRepo) TemplateByName(ctx context.Context, name, language string) (*models.EmailTemplate, error) {
	return scanTemplate(r.db.QueryRowContext(ctx,
		`SELECT `+templateColumns+` FROM email_templates WHERE name = $1 AND language = $2 AND is_active = $3
		 ORDER BY id LIMIT 1`, name, language, true))
}

func (r *EmailRepo) Templates(ctx context.Context, p models.TemplateListParams) (models.PagedItems[models.EmailTemplate], error) {
	var w where
	if p.Language != "" {
		w.add("language = ?", p.Language)
	}
	if p.Category != "" {
		w.add("category = ?", p.Category)
	}
	if p.Search != "" {
		w.add("(LOWER(name) LIKE ? OR LOWER(subject) LIKE ?)", likeArg(p.Search))
	}
	page, size := pageBounds(p.Page, p.PageSize)
	total, err := count(ctx, r.db, `SELECT COUNT(*) FROM email_templates`+w.String(), w.args...)
	if err != nil {
		return models.PagedItems[models.EmailTemplate]{}, err
	}
	filter := w.String()
	limit := w.next(size)
	offset := w.next(pageOffset(page, size))
	rows, err := r.db.QueryContext(ctx, `SELECT `+templateColumns+` FROM email_templates`+filter+
		` ORDER BY name, language LIMIT `+limit+` OFFSET `+offset, w.args...)
	if err != nil {
		return models.PagedItems[models.EmailTemplate]{}, err
	}
	defer rows.Close()
	items := []models.EmailTemplate{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return models.PagedItems[models.EmailTemplate]{}, err
		}
		items = append(items, *t)
	}
	if err := rows.Err(); err != nil {
		return models.PagedItems[models.EmailTemplate]{}, err
	}
	return models.PagedItems[models.EmailTemplate]{
		Items: items, TotalCount: total, PageNumber: page, PageSize: size, TotalPages: totalPages(total, size),
	}, nil
}

func (r *EmailRepo) CreateTemplate(ctx context.Context, t models.EmailTemplate, at time.Time) (int64, error) {
	vars, err := encodeJSON(templateVars(t.Variables))
	if err != nil {
		return 0, err
	}
	var id int64
	err = r.db.QueryRowContext(ctx,
		`INSERT INTO email_templates (name, subject, html_content, text_content, language, category, is_active,
			variables, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9) RETURNING id`,
		t.Name, t.Subject, t.HTMLContent, t.TextContent, t.Language, t.Category, t.IsActive, vars, formatTime(at),
	).Scan(&id)
	if err != nil {
		return 0, mapErr(err)
	}
	return id, nil
}

func (r *EmailRepo) UpdateTemplate(ctx context.Context, id int64, t models.EmailTemplate, at time.Time) error {
	vars, err := encodeJSON(templateVars(t.Variables))
	if err != nil {
		return err
	}
	return expectOne(r.db.ExecContext(ctx,
		`UPDATE email_templates SET name = $1, subject = $2, html_content = $3, text_content = $4, language = $5,
			category = $6, is_active = $7, variables = $8, updated_at = $9
		 WHERE id = $10`,
		t.Name, t.Subject, t.HTMLContent, t.TextContent, t.Language, t.Category, t.IsActive, vars, formatTime(at), id))
}

func (r *EmailRepo) DeleteTemplate(ctx context.Context, id int64) error {
	return expectOne(r.db.ExecContext(ctx, `DELETE FROM email_templates WHERE id = $1`, id))
}

func templateVars(v []models.TemplateVariable) []models.TemplateVariable {
	if v == nil {
		return []models.TemplateVariable{}
	}
	return v
}

func (r *EmailRepo) CreateLog(ctx context.Context, l *models.EmailLog) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO email_logs (recipient, subject, status, message_id, sent_at, delivered_at, error_message, template_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		l.Recipient, l.Subject, string(l.Status), l.MessageID, formatTime(l.SentAt), formatTimePtr(l.DeliveredAt),
		l.ErrorMessage, nullInt(l.TemplateID),
	).Scan(&id)
	if err != nil {
		return 0, mapErr(err)
	}
	return id, nil
}

func (r *EmailRepo) Log(ctx context.Context, id int64) (*models.EmailLog, error) {
	return scanLog(r.db.QueryRowContext(ctx, `SELECT `+logColumns+` FROM email_logs WHERE id = $1`, id))
}

func (r *EmailRepo) Logs(ctx context.Context, p models.EmailLogParams) (models.PagedItems[models.EmailLog], error) {
	var w where
	if p.Status != "" {
		w.add("status = ?", p.Status)
	}
	if p.Recipient != "" {
		w.add("LOWER(recipient) LIKE ?", likeArg(p.Recipient))
	}
	if t, err := time.Parse(time.DateOnly, p.DateFrom); err == nil {
		w.add("sent_at >= ?", formatTime(t))
	}
	if t, err := time.Parse(time.DateOnly, p.DateTo); err == nil {
		w.add("sent_at < ?", formatTime(t.AddDate(0, 0, 1)))
	}
	page, size := pageBounds(p.Page, p.PageSize)
	total, err := count(ctx, r.db, `SELECT COUNT(*) FROM email_logs`+w.String(), w.args...)
	if err != nil {
		return models.PagedItems[models.EmailLog]{}, err
	}
	filter := w.String()
	limit := w.next(size)
	offset := w.next(pageOffset(page, size))
	rows, err := r.db.QueryContext(ctx, `SELECT `+logColumns+` FROM email_logs`+filter+
		` ORDER BY sent_at DESC, id DESC LIMIT `+limit+` OFFSET `+offset, w.args...)
	if err != nil {
		return models.PagedItems[models.EmailLog]{}, err
	}
	defer rows.Close()
	items := []models.EmailLog{}
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return models.PagedItems[models.EmailLog]{}, err
		}
		items = append(items, *l)
	}
	if err := rows.Err(); err != nil {
		return models.PagedItems[models.EmailLog]{}, err
	}
	return models.PagedItems[models.EmailLog]{
		Items: items, TotalCount: total, PageNumber: page, PageSize: size, TotalPages: totalPages(total, size),
	}, nil
}

// SetStatus records a provider notification for every log carrying
// messageID. Delivered notifications also stamp deliveredAt.
func (r *EmailRepo) SetStatus(ctx context.Context, messageID string, status models.EmailStatus, details string, at time.Time) error {
	if status == models.EmailDelivered {
		return expectOne(r.db.ExecContext(ctx,
			`UPDATE email_logs SET status = $1, delivered_at = $2 WHERE message_id = $3`,
			string(status), formatTime(at), messageID))
	}
	return expectOne(r.db.ExecContext(ctx,
		`UPDATE email_logs SET status = $1, error_message = $2 WHERE message_id = $3`,
		string(status), details, messageID))
}

// Statistics counts logs sent at or after since, in total and per UTC day.
func (r *EmailRepo) Statistics(ctx context.Context, since time.Time) (*models.EmailStatistics, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT SUBSTR(sent_at, 1, 10) AS day, status, COUNT(*) FROM email_logs
		 WHERE sent_at >= $1 GROUP BY day, status ORDER BY day`, formatTime(since))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &models.EmailStatistics{ChartData: []models.EmailDayCounts{}}
	index := map[string]int{}
	for rows.Next() {
		var (
			day, status string
			n           int64
		)
		if err := rows.Scan(&day, &status, &n); err != nil {
			return nil, err
		}
		i, ok := index[day]
		if !ok {
			i = len(stats.ChartData)
			index[day] = i
			stats.ChartData = append(stats.ChartData, models.EmailDayCounts{Date: day})
		}
		entry := &stats.ChartData[i]
		entry.Sent += n
		stats.TotalSent += n
		switch models.EmailStatus(status) {
		case models.EmailDelivered:
			entry.Delivered += n
			stats.TotalDelivered += n
		case models.EmailFailed:
			entry.Failed += n
			stats.TotalFailed += n
		case models.EmailBounced:
			stats.TotalBounced += n
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if stats.TotalSent > 0 {
		stats.DeliveryRate = float64(stats.TotalDelivered) / float64(stats.TotalSent) * 100
		stats.BounceRate = float64(stats.TotalBounced) / float64(stats.TotalSent) * 100
	}
	return stats, nil
}

func nullInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func scanTemplate(s scanner) (*models.EmailTemplate, error) {
	var (
		t                    models.EmailTemplate
		vars                 string
		createdAt, updatedAt string
	)
	err := s.Scan(&t.ID, &t.Name, &t.Subject, &t.HTMLContent, &t.TextContent, &t.Language, &t.Category,
		&t.IsActive, &vars, &createdAt, &updatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	if err := decodeJSON(vars, &t.Variables); err != nil {
		return nil, err
	}
	created, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	updated, err := parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	t.CreatedAt, t.UpdatedAt = &created, &updated
	return &t, nil
}

func scanLog(s scanner) (*models.EmailLog, error) {
	var (
		l           models.EmailLog
		status      string
		sentAt      string
		deliveredAt sql.NullString
		templateID  sql.NullInt64
	)
	err := s.Scan(&l.ID, &l.Recipient, &l.Subject, &status, &l.MessageID, &sentAt, &deliveredAt, &l.ErrorMessage, &templateID)
	if err != nil {
		return nil, mapErr(err)
	}
	l.Status = models.EmailStatus(status)
	if l.SentAt, err = parseTime(sentAt); err != nil {
		return nil, err
	}
	if l.DeliveredAt, err = parseNullTime(deliveredAt); err != nil {
		return nil, err
	}
	if templateID.Valid {
		id := templateID.Int64
		l.TemplateID = &id
	}
	return &l, nil
}
