package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/thenextevent/eventdesk/internal/models"
)

type SubmissionRepo struct {
	db *sql.DB
}

func NewSubmissionRepo(db *sql.DB) *SubmissionRepo {
	return &SubmissionRepo{db: db}
}

const submissionColumns = `id, form_type, submitter_name, submitter_email, submitter_phone, message, status,
	is_read, admin_notes, priority, tags, assigned_to, attachments, additional_data,
	submitted_at, updated_at, last_updated`

func (r *SubmissionRepo) Create(ctx context.Context, sub *models.Submission) (int64, error) {
	tags, err := encodeJSON(orEmpty(sub.Tags))
	if err != nil {
		return 0, err
	}
	attachments, err := encodeJSON(orEmpty(sub.Attachments))
	if err != nil {
		return 0, err
	}
	extra := sub.AdditionalData
	if extra == nil {
		extra = map[string]any{}
	}
	additional, err := encodeJSON(extra)
	if err != nil {
		return 0, err
	}

	var id int64
	err = r.db.QueryRowContext(ctx,
		`INSERT INTO submissions (form_type, submitter_name, submitter_email, submitter_phone, message, status,
			is_read, admin_notes, priority, tags, assigned_to, attachments, additional_data, submitted_at, last_updated)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15) RETURNING id`,
		string(sub.FormType), sub.SubmitterName, sub.SubmitterEmail, sub.SubmitterPhone, sub.Message,
		string(sub.Status), sub.IsRead, sub.AdminNotes, string(sub.Priority), tags, sub.AssignedTo,
		attachments, additional, formatTime(sub.SubmittedAt), formatTime(sub.LastUpdated),
	).Scan(&id)
	if err != nil {
		return 0, mapErr(err)
	}
	return id, nil
}

func (r *SubmissionRepo) FindByID(ctx context.Context, id int64) (*models.Submission, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = $1`, id)
	return scanSubmission(row)
}

// List applies the categorical filters in SQL and returns every match,
// newest first. Date range, search and paging are left to the caller.
func (r *SubmissionRepo) List(ctx context.Context, f models.DashboardFilters) ([]models.Submission, error) {
	var w where
	if set(f.FormType) {
		w.add("form_type = ?", f.FormType)
	}
	if set(f.Status) {
		w.add("status = ?", f.Status)
	}
	if set(f.Priority) {
		w.add("priority = ?", f.Priority)
	}
	if set(f.AssignedTo) {
		w.add("assigned_to = ?", f.AssignedTo)
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+submissionColumns+` FROM submissions`+w.String()+` ORDER BY submitted_at DESC, id DESC`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	subs := []models.Submission{}
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *s)
	}
	return subs, rows.Err()
}

func set(v string) bool {
	return v != "" && v != models.FilterAll
}

// UpdateStatus sets status and, when notes is non-empty, replaces the admin
// notes.
func (r *SubmissionRepo) UpdateStatus(ctx context.Context, id int64, status models.Status, notes string, at time.Time) error {
	return updateStatus(ctx, r.db, id, status, notes, at)
}

// UpdateStatusMany applies one status change to every id or to none.
func (r *SubmissionRepo) UpdateStatusMany(ctx context.Context, ids []int64, status models.Status, notes string, at time.Time) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, id := range ids {
			if err := updateStatus(ctx, tx, id, status, notes, at); err != nil {
				return err
			}
		}
		return nil
	})
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func updateStatus(ctx context.Context, db execer, id int64, status models.Status, notes string, at time.Time) error {
	ts := formatTime(at)
	if notes == "" {
		return expectOne(db.ExecContext(ctx,
			`UPDATE submissions SET status = $1, updated_at = $2, last_updated = $2 WHERE id = $3`,
			string(status), ts, id))
	}
	return expectOne(db.ExecContext(ctx,
		`UPDATE submissions SET status = $1, admin_notes = $2, updated_at = $3, last_updated = $3 WHERE id = $4`,
		string(status), notes, ts, id))
}

func (r *SubmissionRepo) SetRead(ctx context.Context, id int64, isRead bool, at time.Time) error {
	ts := formatTime(at)
	return expectOne(r.db.ExecContext(ctx,
		`UPDATE submissions SET is_read = $1, last_updated = $2 WHERE id = $3`, isRead, ts, id))
}

func (r *SubmissionRepo) Assign(ctx context.Context, id int64, assignee string, at time.Time) error {
	ts := formatTime(at)
	return expectOne(r.db.ExecContext(ctx,
		`UPDATE submissions SET assigned_to = $1, updated_at = $2, last_updated = $2 WHERE id = $3`, assignee, ts, id))
}

// AppendNote adds a line to the admin notes.
func (r *SubmissionRepo) AppendNote(ctx context.Context, id int64, note string, at time.Time) error {
	ts := formatTime(at)
	return expectOne(r.db.ExecContext(ctx,
		`UPDATE submissions
		 SET admin_notes = CASE WHEN admin_notes = '' THEN $1 ELSE admin_notes || $2 END,
		     updated_at = $3, last_updated = $3
		 WHERE id = $4`,
		note, "\n"+note, ts, id))
}

func (r *SubmissionRepo) Delete(ctx context.Context, id int64) error {
	return expectOne(r.db.ExecContext(ctx, `DELETE FROM submissions WHERE id = $1`, id))
}

// DeleteMany removes every id or none of them.
func (r *SubmissionRepo) DeleteMany(ctx context.Context, ids []int64) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, id := range ids {
			if err := expectOne(tx.ExecContext(ctx, `DELETE FROM submissions WHERE id = $1`, id)); err != nil {
				return err
			}
		}
		return nil
	})
}

// CountBy groups submissions by column, which must be one of form_type,
// status or priority. An empty formType counts every type.
func (r *SubmissionRepo) CountBy(ctx context.Context, column string, formType models.FormType) (map[string]int64, error) {
	switch column {
	case "form_type", "status", "priority":
	default:
		return nil, ErrInvalid
	}
	var w where
	if formType != "" {
		w.add("form_type = ?", string(formType))
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+column+`, COUNT(*) FROM submissions`+w.String()+` GROUP BY `+column, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int64{}
	for rows.Next() {
		var (
			key string
			n   int64
		)
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		out[key] = n
	}
	return out, rows.Err()
}

// CountBetween counts submissions with from <= submittedAt < to. A zero to
// leaves the range open.
func (r *SubmissionRepo) CountBetween(ctx context.Context, formType models.FormType, from, to time.Time) (int64, error) {
	var w where
	if formType != "" {
		w.add("form_type = ?", string(formType))
	}
	w.add("submitted_at >= ?", formatTime(from))
	if !to.IsZero() {
		w.add("submitted_at < ?", formatTime(to))
	}
	n, err := count(ctx, r.db, `SELECT COUNT(*) FROM submissions`+w.String(), w.args...)
	return int64(n), err
}

// SubmittedSince returns the submission times from since onwards, oldest
// first.
func (r *SubmissionRepo) SubmittedSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT submitted_at FROM submissions WHERE submitted_at >= $1 ORDER BY submitted_at`, formatTime(since))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []time.Time
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		t, err := parseTime(s)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// AdditionalData returns the extra fields of every submission matching
// formType and status.
func (r *SubmissionRepo) AdditionalData(ctx context.Context, formType models.FormType, status models.Status) ([]map[string]any, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT additional_data FROM submissions WHERE form_type = $1 AND status = $2`, string(formType), string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []map[string]any
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		m := map[string]any{}
		if err := decodeJSON(raw, &m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanSubmission(s scanner) (*models.Submission, error) {
	var (
		sub                           models.Submission
		formType, status, priority    string
		tags, attachments, additional string
		submittedAt, lastUpdated      string
		updatedAt                     sql.NullString
	)
	err := s.Scan(&sub.ID, &formType, &sub.SubmitterName, &sub.SubmitterEmail, &sub.SubmitterPhone, &sub.Message,
		&status, &sub.IsRead, &sub.AdminNotes, &priority, &tags, &sub.AssignedTo, &attachments, &additional,
		&submittedAt, &updatedAt, &lastUpdated)
	if err != nil {
		return nil, mapErr(err)
	}
	sub.FormType = models.FormType(formType)
	sub.Status = models.Status(status)
	sub.Priority = models.Priority(priority)
	if err := decodeJSON(tags, &sub.Tags); err != nil {
		return nil, err
	}
	if err := decodeJSON(attachments, &sub.Attachments); err != nil {
		return nil, err
	}
	if err := decodeJSON(additional, &sub.AdditionalData); err != nil {
		return nil, err
	}
	if len(sub.AdditionalData) == 0 {
		sub.AdditionalData = nil
	}
	if sub.SubmittedAt, err = parseTime(submittedAt); err != nil {
		return nil, err
	}
	if sub.LastUpdated, err = parseTime(lastUpdated); err != nil {
		return nil, err
	}
	if sub.UpdatedAt, err = parseNullTime(updatedAt); err != nil {
		return nil, err
	}
	return &sub, nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
