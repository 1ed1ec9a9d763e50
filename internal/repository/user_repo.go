package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/thenextevent/eventdesk/internal/models"
)

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, email, password_hash, first_name, last_name, role, is_active, created_at, last_login_at`

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(email))
	return scanUser(row)
}

func (r *UserRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *UserRepo) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *UserRepo) CountActive(ctx context.Context) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM users WHERE is_active = $1`, true)
}

// Create stores user and returns its new id. Emails are unique
// case-insensitively; a duplicate yields ErrConflict.
func (r *UserRepo) Create(ctx context.Context, user *models.User) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash, first_name, last_name, role, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		strings.ToLower(user.Email), user.PasswordHash, user.FirstName, user.LastName,
		string(user.Role), user.IsActive, formatTime(user.CreatedAt),
	).Scan(&id)
	if err != nil {
		return 0, mapErr(err)
	}
	return id, nil
}

func (r *UserRepo) Update(ctx context.Context, id int64, upd models.UserUpdate) error {
	var w where
	sets := []string{}
	if upd.FirstName != nil {
		sets = append(sets, "first_name = "+w.next(*upd.FirstName))
	}
	if upd.LastName != nil {
		sets = append(sets, "last_name = "+w.next(*upd.LastName))
	}
	if upd.IsActive != nil {
		sets = append(sets, "is_active = "+w.next(*upd.IsActive))
	}
	if len(sets) == 0 {
		_, err := r.FindByID(ctx, id)
		return err
	}
	query := `UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = ` + w.next(id)
	return expectOne(r.db.ExecContext(ctx, query, w.args...))
}

func (r *UserRepo) SetPassword(ctx context.Context, id int64, hash string) error {
	return expectOne(r.db.ExecContext(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, hash, id))
}

func (r *UserRepo) TouchLogin(ctx context.Context, id int64, at time.Time) error {
	return expectOne(r.db.ExecContext(ctx, `UPDATE users SET last_login_at = $1 WHERE id = $2`, formatTime(at), id))
}

func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	return expectOne(r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id))
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*models.User, error) {
	var (
		u         models.User
		role      string
		createdAt string
		lastLogin sql.NullString
	)
	err := s.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &role, &u.IsActive, &createdAt, &lastLogin)
	if err != nil {
		return nil, mapErr(err)
	}
	u.Role = models.Role(role)
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if u.LastLoginAt, err = parseNullTime(lastLogin); err != nil {
		return nil, err
	}
	return &u, nil
}
