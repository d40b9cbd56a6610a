package userrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Manohar-mrtarns/bookmanagementsystem/model"
	"github.com/Manohar-mrtarns/bookmanagementsystem/util/database"
)

// ErrHasLoans maps the loans FK: loan rows are kept forever, so a user
// with any borrow history cannot be deleted.
var ErrHasLoans = errors.New("user has loan history")

type Stats struct {
	TotalUsers    int64 `json:"total_users"`
	TotalStudents int64 `json:"total_students"`
	TotalAdmins   int64 `json:"total_admins"`
	ActiveUsers   int64 `json:"active_users"`
}

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByEmail(ctx context.Context, email string) (*model.User, error)
	ByID(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context, role string, page, limit int) ([]model.User, int64, error)
	UpdateProfile(ctx context.Context, id int64, name, phone, address string) (bool, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) (bool, error)
	SetActive(ctx context.Context, id int64, active bool) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	DashboardStats(ctx context.Context) (*Stats, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

const userCols = `id, name, email, password_hash, role, phone, address, is_active, created_at`

func (r *repo) Create(ctx context.Context, u *model.User) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, role, phone, address)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, is_active, created_at`,
		u.Name, u.Email, u.PasswordHash, u.Role, u.Phone, u.Address,
	).Scan(&u.ID, &u.IsActive, &u.CreatedAt)
}

func (r *repo) scanOne(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&u.Phone, &u.Address, &u.IsActive, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.scanOne(r.db.Pool.QueryRow(ctx, `
		SELECT `+userCols+` FROM users WHERE lower(email) = lower($1)`, email))
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.User, error) {
	return r.scanOne(r.db.Pool.QueryRow(ctx, `
		SELECT `+userCols+` FROM users WHERE id = $1`, id))
}

func (r *repo) List(ctx context.Context, role string, page, limit int) ([]model.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+userCols+`, count(*) OVER() AS total
		FROM users
		WHERE ($1 = '' OR role = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`, role, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.User
	var total int64
	for rows.Next() {
		u := model.User{}
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
			&u.Phone, &u.Address, &u.IsActive, &u.CreatedAt, &total); err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

func (r *repo) UpdateProfile(ctx context.Context, id int64, name, phone, address string) (bool, error) {
	ct, err := r.db.Pool.Exec(ctx, `
		UPDATE users
		SET name = COALESCE(NULLIF($2, ''), name),
		    phone = COALESCE(NULLIF($3, ''), phone),
		    address = COALESCE(NULLIF($4, ''), address)
		WHERE id = $1`, id, name, phone, address)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *repo) UpdatePassword(ctx context.Context, id int64, passwordHash string) (bool, error) {
	ct, err := r.db.Pool.Exec(ctx,
		`UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *repo) SetActive(ctx context.Context, id int64, active bool) (bool, error) {
	ct, err := r.db.Pool.Exec(ctx,
		`UPDATE users SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *repo) Delete(ctx context.Context, id int64) (bool, error) {
	ct, err := r.db.Pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
		return false, ErrHasLoans
	}
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *repo) DashboardStats(ctx context.Context) (*Stats, error) {
	s := &Stats{}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT count(*),
		       count(*) FILTER (WHERE role = 'student'),
		       count(*) FILTER (WHERE role = 'admin'),
		       count(*) FILTER (WHERE is_active)
		FROM users`,
	).Scan(&s.TotalUsers, &s.TotalStudents, &s.TotalAdmins, &s.ActiveUsers)
	if err != nil {
		return nil, err
	}
	return s, nil
}
