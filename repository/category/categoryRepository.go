package categoryrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Manohar-mrtarns/bookmanagementsystem/model"
	"github.com/Manohar-mrtarns/bookmanagementsystem/util/database"
)

var ErrDuplicateName = errors.New("category name already exists")

type Repo interface {
	Create(ctx context.Context, c *model.Category) error
	Update(ctx context.Context, c *model.Category) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	ByID(ctx context.Context, id int64) (*model.Category, error)
	List(ctx context.Context) ([]model.Category, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

func (r *repo) Create(ctx context.Context, c *model.Category) error {
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO categories (name, description)
		VALUES ($1,$2)
		RETURNING id, created_at`,
		c.Name, c.Description,
	).Scan(&c.ID, &c.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return ErrDuplicateName
	}
	return err
}

func (r *repo) Update(ctx context.Context, c *model.Category) (bool, error) {
	ct, err := r.db.Pool.Exec(ctx, `
		UPDATE categories
		SET name = $2, description = $3
		WHERE id = $1`, c.ID, c.Name, c.Description)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return false, ErrDuplicateName
	}
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *repo) Delete(ctx context.Context, id int64) (bool, error) {
	ct, err := r.db.Pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Category, error) {
	c := &model.Category{}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, name, description, created_at
		FROM categories WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *repo) List(ctx context.Context) ([]model.Category, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, description, created_at
		FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Category
	for rows.Next() {
		c := model.Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
