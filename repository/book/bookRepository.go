package bookrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Manohar-mrtarns/bookmanagementsystem/model"
	"github.com/Manohar-mrtarns/bookmanagementsystem/util/database"
)

var (
	ErrNotFound      = errors.New("book not found")
	ErrOutOfStock    = errors.New("no available copies")
	ErrOverRelease   = errors.New("release would exceed total copies")
	ErrBadDelta      = errors.New("restock delta would make copies negative")
	ErrDuplicateISBN = errors.New("isbn already exists")
)

type ListFilter struct {
	Search     string
	Author     string
	CategoryID int64
	Page       int
	Limit      int
}

type Repo interface {
	Create(ctx context.Context, b *model.Book) error
	UpdateInfo(ctx context.Context, b *model.Book) error
	Delete(ctx context.Context, id int64) (bool, error)
	ByID(ctx context.Context, id int64) (*model.Book, error)
	List(ctx context.Context, f ListFilter) ([]model.Book, int64, error)
	Available(ctx context.Context) ([]model.Book, error)

	// inventory ledger
	ReserveCopy(ctx context.Context, bookID int64) error
	ReleaseCopy(ctx context.Context, bookID int64) error
	Restock(ctx context.Context, bookID int64, delta int64) (*model.Book, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

const bookCols = `
	b.id, b.title, b.author, b.publication, b.category_id, c.name,
	b.isbn, b.total_copies, b.available_copies, b.rack_no, b.image,
	b.description, b.created_at`

func scanBook(row pgx.Row, b *model.Book) error {
	return row.Scan(
		&b.ID, &b.Title, &b.Author, &b.Publication, &b.CategoryID, &b.CategoryName,
		&b.ISBN, &b.TotalCopies, &b.AvailableCopies, &b.RackNo, &b.Image,
		&b.Description, &b.CreatedAt,
	)
}

func (r *repo) Create(ctx context.Context, b *model.Book) error {
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO books (title, author, publication, category_id, isbn,
		                   total_copies, available_copies, rack_no, image, description)
		VALUES ($1,$2,$3,$4,$5,$6,$6,$7,$8,$9)
		RETURNING id, created_at`,
		b.Title, b.Author, b.Publication, b.CategoryID, b.ISBN,
		b.TotalCopies, b.RackNo, b.Image, b.Description,
	).Scan(&b.ID, &b.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateISBN
	}
	if err != nil {
		return err
	}
	b.AvailableCopies = b.TotalCopies
	return nil
}

// UpdateInfo rewrites the catalog metadata only. Copy counts move
// exclusively through Restock / ReserveCopy / ReleaseCopy.
func (r *repo) UpdateInfo(ctx context.Context, b *model.Book) error {
	ct, err := r.db.Pool.Exec(ctx, `
		UPDATE books
		SET title = $2, author = $3, publication = $4, category_id = $5,
		    isbn = $6, rack_no = $7, image = $8, description = $9
		WHERE id = $1`,
		b.ID, b.Title, b.Author, b.Publication, b.CategoryID,
		b.ISBN, b.RackNo, b.Image, b.Description,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateISBN
	}
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, id int64) (bool, error) {
	ct, err := r.db.Pool.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Book, error) {
	b := &model.Book{}
	err := scanBook(r.db.Pool.QueryRow(ctx, `
		SELECT `+bookCols+`
		FROM books b JOIN categories c ON c.id = b.category_id
		WHERE b.id = $1`, id), b)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *repo) List(ctx context.Context, f ListFilter) ([]model.Book, int64, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 10
	}
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+bookCols+`, count(*) OVER() AS total
		FROM books b JOIN categories c ON c.id = b.category_id
		WHERE ($1 = '' OR b.title ILIKE '%'||$1||'%' OR b.isbn ILIKE '%'||$1||'%')
		  AND ($2 = '' OR b.author ILIKE '%'||$2||'%')
		  AND ($3 = 0 OR b.category_id = $3)
		ORDER BY b.created_at DESC, b.id DESC
		LIMIT $4 OFFSET $5`,
		f.Search, f.Author, f.CategoryID, f.Limit, (f.Page-1)*f.Limit,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.Book
	var total int64
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(
			&b.ID, &b.Title, &b.Author, &b.Publication, &b.CategoryID, &b.CategoryName,
			&b.ISBN, &b.TotalCopies, &b.AvailableCopies, &b.RackNo, &b.Image,
			&b.Description, &b.CreatedAt, &total,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

func (r *repo) Available(ctx context.Context) ([]model.Book, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+bookCols+`
		FROM books b JOIN categories c ON c.id = b.category_id
		WHERE b.available_copies > 0
		ORDER BY b.created_at DESC, b.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(
			&b.ID, &b.Title, &b.Author, &b.Publication, &b.CategoryID, &b.CategoryName,
			&b.ISBN, &b.TotalCopies, &b.AvailableCopies, &b.RackNo, &b.Image,
			&b.Description, &b.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ReserveCopy earmarks one copy for a loan. The guard in the WHERE clause
// makes the decrement a single compare-and-update: two racers for the last
// copy get exactly one success.
func (r *repo) ReserveCopy(ctx context.Context, bookID int64) error {
	ct, err := r.db.Pool.Exec(ctx, `
		UPDATE books
		SET available_copies = available_copies - 1
		WHERE id = $1 AND available_copies > 0`, bookID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return r.missingOr(ctx, bookID, ErrOutOfStock)
	}
	return nil
}

// ReleaseCopy puts a copy back. Going above total_copies means a caller
// released twice; that is reported, not clamped away.
func (r *repo) ReleaseCopy(ctx context.Context, bookID int64) error {
	ct, err := r.db.Pool.Exec(ctx, `
		UPDATE books
		SET available_copies = available_copies + 1
		WHERE id = $1 AND available_copies < total_copies`, bookID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return r.missingOr(ctx, bookID, ErrOverRelease)
	}
	return nil
}

// Restock shifts stock and availability together. Negative delta writes
// copies off but may not push either count below zero.
func (r *repo) Restock(ctx context.Context, bookID int64, delta int64) (*model.Book, error) {
	b := &model.Book{}
	err := r.db.Pool.QueryRow(ctx, `
		UPDATE books
		SET total_copies = total_copies + $2,
		    available_copies = available_copies + $2
		WHERE id = $1
		  AND total_copies + $2 >= 0
		  AND available_copies + $2 >= 0
		RETURNING id, title, author, publication, category_id, isbn,
		          total_copies, available_copies, rack_no, image, description, created_at`,
		bookID, delta,
	).Scan(
		&b.ID, &b.Title, &b.Author, &b.Publication, &b.CategoryID, &b.ISBN,
		&b.TotalCopies, &b.AvailableCopies, &b.RackNo, &b.Image, &b.Description, &b.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.missingOr(ctx, bookID, ErrBadDelta)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *repo) missingOr(ctx context.Context, bookID int64, fallback error) error {
	var exists bool
	if err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM books WHERE id = $1)`, bookID,
	).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return fallback
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
