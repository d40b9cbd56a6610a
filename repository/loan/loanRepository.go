// repository/loan/loanRepository.go
package loanrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Manohar-mrtarns/bookmanagementsystem/model"
	"github.com/Manohar-mrtarns/bookmanagementsystem/util/database"
)

// ErrDuplicateActive maps the partial unique index on live
// (user_id, book_id) pairs.
var ErrDuplicateActive = errors.New("active loan already exists for this book")

type ListFilter struct {
	Status model.LoanStatus
	UserID int64
	Page   int
	Limit  int
}

type Repo interface {
	Insert(ctx context.Context, l *model.Loan) error
	ByID(ctx context.Context, id int64) (*model.Loan, error)
	HasActive(ctx context.Context, userID, bookID int64) (bool, error)

	// transitions; each is a single conditional update guarded on the
	// current status, so a lost race reports false instead of
	// double-applying
	MarkApproved(ctx context.Context, id int64) (bool, error)
	MarkRejected(ctx context.Context, id int64, remarks string) (bool, error)
	MarkIssued(ctx context.Context, id int64, issuedAt time.Time) (bool, error)
	MarkReturned(ctx context.Context, id int64, returnedAt time.Time, fine float64) (bool, error)
	RevertReturn(ctx context.Context, id int64) (bool, error)

	List(ctx context.Context, f ListFilter) ([]model.Loan, int64, error)
	Issued(ctx context.Context, userID int64) ([]model.Loan, error)
	Fines(ctx context.Context, userID int64) ([]model.Loan, float64, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

const loanCols = `
	l.id, l.book_id, l.user_id, l.status, l.due_date, l.issue_date,
	l.return_date, l.fine, l.remarks, b.title, u.name, l.created_at, l.updated_at`

const loanJoin = `
	FROM loans l
	JOIN books b ON b.id = l.book_id
	JOIN users u ON u.id = l.user_id`

func scanLoan(row pgx.Row) (*model.Loan, error) {
	l := &model.Loan{}
	err := row.Scan(
		&l.ID, &l.BookID, &l.UserID, &l.Status, &l.DueDate, &l.IssueDate,
		&l.ReturnDate, &l.Fine, &l.Remarks, &l.BookTitle, &l.UserName,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *repo) Insert(ctx context.Context, l *model.Loan) error {
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO loans (book_id, user_id, status, due_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		l.BookID, l.UserID, l.Status, l.DueDate,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return ErrDuplicateActive
	}
	return err
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Loan, error) {
	l, err := scanLoan(r.db.Pool.QueryRow(ctx,
		`SELECT `+loanCols+loanJoin+` WHERE l.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return l, err
}

func (r *repo) HasActive(ctx context.Context, userID, bookID int64) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM loans
			WHERE user_id = $1 AND book_id = $2
			  AND status IN ('PENDING', 'APPROVED', 'ISSUED')
		)`, userID, bookID).Scan(&exists)
	return exists, err
}

func (r *repo) transition(ctx context.Context, q string, args ...any) (bool, error) {
	ct, err := r.db.Pool.Exec(ctx, q, args...)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *repo) MarkApproved(ctx context.Context, id int64) (bool, error) {
	return r.transition(ctx, `
		UPDATE loans
		SET status = 'APPROVED', updated_at = now()
		WHERE id = $1 AND status = 'PENDING'`, id)
}

func (r *repo) MarkRejected(ctx context.Context, id int64, remarks string) (bool, error) {
	return r.transition(ctx, `
		UPDATE loans
		SET status = 'REJECTED', remarks = $2, updated_at = now()
		WHERE id = $1 AND status = 'PENDING'`, id, remarks)
}

func (r *repo) MarkIssued(ctx context.Context, id int64, issuedAt time.Time) (bool, error) {
	return r.transition(ctx, `
		UPDATE loans
		SET status = 'ISSUED', issue_date = $2, updated_at = now()
		WHERE id = $1 AND status = 'APPROVED'`, id, issuedAt)
}

func (r *repo) MarkReturned(ctx context.Context, id int64, returnedAt time.Time, fine float64) (bool, error) {
	return r.transition(ctx, `
		UPDATE loans
		SET status = 'RETURNED', return_date = $2, fine = $3, updated_at = now()
		WHERE id = $1 AND status = 'ISSUED'`, id, returnedAt, fine)
}

// RevertReturn compensates a return whose inventory release failed: the
// loan goes back to ISSUED with the return record wiped.
func (r *repo) RevertReturn(ctx context.Context, id int64) (bool, error) {
	return r.transition(ctx, `
		UPDATE loans
		SET status = 'ISSUED', return_date = NULL, fine = 0, updated_at = now()
		WHERE id = $1 AND status = 'RETURNED'`, id)
}

func (r *repo) List(ctx context.Context, f ListFilter) ([]model.Loan, int64, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 10
	}
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+loanCols+`, count(*) OVER() AS total`+loanJoin+`
		WHERE ($1 = '' OR l.status = $1)
		  AND ($2 = 0 OR l.user_id = $2)
		ORDER BY l.created_at DESC, l.id DESC
		LIMIT $3 OFFSET $4`,
		string(f.Status), f.UserID, f.Limit, (f.Page-1)*f.Limit,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.Loan
	var total int64
	for rows.Next() {
		l := model.Loan{}
		if err := rows.Scan(
			&l.ID, &l.BookID, &l.UserID, &l.Status, &l.DueDate, &l.IssueDate,
			&l.ReturnDate, &l.Fine, &l.Remarks, &l.BookTitle, &l.UserName,
			&l.CreatedAt, &l.UpdatedAt, &total,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, l)
	}
	return out, total, rows.Err()
}

// Issued lists loans currently out, soonest due first. userID = 0 means
// everyone (the librarian's overdue view).
func (r *repo) Issued(ctx context.Context, userID int64) ([]model.Loan, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+loanCols+loanJoin+`
		WHERE l.status = 'ISSUED' AND ($1 = 0 OR l.user_id = $1)
		ORDER BY l.due_date ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLoans(rows)
}

func (r *repo) Fines(ctx context.Context, userID int64) ([]model.Loan, float64, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+loanCols+loanJoin+`
		WHERE l.user_id = $1 AND l.fine > 0
		ORDER BY l.created_at DESC`, userID)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	loans, err := collectLoans(rows)
	if err != nil {
		return nil, 0, err
	}
	var total float64
	for _, l := range loans {
		total += l.Fine
	}
	return loans, total, nil
}

func collectLoans(rows pgx.Rows) ([]model.Loan, error) {
	var out []model.Loan
	for rows.Next() {
		l := model.Loan{}
		if err := rows.Scan(
			&l.ID, &l.BookID, &l.UserID, &l.Status, &l.DueDate, &l.IssueDate,
			&l.ReturnDate, &l.Fine, &l.Remarks, &l.BookTitle, &l.UserName,
			&l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
