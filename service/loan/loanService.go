package loan

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Manohar-mrtarns/bookmanagementsystem/model"
	bookrepo "github.com/Manohar-mrtarns/bookmanagementsystem/repository/book"
	loanrepo "github.com/Manohar-mrtarns/bookmanagementsystem/repository/loan"
)

// errors used by controllers

type ErrCode string

const (
	ErrNotFound          ErrCode = "NOT_FOUND"
	ErrBadInput          ErrCode = "BAD_INPUT"
	ErrOutOfStock        ErrCode = "OUT_OF_STOCK"
	ErrInvalidTransition ErrCode = "INVALID_TRANSITION"
	ErrDuplicateActive   ErrCode = "DUPLICATE_ACTIVE_LOAN"
	ErrConsistency       ErrCode = "CONSISTENCY_FAULT"
	ErrUnavailable       ErrCode = "UNAVAILABLE"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// ListFilter = repository shape
type ListFilter = loanrepo.ListFilter

// Repo is the loan store. Transition methods are conditional on the
// current status and report false when the guard no longer holds.
type Repo interface {
	Insert(ctx context.Context, l *model.Loan) error
	ByID(ctx context.Context, id int64) (*model.Loan, error)
	HasActive(ctx context.Context, userID, bookID int64) (bool, error)

	MarkApproved(ctx context.Context, id int64) (bool, error)
	MarkRejected(ctx context.Context, id int64, remarks string) (bool, error)
	MarkIssued(ctx context.Context, id int64, issuedAt time.Time) (bool, error)
	MarkReturned(ctx context.Context, id int64, returnedAt time.Time, fine float64) (bool, error)
	RevertReturn(ctx context.Context, id int64) (bool, error)

	List(ctx context.Context, f ListFilter) ([]model.Loan, int64, error)
	Issued(ctx context.Context, userID int64) ([]model.Loan, error)
	Fines(ctx context.Context, userID int64) ([]model.Loan, float64, error)
}

// Catalog is the slice of the book repository the loan lifecycle needs:
// existence lookups and the reserve/release ledger contract.
type Catalog interface {
	ByID(ctx context.Context, id int64) (*model.Book, error)
	ReserveCopy(ctx context.Context, bookID int64) error
	ReleaseCopy(ctx context.Context, bookID int64) error
}

type Service interface {
	// Request creates a PENDING loan. No copy is consumed yet; the due
	// date starts counting from the request, as the library rules say.
	Request(ctx context.Context, userID, bookID int64, daysNeeded int) (*model.Loan, error)

	// Approve reserves a copy and moves PENDING -> APPROVED.
	Approve(ctx context.Context, loanID int64) (*model.Loan, error)

	// Reject moves PENDING -> REJECTED with optional remarks.
	Reject(ctx context.Context, loanID int64, remarks string) (*model.Loan, error)

	// MarkIssued records the physical handover, APPROVED -> ISSUED.
	MarkIssued(ctx context.Context, loanID int64) (*model.Loan, error)

	// Return moves ISSUED -> RETURNED, settles the fine and releases the copy.
	Return(ctx context.Context, loanID int64) (*model.Loan, float64, error)

	List(ctx context.Context, f ListFilter) ([]model.Loan, int64, error)
	IssuedBooks(ctx context.Context) ([]model.Loan, error)
	UserIssued(ctx context.Context, userID int64) ([]model.Loan, error)
	UserFines(ctx context.Context, userID int64) ([]model.Loan, float64, error)
}

// ----- Service implementation -----

type service struct {
	r          Repo
	cat        Catalog
	finePerDay float64
	log        *slog.Logger
	now        func() time.Time
}

func New(r Repo, cat Catalog, finePerDay float64, log *slog.Logger) Service {
	return &service{r: r, cat: cat, finePerDay: finePerDay, log: log, now: time.Now}
}

func (s *service) Request(ctx context.Context, userID, bookID int64, daysNeeded int) (*model.Loan, error) {
	if daysNeeded <= 0 {
		return nil, makeErr(ErrBadInput)
	}

	book, err := s.cat.ByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, makeErr(ErrNotFound)
	}

	active, err := s.r.HasActive(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, makeErr(ErrDuplicateActive)
	}

	l := &model.Loan{
		BookID:  bookID,
		UserID:  userID,
		Status:  model.LoanPending,
		DueDate: s.now().UTC().AddDate(0, 0, daysNeeded),
	}
	if err := s.r.Insert(ctx, l); err != nil {
		// the partial unique index catches the race the HasActive
		// check cannot
		if errors.Is(err, loanrepo.ErrDuplicateActive) {
			return nil, makeErr(ErrDuplicateActive)
		}
		return nil, err
	}
	return l, nil
}

func (s *service) Approve(ctx context.Context, loanID int64) (*model.Loan, error) {
	l, err := s.r.ByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, makeErr(ErrNotFound)
	}
	if l.Status != model.LoanPending {
		return nil, makeErr(ErrInvalidTransition)
	}

	// Reserve before the status flips: a failed reservation leaves the
	// loan PENDING untouched.
	if err := s.reserve(ctx, l.BookID); err != nil {
		return nil, err
	}

	ok, err := s.mark(func() (bool, error) { return s.r.MarkApproved(ctx, loanID) })
	if err != nil || !ok {
		// compensating release: the reservation may not outlive a
		// failed transition
		if relErr := s.release(ctx, l.BookID); relErr != nil {
			s.log.Error("compensating release failed",
				"loan_id", loanID, "book_id", l.BookID, "err", relErr)
		}
		if err != nil {
			return nil, err
		}
		return nil, makeErr(ErrInvalidTransition)
	}
	return s.r.ByID(ctx, loanID)
}

func (s *service) Reject(ctx context.Context, loanID int64, remarks string) (*model.Loan, error) {
	l, err := s.r.ByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, makeErr(ErrNotFound)
	}
	ok, err := s.mark(func() (bool, error) { return s.r.MarkRejected(ctx, loanID, remarks) })
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, makeErr(ErrInvalidTransition)
	}
	return s.r.ByID(ctx, loanID)
}

func (s *service) MarkIssued(ctx context.Context, loanID int64) (*model.Loan, error) {
	l, err := s.r.ByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, makeErr(ErrNotFound)
	}
	ok, err := s.mark(func() (bool, error) { return s.r.MarkIssued(ctx, loanID, s.now().UTC()) })
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, makeErr(ErrInvalidTransition)
	}
	return s.r.ByID(ctx, loanID)
}

func (s *service) Return(ctx context.Context, loanID int64) (*model.Loan, float64, error) {
	l, err := s.r.ByID(ctx, loanID)
	if err != nil {
		return nil, 0, err
	}
	if l == nil {
		return nil, 0, makeErr(ErrNotFound)
	}
	if l.Status != model.LoanIssued {
		return nil, 0, makeErr(ErrInvalidTransition)
	}

	returnedAt := s.now().UTC()
	fine := lateFine(l.DueDate, returnedAt, s.finePerDay)

	ok, err := s.mark(func() (bool, error) { return s.r.MarkReturned(ctx, loanID, returnedAt, fine) })
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		// someone else completed the return first
		return nil, 0, makeErr(ErrInvalidTransition)
	}

	if err := s.release(ctx, l.BookID); err != nil {
		// A release that would exceed stock means the copy was never
		// reserved; the return itself stands. Anything else gets the
		// loan compensated back to ISSUED so the record and the ledger
		// never disagree.
		if Code(err) != ErrConsistency {
			if _, revErr := s.mark(func() (bool, error) { return s.r.RevertReturn(ctx, loanID) }); revErr != nil {
				s.log.Error("compensating return revert failed",
					"loan_id", loanID, "book_id", l.BookID, "err", revErr)
			}
		}
		return nil, 0, err
	}

	out, err := s.r.ByID(ctx, loanID)
	if err != nil {
		return nil, 0, err
	}
	return out, fine, nil
}

func (s *service) List(ctx context.Context, f ListFilter) ([]model.Loan, int64, error) {
	return s.r.List(ctx, f)
}

func (s *service) IssuedBooks(ctx context.Context) ([]model.Loan, error) {
	return s.r.Issued(ctx, 0)
}

func (s *service) UserIssued(ctx context.Context, userID int64) ([]model.Loan, error) {
	return s.r.Issued(ctx, userID)
}

func (s *service) UserFines(ctx context.Context, userID int64) ([]model.Loan, float64, error) {
	return s.r.Fines(ctx, userID)
}

// lateFine charges per started day past the due date.
func lateFine(due, returned time.Time, perDay float64) float64 {
	late := returned.Sub(due)
	if late <= 0 {
		return 0
	}
	days := math.Ceil(late.Hours() / 24)
	return days * perDay
}

// maxAttempts bounds the retry of transient storage conflicts on the
// ledger's conditional updates.
const maxAttempts = 3

// mark runs a loan transition write with the same bounded retry and
// transient classification the ledger calls get.
func (s *service) mark(op func() (bool, error)) (bool, error) {
	var ok bool
	err := withRetry(func() error {
		var e error
		ok, e = op()
		return e
	})
	if transient(err) {
		return false, makeErr(ErrUnavailable)
	}
	return ok, err
}

func (s *service) reserve(ctx context.Context, bookID int64) error {
	err := withRetry(func() error { return s.cat.ReserveCopy(ctx, bookID) })
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bookrepo.ErrNotFound):
		return makeErr(ErrNotFound)
	case errors.Is(err, bookrepo.ErrOutOfStock):
		return makeErr(ErrOutOfStock)
	case transient(err):
		return makeErr(ErrUnavailable)
	default:
		return err
	}
}

func (s *service) release(ctx context.Context, bookID int64) error {
	err := withRetry(func() error { return s.cat.ReleaseCopy(ctx, bookID) })
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bookrepo.ErrOverRelease):
		// a release that would push availability past stock is a caller
		// bug, never user error
		s.log.Error("inventory consistency fault: release past total copies",
			"book_id", bookID)
		return makeErr(ErrConsistency)
	case errors.Is(err, bookrepo.ErrNotFound):
		return makeErr(ErrNotFound)
	case transient(err):
		return makeErr(ErrUnavailable)
	default:
		return err
	}
}

func withRetry(op func() error) error {
	var err error
	for i := 0; i < maxAttempts; i++ {
		err = op()
		if err == nil || !transient(err) {
			return err
		}
	}
	return err
}

func transient(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
		return true
	}
	return false
}
