package booksvc

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Manohar-mrtarns/bookmanagementsystem/model"
	bookrepo "github.com/Manohar-mrtarns/bookmanagementsystem/repository/book"
	"github.com/Manohar-mrtarns/bookmanagementsystem/repository/openlibrary"
)

type ErrCode string

const (
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrBadInput         ErrCode = "BAD_INPUT"
	ErrDuplicateISBN    ErrCode = "DUPLICATE_ISBN"
	ErrCategoryNotFound ErrCode = "CATEGORY_NOT_FOUND"
	ErrBadDelta         ErrCode = "BAD_DELTA"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Book = model.Book

// ListFilter = repository shape
type ListFilter = bookrepo.ListFilter

type Repo interface {
	Create(ctx context.Context, b *model.Book) error
	UpdateInfo(ctx context.Context, b *model.Book) error
	Delete(ctx context.Context, id int64) (bool, error)
	ByID(ctx context.Context, id int64) (*model.Book, error)
	List(ctx context.Context, f ListFilter) ([]model.Book, int64, error)
	Available(ctx context.Context) ([]model.Book, error)
	Restock(ctx context.Context, bookID int64, delta int64) (*model.Book, error)
}

type Categories interface {
	ByID(ctx context.Context, id int64) (*model.Category, error)
}

type CreateBookReq struct {
	Title       string
	Author      string
	Publication string
	CategoryID  int64
	ISBN        string
	Quantity    int64
	RackNo      string
	Image       string
	Description string
}

type Service interface {
	Create(ctx context.Context, req CreateBookReq) (*model.Book, error)
	Update(ctx context.Context, id int64, req CreateBookReq) (*model.Book, error)
	Delete(ctx context.Context, id int64) error
	Detail(ctx context.Context, id int64) (*model.Book, error)
	List(ctx context.Context, f ListFilter) ([]model.Book, int64, error)
	Available(ctx context.Context) ([]model.Book, error)
	Restock(ctx context.Context, id int64, delta int64) (*model.Book, error)
}

type service struct {
	r    Repo
	cats Categories
	ol   openlibrary.Repo
	log  *slog.Logger
}

func New(r Repo, cats Categories, ol openlibrary.Repo, log *slog.Logger) Service {
	return &service{r: r, cats: cats, ol: ol, log: log}
}

func (s *service) Create(ctx context.Context, req CreateBookReq) (*model.Book, error) {
	if req.Title == "" || req.Author == "" || req.Publication == "" ||
		req.ISBN == "" || req.RackNo == "" || req.Quantity < 0 {
		return nil, makeErr(ErrBadInput)
	}

	cat, err := s.cats.ByID(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, makeErr(ErrCategoryNotFound)
	}

	b := &model.Book{
		Title:       req.Title,
		Author:      req.Author,
		Publication: req.Publication,
		CategoryID:  req.CategoryID,
		ISBN:        req.ISBN,
		TotalCopies: req.Quantity,
		RackNo:      req.RackNo,
		Image:       req.Image,
		Description: req.Description,
	}
	s.enrich(ctx, b)

	if err := s.r.Create(ctx, b); err != nil {
		if errors.Is(err, bookrepo.ErrDuplicateISBN) {
			return nil, makeErr(ErrDuplicateISBN)
		}
		return nil, err
	}
	b.CategoryName = cat.Name
	return b, nil
}

// enrich fills a blank cover or description from Open Library.
// Best effort; the catalog entry is created either way.
func (s *service) enrich(ctx context.Context, b *model.Book) {
	if s.ol == nil || (b.Image != "" && b.Description != "") {
		return
	}
	meta, err := s.ol.LookupISBN(ctx, b.ISBN)
	if err != nil {
		s.log.Warn("openlibrary lookup failed", "isbn", b.ISBN, "err", err)
		return
	}
	if b.Image == "" {
		b.Image = meta.CoverURL
	}
	if b.Description == "" {
		b.Description = meta.Description
	}
}

func (s *service) Update(ctx context.Context, id int64, req CreateBookReq) (*model.Book, error) {
	cur, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, makeErr(ErrNotFound)
	}

	// blank fields keep their current value, matching the old partial
	// update behavior
	next := *cur
	if req.Title != "" {
		next.Title = req.Title
	}
	if req.Author != "" {
		next.Author = req.Author
	}
	if req.Publication != "" {
		next.Publication = req.Publication
	}
	if req.ISBN != "" {
		next.ISBN = req.ISBN
	}
	if req.RackNo != "" {
		next.RackNo = req.RackNo
	}
	if req.Image != "" {
		next.Image = req.Image
	}
	if req.Description != "" {
		next.Description = req.Description
	}
	if req.CategoryID != 0 {
		cat, err := s.cats.ByID(ctx, req.CategoryID)
		if err != nil {
			return nil, err
		}
		if cat == nil {
			return nil, makeErr(ErrCategoryNotFound)
		}
		next.CategoryID = req.CategoryID
	}

	if err := s.r.UpdateInfo(ctx, &next); err != nil {
		switch {
		case errors.Is(err, bookrepo.ErrDuplicateISBN):
			return nil, makeErr(ErrDuplicateISBN)
		case errors.Is(err, bookrepo.ErrNotFound):
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}

	// a quantity change shifts stock and availability by the same delta
	if req.Quantity > 0 && req.Quantity != cur.TotalCopies {
		return s.Restock(ctx, id, req.Quantity-cur.TotalCopies)
	}
	return s.r.ByID(ctx, id)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	ok, err := s.r.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return makeErr(ErrNotFound)
	}
	return nil
}

func (s *service) Detail(ctx context.Context, id int64) (*model.Book, error) {
	b, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, makeErr(ErrNotFound)
	}
	return b, nil
}

func (s *service) List(ctx context.Context, f ListFilter) ([]model.Book, int64, error) {
	return s.r.List(ctx, f)
}

func (s *service) Available(ctx context.Context) ([]model.Book, error) {
	return s.r.Available(ctx)
}

func (s *service) Restock(ctx context.Context, id int64, delta int64) (*model.Book, error) {
	if delta == 0 {
		return nil, makeErr(ErrBadInput)
	}
	b, err := s.r.Restock(ctx, id, delta)
	if err != nil {
		switch {
		case errors.Is(err, bookrepo.ErrNotFound):
			return nil, makeErr(ErrNotFound)
		case errors.Is(err, bookrepo.ErrBadDelta):
			return nil, makeErr(ErrBadDelta)
		}
		return nil, err
	}
	return b, nil
}
