package categorysvc

import (
	"context"
	"errors"

	"github.com/Manohar-mrtarns/bookmanagementsystem/model"
	categoryrepo "github.com/Manohar-mrtarns/bookmanagementsystem/repository/category"
)

type ErrCode string

const (
	ErrNotFound  ErrCode = "NOT_FOUND"
	ErrBadInput  ErrCode = "BAD_INPUT"
	ErrDuplicate ErrCode = "DUPLICATE_NAME"
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

type Repo interface {
	Create(ctx context.Context, c *model.Category) error
	Update(ctx context.Context, c *model.Category) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	ByID(ctx context.Context, id int64) (*model.Category, error)
	List(ctx context.Context) ([]model.Category, error)
}

type Service interface {
	Create(ctx context.Context, name, description string) (*model.Category, error)
	Update(ctx context.Context, id int64, name, description string) (*model.Category, error)
	Delete(ctx context.Context, id int64) error
	Detail(ctx context.Context, id int64) (*model.Category, error)
	List(ctx context.Context) ([]model.Category, error)
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r} }

func (s *service) Create(ctx context.Context, name, description string) (*model.Category, error) {
	if name == "" {
		return nil, makeErr(ErrBadInput)
	}
	c := &model.Category{Name: name, Description: description}
	if err := s.r.Create(ctx, c); err != nil {
		if errors.Is(err, categoryrepo.ErrDuplicateName) {
			return nil, makeErr(ErrDuplicate)
		}
		return nil, err
	}
	return c, nil
}

func (s *service) Update(ctx context.Context, id int64, name, description string) (*model.Category, error) {
	cur, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, makeErr(ErrNotFound)
	}
	if name != "" {
		cur.Name = name
	}
	if description != "" {
		cur.Description = description
	}
	ok, err := s.r.Update(ctx, cur)
	if err != nil {
		if errors.Is(err, categoryrepo.ErrDuplicateName) {
			return nil, makeErr(ErrDuplicate)
		}
		return nil, err
	}
	if !ok {
		return nil, makeErr(ErrNotFound)
	}
	return cur, nil
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

func (s *service) Detail(ctx context.Context, id int64) (*model.Category, error) {
	c, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, makeErr(ErrNotFound)
	}
	return c, nil
}

func (s *service) List(ctx context.Context) ([]model.Category, error) {
	return s.r.List(ctx)
}
