package usersvc

import (
	"context"
	"errors"

	"github.com/Manohar-mrtarns/bookmanagementsystem/model"
	userrepo "github.com/Manohar-mrtarns/bookmanagementsystem/repository/user"
	"github.com/Manohar-mrtarns/bookmanagementsystem/util/hash"
)

type ErrCode string

const (
	ErrNotFound    ErrCode = "NOT_FOUND"
	ErrBadInput    ErrCode = "BAD_INPUT"
	ErrWrongOldPwd ErrCode = "WRONG_OLD_PASSWORD"
	ErrForbidden   ErrCode = "FORBIDDEN"
	ErrHasLoans    ErrCode = "HAS_LOAN_HISTORY"
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

type Stats = userrepo.Stats

type Repo interface {
	ByID(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context, role string, page, limit int) ([]model.User, int64, error)
	UpdateProfile(ctx context.Context, id int64, name, phone, address string) (bool, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) (bool, error)
	SetActive(ctx context.Context, id int64, active bool) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	DashboardStats(ctx context.Context) (*Stats, error)
}

type Service interface {
	ByID(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context, role string, page, limit int) ([]model.User, int64, error)

	// UpdateProfile lets a user edit their own record; admins may edit anyone.
	UpdateProfile(ctx context.Context, callerID, targetID int64, callerRole, name, phone, address string) (*model.User, error)
	ChangePassword(ctx context.Context, userID int64, oldPwd, newPwd string) error
	SetActive(ctx context.Context, id int64, active bool) (*model.User, error)
	Delete(ctx context.Context, id int64) error
	DashboardStats(ctx context.Context) (*Stats, error)
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r} }

func (s *service) ByID(ctx context.Context, id int64) (*model.User, error) {
	u, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, makeErr(ErrNotFound)
	}
	return u, nil
}

func (s *service) List(ctx context.Context, role string, page, limit int) ([]model.User, int64, error) {
	return s.r.List(ctx, role, page, limit)
}

func (s *service) UpdateProfile(ctx context.Context, callerID, targetID int64, callerRole, name, phone, address string) (*model.User, error) {
	if callerID != targetID && callerRole != "admin" {
		return nil, makeErr(ErrForbidden)
	}
	ok, err := s.r.UpdateProfile(ctx, targetID, name, phone, address)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, makeErr(ErrNotFound)
	}
	return s.ByID(ctx, targetID)
}

func (s *service) ChangePassword(ctx context.Context, userID int64, oldPwd, newPwd string) error {
	if oldPwd == "" || len(newPwd) < 6 {
		return makeErr(ErrBadInput)
	}
	u, err := s.r.ByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return makeErr(ErrNotFound)
	}
	if !hash.Check(u.PasswordHash, oldPwd) {
		return makeErr(ErrWrongOldPwd)
	}
	hashed, err := hash.HashPassword(newPwd)
	if err != nil {
		return err
	}
	ok, err := s.r.UpdatePassword(ctx, userID, hashed)
	if err != nil {
		return err
	}
	if !ok {
		return makeErr(ErrNotFound)
	}
	return nil
}

func (s *service) SetActive(ctx context.Context, id int64, active bool) (*model.User, error) {
	ok, err := s.r.SetActive(ctx, id, active)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, makeErr(ErrNotFound)
	}
	return s.ByID(ctx, id)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	ok, err := s.r.Delete(ctx, id)
	if errors.Is(err, userrepo.ErrHasLoans) {
		return makeErr(ErrHasLoans)
	}
	if err != nil {
		return err
	}
	if !ok {
		return makeErr(ErrNotFound)
	}
	return nil
}

func (s *service) DashboardStats(ctx context.Context) (*Stats, error) {
	return s.r.DashboardStats(ctx)
}
