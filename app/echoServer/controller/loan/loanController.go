package loan

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Manohar-mrtarns/bookmanagementsystem/model"
	ls "github.com/Manohar-mrtarns/bookmanagementsystem/service/loan"
)

type Controller struct {
	Svc ls.Service
	V   *validator.Validate
	Log *slog.Logger
}

func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == "admin"
}

func pathID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	switch ls.Code(err) {
	case ls.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
	case ls.ErrBadInput:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
	case ls.ErrOutOfStock:
		return c.JSON(http.StatusConflict, echo.Map{"message": "book is no longer available"})
	case ls.ErrInvalidTransition:
		return c.JSON(http.StatusConflict, echo.Map{"message": "loan is not in the required state"})
	case ls.ErrDuplicateActive:
		return c.JSON(http.StatusConflict, echo.Map{"message": "you already have a request for this book"})
	case ls.ErrUnavailable:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"message": "temporarily unavailable, try again"})
	default:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}

// POST /v1/loans/request
func (h *Controller) Request(c echo.Context) error {
	var req RequestLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	uid, _ := c.Get("user_id").(int64)

	out, err := h.Svc.Request(c.Request().Context(), uid, req.BookID, req.DaysNeeded)
	if err != nil {
		return h.fail(c, "loan request", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "book request submitted",
		"loan":    out,
	})
}

// POST /v1/loans/:id/approve  (admin)
func (h *Controller) Approve(c echo.Context) error {
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	out, err := h.Svc.Approve(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, "loan approve", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "request approved", "loan": out})
}

// POST /v1/loans/:id/reject  (admin)
func (h *Controller) Reject(c echo.Context) error {
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req RejectLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	out, err := h.Svc.Reject(c.Request().Context(), id, req.Remarks)
	if err != nil {
		return h.fail(c, "loan reject", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "request rejected", "loan": out})
}

// POST /v1/loans/:id/issue  (admin)
func (h *Controller) MarkIssued(c echo.Context) error {
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	out, err := h.Svc.MarkIssued(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, "loan issue", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "book marked as issued", "loan": out})
}

// POST /v1/loans/:id/return
func (h *Controller) Return(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	out, fine, err := h.Svc.Return(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, "loan return", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "book returned",
		"loan":    out,
		"fine":    fine,
	})
}

// GET /v1/loans  (admin; ?status=&user_id=&page=&limit=)
func (h *Controller) List(c echo.Context) error {
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	f := ls.ListFilter{
		Status: model.LoanStatus(c.QueryParam("status")),
	}
	f.UserID, _ = strconv.ParseInt(c.QueryParam("user_id"), 10, 64)
	f.Page, _ = strconv.Atoi(c.QueryParam("page"))
	f.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	rows, total, err := h.Svc.List(c.Request().Context(), f)
	if err != nil {
		return h.fail(c, "loan list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows, "total": total})
}

// GET /v1/loans/my-requests
func (h *Controller) MyRequests(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	f := ls.ListFilter{UserID: uid}
	f.Page, _ = strconv.Atoi(c.QueryParam("page"))
	f.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	rows, total, err := h.Svc.List(c.Request().Context(), f)
	if err != nil {
		return h.fail(c, "loan my-requests", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows, "total": total})
}

// GET /v1/loans/issued  (admin; overdue reporting)
func (h *Controller) IssuedBooks(c echo.Context) error {
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	rows, err := h.Svc.IssuedBooks(c.Request().Context())
	if err != nil {
		return h.fail(c, "loan issued", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/loans/my-issued
func (h *Controller) MyIssued(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	rows, err := h.Svc.UserIssued(c.Request().Context(), uid)
	if err != nil {
		return h.fail(c, "loan my-issued", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/loans/my-fines
func (h *Controller) MyFines(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	rows, total, err := h.Svc.UserFines(c.Request().Context(), uid)
	if err != nil {
		return h.fail(c, "loan my-fines", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows, "total_fine": total})
}
