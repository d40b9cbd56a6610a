package book

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	booksvc "github.com/Manohar-mrtarns/bookmanagementsystem/service/book"
)

type Controller struct {
	Svc booksvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == "admin"
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	switch booksvc.Code(err) {
	case booksvc.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
	case booksvc.ErrCategoryNotFound:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "category not found"})
	case booksvc.ErrDuplicateISBN:
		return c.JSON(http.StatusConflict, echo.Map{"message": "book with this ISBN already exists"})
	case booksvc.ErrBadInput:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
	case booksvc.ErrBadDelta:
		return c.JSON(http.StatusConflict, echo.Map{"message": "delta would make copies negative"})
	default:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}

func toSvcReq(r CreateBookReq) booksvc.CreateBookReq {
	return booksvc.CreateBookReq{
		Title:       r.Title,
		Author:      r.Author,
		Publication: r.Publication,
		CategoryID:  r.CategoryID,
		ISBN:        r.ISBN,
		Quantity:    r.Quantity,
		RackNo:      r.RackNo,
		Image:       r.Image,
		Description: r.Description,
	}
}

// POST /v1/books  (admin)
func (h *Controller) Create(c echo.Context) error {
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	var req CreateBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	b, err := h.Svc.Create(c.Request().Context(), toSvcReq(req))
	if err != nil {
		return h.fail(c, "book create", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "book created", "book": b})
}

// PUT /v1/books/:id  (admin)
func (h *Controller) Update(c echo.Context) error {
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req UpdateBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	b, err := h.Svc.Update(c.Request().Context(), id, booksvc.CreateBookReq{
		Title:       req.Title,
		Author:      req.Author,
		Publication: req.Publication,
		CategoryID:  req.CategoryID,
		ISBN:        req.ISBN,
		Quantity:    req.Quantity,
		RackNo:      req.RackNo,
		Image:       req.Image,
		Description: req.Description,
	})
	if err != nil {
		return h.fail(c, "book update", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "book updated", "book": b})
}

// DELETE /v1/books/:id  (admin)
func (h *Controller) Delete(c echo.Context) error {
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return h.fail(c, "book delete", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "book deleted"})
}

// POST /v1/books/:id/copies  (admin)
func (h *Controller) Restock(c echo.Context) error {
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req RestockReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": echo.Map{"delta": "required, non-zero"}})
	}
	b, err := h.Svc.Restock(c.Request().Context(), id, req.Delta)
	if err != nil {
		return h.fail(c, "book restock", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "stock adjusted", "book": b})
}

// GET /v1/books
func (h *Controller) List(c echo.Context) error {
	f := booksvc.ListFilter{
		Search: c.QueryParam("search"),
		Author: c.QueryParam("author"),
	}
	f.CategoryID, _ = strconv.ParseInt(c.QueryParam("category_id"), 10, 64)
	f.Page, _ = strconv.Atoi(c.QueryParam("page"))
	f.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	rows, total, err := h.Svc.List(c.Request().Context(), f)
	if err != nil {
		return h.fail(c, "book list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows, "total": total})
}

// GET /v1/books/available
func (h *Controller) Available(c echo.Context) error {
	rows, err := h.Svc.Available(c.Request().Context())
	if err != nil {
		return h.fail(c, "book available", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/books/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	b, err := h.Svc.Detail(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, "book detail", err)
	}
	return c.JSON(http.StatusOK, b)
}
