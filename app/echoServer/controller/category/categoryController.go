package category

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	categorysvc "github.com/Manohar-mrtarns/bookmanagementsystem/service/category"
)

type Controller struct {
	Svc categorysvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

type upsertReq struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == "admin"
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	switch categorysvc.Code(err) {
	case categorysvc.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "category not found"})
	case categorysvc.ErrDuplicate:
		return c.JSON(http.StatusConflict, echo.Map{"message": "category already exists"})
	case categorysvc.ErrBadInput:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
	default:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}

// POST /v1/categories  (admin)
func (h *Controller) Create(c echo.Context) error {
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	var req upsertReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}
	out, err := h.Svc.Create(c.Request().Context(), req.Name, req.Description)
	if err != nil {
		return h.fail(c, "category create", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "category created", "category": out})
}

// PUT /v1/categories/:id  (admin)
func (h *Controller) Update(c echo.Context) error {
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req upsertReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	out, err := h.Svc.Update(c.Request().Context(), id, req.Name, req.Description)
	if err != nil {
		return h.fail(c, "category update", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "category updated", "category": out})
}

// DELETE /v1/categories/:id  (admin)
func (h *Controller) Delete(c echo.Context) error {
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return h.fail(c, "category delete", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "category deleted"})
}

// GET /v1/categories
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.List(c.Request().Context())
	if err != nil {
		return h.fail(c, "category list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/categories/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	out, err := h.Svc.Detail(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, "category detail", err)
	}
	return c.JSON(http.StatusOK, out)
}
