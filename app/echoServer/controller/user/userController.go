package user

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	usersvc "github.com/Manohar-mrtarns/bookmanagementsystem/service/user"
)

type Controller struct {
	Svc usersvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

type UpdateProfileReq struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type ChangePasswordReq struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == "admin"
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	switch usersvc.Code(err) {
	case usersvc.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
	case usersvc.ErrBadInput:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
	case usersvc.ErrWrongOldPwd:
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "old password is incorrect"})
	case usersvc.ErrForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	case usersvc.ErrHasLoans:
		return c.JSON(http.StatusConflict, echo.Map{"message": "user has loan history, deactivate instead"})
	default:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}

// PUT /v1/users/profile/:id
func (h *Controller) UpdateProfile(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req UpdateProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	uid, _ := c.Get("user_id").(int64)
	role, _ := c.Get("role").(string)

	u, err := h.Svc.UpdateProfile(c.Request().Context(), uid, id, role, req.Name, req.Phone, req.Address)
	if err != nil {
		return h.fail(c, "profile update", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "profile updated", "user": u})
}

// POST /v1/users/change-password
func (h *Controller) ChangePassword(c echo.Context) error {
	var req ChangePasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}
	uid, _ := c.Get("user_id").(int64)

	if err := h.Svc.ChangePassword(c.Request().Context(), uid, req.OldPassword, req.NewPassword); err != nil {
		return h.fail(c, "change password", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password changed"})
}

// GET /v1/users  (admin; ?role=&page=&limit=)
func (h *Controller) List(c echo.Context) error {
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	rows, total, err := h.Svc.List(c.Request().Context(), c.QueryParam("role"), page, limit)
	if err != nil {
		return h.fail(c, "user list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows, "total": total})
}

// GET /v1/users/stats  (admin)
func (h *Controller) Stats(c echo.Context) error {
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	stats, err := h.Svc.DashboardStats(c.Request().Context())
	if err != nil {
		return h.fail(c, "user stats", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"stats": stats})
}

// GET /v1/users/:id  (admin)
func (h *Controller) Detail(c echo.Context) error {
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	u, err := h.Svc.ByID(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, "user detail", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}

func (h *Controller) setActive(c echo.Context, active bool, op string) error {
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	u, err := h.Svc.SetActive(c.Request().Context(), id, active)
	if err != nil {
		return h.fail(c, op, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": op, "user": u})
}

// POST /v1/users/activate/:id  (admin)
func (h *Controller) Activate(c echo.Context) error {
	return h.setActive(c, true, "user activated")
}

// POST /v1/users/deactivate/:id  (admin)
func (h *Controller) Deactivate(c echo.Context) error {
	return h.setActive(c, false, "user deactivated")
}

// DELETE /v1/users/:id  (admin)
func (h *Controller) Delete(c echo.Context) error {
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return h.fail(c, "user delete", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}
