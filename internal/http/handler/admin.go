package handler

import (
	"context"
	"net/http"

	"github.com/mlbahja/01-blog/internal/auth"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type AdminHandler struct {
	admin UserAdministrator
}

func NewAdminHandler(admin UserAdministrator) *AdminHandler {
	return &AdminHandler{admin: admin}
}

type ChangeRoleRequest struct {
	Role string `json:"role"`
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.admin.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

func (h *AdminHandler) BanUser(c echo.Context) error {
	return h.moderate(c, h.admin.Ban)
}

func (h *AdminHandler) UnbanUser(c echo.Context) error {
	return h.moderate(c, h.admin.Unban)
}

func (h *AdminHandler) ChangeRole(c echo.Context) error {
	actor, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	var req ChangeRoleRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.admin.ChangeRole(ctx, actor, id, req.Role); err != nil {
		return err
	}
	return h.respondUser(c, id)
}

func (h *AdminHandler) DeleteUser(c echo.Context) error {
	actor, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	if err := h.admin.Delete(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return respondMessage(c, http.StatusOK, "user deleted")
}

// DeleteAccount serves DELETE /auth/users/:id for the account owner or an administrator.
func (h *AdminHandler) DeleteAccount(c echo.Context) error {
	actor, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	if err := h.admin.DeleteAccount(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) moderate(c echo.Context, action func(ctx context.Context, actor auth.Principal, id uuid.UUID) error) error {
	actor, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	if err := action(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return h.respondUser(c, id)
}

func (h *AdminHandler) respondUser(c echo.Context, id uuid.UUID) error {
	u, err := h.admin.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u.View())
}
