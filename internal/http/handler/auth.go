package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/mlbahja/01-blog/internal/auth"
	apperrors "github.com/mlbahja/01-blog/pkg/errors"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type AuthHandler struct {
	authenticator Authenticator
	users         UserGetter
	logger        zerolog.Logger
}

func NewAuthHandler(authenticator Authenticator, users UserGetter, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authenticator: authenticator,
		users:         users,
		logger:        logger,
	}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	// Role is accepted for compatibility and ignored; new accounts are always USER.
	Role string `json:"role,omitempty"`
}

type LoginRequest struct {
	Identifier string `json:"identifier,omitempty"`
	Email      string `json:"email,omitempty"`
	Username   string `json:"username,omitempty"`
	Password   string `json:"password"`
}

// identifier picks the first of identifier, email, username that is set.
func (r LoginRequest) identifier() string {
	for _, v := range []string{r.Identifier, r.Email, r.Username} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

type LoginResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
	ExpiresIn int64     `json:"expires_in"`
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return err
	}

	if req.Role != "" {
		h.logger.Debug().Str("requested_role", req.Role).Msg("ignoring role on registration")
	}

	u, err := h.authenticator.Register(c.Request().Context(), auth.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, u.View())
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return err
	}

	identifier := req.identifier()
	if identifier == "" {
		return apperrors.Validation(msgIdentifierRequired)
	}
	if req.Password == "" {
		return apperrors.Validation(msgPasswordRequired)
	}

	res, err := h.authenticator.Login(c.Request().Context(), identifier, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, LoginResponse{
		Token:     res.Token.Raw,
		TokenType: tokenTypeBearer,
		ExpiresAt: res.Token.ExpiresAt,
		ExpiresIn: int64(res.ExpiresIn / time.Second),
		ID:        res.User.ID,
		Username:  res.User.Username,
		Role:      string(res.User.Role),
	})
}

func (h *AuthHandler) Me(c echo.Context) error {
	p, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}

	u, err := h.users.GetByID(c.Request().Context(), p.UserID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, u.View())
}

// Profile serves the public profile for GET /auth/users/:id.
func (h *AuthHandler) Profile(c echo.Context) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	u, err := h.users.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, u.Profile())
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	p, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}

	var req ChangePasswordRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return err
	}

	if err := h.authenticator.ChangePassword(c.Request().Context(), p, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
