package handler

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/imoview/realty-crm/internal/api/metrics"
	"github.com/imoview/realty-crm/internal/core/domain"
	"github.com/imoview/realty-crm/internal/core/store"
)

const tokenTTL = 24 * time.Hour

type AuthHandler struct {
	store     *store.Store
	jwtSecret string
}

func NewAuthHandler(s *store.Store, jwtSecret string) *AuthHandler {
	return &AuthHandler{store: s, jwtSecret: jwtSecret}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userView struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

type loginResponse struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

// Login authenticates against the store and issues a JWT.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.store.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		result := "invalid"
		if err == domain.ErrUserBlocked {
			result = "blocked"
		}
		metrics.LoginsTotal.WithLabelValues(result).Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues("ok").Inc()

	token, err := h.signToken(user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, loginResponse{
		Token: token,
		User:  userView{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role},
	})
}

// Logout clears the session and closes the realtime channels.
func (h *AuthHandler) Logout(c echo.Context) error {
	h.store.Logout()
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) signToken(user domain.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"name":    user.Name,
		"role":    string(user.Role),
		"exp":     time.Now().Add(tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(h.jwtSecret))
}
