package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/imoview/realty-crm/internal/api/metrics"
	"github.com/imoview/realty-crm/internal/core/domain"
	"github.com/imoview/realty-crm/internal/core/store"
)

type UserHandler struct {
	store *store.Store
}

func NewUserHandler(s *store.Store) *UserHandler {
	return &UserHandler{store: s}
}

type userRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone"`
	Role     string `json:"role" validate:"required,oneof=admin manager broker captator assistant"`
	Password string `json:"password"`
}

type userUpdateRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

type blockRequest struct {
	Blocked bool `json:"blocked"`
}

func (h *UserHandler) List(c echo.Context) error {
	users := h.store.Users()
	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, userView{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role})
	}
	return c.JSON(http.StatusOK, views)
}

// Performance reports every active member's funnel against the configured
// team thresholds.
func (h *UserHandler) Performance(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.TeamPerformanceReport())
}

func (h *UserHandler) Create(c echo.Context) error {
	var req userRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	u, err := h.store.AddUser(store.UserInput{
		Name: req.Name, Email: req.Email, Phone: req.Phone,
		Role: domain.Role(req.Role), Password: req.Password,
	})
	if err != nil {
		metrics.MutationErrorsTotal.WithLabelValues("user").Inc()
		return err
	}
	metrics.MutationsTotal.WithLabelValues("user", "create").Inc()
	return c.JSON(http.StatusCreated, userView{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role})
}

func (h *UserHandler) Update(c echo.Context) error {
	var req userUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	u, err := h.store.UpdateUser(c.Param("id"), store.UserInput{
		Name: req.Name, Email: req.Email, Phone: req.Phone,
		Role: domain.Role(req.Role), Password: req.Password,
	})
	if err != nil {
		metrics.MutationErrorsTotal.WithLabelValues("user").Inc()
		return err
	}
	metrics.MutationsTotal.WithLabelValues("user", "update").Inc()
	return c.JSON(http.StatusOK, userView{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role})
}

func (h *UserHandler) SetBlocked(c echo.Context) error {
	var req blockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := h.store.SetUserBlocked(c.Param("id"), req.Blocked); err != nil {
		metrics.MutationErrorsTotal.WithLabelValues("user").Inc()
		return err
	}
	metrics.MutationsTotal.WithLabelValues("user", "update").Inc()
	return c.NoContent(http.StatusNoContent)
}

func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.store.DeleteUser(c.Param("id")); err != nil {
		metrics.MutationErrorsTotal.WithLabelValues("user").Inc()
		return err
	}
	metrics.MutationsTotal.WithLabelValues("user", "delete").Inc()
	return c.NoContent(http.StatusNoContent)
}
