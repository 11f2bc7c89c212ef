package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/imoview/realty-crm/internal/core/store"
)

type NotificationHandler struct {
	store *store.Store
}

func NewNotificationHandler(s *store.Store) *NotificationHandler {
	return &NotificationHandler{store: s}
}

func (h *NotificationHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.Notifications())
}

func (h *NotificationHandler) Dismiss(c echo.Context) error {
	h.store.Dismiss(c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}
