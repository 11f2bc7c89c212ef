package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/imoview/realty-crm/internal/api/metrics"
	"github.com/imoview/realty-crm/internal/core/domain"
	"github.com/imoview/realty-crm/internal/core/store"
)

type SettingsHandler struct {
	store *store.Store
}

func NewSettingsHandler(s *store.Store) *SettingsHandler {
	return &SettingsHandler{store: s}
}

func (h *SettingsHandler) Get(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.Settings())
}

func (h *SettingsHandler) Update(c echo.Context) error {
	var req domain.SystemSettings
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	cfg, err := h.store.UpdateSettings(req)
	if err != nil {
		metrics.MutationErrorsTotal.WithLabelValues("settings").Inc()
		return err
	}
	metrics.MutationsTotal.WithLabelValues("settings", "update").Inc()
	return c.JSON(http.StatusOK, cfg)
}
