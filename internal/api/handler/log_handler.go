package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/imoview/realty-crm/internal/api/metrics"
	"github.com/imoview/realty-crm/internal/core/domain"
	"github.com/imoview/realty-crm/internal/core/store"
)

type LogHandler struct {
	store *store.Store
}

func NewLogHandler(s *store.Store) *LogHandler {
	return &LogHandler{store: s}
}

func (h *LogHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.Logs())
}

func (h *LogHandler) Get(c echo.Context) error {
	entry, ok := h.store.Log(c.Param("id"))
	if !ok {
		return domain.ErrLogNotFound
	}
	return c.JSON(http.StatusOK, entry)
}

func (h *LogHandler) Restore(c echo.Context) error {
	if err := h.store.Restore(c.Param("id")); err != nil {
		metrics.MutationErrorsTotal.WithLabelValues("log").Inc()
		return err
	}
	metrics.MutationsTotal.WithLabelValues("log", "restore").Inc()
	return c.NoContent(http.StatusNoContent)
}
