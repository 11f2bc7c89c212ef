package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/imoview/realty-crm/internal/api/metrics"
	"github.com/imoview/realty-crm/internal/core/domain"
	"github.com/imoview/realty-crm/internal/core/store"
)

type PipelineHandler struct {
	store *store.Store
}

func NewPipelineHandler(s *store.Store) *PipelineHandler {
	return &PipelineHandler{store: s}
}

type pipelineRequest struct {
	Name   string         `json:"name" validate:"required"`
	Stages []stagePayload `json:"stages" validate:"required,min=1,dive"`
}

type stagePayload struct {
	ID    string `json:"id"`
	Name  string `json:"name" validate:"required"`
	Color string `json:"color"`
}

func (p pipelineRequest) stages() []domain.Stage {
	out := make([]domain.Stage, 0, len(p.Stages))
	for _, st := range p.Stages {
		out = append(out, domain.Stage{ID: st.ID, Name: st.Name, Color: st.Color})
	}
	return out
}

func (h *PipelineHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.Pipelines())
}

func (h *PipelineHandler) Get(c echo.Context) error {
	pl, ok := h.store.Pipeline(c.Param("id"))
	if !ok {
		return domain.ErrPipelineNotFound
	}
	return c.JSON(http.StatusOK, pl)
}

func (h *PipelineHandler) Leads(c echo.Context) error {
	if _, ok := h.store.Pipeline(c.Param("id")); !ok {
		return domain.ErrPipelineNotFound
	}
	return c.JSON(http.StatusOK, h.store.PipelineLeads(c.Param("id")))
}

func (h *PipelineHandler) Create(c echo.Context) error {
	var req pipelineRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	pl, err := h.store.AddPipeline(req.Name, req.stages())
	if err != nil {
		metrics.MutationErrorsTotal.WithLabelValues("pipeline").Inc()
		return err
	}
	metrics.MutationsTotal.WithLabelValues("pipeline", "create").Inc()
	return c.JSON(http.StatusCreated, pl)
}

func (h *PipelineHandler) Update(c echo.Context) error {
	var req pipelineRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	pl, err := h.store.UpdatePipeline(c.Param("id"), req.Name, req.stages())
	if err != nil {
		metrics.MutationErrorsTotal.WithLabelValues("pipeline").Inc()
		return err
	}
	metrics.MutationsTotal.WithLabelValues("pipeline", "update").Inc()
	return c.JSON(http.StatusOK, pl)
}

func (h *PipelineHandler) Delete(c echo.Context) error {
	if err := h.store.DeletePipeline(c.Param("id")); err != nil {
		metrics.MutationErrorsTotal.WithLabelValues("pipeline").Inc()
		return err
	}
	metrics.MutationsTotal.WithLabelValues("pipeline", "delete").Inc()
	return c.NoContent(http.StatusNoContent)
}

func (h *PipelineHandler) SetDefault(c echo.Context) error {
	if err := h.store.SetDefaultPipeline(c.Param("id")); err != nil {
		metrics.MutationErrorsTotal.WithLabelValues("pipeline").Inc()
		return err
	}
	metrics.MutationsTotal.WithLabelValues("pipeline", "update").Inc()
	return c.NoContent(http.StatusNoContent)
}
