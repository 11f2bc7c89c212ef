package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/imoview/realty-crm/internal/api/metrics"
	"github.com/imoview/realty-crm/internal/core/domain"
	"github.com/imoview/realty-crm/internal/core/store"
)

type ClientHandler struct {
	store *store.Store
}

func NewClientHandler(s *store.Store) *ClientHandler {
	return &ClientHandler{store: s}
}

type clientRequest struct {
	Name   string `json:"name" validate:"required"`
	Phone  string `json:"phone" validate:"required,brphone"`
	Email  string `json:"email"`
	Source string `json:"source"`
	Notes  string `json:"notes"`
}

type visitRequest struct {
	PropertyID string    `json:"property_id" validate:"required"`
	Date       time.Time `json:"date" validate:"required"`
	Notes      string    `json:"notes"`
}

type visitUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=scheduled completed cancelled"`
	Notes  string `json:"notes"`
}

type stageRequest struct {
	PipelineID string `json:"pipeline_id" validate:"required"`
	StageID    string `json:"stage_id" validate:"required"`
}

func (h *ClientHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.Clients())
}

func (h *ClientHandler) Get(c echo.Context) error {
	cl, ok := h.store.Client(c.Param("id"))
	if !ok {
		return domain.ErrClientNotFound
	}
	return c.JSON(http.StatusOK, cl)
}

func (h *ClientHandler) Create(c echo.Context) error {
	var req clientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	cl, err := h.store.AddClient(store.ClientInput{
		Name: req.Name, Phone: req.Phone, Email: req.Email, Source: req.Source, Notes: req.Notes,
	})
	if err != nil {
		metrics.MutationErrorsTotal.WithLabelValues("client").Inc()
		return err
	}
	metrics.MutationsTotal.WithLabelValues("client", "create").Inc()
	return c.JSON(http.StatusCreated, cl)
}

func (h *ClientHandler) Update(c echo.Context) error {
	var req clientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	cl, err := h.store.UpdateClient(c.Param("id"), store.ClientInput{
		Name: req.Name, Phone: req.Phone, Email: req.Email, Source: req.Source, Notes: req.Notes,
	})
	if err != nil {
		metrics.MutationErrorsTotal.WithLabelValues("client").Inc()
		return err
	}
	metrics.MutationsTotal.WithLabelValues("client", "update").Inc()
	return c.JSON(http.StatusOK, cl)
}

func (h *ClientHandler) Delete(c echo.Context) error {
	if err := h.store.DeleteClient(c.Param("id")); err != nil {
		metrics.MutationErrorsTotal.WithLabelValues("client").Inc()
		return err
	}
	metrics.MutationsTotal.WithLabelValues("client", "delete").Inc()
	return c.NoContent(http.StatusNoContent)
}

func (h *ClientHandler) AddFamilyMember(c echo.Context) error {
	var req clientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	cl, err := h.store.AddFamilyMember(c.Param("id"), store.ClientInput{
		Name: req.Name, Phone: req.Phone, Email: req.Email, Source: req.Source, Notes: req.Notes,
	})
	if err != nil {
		metrics.MutationErrorsTotal.WithLabelValues("client").Inc()
		return err
	}
	metrics.MutationsTotal.WithLabelValues("client", "create").Inc()
	return c.JSON(http.StatusCreated, cl)
}

func (h *ClientHandler) MarkLost(c echo.Context) error {
	var req reasonRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := h.store.MarkLeadAsLost(c.Param("id"), req.Reason); err != nil {
		metrics.MutationErrorsTotal.WithLabelValues("client").Inc()
		return err
	}
	metrics.MutationsTotal.WithLabelValues("client", "update").Inc()
	return c.NoContent(http.StatusNoContent)
}

func (h *ClientHandler) MoveStage(c echo.Context) error {
	var req stageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.store.MoveLeadToStage(c.Param("id"), req.PipelineID, req.StageID); err != nil {
		metrics.MutationErrorsTotal.WithLabelValues("client").Inc()
		return err
	}
	metrics.MutationsTotal.WithLabelValues("client", "update").Inc()
	return c.NoContent(http.StatusNoContent)
}

func (h *ClientHandler) ScheduleVisit(c echo.Context) error {
	var req visitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	visit, err := h.store.ScheduleVisit(c.Param("id"), req.PropertyID, req.Date, req.Notes)
	if err != nil {
		metrics.MutationErrorsTotal.WithLabelValues("client").Inc()
		return err
	}
	metrics.MutationsTotal.WithLabelValues("client", "update").Inc()
	return c.JSON(http.StatusCreated, visit)
}

func (h *ClientHandler) UpdateVisit(c echo.Context) error {
	var req visitUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.store.UpdateVisit(c.Param("id"), c.Param("visitId"), domain.VisitStatus(req.Status), req.Notes); err != nil {
		metrics.MutationErrorsTotal.WithLabelValues("client").Inc()
		return err
	}
	metrics.MutationsTotal.WithLabelValues("client", "update").Inc()
	return c.NoContent(http.StatusNoContent)
}

func (h *ClientHandler) CancelVisit(c echo.Context) error {
	if err := h.store.CancelVisit(c.Param("id"), c.Param("visitId")); err != nil {
		metrics.MutationErrorsTotal.WithLabelValues("client").Inc()
		return err
	}
	metrics.MutationsTotal.WithLabelValues("client", "update").Inc()
	return c.NoContent(http.StatusNoContent)
}

// Touch records a contact with the lead, resetting its freshness clock.
func (h *ClientHandler) Touch(c echo.Context) error {
	if err := h.store.TouchLeadContact(c.Param("id")); err != nil {
		metrics.MutationErrorsTotal.WithLabelValues("client").Inc()
		return err
	}
	metrics.MutationsTotal.WithLabelValues("client", "update").Inc()
	return c.NoContent(http.StatusNoContent)
}

// Aging buckets every active lead by freshness against the configured
// thresholds.
func (h *ClientHandler) Aging(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.LeadAgingReport())
}

// MatchScore asks the text service how well a lead fits a listing.
func (h *ClientHandler) MatchScore(c echo.Context) error {
	result := h.store.ScoreLeadMatch(c.Request().Context(), c.Param("id"), c.QueryParam("property_id"))
	return c.JSON(http.StatusOK, result)
}
