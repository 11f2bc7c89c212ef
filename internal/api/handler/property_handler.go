package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/imoview/realty-crm/internal/api/metrics"
	"github.com/imoview/realty-crm/internal/core/domain"
	"github.com/imoview/realty-crm/internal/core/store"
)

type PropertyHandler struct {
	store *store.Store
}

func NewPropertyHandler(s *store.Store) *PropertyHandler {
	return &PropertyHandler{store: s}
}

type propertyRequest struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Location    string   `json:"location"`
	Price       float64  `json:"price" validate:"gt=0"`
	Features    []string `json:"features"`
	AsDraft     bool     `json:"as_draft"`
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
	Reason string `json:"reason"`
}

func (h *PropertyHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.Properties())
}

func (h *PropertyHandler) Get(c echo.Context) error {
	p, ok := h.store.Property(c.Param("id"))
	if !ok {
		return domain.ErrPropertyNotFound
	}
	return c.JSON(http.StatusOK, p)
}

func (h *PropertyHandler) Create(c echo.Context) error {
	var req propertyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	p, err := h.store.AddProperty(store.PropertyInput{
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Location:    req.Location,
		Price:       req.Price,
		Features:    req.Features,
		AsDraft:     req.AsDraft,
	})
	if err != nil {
		metrics.MutationErrorsTotal.WithLabelValues("property").Inc()
		return err
	}
	metrics.MutationsTotal.WithLabelValues("property", "create").Inc()
	return c.JSON(http.StatusCreated, p)
}

func (h *PropertyHandler) Update(c echo.Context) error {
	var req propertyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	p, err := h.store.UpdateProperty(c.Param("id"), store.PropertyInput{
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Location:    req.Location,
		Price:       req.Price,
		Features:    req.Features,
	})
	if err != nil {
		metrics.MutationErrorsTotal.WithLabelValues("property").Inc()
		return err
	}
	metrics.MutationsTotal.WithLabelValues("property", "update").Inc()
	return c.JSON(http.StatusOK, p)
}

func (h *PropertyHandler) Delete(c echo.Context) error {
	if err := h.store.DeleteProperty(c.Param("id")); err != nil {
		metrics.MutationErrorsTotal.WithLabelValues("property").Inc()
		return err
	}
	metrics.MutationsTotal.WithLabelValues("property", "delete").Inc()
	return c.NoContent(http.StatusNoContent)
}

func (h *PropertyHandler) Submit(c echo.Context) error {
	if err := h.store.SubmitProperty(c.Param("id")); err != nil {
		metrics.MutationErrorsTotal.WithLabelValues("property").Inc()
		return err
	}
	metrics.MutationsTotal.WithLabelValues("property", "update").Inc()
	return c.NoContent(http.StatusNoContent)
}

func (h *PropertyHandler) Approve(c echo.Context) error {
	if err := h.store.ApproveProperty(c.Param("id")); err != nil {
		metrics.MutationErrorsTotal.WithLabelValues("property").Inc()
		return err
	}
	metrics.MutationsTotal.WithLabelValues("property", "approval").Inc()
	return c.NoContent(http.StatusNoContent)
}

func (h *PropertyHandler) Reject(c echo.Context) error {
	var req reasonRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := h.store.RejectProperty(c.Param("id"), req.Reason); err != nil {
		metrics.MutationErrorsTotal.WithLabelValues("property").Inc()
		return err
	}
	metrics.MutationsTotal.WithLabelValues("property", "approval").Inc()
	return c.NoContent(http.StatusNoContent)
}

func (h *PropertyHandler) ChangeStatus(c echo.Context) error {
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.store.ChangePropertyStatus(c.Param("id"), domain.PropertyStatus(req.Status), req.Reason); err != nil {
		metrics.MutationErrorsTotal.WithLabelValues("property").Inc()
		return err
	}
	metrics.MutationsTotal.WithLabelValues("property", "update").Inc()
	return c.NoContent(http.StatusNoContent)
}

// Describe returns AI-generated listing text, falling back to a canned
// message when the service is unavailable.
func (h *PropertyHandler) Describe(c echo.Context) error {
	text := h.store.GenerateListingDescription(c.Request().Context(), c.Param("id"))
	return c.JSON(http.StatusOK, map[string]string{"description": text})
}
