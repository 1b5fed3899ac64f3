package handler

import (
	"net/http"
	"strings"

	"github.com/Kmaheshkanna2005/resource-management/internal/dto"
	"github.com/Kmaheshkanna2005/resource-management/internal/models"
	"github.com/Kmaheshkanna2005/resource-management/internal/service"
	"github.com/labstack/echo/v4"
)

type EventHandler struct {
	svc service.EventService
}

func NewEventHandler(svc service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

func (h *EventHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.CreateEvent)
	g.GET("", h.ListEvents)
	g.GET("/:id", h.GetEvent)
	g.PUT("/:id", h.UpdateEvent)
	g.DELETE("/:id", h.DeleteEvent)
}

func (h *EventHandler) CreateEvent(c echo.Context) error {
	var req dto.CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Title) == "" || req.StartTime.IsZero() || req.EndTime.IsZero() {
		return echo.NewHTTPError(http.StatusBadRequest, "title, start_time and end_time are required")
	}

	event := &models.Event{
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime.Time,
		EndTime:     req.EndTime.Time,
	}
	if err := h.svc.CreateEvent(c.Request().Context(), event); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, dto.ToEventResponse(event))
}

func (h *EventHandler) GetEvent(c echo.Context) error {
	id, err := parseID(c, "event")
	if err != nil {
		return err
	}

	event, err := h.svc.GetEvent(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, dto.ToEventResponse(event))
}

func (h *EventHandler) ListEvents(c echo.Context) error {
	events, err := h.svc.ListEvents(c.Request().Context())
	if err != nil {
		return httpError(err)
	}

	resp := make([]dto.EventResponse, len(events))
	for i := range events {
		resp[i] = dto.ToEventResponse(&events[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *EventHandler) UpdateEvent(c echo.Context) error {
	id, err := parseID(c, "event")
	if err != nil {
		return err
	}

	var req dto.UpdateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	event, err := h.svc.UpdateEvent(c.Request().Context(), id, service.EventUpdate{
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime.Ptr(),
		EndTime:     req.EndTime.Ptr(),
	})
	if err != nil {
		return batchHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToEventResponse(event))
}

func (h *EventHandler) DeleteEvent(c echo.Context) error {
	id, err := parseID(c, "event")
	if err != nil {
		return err
	}

	if err := h.svc.DeleteEvent(c.Request().Context(), id); err != nil {
		return httpError(err)
	}

	return c.NoContent(http.StatusNoContent)
}
