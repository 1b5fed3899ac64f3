package handler

import (
	"fmt"
	"net/http"

	"github.com/Kmaheshkanna2005/resource-management/internal/dto"
	"github.com/Kmaheshkanna2005/resource-management/internal/repository"
	"github.com/Kmaheshkanna2005/resource-management/internal/service"
	"github.com/labstack/echo/v4"
)

type AllocationHandler struct {
	svc service.AllocationService
}

func NewAllocationHandler(svc service.AllocationService) *AllocationHandler {
	return &AllocationHandler{svc: svc}
}

func (h *AllocationHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListAllocations)
	g.POST("", h.Allocate)
	g.POST("/batch", h.AllocateBatch)
	g.DELETE("/:id", h.Deallocate)
	g.POST("/conflicts", h.CheckConflict)
	g.POST("/conflicts/batch", h.CheckConflictBatch)
}

func (h *AllocationHandler) ListAllocations(c echo.Context) error {
	eventID, err := queryID(c, "event_id")
	if err != nil {
		return err
	}
	resourceID, err := queryID(c, "resource_id")
	if err != nil {
		return err
	}

	allocations, err := h.svc.ListAllocations(c.Request().Context(), repository.AllocationFilter{
		EventID:    eventID,
		ResourceID: resourceID,
	})
	if err != nil {
		return httpError(err)
	}

	resp := make([]dto.AllocationResponse, len(allocations))
	for i := range allocations {
		resp[i] = dto.ToAllocationResponse(&allocations[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *AllocationHandler) Allocate(c echo.Context) error {
	var req dto.AllocateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.EventID == 0 || req.ResourceID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "event_id and resource_id are required")
	}

	allocation, err := h.svc.Allocate(c.Request().Context(), req.EventID, req.ResourceID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, dto.ToAllocationResponse(allocation))
}

func (h *AllocationHandler) AllocateBatch(c echo.Context) error {
	var req dto.BatchAllocateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.EventID == 0 || len(req.ResourceIDs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "event_id and resource_ids are required")
	}

	allocated, err := h.svc.AllocateBatch(c.Request().Context(), req.EventID, req.ResourceIDs)
	if err != nil {
		return batchHTTPError(err)
	}

	return c.JSON(http.StatusCreated, dto.BatchAllocationResponse{
		EventID:     req.EventID,
		ResourceIDs: allocated,
		Message:     fmt.Sprintf("%d resource(s) allocated", len(allocated)),
	})
}

func (h *AllocationHandler) Deallocate(c echo.Context) error {
	id, err := parseID(c, "allocation")
	if err != nil {
		return err
	}

	if err := h.svc.Deallocate(c.Request().Context(), id); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, dto.ErrorResponse{Message: "allocation removed"})
}

func (h *AllocationHandler) CheckConflict(c echo.Context) error {
	var req dto.ConflictCheckRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.ResourceID == 0 || req.StartTime.IsZero() || req.EndTime.IsZero() {
		return echo.NewHTTPError(http.StatusBadRequest, "resource_id, start_time and end_time are required")
	}

	res, err := h.svc.CheckConflict(c.Request().Context(), req.ResourceID, req.StartTime.Time, req.EndTime.Time, req.ExcludeEventID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, dto.ConflictCheckResponse{
		ResourceID: req.ResourceID,
		StartTime:  req.StartTime.UTC(),
		EndTime:    req.EndTime.UTC(),
		Available:  res.Available,
		Conflicts:  res.Conflicts,
	})
}

func (h *AllocationHandler) CheckConflictBatch(c echo.Context) error {
	var req dto.BatchConflictCheckRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.ResourceIDs) == 0 || req.StartTime.IsZero() || req.EndTime.IsZero() {
		return echo.NewHTTPError(http.StatusBadRequest, "resource_ids, start_time and end_time are required")
	}

	results, err := h.svc.CheckMultiple(c.Request().Context(), req.ResourceIDs, req.StartTime.Time, req.EndTime.Time, req.ExcludeEventID)
	if err != nil {
		return httpError(err)
	}

	allAvailable := true
	for _, r := range results {
		allAvailable = allAvailable && r.Available
	}
	return c.JSON(http.StatusOK, dto.BatchConflictCheckResponse{
		StartTime:    req.StartTime.UTC(),
		EndTime:      req.EndTime.UTC(),
		AllAvailable: allAvailable,
		Results:      results,
	})
}
