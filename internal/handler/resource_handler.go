package handler

import (
	"net/http"
	"strconv"

	"github.com/Kmaheshkanna2005/resource-management/internal/dto"
	"github.com/Kmaheshkanna2005/resource-management/internal/models"
	"github.com/Kmaheshkanna2005/resource-management/internal/service"
	"github.com/labstack/echo/v4"
)

type ResourceHandler struct {
	svc service.ResourceService
}

func NewResourceHandler(svc service.ResourceService) *ResourceHandler {
	return &ResourceHandler{svc: svc}
}

func (h *ResourceHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.CreateResource)
	g.GET("", h.ListResources)
	g.GET("/types", h.ListResourceTypes)
	g.GET("/:id", h.GetResource)
	g.PUT("/:id", h.UpdateResource)
	g.DELETE("/:id", h.DeleteResource)
}

func (h *ResourceHandler) CreateResource(c echo.Context) error {
	var req dto.CreateResourceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	resource := &models.Resource{Name: req.Name, Type: models.ResourceType(req.Type)}
	if err := h.svc.CreateResource(c.Request().Context(), resource); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, dto.ToResourceResponse(resource))
}

func (h *ResourceHandler) GetResource(c echo.Context) error {
	id, err := parseID(c, "resource")
	if err != nil {
		return err
	}

	resource, err := h.svc.GetResource(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, dto.ToResourceResponse(resource))
}

func (h *ResourceHandler) ListResources(c echo.Context) error {
	resources, err := h.svc.ListResources(c.Request().Context(), c.QueryParam("type"))
	if err != nil {
		return httpError(err)
	}

	resp := make([]dto.ResourceResponse, len(resources))
	for i := range resources {
		resp[i] = dto.ToResourceResponse(&resources[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ResourceHandler) ListResourceTypes(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"resource_types": h.svc.ResourceTypes()})
}

func (h *ResourceHandler) UpdateResource(c echo.Context) error {
	id, err := parseID(c, "resource")
	if err != nil {
		return err
	}

	var req dto.UpdateResourceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	resource, err := h.svc.UpdateResource(c.Request().Context(), id, service.ResourceUpdate{
		Name: req.Name,
		Type: req.Type,
	})
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, dto.ToResourceResponse(resource))
}

func (h *ResourceHandler) DeleteResource(c echo.Context) error {
	id, err := parseID(c, "resource")
	if err != nil {
		return err
	}

	force := false
	if raw := c.QueryParam("force"); raw != "" {
		if force, err = strconv.ParseBool(raw); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid force flag")
		}
	}

	if err := h.svc.DeleteResource(c.Request().Context(), id, force); err != nil {
		return httpError(err)
	}

	return c.NoContent(http.StatusNoContent)
}
