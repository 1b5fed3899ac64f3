package handler

import (
	"net/http"
	"time"

	"github.com/Kmaheshkanna2005/resource-management/internal/dto"
	"github.com/Kmaheshkanna2005/resource-management/internal/service"
	"github.com/labstack/echo/v4"
)

const dateLayout = "2006-01-02"

type ReportHandler struct {
	svc service.ReportService
}

func NewReportHandler(svc service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

func (h *ReportHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/utilization", h.Utilization)
	g.GET("/conflicts", h.Conflicts)
	g.GET("/summary", h.Summary)
}

// Utilization accepts plain dates or timestamps, with or without an offset.
// Timestamps without an offset are UTC. A plain end_date
// covers that whole day.
func (h *ReportHandler) Utilization(c echo.Context) error {
	from, _, err := parseReportTime(c.QueryParam("start_date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "start_date must be YYYY-MM-DD or RFC 3339")
	}
	to, dateOnly, err := parseReportTime(c.QueryParam("end_date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "end_date must be YYYY-MM-DD or RFC 3339")
	}
	if dateOnly {
		to = to.Add(24 * time.Hour)
	}

	report, err := h.svc.Utilization(c.Request().Context(), from, to, c.QueryParam("resource_type"))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, report)
}

func (h *ReportHandler) Conflicts(c echo.Context) error {
	entries, err := h.svc.ConflictsReport(c.Request().Context())
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"total_conflicts": len(entries),
		"conflicts":       entries,
	})
}

func (h *ReportHandler) Summary(c echo.Context) error {
	summary, err := h.svc.Summary(c.Request().Context())
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, summary)
}

func parseReportTime(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, true, nil
	}
	t, err := dto.ParseTime(raw)
	return t, false, err
}
