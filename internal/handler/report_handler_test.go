package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/Kmaheshkanna2005/resource-management/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUtilization_Handler_DateRange(t *testing.T) {
	svc := new(mockReportService)
	from := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 12, 8, 0, 0, 0, 0, time.UTC)
	svc.On("Utilization", mock.Anything, mock.MatchedBy(from.Equal), mock.MatchedBy(to.Equal), "room").
		Return(&service.UtilizationReport{StartDate: from, EndDate: to, TotalResources: 0, Data: []service.ResourceUtilization{}}, nil)
	c, rec := newJSONContext(http.MethodGet, "/api/v1/reports/utilization?start_date=2025-12-01&end_date=2025-12-07&resource_type=room", "")

	require.NoError(t, NewReportHandler(svc).Utilization(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestUtilization_Handler_RFC3339(t *testing.T) {
	svc := new(mockReportService)
	from := time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)
	to := time.Date(2025, 12, 1, 17, 0, 0, 0, time.UTC)
	svc.On("Utilization", mock.Anything, mock.MatchedBy(from.Equal), mock.MatchedBy(to.Equal), "").
		Return(&service.UtilizationReport{}, nil)
	c, _ := newJSONContext(http.MethodGet, "/api/v1/reports/utilization?start_date=2025-12-01T09:00:00Z&end_date=2025-12-01T17:00:00Z", "")

	require.NoError(t, NewReportHandler(svc).Utilization(c))
	svc.AssertExpectations(t)
}

func TestUtilization_Handler_NaiveTimestamps(t *testing.T) {
	svc := new(mockReportService)
	from := time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)
	to := time.Date(2025, 12, 1, 17, 0, 0, 0, time.UTC)
	svc.On("Utilization", mock.Anything, mock.MatchedBy(from.Equal), mock.MatchedBy(to.Equal), "").
		Return(&service.UtilizationReport{}, nil)
	c, _ := newJSONContext(http.MethodGet, "/api/v1/reports/utilization?start_date=2025-12-01T09:00:00&end_date=2025-12-01T17:00:00", "")

	require.NoError(t, NewReportHandler(svc).Utilization(c))
	svc.AssertExpectations(t)
}

func TestUtilization_Handler_BadInput(t *testing.T) {
	svc := new(mockReportService)
	h := NewReportHandler(svc)

	c, _ := newJSONContext(http.MethodGet, "/api/v1/reports/utilization?end_date=2025-12-07", "")
	assert.Equal(t, http.StatusBadRequest, httpStatus(h.Utilization(c)))

	svc.On("Utilization", mock.Anything, mock.Anything, mock.Anything, "").Return(nil, service.ErrInvalidRange)
	c, _ = newJSONContext(http.MethodGet, "/api/v1/reports/utilization?start_date=2025-12-07&end_date=2025-12-01", "")
	assert.Equal(t, http.StatusBadRequest, httpStatus(h.Utilization(c)))
}

func TestConflicts_Handler(t *testing.T) {
	svc := new(mockReportService)
	svc.On("ConflictsReport", mock.Anything).Return([]service.ConflictReportEntry{
		{EventID: 1, EventTitle: "AI Workshop", ResourceID: 2, ConflictingEvents: []service.ConflictRecord{{EventID: 3}}},
	}, nil)
	c, rec := newJSONContext(http.MethodGet, "/api/v1/reports/conflicts", "")

	require.NoError(t, NewReportHandler(svc).Conflicts(c))

	var resp struct {
		Total     int                           `json:"total_conflicts"`
		Conflicts []service.ConflictReportEntry `json:"conflicts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, "AI Workshop", resp.Conflicts[0].EventTitle)
}

func TestSummary_Handler(t *testing.T) {
	svc := new(mockReportService)
	svc.On("Summary", mock.Anything).Return(&service.Summary{TotalEvents: 4, TotalResources: 2}, nil)
	c, rec := newJSONContext(http.MethodGet, "/api/v1/reports/summary", "")

	require.NoError(t, NewReportHandler(svc).Summary(c))

	var resp service.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(4), resp.TotalEvents)
	svc.AssertExpectations(t)
}
