package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Kmaheshkanna2005/resource-management/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestRouter_Health(t *testing.T) {
	e := newRouter(services{}, 0)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","service":"resource-scheduler"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestRouter_RegistersAPI(t *testing.T) {
	e := newRouter(services{}, 0)

	routes := map[string]bool{}
	for _, r := range e.Routes() {
		routes[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{
		"POST /api/v1/events",
		"PUT /api/v1/events/:id",
		"GET /api/v1/resources/types",
		"DELETE /api/v1/resources/:id",
		"POST /api/v1/allocations",
		"POST /api/v1/allocations/batch",
		"DELETE /api/v1/allocations/:id",
		"POST /api/v1/allocations/conflicts",
		"POST /api/v1/allocations/conflicts/batch",
		"GET /api/v1/reports/utilization",
		"GET /api/v1/reports/conflicts",
		"GET /api/v1/reports/summary",
	} {
		assert.True(t, routes[want], "missing route %s", want)
	}
}

func TestRouter_RateLimit(t *testing.T) {
	e := newRouter(services{resources: service.NewResourceService(nil, nil, nil)}, 1)

	codes := make([]int, 3)
	for i := range codes {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/resources/types", nil))
		codes[i] = rec.Code
	}

	assert.Equal(t, http.StatusOK, codes[0])
	assert.Equal(t, http.StatusTooManyRequests, codes[2])
}

func TestRouter_UnknownRouteIsJSON(t *testing.T) {
	e := newRouter(services{}, 0)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Not Found"}`, rec.Body.String())
}
