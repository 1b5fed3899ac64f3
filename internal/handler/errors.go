package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/Kmaheshkanna2005/resource-management/internal/dto"
	"github.com/Kmaheshkanna2005/resource-management/internal/service"
	"github.com/labstack/echo/v4"
)

// httpError maps a service error to the HTTP error returned to the client.
// A conflict on a single resource carries its conflicts as a list.
func httpError(err error) error {
	var conflictErr *service.ConflictError
	if errors.As(err, &conflictErr) && len(conflictErr.Conflicts) == 1 {
		for _, records := range conflictErr.Conflicts {
			return echo.NewHTTPError(http.StatusConflict, dto.ConflictErrorResponse{
				Message:   conflictErr.Error(),
				Conflicts: records,
			})
		}
	}
	return mapError(err)
}

// batchHTTPError is httpError for multi-resource requests: conflicts are
// always keyed by resource id.
func batchHTTPError(err error) error {
	var conflictErr *service.ConflictError
	if errors.As(err, &conflictErr) {
		return echo.NewHTTPError(http.StatusConflict, dto.ConflictErrorResponse{
			Message:   conflictErr.Error(),
			Conflicts: conflictErr.Conflicts,
		})
	}
	return mapError(err)
}

func mapError(err error) error {
	switch {
	case errors.Is(err, service.ErrEventNotFound),
		errors.Is(err, service.ErrResourceNotFound),
		errors.Is(err, service.ErrAllocationNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAlreadyAllocated),
		errors.Is(err, service.ErrConflictDetected),
		errors.Is(err, service.ErrResourceInUse),
		errors.Is(err, service.ErrDuplicateResourceName):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidRange),
		errors.Is(err, service.ErrDurationExceeded),
		errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidResourceType):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		log.Printf("[Handler] internal error: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}

func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name+" id")
	}
	return uint(id), nil
}

// queryID reads an optional positive id from the query string; 0 means absent.
func queryID(c echo.Context, key string) (uint, error) {
	raw := c.QueryParam(key)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+key)
	}
	return uint(id), nil
}
