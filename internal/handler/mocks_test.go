package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/Kmaheshkanna2005/resource-management/internal/models"
	"github.com/Kmaheshkanna2005/resource-management/internal/repository"
	"github.com/Kmaheshkanna2005/resource-management/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
)

// --- Mock AllocationService ---

type mockAllocationService struct {
	checkFn      func(ctx context.Context, resourceID uint, start, end time.Time, exclude *uint) (service.ConflictResult, error)
	checkMultiFn func(ctx context.Context, resourceIDs []uint, start, end time.Time, exclude *uint) (map[uint]service.ConflictResult, error)
	allocateFn   func(ctx context.Context, eventID, resourceID uint) (*models.Allocation, error)
	batchFn      func(ctx context.Context, eventID uint, resourceIDs []uint) ([]uint, error)
	deallocateFn func(ctx context.Context, allocationID uint) error
	listFn       func(ctx context.Context, filter repository.AllocationFilter) ([]models.Allocation, error)
}

func (m *mockAllocationService) CheckConflict(ctx context.Context, resourceID uint, start, end time.Time, exclude *uint) (service.ConflictResult, error) {
	return m.checkFn(ctx, resourceID, start, end, exclude)
}
func (m *mockAllocationService) CheckMultiple(ctx context.Context, resourceIDs []uint, start, end time.Time, exclude *uint) (map[uint]service.ConflictResult, error) {
	return m.checkMultiFn(ctx, resourceIDs, start, end, exclude)
}
func (m *mockAllocationService) Allocate(ctx context.Context, eventID, resourceID uint) (*models.Allocation, error) {
	return m.allocateFn(ctx, eventID, resourceID)
}
func (m *mockAllocationService) AllocateBatch(ctx context.Context, eventID uint, resourceIDs []uint) ([]uint, error) {
	return m.batchFn(ctx, eventID, resourceIDs)
}
func (m *mockAllocationService) Deallocate(ctx context.Context, allocationID uint) error {
	return m.deallocateFn(ctx, allocationID)
}
func (m *mockAllocationService) ListAllocations(ctx context.Context, filter repository.AllocationFilter) ([]models.Allocation, error) {
	return m.listFn(ctx, filter)
}

// --- Mock EventService ---

type mockEventService struct {
	createFn func(ctx context.Context, event *models.Event) error
	getFn    func(ctx context.Context, id uint) (*models.Event, error)
	listFn   func(ctx context.Context) ([]models.Event, error)
	updateFn func(ctx context.Context, id uint, update service.EventUpdate) (*models.Event, error)
	deleteFn func(ctx context.Context, id uint) error
}

func (m *mockEventService) CreateEvent(ctx context.Context, event *models.Event) error {
	return m.createFn(ctx, event)
}
func (m *mockEventService) GetEvent(ctx context.Context, id uint) (*models.Event, error) {
	return m.getFn(ctx, id)
}
func (m *mockEventService) ListEvents(ctx context.Context) ([]models.Event, error) {
	return m.listFn(ctx)
}
func (m *mockEventService) UpdateEvent(ctx context.Context, id uint, update service.EventUpdate) (*models.Event, error) {
	return m.updateFn(ctx, id, update)
}
func (m *mockEventService) DeleteEvent(ctx context.Context, id uint) error {
	return m.deleteFn(ctx, id)
}
func (m *mockEventService) SyncEvent(ctx context.Context, event *models.Event) error {
	return nil
}

// --- Mock ResourceService ---

type mockResourceService struct {
	createFn func(ctx context.Context, resource *models.Resource) error
	getFn    func(ctx context.Context, id uint) (*models.Resource, error)
	listFn   func(ctx context.Context, resourceType string) ([]models.Resource, error)
	updateFn func(ctx context.Context, id uint, update service.ResourceUpdate) (*models.Resource, error)
	deleteFn func(ctx context.Context, id uint, force bool) error
}

func (m *mockResourceService) CreateResource(ctx context.Context, resource *models.Resource) error {
	return m.createFn(ctx, resource)
}
func (m *mockResourceService) GetResource(ctx context.Context, id uint) (*models.Resource, error) {
	return m.getFn(ctx, id)
}
func (m *mockResourceService) ListResources(ctx context.Context, resourceType string) ([]models.Resource, error) {
	return m.listFn(ctx, resourceType)
}
func (m *mockResourceService) UpdateResource(ctx context.Context, id uint, update service.ResourceUpdate) (*models.Resource, error) {
	return m.updateFn(ctx, id, update)
}
func (m *mockResourceService) DeleteResource(ctx context.Context, id uint, force bool) error {
	return m.deleteFn(ctx, id, force)
}
func (m *mockResourceService) ResourceTypes() []models.ResourceType {
	return models.ResourceTypes
}

// --- Mock ReportService ---

type mockReportService struct {
	mock.Mock
}

func (m *mockReportService) Utilization(ctx context.Context, from, to time.Time, resourceType string) (*service.UtilizationReport, error) {
	args := m.Called(ctx, from, to, resourceType)
	report, _ := args.Get(0).(*service.UtilizationReport)
	return report, args.Error(1)
}
func (m *mockReportService) ConflictsReport(ctx context.Context) ([]service.ConflictReportEntry, error) {
	args := m.Called(ctx)
	entries, _ := args.Get(0).([]service.ConflictReportEntry)
	return entries, args.Error(1)
}
func (m *mockReportService) Summary(ctx context.Context) (*service.Summary, error) {
	args := m.Called(ctx)
	summary, _ := args.Get(0).(*service.Summary)
	return summary, args.Error(1)
}

// --- helpers ---

func newJSONContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func httpStatus(err error) int {
	if he, ok := err.(*echo.HTTPError); ok {
		return he.Code
	}
	return 0
}

var day = time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}
