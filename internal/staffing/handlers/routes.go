package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gartstein/staffing/internal/staffing/models"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	departmentsPath = "/api/v1/departments"
	employeesPath   = "/api/v1/employees"
)

// DepartmentController defines the department operations the HTTP routes invoke.
type DepartmentController interface {
	ListActive(ctx context.Context, filter string) ([]models.Department, error)
	ListInactive(ctx context.Context, filter string) ([]models.Department, error)
	GetDepartment(ctx context.Context, id uuid.UUID) (*models.Department, error)
	CreateDepartment(ctx context.Context, name, acronym string) (*models.Department, error)
	UpdateDepartment(ctx context.Context, id uuid.UUID, name, acronym string) error
	ActivateDepartment(ctx context.Context, id uuid.UUID) error
	DeactivateDepartment(ctx context.Context, id uuid.UUID) error
}

// EmployeeController defines the employee operations the HTTP routes invoke.
type EmployeeController interface {
	ListActive(ctx context.Context, filter string) ([]models.Employee, error)
	ListInactive(ctx context.Context, filter string) ([]models.Employee, error)
	ListActiveByDepartment(ctx context.Context, departmentID uuid.UUID, filter string) ([]models.Employee, error)
	GetEmployee(ctx context.Context, id uuid.UUID) (*models.Employee, error)
	CreateEmployee(ctx context.Context, departmentID uuid.UUID, name, document string) (*models.Employee, error)
	UpdateEmployee(ctx context.Context, id uuid.UUID, name, document string, departmentID uuid.UUID) error
	ActivateEmployee(ctx context.Context, id, departmentID uuid.UUID) error
	DeactivateEmployee(ctx context.Context, id uuid.UUID) error
}

// Handler serves the department and employee REST routes.
type Handler struct {
	departments DepartmentController
	employees   EmployeeController
	marshaler   runtime.Marshaler
	logger      *zap.Logger
}

// NewHandler constructs a Handler over the two controllers.
func NewHandler(departments DepartmentController, employees EmployeeController, logger *zap.Logger) *Handler {
	return &Handler{
		departments: departments,
		employees:   employees,
		marshaler:   &runtime.JSONBuiltin{},
		logger:      logger.Named("http_handler"),
	}
}

type route struct {
	method  string
	pattern string
	handle  runtime.HandlerFunc
}

func (h *Handler) routes() []route {
	return []route{
		{http.MethodGet, departmentsPath + "/status/active", h.listDepartments(models.StatusActive)},
		{http.MethodGet, departmentsPath + "/status/inactive", h.listDepartments(models.StatusInactive)},
		{http.MethodGet, departmentsPath + "/{id}", h.getDepartment},
		{http.MethodPost, departmentsPath, h.createDepartment},
		{http.MethodPut, departmentsPath + "/{id}", h.updateDepartment},
		{http.MethodPost, departmentsPath + "/{id}/activate", h.activateDepartment},
		{http.MethodDelete, departmentsPath + "/{id}", h.deactivateDepartment},
		{http.MethodGet, departmentsPath + "/{id}/employees", h.listDepartmentEmployees},
		{http.MethodPost, departmentsPath + "/{id}/employees", h.createEmployee},

		{http.MethodGet, employeesPath + "/status/active", h.listEmployees(models.StatusActive)},
		{http.MethodGet, employeesPath + "/status/inactive", h.listEmployees(models.StatusInactive)},
		{http.MethodGet, employeesPath + "/{id}", h.getEmployee},
		{http.MethodPut, employeesPath + "/{id}", h.updateEmployee},
		{http.MethodPost, employeesPath + "/{id}/activate", h.activateEmployee},
		{http.MethodDelete, employeesPath + "/{id}", h.deactivateEmployee},
	}
}

// Register adds every route to the gateway mux.
func (h *Handler) Register(mux *runtime.ServeMux) error {
	for _, rt := range h.routes() {
		if err := mux.HandlePath(rt.method, rt.pattern, instrument(rt.method, rt.pattern, rt.handle)); err != nil {
			return fmt.Errorf("failed to register %s %s: %w", rt.method, rt.pattern, err)
		}
	}
	return nil
}

func (h *Handler) listDepartments(s models.Status) runtime.HandlerFunc {
	list := h.departments.ListActive
	if s == models.StatusInactive {
		list = h.departments.ListInactive
	}
	return func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
		departments, err := list(r.Context(), r.URL.Query().Get("search"))
		if err != nil {
			h.writeError(w, err)
			return
		}
		h.writeJSON(w, http.StatusOK, departmentsToResponse(departments))
	}
}

func (h *Handler) getDepartment(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	id, err := parseID(pathParams, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}
	department, err := h.departments.GetDepartment(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, departmentToDetailResponse(department))
}

func (h *Handler) createDepartment(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req departmentRequest
	if !h.decode(w, r, &req) {
		return
	}
	department, err := h.departments.CreateDepartment(r.Context(), req.Name, req.Acronym)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Location", departmentsPath+"/"+department.ID.String())
	h.writeJSON(w, http.StatusCreated, departmentToResponse(department))
}

func (h *Handler) updateDepartment(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	id, err := parseID(pathParams, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req departmentRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.departments.UpdateDepartment(r.Context(), id, req.Name, req.Acronym); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) activateDepartment(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	id, err := parseID(pathParams, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.departments.ActivateDepartment(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	RecordStatusTransition("department", "activate")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deactivateDepartment(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	id, err := parseID(pathParams, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.departments.DeactivateDepartment(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	RecordStatusTransition("department", "deactivate")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listDepartmentEmployees(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	id, err := parseID(pathParams, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}
	employees, err := h.employees.ListActiveByDepartment(r.Context(), id, r.URL.Query().Get("search"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, employeesToResponse(employees))
}

func (h *Handler) createEmployee(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	departmentID, err := parseID(pathParams, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req employeeRequest
	if !h.decode(w, r, &req) {
		return
	}
	employee, err := h.employees.CreateEmployee(r.Context(), departmentID, req.Name, req.Document)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Location", employeesPath+"/"+employee.ID.String())
	h.writeJSON(w, http.StatusCreated, employeeToResponse(employee))
}

func (h *Handler) listEmployees(s models.Status) runtime.HandlerFunc {
	list := h.employees.ListActive
	if s == models.StatusInactive {
		list = h.employees.ListInactive
	}
	return func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
		employees, err := list(r.Context(), r.URL.Query().Get("search"))
		if err != nil {
			h.writeError(w, err)
			return
		}
		h.writeJSON(w, http.StatusOK, employeesToResponse(employees))
	}
}

func (h *Handler) getEmployee(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	id, err := parseID(pathParams, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}
	employee, err := h.employees.GetEmployee(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, employeeToResponse(employee))
}

func (h *Handler) updateEmployee(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	id, err := parseID(pathParams, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req employeeRequest
	if !h.decode(w, r, &req) {
		return
	}
	departmentID, err := parseDepartmentID(req.DepartmentID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.employees.UpdateEmployee(r.Context(), id, req.Name, req.Document, departmentID); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) activateEmployee(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	id, err := parseID(pathParams, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req activateEmployeeRequest
	if !h.decode(w, r, &req) {
		return
	}
	departmentID, err := parseDepartmentID(req.DepartmentID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.employees.ActivateEmployee(r.Context(), id, departmentID); err != nil {
		h.writeError(w, err)
		return
	}
	RecordStatusTransition("employee", "activate")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deactivateEmployee(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	id, err := parseID(pathParams, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.employees.DeactivateEmployee(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	RecordStatusTransition("employee", "deactivate")
	w.WriteHeader(http.StatusNoContent)
}

// decode reads a JSON body into v and answers 400 when it is malformed.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := h.marshaler.NewDecoder(r.Body).Decode(v); err != nil {
		msg := "malformed request body"
		if err == io.EOF {
			msg = "request body required"
		}
		h.writeStatus(w, status.New(codes.InvalidArgument, msg), reasonMalformedRequestBody)
		return false
	}
	return true
}
