package handlers

import (
	"errors"
	"fmt"
	"net/http"

	e "github.com/gartstein/staffing/internal/staffing/errors"
	"github.com/gartstein/staffing/internal/staffing/models"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	reasonNotFound             = "NOT_FOUND"
	reasonInvalidInput         = "INVALID_INPUT"
	reasonHasActiveEmployees   = "DEPARTMENT_HAS_ACTIVE_EMPLOYEES"
	reasonInternal             = "INTERNAL"
	reasonMalformedRequestBody = "MALFORMED_BODY"
)

// departmentRequest is the body of department create and update. A status
// sent by the client is accepted and ignored.
type departmentRequest struct {
	Name    string `json:"name"`
	Acronym string `json:"acronym"`
	Status  string `json:"status,omitempty"`
}

type employeeRequest struct {
	Name         string `json:"name"`
	Document     string `json:"document"`
	DepartmentID string `json:"department_id,omitempty"`
	Status       string `json:"status,omitempty"`
}

type activateEmployeeRequest struct {
	DepartmentID string `json:"department_id"`
}

type departmentResponse struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Acronym string        `json:"acronym"`
	Status  models.Status `json:"status"`
}

// departmentDetailResponse always carries the active employees, empty or not.
type departmentDetailResponse struct {
	departmentResponse
	Employees []employeeResponse `json:"employees"`
}

type employeeResponse struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Document     string        `json:"document"`
	DepartmentID string        `json:"department_id"`
	Status       models.Status `json:"status"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorDetail `json:"error"`
}

func departmentToResponse(d *models.Department) departmentResponse {
	return departmentResponse{
		ID:      d.ID.String(),
		Name:    d.Name,
		Acronym: d.Acronym,
		Status:  d.Status,
	}
}

func departmentToDetailResponse(d *models.Department) departmentDetailResponse {
	return departmentDetailResponse{
		departmentResponse: departmentToResponse(d),
		Employees:          employeesToResponse(d.Employees),
	}
}

func departmentsToResponse(ds []models.Department) []departmentResponse {
	out := make([]departmentResponse, 0, len(ds))
	for i := range ds {
		out = append(out, departmentToResponse(&ds[i]))
	}
	return out
}

func employeeToResponse(em *models.Employee) employeeResponse {
	return employeeResponse{
		ID:           em.ID.String(),
		Name:         em.Name,
		Document:     em.Document,
		DepartmentID: em.DepartmentID.String(),
		Status:       em.Status,
	}
}

func employeesToResponse(ems []models.Employee) []employeeResponse {
	out := make([]employeeResponse, 0, len(ems))
	for i := range ems {
		out = append(out, employeeToResponse(&ems[i]))
	}
	return out
}

// parseID reads a uuid from the path parameters.
func parseID(pathParams map[string]string, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(pathParams[name])
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s", e.ErrInvalidInput, name)
	}
	return id, nil
}

func parseDepartmentID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid department_id", e.ErrInvalidInput)
	}
	return id, nil
}

// mapServiceError maps domain or repository errors to a gRPC status and a
// machine readable reason. A blocked deactivation is reported as NotFound
// but keeps its own reason.
func (h *Handler) mapServiceError(err error) (*status.Status, string) {
	switch {
	case errors.Is(err, e.ErrDepartmentHasActiveEmployees):
		return status.New(codes.NotFound, err.Error()), reasonHasActiveEmployees
	case errors.Is(err, e.ErrNotFound):
		return status.New(codes.NotFound, err.Error()), reasonNotFound
	case errors.Is(err, e.ErrInvalidInput):
		return status.New(codes.InvalidArgument, err.Error()), reasonInvalidInput
	default:
		h.logger.Error("Internal server error", zap.Error(err))
		return status.New(codes.Internal, "internal server error"), reasonInternal
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	st, reason := h.mapServiceError(err)
	h.writeStatus(w, st, reason)
}

func (h *Handler) writeStatus(w http.ResponseWriter, st *status.Status, reason string) {
	h.writeJSON(w, runtime.HTTPStatusFromCode(st.Code()), errorResponse{
		Error: errorDetail{
			Code:    st.Code().String(),
			Reason:  reason,
			Message: st.Message(),
		},
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	body, err := h.marshaler.Marshal(v)
	if err != nil {
		h.logger.Error("Failed to marshal response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", h.marshaler.ContentType(v))
	w.WriteHeader(code)
	if _, err := w.Write(body); err != nil {
		h.logger.Warn("Failed to write response", zap.Error(err))
	}
}
