package employee

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

type EmployeeDTO struct {
	Id   int    `json:"id"`
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

// ListEmployees godoc
// @Summary List employees
// @Tags Employee
// @Produce json
// @Success 200 {array} EmployeeDTO
// @Router /api/employee [get]
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	employees, err := h.service.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	dtos := make([]EmployeeDTO, 0, len(employees))
	for _, e := range employees {
		dtos = append(dtos, EmployeeDTO{Id: e.Id, Name: e.Name, Role: e.Role})
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GetEmployee godoc
// @Summary Get an employee by ID
// @Tags Employee
// @Produce json
// @Param employeeId path int true "Employee ID"
// @Success 200 {object} EmployeeDTO
// @Failure 404 {string} string "Employee not found"
// @Router /api/employee/{employeeId} [get]
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, err := strconv.Atoi(mux.Vars(r)["employeeId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	e, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrEmployeeNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := json.NewEncoder(w).Encode(EmployeeDTO{Id: e.Id, Name: e.Name, Role: e.Role}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// CreateEmployee godoc
// @Summary Create an employee
// @Tags Employee
// @Accept json
// @Produce json
// @Param employee body EmployeeDTO true "Employee"
// @Success 201 {object} EmployeeDTO
// @Failure 400 {string} string "Bad Request"
// @Router /api/employee [post]
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var dto EmployeeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	created, err := h.service.Create(r.Context(), Employee{Name: dto.Name, Role: dto.Role})
	if err != nil {
		if errors.Is(err, ErrInvalidEmployee) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(EmployeeDTO{Id: created.Id, Name: created.Name, Role: created.Role}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
