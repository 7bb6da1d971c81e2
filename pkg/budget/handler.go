package budget

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gestorweb/gestor/internal/notify"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type BudgetDTO struct {
	Id               int        `json:"id"`
	Number           string     `json:"budget_number,omitempty"`
	ClientId         int        `json:"client_id,omitempty"`
	EmployeeId       int        `json:"employee_id,omitempty"`
	Type             string     `json:"type,omitempty"`
	Status           Status     `json:"status"`
	Value            string     `json:"value"`
	Description      string     `json:"description,omitempty"`
	DateStatusUpdate *time.Time `json:"date_status_update,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// BudgetResponse is returned by write endpoints, with the notices raised
// while handling the request.
type BudgetResponse struct {
	Budget  BudgetDTO       `json:"budget"`
	Notices []notify.Notice `json:"notices"`
}

type StatusDTO struct {
	Status Status `json:"status"`
}

type ClientChangeDTO struct {
	ClientId FlexInt `json:"client_id"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

// ListBudgets godoc
// @Summary List budgets
// @Tags Budget
// @Produce json
// @Param status query string false "pending, approved or rejected"
// @Param clientId query int false "Client ID"
// @Success 200 {array} BudgetDTO
// @Router /api/budget [get]
func (h *Handler) ListBudgets(w http.ResponseWriter, r *http.Request) {
	log.Debug("Listing budgets")
	w.Header().Set("Content-Type", "application/json")

	filter := Filter{Status: Status(r.URL.Query().Get("status"))}
	if filter.Status != "" && !filter.Status.Valid() {
		http.Error(w, "invalid status filter", http.StatusBadRequest)
		return
	}
	if clientId := r.URL.Query().Get("clientId"); clientId != "" {
		id, err := strconv.Atoi(clientId)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		filter.ClientId = id
	}

	budgets, err := h.service.List(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	dtos := make([]BudgetDTO, 0, len(budgets))
	for _, b := range budgets {
		dtos = append(dtos, ToDTO(b))
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GetBudget godoc
// @Summary Get a budget by ID
// @Tags Budget
// @Produce json
// @Param budgetId path int true "Budget ID"
// @Success 200 {object} BudgetDTO
// @Failure 404 {string} string "Budget not found"
// @Router /api/budget/{budgetId} [get]
func (h *Handler) GetBudget(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, err := strconv.Atoi(mux.Vars(r)["budgetId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	b, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ToDTO(b)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// CreateBudget godoc
// @Summary Create a budget
// @Description Accepts any of the legacy payload shapes; the budget is created pending.
// @Tags Budget
// @Accept json
// @Produce json
// @Param budget body RawBudget true "Budget"
// @Success 201 {object} BudgetResponse
// @Failure 400 {string} string "Bad Request"
// @Router /api/budget [post]
func (h *Handler) CreateBudget(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating budget")
	w.Header().Set("Content-Type", "application/json")
	var raw RawBudget
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	b, err := Normalize(raw)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	created, err := h.service.Create(r.Context(), b)
	if err != nil {
		writeError(w, err)
		return
	}
	writeResponse(w, r, http.StatusCreated, created)
}

// UpdateBudget godoc
// @Summary Update a budget
// @Description Updates everything but the status. Changing the client of an approved budget renames its order of service.
// @Tags Budget
// @Accept json
// @Produce json
// @Param budgetId path int true "Budget ID"
// @Param budget body RawBudget true "Budget"
// @Success 200 {object} BudgetResponse
// @Failure 400 {string} string "Bad Request"
// @Failure 404 {string} string "Budget not found"
// @Router /api/budget/{budgetId} [put]
func (h *Handler) UpdateBudget(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, err := strconv.Atoi(mux.Vars(r)["budgetId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var raw RawBudget
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	b, err := Normalize(raw)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if b.Id != 0 && b.Id != id {
		http.Error(w, "Invalid budget id in request body", http.StatusBadRequest)
		return
	}
	b.Id = id
	updated, err := h.service.Update(r.Context(), b)
	if err != nil {
		writeError(w, err)
		return
	}
	writeResponse(w, r, http.StatusOK, updated)
}

// DeleteBudget godoc
// @Summary Delete a budget
// @Tags Budget
// @Param budgetId path int true "Budget ID"
// @Success 204 "No Content"
// @Failure 404 {string} string "Budget not found"
// @Router /api/budget/{budgetId} [delete]
func (h *Handler) DeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["budgetId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	deleted, err := h.service.Delete(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "budget not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateStatus godoc
// @Summary Change the status of a budget
// @Description Approving a budget generates its order of service; problems are reported as notices.
// @Tags Budget
// @Accept json
// @Produce json
// @Param budgetId path int true "Budget ID"
// @Param status body StatusDTO true "New status"
// @Success 200 {object} BudgetResponse
// @Failure 400 {string} string "Bad Request"
// @Failure 404 {string} string "Budget not found"
// @Router /api/budget/{budgetId}/status [put]
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, err := strconv.Atoi(mux.Vars(r)["budgetId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var dto StatusDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	updated, err := h.service.UpdateStatus(r.Context(), id, dto.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeResponse(w, r, http.StatusOK, updated)
}

// ChangeClient godoc
// @Summary Change the client of a budget
// @Tags Budget
// @Accept json
// @Produce json
// @Param budgetId path int true "Budget ID"
// @Param client body ClientChangeDTO true "New client"
// @Success 200 {object} BudgetResponse
// @Failure 400 {string} string "Bad Request"
// @Failure 404 {string} string "Budget not found"
// @Router /api/budget/{budgetId}/client [put]
func (h *Handler) ChangeClient(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, err := strconv.Atoi(mux.Vars(r)["budgetId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var dto ClientChangeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.ClientId == 0 {
		http.Error(w, "client_id is required", http.StatusBadRequest)
		return
	}
	updated, err := h.service.ChangeClient(r.Context(), id, int(dto.ClientId))
	if err != nil {
		writeError(w, err)
		return
	}
	writeResponse(w, r, http.StatusOK, updated)
}

func writeResponse(w http.ResponseWriter, r *http.Request, status int, b Budget) {
	w.WriteHeader(status)
	response := BudgetResponse{Budget: ToDTO(b), Notices: notify.NoticesFrom(r.Context())}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Errorf("failed to encode budget response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBudgetNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalidBudget), errors.Is(err, ErrInvalidStatus):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func ToDTO(b Budget) BudgetDTO {
	return BudgetDTO{
		Id:               b.Id,
		Number:           b.Number,
		ClientId:         b.ClientId,
		EmployeeId:       b.EmployeeId,
		Type:             b.Type,
		Status:           b.Status,
		Value:            b.Value.StringFixed(2),
		Description:      b.Description,
		DateStatusUpdate: b.StatusUpdatedAt,
		CreatedAt:        b.CreatedAt,
	}
}
