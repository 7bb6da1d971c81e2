package order_service

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gestorweb/gestor/pkg/budget"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type OrderOfServiceDTO struct {
	Id          int       `json:"id"`
	Name        string    `json:"name"`
	BudgetId    int       `json:"budget_id"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
}

type UpdateOrderOfServiceDTO struct {
	Description string `json:"description"`
	Status      Status `json:"status"`
}

type PreviewDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ClientName  string `json:"client_name"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

// ListOrders godoc
// @Summary List orders of service
// @Tags OrderOfService
// @Produce json
// @Success 200 {array} OrderOfServiceDTO
// @Router /api/order-service [get]
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	orders, err := h.service.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	dtos := make([]OrderOfServiceDTO, 0, len(orders))
	for _, o := range orders {
		dtos = append(dtos, ToDTO(o))
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GetOrder godoc
// @Summary Get an order of service by ID
// @Tags OrderOfService
// @Produce json
// @Param osId path int true "Order of service ID"
// @Success 200 {object} OrderOfServiceDTO
// @Failure 404 {string} string "Order of service not found"
// @Router /api/order-service/{osId} [get]
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, err := strconv.Atoi(mux.Vars(r)["osId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	order, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ToDTO(order)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// UpdateOrder godoc
// @Summary Update description and status of an order of service
// @Tags OrderOfService
// @Accept json
// @Produce json
// @Param osId path int true "Order of service ID"
// @Param order body UpdateOrderOfServiceDTO true "Order of service"
// @Success 200 {object} OrderOfServiceDTO
// @Failure 400 {string} string "Bad Request"
// @Failure 404 {string} string "Order of service not found"
// @Router /api/order-service/{osId} [put]
func (h *Handler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, err := strconv.Atoi(mux.Vars(r)["osId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var dto UpdateOrderOfServiceDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	updated, err := h.service.Update(r.Context(), OrderOfService{Id: id, Description: dto.Description, Status: dto.Status})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Preview godoc
// @Summary Preview the order of service generated for a budget
// @Description Nothing is stored.
// @Tags OrderOfService
// @Accept json
// @Produce json
// @Param budget body budget.RawBudget true "Budget"
// @Success 200 {object} PreviewDTO
// @Failure 400 {string} string "Bad Request"
// @Router /api/order-service/preview [post]
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var raw budget.RawBudget
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	b, err := budget.Normalize(raw)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	generated, err := h.service.Preview(r.Context(), b)
	if err != nil {
		log.Errorf("failed to preview order of service: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	dto := PreviewDTO{Name: generated.Name, Description: generated.Description, ClientName: generated.ClientName}
	if err := json.NewEncoder(w).Encode(dto); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrOrderOfServiceNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalidOrderOfService):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func ToDTO(o OrderOfService) OrderOfServiceDTO {
	return OrderOfServiceDTO{
		Id:          o.Id,
		Name:        o.Name,
		BudgetId:    o.BudgetId,
		Date:        o.Date,
		Description: o.Description,
		Status:      o.Status,
	}
}
