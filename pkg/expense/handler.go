package expense

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gestorweb/gestor/internal/notify"
	"github.com/gestorweb/gestor/internal/utils"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type InstallmentDTO struct {
	Number      int             `json:"number"`
	Total       int             `json:"total"`
	Value       decimal.Decimal `json:"value"`
	DueDate     string          `json:"due_date,omitempty"`
	PaymentDate string          `json:"payment_date,omitempty"`
	Status      Status          `json:"status,omitempty"`
	DaysOverdue *int            `json:"days_overdue,omitempty"`
	DaysText    string          `json:"days_text,omitempty"`
	Badge       Badge           `json:"badge,omitempty"`
}

type SummaryDTO struct {
	Count       int             `json:"count"`
	PaidCount   int             `json:"paid_count"`
	Total       decimal.Decimal `json:"total"`
	Paid        decimal.Decimal `json:"paid"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Overdue     decimal.Decimal `json:"overdue"`
}

type ExpenseDTO struct {
	Id           int              `json:"id"`
	Description  string           `json:"description"`
	TotalValue   decimal.Decimal  `json:"total_value"`
	ExpenseDate  string           `json:"date_expense"`
	DueDate      string           `json:"due_date,omitempty"`
	PaymentDate  string           `json:"payment_date,omitempty"`
	Recurring    bool             `json:"recurring"`
	Unforeseen   bool             `json:"unforeseen"`
	Fixed        bool             `json:"fixed"`
	Installments []InstallmentDTO `json:"installments"`
	Status       Status           `json:"status,omitempty"`
	DaysOverdue  *int             `json:"days_overdue,omitempty"`
	DaysText     string           `json:"days_text,omitempty"`
	Badge        Badge            `json:"badge,omitempty"`
	Summary      *SummaryDTO      `json:"summary,omitempty"`
}

type ExpenseResponse struct {
	Expense ExpenseDTO      `json:"expense"`
	Notices []notify.Notice `json:"notices"`
}

type ErrorResponse struct {
	Error   string          `json:"error"`
	Notices []notify.Notice `json:"notices"`
}

type PaymentDTO struct {
	PaymentDate string `json:"payment_date"`
}

type SplitRequestDTO struct {
	TotalValue   decimal.Decimal `json:"total_value"`
	Count        int             `json:"count"`
	FirstDueDate string          `json:"first_due_date"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

// ListExpenses godoc
// @Summary List expenses with their due status
// @Tags Expense
// @Produce json
// @Param status query string false "paid, pending or overdue"
// @Success 200 {array} ExpenseDTO
// @Router /api/expense [get]
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	status := Status(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		http.Error(w, "invalid status filter", http.StatusBadRequest)
		return
	}

	expenses, err := h.service.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	dtos := make([]ExpenseDTO, 0, len(expenses))
	for _, e := range expenses {
		evaluated := h.service.Evaluate(e)
		if status != "" && evaluated.Status != status {
			continue
		}
		dtos = append(dtos, ToDTO(evaluated))
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GetExpense godoc
// @Summary Get an expense by ID
// @Tags Expense
// @Produce json
// @Param expenseId path int true "Expense ID"
// @Success 200 {object} ExpenseDTO
// @Failure 404 {string} string "Expense not found"
// @Router /api/expense/{expenseId} [get]
func (h *Handler) GetExpense(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, err := strconv.Atoi(mux.Vars(r)["expenseId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	expense, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ToDTO(h.service.Evaluate(expense))); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// CreateExpense godoc
// @Summary Create an expense
// @Description Installments must each have a value and a due date and add up to the total.
// @Tags Expense
// @Accept json
// @Produce json
// @Param expense body ExpenseDTO true "Expense"
// @Success 201 {object} ExpenseResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/expense [post]
func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating expense")
	w.Header().Set("Content-Type", "application/json")
	var dto ExpenseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	expense, err := FromDTO(dto)
	if err != nil {
		writeError(w, r, err)
		return
	}
	created, err := h.service.Create(r.Context(), expense)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeResponse(w, r, http.StatusCreated, created)
}

// UpdateExpense godoc
// @Summary Update an expense and replace its installments
// @Tags Expense
// @Accept json
// @Produce json
// @Param expenseId path int true "Expense ID"
// @Param expense body ExpenseDTO true "Expense"
// @Success 200 {object} ExpenseResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/expense/{expenseId} [put]
func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, err := strconv.Atoi(mux.Vars(r)["expenseId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var dto ExpenseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.Id != 0 && dto.Id != id {
		http.Error(w, "Invalid expense id in request body", http.StatusBadRequest)
		return
	}
	expense, err := FromDTO(dto)
	if err != nil {
		writeError(w, r, err)
		return
	}
	expense.Id = id
	updated, err := h.service.Update(r.Context(), expense)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeResponse(w, r, http.StatusOK, updated)
}

// DeleteExpense godoc
// @Summary Delete an expense with its installments
// @Tags Expense
// @Param expenseId path int true "Expense ID"
// @Success 204 "No Content"
// @Failure 404 {string} string "Expense not found"
// @Router /api/expense/{expenseId} [delete]
func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["expenseId"])
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
		http.Error(w, "expense not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PayExpense godoc
// @Summary Register the payment of an expense
// @Description Without payment_date the payment is registered today. Unpaid installments are paid too.
// @Tags Expense
// @Accept json
// @Produce json
// @Param expenseId path int true "Expense ID"
// @Param payment body PaymentDTO false "Payment"
// @Success 200 {object} ExpenseResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/expense/{expenseId}/payment [put]
func (h *Handler) PayExpense(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, err := strconv.Atoi(mux.Vars(r)["expenseId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	payment, err := decodePayment(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	paid, err := h.service.PayExpense(r.Context(), id, payment)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeResponse(w, r, http.StatusOK, paid)
}

// PayInstallment godoc
// @Summary Register the payment of one installment
// @Tags Expense
// @Accept json
// @Produce json
// @Param expenseId path int true "Expense ID"
// @Param number path int true "Installment number"
// @Param payment body PaymentDTO false "Payment"
// @Success 200 {object} ExpenseResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/expense/{expenseId}/installment/{number}/payment [put]
func (h *Handler) PayInstallment(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["expenseId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	number, err := strconv.Atoi(vars["number"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	payment, err := decodePayment(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	paid, err := h.service.PayInstallment(r.Context(), id, number, payment)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeResponse(w, r, http.StatusOK, paid)
}

// SplitInstallments godoc
// @Summary Split a total into monthly installments
// @Description Nothing is stored. The last installment takes the rounding remainder.
// @Tags Expense
// @Accept json
// @Produce json
// @Param split body SplitRequestDTO true "Split request"
// @Success 200 {array} InstallmentDTO
// @Failure 400 {object} ErrorResponse
// @Router /api/expense/installments/split [post]
func (h *Handler) SplitInstallments(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var dto SplitRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	firstDue, err := utils.ParseDate(dto.FirstDueDate)
	if err != nil || firstDue == nil {
		http.Error(w, "first_due_date is required (YYYY-MM-DD)", http.StatusBadRequest)
		return
	}
	installments, err := SplitInstallments(dto.TotalValue, dto.Count, *firstDue)
	if err != nil {
		writeError(w, r, err)
		return
	}
	dtos := make([]InstallmentDTO, 0, len(installments))
	for _, i := range installments {
		dtos = append(dtos, installmentToDTO(i))
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) writeResponse(w http.ResponseWriter, r *http.Request, status int, expense Expense) {
	w.WriteHeader(status)
	response := ExpenseResponse{
		Expense: ToDTO(h.service.Evaluate(expense)),
		Notices: notify.NoticesFrom(r.Context()),
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Errorf("failed to encode expense response: %v", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrExpenseNotFound), errors.Is(err, ErrInstallmentNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrInvalidExpense), errors.Is(err, ErrInvalidInstallments):
		status = http.StatusBadRequest
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	response := ErrorResponse{Error: err.Error(), Notices: notify.NoticesFrom(r.Context())}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Errorf("failed to encode error response: %v", err)
	}
}

func decodePayment(r *http.Request) (*time.Time, error) {
	var dto PaymentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return utils.ParseDate(dto.PaymentDate)
}

func FromDTO(dto ExpenseDTO) (Expense, error) {
	expense := Expense{
		Id:          dto.Id,
		Description: dto.Description,
		TotalValue:  dto.TotalValue,
		Recurring:   dto.Recurring,
		Unforeseen:  dto.Unforeseen,
		Fixed:       dto.Fixed,
	}
	expenseDate, err := utils.ParseDate(dto.ExpenseDate)
	if err != nil {
		return Expense{}, fmt.Errorf("%w: date_expense: %w", ErrInvalidExpense, err)
	}
	if expenseDate != nil {
		expense.ExpenseDate = *expenseDate
	}
	if expense.DueDate, err = utils.ParseDate(dto.DueDate); err != nil {
		return Expense{}, fmt.Errorf("%w: due_date: %w", ErrInvalidExpense, err)
	}
	if expense.PaymentDate, err = utils.ParseDate(dto.PaymentDate); err != nil {
		return Expense{}, fmt.Errorf("%w: payment_date: %w", ErrInvalidExpense, err)
	}

	for _, i := range dto.Installments {
		installment := Installment{Number: i.Number, Total: i.Total, Value: i.Value}
		if installment.DueDate, err = utils.ParseDate(i.DueDate); err != nil {
			return Expense{}, fmt.Errorf("%w: installment %d due_date: %w", ErrInvalidInstallments, i.Number, err)
		}
		if installment.PaymentDate, err = utils.ParseDate(i.PaymentDate); err != nil {
			return Expense{}, fmt.Errorf("%w: installment %d payment_date: %w", ErrInvalidInstallments, i.Number, err)
		}
		expense.Installments = append(expense.Installments, installment)
	}
	return expense, nil
}

func ToDTO(evaluated Evaluated) ExpenseDTO {
	e := evaluated.Expense
	dto := ExpenseDTO{
		Id:           e.Id,
		Description:  e.Description,
		TotalValue:   e.TotalValue,
		ExpenseDate:  utils.FormatDate(&e.ExpenseDate),
		DueDate:      utils.FormatDate(e.DueDate),
		PaymentDate:  utils.FormatDate(e.PaymentDate),
		Recurring:    e.Recurring,
		Unforeseen:   e.Unforeseen,
		Fixed:        e.Fixed,
		Installments: make([]InstallmentDTO, 0, len(evaluated.Installments)),
		Status:       evaluated.Status,
		DaysOverdue:  evaluated.DaysOverdue,
		DaysText:     evaluated.DaysText,
		Badge:        evaluated.Badge,
		Summary: &SummaryDTO{
			Count:       evaluated.Summary.Count,
			PaidCount:   evaluated.Summary.PaidCount,
			Total:       evaluated.Summary.Total,
			Paid:        evaluated.Summary.Paid,
			Outstanding: evaluated.Summary.Outstanding,
			Overdue:     evaluated.Summary.Overdue,
		},
	}
	for _, i := range evaluated.Installments {
		installment := installmentToDTO(i.Installment)
		installment.Status = i.Status
		installment.DaysOverdue = i.DaysOverdue
		installment.DaysText = i.DaysText
		installment.Badge = i.Badge
		dto.Installments = append(dto.Installments, installment)
	}
	return dto
}

func installmentToDTO(i Installment) InstallmentDTO {
	return InstallmentDTO{
		Number:      i.Number,
		Total:       i.Total,
		Value:       i.Value,
		DueDate:     utils.FormatDate(i.DueDate),
		PaymentDate: utils.FormatDate(i.PaymentDate),
	}
}
