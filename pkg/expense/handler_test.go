package expense

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gestorweb/gestor/internal/notify"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withNotices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := notify.WithNotifier(r.Context(), notify.NewCollector())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func setupRouter(t *testing.T) *mux.Router {
	teardown := setup(t)
	t.Cleanup(teardown)
	handler := NewHandler(service)
	r := mux.NewRouter()
	r.Use(withNotices)
	r.HandleFunc("/api/expense", handler.ListExpenses).Methods("GET")
	r.HandleFunc("/api/expense", handler.CreateExpense).Methods("POST")
	r.HandleFunc("/api/expense/installments/split", handler.SplitInstallments).Methods("POST")
	r.HandleFunc("/api/expense/{expenseId}", handler.GetExpense).Methods("GET")
	r.HandleFunc("/api/expense/{expenseId}", handler.UpdateExpense).Methods("PUT")
	r.HandleFunc("/api/expense/{expenseId}", handler.DeleteExpense).Methods("DELETE")
	r.HandleFunc("/api/expense/{expenseId}/payment", handler.PayExpense).Methods("PUT")
	r.HandleFunc("/api/expense/{expenseId}/installment/{number}/payment", handler.PayInstallment).Methods("PUT")
	return r
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const installmentPayload = `{
	"description": "Notebook",
	"total_value": 300,
	"date_expense": "2025-03-01",
	"installments": [
		{"number": 1, "value": 100, "due_date": "2025-03-14"},
		{"number": 2, "value": "100", "due_date": "2025-03-15"},
		{"number": 3, "value": 100.00, "due_date": "2025-03-20", "payment_date": "2025-03-15"}
	]
}`

func TestHandler_CreateExpense(t *testing.T) {
	t.Run("should create and evaluate expense", func(t *testing.T) {
		r := setupRouter(t)

		// when
		w := serve(r, http.MethodPost, "/api/expense", installmentPayload)

		// then
		require.Equal(t, http.StatusCreated, w.Code)
		var response ExpenseResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, StatusOverdue, response.Expense.Status)
		assert.Equal(t, "2025-03-01", response.Expense.ExpenseDate)
		require.Len(t, response.Expense.Installments, 3)
		assert.Equal(t, "1 dia vencido", response.Expense.Installments[0].DaysText)
		assert.Equal(t, "Vence hoje", response.Expense.Installments[1].DaysText)
		assert.Equal(t, StatusPaid, response.Expense.Installments[2].Status)
		require.NotNil(t, response.Expense.Summary)
		assert.Equal(t, 1, response.Expense.Summary.PaidCount)
		require.Len(t, response.Notices, 1)
	})

	t.Run("should reject unbalanced installments with error notice", func(t *testing.T) {
		r := setupRouter(t)
		payload := strings.Replace(installmentPayload, `"total_value": 300`, `"total_value": 301`, 1)

		// when
		w := serve(r, http.MethodPost, "/api/expense", payload)

		// then
		require.Equal(t, http.StatusBadRequest, w.Code)
		var response ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		require.Len(t, response.Notices, 1)
		assert.Equal(t, notify.LevelError, response.Notices[0].Level)
		assert.Zero(t, repoStub.Calls())
	})

	t.Run("should reject malformed dates", func(t *testing.T) {
		r := setupRouter(t)

		w := serve(r, http.MethodPost, "/api/expense", `{"total_value": 10, "due_date": "amanhã"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_Payments(t *testing.T) {
	r := setupRouter(t)
	w := serve(r, http.MethodPost, "/api/expense", installmentPayload)
	require.Equal(t, http.StatusCreated, w.Code)
	var created ExpenseResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	base := "/api/expense/" + strconv.Itoa(created.Expense.Id)

	t.Run("should pay installment on given date", func(t *testing.T) {
		w := serve(r, http.MethodPut, base+"/installment/1/payment", `{"payment_date": "2025-03-14"}`)

		require.Equal(t, http.StatusOK, w.Code)
		var response ExpenseResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "2025-03-14", response.Expense.Installments[0].PaymentDate)
		assert.Equal(t, StatusPending, response.Expense.Status)
	})

	t.Run("should return 404 for unknown installment", func(t *testing.T) {
		w := serve(r, http.MethodPut, base+"/installment/7/payment", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("should pay whole expense today without body", func(t *testing.T) {
		w := serve(r, http.MethodPut, base+"/payment", "")

		require.Equal(t, http.StatusOK, w.Code)
		var response ExpenseResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, StatusPaid, response.Expense.Status)
		assert.Equal(t, "2025-03-15", response.Expense.PaymentDate)
		assert.Equal(t, BadgeNone, response.Expense.Badge)
	})

	t.Run("should filter list by status", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/api/expense?status=paid", "")
		require.Equal(t, http.StatusOK, w.Code)
		var expenses []ExpenseDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&expenses))
		assert.Len(t, expenses, 1)

		w = serve(r, http.MethodGet, "/api/expense?status=overdue", "")
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.NewDecoder(w.Body).Decode(&expenses))
		assert.Empty(t, expenses)
	})

	t.Run("should delete expense", func(t *testing.T) {
		w := serve(r, http.MethodDelete, base, "")
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = serve(r, http.MethodGet, base, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandler_SplitInstallments(t *testing.T) {
	r := setupRouter(t)

	w := serve(r, http.MethodPost, "/api/expense/installments/split",
		`{"total_value": 100, "count": 3, "first_due_date": "2025-01-31"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var installments []InstallmentDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&installments))
	require.Len(t, installments, 3)
	assert.Equal(t, "2025-02-28", installments[1].DueDate)
	assert.True(t, money("33.34").Equal(installments[2].Value))

	w = serve(r, http.MethodPost, "/api/expense/installments/split", `{"total_value": 100, "count": 0, "first_due_date": "2025-01-31"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, http.MethodPost, "/api/expense/installments/split", `{"total_value": 100, "count": 2}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
