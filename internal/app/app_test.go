package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gestorweb/gestor/internal/config"
	"github.com/gestorweb/gestor/internal/notify"
	"github.com/gestorweb/gestor/internal/utils"
	"github.com/gestorweb/gestor/pkg/budget"
	"github.com/gestorweb/gestor/pkg/client"
	"github.com/gestorweb/gestor/pkg/employee"
	"github.com/gestorweb/gestor/pkg/expense"
	"github.com/gestorweb/gestor/pkg/order_service"
	"github.com/gestorweb/gestor/pkg/stats"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Application {
	return config.Application{
		Addr: ":0",
		OrderService: config.OrderService{
			Locale: "pt_BR",
			ApprovalPoll: config.ApprovalPoll{
				Interval: 5 * time.Millisecond,
				Timeout:  100 * time.Millisecond,
			},
		},
	}
}

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	repos := Repositories{
		Client:       client.NewRepositoryStub(),
		Employee:     employee.NewRepositoryStub(),
		Budget:       budget.NewRepositoryStub(),
		OrderService: order_service.NewRepositoryStub(),
		Expense:      expense.NewRepositoryStub(),
	}
	clock := &utils.MockClock{FixedNow: time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)}
	return NewRouter(BuildDependencies(repos, testConfig(), clock))
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createClient(t *testing.T, r http.Handler, name, reference string) int {
	t.Helper()
	w := serve(r, http.MethodPost, "/api/client", `{"name": "`+name+`", "reference": "`+reference+`"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created client.ClientDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	return created.Id
}

func decodeBudget(t *testing.T, w *httptest.ResponseRecorder) budget.BudgetResponse {
	t.Helper()
	var response budget.BudgetResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	return response
}

func listOrders(t *testing.T, r http.Handler) []order_service.OrderOfServiceDTO {
	t.Helper()
	w := serve(r, http.MethodGet, "/api/order-service", "")
	require.Equal(t, http.StatusOK, w.Code)
	var orders []order_service.OrderOfServiceDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&orders))
	return orders
}

func messages(notices []notify.Notice) []string {
	result := make([]string, 0, len(notices))
	for _, n := range notices {
		result = append(result, n.Message)
	}
	return result
}

func TestApplication_BudgetApproval(t *testing.T) {
	t.Run("should generate order of service when budget is approved", func(t *testing.T) {
		// given
		r := setupRouter(t)
		clientId := createClient(t, r, "Acme Ltda", "acm")
		w := serve(r, http.MethodPost, "/api/budget",
			`{"budget_number": 42, "client_id": `+strconv.Itoa(clientId)+`, "value": "1500.50"}`)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		created := decodeBudget(t, w)

		// when
		w = serve(r, http.MethodPut, "/api/budget/"+strconv.Itoa(created.Budget.Id)+"/status", `{"status": "approved"}`)

		// then
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		approved := decodeBudget(t, w)
		assert.Equal(t, budget.StatusApproved, approved.Budget.Status)
		assert.Contains(t, messages(approved.Notices), "OS ACM42MAR25 gerada")

		orders := listOrders(t, r)
		require.Len(t, orders, 1)
		assert.Equal(t, "ACM42MAR25", orders[0].Name)
		assert.Equal(t, created.Budget.Id, orders[0].BudgetId)
		assert.Equal(t, order_service.StatusOpen, orders[0].Status)
	})

	t.Run("should rename order of service when client of approved budget changes", func(t *testing.T) {
		// given
		r := setupRouter(t)
		acme := createClient(t, r, "Acme Ltda", "ACM")
		beta := createClient(t, r, "Beta Servicos", "")
		w := serve(r, http.MethodPost, "/api/budget",
			`{"budget_number": "42", "client_id": `+strconv.Itoa(acme)+`, "value": 10}`)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		id := strconv.Itoa(decodeBudget(t, w).Budget.Id)
		w = serve(r, http.MethodPut, "/api/budget/"+id+"/status", `{"status": "approved"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		// when
		w = serve(r, http.MethodPut, "/api/budget/"+id+"/client", `{"client_id": `+strconv.Itoa(beta)+`}`)

		// then
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		changed := decodeBudget(t, w)
		assert.Contains(t, messages(changed.Notices), "OS ACM42MAR25 renomeada para BET42MAR25")

		orders := listOrders(t, r)
		require.Len(t, orders, 1)
		assert.Equal(t, "BET42MAR25", orders[0].Name)
	})

	t.Run("should not generate order of service for pending budget", func(t *testing.T) {
		// given
		r := setupRouter(t)
		clientId := createClient(t, r, "Acme Ltda", "ACM")

		// when
		w := serve(r, http.MethodPost, "/api/budget",
			`{"budget_number": 7, "client_id": `+strconv.Itoa(clientId)+`}`)

		// then
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Empty(t, listOrders(t, r))
	})
}

func TestApplication_Middleware(t *testing.T) {
	t.Run("should assign a request id", func(t *testing.T) {
		// given
		r := setupRouter(t)

		// when
		w := serve(r, http.MethodGet, "/health", "")

		// then
		assert.Equal(t, http.StatusOK, w.Code)
		_, err := uuid.Parse(w.Header().Get(RequestIdHeader))
		assert.NoError(t, err)
	})

	t.Run("should keep caller request id", func(t *testing.T) {
		// given
		r := setupRouter(t)
		id := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/api/client", nil)
		req.Header.Set(RequestIdHeader, id)
		w := httptest.NewRecorder()

		// when
		r.ServeHTTP(w, req)

		// then
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, id, w.Header().Get(RequestIdHeader))
	})

	t.Run("should replace malformed request id", func(t *testing.T) {
		// given
		r := setupRouter(t)
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(RequestIdHeader, "not-a-uuid")
		w := httptest.NewRecorder()

		// when
		r.ServeHTTP(w, req)

		// then
		assert.NotEqual(t, "not-a-uuid", w.Header().Get(RequestIdHeader))
	})

	t.Run("should turn panics into internal server error", func(t *testing.T) {
		// given
		handler := recoverMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))

		// when
		w := serve(handler, http.MethodGet, "/", "")

		// then
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "internal server error")
	})
}

func TestApplication_ExpenseStats(t *testing.T) {
	t.Run("should report expenses created through the api", func(t *testing.T) {
		// given
		r := setupRouter(t)
		w := serve(r, http.MethodPost, "/api/expense",
			`{"description": "Aluguel", "total_value": "1200", "due_date": "2025-03-10"}`)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		// when
		w = serve(r, http.MethodGet, "/api/stats/expenses?from=2025-03-01&to=2025-03-31", "")

		// then
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var response stats.StatsSummaryDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "1200.00", response.Total)
		assert.Equal(t, "1200.00", response.Overdue)
	})
}
