package app

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Clients
	r.HandleFunc("/api/client", deps.ClientHandler.ListClients).Methods("GET")
	r.HandleFunc("/api/client", deps.ClientHandler.CreateClient).Methods("POST")
	r.HandleFunc("/api/client/{clientId}", deps.ClientHandler.GetClient).Methods("GET")
	r.HandleFunc("/api/client/{clientId}", deps.ClientHandler.UpdateClient).Methods("PUT")
	r.HandleFunc("/api/client/{clientId}", deps.ClientHandler.DeleteClient).Methods("DELETE")

	// Employees
	r.HandleFunc("/api/employee", deps.EmployeeHandler.ListEmployees).Methods("GET")
	r.HandleFunc("/api/employee", deps.EmployeeHandler.CreateEmployee).Methods("POST")
	r.HandleFunc("/api/employee/{employeeId}", deps.EmployeeHandler.GetEmployee).Methods("GET")

	// Budgets
	r.HandleFunc("/api/budget", deps.BudgetHandler.ListBudgets).Methods("GET")
	r.HandleFunc("/api/budget", deps.BudgetHandler.CreateBudget).Methods("POST")
	r.HandleFunc("/api/budget/{budgetId}", deps.BudgetHandler.GetBudget).Methods("GET")
	r.HandleFunc("/api/budget/{budgetId}", deps.BudgetHandler.UpdateBudget).Methods("PUT")
	r.HandleFunc("/api/budget/{budgetId}", deps.BudgetHandler.DeleteBudget).Methods("DELETE")
	r.HandleFunc("/api/budget/{budgetId}/status", deps.BudgetHandler.UpdateStatus).Methods("PUT")
	r.HandleFunc("/api/budget/{budgetId}/client", deps.BudgetHandler.ChangeClient).Methods("PUT")

	// Orders of service
	r.HandleFunc("/api/order-service", deps.OrderServiceHandler.ListOrders).Methods("GET")
	r.HandleFunc("/api/order-service/preview", deps.OrderServiceHandler.Preview).Methods("POST")
	r.HandleFunc("/api/order-service/{osId}", deps.OrderServiceHandler.GetOrder).Methods("GET")
	r.HandleFunc("/api/order-service/{osId}", deps.OrderServiceHandler.UpdateOrder).Methods("PUT")

	// Expenses
	r.HandleFunc("/api/expense", deps.ExpenseHandler.ListExpenses).Methods("GET")
	r.HandleFunc("/api/expense", deps.ExpenseHandler.CreateExpense).Methods("POST")
	r.HandleFunc("/api/expense/installments/split", deps.ExpenseHandler.SplitInstallments).Methods("POST")
	r.HandleFunc("/api/expense/{expenseId}", deps.ExpenseHandler.GetExpense).Methods("GET")
	r.HandleFunc("/api/expense/{expenseId}", deps.ExpenseHandler.UpdateExpense).Methods("PUT")
	r.HandleFunc("/api/expense/{expenseId}", deps.ExpenseHandler.DeleteExpense).Methods("DELETE")
	r.HandleFunc("/api/expense/{expenseId}/payment", deps.ExpenseHandler.PayExpense).Methods("PUT")
	r.HandleFunc("/api/expense/{expenseId}/installment/{number}/payment", deps.ExpenseHandler.PayInstallment).Methods("PUT")

	// Stats
	r.HandleFunc("/api/stats/expenses", deps.StatsHandler.GetStats).Methods("GET")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("GET")
}

// NewRouter builds a router with middleware and every route registered.
func NewRouter(deps *Dependencies) *mux.Router {
	r := mux.NewRouter()
	SetupMiddleware(r)
	RegisterRoutes(r, deps)
	return r
}
