package app

import (
	"github.com/gestorweb/gestor/internal/config"
	"github.com/gestorweb/gestor/internal/event_bus"
	"github.com/gestorweb/gestor/internal/poll"
	"github.com/gestorweb/gestor/internal/utils"
	"github.com/gestorweb/gestor/pkg/budget"
	"github.com/gestorweb/gestor/pkg/client"
	"github.com/gestorweb/gestor/pkg/employee"
	"github.com/gestorweb/gestor/pkg/expense"
	"github.com/gestorweb/gestor/pkg/order_service"
	"github.com/gestorweb/gestor/pkg/stats"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories groups the storage layer so it can be swapped for stubs.
type Repositories struct {
	Client       client.Repository
	Employee     employee.Repository
	Budget       budget.Repository
	OrderService order_service.Repository
	Expense      expense.Repository
}

func NewRepositories(db *pgxpool.Pool) Repositories {
	return Repositories{
		Client:       client.NewRepository(db),
		Employee:     employee.NewRepository(db),
		Budget:       budget.NewRepository(db),
		OrderService: order_service.NewRepository(db),
		Expense:      expense.NewRepository(db),
	}
}

// Dependencies holds all constructed services and handlers.
type Dependencies struct {
	Clock    utils.Clock
	EventBus *event_bus.EventBus

	ClientService client.Service
	ClientHandler *client.Handler

	EmployeeService employee.Service
	EmployeeHandler *employee.Handler

	BudgetService budget.Service
	BudgetHandler *budget.Handler

	OrderServiceGenerator *order_service.Generator
	OrderServiceService   order_service.Service
	OrderServiceHandler   *order_service.Handler

	ExpenseService expense.Service
	ExpenseHandler *expense.Handler

	StatsService stats.StatsService
	StatsHandler *stats.StatsHandler
}

// BuildDependencies constructs services and handlers on top of repos.
// The order of service module subscribes to budget events here, so it must
// be built before any budget is saved.
func BuildDependencies(repos Repositories, cfg config.Application, clock utils.Clock) *Dependencies {
	eventBus := event_bus.NewEventBus()

	clientService := client.NewService(repos.Client)
	employeeService := employee.NewService(repos.Employee)

	generator := order_service.NewGenerator(clock, cfg.OrderService.Locale)
	orderServiceService := order_service.NewService(
		repos.OrderService, clientService, employeeService, generator, clock, eventBus,
	)

	budgetService := budget.NewService(repos.Budget, eventBus, clock, poll.Options{
		Interval: cfg.OrderService.ApprovalPoll.Interval,
		Timeout:  cfg.OrderService.ApprovalPoll.Timeout,
	})

	expenseService := expense.NewService(repos.Expense, clock)
	statsService := stats.NewStatsServiceImpl(expenseService, clock)

	return &Dependencies{
		Clock:    clock,
		EventBus: eventBus,

		ClientService: clientService,
		ClientHandler: client.NewHandler(clientService),

		EmployeeService: employeeService,
		EmployeeHandler: employee.NewHandler(employeeService),

		BudgetService: budgetService,
		BudgetHandler: budget.NewHandler(budgetService),

		OrderServiceGenerator: generator,
		OrderServiceService:   orderServiceService,
		OrderServiceHandler:   order_service.NewHandler(orderServiceService),

		ExpenseService: expenseService,
		ExpenseHandler: expense.NewHandler(expenseService),

		StatsService: statsService,
		StatsHandler: stats.NewStatsHandler(statsService, stats.NewCsvStatsRenderer()),
	}
}
