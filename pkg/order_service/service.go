package order_service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gestorweb/gestor/internal/event_bus"
	"github.com/gestorweb/gestor/internal/notify"
	"github.com/gestorweb/gestor/internal/utils"
	"github.com/gestorweb/gestor/pkg/budget"
	"github.com/gestorweb/gestor/pkg/client"
	"github.com/gestorweb/gestor/pkg/employee"
	log "github.com/sirupsen/logrus"
)

var ErrInvalidOrderOfService = errors.New("invalid order of service")

type Service interface {
	List(ctx context.Context) ([]OrderOfService, error)
	Get(ctx context.Context, id int) (OrderOfService, error)
	// Update changes the description and status; the name is owned by the generator.
	Update(ctx context.Context, order OrderOfService) (OrderOfService, error)
	Preview(ctx context.Context, b budget.Budget) (Generated, error)
	// GenerateForBudget creates the order of service of an approved budget, or
	// renames it when one exists. Failures become warning notices.
	GenerateForBudget(ctx context.Context, b budget.Budget) (OrderOfService, bool)
	// RenameForBudget regenerates the name of the budget's order of service.
	// It does nothing when the budget has none.
	RenameForBudget(ctx context.Context, b budget.Budget) (OrderOfService, bool)
}

type ServiceImpl struct {
	repo      Repository
	clients   ClientReader
	employees EmployeeReader
	generator *Generator
	clock     utils.Clock
}

func NewService(
	repo Repository,
	clients ClientReader,
	employees EmployeeReader,
	generator *Generator,
	clock utils.Clock,
	eventBus *event_bus.EventBus,
) *ServiceImpl {
	service := &ServiceImpl{repo, clients, employees, generator, clock}
	event_bus.SubscribeTyped[event_bus.BudgetApproved](
		eventBus,
		event_bus.BudgetApprovedEvent,
		func(e event_bus.EventT[event_bus.BudgetApproved]) error {
			log.Debugf("received budget approved event: %+v", e.Data)
			service.GenerateForBudget(e.Context(), budgetFromEvent(e.Data))
			return nil
		},
	)
	event_bus.SubscribeTyped[event_bus.BudgetClientChanged](
		eventBus,
		event_bus.BudgetClientChangedEvent,
		func(e event_bus.EventT[event_bus.BudgetClientChanged]) error {
			log.Debugf("received budget client changed event: %+v", e.Data)
			service.RenameForBudget(e.Context(), budgetFromEvent(e.Data.BudgetApproved))
			return nil
		},
	)
	return service
}

func (s *ServiceImpl) List(ctx context.Context) ([]OrderOfService, error) {
	return s.repo.List(ctx)
}

func (s *ServiceImpl) Get(ctx context.Context, id int) (OrderOfService, error) {
	return s.repo.Get(ctx, id)
}

func (s *ServiceImpl) Update(ctx context.Context, order OrderOfService) (OrderOfService, error) {
	if !order.Status.Valid() {
		return OrderOfService{}, fmt.Errorf("%w: unknown status %q", ErrInvalidOrderOfService, order.Status)
	}
	order.Description = strings.TrimSpace(order.Description)
	updated, err := s.repo.Update(ctx, order)
	if err != nil {
		return OrderOfService{}, err
	}
	if !updated {
		return OrderOfService{}, ErrOrderOfServiceNotFound
	}
	return s.repo.Get(ctx, order.Id)
}

func (s *ServiceImpl) Preview(ctx context.Context, b budget.Budget) (Generated, error) {
	clients, employees, err := s.lookups(ctx)
	if err != nil {
		return Generated{}, err
	}
	return s.generator.Generate(b, clients, employees), nil
}

func (s *ServiceImpl) GenerateForBudget(ctx context.Context, b budget.Budget) (OrderOfService, bool) {
	if b.Id == 0 {
		log.Warnf("cannot generate order of service: budget %q has no id", b.Number)
		notify.Warn(ctx, "Orçamento sem identificador; OS não gerada")
		return OrderOfService{}, false
	}

	clients, employees, err := s.lookups(ctx)
	if err != nil {
		return s.failed(ctx, b, err)
	}
	generated := s.generator.Generate(b, clients, employees)

	existing, err := s.repo.FindByBudgetId(ctx, b.Id)
	switch {
	case err == nil:
		log.Infof("budget %d already has order of service %d, renaming", b.Id, existing.Id)
		return s.rename(ctx, existing, generated.Name)
	case !errors.Is(err, ErrOrderOfServiceNotFound):
		return s.failed(ctx, b, err)
	}

	order := OrderOfService{
		Name:        generated.Name,
		BudgetId:    b.Id,
		Date:        s.clock.Now(),
		Description: generated.Description,
		Status:      StatusOpen,
	}
	id, err := s.repo.Store(ctx, order)
	if errors.Is(err, ErrOrderOfServiceExists) {
		// created concurrently by another approval of the same budget
		existing, err = s.repo.FindByBudgetId(ctx, b.Id)
		if err != nil {
			return s.failed(ctx, b, err)
		}
		return s.rename(ctx, existing, generated.Name)
	}
	if err != nil {
		return s.failed(ctx, b, err)
	}
	order.Id = id
	log.Infof("order of service %s (%d) created for budget %d", order.Name, order.Id, b.Id)
	notify.Info(ctx, "OS %s gerada", order.Name)
	return order, true
}

func (s *ServiceImpl) RenameForBudget(ctx context.Context, b budget.Budget) (OrderOfService, bool) {
	if b.Id == 0 {
		log.Warnf("cannot rename order of service: budget %q has no id", b.Number)
		notify.Warn(ctx, "Orçamento sem identificador; OS não renomeada")
		return OrderOfService{}, false
	}

	existing, err := s.repo.FindByBudgetId(ctx, b.Id)
	if errors.Is(err, ErrOrderOfServiceNotFound) {
		log.Debugf("budget %d has no order of service to rename", b.Id)
		return OrderOfService{}, false
	}
	if err != nil {
		return s.renameFailed(ctx, b, err)
	}

	clients, employees, err := s.lookups(ctx)
	if err != nil {
		return s.renameFailed(ctx, b, err)
	}
	return s.rename(ctx, existing, s.generator.Generate(b, clients, employees).Name)
}

func (s *ServiceImpl) rename(ctx context.Context, order OrderOfService, name string) (OrderOfService, bool) {
	if order.Name == name {
		return order, true
	}
	previous := order.Name
	ok, err := s.repo.UpdateName(ctx, order.Id, name)
	if err == nil && !ok {
		err = ErrOrderOfServiceNotFound
	}
	if err != nil {
		log.Errorf("failed to rename order of service %d: %v", order.Id, err)
		notify.Warn(ctx, "Orçamento salvo, mas falha ao renomear OS: %v", err)
		return OrderOfService{}, false
	}
	order.Name = name
	log.Infof("order of service %d renamed from %s to %s", order.Id, previous, name)
	notify.Info(ctx, "OS %s renomeada para %s", previous, name)
	return order, true
}

func (s *ServiceImpl) failed(ctx context.Context, b budget.Budget, err error) (OrderOfService, bool) {
	log.Errorf("failed to create order of service for budget %d: %v", b.Id, err)
	notify.Warn(ctx, "Orçamento salvo, mas falha ao criar OS: %v", err)
	return OrderOfService{}, false
}

func (s *ServiceImpl) renameFailed(ctx context.Context, b budget.Budget, err error) (OrderOfService, bool) {
	log.Errorf("failed to rename order of service for budget %d: %v", b.Id, err)
	notify.Warn(ctx, "Orçamento salvo, mas falha ao renomear OS: %v", err)
	return OrderOfService{}, false
}

// lookups loads clients and employees. Employees only feed logging, so
// failing to load them is not an error.
func (s *ServiceImpl) lookups(ctx context.Context) ([]client.Client, []employee.Employee, error) {
	clients, err := s.clients.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("could not load clients: %w", err)
	}
	employees, err := s.employees.List(ctx)
	if err != nil {
		log.Warnf("could not load employees: %v", err)
	}
	return clients, employees, nil
}

func budgetFromEvent(e event_bus.BudgetApproved) budget.Budget {
	b := budget.Budget{
		Id:              e.Id,
		Number:          e.Number,
		ClientId:        e.ClientId,
		EmployeeId:      e.EmployeeId,
		Status:          budget.StatusApproved,
		Description:     e.Description,
		StatusUpdatedAt: e.StatusUpdatedAt,
		CreatedAt:       e.CreatedAt,
	}
	if e.ClientName != "" || e.ClientReference != "" {
		b.Client = &client.Client{Id: e.ClientId, Name: e.ClientName, Reference: e.ClientReference}
	}
	return b
}
