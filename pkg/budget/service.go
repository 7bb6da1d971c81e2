package budget

import (
	"context"
	"errors"
	"fmt"

	"github.com/gestorweb/gestor/internal/event_bus"
	"github.com/gestorweb/gestor/internal/notify"
	"github.com/gestorweb/gestor/internal/poll"
	"github.com/gestorweb/gestor/internal/utils"
	log "github.com/sirupsen/logrus"
)

var ErrInvalidStatus = errors.New("invalid budget status")

type Service interface {
	List(ctx context.Context, filter Filter) ([]Budget, error)
	Get(ctx context.Context, id int) (Budget, error)
	Create(ctx context.Context, budget Budget) (Budget, error)
	Update(ctx context.Context, budget Budget) (Budget, error)
	Delete(ctx context.Context, id int) (bool, error)
	// UpdateStatus persists a status transition. An approval is confirmed by
	// re-reading the budget before budget.approved is published.
	UpdateStatus(ctx context.Context, id int, status Status) (Budget, error)
	// ChangeClient replaces the budget's client; approved budgets publish
	// budget.client.changed so the linked order of service is renamed.
	ChangeClient(ctx context.Context, id int, clientId int) (Budget, error)
}

type ServiceImpl struct {
	repo        Repository
	eventBus    *event_bus.EventBus
	clock       utils.Clock
	pollOptions poll.Options
}

func NewService(repo Repository, eventBus *event_bus.EventBus, clock utils.Clock, pollOptions poll.Options) *ServiceImpl {
	return &ServiceImpl{repo: repo, eventBus: eventBus, clock: clock, pollOptions: pollOptions}
}

func (s *ServiceImpl) List(ctx context.Context, filter Filter) ([]Budget, error) {
	return s.repo.List(ctx, filter)
}

func (s *ServiceImpl) Get(ctx context.Context, id int) (Budget, error) {
	return s.repo.Get(ctx, id)
}

func (s *ServiceImpl) Create(ctx context.Context, budget Budget) (Budget, error) {
	budget.Id = 0
	budget.Status = StatusPending
	budget.StatusUpdatedAt = nil
	budget.CreatedAt = s.clock.Now()
	budget.Value = budget.Value.Round(2)
	if budget.Value.IsNegative() {
		return Budget{}, fmt.Errorf("%w: value must not be negative", ErrInvalidBudget)
	}

	id, err := s.repo.Store(ctx, budget)
	if err != nil {
		return Budget{}, err
	}
	budget.Id = id
	notify.Info(ctx, "Orçamento %d criado", id)
	return budget, nil
}

func (s *ServiceImpl) Update(ctx context.Context, budget Budget) (Budget, error) {
	current, err := s.repo.Get(ctx, budget.Id)
	if err != nil {
		return Budget{}, err
	}
	budget.Value = budget.Value.Round(2)
	if budget.Value.IsNegative() {
		return Budget{}, fmt.Errorf("%w: value must not be negative", ErrInvalidBudget)
	}

	ok, err := s.repo.Update(ctx, budget)
	if err != nil {
		return Budget{}, err
	}
	if !ok {
		return Budget{}, ErrBudgetNotFound
	}
	updated, err := s.repo.Get(ctx, budget.Id)
	if err != nil {
		return Budget{}, err
	}
	updated.Client = budget.Client

	if updated.IsApproved() && current.ClientId != updated.ClientId {
		s.publishClientChanged(ctx, updated, current.ClientId)
	}
	return updated, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, id int) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if !deleted {
		log.Warnf("budget %d not deleted, probably because it does not exist", id)
	}
	return deleted, nil
}

func (s *ServiceImpl) UpdateStatus(ctx context.Context, id int, status Status) (Budget, error) {
	if !status.Valid() {
		return Budget{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	previous, err := s.repo.Get(ctx, id)
	if err != nil {
		return Budget{}, err
	}

	now := s.clock.Now()
	ok, err := s.repo.UpdateStatus(ctx, id, status, now)
	if err != nil {
		return Budget{}, err
	}
	if !ok {
		return Budget{}, ErrBudgetNotFound
	}
	log.Debugf("budget %d status changed from %s to %s", id, previous.Status, status)

	if status != StatusApproved {
		return s.repo.Get(ctx, id)
	}

	confirmed, err := poll.Until(ctx,
		func(ctx context.Context) (Budget, error) { return s.repo.Get(ctx, id) },
		func(b Budget) bool { return b.IsApproved() },
		s.pollOptions,
	)
	if err != nil {
		if !errors.Is(err, poll.ErrTimeout) {
			return Budget{}, err
		}
		log.Warnf("approval of budget %d not confirmed in time: %v", id, err)
		notify.Warn(ctx, "Aprovação do orçamento %d não confirmada a tempo; a OS será gerada com os últimos dados obtidos", id)
		if confirmed.Id == 0 {
			confirmed = previous
		}
		confirmed.Status = StatusApproved
		if confirmed.StatusUpdatedAt == nil {
			confirmed.StatusUpdatedAt = &now
		}
	}

	s.publish(ctx, event_bus.BudgetApprovedEvent, approvedPayload(confirmed))
	return confirmed, nil
}

func (s *ServiceImpl) ChangeClient(ctx context.Context, id int, clientId int) (Budget, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Budget{}, err
	}
	ok, err := s.repo.UpdateClient(ctx, id, clientId)
	if err != nil {
		return Budget{}, err
	}
	if !ok {
		return Budget{}, ErrBudgetNotFound
	}
	updated, err := s.repo.Get(ctx, id)
	if err != nil {
		return Budget{}, err
	}
	if updated.IsApproved() && current.ClientId != clientId {
		s.publishClientChanged(ctx, updated, current.ClientId)
	}
	return updated, nil
}

func (s *ServiceImpl) publishClientChanged(ctx context.Context, budget Budget, previousClientId int) {
	s.publish(ctx, event_bus.BudgetClientChangedEvent, event_bus.BudgetClientChanged{
		BudgetApproved:   approvedPayload(budget),
		PreviousClientId: previousClientId,
	})
}

// publish never fails the caller: the budget change is already stored, and
// subscribers report their own problems as notices.
func (s *ServiceImpl) publish(ctx context.Context, eventType event_bus.EventType, data any) {
	if err := s.eventBus.Publish(event_bus.NewEvent(ctx, eventType, data)); err != nil {
		log.Errorf("failed to publish %s event: %v", eventType, err)
	}
}

func approvedPayload(b Budget) event_bus.BudgetApproved {
	payload := event_bus.BudgetApproved{
		Id:              b.Id,
		Number:          b.Number,
		ClientId:        b.ClientId,
		EmployeeId:      b.EmployeeId,
		Description:     b.Description,
		StatusUpdatedAt: b.StatusUpdatedAt,
		CreatedAt:       b.CreatedAt,
	}
	if b.Client != nil {
		payload.ClientName = b.Client.Name
		payload.ClientReference = b.Client.Reference
	}
	return payload
}
