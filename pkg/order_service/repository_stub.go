package order_service

import (
	"context"
	"sort"
	"sync"
)

type RepositoryStub struct {
	mu     sync.Mutex
	nextId int
	orders map[int]OrderOfService
	err    error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{orders: map[int]OrderOfService{}}
}

func (s *RepositoryStub) Store(ctx context.Context, order OrderOfService) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	for _, o := range s.orders {
		if o.BudgetId == order.BudgetId {
			return 0, ErrOrderOfServiceExists
		}
	}
	s.nextId++
	order.Id = s.nextId
	s.orders[order.Id] = order
	return order.Id, nil
}

func (s *RepositoryStub) Get(ctx context.Context, id int) (OrderOfService, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return OrderOfService{}, s.err
	}
	order, ok := s.orders[id]
	if !ok {
		return OrderOfService{}, ErrOrderOfServiceNotFound
	}
	return order, nil
}

func (s *RepositoryStub) List(ctx context.Context) ([]OrderOfService, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	orders := make([]OrderOfService, 0, len(s.orders))
	for _, o := range s.orders {
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].Id < orders[j].Id })
	return orders, nil
}

func (s *RepositoryStub) FindByBudgetId(ctx context.Context, budgetId int) (OrderOfService, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return OrderOfService{}, s.err
	}
	for _, o := range s.orders {
		if o.BudgetId == budgetId {
			return o, nil
		}
	}
	return OrderOfService{}, ErrOrderOfServiceNotFound
}

func (s *RepositoryStub) UpdateName(ctx context.Context, id int, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	order, ok := s.orders[id]
	if !ok {
		return false, nil
	}
	order.Name = name
	s.orders[id] = order
	return true, nil
}

func (s *RepositoryStub) Update(ctx context.Context, order OrderOfService) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	stored, ok := s.orders[order.Id]
	if !ok {
		return false, nil
	}
	stored.Description = order.Description
	stored.Status = order.Status
	s.orders[order.Id] = stored
	return true, nil
}

func (s *RepositoryStub) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *RepositoryStub) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextId = 0
	s.orders = map[int]OrderOfService{}
	s.err = nil
}
