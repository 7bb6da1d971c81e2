package budget

import (
	"context"
	"sort"
	"sync"
	"time"
)

type RepositoryStub struct {
	mu      sync.Mutex
	nextId  int
	budgets map[int]Budget
	// staleReads makes Get return the previous status this many times after
	// UpdateStatus, like a lagging read replica.
	staleReads    int
	pendingStale  map[int]int
	previousState map[int]Budget
	getErr        error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		budgets:       map[int]Budget{},
		pendingStale:  map[int]int{},
		previousState: map[int]Budget{},
	}
}

func (s *RepositoryStub) Store(ctx context.Context, budget Budget) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextId++
	budget.Id = s.nextId
	s.budgets[budget.Id] = budget
	return budget.Id, nil
}

func (s *RepositoryStub) Get(ctx context.Context, id int) (Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return Budget{}, s.getErr
	}
	if s.pendingStale[id] > 0 {
		s.pendingStale[id]--
		return s.previousState[id], nil
	}
	budget, ok := s.budgets[id]
	if !ok {
		return Budget{}, ErrBudgetNotFound
	}
	return budget, nil
}

func (s *RepositoryStub) List(ctx context.Context, filter Filter) ([]Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	budgets := make([]Budget, 0, len(s.budgets))
	for _, b := range s.budgets {
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		if filter.ClientId != 0 && b.ClientId != filter.ClientId {
			continue
		}
		budgets = append(budgets, b)
	}
	sort.Slice(budgets, func(i, j int) bool { return budgets[i].Id > budgets[j].Id })
	return budgets, nil
}

func (s *RepositoryStub) Update(ctx context.Context, budget Budget) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.budgets[budget.Id]
	if !ok {
		return false, nil
	}
	stored.Number = budget.Number
	stored.ClientId = budget.ClientId
	stored.EmployeeId = budget.EmployeeId
	stored.Type = budget.Type
	stored.Value = budget.Value
	stored.Description = budget.Description
	s.budgets[budget.Id] = stored
	return true, nil
}

func (s *RepositoryStub) UpdateStatus(ctx context.Context, id int, status Status, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.budgets[id]
	if !ok {
		return false, nil
	}
	if s.staleReads > 0 {
		s.previousState[id] = stored
		s.pendingStale[id] = s.staleReads
	}
	stored.Status = status
	stored.StatusUpdatedAt = &at
	s.budgets[id] = stored
	return true, nil
}

func (s *RepositoryStub) UpdateClient(ctx context.Context, id int, clientId int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.budgets[id]
	if !ok {
		return false, nil
	}
	stored.ClientId = clientId
	s.budgets[id] = stored
	return true, nil
}

func (s *RepositoryStub) Delete(ctx context.Context, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.budgets[id]; !ok {
		return false, nil
	}
	delete(s.budgets, id)
	return true, nil
}

// SetStaleReads makes the next n reads after a status change return the old row.
func (s *RepositoryStub) SetStaleReads(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staleReads = n
}

func (s *RepositoryStub) SetGetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getErr = err
}

func (s *RepositoryStub) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextId = 0
	s.budgets = map[int]Budget{}
	s.staleReads = 0
	s.pendingStale = map[int]int{}
	s.previousState = map[int]Budget{}
	s.getErr = nil
}
