package expense

import (
	"context"
	"sort"
	"sync"
)

type RepositoryStub struct {
	mu       sync.Mutex
	nextId   int
	expenses map[int]Expense
	err      error
	calls    int
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{expenses: map[int]Expense{}}
}

func (s *RepositoryStub) Store(ctx context.Context, expense Expense) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	s.nextId++
	expense.Id = s.nextId
	s.expenses[expense.Id] = clone(expense)
	return expense.Id, nil
}

func (s *RepositoryStub) Get(ctx context.Context, id int) (Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return Expense{}, s.err
	}
	expense, ok := s.expenses[id]
	if !ok {
		return Expense{}, ErrExpenseNotFound
	}
	return clone(expense), nil
}

func (s *RepositoryStub) List(ctx context.Context) ([]Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	expenses := make([]Expense, 0, len(s.expenses))
	for _, e := range s.expenses {
		expenses = append(expenses, clone(e))
	}
	sort.Slice(expenses, func(i, j int) bool { return expenses[i].Id < expenses[j].Id })
	return expenses, nil
}

func (s *RepositoryStub) Update(ctx context.Context, expense Expense) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return false, s.err
	}
	if _, ok := s.expenses[expense.Id]; !ok {
		return false, nil
	}
	s.expenses[expense.Id] = clone(expense)
	return true, nil
}

func (s *RepositoryStub) Delete(ctx context.Context, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return false, s.err
	}
	if _, ok := s.expenses[id]; !ok {
		return false, nil
	}
	delete(s.expenses, id)
	return true, nil
}

// Calls returns how many repository methods were invoked since the last Reset.
func (s *RepositoryStub) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
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
	s.expenses = map[int]Expense{}
	s.err = nil
	s.calls = 0
}

func clone(e Expense) Expense {
	if e.Installments != nil {
		installments := make([]Installment, len(e.Installments))
		copy(installments, e.Installments)
		e.Installments = installments
	}
	return e
}
