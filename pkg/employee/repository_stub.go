package employee

import (
	"context"
	"sort"
)

type RepositoryStub struct {
	nextId    int
	employees map[int]Employee
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{employees: map[int]Employee{}}
}

func (s *RepositoryStub) Store(ctx context.Context, employee Employee) (int, error) {
	s.nextId++
	employee.Id = s.nextId
	s.employees[employee.Id] = employee
	return employee.Id, nil
}

func (s *RepositoryStub) Get(ctx context.Context, id int) (Employee, error) {
	employee, ok := s.employees[id]
	if !ok {
		return Employee{}, ErrEmployeeNotFound
	}
	return employee, nil
}

func (s *RepositoryStub) List(ctx context.Context) ([]Employee, error) {
	employees := make([]Employee, 0, len(s.employees))
	for _, e := range s.employees {
		employees = append(employees, e)
	}
	sort.Slice(employees, func(i, j int) bool { return employees[i].Id < employees[j].Id })
	return employees, nil
}

func (s *RepositoryStub) Reset() {
	s.nextId = 0
	s.employees = map[int]Employee{}
}
