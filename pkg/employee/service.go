package employee

import (
	"context"
	"errors"
	"strings"
)

var ErrInvalidEmployee = errors.New("invalid employee: name is required")

type Service interface {
	List(ctx context.Context) ([]Employee, error)
	Get(ctx context.Context, id int) (Employee, error)
	Create(ctx context.Context, employee Employee) (Employee, error)
}

type ServiceImpl struct {
	repo Repository
}

func NewService(repo Repository) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) List(ctx context.Context) ([]Employee, error) {
	return s.repo.List(ctx)
}

func (s *ServiceImpl) Get(ctx context.Context, id int) (Employee, error) {
	return s.repo.Get(ctx, id)
}

func (s *ServiceImpl) Create(ctx context.Context, employee Employee) (Employee, error) {
	employee.Name = strings.TrimSpace(employee.Name)
	if employee.Name == "" {
		return Employee{}, ErrInvalidEmployee
	}
	id, err := s.repo.Store(ctx, employee)
	if err != nil {
		return Employee{}, err
	}
	employee.Id = id
	return employee, nil
}
