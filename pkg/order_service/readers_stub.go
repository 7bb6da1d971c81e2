package order_service

import (
	"context"

	"github.com/gestorweb/gestor/pkg/client"
	"github.com/gestorweb/gestor/pkg/employee"
)

type ClientReaderStub struct {
	clients []client.Client
	err     error
}

func NewClientReaderStub() *ClientReaderStub {
	return &ClientReaderStub{}
}

func (s *ClientReaderStub) List(ctx context.Context) ([]client.Client, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.clients, nil
}

func (s *ClientReaderStub) Set(clients ...client.Client) {
	s.clients = clients
}

func (s *ClientReaderStub) SetError(err error) {
	s.err = err
}

func (s *ClientReaderStub) Reset() {
	s.clients = nil
	s.err = nil
}

type EmployeeReaderStub struct {
	employees []employee.Employee
	err       error
}

func NewEmployeeReaderStub() *EmployeeReaderStub {
	return &EmployeeReaderStub{}
}

func (s *EmployeeReaderStub) List(ctx context.Context) ([]employee.Employee, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.employees, nil
}

func (s *EmployeeReaderStub) Set(employees ...employee.Employee) {
	s.employees = employees
}

func (s *EmployeeReaderStub) SetError(err error) {
	s.err = err
}

func (s *EmployeeReaderStub) Reset() {
	s.employees = nil
	s.err = nil
}
