package order_service

import (
	"context"

	"github.com/gestorweb/gestor/pkg/client"
	"github.com/gestorweb/gestor/pkg/employee"
)

type ClientReader interface {
	List(ctx context.Context) ([]client.Client, error)
}

type EmployeeReader interface {
	List(ctx context.Context) ([]employee.Employee, error)
}
