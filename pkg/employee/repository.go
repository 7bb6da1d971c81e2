package employee

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrEmployeeNotFound = errors.New("employee not found")

type Repository interface {
	Store(ctx context.Context, employee Employee) (int, error)
	Get(ctx context.Context, id int) (Employee, error)
	List(ctx context.Context) ([]Employee, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Store(ctx context.Context, employee Employee) (int, error) {
	var id int
	err := r.db.QueryRow(ctx, `INSERT INTO employee (name, role) VALUES ($1, $2) RETURNING id`,
		employee.Name, sql.NullString{String: employee.Role, Valid: employee.Role != ""}).Scan(&id)
	if err != nil {
		err := fmt.Errorf("could not store employee: %w", err)
		log.Error(err)
		return 0, err
	}
	return id, nil
}

func (r *RepositoryImpl) Get(ctx context.Context, id int) (Employee, error) {
	var (
		employee Employee
		role     sql.NullString
	)
	err := r.db.QueryRow(ctx, `SELECT id, name, role FROM employee WHERE id = $1`, id).
		Scan(&employee.Id, &employee.Name, &role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Employee{}, ErrEmployeeNotFound
		}
		err := fmt.Errorf("could not get employee %d: %w", id, err)
		log.Error(err)
		return Employee{}, err
	}
	employee.Role = role.String
	return employee, nil
}

func (r *RepositoryImpl) List(ctx context.Context) ([]Employee, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, role FROM employee ORDER BY name, id`)
	if err != nil {
		err := fmt.Errorf("could not query employees: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	employees := make([]Employee, 0)
	for rows.Next() {
		var (
			employee Employee
			role     sql.NullString
		)
		if err := rows.Scan(&employee.Id, &employee.Name, &role); err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}
		employee.Role = role.String
		employees = append(employees, employee)
	}
	return employees, rows.Err()
}
