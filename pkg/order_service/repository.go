package order_service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var (
	ErrOrderOfServiceNotFound = errors.New("order of service not found")
	// ErrOrderOfServiceExists is returned by Store when the budget already has one.
	ErrOrderOfServiceExists = errors.New("order of service already exists for budget")
)

const uniqueViolation = "23505"

type Repository interface {
	Store(ctx context.Context, order OrderOfService) (int, error)
	Get(ctx context.Context, id int) (OrderOfService, error)
	List(ctx context.Context) ([]OrderOfService, error)
	FindByBudgetId(ctx context.Context, budgetId int) (OrderOfService, error)
	UpdateName(ctx context.Context, id int, name string) (bool, error)
	Update(ctx context.Context, order OrderOfService) (bool, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const selectOrderOfService = `SELECT id, name, budget_id, date, description, status FROM order_service`

func (r *RepositoryImpl) Store(ctx context.Context, order OrderOfService) (int, error) {
	query := `INSERT INTO order_service (name, budget_id, date, description, status)
				VALUES ($1, $2, $3, $4, $5) RETURNING id`

	var id int
	err := r.db.QueryRow(ctx, query,
		order.Name,
		order.BudgetId,
		order.Date,
		sql.NullString{String: order.Description, Valid: order.Description != ""},
		string(order.Status),
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, ErrOrderOfServiceExists
		}
		err := fmt.Errorf("could not store order of service: %w", err)
		log.Error(err)
		return 0, err
	}
	return id, nil
}

func (r *RepositoryImpl) Get(ctx context.Context, id int) (OrderOfService, error) {
	order, err := scanOrderOfService(r.db.QueryRow(ctx, selectOrderOfService+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return OrderOfService{}, ErrOrderOfServiceNotFound
		}
		err := fmt.Errorf("could not get order of service %d: %w", id, err)
		log.Error(err)
		return OrderOfService{}, err
	}
	return order, nil
}

func (r *RepositoryImpl) FindByBudgetId(ctx context.Context, budgetId int) (OrderOfService, error) {
	order, err := scanOrderOfService(r.db.QueryRow(ctx, selectOrderOfService+` WHERE budget_id = $1`, budgetId))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return OrderOfService{}, ErrOrderOfServiceNotFound
		}
		err := fmt.Errorf("could not find order of service for budget %d: %w", budgetId, err)
		log.Error(err)
		return OrderOfService{}, err
	}
	return order, nil
}

func (r *RepositoryImpl) List(ctx context.Context) ([]OrderOfService, error) {
	rows, err := r.db.Query(ctx, selectOrderOfService+` ORDER BY date DESC, id DESC`)
	if err != nil {
		err := fmt.Errorf("could not query orders of service: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	orders := make([]OrderOfService, 0)
	for rows.Next() {
		order, err := scanOrderOfService(rows)
		if err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return orders, nil
}

func (r *RepositoryImpl) UpdateName(ctx context.Context, id int, name string) (bool, error) {
	result, err := r.db.Exec(ctx, `UPDATE order_service SET name = $1 WHERE id = $2`, name, id)
	if err != nil {
		err := fmt.Errorf("could not rename order of service %d: %w", id, err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, order OrderOfService) (bool, error) {
	query := `UPDATE order_service SET description = $1, status = $2 WHERE id = $3`
	result, err := r.db.Exec(ctx, query,
		sql.NullString{String: order.Description, Valid: order.Description != ""},
		string(order.Status),
		order.Id,
	)
	if err != nil {
		err := fmt.Errorf("could not update order of service %d: %w", order.Id, err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func scanOrderOfService(row pgx.Row) (OrderOfService, error) {
	var (
		order       OrderOfService
		description sql.NullString
		status      string
	)
	if err := row.Scan(&order.Id, &order.Name, &order.BudgetId, &order.Date, &description, &status); err != nil {
		return OrderOfService{}, err
	}
	order.Description = description.String
	order.Status = Status(status)
	return order, nil
}
