package budget

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var ErrBudgetNotFound = errors.New("budget not found")

type Filter struct {
	Status   Status
	ClientId int
}

type Repository interface {
	Store(ctx context.Context, budget Budget) (int, error)
	Get(ctx context.Context, id int) (Budget, error)
	List(ctx context.Context, filter Filter) ([]Budget, error)
	Update(ctx context.Context, budget Budget) (bool, error)
	UpdateStatus(ctx context.Context, id int, status Status, at time.Time) (bool, error)
	UpdateClient(ctx context.Context, id int, clientId int) (bool, error)
	Delete(ctx context.Context, id int) (bool, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const selectBudget = `SELECT
				id,
				budget_number,
				client_id,
				employee_id,
				type,
				status,
				value,
				description,
				date_status_update,
				created_at
			FROM budget`

func (r *RepositoryImpl) Store(ctx context.Context, budget Budget) (int, error) {
	query := `INSERT INTO budget (
					budget_number,
					client_id,
					employee_id,
					type,
					status,
					value,
					description,
					created_at
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`

	var id int
	err := r.db.QueryRow(ctx, query,
		nullString(budget.Number),
		nullInt(budget.ClientId),
		nullInt(budget.EmployeeId),
		nullString(budget.Type),
		string(budget.Status),
		budget.Value,
		nullString(budget.Description),
		budget.CreatedAt,
	).Scan(&id)
	if err != nil {
		err := fmt.Errorf("could not store budget: %w", err)
		log.Error(err)
		return 0, err
	}
	return id, nil
}

func (r *RepositoryImpl) Get(ctx context.Context, id int) (Budget, error) {
	row := r.db.QueryRow(ctx, selectBudget+` WHERE id = $1`, id)
	budget, err := scanBudget(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Budget{}, ErrBudgetNotFound
		}
		err := fmt.Errorf("could not get budget %d: %w", id, err)
		log.Error(err)
		return Budget{}, err
	}
	return budget, nil
}

func (r *RepositoryImpl) List(ctx context.Context, filter Filter) ([]Budget, error) {
	query := selectBudget + ` WHERE ($1 = '' OR status = $1) AND ($2 = 0 OR client_id = $2) ORDER BY created_at DESC, id DESC`
	rows, err := r.db.Query(ctx, query, string(filter.Status), filter.ClientId)
	if err != nil {
		err := fmt.Errorf("could not query budgets: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	budgets := make([]Budget, 0)
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}
		budgets = append(budgets, budget)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return budgets, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, budget Budget) (bool, error) {
	query := `UPDATE budget SET
				budget_number = $1,
				client_id = $2,
				employee_id = $3,
				type = $4,
				value = $5,
				description = $6
			WHERE id = $7`
	result, err := r.db.Exec(ctx, query,
		nullString(budget.Number),
		nullInt(budget.ClientId),
		nullInt(budget.EmployeeId),
		nullString(budget.Type),
		budget.Value,
		nullString(budget.Description),
		budget.Id,
	)
	if err != nil {
		err := fmt.Errorf("could not update budget: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) UpdateStatus(ctx context.Context, id int, status Status, at time.Time) (bool, error) {
	query := `UPDATE budget SET status = $1, date_status_update = $2 WHERE id = $3`
	result, err := r.db.Exec(ctx, query, string(status), at, id)
	if err != nil {
		err := fmt.Errorf("could not update budget status: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) UpdateClient(ctx context.Context, id int, clientId int) (bool, error) {
	result, err := r.db.Exec(ctx, `UPDATE budget SET client_id = $1 WHERE id = $2`, nullInt(clientId), id)
	if err != nil {
		err := fmt.Errorf("could not update budget client: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, id int) (bool, error) {
	result, err := r.db.Exec(ctx, "DELETE FROM budget WHERE id = $1", id)
	if err != nil {
		err := fmt.Errorf("could not delete budget: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func scanBudget(row pgx.Row) (Budget, error) {
	var (
		budget          Budget
		number          sql.NullString
		clientId        sql.NullInt64
		employeeId      sql.NullInt64
		budgetType      sql.NullString
		status          string
		value           decimal.Decimal
		description     sql.NullString
		statusUpdatedAt *time.Time
	)
	err := row.Scan(
		&budget.Id,
		&number,
		&clientId,
		&employeeId,
		&budgetType,
		&status,
		&value,
		&description,
		&statusUpdatedAt,
		&budget.CreatedAt,
	)
	if err != nil {
		return Budget{}, err
	}
	budget.Number = number.String
	budget.ClientId = int(clientId.Int64)
	budget.EmployeeId = int(employeeId.Int64)
	budget.Type = budgetType.String
	budget.Status = Status(status)
	budget.Value = value
	budget.Description = description.String
	budget.StatusUpdatedAt = statusUpdatedAt
	return budget, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(i int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(i), Valid: i != 0}
}
