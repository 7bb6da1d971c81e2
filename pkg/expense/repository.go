package expense

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

var ErrExpenseNotFound = errors.New("expense not found")

type Repository interface {
	Store(ctx context.Context, expense Expense) (int, error)
	Get(ctx context.Context, id int) (Expense, error)
	List(ctx context.Context) ([]Expense, error)
	// Update replaces the expense row and all of its installments.
	Update(ctx context.Context, expense Expense) (bool, error)
	Delete(ctx context.Context, id int) (bool, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const selectExpenses = `SELECT
				e.id,
				e.description,
				e.total_value,
				e.date_expense,
				e.due_date,
				e.payment_date,
				e.recurring,
				e.unforeseen,
				e.fixed,
				i.number,
				i.total,
				i.value,
				i.due_date,
				i.payment_date
			FROM expense e
			LEFT JOIN expense_installment i ON i.expense_id = e.id`

func (r *RepositoryImpl) Store(ctx context.Context, expense Expense) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO expense (
					description,
					total_value,
					date_expense,
					due_date,
					payment_date,
					recurring,
					unforeseen,
					fixed
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	var id int
	err = tx.QueryRow(ctx, query,
		sql.NullString{String: expense.Description, Valid: expense.Description != ""},
		expense.TotalValue,
		expense.ExpenseDate,
		expense.DueDate,
		expense.PaymentDate,
		expense.Recurring,
		expense.Unforeseen,
		expense.Fixed,
	).Scan(&id)
	if err != nil {
		err := fmt.Errorf("could not store expense: %w", err)
		log.Error(err)
		return 0, err
	}

	if err := insertInstallments(ctx, tx, id, expense.Installments); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("could not commit transaction: %w", err)
	}
	return id, nil
}

func (r *RepositoryImpl) Get(ctx context.Context, id int) (Expense, error) {
	expenses, err := r.query(ctx, selectExpenses+` WHERE e.id = $1 ORDER BY i.number`, id)
	if err != nil {
		err := fmt.Errorf("could not get expense %d: %w", id, err)
		log.Error(err)
		return Expense{}, err
	}
	if len(expenses) == 0 {
		return Expense{}, ErrExpenseNotFound
	}
	return expenses[0], nil
}

func (r *RepositoryImpl) List(ctx context.Context) ([]Expense, error) {
	expenses, err := r.query(ctx, selectExpenses+` ORDER BY e.date_expense DESC, e.id DESC, i.number`)
	if err != nil {
		err := fmt.Errorf("could not list expenses: %w", err)
		log.Error(err)
		return nil, err
	}
	return expenses, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, expense Expense) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	query := `UPDATE expense SET
				description = $1,
				total_value = $2,
				date_expense = $3,
				due_date = $4,
				payment_date = $5,
				recurring = $6,
				unforeseen = $7,
				fixed = $8
			WHERE id = $9`
	result, err := tx.Exec(ctx, query,
		sql.NullString{String: expense.Description, Valid: expense.Description != ""},
		expense.TotalValue,
		expense.ExpenseDate,
		expense.DueDate,
		expense.PaymentDate,
		expense.Recurring,
		expense.Unforeseen,
		expense.Fixed,
		expense.Id,
	)
	if err != nil {
		err := fmt.Errorf("could not update expense %d: %w", expense.Id, err)
		log.Error(err)
		return false, err
	}
	if result.RowsAffected() != 1 {
		return false, nil
	}

	if _, err := tx.Exec(ctx, `DELETE FROM expense_installment WHERE expense_id = $1`, expense.Id); err != nil {
		err := fmt.Errorf("could not clear installments of expense %d: %w", expense.Id, err)
		log.Error(err)
		return false, err
	}
	if err := insertInstallments(ctx, tx, expense.Id, expense.Installments); err != nil {
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("could not commit transaction: %w", err)
	}
	return true, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, id int) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM expense WHERE id = $1`, id)
	if err != nil {
		err := fmt.Errorf("could not delete expense: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func insertInstallments(ctx context.Context, tx pgx.Tx, expenseId int, installments []Installment) error {
	if len(installments) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, i := range installments {
		batch.Queue(
			`INSERT INTO expense_installment (expense_id, number, total, value, due_date, payment_date)
				VALUES ($1, $2, $3, $4, $5, $6)`,
			expenseId, i.Number, i.Total, i.Value, i.DueDate, i.PaymentDate,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		err := fmt.Errorf("could not store installments of expense %d: %w", expenseId, err)
		log.Error(err)
		return err
	}
	return nil
}

// query reads expense rows joined with their installments, keeping row order.
func (r *RepositoryImpl) query(ctx context.Context, query string, args ...any) ([]Expense, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := make([]Expense, 0)
	index := map[int]int{}
	for rows.Next() {
		var (
			e                  Expense
			description        sql.NullString
			number             sql.NullInt32
			total              sql.NullInt32
			value              decimal.NullDecimal
			installmentDue     *time.Time
			installmentPayment *time.Time
		)
		if err := rows.Scan(
			&e.Id,
			&description,
			&e.TotalValue,
			&e.ExpenseDate,
			&e.DueDate,
			&e.PaymentDate,
			&e.Recurring,
			&e.Unforeseen,
			&e.Fixed,
			&number,
			&total,
			&value,
			&installmentDue,
			&installmentPayment,
		); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}

		pos, seen := index[e.Id]
		if !seen {
			e.Description = description.String
			expenses = append(expenses, e)
			pos = len(expenses) - 1
			index[e.Id] = pos
		}
		// no installment row (LEFT JOIN)
		if !number.Valid {
			continue
		}
		expenses[pos].Installments = append(expenses[pos].Installments, Installment{
			Number:      int(number.Int32),
			Total:       int(total.Int32),
			Value:       value.Decimal,
			DueDate:     installmentDue,
			PaymentDate: installmentPayment,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}
	return expenses, nil
}
