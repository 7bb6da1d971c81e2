//go:build integration

package expense

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/gestorweb/gestor/internal/test_utils"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var db *pgxpool.Pool

func TestMain(m *testing.M) {
	var cleanup func()
	db, cleanup = test_utils.TestWithDB()
	code := m.Run()
	cleanup()
	os.Exit(code)
}

func setupTestRepository(t *testing.T) (context.Context, Repository) {
	ctx := context.Background()
	require.NoError(t, test_utils.TruncateAll(ctx, db))
	return ctx, NewRepository(db)
}

func date(year int, month time.Month, d int) *time.Time {
	t := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestRepositoryImpl_StoreAndGet(t *testing.T) {
	// given
	ctx, repo := setupTestRepository(t)
	expense := Expense{
		Description: "Notebook",
		TotalValue:  money("300"),
		ExpenseDate: *date(2025, 3, 1),
		Fixed:       true,
		Installments: []Installment{
			{Number: 1, Total: 2, Value: money("150"), DueDate: date(2025, 3, 10), PaymentDate: date(2025, 3, 9)},
			{Number: 2, Total: 2, Value: money("150"), DueDate: date(2025, 4, 10)},
		},
	}

	// when
	id, err := repo.Store(ctx, expense)
	require.NoError(t, err)

	// then
	stored, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Notebook", stored.Description)
	assert.True(t, money("300").Equal(stored.TotalValue))
	assert.True(t, stored.Fixed)
	assert.Nil(t, stored.DueDate)
	require.Len(t, stored.Installments, 2)
	assert.True(t, date(2025, 3, 9).Equal(*stored.Installments[0].PaymentDate))
	assert.Nil(t, stored.Installments[1].PaymentDate)
	assert.True(t, money("150").Equal(stored.Installments[1].Value))
}

func TestRepositoryImpl_UpdateReplacesInstallments(t *testing.T) {
	// given
	ctx, repo := setupTestRepository(t)
	id, err := repo.Store(ctx, Expense{
		TotalValue:  money("100"),
		ExpenseDate: *date(2025, 3, 1),
		Installments: []Installment{
			{Number: 1, Total: 2, Value: money("50"), DueDate: date(2025, 3, 10)},
			{Number: 2, Total: 2, Value: money("50"), DueDate: date(2025, 4, 10)},
		},
	})
	require.NoError(t, err)

	// when
	ok, err := repo.Update(ctx, Expense{
		Id:          id,
		TotalValue:  money("100"),
		ExpenseDate: *date(2025, 3, 1),
		DueDate:     date(2025, 3, 20),
		PaymentDate: date(2025, 3, 18),
	})
	require.NoError(t, err)
	require.True(t, ok)

	// then
	stored, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, stored.Installments)
	require.NotNil(t, stored.PaymentDate)
	assert.True(t, date(2025, 3, 18).Equal(*stored.PaymentDate))
}

func TestRepositoryImpl_ListAndDelete(t *testing.T) {
	ctx, repo := setupTestRepository(t)
	first, err := repo.Store(ctx, Expense{TotalValue: money("10"), ExpenseDate: *date(2025, 1, 1)})
	require.NoError(t, err)
	_, err = repo.Store(ctx, Expense{
		TotalValue:   money("20"),
		ExpenseDate:  *date(2025, 2, 1),
		Installments: []Installment{{Number: 1, Total: 1, Value: money("20"), DueDate: date(2025, 2, 5)}},
	})
	require.NoError(t, err)

	expenses, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	assert.Len(t, expenses[0].Installments, 1)
	assert.Equal(t, first, expenses[1].Id)

	deleted, err := repo.Delete(ctx, first)
	require.NoError(t, err)
	assert.True(t, deleted)
	_, err = repo.Get(ctx, first)
	assert.ErrorIs(t, err, ErrExpenseNotFound)
}
