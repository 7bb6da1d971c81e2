package expense

import (
	"time"

	"github.com/shopspring/decimal"
)

type Expense struct {
	Id          int
	Description string
	TotalValue  decimal.Decimal
	ExpenseDate time.Time
	DueDate     *time.Time
	PaymentDate *time.Time
	Recurring   bool
	Unforeseen  bool
	Fixed       bool
	// Installments is empty for single payment expenses.
	Installments []Installment
}

// HasInstallments reports whether the expense status is derived from its
// installments instead of its own dates.
func (e Expense) HasInstallments() bool {
	return len(e.Installments) > 1
}

// Installment returns the installment with the given number.
func (e Expense) Installment(number int) (Installment, bool) {
	for _, i := range e.Installments {
		if i.Number == number {
			return i, true
		}
	}
	return Installment{}, false
}

type Installment struct {
	Number      int
	Total       int
	Value       decimal.Decimal
	DueDate     *time.Time
	PaymentDate *time.Time
}

func (i Installment) IsPaid() bool {
	return i.PaymentDate != nil
}
