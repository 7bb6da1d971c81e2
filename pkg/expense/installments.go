package expense

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/gestorweb/gestor/internal/utils"
	"github.com/shopspring/decimal"
)

var ErrInvalidInstallments = errors.New("invalid installments")

const maxInstallments = 120

// ValidateInstallments checks that every installment has a positive value and
// a due date, and that their sum matches the expense total to the cent.
func ValidateInstallments(e Expense) error {
	if len(e.Installments) == 0 {
		return nil
	}
	sum := decimal.Zero
	for _, i := range e.Installments {
		if !i.Value.IsPositive() {
			return fmt.Errorf("%w: installment %d has no value", ErrInvalidInstallments, i.Number)
		}
		if i.DueDate == nil {
			return fmt.Errorf("%w: installment %d has no due date", ErrInvalidInstallments, i.Number)
		}
		sum = sum.Add(i.Value.Round(2))
	}
	total := e.TotalValue.Round(2)
	if !sum.Equal(total) {
		return fmt.Errorf("%w: installments add up to %s, expected %s",
			ErrInvalidInstallments, sum.StringFixed(2), total.StringFixed(2))
	}
	return nil
}

// SplitInstallments divides total into n monthly installments starting at
// firstDue. Shares are rounded to the cent; the last one takes the remainder.
func SplitInstallments(total decimal.Decimal, n int, firstDue time.Time) ([]Installment, error) {
	if n < 1 || n > maxInstallments {
		return nil, fmt.Errorf("%w: count must be between 1 and %d", ErrInvalidInstallments, maxInstallments)
	}
	total = total.Round(2)
	if !total.IsPositive() {
		return nil, fmt.Errorf("%w: total must be positive", ErrInvalidInstallments)
	}

	share := total.Div(decimal.NewFromInt(int64(n))).RoundDown(2)
	installments := make([]Installment, n)
	assigned := decimal.Zero
	for idx := 0; idx < n; idx++ {
		value := share
		if idx == n-1 {
			value = total.Sub(assigned)
		}
		due := utils.AddMonths(firstDue, idx)
		installments[idx] = Installment{Number: idx + 1, Total: n, Value: value, DueDate: &due}
		assigned = assigned.Add(value)
	}
	return installments, nil
}

// normalizeInstallments orders installments by number and renumbers them 1..n.
func normalizeInstallments(installments []Installment) []Installment {
	if len(installments) == 0 {
		return nil
	}
	normalized := make([]Installment, len(installments))
	copy(normalized, installments)
	sort.SliceStable(normalized, func(i, j int) bool { return normalized[i].Number < normalized[j].Number })
	for idx := range normalized {
		normalized[idx].Number = idx + 1
		normalized[idx].Total = len(normalized)
		normalized[idx].Value = normalized[idx].Value.Round(2)
	}
	return normalized
}

type Summary struct {
	Count       int
	PaidCount   int
	Total       decimal.Decimal
	Paid        decimal.Decimal
	Outstanding decimal.Decimal
	Overdue     decimal.Decimal
}

// InstallmentsSummary totals the expense by payment state. An expense without
// installments counts as a single one.
func InstallmentsSummary(e Expense, today time.Time) Summary {
	installments := e.Installments
	if len(installments) == 0 {
		installments = []Installment{{
			Number:      1,
			Total:       1,
			Value:       e.TotalValue,
			DueDate:     e.DueDate,
			PaymentDate: e.PaymentDate,
		}}
	}

	summary := Summary{Total: decimal.Zero, Paid: decimal.Zero, Outstanding: decimal.Zero, Overdue: decimal.Zero}
	for _, i := range installments {
		value := i.Value.Round(2)
		summary.Count++
		summary.Total = summary.Total.Add(value)
		switch EvaluateObligation(today, i.DueDate, i.PaymentDate) {
		case StatusPaid:
			summary.PaidCount++
			summary.Paid = summary.Paid.Add(value)
		case StatusOverdue:
			summary.Overdue = summary.Overdue.Add(value)
			summary.Outstanding = summary.Outstanding.Add(value)
		default:
			summary.Outstanding = summary.Outstanding.Add(value)
		}
	}
	return summary
}
