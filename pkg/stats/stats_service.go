package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gestorweb/gestor/internal/utils"
	"github.com/gestorweb/gestor/pkg/expense"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const maxRangeDays = 366

var ErrInvalidRange = errors.New("invalid date range")

type ExpenseReader interface {
	List(ctx context.Context) ([]expense.Expense, error)
}

type StatsService interface {
	GetStats(ctx context.Context, from time.Time, to time.Time) (StatsSummary, error)
}

type StatsServiceImpl struct {
	expenses ExpenseReader
	clock    utils.Clock
}

func NewStatsServiceImpl(expenses ExpenseReader, clock utils.Clock) *StatsServiceImpl {
	return &StatsServiceImpl{expenses: expenses, clock: clock}
}

type obligation struct {
	value   decimal.Decimal
	dueDate *time.Time
	paidAt  *time.Time
}

func (s *StatsServiceImpl) GetStats(ctx context.Context, from time.Time, to time.Time) (StatsSummary, error) {
	from = utils.DateOnly(from)
	to = utils.DateOnly(to)
	if to.Before(from) {
		return StatsSummary{}, fmt.Errorf("%w: %s is after %s", ErrInvalidRange, from.Format(time.DateOnly), to.Format(time.DateOnly))
	}
	days := utils.DaysBetween(from, to) + 1
	if days > maxRangeDays {
		return StatsSummary{}, fmt.Errorf("%w: at most %d days, got %d", ErrInvalidRange, maxRangeDays, days)
	}

	expenses, err := s.expenses.List(ctx)
	if err != nil {
		return StatsSummary{}, err
	}
	today := utils.Today(s.clock)

	summary := StatsSummary{
		StartDate:   from,
		EndDate:     to,
		Days:        make([]DailyStats, days),
		Total:       decimal.Zero,
		Paid:        decimal.Zero,
		Outstanding: decimal.Zero,
		Overdue:     decimal.Zero,
	}
	for i := range summary.Days {
		summary.Days[i] = DailyStats{
			Date:        from.AddDate(0, 0, i),
			Due:         decimal.Zero,
			Paid:        decimal.Zero,
			Outstanding: decimal.Zero,
		}
	}
	byStatus := map[expense.Status]*StatusStats{
		expense.StatusPaid:    {Status: expense.StatusPaid, Total: decimal.Zero},
		expense.StatusPending: {Status: expense.StatusPending, Total: decimal.Zero},
		expense.StatusOverdue: {Status: expense.StatusOverdue, Total: decimal.Zero},
	}

	counted := 0
	for _, e := range expenses {
		for _, o := range obligations(e) {
			if o.dueDate == nil {
				continue
			}
			due := utils.DateOnly(*o.dueDate)
			if due.Before(from) || due.After(to) {
				continue
			}
			counted++
			day := &summary.Days[utils.DaysBetween(from, due)]
			day.Count++
			day.Due = day.Due.Add(o.value)
			summary.Total = summary.Total.Add(o.value)

			status := expense.EvaluateObligation(today, o.dueDate, o.paidAt)
			byStatus[status].Count++
			byStatus[status].Total = byStatus[status].Total.Add(o.value)
			switch status {
			case expense.StatusPaid:
				day.Paid = day.Paid.Add(o.value)
				summary.Paid = summary.Paid.Add(o.value)
			case expense.StatusOverdue:
				summary.Overdue = summary.Overdue.Add(o.value)
				fallthrough
			default:
				day.Outstanding = day.Outstanding.Add(o.value)
				summary.Outstanding = summary.Outstanding.Add(o.value)
			}
		}
	}
	summary.Statuses = []StatusStats{
		*byStatus[expense.StatusPaid],
		*byStatus[expense.StatusPending],
		*byStatus[expense.StatusOverdue],
	}
	log.Debugf("expense stats from %s to %s: %d obligation(s) of %d expense(s)",
		from.Format(time.DateOnly), to.Format(time.DateOnly), counted, len(expenses))
	return summary, nil
}

func obligations(e expense.Expense) []obligation {
	if len(e.Installments) == 0 {
		return []obligation{{value: e.TotalValue.Round(2), dueDate: e.DueDate, paidAt: e.PaymentDate}}
	}
	result := make([]obligation, 0, len(e.Installments))
	for _, i := range e.Installments {
		result = append(result, obligation{value: i.Value.Round(2), dueDate: i.DueDate, paidAt: i.PaymentDate})
	}
	return result
}
