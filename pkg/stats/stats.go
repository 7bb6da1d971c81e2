package stats

import (
	"time"

	"github.com/gestorweb/gestor/pkg/expense"
	"github.com/shopspring/decimal"
)

// DailyStats totals the obligations falling due on Date.
type DailyStats struct {
	Date        time.Time
	Count       int
	Due         decimal.Decimal
	Paid        decimal.Decimal
	Outstanding decimal.Decimal
}

type StatusStats struct {
	Status expense.Status
	Count  int
	Total  decimal.Decimal
}

// StatsSummary covers every day between StartDate and EndDate, inclusive.
// An obligation is an installment, or the expense itself when it has none.
type StatsSummary struct {
	StartDate   time.Time
	EndDate     time.Time
	Days        []DailyStats
	Statuses    []StatusStats
	Total       decimal.Decimal
	Paid        decimal.Decimal
	Outstanding decimal.Decimal
	Overdue     decimal.Decimal
}
