package expense

import (
	"fmt"
	"time"

	"github.com/gestorweb/gestor/internal/utils"
)

type Status string

const (
	StatusPaid    Status = "paid"
	StatusPending Status = "pending"
	StatusOverdue Status = "overdue"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPaid, StatusPending, StatusOverdue:
		return true
	}
	return false
}

// Badge is the display tier of an obligation. It is independent of Status.
type Badge string

const (
	BadgeNone     Badge = "none"
	BadgeNeutral  Badge = "neutral"
	BadgeOverdue  Badge = "overdue"
	BadgeDueToday Badge = "due_today"
	BadgeDueSoon  Badge = "due_soon"
	BadgeDueLater Badge = "due_later"
)

const dueSoonDays = 7

// EvaluateObligation classifies one obligation. Only calendar dates are
// compared; a payment date always wins.
func EvaluateObligation(today time.Time, due, paid *time.Time) Status {
	if paid != nil {
		return StatusPaid
	}
	if due == nil {
		return StatusPending
	}
	if utils.DaysBetween(*due, today) > 0 {
		return StatusOverdue
	}
	return StatusPending
}

// DaysOverdue returns today - due in calendar days, negative while the due
// date is ahead. Nil when there is no due date.
func DaysOverdue(today time.Time, due *time.Time) *int {
	if due == nil {
		return nil
	}
	days := utils.DaysBetween(*due, today)
	return &days
}

func FormatDaysOverdue(days *int) string {
	switch {
	case days == nil:
		return "-"
	case *days == 0:
		return "Vence hoje"
	case *days < 0:
		return fmt.Sprintf("%d dias para vencer", -*days)
	case *days == 1:
		return "1 dia vencido"
	default:
		return fmt.Sprintf("%d dias vencidos", *days)
	}
}

// DueBadgeFor buckets the days until due: overdue before today, due today,
// due soon within a week and due later after that.
func DueBadgeFor(paid bool, due *time.Time, today time.Time) Badge {
	if paid {
		return BadgeNone
	}
	if due == nil {
		return BadgeNeutral
	}
	daysUntilDue := utils.DaysBetween(today, *due)
	switch {
	case daysUntilDue < 0:
		return BadgeOverdue
	case daysUntilDue == 0:
		return BadgeDueToday
	case daysUntilDue <= dueSoonDays:
		return BadgeDueSoon
	default:
		return BadgeDueLater
	}
}

// ExpenseStatus derives the status of an expense with several installments
// from them; other expenses are evaluated on their own dates.
func ExpenseStatus(e Expense, today time.Time) Status {
	if !e.HasInstallments() {
		return EvaluateObligation(today, e.DueDate, e.PaymentDate)
	}
	allPaid := true
	for _, i := range e.Installments {
		if i.IsPaid() {
			continue
		}
		allPaid = false
		if EvaluateObligation(today, i.DueDate, nil) == StatusOverdue {
			return StatusOverdue
		}
	}
	if allPaid {
		return StatusPaid
	}
	return StatusPending
}

// Obligation is the evaluated state of an expense or installment.
type Obligation struct {
	Status      Status
	DaysOverdue *int
	DaysText    string
	Badge       Badge
}

func EvaluateDates(today time.Time, due, paid *time.Time) Obligation {
	days := DaysOverdue(today, due)
	if paid != nil {
		days = nil
	}
	return Obligation{
		Status:      EvaluateObligation(today, due, paid),
		DaysOverdue: days,
		DaysText:    FormatDaysOverdue(days),
		Badge:       DueBadgeFor(paid != nil, due, today),
	}
}

type EvaluatedInstallment struct {
	Installment Installment
	Obligation
}

type Evaluated struct {
	Expense Expense
	Obligation
	Installments []EvaluatedInstallment
	Summary      Summary
}

// Evaluate decorates e and each installment with its status, day text and
// badge. An expense with several installments shows the countdown of its
// earliest unpaid installment.
func Evaluate(e Expense, today time.Time) Evaluated {
	evaluated := Evaluated{
		Expense:      e,
		Installments: make([]EvaluatedInstallment, 0, len(e.Installments)),
		Summary:      InstallmentsSummary(e, today),
	}
	for _, i := range e.Installments {
		evaluated.Installments = append(evaluated.Installments, EvaluatedInstallment{
			Installment: i,
			Obligation:  EvaluateDates(today, i.DueDate, i.PaymentDate),
		})
	}

	if !e.HasInstallments() {
		evaluated.Obligation = EvaluateDates(today, e.DueDate, e.PaymentDate)
		return evaluated
	}

	status := ExpenseStatus(e, today)
	if status == StatusPaid {
		evaluated.Obligation = Obligation{Status: status, DaysText: FormatDaysOverdue(nil), Badge: BadgeNone}
		return evaluated
	}
	next := nextUnpaid(e.Installments)
	var due *time.Time
	if next != nil {
		due = next.DueDate
	}
	days := DaysOverdue(today, due)
	evaluated.Obligation = Obligation{
		Status:      status,
		DaysOverdue: days,
		DaysText:    FormatDaysOverdue(days),
		Badge:       DueBadgeFor(false, due, today),
	}
	return evaluated
}

func nextUnpaid(installments []Installment) *Installment {
	var next *Installment
	for idx := range installments {
		i := &installments[idx]
		if i.IsPaid() {
			continue
		}
		if next == nil || (i.DueDate != nil && (next.DueDate == nil || i.DueDate.Before(*next.DueDate))) {
			next = i
		}
	}
	return next
}
