package expense

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gestorweb/gestor/internal/notify"
	"github.com/gestorweb/gestor/internal/utils"
	log "github.com/sirupsen/logrus"
)

var (
	ErrInvalidExpense      = errors.New("invalid expense")
	ErrInstallmentNotFound = errors.New("installment not found")
)

type Service interface {
	List(ctx context.Context) ([]Expense, error)
	Get(ctx context.Context, id int) (Expense, error)
	Create(ctx context.Context, expense Expense) (Expense, error)
	Update(ctx context.Context, expense Expense) (Expense, error)
	Delete(ctx context.Context, id int) (bool, error)
	// PayExpense marks the expense and all of its unpaid installments as paid.
	// A nil paidAt means today.
	PayExpense(ctx context.Context, id int, paidAt *time.Time) (Expense, error)
	PayInstallment(ctx context.Context, id int, number int, paidAt *time.Time) (Expense, error)
	// Evaluate decorates e with its status as of today.
	Evaluate(e Expense) Evaluated
}

type ServiceImpl struct {
	repo  Repository
	clock utils.Clock
}

func NewService(repo Repository, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, clock: clock}
}

func (s *ServiceImpl) List(ctx context.Context) ([]Expense, error) {
	return s.repo.List(ctx)
}

func (s *ServiceImpl) Get(ctx context.Context, id int) (Expense, error) {
	return s.repo.Get(ctx, id)
}

func (s *ServiceImpl) Create(ctx context.Context, expense Expense) (Expense, error) {
	expense, err := s.prepare(ctx, expense)
	if err != nil {
		return Expense{}, err
	}
	id, err := s.repo.Store(ctx, expense)
	if err != nil {
		return Expense{}, err
	}
	expense.Id = id
	notify.Info(ctx, "Despesa %d criada", id)
	return expense, nil
}

func (s *ServiceImpl) Update(ctx context.Context, expense Expense) (Expense, error) {
	expense, err := s.prepare(ctx, expense)
	if err != nil {
		return Expense{}, err
	}
	ok, err := s.repo.Update(ctx, expense)
	if err != nil {
		return Expense{}, err
	}
	if !ok {
		return Expense{}, ErrExpenseNotFound
	}
	notify.Info(ctx, "Despesa %d atualizada", expense.Id)
	return expense, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, id int) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if !deleted {
		log.Warnf("expense %d not deleted, probably because it does not exist", id)
	}
	return deleted, nil
}

func (s *ServiceImpl) PayExpense(ctx context.Context, id int, paidAt *time.Time) (Expense, error) {
	expense, err := s.repo.Get(ctx, id)
	if err != nil {
		return Expense{}, err
	}
	at := s.paymentDate(paidAt)
	expense.PaymentDate = &at
	for idx := range expense.Installments {
		if !expense.Installments[idx].IsPaid() {
			expense.Installments[idx].PaymentDate = &at
		}
	}
	return s.savePayment(ctx, expense)
}

func (s *ServiceImpl) PayInstallment(ctx context.Context, id int, number int, paidAt *time.Time) (Expense, error) {
	expense, err := s.repo.Get(ctx, id)
	if err != nil {
		return Expense{}, err
	}
	if _, ok := expense.Installment(number); !ok {
		return Expense{}, fmt.Errorf("%w: expense %d has no installment %d", ErrInstallmentNotFound, id, number)
	}

	at := s.paymentDate(paidAt)
	allPaid := true
	for idx := range expense.Installments {
		i := &expense.Installments[idx]
		if i.Number == number {
			i.PaymentDate = &at
		}
		if !i.IsPaid() {
			allPaid = false
		}
	}
	if allPaid {
		expense.PaymentDate = latestPayment(expense.Installments)
	}
	return s.savePayment(ctx, expense)
}

func (s *ServiceImpl) Evaluate(e Expense) Evaluated {
	return Evaluate(e, utils.Today(s.clock))
}

func (s *ServiceImpl) savePayment(ctx context.Context, expense Expense) (Expense, error) {
	ok, err := s.repo.Update(ctx, expense)
	if err != nil {
		return Expense{}, err
	}
	if !ok {
		return Expense{}, ErrExpenseNotFound
	}
	notify.Info(ctx, "Pagamento da despesa %d registrado", expense.Id)
	return expense, nil
}

// prepare trims and rounds the expense and validates its installments.
// Validation errors are reported as error notices before anything is stored.
func (s *ServiceImpl) prepare(ctx context.Context, expense Expense) (Expense, error) {
	expense.Description = strings.TrimSpace(expense.Description)
	expense.TotalValue = expense.TotalValue.Round(2)
	if expense.ExpenseDate.IsZero() {
		expense.ExpenseDate = utils.Today(s.clock)
	}
	expense.Installments = normalizeInstallments(expense.Installments)

	if !expense.TotalValue.IsPositive() {
		err := fmt.Errorf("%w: total value must be positive", ErrInvalidExpense)
		notify.Error(ctx, "Informe o valor total da despesa")
		return Expense{}, err
	}
	if err := ValidateInstallments(expense); err != nil {
		log.Debugf("rejected expense installments: %v", err)
		notify.Error(ctx, "Parcelas inválidas: %v", err)
		return Expense{}, err
	}
	return expense, nil
}

func (s *ServiceImpl) paymentDate(paidAt *time.Time) time.Time {
	if paidAt != nil {
		return utils.DateOnly(*paidAt)
	}
	return utils.Today(s.clock)
}

func latestPayment(installments []Installment) *time.Time {
	var latest *time.Time
	for _, i := range installments {
		if i.PaymentDate != nil && (latest == nil || i.PaymentDate.After(*latest)) {
			latest = i.PaymentDate
		}
	}
	return latest
}
