package order_service

import "time"

type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusCancelled  Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusDone, StatusCancelled:
		return true
	}
	return false
}

// OrderOfService is the work order generated when a budget is approved.
// There is at most one per budget.
type OrderOfService struct {
	Id          int
	Name        string
	BudgetId    int
	Date        time.Time
	Description string
	Status      Status
}
