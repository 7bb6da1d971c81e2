package event_bus

import "time"

const (
	BudgetApprovedEvent      EventType = "budget.approved"
	BudgetClientChangedEvent EventType = "budget.client.changed"
)

// BudgetApproved is published once a budget's approval is persisted (or the
// confirmation poll gave up). Embedded client data is carried when the budget
// was submitted with it and no client id could be resolved.
type BudgetApproved struct {
	Id              int
	Number          string
	ClientId        int
	ClientName      string
	ClientReference string
	EmployeeId      int
	Description     string
	StatusUpdatedAt *time.Time
	CreatedAt       time.Time
}

// BudgetClientChanged carries the already-updated budget of an approved
// budget whose client was replaced.
type BudgetClientChanged struct {
	BudgetApproved
	PreviousClientId int
}
