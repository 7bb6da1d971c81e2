package budget

import (
	"time"

	"github.com/gestorweb/gestor/pkg/client"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type Budget struct {
	Id int
	// Number is the display number, kept verbatim as entered.
	Number   string
	ClientId int
	// Client is set when the budget was submitted with embedded client data.
	Client      *client.Client
	EmployeeId  int
	Type        string
	Status      Status
	Value       decimal.Decimal
	Description string
	// StatusUpdatedAt is the time of the last status transition, nil while never changed.
	StatusUpdatedAt *time.Time
	CreatedAt       time.Time
}

func (b Budget) IsApproved() bool {
	return b.Status == StatusApproved
}
