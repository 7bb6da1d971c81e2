package budget

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gestorweb/gestor/pkg/client"
	"github.com/shopspring/decimal"
)

var ErrInvalidBudget = errors.New("invalid budget")

// RawBudget accepts every payload shape the dashboard has sent for a budget.
// Normalize turns it into a Budget; nothing past the boundary reads it.
type RawBudget struct {
	BudgetId         FlexInt             `json:"budget_id"`
	Id               FlexInt             `json:"id"`
	IdBudget         FlexInt             `json:"id_budget"`
	BudgetNumber     FlexString          `json:"budget_number"`
	ClientId         FlexInt             `json:"client_id"`
	Client           *RawClient          `json:"client"`
	EmployeeId       FlexInt             `json:"employee_id"`
	Employee         *RawEmployee        `json:"employee"`
	Type             string              `json:"type"`
	Status           string              `json:"status"`
	Value            decimal.NullDecimal `json:"value"`
	Description      string              `json:"description"`
	DateStatusUpdate string              `json:"date_status_update"`
	CreatedAt        string              `json:"created_at"`
}

type RawClient struct {
	ClientId  FlexInt `json:"client_id"`
	Id        FlexInt `json:"id"`
	Name      string  `json:"name"`
	Reference string  `json:"reference"`
}

type RawEmployee struct {
	EmployeeId FlexInt `json:"employee_id"`
	Id         FlexInt `json:"id"`
}

// FlexInt decodes a JSON number, a numeric string or null. Zero means absent.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	s := strings.Trim(string(data), `"`)
	if s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid integer %s: %w", data, err)
	}
	*f = FlexInt(n)
	return nil
}

// FlexString decodes a JSON string or number, keeping the digits verbatim.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid budget number %s: %w", data, err)
	}
	*f = FlexString(n.String())
	return nil
}

func firstNonZero(values ...FlexInt) int {
	for _, v := range values {
		if v != 0 {
			return int(v)
		}
	}
	return 0
}

// Normalize maps a RawBudget into the canonical Budget.
func Normalize(raw RawBudget) (Budget, error) {
	b := Budget{
		Id:          firstNonZero(raw.BudgetId, raw.Id, raw.IdBudget),
		Number:      string(raw.BudgetNumber),
		ClientId:    int(raw.ClientId),
		EmployeeId:  int(raw.EmployeeId),
		Type:        strings.TrimSpace(raw.Type),
		Status:      Status(strings.ToLower(strings.TrimSpace(raw.Status))),
		Description: strings.TrimSpace(raw.Description),
	}
	if b.Status == "" {
		b.Status = StatusPending
	}
	if !b.Status.Valid() {
		return Budget{}, fmt.Errorf("%w: unknown status %q", ErrInvalidBudget, raw.Status)
	}
	if raw.Value.Valid {
		b.Value = raw.Value.Decimal.Round(2)
	}

	if raw.Client != nil {
		embeddedId := firstNonZero(raw.Client.ClientId, raw.Client.Id)
		if b.ClientId == 0 {
			b.ClientId = embeddedId
		}
		name := strings.TrimSpace(raw.Client.Name)
		reference := strings.TrimSpace(raw.Client.Reference)
		if name != "" || reference != "" {
			b.Client = &client.Client{Id: embeddedId, Name: name, Reference: reference}
		}
	}
	if raw.Employee != nil && b.EmployeeId == 0 {
		b.EmployeeId = firstNonZero(raw.Employee.EmployeeId, raw.Employee.Id)
	}

	if raw.DateStatusUpdate != "" {
		t, err := ParseTimestamp(raw.DateStatusUpdate)
		if err != nil {
			return Budget{}, fmt.Errorf("%w: date_status_update: %w", ErrInvalidBudget, err)
		}
		b.StatusUpdatedAt = &t
	}
	if raw.CreatedAt != "" {
		t, err := ParseTimestamp(raw.CreatedAt)
		if err != nil {
			return Budget{}, fmt.Errorf("%w: created_at: %w", ErrInvalidBudget, err)
		}
		b.CreatedAt = t
	}
	return b, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ParseTimestamp accepts RFC 3339, zone-less date-times and plain dates.
// Values without a zone are read as UTC.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date format %q", value)
}
