package order_service

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/gestorweb/gestor/internal/utils"
	"github.com/gestorweb/gestor/pkg/budget"
	"github.com/gestorweb/gestor/pkg/client"
	"github.com/gestorweb/gestor/pkg/employee"
	"github.com/goodsign/monday"
	log "github.com/sirupsen/logrus"
)

const (
	fallbackClientRef  = "CLI"
	fallbackClientName = "Cliente"
	DefaultLocale      = monday.LocalePtBR
)

type Generated struct {
	Name        string
	Description string
	ClientName  string
}

type Generator struct {
	clock  utils.Clock
	locale monday.Locale
}

func NewGenerator(clock utils.Clock, locale string) *Generator {
	if locale == "" {
		locale = string(DefaultLocale)
	}
	return &Generator{clock: clock, locale: monday.Locale(locale)}
}

// Generate builds the order-of-service name {ref}{number}{MON}{YY} and its
// description. Employees are only used for logging.
func (g *Generator) Generate(b budget.Budget, clients []client.Client, employees []employee.Employee) Generated {
	ref, clientName := ResolveClient(b, clients)
	at := ReferenceDate(b, g.clock.Now())
	name := ref + NumericComponent(b) + MonthAbbreviation(at, g.locale) + fmt.Sprintf("%02d", at.Year()%100)

	description := strings.TrimSpace(b.Description)
	if description == "" {
		description = fmt.Sprintf("OS gerada automaticamente - Cliente: %s", clientName)
	}

	if e, ok := employee.FindById(employees, b.EmployeeId); ok {
		log.Debugf("generated OS name %s for budget %d (client: %s, employee: %s)", name, b.Id, clientName, e.Name)
	} else {
		log.Debugf("generated OS name %s for budget %d (client: %s)", name, b.Id, clientName)
	}

	return Generated{Name: name, Description: description, ClientName: clientName}
}

// ResolveClient returns the client code and display name for b. The client is
// looked up by id first, then taken from the budget's embedded client data.
func ResolveClient(b budget.Budget, clients []client.Client) (string, string) {
	var resolved *client.Client
	if c, ok := client.FindById(clients, b.ClientId); ok {
		resolved = &c
	} else if b.Client != nil {
		resolved = b.Client
	}
	if resolved == nil {
		return fallbackClientRef, fallbackClientName
	}

	name := strings.TrimSpace(resolved.Name)
	if name == "" {
		name = fallbackClientName
	}
	if ref := strings.TrimSpace(resolved.Reference); ref != "" {
		return strings.ToUpper(ref), name
	}
	if code := nameCode(resolved.Name); code != "" {
		return code, name
	}
	return fallbackClientRef, name
}

// nameCode is the first three non-whitespace characters of name, uppercased.
func nameCode(name string) string {
	runes := make([]rune, 0, 3)
	for _, r := range name {
		if unicode.IsSpace(r) {
			continue
		}
		runes = append(runes, r)
		if len(runes) == 3 {
			break
		}
	}
	return strings.ToUpper(string(runes))
}

// NumericComponent is the budget number as entered, else the id, else "0".
func NumericComponent(b budget.Budget) string {
	if n := strings.TrimSpace(b.Number); n != "" {
		return n
	}
	if b.Id != 0 {
		return strconv.Itoa(b.Id)
	}
	return "0"
}

// ReferenceDate is the status change date, else the creation date, else now.
func ReferenceDate(b budget.Budget, now time.Time) time.Time {
	if b.StatusUpdatedAt != nil && !b.StatusUpdatedAt.IsZero() {
		return *b.StatusUpdatedAt
	}
	if !b.CreatedAt.IsZero() {
		return b.CreatedAt
	}
	return now
}

// MonthAbbreviation returns the three letter, uppercase month of t in locale.
func MonthAbbreviation(t time.Time, locale monday.Locale) string {
	return shortMonth(monday.Format(t, "Jan", locale))
}

func shortMonth(month string) string {
	month = strings.TrimSuffix(strings.TrimSpace(month), ".")
	runes := []rune(month)
	if len(runes) > 3 {
		runes = runes[:3]
	}
	return strings.ToUpper(string(runes))
}
