package stats

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/gestorweb/gestor/pkg/expense"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type StatsRenderer interface {
	RenderStats(stats StatsSummary) (string, error)
}

type CsvStatsRendererImpl struct {
}

func NewCsvStatsRenderer() *CsvStatsRendererImpl {
	return &CsvStatsRendererImpl{}
}

var statusLabels = map[expense.Status]string{
	expense.StatusPaid:    "Pago",
	expense.StatusPending: "Pendente",
	expense.StatusOverdue: "Vencido",
}

// RenderStats writes one row per day followed by the totals and a block
// with the totals per status.
func (t *CsvStatsRendererImpl) RenderStats(stats StatsSummary) (string, error) {
	data := make([][]string, 0, len(stats.Days)+len(stats.Statuses)+4)
	data = append(data, []string{"Data", "Qtd", "Previsto", "Pago", "Em aberto"})

	count := 0
	for _, day := range stats.Days {
		count += day.Count
		data = append(data, []string{
			day.Date.Format("02/01/2006"),
			strconv.Itoa(day.Count),
			money(day.Due),
			money(day.Paid),
			money(day.Outstanding),
		})
	}
	data = append(data, []string{"Total", strconv.Itoa(count), money(stats.Total), money(stats.Paid), money(stats.Outstanding)})

	data = append(data, []string{}, []string{"Situação", "Qtd", "Valor"})
	for _, s := range stats.Statuses {
		data = append(data, []string{statusLabels[s.Status], strconv.Itoa(s.Count), money(s.Total)})
	}

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	writer.Comma = ';'
	for _, row := range data {
		if err := writer.Write(row); err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}

	return b.String(), nil
}

// money uses a decimal comma, matching the ';' separated layout spreadsheets
// expect in pt_BR.
func money(d decimal.Decimal) string {
	return strings.Replace(d.StringFixed(2), ".", ",", 1)
}
