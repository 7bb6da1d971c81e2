package stats

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gestorweb/gestor/internal/utils"
	"github.com/gestorweb/gestor/pkg/expense"
	log "github.com/sirupsen/logrus"
)

type DailyStatsDTO struct {
	Date        string `json:"date"`
	Count       int    `json:"count"`
	Due         string `json:"due"`
	Paid        string `json:"paid"`
	Outstanding string `json:"outstanding"`
}

type StatusStatsDTO struct {
	Status expense.Status `json:"status"`
	Count  int            `json:"count"`
	Total  string         `json:"total"`
}

type StatsSummaryDTO struct {
	StartDate   string           `json:"start_date"`
	EndDate     string           `json:"end_date"`
	Days        []DailyStatsDTO  `json:"days"`
	Statuses    []StatusStatsDTO `json:"statuses"`
	Total       string           `json:"total"`
	Paid        string           `json:"paid"`
	Outstanding string           `json:"outstanding"`
	Overdue     string           `json:"overdue"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type StatsHandler struct {
	statsService     StatsService
	csvStatsRenderer StatsRenderer
}

func NewStatsHandler(statsService StatsService, csvStatsRenderer StatsRenderer) *StatsHandler {
	return &StatsHandler{statsService, csvStatsRenderer}
}

// GetStats godoc
// @Summary Expense totals per due day and per status
// @Tags Stats
// @Produce json,text/csv
// @Param from query string true "First day (YYYY-MM-DD)"
// @Param to query string true "Last day (YYYY-MM-DD)"
// @Success 200 {object} StatsSummaryDTO
// @Failure 400 {object} ErrorResponse
// @Router /api/stats/expenses [get]
func (handler *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	from, ok := parseDay(w, r, "from")
	if !ok {
		return
	}
	to, ok := parseDay(w, r, "to")
	if !ok {
		return
	}

	stats, err := handler.statsService.GetStats(r.Context(), from, to)
	if err != nil {
		if errors.Is(err, ErrInvalidRange) {
			writeBadRequest(w, "Invalid date range", err.Error())
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if r.Header.Get("Accept") == "text/csv" {
		csv, err := handler.csvStatsRenderer.RenderStats(stats)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(csv)); err != nil {
			log.Errorf("failed to write csv stats: %v", err)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(convertToJsonResponse(stats)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func parseDay(w http.ResponseWriter, r *http.Request, param string) (time.Time, bool) {
	day, err := utils.ParseDate(r.URL.Query().Get(param))
	if err != nil || day == nil {
		writeBadRequest(w, "Invalid "+param+" date", param+" must be in YYYY-MM-DD format")
		return time.Time{}, false
	}
	return *day, true
}

func writeBadRequest(w http.ResponseWriter, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message, Details: details}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func convertToJsonResponse(stats StatsSummary) StatsSummaryDTO {
	days := make([]DailyStatsDTO, 0, len(stats.Days))
	for _, day := range stats.Days {
		days = append(days, DailyStatsDTO{
			Date:        day.Date.Format(time.DateOnly),
			Count:       day.Count,
			Due:         day.Due.StringFixed(2),
			Paid:        day.Paid.StringFixed(2),
			Outstanding: day.Outstanding.StringFixed(2),
		})
	}
	statuses := make([]StatusStatsDTO, 0, len(stats.Statuses))
	for _, s := range stats.Statuses {
		statuses = append(statuses, StatusStatsDTO{Status: s.Status, Count: s.Count, Total: s.Total.StringFixed(2)})
	}
	return StatsSummaryDTO{
		StartDate:   stats.StartDate.Format(time.DateOnly),
		EndDate:     stats.EndDate.Format(time.DateOnly),
		Days:        days,
		Statuses:    statuses,
		Total:       stats.Total.StringFixed(2),
		Paid:        stats.Paid.StringFixed(2),
		Outstanding: stats.Outstanding.StringFixed(2),
		Overdue:     stats.Overdue.StringFixed(2),
	}
}
