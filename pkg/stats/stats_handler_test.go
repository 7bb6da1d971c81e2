package stats

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) *mux.Router {
	service, repo := setup(t)
	storeExpenses(t, repo)
	handler := NewStatsHandler(service, NewCsvStatsRenderer())
	r := mux.NewRouter()
	r.HandleFunc("/api/stats/expenses", handler.GetStats).Methods("GET")
	return r
}

func TestStatsHandler_GetStats(t *testing.T) {
	t.Run("should return json summary", func(t *testing.T) {
		r := setupRouter(t)
		req := httptest.NewRequest(http.MethodGet, "/api/stats/expenses?from=2025-03-10&to=2025-03-20", nil)
		w := httptest.NewRecorder()

		// when
		r.ServeHTTP(w, req)

		// then
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		var response StatsSummaryDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "2025-03-10", response.StartDate)
		assert.Equal(t, "2025-03-20", response.EndDate)
		assert.Len(t, response.Days, 11)
		assert.Equal(t, "230.25", response.Total)
		assert.Equal(t, "100.00", response.Overdue)
		require.Len(t, response.Statuses, 3)
	})

	t.Run("should render csv when requested", func(t *testing.T) {
		r := setupRouter(t)
		req := httptest.NewRequest(http.MethodGet, "/api/stats/expenses?from=2025-03-14&to=2025-03-14", nil)
		req.Header.Set("Accept", "text/csv")
		w := httptest.NewRecorder()

		// when
		r.ServeHTTP(w, req)

		// then
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
		lines := strings.Split(w.Body.String(), "\n")
		assert.Equal(t, "Data;Qtd;Previsto;Pago;Em aberto", lines[0])
		assert.Equal(t, "14/03/2025;1;40,00;40,00;0,00", lines[1])
	})

	t.Run("should reject missing dates", func(t *testing.T) {
		r := setupRouter(t)
		req := httptest.NewRequest(http.MethodGet, "/api/stats/expenses?from=2025-03-10", nil)
		w := httptest.NewRecorder()

		// when
		r.ServeHTTP(w, req)

		// then
		assert.Equal(t, http.StatusBadRequest, w.Code)
		var response ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "Invalid to date", response.Error)
	})

	t.Run("should reject reversed range", func(t *testing.T) {
		r := setupRouter(t)
		req := httptest.NewRequest(http.MethodGet, "/api/stats/expenses?from=2025-03-20&to=2025-03-10", nil)
		w := httptest.NewRecorder()

		// when
		r.ServeHTTP(w, req)

		// then
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
