package order_service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gestorweb/gestor/pkg/client"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) *mux.Router {
	teardown := setup(t)
	t.Cleanup(teardown)
	handler := NewHandler(service)
	r := mux.NewRouter()
	r.HandleFunc("/api/order-service", handler.ListOrders).Methods("GET")
	r.HandleFunc("/api/order-service/preview", handler.Preview).Methods("POST")
	r.HandleFunc("/api/order-service/{osId}", handler.GetOrder).Methods("GET")
	r.HandleFunc("/api/order-service/{osId}", handler.UpdateOrder).Methods("PUT")
	return r
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_Preview(t *testing.T) {
	t.Run("should generate name from legacy budget payload", func(t *testing.T) {
		r := setupRouter(t)

		// when
		w := serve(r, http.MethodPost, "/api/order-service/preview",
			`{"budget_number": 42, "date_status_update": "2025-03-15", "client": {"reference": "ACM"}}`)

		// then
		require.Equal(t, http.StatusOK, w.Code)
		var preview PreviewDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&preview))
		assert.Equal(t, "ACM42MAR25", preview.Name)
		assert.Equal(t, "OS gerada automaticamente - Cliente: Cliente", preview.Description)
		orders, err := repoStub.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, orders)
	})

	t.Run("should resolve client by id", func(t *testing.T) {
		r := setupRouter(t)
		clientsStub.Set(client.Client{Id: 3, Name: "Acme Corp"})

		w := serve(r, http.MethodPost, "/api/order-service/preview",
			`{"id_budget": "8", "client_id": "3", "created_at": "2025-11-03T10:00:00Z"}`)

		require.Equal(t, http.StatusOK, w.Code)
		var preview PreviewDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&preview))
		assert.Equal(t, "ACM8NOV25", preview.Name)
		assert.Equal(t, "Acme Corp", preview.ClientName)
	})

	t.Run("should reject malformed payload", func(t *testing.T) {
		r := setupRouter(t)

		w := serve(r, http.MethodPost, "/api/order-service/preview", `{"date_status_update": "ontem"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_GetListAndUpdate(t *testing.T) {
	r := setupRouter(t)
	created, ok := service.GenerateForBudget(ctx, approvedBudget())
	require.True(t, ok)
	path := "/api/order-service/" + strconv.Itoa(created.Id)

	w := serve(r, http.MethodGet, "/api/order-service", "")
	require.Equal(t, http.StatusOK, w.Code)
	var orders []OrderOfServiceDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&orders))
	require.Len(t, orders, 1)
	assert.Equal(t, "CLI42MAR25", orders[0].Name)

	w = serve(r, http.MethodPut, path, `{"description": "Entrega", "status": "done"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var updated OrderOfServiceDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&updated))
	assert.Equal(t, StatusDone, updated.Status)
	assert.Equal(t, "Entrega", updated.Description)

	w = serve(r, http.MethodPut, path, `{"status": "lost"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, http.MethodGet, "/api/order-service/999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
