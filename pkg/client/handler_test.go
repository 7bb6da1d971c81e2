package client

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) *mux.Router {
	teardown := setup(t)
	t.Cleanup(teardown)
	handler := NewHandler(service)
	r := mux.NewRouter()
	r.HandleFunc("/api/client", handler.ListClients).Methods("GET")
	r.HandleFunc("/api/client", handler.CreateClient).Methods("POST")
	r.HandleFunc("/api/client/{clientId}", handler.GetClient).Methods("GET")
	r.HandleFunc("/api/client/{clientId}", handler.UpdateClient).Methods("PUT")
	r.HandleFunc("/api/client/{clientId}", handler.DeleteClient).Methods("DELETE")
	return r
}

func TestHandler_CreateAndGetClient(t *testing.T) {
	r := setupRouter(t)

	// create
	body, _ := json.Marshal(ClientDTO{Name: "Acme", Reference: "ACM"})
	req := httptest.NewRequest(http.MethodPost, "/api/client", bytes.NewBuffer(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)
	var created ClientDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	assert.NotZero(t, created.Id)

	// get
	req = httptest.NewRequest(http.MethodGet, "/api/client/"+strconv.Itoa(created.Id), nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var fetched ClientDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&fetched))
	assert.Equal(t, created, fetched)
}

func TestHandler_GetClient_NotFound(t *testing.T) {
	r := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/client/404", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_CreateClient_Invalid(t *testing.T) {
	r := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/client", bytes.NewBufferString(`{"name":""}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_UpdateClient_IdMismatch(t *testing.T) {
	r := setupRouter(t)

	req := httptest.NewRequest(http.MethodPut, "/api/client/1", bytes.NewBufferString(`{"id":2,"name":"Acme"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_DeleteClient_NotFound(t *testing.T) {
	r := setupRouter(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/client/7", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
