package client

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type ClientDTO struct {
	Id        int    `json:"id"`
	Name      string `json:"name"`
	Reference string `json:"reference,omitempty"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

// ListClients godoc
// @Summary List clients
// @Tags Client
// @Produce json
// @Success 200 {array} ClientDTO
// @Router /api/client [get]
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	log.Debug("Listing clients")
	w.Header().Set("Content-Type", "application/json")
	clients, err := h.service.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	dtos := make([]ClientDTO, 0, len(clients))
	for _, c := range clients {
		dtos = append(dtos, ToDTO(c))
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GetClient godoc
// @Summary Get a client by ID
// @Tags Client
// @Produce json
// @Param clientId path int true "Client ID"
// @Success 200 {object} ClientDTO
// @Failure 404 {string} string "Client not found"
// @Router /api/client/{clientId} [get]
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, err := strconv.Atoi(mux.Vars(r)["clientId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrClientNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ToDTO(c)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// CreateClient godoc
// @Summary Create a client
// @Tags Client
// @Accept json
// @Produce json
// @Param client body ClientDTO true "Client"
// @Success 201 {object} ClientDTO
// @Failure 400 {string} string "Bad Request"
// @Router /api/client [post]
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating client")
	w.Header().Set("Content-Type", "application/json")
	var dto ClientDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	created, err := h.service.Create(r.Context(), FromDTO(dto))
	if err != nil {
		if errors.Is(err, ErrInvalidClient) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(ToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// UpdateClient godoc
// @Summary Update a client
// @Tags Client
// @Accept json
// @Produce json
// @Param clientId path int true "Client ID"
// @Param client body ClientDTO true "Client"
// @Success 200 {object} ClientDTO
// @Failure 400 {string} string "Bad Request"
// @Failure 404 {string} string "Client not found"
// @Router /api/client/{clientId} [put]
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, err := strconv.Atoi(mux.Vars(r)["clientId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var dto ClientDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.Id != 0 && dto.Id != id {
		http.Error(w, "Invalid client id in request body", http.StatusBadRequest)
		return
	}
	dto.Id = id
	updated, err := h.service.Update(r.Context(), FromDTO(dto))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidClient):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrClientNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// DeleteClient godoc
// @Summary Delete a client
// @Tags Client
// @Param clientId path int true "Client ID"
// @Success 204 "No Content"
// @Failure 404 {string} string "Client not found"
// @Router /api/client/{clientId} [delete]
func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["clientId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	deleted, err := h.service.Delete(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "client not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func ToDTO(c Client) ClientDTO {
	return ClientDTO{Id: c.Id, Name: c.Name, Reference: c.Reference}
}

func FromDTO(dto ClientDTO) Client {
	return Client{Id: dto.Id, Name: dto.Name, Reference: dto.Reference}
}
