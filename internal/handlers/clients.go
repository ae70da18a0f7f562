package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"client-feedback-admin/internal/logger"
	"client-feedback-admin/internal/middleware"
	"client-feedback-admin/internal/models"
	"client-feedback-admin/internal/services"
)

// ClientHandler handles manual client management
type ClientHandler struct {
	logger    *logger.Logger
	clientSvc services.ClientService
}

// NewClientHandler creates a new client handler
func NewClientHandler(logger *logger.Logger, clientSvc services.ClientService) *ClientHandler {
	return &ClientHandler{
		logger:    logger,
		clientSvc: clientSvc,
	}
}

// RegisterRoutes registers client routes on an authenticated router
func (h *ClientHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/clients", h.ListClients).Methods("GET")
	router.HandleFunc("/clients", h.CreateClient).Methods("POST")
	router.HandleFunc("/clients/{id}", h.GetClient).Methods("GET")
	router.HandleFunc("/clients/{id}", h.UpdateClient).Methods("PUT")
	router.HandleFunc("/clients/{id}", h.DeleteClient).Methods("DELETE")
}

// ListClients returns every client
func (h *ClientHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.clientSvc.List(r.Context())
	if err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"clients": clients,
		"total":   len(clients),
	})
}

// CreateClient adds a client by hand
func (h *ClientHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	admin := middleware.GetAdminFromContext(r.Context())
	if admin == nil {
		writeErrorResponse(h.logger, w, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	var req models.ClientRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	client, err := h.clientSvc.Create(r.Context(), admin.ID, &req)
	if err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, client)
}

// GetClient returns one client
func (h *ClientHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	client, err := h.clientSvc.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, client)
}

// UpdateClient changes a client's name and email
func (h *ClientHandler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	var req models.ClientRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	client, err := h.clientSvc.Update(r.Context(), mux.Vars(r)["id"], &req)
	if err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, client)
}

// DeleteClient removes a client
func (h *ClientHandler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	if err := h.clientSvc.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
