package transport

import (
	"net/http"

	"stock-manager/internal/middleware"
	"stock-manager/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ClientRequest represents the client create/update payload
type ClientRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required"`
	Address string `json:"address"`
}

// ClientHandler handles HTTP requests for the client directory
type ClientHandler struct {
	clientService service.ClientService
	logger        *zap.Logger
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(clientService service.ClientService, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{
		clientService: clientService,
		logger:        logger,
	}
}

// RegisterRoutes registers all client routes
func (h *ClientHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/clients", func(r chi.Router) {
		r.Get("/", h.ListClients)
		r.Post("/", h.CreateClient)
		r.Get("/recent", h.RecentClients)
		r.Get("/search", h.SearchClients)
		r.Put("/{id}", h.UpdateClient)
		r.Delete("/{id}", h.DeleteClient)
	})
}

// CreateClient adds a client
func (h *ClientHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req ClientRequest
	if !decodeValidated(w, r, h.logger, &req) {
		return
	}

	client, err := h.clientService.AddClient(r.Context(), service.ClientInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Client created", zap.String("client_id", client.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, client)
}

// UpdateClient edits a client
func (h *ClientHandler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid client ID")
		return
	}

	var req ClientRequest
	if !decodeValidated(w, r, h.logger, &req) {
		return
	}

	client, err := h.clientService.UpdateClient(r.Context(), id, service.ClientInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, client)
}

// DeleteClient removes a client
func (h *ClientHandler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid client ID")
		return
	}

	if err := h.clientService.DeleteClient(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Client deleted", zap.String("client_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "client deleted"})
}

// ListClients returns all clients, name ascending
func (h *ClientHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.clientService.ListClients(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, clients)
}

// RecentClients returns the latest clients
func (h *ClientHandler) RecentClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.clientService.RecentClients(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, clients)
}

// SearchClients matches clients by name, email or phone
func (h *ClientHandler) SearchClients(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	clients, err := h.clientService.SearchClients(r.Context(), query)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, clients)
}
