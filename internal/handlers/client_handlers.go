package handlers

import (
	"net/http"

	"garage_backend/internal/models"
	"garage_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// ClientHandler holds the client and vehicle services.
type ClientHandler struct {
	clientService  services.ClientService
	vehicleService services.VehicleService
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(cs services.ClientService, vs services.VehicleService) *ClientHandler {
	return &ClientHandler{clientService: cs, vehicleService: vs}
}

// CreateClient handles the creation of a new client.
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req services.ClientRequest
	if !bindJSON(c, &req, "CreateClient") {
		return
	}
	client, err := h.clientService.CreateClient(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "Failed to create client.")
		return
	}
	c.JSON(http.StatusCreated, client)
}

// GetClients handles fetching all clients with pagination and search.
func (h *ClientHandler) GetClients(c *gin.Context) {
	var filters models.ClientFilters
	var ok bool
	if filters.IsActive, ok = queryBool(c, "is_active"); !ok {
		return
	}
	filters.Search = queryString(c, "search")
	filters.Page, filters.PageSize = pagination(c)

	clients, total, err := h.clientService.GetClients(c.Request.Context(), filters)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch clients.")
		return
	}
	if clients == nil {
		clients = []models.Client{}
	}
	respondList(c, clients, total, filters.Page, filters.PageSize)
}

// GetClientByID handles fetching a single client with its vehicles.
func (h *ClientHandler) GetClientByID(c *gin.Context) {
	id, ok := pathID(c, "id", "client")
	if !ok {
		return
	}
	client, err := h.clientService.GetClientByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch client.")
		return
	}
	c.JSON(http.StatusOK, client)
}

// UpdateClient handles updating a client.
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	id, ok := pathID(c, "id", "client")
	if !ok {
		return
	}
	var req services.ClientRequest
	if !bindJSON(c, &req, "UpdateClient") {
		return
	}
	client, err := h.clientService.UpdateClient(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "Failed to update client.")
		return
	}
	c.JSON(http.StatusOK, client)
}

// DeleteClient handles deleting a client.
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	id, ok := pathID(c, "id", "client")
	if !ok {
		return
	}
	if err := h.clientService.DeleteClient(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "Failed to delete client.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Client deleted successfully"})
}

// GetClientVehicles lists the vehicles owned by a client.
func (h *ClientHandler) GetClientVehicles(c *gin.Context) {
	id, ok := pathID(c, "id", "client")
	if !ok {
		return
	}
	if _, err := h.clientService.GetClientByID(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "Failed to fetch client.")
		return
	}
	page, pageSize := pagination(c)
	vehicles, total, err := h.vehicleService.GetVehicles(c.Request.Context(), models.VehicleFilters{ClientID: &id, Page: page, PageSize: pageSize})
	if err != nil {
		respondServiceError(c, err, "Failed to fetch client vehicles.")
		return
	}
	if vehicles == nil {
		vehicles = []models.Vehicle{}
	}
	respondList(c, vehicles, total, page, pageSize)
}
