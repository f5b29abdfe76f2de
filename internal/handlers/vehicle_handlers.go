package handlers

import (
	"net/http"

	"garage_backend/internal/models"
	"garage_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// VehicleHandler holds the vehicle service.
type VehicleHandler struct {
	vehicleService services.VehicleService
}

// NewVehicleHandler creates a new VehicleHandler.
func NewVehicleHandler(vs services.VehicleService) *VehicleHandler {
	return &VehicleHandler{vehicleService: vs}
}

func (h *VehicleHandler) CreateVehicle(c *gin.Context) {
	var req services.VehicleRequest
	if !bindJSON(c, &req, "CreateVehicle") {
		return
	}
	vehicle, err := h.vehicleService.CreateVehicle(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "Failed to create vehicle.")
		return
	}
	c.JSON(http.StatusCreated, vehicle)
}

// GetVehicles lists vehicles; search matches VIN, plate, make or model.
func (h *VehicleHandler) GetVehicles(c *gin.Context) {
	var filters models.VehicleFilters
	var ok bool
	if filters.ClientID, ok = queryInt64(c, "client_id"); !ok {
		return
	}
	filters.Search = queryString(c, "search")
	filters.Page, filters.PageSize = pagination(c)

	vehicles, total, err := h.vehicleService.GetVehicles(c.Request.Context(), filters)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch vehicles.")
		return
	}
	if vehicles == nil {
		vehicles = []models.Vehicle{}
	}
	respondList(c, vehicles, total, filters.Page, filters.PageSize)
}

func (h *VehicleHandler) GetVehicleByID(c *gin.Context) {
	id, ok := pathID(c, "id", "vehicle")
	if !ok {
		return
	}
	vehicle, err := h.vehicleService.GetVehicleByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch vehicle.")
		return
	}
	c.JSON(http.StatusOK, vehicle)
}

func (h *VehicleHandler) UpdateVehicle(c *gin.Context) {
	id, ok := pathID(c, "id", "vehicle")
	if !ok {
		return
	}
	var req services.VehicleRequest
	if !bindJSON(c, &req, "UpdateVehicle") {
		return
	}
	vehicle, err := h.vehicleService.UpdateVehicle(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "Failed to update vehicle.")
		return
	}
	c.JSON(http.StatusOK, vehicle)
}

func (h *VehicleHandler) DeleteVehicle(c *gin.Context) {
	id, ok := pathID(c, "id", "vehicle")
	if !ok {
		return
	}
	if err := h.vehicleService.DeleteVehicle(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "Failed to delete vehicle.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Vehicle deleted successfully"})
}
