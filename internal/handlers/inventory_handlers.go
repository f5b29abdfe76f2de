package handlers

import (
	"net/http"

	"garage_backend/internal/models"
	"garage_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// InventoryHandler holds the inventory service.
type InventoryHandler struct {
	inventoryService services.InventoryService
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(is services.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: is}
}

// CreatePart handles creation of a new inventory part.
func (h *InventoryHandler) CreatePart(c *gin.Context) {
	var req services.PartRequest
	if !bindJSON(c, &req, "CreatePart") {
		return
	}
	part, err := h.inventoryService.CreatePart(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "Failed to create inventory part.")
		return
	}
	c.JSON(http.StatusCreated, part)
}

// GetParts lists parts. Supports search, category_id, vendor_id, active and low_stock.
func (h *InventoryHandler) GetParts(c *gin.Context) {
	var filters models.PartFilters
	var ok bool
	if filters.CategoryID, ok = queryInt64(c, "category_id"); !ok {
		return
	}
	if filters.VendorID, ok = queryInt64(c, "vendor_id"); !ok {
		return
	}
	if filters.Active, ok = queryBool(c, "active"); !ok {
		return
	}
	lowStock, ok := queryBool(c, "low_stock")
	if !ok {
		return
	}
	filters.LowStock = lowStock != nil && *lowStock
	filters.Search = queryString(c, "search")
	filters.Page, filters.PageSize = pagination(c)

	parts, total, err := h.inventoryService.GetParts(c.Request.Context(), filters)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch inventory parts.")
		return
	}
	if parts == nil {
		parts = []models.InventoryPart{}
	}
	respondList(c, parts, total, filters.Page, filters.PageSize)
}

// GetPartByID returns a single part.
func (h *InventoryHandler) GetPartByID(c *gin.Context) {
	id, ok := pathID(c, "id", "part")
	if !ok {
		return
	}
	part, err := h.inventoryService.GetPart(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch inventory part.")
		return
	}
	c.JSON(http.StatusOK, part)
}

// UpdatePart updates part details. Stock is changed through AdjustStock only.
func (h *InventoryHandler) UpdatePart(c *gin.Context) {
	id, ok := pathID(c, "id", "part")
	if !ok {
		return
	}
	var req services.PartRequest
	if !bindJSON(c, &req, "UpdatePart") {
		return
	}
	part, err := h.inventoryService.UpdatePart(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "Failed to update inventory part.")
		return
	}
	c.JSON(http.StatusOK, part)
}

// DeletePart deactivates a part.
func (h *InventoryHandler) DeletePart(c *gin.Context) {
	id, ok := pathID(c, "id", "part")
	if !ok {
		return
	}
	if err := h.inventoryService.DeactivatePart(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "Failed to deactivate inventory part.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Inventory part deactivated successfully"})
}

// AdjustStock applies a manual stock correction.
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	id, ok := pathID(c, "id", "part")
	if !ok {
		return
	}
	var req services.StockAdjustmentRequest
	if !bindJSON(c, &req, "AdjustStock") {
		return
	}
	req.UserID = currentUserID(c)

	part, result, err := h.inventoryService.AdjustStock(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "Failed to adjust stock.")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"part":             part,
		"requested_change": result.Requested,
		"applied_change":   result.Applied,
	})
}

// GetMovements lists stock movements, newest first.
func (h *InventoryHandler) GetMovements(c *gin.Context) {
	var filters models.MovementFilters
	var ok bool
	if filters.PartID, ok = queryInt64(c, "part_id"); !ok {
		return
	}
	if filters.JobCardID, ok = queryInt64(c, "job_card_id"); !ok {
		return
	}
	filters.SKU = queryString(c, "sku")
	filters.MovementType = queryString(c, "movement_type")
	filters.Page, filters.PageSize = pagination(c)

	movements, total, err := h.inventoryService.GetMovements(c.Request.Context(), filters)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch stock movements.")
		return
	}
	if movements == nil {
		movements = []models.StockMovement{}
	}
	respondList(c, movements, total, filters.Page, filters.PageSize)
}
