package handlers

import (
	"net/http"

	"garage_backend/internal/models"
	"garage_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// CatalogHandler holds the catalog service for part categories and vendors.
type CatalogHandler struct {
	catalogService services.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(cs services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: cs}
}

// Part Categories Handlers

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req services.CategoryRequest
	if !bindJSON(c, &req, "CreateCategory") {
		return
	}
	category, err := h.catalogService.CreateCategory(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "Failed to create part category.")
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *CatalogHandler) GetCategories(c *gin.Context) {
	categories, err := h.catalogService.GetCategories(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to fetch part categories.")
		return
	}
	if categories == nil {
		categories = []models.PartCategory{}
	}
	c.JSON(http.StatusOK, categories)
}

func (h *CatalogHandler) GetCategoryByID(c *gin.Context) {
	id, ok := pathID(c, "id", "category")
	if !ok {
		return
	}
	category, err := h.catalogService.GetCategory(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch part category.")
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	id, ok := pathID(c, "id", "category")
	if !ok {
		return
	}
	var req services.CategoryRequest
	if !bindJSON(c, &req, "UpdateCategory") {
		return
	}
	category, err := h.catalogService.UpdateCategory(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "Failed to update part category.")
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	id, ok := pathID(c, "id", "category")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteCategory(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "Failed to delete part category.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Part category deleted successfully"})
}

// Vendors Handlers

func (h *CatalogHandler) CreateVendor(c *gin.Context) {
	var req services.VendorRequest
	if !bindJSON(c, &req, "CreateVendor") {
		return
	}
	vendor, err := h.catalogService.CreateVendor(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "Failed to create vendor.")
		return
	}
	c.JSON(http.StatusCreated, vendor)
}

func (h *CatalogHandler) GetVendors(c *gin.Context) {
	vendors, err := h.catalogService.GetVendors(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to fetch vendors.")
		return
	}
	if vendors == nil {
		vendors = []models.Vendor{}
	}
	c.JSON(http.StatusOK, vendors)
}

func (h *CatalogHandler) GetVendorByID(c *gin.Context) {
	id, ok := pathID(c, "id", "vendor")
	if !ok {
		return
	}
	vendor, err := h.catalogService.GetVendor(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch vendor.")
		return
	}
	c.JSON(http.StatusOK, vendor)
}

func (h *CatalogHandler) UpdateVendor(c *gin.Context) {
	id, ok := pathID(c, "id", "vendor")
	if !ok {
		return
	}
	var req services.VendorRequest
	if !bindJSON(c, &req, "UpdateVendor") {
		return
	}
	vendor, err := h.catalogService.UpdateVendor(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "Failed to update vendor.")
		return
	}
	c.JSON(http.StatusOK, vendor)
}

func (h *CatalogHandler) DeleteVendor(c *gin.Context) {
	id, ok := pathID(c, "id", "vendor")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteVendor(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "Failed to delete vendor.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Vendor deleted successfully"})
}
