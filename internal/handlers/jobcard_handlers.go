package handlers

import (
	"net/http"

	"garage_backend/internal/models"
	"garage_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// JobCardHandler holds the job card service.
type JobCardHandler struct {
	jobCardService services.JobCardService
}

// NewJobCardHandler creates a new JobCardHandler.
func NewJobCardHandler(js services.JobCardService) *JobCardHandler {
	return &JobCardHandler{jobCardService: js}
}

// CreateJobCard handles the creation of a job card with its line items.
func (h *JobCardHandler) CreateJobCard(c *gin.Context) {
	var req services.JobCardRequest
	if !bindJSON(c, &req, "CreateJobCard") {
		return
	}
	jobCard, err := h.jobCardService.CreateJobCard(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "Failed to create job card.")
		return
	}
	c.JSON(http.StatusCreated, jobCard)
}

// GetJobCards handles listing job cards with filters and pagination.
func (h *JobCardHandler) GetJobCards(c *gin.Context) {
	var filters models.JobCardFilters
	var ok bool
	if filters.ClientID, ok = queryInt64(c, "client_id"); !ok {
		return
	}
	if filters.VehicleID, ok = queryInt64(c, "vehicle_id"); !ok {
		return
	}
	if filters.TechnicianID, ok = queryInt64(c, "technician_id"); !ok {
		return
	}
	filters.Status = queryString(c, "status")
	filters.Search = queryString(c, "search")
	filters.Page, filters.PageSize = pagination(c)

	jobCards, total, err := h.jobCardService.ListJobCards(c.Request.Context(), filters)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch job cards.")
		return
	}
	if jobCards == nil {
		jobCards = []models.JobCard{}
	}
	respondList(c, jobCards, total, filters.Page, filters.PageSize)
}

// GetJobCardByID returns a job card with its line items and payments.
func (h *JobCardHandler) GetJobCardByID(c *gin.Context) {
	id, ok := pathID(c, "id", "job card")
	if !ok {
		return
	}
	jobCard, err := h.jobCardService.GetJobCard(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch job card.")
		return
	}
	c.JSON(http.StatusOK, jobCard)
}

// UpdateJobCard replaces the header and, when line_items is present, every line item.
func (h *JobCardHandler) UpdateJobCard(c *gin.Context) {
	id, ok := pathID(c, "id", "job card")
	if !ok {
		return
	}
	var req services.JobCardRequest
	if !bindJSON(c, &req, "UpdateJobCard") {
		return
	}
	jobCard, err := h.jobCardService.UpdateJobCard(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "Failed to update job card.")
		return
	}
	c.JSON(http.StatusOK, jobCard)
}

// UpdateJobCardStatus sets the status of a job card.
func (h *JobCardHandler) UpdateJobCardStatus(c *gin.Context) {
	id, ok := pathID(c, "id", "job card")
	if !ok {
		return
	}
	var req services.UpdateStatusRequest
	if !bindJSON(c, &req, "UpdateJobCardStatus") {
		return
	}
	jobCard, err := h.jobCardService.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondServiceError(c, err, "Failed to update job card status.")
		return
	}
	c.JSON(http.StatusOK, jobCard)
}

// DeleteJobCard deletes a job card and puts its parts back into stock.
func (h *JobCardHandler) DeleteJobCard(c *gin.Context) {
	id, ok := pathID(c, "id", "job card")
	if !ok {
		return
	}
	if err := h.jobCardService.DeleteJobCard(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "Failed to delete job card.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Job card deleted successfully"})
}

// RecalculateTotals recomputes and stores the job card totals.
func (h *JobCardHandler) RecalculateTotals(c *gin.Context) {
	id, ok := pathID(c, "id", "job card")
	if !ok {
		return
	}
	jobCard, err := h.jobCardService.RecalculateTotals(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to recalculate job card totals.")
		return
	}
	c.JSON(http.StatusOK, jobCard)
}

// AddLineItem appends one line item.
func (h *JobCardHandler) AddLineItem(c *gin.Context) {
	id, ok := pathID(c, "id", "job card")
	if !ok {
		return
	}
	var req services.LineItemRequest
	if !bindJSON(c, &req, "AddLineItem") {
		return
	}
	jobCard, err := h.jobCardService.AddLineItem(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "Failed to add line item.")
		return
	}
	c.JSON(http.StatusCreated, jobCard)
}

// ReplaceLineItems replaces every line item of the job card.
func (h *JobCardHandler) ReplaceLineItems(c *gin.Context) {
	id, ok := pathID(c, "id", "job card")
	if !ok {
		return
	}
	var req services.ReplaceLineItemsRequest
	if !bindJSON(c, &req, "ReplaceLineItems") {
		return
	}
	if req.LineItems == nil {
		req.LineItems = []services.LineItemRequest{}
	}
	jobCard, err := h.jobCardService.ReplaceLineItems(c.Request.Context(), id, req.LineItems)
	if err != nil {
		respondServiceError(c, err, "Failed to replace line items.")
		return
	}
	c.JSON(http.StatusOK, jobCard)
}

// UpdateLineItem edits one line item.
func (h *JobCardHandler) UpdateLineItem(c *gin.Context) {
	id, ok := pathID(c, "id", "job card")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "itemId", "line item")
	if !ok {
		return
	}
	var req services.LineItemRequest
	if !bindJSON(c, &req, "UpdateLineItem") {
		return
	}
	jobCard, err := h.jobCardService.UpdateLineItem(c.Request.Context(), id, itemID, req)
	if err != nil {
		respondServiceError(c, err, "Failed to update line item.")
		return
	}
	c.JSON(http.StatusOK, jobCard)
}

// RemoveLineItem deletes one line item.
func (h *JobCardHandler) RemoveLineItem(c *gin.Context) {
	id, ok := pathID(c, "id", "job card")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "itemId", "line item")
	if !ok {
		return
	}
	jobCard, err := h.jobCardService.RemoveLineItem(c.Request.Context(), id, itemID)
	if err != nil {
		respondServiceError(c, err, "Failed to remove line item.")
		return
	}
	c.JSON(http.StatusOK, jobCard)
}

// RecordPayment records a payment made by the authenticated user.
func (h *JobCardHandler) RecordPayment(c *gin.Context) {
	id, ok := pathID(c, "id", "job card")
	if !ok {
		return
	}
	var req services.PaymentRequest
	if !bindJSON(c, &req, "RecordPayment") {
		return
	}
	req.RecordedBy = currentUserID(c)

	payment, jobCard, err := h.jobCardService.RecordPayment(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "Failed to record payment.")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"payment": payment, "job_card": jobCard})
}

// GetPayments lists the payments of a job card.
func (h *JobCardHandler) GetPayments(c *gin.Context) {
	id, ok := pathID(c, "id", "job card")
	if !ok {
		return
	}
	payments, err := h.jobCardService.ListPayments(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch payments.")
		return
	}
	if payments == nil {
		payments = []models.Payment{}
	}
	c.JSON(http.StatusOK, payments)
}
