package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Aashish23092/case-intake/dto"
	"github.com/Aashish23092/case-intake/service"
)

type WorkflowHandler struct {
	workflowService *service.WorkflowService
}

func NewWorkflowHandler(workflowService *service.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{
		workflowService: workflowService,
	}
}

// StartSession handles POST /applications
func (h *WorkflowHandler) StartSession(c *gin.Context) {
	var req dto.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := req.Validate(); err != nil {
		h.sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	resp, err := h.workflowService.StartSession(c.Request.Context(), req.Mode, req.CaseID, req.UserEmail)
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "Failed to start session", err)
		return
	}

	log.Printf("Session %s started in %s mode", resp.SessionID, req.Mode)
	c.JSON(http.StatusCreated, resp)
}

// GetState handles GET /applications/:id
func (h *WorkflowHandler) GetState(c *gin.Context) {
	resp, err := h.workflowService.GetState(c.Param("id"))
	if err != nil {
		h.sendError(c, statusFor(err), "Failed to load session", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RetryHydration handles POST /applications/:id/retry
func (h *WorkflowHandler) RetryHydration(c *gin.Context) {
	resp, err := h.workflowService.RetryHydration(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.sendError(c, statusFor(err), "Failed to retry hydration", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateField handles PUT /applications/:id/fields
func (h *WorkflowHandler) UpdateField(c *gin.Context) {
	var req dto.FieldUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	resp, err := h.workflowService.SetField(c.Param("id"), req.Field, req.Value)
	if err != nil {
		h.sendError(c, statusFor(err), "Failed to update field", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Advance handles POST /applications/:id/advance
func (h *WorkflowHandler) Advance(c *gin.Context) {
	resp, err := h.workflowService.Advance(c.Request.Context(), c.Param("id"))
	if errors.Is(err, service.ErrValidationFailed) {
		// Recoverable: the state carries the per-field errors and warning.
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}
	if err != nil {
		h.sendError(c, statusFor(err), "Failed to advance", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Retreat handles POST /applications/:id/retreat
func (h *WorkflowHandler) Retreat(c *gin.Context) {
	resp, err := h.workflowService.Retreat(c.Param("id"))
	if err != nil {
		h.sendError(c, statusFor(err), "Failed to retreat", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Save handles POST /applications/:id/save
func (h *WorkflowHandler) Save(c *gin.Context) {
	resp, err := h.workflowService.Save(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.sendError(c, statusFor(err), "Failed to save application", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SubmitPayment handles POST /applications/:id/payment
func (h *WorkflowHandler) SubmitPayment(c *gin.Context) {
	resp, err := h.workflowService.SubmitPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.sendError(c, statusFor(err), "Failed to submit payment", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Discard handles DELETE /applications/:id
func (h *WorkflowHandler) Discard(c *gin.Context) {
	if err := h.workflowService.DiscardSession(c.Param("id")); err != nil {
		h.sendError(c, statusFor(err), "Failed to discard session", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// sendError sends a structured error response
func (h *WorkflowHandler) sendError(c *gin.Context, statusCode int, message string, err error) {
	errorMsg := message
	if err != nil {
		errorMsg = err.Error()
		log.Printf("Error: %s - %v", message, err)
	}

	c.JSON(statusCode, dto.ErrorResponse{
		Error:   "WORKFLOW_ERROR",
		Message: errorMsg,
		Code:    statusCode,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrSessionNotReady),
		errors.Is(err, service.ErrReadOnlySession),
		errors.Is(err, service.ErrSaveNotAllowed),
		errors.Is(err, service.ErrPaymentNotAllowed),
		errors.Is(err, service.ErrNoRetryNeeded):
		return http.StatusConflict
	case errors.Is(err, service.ErrUnknownField),
		errors.Is(err, service.ErrUnknownExhibit):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
