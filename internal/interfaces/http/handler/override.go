package handler

import (
	"github.com/gin-gonic/gin"

	workpaperapp "github.com/fdccore/backend/internal/application/workpaper"
)

// OverrideHandler handles transaction and field override endpoints
type OverrideHandler struct {
	BaseHandler
	overrideService    *workpaperapp.OverrideService
	calculationService *workpaperapp.CalculationService
}

// NewOverrideHandler creates a new OverrideHandler
func NewOverrideHandler(overrideService *workpaperapp.OverrideService, calculationService *workpaperapp.CalculationService) *OverrideHandler {
	return &OverrideHandler{
		overrideService:    overrideService,
		calculationService: calculationService,
	}
}

// UpsertTransactionOverride godoc
// @Summary      Set a transaction override
// @Description  Create or replace the job-scoped override for a transaction. Original data is never modified.
// @Tags         overrides
// @Accept       json
// @Produce      json
// @Param        id path string true "Job ID" format(uuid)
// @Param        transaction_id path string true "Transaction ID" format(uuid)
// @Param        request body workpaper.UpsertOverrideRequest true "Override request"
// @Success      200 {object} dto.Response{data=workpaper.OverrideResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /jobs/{id}/transactions/{transaction_id}/override [put]
func (h *OverrideHandler) UpsertTransactionOverride(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	jobID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid job ID format")
		return
	}

	transactionID, err := parseIDParam(c, "transaction_id")
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID format")
		return
	}

	var req workpaperapp.UpsertOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	override, err := h.overrideService.UpsertTransactionOverride(c.Request.Context(), transactionID, jobID, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, override)
}

// DeleteTransactionOverride godoc
// @Summary      Remove a transaction override
// @Description  Revert the transaction to its original values within the job
// @Tags         overrides
// @Produce      json
// @Param        id path string true "Job ID" format(uuid)
// @Param        transaction_id path string true "Transaction ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /jobs/{id}/transactions/{transaction_id}/override [delete]
func (h *OverrideHandler) DeleteTransactionOverride(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	jobID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid job ID format")
		return
	}

	transactionID, err := parseIDParam(c, "transaction_id")
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID format")
		return
	}

	if err := h.overrideService.DeleteTransactionOverride(c.Request.Context(), transactionID, jobID, actor); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ListJobOverrides godoc
// @Summary      List a job's transaction overrides
// @Tags         overrides
// @Produce      json
// @Param        id path string true "Job ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]workpaper.OverrideResponse}
// @Security     BearerAuth
// @Router       /jobs/{id}/overrides [get]
func (h *OverrideHandler) ListJobOverrides(c *gin.Context) {
	jobID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid job ID format")
		return
	}

	overrides, err := h.overrideService.ListJobOverrides(c.Request.Context(), jobID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, overrides)
}

// EffectiveTransactions godoc
// @Summary      List a job's effective transactions
// @Description  Original transactions with job-scoped overrides applied field by field
// @Tags         overrides
// @Produce      json
// @Param        id path string true "Job ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]workpaper.EffectiveTransaction}
// @Security     BearerAuth
// @Router       /jobs/{id}/effective-transactions [get]
func (h *OverrideHandler) EffectiveTransactions(c *gin.Context) {
	jobID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid job ID format")
		return
	}

	transactions, err := h.calculationService.EffectiveTransactionsForJob(c.Request.Context(), jobID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, transactions)
}

// UpsertFieldOverride godoc
// @Summary      Set a module field override
// @Description  Pin a calculated field of a module to a manual value
// @Tags         overrides
// @Accept       json
// @Produce      json
// @Param        id path string true "Module ID" format(uuid)
// @Param        request body workpaper.UpsertFieldOverrideRequest true "Field override request"
// @Success      200 {object} dto.Response{data=workpaper.FieldOverrideResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /modules/{id}/field-overrides [put]
func (h *OverrideHandler) UpsertFieldOverride(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	moduleID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid module ID format")
		return
	}

	var req workpaperapp.UpsertFieldOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	override, err := h.overrideService.UpsertFieldOverride(c.Request.Context(), moduleID, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, override)
}

// DeleteFieldOverride godoc
// @Summary      Remove a module field override
// @Tags         overrides
// @Produce      json
// @Param        id path string true "Module ID" format(uuid)
// @Param        field_key path string true "Field key" example(total_deduction)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /modules/{id}/field-overrides/{field_key} [delete]
func (h *OverrideHandler) DeleteFieldOverride(c *gin.Context) {
	moduleID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid module ID format")
		return
	}

	fieldKey := c.Param("field_key")
	if fieldKey == "" {
		h.BadRequest(c, "Field key is required")
		return
	}

	if err := h.overrideService.DeleteFieldOverride(c.Request.Context(), moduleID, fieldKey); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ListFieldOverrides godoc
// @Summary      List a module's field overrides
// @Tags         overrides
// @Produce      json
// @Param        id path string true "Module ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]workpaper.FieldOverrideResponse}
// @Security     BearerAuth
// @Router       /modules/{id}/field-overrides [get]
func (h *OverrideHandler) ListFieldOverrides(c *gin.Context) {
	moduleID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid module ID format")
		return
	}

	overrides, err := h.overrideService.ListFieldOverrides(c.Request.Context(), moduleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, overrides)
}
