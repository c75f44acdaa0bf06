package handler

import (
	"github.com/gin-gonic/gin"

	workpaperapp "github.com/fdccore/backend/internal/application/workpaper"
)

// TransactionHandler handles transaction ingestion and admin endpoints
type TransactionHandler struct {
	BaseHandler
	transactionService *workpaperapp.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *workpaperapp.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

// Ingest godoc
// @Summary      Ingest a transaction
// @Description  Record a transaction from myFDC, manual entry, or a bank import
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        request body workpaper.IngestTransactionRequest true "Transaction ingestion request"
// @Success      201 {object} dto.Response{data=workpaper.TransactionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /transactions [post]
func (h *TransactionHandler) Ingest(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req workpaperapp.IngestTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	transaction, err := h.transactionService.IngestTransaction(c.Request.Context(), req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, transaction)
}

// GetByID godoc
// @Summary      Get a transaction
// @Tags         transactions
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Success      200 {object} dto.Response{data=workpaper.TransactionResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /transactions/{id} [get]
func (h *TransactionHandler) GetByID(c *gin.Context) {
	transactionID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID format")
		return
	}

	transaction, err := h.transactionService.GetTransaction(c.Request.Context(), transactionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, transaction)
}

// ListByClient godoc
// @Summary      List a client's transactions for a tax year
// @Tags         transactions
// @Produce      json
// @Param        client_id path string true "Client ID" format(uuid)
// @Param        year query string true "Tax year label" example(2024-25)
// @Success      200 {object} dto.Response{data=[]workpaper.TransactionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clients/{client_id}/transactions [get]
func (h *TransactionHandler) ListByClient(c *gin.Context) {
	clientID, err := parseIDParam(c, "client_id")
	if err != nil {
		h.BadRequest(c, "Invalid client ID format")
		return
	}

	year := c.Query("year")
	if year == "" {
		h.BadRequest(c, "Query parameter 'year' is required")
		return
	}

	transactions, err := h.transactionService.ListClientTransactions(c.Request.Context(), clientID, year)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, transactions)
}

// Delete godoc
// @Summary      Delete a transaction
// @Description  Administrative removal of an erroneous transaction. Blocked while a frozen job covers its date.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Param        request body workpaper.DeleteTransactionRequest true "Deletion reason"
// @Success      204
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	transactionID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID format")
		return
	}

	var req workpaperapp.DeleteTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.transactionService.DeleteTransaction(c.Request.Context(), transactionID, actor, req); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
