package handler

import (
	"github.com/gin-gonic/gin"

	workpaperapp "github.com/fdccore/backend/internal/application/workpaper"
)

// QueryHandler handles client query and task endpoints
type QueryHandler struct {
	BaseHandler
	queryService *workpaperapp.QueryService
}

// NewQueryHandler creates a new QueryHandler
func NewQueryHandler(queryService *workpaperapp.QueryService) *QueryHandler {
	return &QueryHandler{
		queryService: queryService,
	}
}

// QueryDetailResponse bundles a query with its message thread
type QueryDetailResponse struct {
	Query    workpaperapp.QueryResponse     `json:"query"`
	Messages []workpaperapp.MessageResponse `json:"messages"`
}

// Create godoc
// @Summary      Create a query
// @Description  Raise a question to the client, optionally sending it immediately
// @Tags         queries
// @Accept       json
// @Produce      json
// @Param        request body workpaper.CreateQueryRequest true "Query creation request"
// @Success      201 {object} dto.Response{data=workpaper.QueryResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /queries [post]
func (h *QueryHandler) Create(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req workpaperapp.CreateQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	query, err := h.queryService.CreateQuery(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, query)
}

// Send godoc
// @Summary      Send a draft query to the client
// @Tags         queries
// @Produce      json
// @Param        id path string true "Query ID" format(uuid)
// @Success      200 {object} dto.Response{data=workpaper.QueryResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /queries/{id}/send [post]
func (h *QueryHandler) Send(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	queryID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid query ID format")
		return
	}

	query, err := h.queryService.SendQuery(c.Request.Context(), queryID, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, query)
}

// BulkSend godoc
// @Summary      Send multiple draft queries
// @Description  Sends each query independently and reports per-query failures
// @Tags         queries
// @Accept       json
// @Produce      json
// @Param        request body workpaper.BulkSendRequest true "Bulk send request"
// @Success      200 {object} dto.Response{data=workpaper.BulkSendResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /queries/bulk-send [post]
func (h *QueryHandler) BulkSend(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req workpaperapp.BulkSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.queryService.BulkSend(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// AddMessage godoc
// @Summary      Add a message to a query thread
// @Description  Turn-taking applies: consecutive messages from the same side are rejected
// @Tags         queries
// @Accept       json
// @Produce      json
// @Param        id path string true "Query ID" format(uuid)
// @Param        request body workpaper.AddMessageRequest true "Message request"
// @Success      201 {object} dto.Response{data=workpaper.MessageResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /queries/{id}/messages [post]
func (h *QueryHandler) AddMessage(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	queryID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid query ID format")
		return
	}

	var req workpaperapp.AddMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	message, err := h.queryService.AddMessage(c.Request.Context(), queryID, actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, message)
}

// Respond godoc
// @Summary      Record the client's response to a query
// @Tags         queries
// @Accept       json
// @Produce      json
// @Param        id path string true "Query ID" format(uuid)
// @Param        request body workpaper.RespondRequest true "Client response"
// @Success      200 {object} dto.Response{data=workpaper.QueryResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /queries/{id}/respond [post]
func (h *QueryHandler) Respond(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	queryID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid query ID format")
		return
	}

	var req workpaperapp.RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	query, err := h.queryService.RespondToQuery(c.Request.Context(), queryID, actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, query)
}

// Resolve godoc
// @Summary      Resolve a query
// @Tags         queries
// @Produce      json
// @Param        id path string true "Query ID" format(uuid)
// @Success      200 {object} dto.Response{data=workpaper.QueryResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /queries/{id}/resolve [post]
func (h *QueryHandler) Resolve(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	queryID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid query ID format")
		return
	}

	query, err := h.queryService.ResolveQuery(c.Request.Context(), queryID, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, query)
}

// Dismiss godoc
// @Summary      Dismiss a query
// @Tags         queries
// @Produce      json
// @Param        id path string true "Query ID" format(uuid)
// @Success      200 {object} dto.Response{data=workpaper.QueryResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /queries/{id}/dismiss [post]
func (h *QueryHandler) Dismiss(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	queryID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid query ID format")
		return
	}

	query, err := h.queryService.DismissQuery(c.Request.Context(), queryID, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, query)
}

// GetByID godoc
// @Summary      Get a query with its message thread
// @Tags         queries
// @Produce      json
// @Param        id path string true "Query ID" format(uuid)
// @Success      200 {object} dto.Response{data=QueryDetailResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /queries/{id} [get]
func (h *QueryHandler) GetByID(c *gin.Context) {
	queryID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid query ID format")
		return
	}

	query, messages, err := h.queryService.GetQuery(c.Request.Context(), queryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, QueryDetailResponse{Query: *query, Messages: messages})
}

// ListByJob godoc
// @Summary      List a job's queries
// @Tags         queries
// @Produce      json
// @Param        id path string true "Job ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]workpaper.QueryResponse}
// @Security     BearerAuth
// @Router       /jobs/{id}/queries [get]
func (h *QueryHandler) ListByJob(c *gin.Context) {
	jobID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid job ID format")
		return
	}

	queries, err := h.queryService.ListJobQueries(c.Request.Context(), jobID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, queries)
}

// Summary godoc
// @Summary      Summarise a job's queries by status
// @Tags         queries
// @Produce      json
// @Param        id path string true "Job ID" format(uuid)
// @Success      200 {object} dto.Response{data=workpaper.QueriesSummary}
// @Security     BearerAuth
// @Router       /jobs/{id}/queries/summary [get]
func (h *QueryHandler) Summary(c *gin.Context) {
	jobID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid job ID format")
		return
	}

	summary, err := h.queryService.JobQueriesSummary(c.Request.Context(), jobID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// ListClientTasks godoc
// @Summary      List a client's outstanding tasks
// @Description  The client-facing task list derived from sent queries
// @Tags         tasks
// @Produce      json
// @Param        client_id path string true "Client ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]workpaper.TaskResponse}
// @Security     BearerAuth
// @Router       /clients/{client_id}/tasks [get]
func (h *QueryHandler) ListClientTasks(c *gin.Context) {
	clientID, err := parseIDParam(c, "client_id")
	if err != nil {
		h.BadRequest(c, "Invalid client ID format")
		return
	}

	tasks, err := h.queryService.ListClientTasks(c.Request.Context(), clientID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tasks)
}
