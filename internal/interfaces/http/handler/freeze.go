package handler

import (
	"github.com/gin-gonic/gin"

	workpaperapp "github.com/fdccore/backend/internal/application/workpaper"
)

// FreezeHandler handles freeze, reopen, and snapshot endpoints
type FreezeHandler struct {
	BaseHandler
	freezeService *workpaperapp.FreezeService
}

// NewFreezeHandler creates a new FreezeHandler
func NewFreezeHandler(freezeService *workpaperapp.FreezeService) *FreezeHandler {
	return &FreezeHandler{
		freezeService: freezeService,
	}
}

// FreezeModule godoc
// @Summary      Freeze a module
// @Description  Snapshot the module's calculation state, then lock it against edits
// @Tags         freeze
// @Accept       json
// @Produce      json
// @Param        id path string true "Module ID" format(uuid)
// @Param        request body workpaper.FreezeRequest true "Freeze request"
// @Success      200 {object} dto.Response{data=workpaper.SnapshotResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /modules/{id}/freeze [post]
func (h *FreezeHandler) FreezeModule(c *gin.Context) {
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

	var req workpaperapp.FreezeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	snapshot, err := h.freezeService.FreezeModule(c.Request.Context(), moduleID, actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, snapshot)
}

// ReopenModule godoc
// @Summary      Reopen a frozen module
// @Description  Requires a reopen reason of at least ten characters
// @Tags         freeze
// @Accept       json
// @Produce      json
// @Param        id path string true "Module ID" format(uuid)
// @Param        request body workpaper.ReopenRequest true "Reopen request"
// @Success      200 {object} dto.Response{data=workpaper.ModuleResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /modules/{id}/reopen [post]
func (h *FreezeHandler) ReopenModule(c *gin.Context) {
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

	var req workpaperapp.ReopenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	module, err := h.freezeService.ReopenModule(c.Request.Context(), moduleID, actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, module)
}

// FreezeJob godoc
// @Summary      Freeze a job
// @Description  Freeze every open module and the job itself under one snapshot
// @Tags         freeze
// @Accept       json
// @Produce      json
// @Param        id path string true "Job ID" format(uuid)
// @Param        request body workpaper.FreezeJobRequest true "Job freeze request"
// @Success      200 {object} dto.Response{data=workpaper.SnapshotResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /jobs/{id}/freeze [post]
func (h *FreezeHandler) FreezeJob(c *gin.Context) {
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

	var req workpaperapp.FreezeJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	snapshot, err := h.freezeService.FreezeJob(c.Request.Context(), jobID, actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, snapshot)
}

// ReopenJob godoc
// @Summary      Reopen a frozen job
// @Tags         freeze
// @Accept       json
// @Produce      json
// @Param        id path string true "Job ID" format(uuid)
// @Param        request body workpaper.ReopenRequest true "Reopen request"
// @Success      200 {object} dto.Response{data=workpaper.JobResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /jobs/{id}/reopen [post]
func (h *FreezeHandler) ReopenJob(c *gin.Context) {
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

	var req workpaperapp.ReopenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	job, err := h.freezeService.ReopenJob(c.Request.Context(), jobID, actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, job)
}

// GetSnapshot godoc
// @Summary      Get a freeze snapshot
// @Tags         freeze
// @Produce      json
// @Param        id path string true "Snapshot ID" format(uuid)
// @Success      200 {object} dto.Response{data=workpaper.SnapshotResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /snapshots/{id} [get]
func (h *FreezeHandler) GetSnapshot(c *gin.Context) {
	snapshotID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid snapshot ID format")
		return
	}

	snapshot, err := h.freezeService.GetSnapshot(c.Request.Context(), snapshotID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, snapshot)
}

// ListModuleSnapshots godoc
// @Summary      List a module's snapshots
// @Tags         freeze
// @Produce      json
// @Param        id path string true "Module ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]workpaper.SnapshotResponse}
// @Security     BearerAuth
// @Router       /modules/{id}/snapshots [get]
func (h *FreezeHandler) ListModuleSnapshots(c *gin.Context) {
	moduleID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid module ID format")
		return
	}

	snapshots, err := h.freezeService.ListModuleSnapshots(c.Request.Context(), moduleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, snapshots)
}

// LatestModuleSnapshot godoc
// @Summary      Get a module's most recent snapshot
// @Tags         freeze
// @Produce      json
// @Param        id path string true "Module ID" format(uuid)
// @Success      200 {object} dto.Response{data=workpaper.SnapshotResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /modules/{id}/snapshots/latest [get]
func (h *FreezeHandler) LatestModuleSnapshot(c *gin.Context) {
	moduleID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid module ID format")
		return
	}

	snapshot, err := h.freezeService.LatestModuleSnapshot(c.Request.Context(), moduleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, snapshot)
}

// ListJobSnapshots godoc
// @Summary      List a job's snapshots
// @Tags         freeze
// @Produce      json
// @Param        id path string true "Job ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]workpaper.SnapshotResponse}
// @Security     BearerAuth
// @Router       /jobs/{id}/snapshots [get]
func (h *FreezeHandler) ListJobSnapshots(c *gin.Context) {
	jobID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid job ID format")
		return
	}

	snapshots, err := h.freezeService.ListJobSnapshots(c.Request.Context(), jobID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, snapshots)
}
