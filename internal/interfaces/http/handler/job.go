package handler

import (
	"github.com/gin-gonic/gin"

	workpaperapp "github.com/fdccore/backend/internal/application/workpaper"
)

// JobHandler handles workpaper job and module API endpoints
type JobHandler struct {
	BaseHandler
	jobService         *workpaperapp.JobService
	calculationService *workpaperapp.CalculationService
}

// NewJobHandler creates a new JobHandler
func NewJobHandler(jobService *workpaperapp.JobService, calculationService *workpaperapp.CalculationService) *JobHandler {
	return &JobHandler{
		jobService:         jobService,
		calculationService: calculationService,
	}
}

// UpdateJobNotesRequest replaces the staff notes on a job
type UpdateJobNotesRequest struct {
	Notes string `json:"notes"`
}

// SetJobStatusRequest moves a job to an admin-selected status
type SetJobStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// Create godoc
// @Summary      Create a workpaper job
// @Description  Create a workpaper job for a client and tax year
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        request body workpaper.CreateJobRequest true "Job creation request"
// @Success      201 {object} dto.Response{data=workpaper.JobResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /jobs [post]
func (h *JobHandler) Create(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req workpaperapp.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	job, err := h.jobService.CreateJob(c.Request.Context(), req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, job)
}

// GetByID godoc
// @Summary      Get a workpaper job
// @Tags         jobs
// @Produce      json
// @Param        id path string true "Job ID" format(uuid)
// @Success      200 {object} dto.Response{data=workpaper.JobResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /jobs/{id} [get]
func (h *JobHandler) GetByID(c *gin.Context) {
	jobID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid job ID format")
		return
	}

	job, err := h.jobService.GetJob(c.Request.Context(), jobID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, job)
}

// ListByClient godoc
// @Summary      List a client's workpaper jobs
// @Tags         jobs
// @Produce      json
// @Param        client_id path string true "Client ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]workpaper.JobResponse}
// @Security     BearerAuth
// @Router       /clients/{client_id}/jobs [get]
func (h *JobHandler) ListByClient(c *gin.Context) {
	clientID, err := parseIDParam(c, "client_id")
	if err != nil {
		h.BadRequest(c, "Invalid client ID format")
		return
	}

	jobs, err := h.jobService.ListJobsByClient(c.Request.Context(), clientID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, jobs)
}

// UpdateNotes godoc
// @Summary      Update job notes
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        id path string true "Job ID" format(uuid)
// @Param        request body UpdateJobNotesRequest true "Notes update request"
// @Success      200 {object} dto.Response{data=workpaper.JobResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /jobs/{id}/notes [put]
func (h *JobHandler) UpdateNotes(c *gin.Context) {
	jobID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid job ID format")
		return
	}

	var req UpdateJobNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	job, err := h.jobService.UpdateJobNotes(c.Request.Context(), jobID, req.Notes)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, job)
}

// SetStatus godoc
// @Summary      Set job status
// @Description  Move the job to an admin-selected workflow status
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        id path string true "Job ID" format(uuid)
// @Param        request body SetJobStatusRequest true "Status change request"
// @Success      200 {object} dto.Response{data=workpaper.JobResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /jobs/{id}/status [put]
func (h *JobHandler) SetStatus(c *gin.Context) {
	jobID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid job ID format")
		return
	}

	var req SetJobStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	job, err := h.jobService.SetJobStatus(c.Request.Context(), jobID, req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, job)
}

// Summary godoc
// @Summary      Get job totals
// @Description  Aggregate deduction and GST totals across the job's modules
// @Tags         jobs
// @Produce      json
// @Param        id path string true "Job ID" format(uuid)
// @Success      200 {object} dto.Response{data=workpaper.JobSummaryResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /jobs/{id}/summary [get]
func (h *JobHandler) Summary(c *gin.Context) {
	jobID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid job ID format")
		return
	}

	summary, err := h.calculationService.JobSummary(c.Request.Context(), jobID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// CreateModule godoc
// @Summary      Add a module to a job
// @Tags         modules
// @Accept       json
// @Produce      json
// @Param        id path string true "Job ID" format(uuid)
// @Param        request body workpaper.CreateModuleRequest true "Module creation request"
// @Success      201 {object} dto.Response{data=workpaper.ModuleResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /jobs/{id}/modules [post]
func (h *JobHandler) CreateModule(c *gin.Context) {
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

	var req workpaperapp.CreateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	module, err := h.jobService.CreateModule(c.Request.Context(), jobID, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, module)
}

// GetModule godoc
// @Summary      Get a module instance
// @Tags         modules
// @Produce      json
// @Param        id path string true "Module ID" format(uuid)
// @Success      200 {object} dto.Response{data=workpaper.ModuleResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /modules/{id} [get]
func (h *JobHandler) GetModule(c *gin.Context) {
	moduleID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid module ID format")
		return
	}

	module, err := h.jobService.GetModule(c.Request.Context(), moduleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, module)
}

// ListModules godoc
// @Summary      List a job's modules
// @Tags         modules
// @Produce      json
// @Param        id path string true "Job ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]workpaper.ModuleResponse}
// @Security     BearerAuth
// @Router       /jobs/{id}/modules [get]
func (h *JobHandler) ListModules(c *gin.Context) {
	jobID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid job ID format")
		return
	}

	modules, err := h.jobService.ListModules(c.Request.Context(), jobID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, modules)
}

// UpdateModuleConfig godoc
// @Summary      Update module configuration
// @Description  Merge a partial config over the module's stored config
// @Tags         modules
// @Accept       json
// @Produce      json
// @Param        id path string true "Module ID" format(uuid)
// @Param        request body workpaper.UpdateModuleConfigRequest true "Config update request"
// @Success      200 {object} dto.Response{data=workpaper.ModuleResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /modules/{id}/config [put]
func (h *JobHandler) UpdateModuleConfig(c *gin.Context) {
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

	var req workpaperapp.UpdateModuleConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	module, err := h.jobService.UpdateModuleConfig(c.Request.Context(), moduleID, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, module)
}

// SetModuleStatus godoc
// @Summary      Set module status
// @Tags         modules
// @Accept       json
// @Produce      json
// @Param        id path string true "Module ID" format(uuid)
// @Param        request body SetJobStatusRequest true "Status change request"
// @Success      200 {object} dto.Response{data=workpaper.ModuleResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /modules/{id}/status [put]
func (h *JobHandler) SetModuleStatus(c *gin.Context) {
	moduleID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid module ID format")
		return
	}

	var req SetJobStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	module, err := h.jobService.SetModuleStatus(c.Request.Context(), moduleID, req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, module)
}
