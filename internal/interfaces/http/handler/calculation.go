package handler

import (
	"github.com/gin-gonic/gin"

	workpaperapp "github.com/fdccore/backend/internal/application/workpaper"
	"github.com/fdccore/backend/internal/domain/workpaper"
)

// CalculationHandler handles module calculation and reference-data endpoints
type CalculationHandler struct {
	BaseHandler
	calculationService *workpaperapp.CalculationService
}

// NewCalculationHandler creates a new CalculationHandler
func NewCalculationHandler(calculationService *workpaperapp.CalculationService) *CalculationHandler {
	return &CalculationHandler{
		calculationService: calculationService,
	}
}

// Calculate godoc
// @Summary      Calculate a module
// @Description  Run the module's calculation over its effective transactions and config
// @Tags         calculations
// @Produce      json
// @Param        id path string true "Module ID" format(uuid)
// @Success      200 {object} dto.Response{data=workpaper.CalculationResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /modules/{id}/calculate [post]
func (h *CalculationHandler) Calculate(c *gin.Context) {
	moduleID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid module ID format")
		return
	}

	result, err := h.calculationService.CalculateModule(c.Request.Context(), moduleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Rates godoc
// @Summary      Get ATO rates
// @Description  The rate table used by the calculators for the current tax year
// @Tags         calculations
// @Produce      json
// @Success      200 {object} dto.Response
// @Security     BearerAuth
// @Router       /rates [get]
func (h *CalculationHandler) Rates(c *gin.Context) {
	h.Success(c, h.calculationService.ATORates())
}

// MethodCatalog godoc
// @Summary      Get a module type's calculation methods
// @Description  Lists the selectable calculation methods and their config fields
// @Tags         calculations
// @Produce      json
// @Param        module_type path string true "Module type" example(motor_vehicle)
// @Success      200 {object} dto.Response{data=workpaper.MethodCatalog}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /module-types/{module_type}/methods [get]
func (h *CalculationHandler) MethodCatalog(c *gin.Context) {
	moduleType := workpaper.ModuleType(c.Param("module_type"))

	catalog, ok := workpaper.MethodCatalogFor(moduleType)
	if !ok {
		h.NotFound(c, "Unknown module type: "+string(moduleType))
		return
	}

	h.Success(c, catalog)
}
