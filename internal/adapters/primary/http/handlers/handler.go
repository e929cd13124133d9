package handlers

import (
	"github.com/gin-gonic/gin"

	"diagnostic-imaging-service/internal/core/services"
	ports "diagnostic-imaging-service/internal/core/ports/output"
)

type Handler struct {
	pipelineSvc *services.PipelineService
	historySvc  *services.HistoryService
	storage     ports.StorageGateway
}

func New(pipelineSvc *services.PipelineService, historySvc *services.HistoryService, storage ports.StorageGateway) *Handler {
	return &Handler{
		pipelineSvc: pipelineSvc,
		historySvc:  historySvc,
		storage:     storage,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/diagnostics", h.ProcessDiagnostic)
	r.GET("/diagnostics", h.ListDiagnostics)
	r.GET("/diagnostics/stats", h.GetStats)
	r.GET("/diagnostics/:id", h.GetDiagnostic)
	r.DELETE("/diagnostics/:id", h.DeleteDiagnostic)
}
