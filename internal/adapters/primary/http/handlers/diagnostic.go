package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"diagnostic-imaging-service/internal/adapters/primary/http/dto"
	"diagnostic-imaging-service/internal/core/domain"
	ports "diagnostic-imaging-service/internal/core/ports/output"
	"diagnostic-imaging-service/internal/core/services"
)

const headerUserID = "X-User-ID"

// getUserID reads the opaque caller identity. Authentication itself lives
// outside this service; whoever fronts it is expected to set the header.
func getUserID(c *gin.Context) (uuid.UUID, error) {
	raw := c.GetHeader(headerUserID)
	if raw == "" {
		return uuid.Nil, domain.ErrMissingUser
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.ErrMissingUser
	}
	return id, nil
}

func (h *Handler) ProcessDiagnostic(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read image file"})
		return
	}
	defer f.Close()

	// One byte past the limit is enough for the validator to reject the
	// upload as too large without buffering the whole body.
	data, err := io.ReadAll(io.LimitReader(f, services.MaxImageBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read image file"})
		return
	}

	upload := domain.UploadedImage{Filename: fileHeader.Filename, Data: data}
	rec, err := h.pipelineSvc.Process(c.Request.Context(), upload, c.PostForm("patient_name"), userID)
	if err != nil {
		log.WithError(err).Error("diagnostic submission failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, h.toResponse(rec))
}

func (h *Handler) GetDiagnostic(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record id"})
		return
	}

	rec, err := h.historySvc.Get(c.Request.Context(), id, userID, domain.OwnerOnly)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.toResponse(rec))
}

func (h *Handler) ListDiagnostics(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit = services.ClampPageSize(limit)

	filter := ports.HistoryListFilter{
		UserID:      userID,
		PatientName: c.Query("patient"),
		Limit:       limit,
		Offset:      offset,
	}
	// Cross-user listing is a capability of the caller (e.g. an admin
	// console); permission enforcement lives with it, not here.
	if c.Query("all") == "true" {
		filter.UserID = uuid.Nil
	}

	records, total, err := h.historySvc.List(c.Request.Context(), filter)
	if err != nil {
		log.WithError(err).Error("list diagnostics failed")
		mapDomainError(c, err)
		return
	}

	items := make([]dto.DiagnosticResponse, 0, len(records))
	for _, rec := range records {
		items = append(items, h.toResponse(rec))
	}

	c.JSON(http.StatusOK, dto.ListDiagnosticsResponse{
		Items:      items,
		Total:      total,
		PageSize:   limit,
		NextOffset: offset + len(items),
	})
}

func (h *Handler) GetStats(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	if c.Query("all") == "true" {
		userID = uuid.Nil
	}

	stats, err := h.historySvc.Stats(c.Request.Context(), userID)
	if err != nil {
		log.WithError(err).Error("history stats failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToStatsResponse(stats))
}

func (h *Handler) DeleteDiagnostic(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record id"})
		return
	}

	if err := h.historySvc.Delete(c.Request.Context(), id, userID, domain.OwnerOnly); err != nil {
		mapDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) toResponse(rec *domain.HistoryRecord) dto.DiagnosticResponse {
	return dto.ToDiagnosticResponse(rec, h.storage.URL(rec.OriginalKey), h.storage.URL(rec.AnnotatedKey))
}
