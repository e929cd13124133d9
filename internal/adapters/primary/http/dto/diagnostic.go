package dto

import (
	"time"

	"github.com/google/uuid"

	"diagnostic-imaging-service/internal/core/domain"
)

type DiagnosticResponse struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	PatientName  string    `json:"patient_name"`
	Label        string    `json:"label"`
	Confidence   float64   `json:"confidence"`
	OriginalKey  string    `json:"original_key"`
	AnnotatedKey string    `json:"annotated_key"`
	OriginalURL  string    `json:"original_url"`
	AnnotatedURL string    `json:"annotated_url"`
	CreatedAt    string    `json:"created_at"`
}

func ToDiagnosticResponse(rec *domain.HistoryRecord, originalURL, annotatedURL string) DiagnosticResponse {
	return DiagnosticResponse{
		ID:           rec.ID,
		UserID:       rec.UserID,
		PatientName:  rec.PatientName,
		Label:        rec.Result.Label,
		Confidence:   rec.Result.Confidence,
		OriginalKey:  rec.OriginalKey,
		AnnotatedKey: rec.AnnotatedKey,
		OriginalURL:  originalURL,
		AnnotatedURL: annotatedURL,
		CreatedAt:    rec.CreatedAt.Format(time.RFC3339),
	}
}

type ListDiagnosticsResponse struct {
	Items      []DiagnosticResponse `json:"items"`
	Total      int                  `json:"total"`
	PageSize   int                  `json:"page_size"`
	NextOffset int                  `json:"next_offset"`
}

type StatsResponse struct {
	Total             int            `json:"total"`
	AverageConfidence float64        `json:"average_confidence"`
	ByLabel           map[string]int `json:"by_label"`
}

func ToStatsResponse(stats *domain.HistoryStats) StatsResponse {
	return StatsResponse{
		Total:             stats.Total,
		AverageConfidence: stats.AverageConfidence,
		ByLabel:           stats.ByLabel,
	}
}
