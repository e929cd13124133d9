package services

import "diagnostic-imaging-service/internal/core/domain"

// ExtractResult reduces a prediction sequence to its canonical (label,
// confidence) pair: the entry with maximum confidence, ties broken by
// first-seen order. An empty sequence yields the no-findings sentinel; this
// function never fails.
func ExtractResult(preds []domain.Prediction) domain.CanonicalResult {
	if len(preds) == 0 {
		return domain.CanonicalResult{Label: domain.NoFindingsLabel, Confidence: 0.0}
	}

	best := 0
	for i := 1; i < len(preds); i++ {
		if preds[i].Confidence > preds[best].Confidence {
			best = i
		}
	}

	return domain.CanonicalResult{
		Label:      preds[best].Label,
		Confidence: preds[best].Confidence,
	}
}
