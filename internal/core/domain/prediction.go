package domain

// Point is a single 2-D vertex of a prediction geometry, in pixel coordinates
// of the source image.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Prediction is one region detected by the remote model. Geometry is either a
// polygon (Points, at least three vertices) or a center-based bounding box
// (X, Y, Width, Height). When both are present the polygon wins.
type Prediction struct {
	Label      string  `json:"class"`
	Confidence float64 `json:"confidence"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Points     []Point `json:"points,omitempty"`
}

func (p Prediction) IsPolygon() bool {
	return len(p.Points) >= 3
}

// NoFindingsLabel is the canonical label reported when the model returns no
// predictions at all. An empty result is a valid diagnosis, not an error.
const NoFindingsLabel = "Sin hallazgos"

// CanonicalResult is the single (label, confidence) summary derived from all
// predictions of one inference call. Confidence is kept in [0, 1].
type CanonicalResult struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}
