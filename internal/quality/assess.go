package quality

import "codeintel/internal/metrics"

// Assessment is everything shown for one predicted file.
type Assessment struct {
	Features metrics.FeatureVector `json:"features"`
	Prediction
	Grade
	Suggestions []string `json:"suggestions"`
}

// Assess predicts fv and derives its grade and suggestions.
func (m *Model) Assess(fv metrics.FeatureVector) Assessment {
	p := m.Predict(fv)
	return Assessment{
		Features:    fv,
		Prediction:  p,
		Grade:       GradeFor(p.Label),
		Suggestions: Suggestions(p.Label, fv),
	}
}
