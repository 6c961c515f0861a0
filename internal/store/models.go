package store

import (
	"time"

	"codeintel/internal/metrics"
)

// Mode records how an analysis was requested.
type Mode string

const (
	ModeSingle        Mode = "Single"
	ModeCompareFirst  Mode = "Comparison File1"
	ModeCompareSecond Mode = "Comparison File2"
)

// Analysis is one stored quality assessment of a file.
type Analysis struct {
	ID        int64                 `json:"id"`
	CreatedAt time.Time             `json:"created_at"`
	Mode      Mode                  `json:"mode"`
	Path      string                `json:"path"`
	Features  metrics.FeatureVector `json:"features"`
	// Cluster is -1 when the file was not classified.
	Cluster int    `json:"cluster"`
	Label   string `json:"label"`
	Score   int    `json:"score"`
	Grade   string `json:"grade"`
}

// Match is a stored analysis and its feature distance from a query.
type Match struct {
	Analysis Analysis `json:"analysis"`
	Distance float64  `json:"distance"`
}
