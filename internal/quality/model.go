// Package quality classifies feature vectors with a clustering model exported
// by the training pipeline and turns the resulting labels into grades and
// suggestions.
package quality

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"

	"codeintel/internal/metrics"
)

// ErrNoModel is returned when no model file is configured or it does not exist.
var ErrNoModel = errors.New("no quality model available")

// UnknownLabel is reported for clusters with no mapped label.
const UnknownLabel = "Unknown"

// modelFile is the JSON document written by the training pipeline: a standard
// scaler, a PCA projection and k-means centroids in the projected space.
type modelFile struct {
	FeatureColumns []string `json:"feature_columns"`
	Scaler         struct {
		Mean  []float64 `json:"mean"`
		Scale []float64 `json:"scale"`
	} `json:"scaler"`
	PCA struct {
		Mean       []float64   `json:"mean"`
		Components [][]float64 `json:"components"`
	} `json:"pca"`
	Centroids [][]float64       `json:"centroids"`
	Labels    map[string]string `json:"labels"`
}

// Model is a loaded, validated clustering model. It is immutable.
type Model struct {
	columns    []string
	mean       []float64
	scale      []float64
	pcaMean    []float64
	components [][]float64
	centroids  [][]float64
	labels     map[int]string
}

// Prediction is the cluster a vector falls in and that cluster's label.
type Prediction struct {
	Cluster int    `json:"cluster"`
	Label   string `json:"label"`
}

// LoadModel reads a model file. A missing file or empty path yields ErrNoModel.
func LoadModel(path string) (*Model, error) {
	if path == "" {
		return nil, ErrNoModel
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNoModel, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	m, err := ParseModel(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// ParseModel decodes and validates a JSON model.
func ParseModel(data []byte) (*Model, error) {
	var f modelFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse model: %w", err)
	}

	n := len(f.FeatureColumns)
	if n == 0 {
		return nil, errors.New("model has no feature columns")
	}
	known := make(map[string]bool, len(metrics.NumericNames))
	for _, name := range metrics.NumericNames {
		known[name] = true
	}
	for _, c := range f.FeatureColumns {
		if !known[c] {
			return nil, fmt.Errorf("unknown feature column %q", c)
		}
	}
	if len(f.Scaler.Mean) != n || len(f.Scaler.Scale) != n {
		return nil, fmt.Errorf("scaler has %d/%d values, want %d", len(f.Scaler.Mean), len(f.Scaler.Scale), n)
	}
	if len(f.PCA.Components) == 0 {
		return nil, errors.New("model has no principal components")
	}
	pcaMean := f.PCA.Mean
	if pcaMean == nil {
		pcaMean = make([]float64, n)
	}
	if len(pcaMean) != n {
		return nil, fmt.Errorf("pca mean has %d values, want %d", len(pcaMean), n)
	}
	for i, c := range f.PCA.Components {
		if len(c) != n {
			return nil, fmt.Errorf("pca component %d has %d values, want %d", i, len(c), n)
		}
	}
	k := len(f.PCA.Components)
	if len(f.Centroids) == 0 {
		return nil, errors.New("model has no centroids")
	}
	for i, c := range f.Centroids {
		if len(c) != k {
			return nil, fmt.Errorf("centroid %d has %d values, want %d", i, len(c), k)
		}
	}

	labels := make(map[int]string, len(f.Labels))
	for key, label := range f.Labels {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("label key %q is not a cluster index", key)
		}
		labels[id] = label
	}

	return &Model{
		columns:    f.FeatureColumns,
		mean:       f.Scaler.Mean,
		scale:      f.Scaler.Scale,
		pcaMean:    pcaMean,
		components: f.PCA.Components,
		centroids:  f.Centroids,
		labels:     labels,
	}, nil
}

// Columns returns the feature columns the model was trained on.
func (m *Model) Columns() []string { return append([]string(nil), m.columns...) }

// Clusters returns the number of clusters.
func (m *Model) Clusters() int { return len(m.centroids) }

// Predict standardizes fv, projects it onto the principal components and
// assigns the nearest centroid. Ties go to the lowest cluster index.
func (m *Model) Predict(fv metrics.FeatureVector) Prediction {
	x := make([]float64, len(m.columns))
	for i, c := range m.columns {
		v, _ := fv.Value(c)
		scale := m.scale[i]
		if scale == 0 {
			scale = 1
		}
		x[i] = (v-m.mean[i])/scale - m.pcaMean[i]
	}

	projected := make([]float64, len(m.components))
	for i, comp := range m.components {
		var dot float64
		for j, w := range comp {
			dot += w * x[j]
		}
		projected[i] = dot
	}

	best, bestDist := 0, math.Inf(1)
	for i, c := range m.centroids {
		var d float64
		for j, v := range c {
			diff := projected[j] - v
			d += diff * diff
		}
		if d < bestDist {
			best, bestDist = i, d
		}
	}

	label, ok := m.labels[best]
	if !ok {
		label = UnknownLabel
	}
	return Prediction{Cluster: best, Label: label}
}
