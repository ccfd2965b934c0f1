// Package model loads predictive model artifacts from disk and evaluates
// them. An artifact is an exported linear model: a JSON file with an
// intercept and per-feature coefficients, versioned by filename so retrained
// models ship as new files next to the old ones.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
)

// ErrModelNotFound is returned when no artifact exists for the requested
// vessel and kind. It never means a sibling artifact is broken.
var ErrModelNotFound = errors.New("model: artifact not found")

// Feature-set tags for speed models. FeatureSetAll includes engine features
// (rpm, shaft power, slip ratio); FeatureSetLess is trained without them for
// vessels whose feeds lack engine telemetry.
const (
	FeatureSetAll  = "all"
	FeatureSetLess = "less"
)

// Artifact is one loaded model.
type Artifact struct {
	Name         string             `json:"-"`
	Version      int                `json:"version"`
	Kind         string             `json:"kind"`
	Features     []string           `json:"features"`
	Intercept    float64            `json:"intercept"`
	Coefficients map[string]float64 `json:"coefficients"`
}

// Predict evaluates the model on the given feature values. Features the
// model was not trained on are ignored; features the model expects but the
// caller omitted contribute zero.
func (a *Artifact) Predict(features map[string]float64) float64 {
	out := a.Intercept
	for name, coef := range a.Coefficients {
		out += coef * features[name]
	}
	return out
}

// Dir is a directory of model artifacts.
type Dir struct {
	path string
}

// NewDir wraps a models directory. The directory may be empty or missing;
// lookups then return ErrModelNotFound.
func NewDir(path string) *Dir {
	return &Dir{path: path}
}

var versionPattern = regexp.MustCompile(`_v(\d+)[_.]`)

// Speed returns the newest speed model for the vessel with the given
// feature-set tag.
func (d *Dir) Speed(vesselID int, featureSet string) (*Artifact, error) {
	return d.newest(fmt.Sprintf("%d_speed_v*_%s.json", vesselID, featureSet))
}

// Trim returns the newest trim model for the vessel.
func (d *Dir) Trim(vesselID int) (*Artifact, error) {
	return d.newest(fmt.Sprintf("%d_trim_v*.json", vesselID))
}

// newest globs for matching artifacts and loads the highest version. Files
// without a parseable version marker are ignored.
func (d *Dir) newest(pattern string) (*Artifact, error) {
	matches, err := filepath.Glob(filepath.Join(d.path, pattern))
	if err != nil {
		return nil, fmt.Errorf("glob models: %w", err)
	}
	best, bestVersion := "", -1
	for _, m := range matches {
		sub := versionPattern.FindStringSubmatch(filepath.Base(m))
		if sub == nil {
			continue
		}
		v, err := strconv.Atoi(sub[1])
		if err != nil || v <= bestVersion {
			continue
		}
		best, bestVersion = m, v
	}
	if best == "" {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, pattern)
	}
	return load(best)
}

func load(path string) (*Artifact, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", filepath.Base(path), err)
	}
	var a Artifact
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("decode model %s: %w", filepath.Base(path), err)
	}
	a.Name = filepath.Base(path)
	return &a, nil
}
