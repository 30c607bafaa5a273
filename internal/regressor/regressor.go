// Package regressor loads the pre-trained per-criterion calibration
// model and serves predictions from it. The artifact is read-only,
// loaded lazily at most once per process, and its absence disables
// calibration rather than failing any request.
package regressor

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
)

// LinearModel maps a raw 0-4 LLM score to a predicted final weighted
// score for one criterion.
type LinearModel struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// artifact is the serialized model file. Current trainers write the
// versioned layout with a "criteria" map; older trainers wrote
// parallel "coef"/"intercept" maps keyed by criterion model id. Both
// layouts must keep loading, so the loader normalises the legacy one.
type artifact struct {
	Version  int                    `json:"version"`
	Criteria map[string]LinearModel `json:"criteria"`

	// Legacy layout.
	Coef      map[string]float64 `json:"coef"`
	Intercept map[string]float64 `json:"intercept"`
}

type Service struct {
	path string

	mu     sync.Mutex
	tried  bool
	models map[string]LinearModel
}

// New creates a service reading the artifact at path. Empty path falls
// back to MODEL_PATH, then ./model.json. Nothing is read until first use.
func New(path string) *Service {
	if path == "" {
		path = os.Getenv("MODEL_PATH")
	}
	if path == "" {
		path = "./model.json"
	}
	return &Service{path: path}
}

// Path returns the artifact location the service reads from.
func (s *Service) Path() string { return s.path }

// Loaded reports whether a model is available, loading it on first call.
func (s *Service) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()
	return s.models != nil
}

// Predict maps a raw LLM score through the criterion's regression.
// The second return is false when no model is loaded or the criterion
// model id is unknown.
func (s *Service) Predict(llmScore float64, modelID string) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()
	if s.models == nil {
		return 0, false
	}
	m, ok := s.models[modelID]
	if !ok {
		return 0, false
	}
	return m.Intercept + m.Slope*llmScore, true
}

// loadLocked performs the one-time artifact read. Callers hold s.mu,
// so concurrent first use results in exactly one load attempt.
func (s *Service) loadLocked() {
	if s.tried {
		return
	}
	s.tried = true

	data, err := os.ReadFile(s.path)
	if err != nil {
		// Missing artifact is a supported configuration.
		log.Printf("regressor: no model at %s, calibration disabled: %v", s.path, err)
		return
	}

	models, err := parseArtifact(data)
	if err != nil {
		log.Printf("regressor: unreadable model at %s, calibration disabled: %v", s.path, err)
		return
	}
	s.models = models
	log.Printf("regressor: loaded %d criterion models from %s", len(models), s.path)
}

func parseArtifact(data []byte) (map[string]LinearModel, error) {
	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parse model artifact: %w", err)
	}

	if len(a.Criteria) > 0 {
		return a.Criteria, nil
	}

	if len(a.Coef) > 0 {
		models := make(map[string]LinearModel, len(a.Coef))
		for id, slope := range a.Coef {
			models[id] = LinearModel{Slope: slope, Intercept: a.Intercept[id]}
		}
		return models, nil
	}

	return nil, fmt.Errorf("model artifact has no criteria")
}
