package vocab

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"
)

// artifactFormat is bumped whenever the on-disk layout changes.
const artifactFormat = 1

// artifact is the persisted form of a Model. Float64 values are written in
// shortest round-trip form by encoding/json, so weights survive exactly.
type artifact struct {
	FormatVersion int       `json:"format_version"`
	Version       string    `json:"version"`
	TrainedAt     time.Time `json:"trained_at"`
	CorpusSize    int       `json:"corpus_size"`
	Terms         []string  `json:"terms"`
	Weights       []float64 `json:"weights"`
}

// Encode writes the model artifact to w.
func (m *Model) Encode(w io.Writer) error {
	a := artifact{
		FormatVersion: artifactFormat,
		Version:       m.version,
		TrainedAt:     m.trainedAt,
		CorpusSize:    m.corpusSize,
		Terms:         m.terms,
		Weights:       m.weights,
	}
	if err := json.NewEncoder(w).Encode(a); err != nil {
		return fmt.Errorf("encode model artifact: %w", err)
	}
	return nil
}

// Decode reads and validates a model artifact written by Encode.
func Decode(r io.Reader) (*Model, error) {
	var a artifact
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptArtifact, err)
	}
	if err := a.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptArtifact, err)
	}
	terms := make([]string, len(a.Terms))
	copy(terms, a.Terms)
	weights := make([]float64, len(a.Weights))
	copy(weights, a.Weights)
	return newModel(a.Version, a.TrainedAt.UTC(), a.CorpusSize, terms, weights), nil
}

func (a artifact) validate() error {
	switch {
	case a.FormatVersion != artifactFormat:
		return fmt.Errorf("unsupported format version %d", a.FormatVersion)
	case a.CorpusSize <= 0:
		return fmt.Errorf("corpus size %d", a.CorpusSize)
	case len(a.Terms) == 0:
		return fmt.Errorf("empty vocabulary")
	case len(a.Terms) != len(a.Weights):
		return fmt.Errorf("%d terms but %d weights", len(a.Terms), len(a.Weights))
	}
	for i, term := range a.Terms {
		if term == "" {
			return fmt.Errorf("blank term at %d", i)
		}
		if i > 0 && a.Terms[i-1] >= term {
			return fmt.Errorf("terms not strictly sorted at %d", i)
		}
		if w := a.Weights[i]; math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
			return fmt.Errorf("invalid weight %v for %q", w, term)
		}
	}
	return nil
}
