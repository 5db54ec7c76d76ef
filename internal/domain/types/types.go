// Package types contains common types used across the application
package types

import (
	"time"

	"github.com/okian/skillmatch/internal/domain/model"
)

// Recommendation is the wire shape of one recommended freelancer.
type Recommendation struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Score             float64 `json:"score"`
	Match             float64 `json:"match"`
	Rating            float64 `json:"rating"`
	Experience        int     `json:"experience"`
	CompletedProjects int     `json:"completed_projects"`
	Skills            string  `json:"skills"`
}

// FromCandidate converts a scored candidate into its wire shape.
func FromCandidate(c model.ScoredCandidate) Recommendation {
	return Recommendation{
		ID:                c.Record.ID,
		Name:              c.Record.Name,
		Score:             c.Composite,
		Match:             c.MatchPercent,
		Rating:            c.Record.Rating,
		Experience:        c.Record.Experience,
		CompletedProjects: c.Record.CompletedProjects,
		Skills:            c.Record.Skills.String(),
	}
}

// RecommendResponse is returned by POST /recommend.
type RecommendResponse struct {
	Success         bool             `json:"success"`
	Total           int              `json:"total"`
	Outcome         string           `json:"outcome"`
	Recommendations []Recommendation `json:"recommendations"`
	Message         string           `json:"message,omitempty"`
}

// RetrainResponse is returned by POST /retrain.
type RetrainResponse struct {
	Success         bool      `json:"success"`
	FreelancerCount int       `json:"freelancer_count"`
	VocabularySize  int       `json:"vocabulary_size"`
	ModelVersion    string    `json:"model_version"`
	TrainedAt       time.Time `json:"trained_at"`
}
