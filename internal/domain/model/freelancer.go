// Package model contains domain models passed between layers.
package model

import "github.com/okian/skillmatch/internal/domain/skills"

// FreelancerRecord is one freelancer as seen by a single scoring pass.
type FreelancerRecord struct {
	ID                string     // opaque identity from the data source
	Name              string     // display name
	Skills            skills.Set // normalised at the snapshot boundary
	Experience        int        // years, never negative
	Rating            float64    // mean review stars, [0, max rating]
	CompletedProjects int        // number of reviews; informational only
}

// ScoredCandidate is a FreelancerRecord annotated with its match scores.
type ScoredCandidate struct {
	Record       FreelancerRecord
	Similarity   float64 // raw skill similarity in [0,1]
	Composite    float64 // weighted blend in [0,1]
	MatchPercent float64 // Similarity*100, one decimal place
}
