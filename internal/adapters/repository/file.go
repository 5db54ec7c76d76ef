package repository

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/okian/skillmatch/internal/domain/snapshot"
)

var _ snapshot.ConsistentSource = (*FileSource)(nil)

// Dataset is the YAML layout read by FileSource.
//
//	freelancers:
//	  - id: "1"
//	    username: ada
//	    skills: [python, django]
//	    experience: 3
//	reviews:
//	  - freelancer: "1"
//	    stars: 5
type Dataset struct {
	Freelancers []DatasetFreelancer `yaml:"freelancers"`
	Reviews     []Review            `yaml:"reviews"`
}

// DatasetFreelancer is one freelancer entry of a Dataset.
type DatasetFreelancer struct {
	ID         string    `yaml:"id"`
	Username   string    `yaml:"username"`
	Skills     skillList `yaml:"skills"`
	Experience int       `yaml:"experience"`
}

// skillList accepts either a YAML sequence or one delimited string.
type skillList []string

func (s *skillList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if strings.TrimSpace(node.Value) == "" {
			*s = nil
			return nil
		}
		*s = skillList{node.Value}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return err
		}
		*s = items
		return nil
	default:
		return fmt.Errorf("skills: unexpected yaml kind %d at line %d", node.Kind, node.Line)
	}
}

// FileSource reads freelancers and reviews from a YAML file. The file is
// re-read on every call so edits show up on the next retrain or request.
type FileSource struct {
	path string
}

// NewFileSource creates a FileSource for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Dataset reads and decodes the whole file.
func (s *FileSource) Dataset(ctx context.Context) (Dataset, error) {
	const op = "repository.file.dataset"
	if err := ctx.Err(); err != nil {
		return Dataset{}, fmt.Errorf("%s: %w", op, err)
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return Dataset{}, fmt.Errorf("%s: %w", op, err)
	}
	var ds Dataset
	if err := yaml.Unmarshal(raw, &ds); err != nil {
		return Dataset{}, fmt.Errorf("%s: %w: %w", op, ErrInvalidDataset, err)
	}
	for i, r := range ds.Reviews {
		if r.FreelancerID == "" {
			return Dataset{}, fmt.Errorf("%s: %w: review %d has no freelancer", op, ErrInvalidDataset, i)
		}
	}
	return ds, nil
}

// RawFreelancers converts the dataset entries into snapshot records.
func (ds Dataset) RawFreelancers() []snapshot.RawFreelancer {
	out := make([]snapshot.RawFreelancer, 0, len(ds.Freelancers))
	for _, f := range ds.Freelancers {
		out = append(out, snapshot.RawFreelancer{
			ID:         strings.TrimSpace(f.ID),
			Name:       f.Username,
			Skills:     []string(f.Skills),
			Experience: f.Experience,
		})
	}
	return out
}

// Ratings averages the dataset reviews per freelancer, in order of first
// appearance.
func (ds Dataset) Ratings() []snapshot.RatingAggregate {
	type acc struct {
		sum   float64
		count int
	}
	order := make([]string, 0)
	byID := make(map[string]*acc)
	for _, r := range ds.Reviews {
		a, ok := byID[r.FreelancerID]
		if !ok {
			a = &acc{}
			byID[r.FreelancerID] = a
			order = append(order, r.FreelancerID)
		}
		a.sum += r.Stars
		a.count++
	}

	out := make([]snapshot.RatingAggregate, 0, len(order))
	for _, id := range order {
		a := byID[id]
		out = append(out, snapshot.RatingAggregate{
			FreelancerID: id,
			Average:      a.sum / float64(a.count),
			Count:        a.count,
		})
	}
	return out
}

// FetchFreelancers returns every freelancer in the file.
func (s *FileSource) FetchFreelancers(ctx context.Context) ([]snapshot.RawFreelancer, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return ds.RawFreelancers(), nil
}

// FetchRatings returns average stars per freelancer in the file.
func (s *FileSource) FetchRatings(ctx context.Context) ([]snapshot.RatingAggregate, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return ds.Ratings(), nil
}

// FetchSnapshot returns freelancers and their ratings from a single read of
// the file.
func (s *FileSource) FetchSnapshot(ctx context.Context) ([]snapshot.RawFreelancer, []snapshot.RatingAggregate, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, nil, err
	}
	return ds.RawFreelancers(), ds.Ratings(), nil
}
