package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/skillmatch/internal/domain/snapshot"
)

const sampleDataset = `
freelancers:
  - id: "1"
    username: ada
    skills: [Python, Django]
    experience: 3
  - id: "2"
    username: bob
    skills: "java; spring"
    experience: 7
  - id: "3"
    username: cy
    experience: 1
reviews:
  - freelancer: "1"
    stars: 5
  - freelancer: "2"
    stars: 3
  - freelancer: "1"
    stars: 4
`

func writeDataset(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	return path
}

func TestFileSource(t *testing.T) {
	Convey("Given a YAML dataset", t, func() {
		src := NewFileSource(writeDataset(t, sampleDataset))
		ctx := context.Background()

		Convey("When fetching freelancers", func() {
			got, err := src.FetchFreelancers(ctx)

			Convey("Then both list and string skills are read", func() {
				So(err, ShouldBeNil)
				So(len(got), ShouldEqual, 3)
				So(got[0].Skills, ShouldResemble, []string{"Python", "Django"})
				So(got[1].Skills, ShouldResemble, []string{"java; spring"})
				So(got[2].Skills, ShouldBeEmpty)
				So(got[1].Name, ShouldEqual, "bob")
			})
		})

		Convey("When fetching ratings", func() {
			got, err := src.FetchRatings(ctx)

			Convey("Then reviews are averaged per freelancer", func() {
				So(err, ShouldBeNil)
				So(got, ShouldResemble, []snapshot.RatingAggregate{
					{FreelancerID: "1", Average: 4.5, Count: 2},
					{FreelancerID: "2", Average: 3, Count: 1},
				})
			})
		})

		Convey("When fetching a snapshot", func() {
			raw, ratings, err := src.FetchSnapshot(ctx)

			Convey("Then freelancers and ratings come from the same read", func() {
				So(err, ShouldBeNil)
				So(len(raw), ShouldEqual, 3)
				So(len(ratings), ShouldEqual, 2)
				So(ratings[0], ShouldResemble, snapshot.RatingAggregate{FreelancerID: "1", Average: 4.5, Count: 2})
			})
		})

		Convey("When the file is missing", func() {
			_, _, err := NewFileSource(filepath.Join(t.TempDir(), "none.yaml")).FetchSnapshot(ctx)

			Convey("Then the snapshot read fails", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When loaded through a snapshot loader", func() {
			recs, err := snapshot.NewLoader(src).Load(ctx)

			Convey("Then records carry normalized skills and ratings", func() {
				So(err, ShouldBeNil)
				So(recs[1].Skills.Terms(), ShouldResemble, []string{"java", "spring"})
				So(recs[0].Rating, ShouldEqual, 4.5)
				So(recs[2].Rating, ShouldEqual, snapshot.DefaultNeutralRating)
			})
		})
	})

	Convey("Given a missing file", t, func() {
		src := NewFileSource(filepath.Join(t.TempDir(), "nope.yaml"))

		Convey("Then the loader reports the source as unavailable", func() {
			_, err := snapshot.NewLoader(src).Load(context.Background())
			So(errors.Is(err, snapshot.ErrSourceUnavailable), ShouldBeTrue)
			So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
		})
	})

	Convey("Given malformed YAML", t, func() {
		src := NewFileSource(writeDataset(t, "freelancers: [oops"))

		Convey("Then ErrInvalidDataset is returned", func() {
			_, err := src.Dataset(context.Background())
			So(errors.Is(err, ErrInvalidDataset), ShouldBeTrue)
		})
	})

	Convey("Given a review without freelancer", t, func() {
		src := NewFileSource(writeDataset(t, "reviews:\n  - stars: 4\n"))

		Convey("Then the dataset is rejected", func() {
			_, err := src.FetchRatings(context.Background())
			So(errors.Is(err, ErrInvalidDataset), ShouldBeTrue)
		})
	})

	Convey("Given an empty file", t, func() {
		src := NewFileSource(writeDataset(t, ""))

		Convey("Then the source is reachable but empty", func() {
			recs, err := snapshot.NewLoader(src).Load(context.Background())
			So(err, ShouldBeNil)
			So(recs, ShouldBeEmpty)
		})
	})
}
