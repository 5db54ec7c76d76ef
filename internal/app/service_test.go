package service_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/skillmatch/internal/adapters/modelstore"
	"github.com/okian/skillmatch/internal/adapters/repository"
	service "github.com/okian/skillmatch/internal/app"
	"github.com/okian/skillmatch/internal/domain/ranking"
	"github.com/okian/skillmatch/internal/domain/retrain"
	"github.com/okian/skillmatch/internal/domain/scoring"
	"github.com/okian/skillmatch/internal/domain/snapshot"
	"github.com/okian/skillmatch/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

const dataset = `
freelancers:
  - id: "1"
    username: ada
    skills: [python, django]
    experience: 4
  - id: "2"
    username: bob
    skills: [java]
    experience: 10
  - id: "3"
    username: cy
    skills: [python, flask]
    experience: 1
reviews:
  - freelancer: "1"
    stars: 5
  - freelancer: "2"
    stars: 5
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func newService(t *testing.T, body string, opts ...service.Option) (*service.Service, string) {
	t.Helper()
	dir := t.TempDir()
	path := writeFile(t, dir, "dataset.yaml", body)
	base := []service.Option{
		service.WithSource(repository.NewFileSource(path)),
		service.WithModelStore(modelstore.NewFileStore(filepath.Join(dir, "model.json"))),
		service.WithRetrainOnStart(true),
	}
	return service.New(append(base, opts...)...), dir
}

func TestService_Start(t *testing.T) {
	Convey("Given a service over a file dataset", t, func() {
		svc, dir := newService(t, dataset)
		defer svc.Stop()

		Convey("When starting", func() {
			err := svc.Start(context.Background())

			Convey("Then a model is trained, persisted and ready", func() {
				So(err, ShouldBeNil)
				So(svc.Ready(), ShouldBeTrue)
				So(svc.Model().Size(), ShouldEqual, 4)
				_, statErr := os.Stat(filepath.Join(dir, "model.json"))
				So(statErr, ShouldBeNil)

				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["model_version"], ShouldEqual, svc.Model().Version())
				So(stats["retrains_succeeded"], ShouldEqual, int64(1))
			})
		})
	})

	Convey("Given a service logging JSON", t, func() {
		var buf bytes.Buffer
		So(logger.Init(logger.WithFormat(logger.FormatJSON), logger.WithOutput(&buf)), ShouldBeNil)
		Reset(func() { _ = logger.Init() })
		svc, _ := newService(t, dataset, service.WithLogger(logger.Get()))
		defer svc.Stop()

		Convey("When starting", func() {
			So(svc.Start(context.Background()), ShouldBeNil)

			Convey("Then the startup line records how the model is obtained", func() {
				So(buf.String(), ShouldContainSubstring, `"retrain_on_start":true`)
				So(buf.String(), ShouldContainSubstring, `"persist_model":true`)
			})
		})
	})

	Convey("Given invalid weights", t, func() {
		svc, _ := newService(t, dataset, service.WithWeights(scoring.Weights{Skill: 0.6, Rating: 0.2, Experience: 0.1}))

		Convey("Then Start fails fast", func() {
			err := svc.Start(context.Background())
			So(errors.Is(err, scoring.ErrInvalidWeightConfig), ShouldBeTrue)
		})
	})

	Convey("Given no source", t, func() {
		Convey("Then Start refuses to run", func() {
			So(errors.Is(service.New().Start(context.Background()), service.ErrNoSource), ShouldBeTrue)
		})
	})

	Convey("Given a persisted model and retrain on start disabled", t, func() {
		first, dir := newService(t, dataset)
		So(first.Start(context.Background()), ShouldBeNil)
		version := first.Model().Version()
		first.Stop()

		second := service.New(
			service.WithSource(repository.NewFileSource(filepath.Join(dir, "dataset.yaml"))),
			service.WithModelStore(modelstore.NewFileStore(filepath.Join(dir, "model.json"))),
		)
		defer second.Stop()

		Convey("Then the restart restores the same model", func() {
			So(second.Start(context.Background()), ShouldBeNil)
			So(second.Model().Version(), ShouldEqual, version)
		})
	})
}

func TestService_Recommend(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc, dir := newService(t, dataset)
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()
		ctx := context.Background()

		Convey("When asking for python with the default top_n", func() {
			res, err := svc.RecommendDefault(ctx, []string{"Python"})

			Convey("Then only python freelancers come back, best composite first", func() {
				So(err, ShouldBeNil)
				So(res.Outcome, ShouldEqual, ranking.OutcomeMatched)
				So(res.Total(), ShouldEqual, 2)
				So(res.Candidates[0].Record.ID, ShouldEqual, "1")
				So(res.Candidates[1].Record.ID, ShouldEqual, "3")
				for _, c := range res.Candidates {
					So(c.Similarity, ShouldBeGreaterThanOrEqualTo, ranking.DefaultMinSimilarity)
				}
			})
		})

		Convey("When asking for a skill nobody has", func() {
			res, err := svc.Recommend(ctx, []string{"cobol"}, 5)

			Convey("Then the empty result names the query", func() {
				So(err, ShouldBeNil)
				So(res.Empty(), ShouldBeTrue)
				So(res.Outcome, ShouldEqual, ranking.OutcomeBelowThreshold)
				So(res.Reason, ShouldContainSubstring, "cobol")
				So(res.Reason, ShouldStartWith, "No freelancer lists any")
			})
		})

		Convey("When top_n is out of range", func() {
			_, errZero := svc.Recommend(ctx, []string{"python"}, 0)
			_, errNeg := svc.Recommend(ctx, []string{"python"}, -1)
			_, errBig := svc.Recommend(ctx, []string{"python"}, 1000)

			Convey("Then ErrInvalidTopN is returned, zero included", func() {
				So(errors.Is(errZero, ranking.ErrInvalidTopN), ShouldBeTrue)
				So(errors.Is(errNeg, ranking.ErrInvalidTopN), ShouldBeTrue)
				So(errors.Is(errBig, ranking.ErrInvalidTopN), ShouldBeTrue)
			})
		})

		Convey("When the dataset disappears", func() {
			So(os.Remove(filepath.Join(dir, "dataset.yaml")), ShouldBeNil)
			_, err := svc.Recommend(ctx, []string{"python"}, 5)

			Convey("Then the failure is distinguishable from an empty result", func() {
				So(errors.Is(err, snapshot.ErrSourceUnavailable), ShouldBeTrue)
			})

			Convey("And a retrain fails while the old model keeps serving", func() {
				before := svc.Model()
				_, rerr := svc.Retrain(ctx)
				So(errors.Is(rerr, retrain.ErrRetrainFailed), ShouldBeTrue)
				So(svc.Model(), ShouldPointTo, before)
				So(svc.GetStats()["retrains_failed"], ShouldEqual, int64(1))
			})
		})

		Convey("When the dataset becomes empty", func() {
			writeFile(t, dir, "dataset.yaml", "freelancers: []\n")

			Convey("Then recommend succeeds with no candidates", func() {
				res, err := svc.Recommend(ctx, []string{"python"}, 5)
				So(err, ShouldBeNil)
				So(res.Total(), ShouldEqual, 0)
				So(res.Outcome, ShouldEqual, ranking.OutcomeNoCandidates)
			})
		})
	})

	Convey("Given a service that was never started", t, func() {
		svc, _ := newService(t, dataset)

		Convey("Then recommend reports it", func() {
			_, err := svc.Recommend(context.Background(), []string{"python"}, 5)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})
	})

	Convey("Given a started service whose first retrain failed", t, func() {
		svc, _ := newService(t, "freelancers: []\n")
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		Convey("Then recommend reports the model is not ready", func() {
			So(svc.Ready(), ShouldBeFalse)
			_, err := svc.Recommend(context.Background(), []string{"python"}, 5)
			So(errors.Is(err, service.ErrModelNotReady), ShouldBeTrue)
		})
	})
}

func TestService_Retrain(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc, dir := newService(t, dataset)
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()
		before := svc.Model()

		Convey("When the dataset grows and a retrain runs", func() {
			grown := dataset[:len("\nfreelancers:\n")] +
				"  - id: \"4\"\n    username: dee\n    skills: [rust]\n    experience: 2\n" +
				dataset[len("\nfreelancers:\n"):]
			writeFile(t, dir, "dataset.yaml", grown)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			sum, err := svc.Retrain(ctx)

			Convey("Then a new model replaces the old one", func() {
				So(err, ShouldBeNil)
				So(sum.FreelancerCount, ShouldEqual, 4)
				So(sum.VocabularySize, ShouldEqual, 5)
				So(svc.Model(), ShouldNotPointTo, before)
				So(svc.Model().Version(), ShouldEqual, sum.Version)
			})
		})
	})
}
