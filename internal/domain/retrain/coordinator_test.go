package retrain_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/skillmatch/internal/domain/model"
	"github.com/okian/skillmatch/internal/domain/retrain"
	"github.com/okian/skillmatch/internal/domain/skills"
	"github.com/okian/skillmatch/internal/domain/vocab"
	. "github.com/smartystreets/goconvey/convey"
)

type stubLoader struct {
	records []model.FreelancerRecord
	err     error
	delay   time.Duration
	entered chan struct{}
	release chan struct{}
}

func (s *stubLoader) Load(ctx context.Context) ([]model.FreelancerRecord, error) {
	if s.entered != nil {
		close(s.entered)
		<-s.release
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.records, s.err
}

type memStore struct {
	mu    sync.Mutex
	saved *vocab.Model
	err   error
}

func (m *memStore) Save(_ context.Context, model *vocab.Model) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.saved = model
	return nil
}

func (m *memStore) Load(context.Context) (*vocab.Model, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		return nil, retrain.ErrNoArtifact
	}
	return m.saved, nil
}

func rec(id string, raw ...string) model.FreelancerRecord {
	return model.FreelancerRecord{ID: id, Skills: skills.Normalize(raw)}
}

func TestCoordinator_Retrain(t *testing.T) {
	Convey("Given a loader with three freelancers", t, func() {
		loader := &stubLoader{records: []model.FreelancerRecord{
			rec("1", "python", "django"),
			rec("2", "java"),
			rec("3"),
		}}
		store := &memStore{}
		registry := retrain.NewRegistry()
		c := retrain.NewCoordinator(loader, registry, retrain.WithStore(store))

		Convey("When retraining", func() {
			sum, err := c.Retrain(context.Background())

			Convey("Then the new model is persisted and published", func() {
				So(err, ShouldBeNil)
				So(sum.FreelancerCount, ShouldEqual, 2)
				So(sum.Skipped, ShouldEqual, 1)
				So(sum.VocabularySize, ShouldEqual, 3)
				So(registry.Current(), ShouldNotBeNil)
				So(registry.Current().Version(), ShouldEqual, sum.Version)
				So(store.saved, ShouldPointTo, registry.Current())

				last, ok := c.Last()
				So(ok, ShouldBeTrue)
				So(last.Version, ShouldEqual, sum.Version)
				So(c.Running(), ShouldBeFalse)
			})
		})

		Convey("When the source later fails", func() {
			_, err := c.Retrain(context.Background())
			So(err, ShouldBeNil)
			before := registry.Current()

			loader.err = errors.New("db down")
			_, err = c.Retrain(context.Background())

			Convey("Then RetrainFailed is returned and the old model stays", func() {
				So(errors.Is(err, retrain.ErrRetrainFailed), ShouldBeTrue)
				So(registry.Current(), ShouldPointTo, before)
			})
		})

		Convey("When persisting fails", func() {
			store.err = errors.New("disk full")
			_, err := c.Retrain(context.Background())

			Convey("Then nothing is published", func() {
				So(errors.Is(err, retrain.ErrRetrainFailed), ShouldBeTrue)
				So(registry.Current(), ShouldBeNil)
			})
		})
	})

	Convey("Given a snapshot where nobody has skills", t, func() {
		loader := &stubLoader{records: []model.FreelancerRecord{rec("1"), rec("2")}}
		registry := retrain.NewRegistry()
		c := retrain.NewCoordinator(loader, registry)

		Convey("Then the retrain fails on an empty corpus", func() {
			_, err := c.Retrain(context.Background())
			So(errors.Is(err, retrain.ErrRetrainFailed), ShouldBeTrue)
			So(errors.Is(err, vocab.ErrEmptyCorpus), ShouldBeTrue)
			So(registry.Current(), ShouldBeNil)
		})
	})

	Convey("Given a loader that overruns the retrain timeout", t, func() {
		loader := &stubLoader{records: []model.FreelancerRecord{rec("1", "go")}, delay: 50 * time.Millisecond}
		registry := retrain.NewRegistry()
		c := retrain.NewCoordinator(loader, registry, retrain.WithTimeout(10*time.Millisecond))

		Convey("Then the finished training is discarded", func() {
			_, err := c.Retrain(context.Background())
			So(errors.Is(err, retrain.ErrRetrainFailed), ShouldBeTrue)
			So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
			So(registry.Current(), ShouldBeNil)
		})
	})
}

func TestCoordinator_SingleFlight(t *testing.T) {
	Convey("Given a retrain blocked inside the loader", t, func() {
		loader := &stubLoader{
			records: []model.FreelancerRecord{rec("1", "go")},
			entered: make(chan struct{}),
			release: make(chan struct{}),
		}
		c := retrain.NewCoordinator(loader, retrain.NewRegistry())

		done := make(chan error, 1)
		go func() {
			_, err := c.Retrain(context.Background())
			done <- err
		}()
		<-loader.entered

		Convey("When a second retrain is requested", func() {
			_, err := c.Retrain(context.Background())
			running := c.Running()
			close(loader.release)
			firstErr := <-done

			Convey("Then it is rejected while the first one completes", func() {
				So(errors.Is(err, retrain.ErrRetrainInProgress), ShouldBeTrue)
				So(running, ShouldBeTrue)
				So(firstErr, ShouldBeNil)
			})
		})
	})
}

func TestCoordinator_Restore(t *testing.T) {
	Convey("Given a store holding a model", t, func() {
		m, err := vocab.Train([]skills.Set{skills.Parse("go, sql")})
		So(err, ShouldBeNil)
		store := &memStore{saved: m}
		registry := retrain.NewRegistry()
		c := retrain.NewCoordinator(&stubLoader{}, registry, retrain.WithStore(store))

		Convey("When restoring", func() {
			got, err := c.Restore(context.Background())

			Convey("Then the persisted model becomes active", func() {
				So(err, ShouldBeNil)
				So(got, ShouldPointTo, m)
				So(c.Current(), ShouldPointTo, m)
			})
		})
	})

	Convey("Given no store", t, func() {
		c := retrain.NewCoordinator(&stubLoader{}, retrain.NewRegistry())

		Convey("Then restore reports there is nothing to load", func() {
			_, err := c.Restore(context.Background())
			So(errors.Is(err, retrain.ErrNoArtifact), ShouldBeTrue)
		})
	})
}

func TestRegistry_ConcurrentReaders(t *testing.T) {
	Convey("Given readers racing a publisher", t, func() {
		registry := retrain.NewRegistry()
		a, _ := vocab.Train([]skills.Set{skills.Parse("a")})
		b, _ := vocab.Train([]skills.Set{skills.Parse("b, c")})
		registry.Publish(a)

		var wg sync.WaitGroup
		torn := make(chan struct{}, 1)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 1000; j++ {
					m := registry.Current()
					if m != a && m != b {
						select {
						case torn <- struct{}{}:
						default:
						}
					}
				}
			}()
		}
		for i := 0; i < 100; i++ {
			if i%2 == 0 {
				registry.Publish(b)
			} else {
				registry.Publish(a)
			}
		}
		wg.Wait()

		Convey("Then every read sees one complete model", func() {
			So(len(torn), ShouldEqual, 0)
		})

		Convey("And publishing nil is ignored", func() {
			registry.Publish(nil)
			So(registry.Current(), ShouldNotBeNil)
		})
	})
}
