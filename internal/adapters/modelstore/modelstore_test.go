package modelstore_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/redis/go-redis/v9"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/skillmatch/internal/adapters/modelstore"
	"github.com/okian/skillmatch/internal/domain/retrain"
	"github.com/okian/skillmatch/internal/domain/skills"
	"github.com/okian/skillmatch/internal/domain/vocab"
)

func trained(t *testing.T) *vocab.Model {
	t.Helper()
	m, err := vocab.Train([]skills.Set{
		skills.Parse("python, django"),
		skills.Parse("java"),
	})
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	return m
}

func TestFileStore(t *testing.T) {
	Convey("Given a file store in an empty directory", t, func() {
		dir := t.TempDir()
		store := modelstore.NewFileStore(filepath.Join(dir, "nested", "model.json"))
		ctx := context.Background()

		Convey("When nothing was saved", func() {
			_, err := store.Load(ctx)

			Convey("Then ErrNoArtifact is returned", func() {
				So(errors.Is(err, retrain.ErrNoArtifact), ShouldBeTrue)
			})
		})

		Convey("When a model is saved and loaded back", func() {
			m := trained(t)
			So(store.Save(ctx, m), ShouldBeNil)
			got, err := store.Load(ctx)

			Convey("Then the same model comes back", func() {
				So(err, ShouldBeNil)
				So(got.Version(), ShouldEqual, m.Version())
				So(got.Terms(), ShouldResemble, m.Terms())
				So(got.Vectorize(skills.Parse("python")), ShouldResemble, m.Vectorize(skills.Parse("python")))
			})

			Convey("And no temporary files are left behind", func() {
				entries, err := os.ReadDir(filepath.Dir(store.Path()))
				So(err, ShouldBeNil)
				So(len(entries), ShouldEqual, 1)
			})
		})

		Convey("When the artifact on disk is corrupt", func() {
			So(os.MkdirAll(filepath.Dir(store.Path()), 0o755), ShouldBeNil)
			So(os.WriteFile(store.Path(), []byte(`{"format_version":1,"terms":[]}`), 0o600), ShouldBeNil)
			_, err := store.Load(ctx)

			Convey("Then ErrCorruptArtifact is returned", func() {
				So(errors.Is(err, vocab.ErrCorruptArtifact), ShouldBeTrue)
			})
		})
	})

	Convey("Given an empty path", t, func() {
		Convey("Then the default location is used", func() {
			So(modelstore.NewFileStore("").Path(), ShouldEqual, modelstore.DefaultPath)
		})
	})
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	Convey("Given a redis store", t, func() {
		ctx := context.Background()
		client := redis.NewClient(&redis.Options{Addr: addr})
		defer client.Close()
		key := "skillmatch:test:" + t.Name()
		store := modelstore.NewRedisStore(client, key)
		So(store.Ping(ctx), ShouldBeNil)
		So(client.Del(ctx, key).Err(), ShouldBeNil)

		Convey("When the key is missing", func() {
			_, err := store.Load(ctx)

			Convey("Then ErrNoArtifact is returned", func() {
				So(errors.Is(err, retrain.ErrNoArtifact), ShouldBeTrue)
			})
		})

		Convey("When a model is saved", func() {
			m := trained(t)
			So(store.Save(ctx, m), ShouldBeNil)
			got, err := store.Load(ctx)

			Convey("Then it can be restored", func() {
				So(err, ShouldBeNil)
				So(got.Version(), ShouldEqual, m.Version())
				So(got.Size(), ShouldEqual, m.Size())
			})
		})
	})
}
