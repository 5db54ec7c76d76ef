package skills_test

import (
	"testing"

	"github.com/okian/skillmatch/internal/domain/skills"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalize(t *testing.T) {
	Convey("Given raw skill entries", t, func() {
		Convey("When they differ only by case and padding", func() {
			set := skills.Normalize([]string{"  Python ", "PYTHON", "python"})

			Convey("Then they collapse into one phrase", func() {
				So(set.Len(), ShouldEqual, 1)
				So(set.Terms(), ShouldResemble, []string{"python"})
			})
		})

		Convey("When an entry holds delimited phrases", func() {
			set := skills.Normalize([]string{"Django;React, Machine   Learning"})

			Convey("Then each phrase is split out and sorted", func() {
				So(set.Terms(), ShouldResemble, []string{"django", "machine learning", "react"})
			})
		})

		Convey("When entries are blank", func() {
			set := skills.Normalize([]string{"", "  ", ";,"})

			Convey("Then the set is empty", func() {
				So(set.IsEmpty(), ShouldBeTrue)
				So(set.String(), ShouldEqual, "")
			})
		})

		Convey("When input is nil", func() {
			set := skills.Normalize(nil)

			Convey("Then the zero set behaves like an empty one", func() {
				So(set.IsEmpty(), ShouldBeTrue)
				So(set.Terms(), ShouldBeEmpty)
			})
		})
	})
}

func TestSetAccessors(t *testing.T) {
	Convey("Given a parsed set", t, func() {
		set := skills.Parse("Go; PostgreSQL; go")

		Convey("Then Contains finds normalised terms only", func() {
			So(set.Contains("go"), ShouldBeTrue)
			So(set.Contains("postgresql"), ShouldBeTrue)
			So(set.Contains("Go"), ShouldBeFalse)
			So(set.Contains("java"), ShouldBeFalse)
		})

		Convey("Then String joins with commas", func() {
			So(set.String(), ShouldEqual, "go, postgresql")
		})

		Convey("Then Terms returns a copy", func() {
			terms := set.Terms()
			terms[0] = "mutated"
			So(set.Contains("go"), ShouldBeTrue)
		})

		Convey("Then Each visits terms in order", func() {
			var seen []string
			set.Each(func(term string) { seen = append(seen, term) })
			So(seen, ShouldResemble, []string{"go", "postgresql"})
		})
	})
}
