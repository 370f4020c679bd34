package scoring_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/okian/jobscout/internal/domain/model"
	scoring "github.com/okian/jobscout/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTokenize(t *testing.T) {
	Convey("Given free text", t, func() {
		So(scoring.Tokenize("Senior C++/C# Developer, Remote!"), ShouldResemble,
			[]string{"senior", "c++", "c#", "developer", "remote"})
		So(scoring.Tokenize("  "), ShouldBeEmpty)
	})
}

func TestCosine(t *testing.T) {
	Convey("Given token lists", t, func() {
		Convey("Identical lists score 1", func() {
			So(scoring.Cosine([]string{"go", "engineer"}, []string{"engineer", "go"}), ShouldAlmostEqual, 1.0, 1e-9)
		})
		Convey("Disjoint lists score 0", func() {
			So(scoring.Cosine([]string{"go"}, []string{"java"}), ShouldEqual, 0)
		})
		Convey("Empty input scores 0", func() {
			So(scoring.Cosine(nil, []string{"go"}), ShouldEqual, 0)
		})
		Convey("Partial overlap follows word counts", func() {
			// a=(software:1, engineer:1), b=(software:1, developer:1) -> 1/2
			So(scoring.Cosine([]string{"software", "engineer"}, []string{"software", "developer"}), ShouldAlmostEqual, 0.5, 1e-9)
		})
	})
}

func TestRanker_Rank(t *testing.T) {
	Convey("Given a ranker and listings of varying relevance", t, func() {
		r := scoring.NewRanker()
		jobs := []model.NormalizedJob{
			{Title: "Office Manager", Company: "A"},
			{Title: "Software Engineer", Company: "B", Description: "software engineer role"},
			{Title: "Senior Software Engineer", Company: "C", ApplyLink: "https://c.example", Salary: model.Float(1)},
		}

		ranked := r.Rank(jobs, "Software Engineer", model.Place{})

		Convey("Then results are sorted descending by score", func() {
			So(ranked[0].Company, ShouldEqual, "B")
			So(ranked[len(ranked)-1].Company, ShouldEqual, "A")
			for i := 1; i < len(ranked); i++ {
				So(ranked[i-1].RelevanceScore, ShouldBeGreaterThanOrEqualTo, ranked[i].RelevanceScore)
			}
		})

		Convey("Then matched keywords are recorded", func() {
			So(ranked[0].MatchedKeywords, ShouldResemble, []string{"software", "engineer"})
			So(ranked[2].MatchedKeywords, ShouldBeEmpty)
		})

		Convey("Then completeness bonuses apply", func() {
			// title cosine(query, senior software engineer) = 2/sqrt(6)
			want := 0.5*2/math.Sqrt(6) + 0.05 + 0.05
			So(ranked[1].RelevanceScore, ShouldAlmostEqual, want, 1e-9)
		})
	})

	Convey("Given ties", t, func() {
		jobs := []model.NormalizedJob{{Title: "x", Company: "1"}, {Title: "y", Company: "2"}, {Title: "z", Company: "3"}}
		ranked := scoring.NewRanker().Rank(jobs, "golang", model.Place{})

		Convey("Then prior relative order is kept", func() {
			So([]string{ranked[0].Company, ranked[1].Company, ranked[2].Company}, ShouldResemble, []string{"1", "2", "3"})
		})
	})

	Convey("Given a fully matching complete listing", t, func() {
		ie := "IE"
		jobs := []model.NormalizedJob{{
			Title: "Go Engineer", Description: "Go Engineer", Location: "Dublin", CountryCode: &ie,
			Salary: model.Float(1), EmploymentType: "full-time", ApplyLink: "https://x",
		}}
		ranked := scoring.NewRanker().Rank(jobs, "go engineer", model.Place{Formatted: "Dublin, Ireland", CountryCode: "IE"})

		Convey("Then the score is clamped to 1", func() {
			So(ranked[0].RelevanceScore, ShouldEqual, 1.0)
		})
	})

	Convey("Given many random-ish listings", t, func() {
		var jobs []model.NormalizedJob
		for i := 0; i < 50; i++ {
			jobs = append(jobs, model.NormalizedJob{
				Title:       fmt.Sprintf("engineer %d go go go", i),
				Description: "go engineer remote go",
				Salary:      model.Float(float64(i)),
				ApplyLink:   "x",
				Source:      []string{"usajobs", "jooble", "other"}[i%3],
			})
		}
		r := scoring.NewRanker(scoring.WithSourceWeights(map[string]float64{"usajobs": 3, "jooble": 0.75}))
		ranked := r.Boost(r.Rank(jobs, "go engineer", model.Place{Formatted: "Remote"}))

		Convey("Then every score stays within [0, 1]", func() {
			for _, j := range ranked {
				So(j.RelevanceScore, ShouldBeBetweenOrEqual, 0, 1)
			}
		})
	})
}

func TestRanker_Boost(t *testing.T) {
	Convey("Given equally relevant listings from different sources", t, func() {
		r := scoring.NewRanker(scoring.WithSourceWeights(map[string]float64{"usajobs": 1.0, "jooble": 0.5}))
		jobs := []model.NormalizedJob{
			{Source: "jooble", RelevanceScore: 0.8},
			{Source: "unknown", RelevanceScore: 0.6},
			{Source: "usajobs", RelevanceScore: 0.7},
		}

		boosted := r.Boost(jobs)

		Convey("Then scores are multiplied by source weight and re-sorted", func() {
			So(boosted[0].Source, ShouldEqual, "usajobs")
			So(boosted[1].Source, ShouldEqual, "unknown")
			So(boosted[2].Source, ShouldEqual, "jooble")
			So(boosted[2].RelevanceScore, ShouldAlmostEqual, 0.4, 1e-9)
		})

		Convey("Then weights above one are clamped", func() {
			r := scoring.NewRanker(scoring.WithSourceWeights(map[string]float64{"themuse": 2}))
			So(r.Weight("themuse"), ShouldEqual, 1.0)
			So(r.Weight("THEMUSE"), ShouldEqual, 1.0)
		})
	})
}

func TestLocationMatch(t *testing.T) {
	Convey("Given a user location", t, func() {
		where := model.Place{Formatted: "San Francisco, CA", CountryCode: "US"}
		us, de := "US", "DE"

		So(scoring.LocationMatch(model.Place{}, &model.NormalizedJob{Location: "Anywhere"}), ShouldEqual, 0)
		So(scoring.LocationMatch(where, &model.NormalizedJob{Location: "New York", CountryCode: &us}), ShouldEqual, 1)
		So(scoring.LocationMatch(where, &model.NormalizedJob{Location: "San Francisco, CA, USA"}), ShouldEqual, 1)
		So(scoring.LocationMatch(where, &model.NormalizedJob{Location: "San Jose, CA", CountryCode: &de}), ShouldAlmostEqual, 2.0/3.0, 1e-9)
		So(scoring.LocationMatch(where, &model.NormalizedJob{Location: "Berlin"}), ShouldEqual, 0)
	})
}
