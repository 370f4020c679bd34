package model_test

import (
	"encoding/json"
	"testing"

	model "github.com/okian/jobscout/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestSearchQuery_Validate(t *testing.T) {
	convey.Convey("Given a search query", t, func() {
		q := model.SearchQuery{Title: "Software Engineer", Page: 1, Limit: 12}

		convey.Convey("When it is complete", func() {
			convey.So(q.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("When the title is blank", func() {
			q.Title = "   "
			convey.So(q.Validate(), convey.ShouldWrap, model.ErrInvalidQuery)
		})

		convey.Convey("When page or limit is below one", func() {
			q.Page = 0
			convey.So(q.Validate(), convey.ShouldWrap, model.ErrInvalidQuery)
			q.Page, q.Limit = 1, 0
			convey.So(q.Validate(), convey.ShouldWrap, model.ErrInvalidQuery)
		})

		convey.Convey("When the salary range is inverted", func() {
			q.Filters.MinSalary = model.Float(90000)
			q.Filters.MaxSalary = model.Float(50000)
			convey.So(q.Validate(), convey.ShouldWrap, model.ErrInvalidQuery)
		})
	})
}

func TestFilterSet_IsZero(t *testing.T) {
	convey.Convey("Given filter sets", t, func() {
		convey.So(model.FilterSet{}.IsZero(), convey.ShouldBeTrue)
		convey.So(model.FilterSet{EmploymentType: " "}.IsZero(), convey.ShouldBeTrue)
		convey.So(model.FilterSet{RemoteOnly: true}.IsZero(), convey.ShouldBeFalse)
		convey.So(model.FilterSet{MinSalary: model.Float(1)}.IsZero(), convey.ShouldBeFalse)
	})
}

func TestNormalizedJob_JSON(t *testing.T) {
	convey.Convey("Given a normalized job without optional values", t, func() {
		job := model.NormalizedJob{Title: "Backend Developer", Company: "N/A", Source: "remotive"}

		convey.Convey("When it is encoded", func() {
			b, err := json.Marshal(job)
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then absent values are explicit nulls in snake_case", func() {
				var m map[string]any
				convey.So(json.Unmarshal(b, &m), convey.ShouldBeNil)
				convey.So(m, convey.ShouldContainKey, "country_code")
				convey.So(m["country_code"], convey.ShouldBeNil)
				convey.So(m["salary"], convey.ShouldBeNil)
				convey.So(m["apply_link"], convey.ShouldEqual, "")
				convey.So(m, convey.ShouldContainKey, "relevance_score")
			})
		})
	})

	convey.Convey("String helper maps empty to nil", t, func() {
		convey.So(model.String(""), convey.ShouldBeNil)
		convey.So(*model.String("IE"), convey.ShouldEqual, "IE")
	})
}
