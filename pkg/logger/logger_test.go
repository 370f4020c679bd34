package logger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
}

func TestLoggerOutput(t *testing.T) {
	Convey("Given a logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(InitWithWriter(&buf, "text"), ShouldBeNil)
		ctx := context.Background()

		Convey("When logging a message with fields", func() {
			Get().Info(ctx, "search finished", String("title", "golang"), Int("jobs", 7))

			Convey("Then the fields and caller are written", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "search finished")
				So(out, ShouldContainSubstring, "title=golang")
				So(out, ShouldContainSubstring, "jobs=7")
				So(out, ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When the context carries a request id", func() {
			Get().Warn(WithRequestID(ctx, "req-42"), "slow source", Error(errors.New("timeout")))

			Convey("Then the request id is attached", func() {
				So(buf.String(), ShouldContainSubstring, "request_id=req-42")
				So(buf.String(), ShouldContainSubstring, "timeout")
			})
		})

		Convey("When debug is disabled", func() {
			So(SetLevelString("info"), ShouldBeNil)
			Get().Debug(ctx, "hidden")

			Convey("Then nothing is written", func() {
				So(strings.Contains(buf.String(), "hidden"), ShouldBeFalse)
			})
		})

		Convey("When using a named logger with bound fields", func() {
			Named("sources").With(String("source", "adzuna")).Error(ctx, "fetch failed")

			Convey("Then the group prefix appears", func() {
				So(buf.String(), ShouldContainSubstring, "sources.")
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		So(SetLevelString("debug"), ShouldBeNil)
		So(SetLevelString("WARNING"), ShouldBeNil)
		So(SetLevelString("error"), ShouldBeNil)
		So(SetLevelString(""), ShouldBeNil)
		So(SetLevelString("loud"), ShouldNotBeNil)
	})
}

func TestInitWithWriterFormat(t *testing.T) {
	Convey("Given an unknown format", t, func() {
		So(InitWithWriter(&bytes.Buffer{}, "xml"), ShouldNotBeNil)
		So(InitWithWriter(&bytes.Buffer{}, "json"), ShouldBeNil)
	})
}
