package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNew(t *testing.T) {
	Convey("json output carries the service field", t, func() {
		var buf bytes.Buffer
		log := New(&buf, "JSON", false)
		log.Info("motor bound", "name", "left")

		var entry map[string]interface{}
		So(json.Unmarshal(buf.Bytes(), &entry), ShouldBeNil)
		So(entry["service"], ShouldEqual, "goev3")
		So(entry["name"], ShouldEqual, "left")
	})

	Convey("debug is only written when enabled", t, func() {
		var buf bytes.Buffer
		New(&buf, "text", false).Debug("hidden")
		So(buf.Len(), ShouldEqual, 0)

		New(&buf, "text", true).Debug("shown")
		So(buf.String(), ShouldContainSubstring, "shown")
	})

	Convey("discard drops errors too", t, func() {
		So(func() { Discard().Error("nothing") }, ShouldNotPanic)
	})
}
