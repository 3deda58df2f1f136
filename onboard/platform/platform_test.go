package platform

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseRelease(t *testing.T) {
	Convey("ev3dev kernels are recognised", t, func() {
		r, err := ParseRelease("4.14.117-ev3dev-2.3.5-ev3")
		So(err, ShouldBeNil)
		So(r.Driver.String(), ShouldEqual, "2.3.5")
		So(r.Board, ShouldEqual, "ev3")
		So(r.Kernel, ShouldEqual, "4.14.117-ev3dev-2.3.5-ev3")

		Convey("without a board suffix", func() {
			r, err := ParseRelease("4.4.87-22-ev3dev-ev3")
			So(err, ShouldNotBeNil)

			r, err = ParseRelease("4.19.0-ev3dev-2.1.0")
			So(err, ShouldBeNil)
			So(r.Board, ShouldEqual, "")
		})
	})

	Convey("other kernels are refused", t, func() {
		_, err := ParseRelease("6.1.0-18-amd64")
		So(err, ShouldNotBeNil)
	})
}

func TestCheckRelease(t *testing.T) {
	Convey("new drivers pass", t, func() {
		_, err := CheckRelease("4.14.117-ev3dev-2.3.5-ev3")
		So(err, ShouldBeNil)
	})

	Convey("old drivers fail with the requirement in the message", t, func() {
		_, err := CheckRelease("4.4.19-ev3dev-1.2.0-ev3")
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, DRIVER_VERSION)
	})
}
