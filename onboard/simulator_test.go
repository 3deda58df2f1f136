package onboard

import (
	"testing"

	"github.com/CodedInternet/goev3/onboard/hardware"
	"github.com/CodedInternet/goev3/onboard/logging"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSimulatedTree(t *testing.T) {
	Convey("configured motors are plugged in", t, func() {
		tree, err := NewSimulatedTree(testConfig())
		So(err, ShouldBeNil)

		So(tree.Get(hardware.PortClass, "port5", hardware.AttrStatus), ShouldEqual, hardware.TachoMotorClass)
		So(tree.Get(hardware.PortClass, "port6", hardware.AttrStatus), ShouldEqual, hardware.TachoMotorClass)
		So(tree.Get(hardware.TachoMotorClass, "motor0", hardware.AttrDriverName), ShouldEqual, "lego-ev3-l-motor")

		Convey("except those left to set_device", func() {
			So(tree.Get(hardware.PortClass, "port7", hardware.AttrStatus), ShouldEqual, hardware.StatusNoDevice)
		})
	})

	Convey("an invalid config never builds a simulator", t, func() {
		_, _, err := NewBrickSimulator(BrickConfig{Version: 9}, logging.Discard())
		So(err, ShouldNotBeNil)
	})
}
