package onboard

import (
	"errors"
	"testing"

	deverr "github.com/CodedInternet/goev3/onboard/errors"
	"github.com/CodedInternet/goev3/onboard/hardware"
	"github.com/CodedInternet/goev3/onboard/logging"
	"github.com/CodedInternet/goev3/onboard/sim"
	"github.com/CodedInternet/goev3/onboard/sysfs"
	. "github.com/smartystreets/goconvey/convey"
	"gopkg.in/yaml.v2"
)

func testConfig() BrickConfig {
	ramp := 250
	return BrickConfig{
		Version: CONFIG_VERSION,
		Motors: map[string]MotorConfig{
			"left":  {Port: PortLabel(hardware.PortOutB), Polarity: hardware.PolarityInversed, RampUpSP: &ramp},
			"right": {Port: PortLabel(hardware.PortOutC), StopAction: hardware.StopActionBrake},
			"winch": {Port: PortLabel(hardware.PortOutD), Class: hardware.DCMotorClass, Driver: "rcx-motor"},
		},
	}
}

func TestBrick(t *testing.T) {
	Convey("given a simulated brick", t, func() {
		brick, tree, err := NewBrickSimulator(testConfig(), logging.Discard())
		So(err, ShouldBeNil)
		So(brick.MotorNames(), ShouldResemble, []string{"left", "right", "winch"})

		Convey("configured settings are applied", func() {
			left, err := brick.Tacho("left")
			So(err, ShouldBeNil)
			p, err := left.Polarity()
			So(err, ShouldBeNil)
			So(p, ShouldEqual, hardware.PolarityInversed)
			ramp, _ := left.RampUpSP()
			So(ramp, ShouldEqual, 250)

			right, _ := brick.Motor("right")
			action, _ := right.StopAction()
			So(action, ShouldEqual, hardware.StopActionBrake)
		})

		Convey("drivers named in the config are bound with set_device", func() {
			So(tree.Get(hardware.PortClass, "port7", hardware.AttrStatus), ShouldEqual, hardware.DCMotorClass)
			winch, err := brick.Motor("winch")
			So(err, ShouldBeNil)
			So(winch.Device().Class(), ShouldEqual, hardware.DCMotorClass)

			_, err = brick.Tacho("winch")
			So(errors.Is(err, ErrNotTacho), ShouldBeTrue)
		})

		Convey("commands go to the named motor", func() {
			So(brick.Run("left", hardware.CommandRunForever), ShouldBeNil)
			m, _ := brick.Motor("left")
			state, _ := m.State()
			So(state.Running(), ShouldBeTrue)

			So(brick.Run("nobody", hardware.CommandStop), ShouldNotBeNil)

			Convey("stop all stops every motor", func() {
				So(brick.StopAll(), ShouldBeNil)
				state, _ := m.State()
				So(state.Running(), ShouldBeFalse)
			})

			Convey("bindings follow the resolved instances", func() {
				bindings := brick.Bindings()
				So(len(bindings), ShouldEqual, 3)
				So(bindings[0].Name, ShouldEqual, "left")
				So(bindings[0].Port, ShouldEqual, "outB")
				So(bindings[0].Device.Instance, ShouldEqual, "motor0")
				So(bindings[0].Device.Address, ShouldEqual, "ev3-ports:outB")
				So(bindings[2].Device.Class, ShouldEqual, hardware.DCMotorClass)

				So(tree.Unplug(sim.PortAddress(hardware.PortOutC)), ShouldBeNil)
				bindings = brick.Bindings()
				So(bindings[0].Connected, ShouldBeTrue)
				So(bindings[1].Connected, ShouldBeFalse)
			})

			Convey("stop all reports unplugged motors", func() {
				So(tree.Unplug(sim.PortAddress(hardware.PortOutC)), ShouldBeNil)
				err := brick.StopAll()
				So(err, ShouldNotBeNil)

				var disc deverr.DisconnectedError
				So(errors.As(err, &disc), ShouldBeTrue)
				So(disc.Address, ShouldEqual, "ev3-ports:outC")
			})
		})

		Convey("setpoints are written by attribute name", func() {
			So(brick.SetSetpoint("right", hardware.AttrSpeedSP, 400), ShouldBeNil)
			So(tree.Get(hardware.TachoMotorClass, "motor1", hardware.AttrSpeedSP), ShouldEqual, "400")
			So(brick.SetSetpoint("right", hardware.AttrState, 1), ShouldNotBeNil)
		})

		Convey("ports open by label", func() {
			p, err := brick.Port("B")
			So(err, ShouldBeNil)
			So(p.ID(), ShouldEqual, hardware.PortOutB)
		})

		Convey("status covers ports and motors", func() {
			state, err := brick.Status()
			So(err, ShouldBeNil)
			So(len(state.Ports), ShouldEqual, hardware.NumPorts)
			So(state.Ports[5].Status, ShouldEqual, hardware.TachoMotorClass)
			So(state.Ports[0].Status, ShouldEqual, hardware.StatusNoDevice)
			So(state.Motors["left"].Polarity, ShouldEqual, hardware.PolarityInversed)

			out, err := yaml.Marshal(state)
			So(err, ShouldBeNil)
			So(string(out), ShouldContainSubstring, "driver: rcx-motor")
		})
	})

	Convey("a missing motor fails the brick", t, func() {
		tree, err := sim.NewEV3(sysfs.DefaultRoot)
		So(err, ShouldBeNil)

		config := BrickConfig{Version: CONFIG_VERSION, Motors: map[string]MotorConfig{
			"left": {Port: PortLabel(hardware.PortOutA)},
		}}
		_, err = NewBrick(sysfs.NewStore(tree.Fs(), tree.Root()), config, logging.Discard())
		So(err, ShouldNotBeNil)

		var invalid deverr.InvalidPortError
		So(errors.As(err, &invalid), ShouldBeTrue)
		So(err.Error(), ShouldContainSubstring, "motor left")
	})
}
