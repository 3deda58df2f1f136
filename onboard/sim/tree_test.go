package sim

import (
	"errors"
	"os"
	"syscall"
	"testing"

	"github.com/CodedInternet/goev3/onboard/sysfs"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTree(t *testing.T) {
	Convey("an EV3 tree has eight unbound ports", t, func() {
		tree, err := NewEV3("/sys/class")
		So(err, ShouldBeNil)
		store := sysfs.NewStore(tree.Fs(), tree.Root())

		names, err := store.Instances(portClass, "port")
		So(err, ShouldBeNil)
		So(len(names), ShouldEqual, 8)
		So(tree.Get(portClass, "port5", "address"), ShouldEqual, "ev3-ports:outB")
		So(tree.Get(portClass, "port0", "address"), ShouldEqual, "ev3-ports:in1")
		So(tree.Get(portClass, "port5", "status"), ShouldEqual, noDevice)

		Convey("plugging a motor updates the port", func() {
			inst, err := tree.AddMotor(PortAddress(5), "lego-ev3-l-motor")
			So(err, ShouldBeNil)
			So(inst, ShouldEqual, "motor0")
			So(tree.Get(portClass, "port5", "status"), ShouldEqual, tachoClass)

			Convey("read only attributes refuse writes", func() {
				err := store.Write(tachoClass, inst, "state", "running")
				So(errors.Is(err, os.ErrPermission), ShouldBeTrue)
			})

			Convey("the driver rejects bad values and keeps the old one", func() {
				So(store.WriteInt(tachoClass, inst, "duty_cycle_sp", 50), ShouldBeNil)
				err := store.WriteInt(tachoClass, inst, "duty_cycle_sp", 101)
				So(errors.Is(err, syscall.EINVAL), ShouldBeTrue)
				So(tree.Get(tachoClass, inst, "duty_cycle_sp"), ShouldEqual, "50")
			})

			Convey("commands drive the state", func() {
				So(store.Write(tachoClass, inst, "command", "run-forever"), ShouldBeNil)
				So(tree.Get(tachoClass, inst, "state"), ShouldEqual, "running")

				So(store.Write(tachoClass, inst, "stop_action", "hold"), ShouldBeNil)
				So(store.Write(tachoClass, inst, "command", "stop"), ShouldBeNil)
				So(tree.Get(tachoClass, inst, "state"), ShouldEqual, "holding")

				err := store.Write(tachoClass, inst, "command", "fly")
				So(errors.Is(err, syscall.EINVAL), ShouldBeTrue)
			})

			Convey("unplugging removes the instance", func() {
				So(tree.Unplug(PortAddress(5)), ShouldBeNil)
				So(tree.Get(portClass, "port5", "status"), ShouldEqual, noDevice)
				_, err := store.Resolve(tachoClass, "motor", PortAddress(5))
				So(err, ShouldNotBeNil)
			})
		})

		Convey("set_device loads a driver on the port", func() {
			So(store.Write(portClass, "port6", "set_device", "rcx-motor"), ShouldBeNil)
			So(tree.Get(portClass, "port6", "status"), ShouldEqual, dcClass)
			dev, err := store.Resolve(dcClass, "motor", PortAddress(6))
			So(err, ShouldBeNil)
			So(dev.Instance, ShouldEqual, "motor0")

			Convey("and a second driver replaces the first", func() {
				So(store.Write(portClass, "port6", "set_device", "lego-nxt-motor"), ShouldBeNil)
				So(tree.Get(portClass, "port6", "status"), ShouldEqual, tachoClass)

				names, err := store.Instances(dcClass, "motor")
				So(err, ShouldBeNil)
				So(names, ShouldBeEmpty)

				names, err = store.Instances(tachoClass, "motor")
				So(err, ShouldBeNil)
				So(names, ShouldResemble, []string{"motor0"})
			})
		})

		Convey("modes must be listed", func() {
			So(store.Write(portClass, "port4", "mode", "dc-motor"), ShouldBeNil)
			err := store.Write(portClass, "port4", "mode", "nxt-color")
			So(errors.Is(err, syscall.EINVAL), ShouldBeTrue)
		})
	})
}
