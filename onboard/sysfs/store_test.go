package sysfs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	deverr "github.com/CodedInternet/goev3/onboard/errors"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"
)

const testRoot = "/sys/class"

func writeAttr(fs afero.Fs, class, instance, attr, value string) {
	dir := filepath.Join(testRoot, class, instance)
	if err := fs.MkdirAll(dir, 0755); err != nil {
		panic(err)
	}
	if err := afero.WriteFile(fs, filepath.Join(dir, attr), []byte(value), 0644); err != nil {
		panic(err)
	}
}

func TestStoreRead(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, testRoot)

	writeAttr(fs, "tacho-motor", "motor0", "driver_name", "lego-ev3-l-motor\n")
	writeAttr(fs, "tacho-motor", "motor0", "state", "running ramping \n")
	writeAttr(fs, "tacho-motor", "motor0", "duty_cycle_sp", "0\n")
	writeAttr(fs, "tacho-motor", "motor0", "polarity", "normal\n")

	Convey("scalar reads drop the trailing newline", t, func() {
		v, err := store.Read("tacho-motor", "motor0", "driver_name")
		So(err, ShouldBeNil)
		So(v, ShouldEqual, "lego-ev3-l-motor")
	})

	Convey("list reads drop empty tokens", t, func() {
		v, err := store.ReadList("tacho-motor", "motor0", "state")
		So(err, ShouldBeNil)
		So(v, ShouldResemble, []string{"running", "ramping"})

		Convey("leading and repeated spaces too", func() {
			So(SplitList("  run-forever   stop  "), ShouldResemble, []string{"run-forever", "stop"})
			So(SplitList(""), ShouldBeEmpty)
		})
	})

	Convey("missing attributes are an IO error", t, func() {
		_, err := store.Read("tacho-motor", "motor0", "speed")
		So(err, ShouldHaveSameTypeAs, deverr.AttributeIOError{})
		So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)

		_, err = store.ReadInt("tacho-motor", "motor9", "speed")
		So(err, ShouldHaveSameTypeAs, deverr.AttributeIOError{})
	})

	Convey("integer round trip", t, func() {
		err := store.WriteInt("tacho-motor", "motor0", "duty_cycle_sp", 37)
		So(err, ShouldBeNil)

		v, err := store.ReadInt("tacho-motor", "motor0", "duty_cycle_sp")
		So(err, ShouldBeNil)
		So(v, ShouldEqual, 37)

		Convey("negative values survive", func() {
			So(store.WriteInt("tacho-motor", "motor0", "duty_cycle_sp", -100), ShouldBeNil)
			v, err := store.ReadInt("tacho-motor", "motor0", "duty_cycle_sp")
			So(err, ShouldBeNil)
			So(v, ShouldEqual, -100)
		})

		Convey("non numeric content is a format error", func() {
			So(store.Write("tacho-motor", "motor0", "duty_cycle_sp", "fast"), ShouldBeNil)
			_, err := store.ReadInt("tacho-motor", "motor0", "duty_cycle_sp")
			So(err, ShouldHaveSameTypeAs, deverr.AttributeFormatError{})
			So(err.Error(), ShouldContainSubstring, "fast")
		})
	})

	Convey("writes replace the whole value", t, func() {
		So(store.Write("tacho-motor", "motor0", "polarity", "inversed"), ShouldBeNil)
		So(store.Write("tacho-motor", "motor0", "polarity", "normal"), ShouldBeNil)
		v, err := store.Read("tacho-motor", "motor0", "polarity")
		So(err, ShouldBeNil)
		So(v, ShouldEqual, "normal")
	})

	Convey("writes never create attributes", t, func() {
		err := store.Write("tacho-motor", "motor0", "speed_sp", "100")
		So(err, ShouldHaveSameTypeAs, deverr.AttributeIOError{})

		exists, _ := afero.Exists(fs, filepath.Join(testRoot, "tacho-motor", "motor0", "speed_sp"))
		So(exists, ShouldBeFalse)
	})

	Convey("writes to a read only tree fail", t, func() {
		ro := NewStore(afero.NewReadOnlyFs(fs), testRoot)
		err := ro.Write("tacho-motor", "motor0", "polarity", "inversed")
		So(err, ShouldHaveSameTypeAs, deverr.AttributeIOError{})
	})
}
