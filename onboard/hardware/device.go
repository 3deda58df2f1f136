package hardware

import (
	"fmt"
	"strings"
	"sync"

	deverr "github.com/CodedInternet/goev3/onboard/errors"
	"github.com/CodedInternet/goev3/onboard/sysfs"
)

// connector family marker each subsystem's port address must carry
var familyMarkers = map[string]string{
	MotorSubsystem:  "out",
	SensorSubsystem: "in",
}

// Device binds a port to the instance directory of the device plugged into
// it. The class is fixed for the lifetime of the Device; if something else
// gets plugged in, build a new one.
//
// Device does no locking of its own. Two callers writing a setpoint and then
// a command can interleave; use Exclusive when that matters.
type Device struct {
	port     *Port
	store    *sysfs.Store
	resolved sysfs.ResolvedDevice
	lock     sync.Mutex
}

// NewDevice checks that port is on the right connector family for subsystem
// and that its status reports class, then resolves the backing instance.
// Wiring mistakes come back as InvalidPortError, a driver that hasn't
// enumerated the device yet as DeviceNotPresentError.
func NewDevice(port *Port, class, subsystem string) (d *Device, err error) {
	address, err := port.Address()
	if err != nil {
		return
	}

	marker, ok := familyMarkers[subsystem]
	if !ok {
		return nil, deverr.InvalidPortError{
			Port:    port.Name(),
			Address: address,
			Reason:  fmt.Sprintf("no connector family for %s devices", subsystem),
		}
	}
	if !strings.Contains(address, marker) {
		return nil, deverr.InvalidPortError{
			Port:    port.Name(),
			Address: address,
			Reason:  fmt.Sprintf("not an %s port, %s devices need one", marker, subsystem),
		}
	}

	status, err := port.Status()
	if err != nil {
		return
	}
	if status != class {
		return nil, deverr.InvalidPortError{
			Port:    port.Name(),
			Address: address,
			Reason:  fmt.Sprintf("expected %s, found %s", class, status),
		}
	}

	resolved, err := port.store.Resolve(class, subsystem, address)
	if err != nil {
		return
	}

	return &Device{port: port, store: port.store, resolved: resolved}, nil
}

func (d *Device) Port() *Port {
	return d.port
}

func (d *Device) Class() string {
	return d.resolved.Class
}

func (d *Device) Instance() string {
	return d.resolved.Instance
}

func (d *Device) Resolved() sysfs.ResolvedDevice {
	return d.resolved
}

// IsConnected reports whether the resolved instance still exists at the
// same address.
func (d *Device) IsConnected() bool {
	return d.store.Present(d.resolved)
}

func (d *Device) Attribute(name string) (value string, err error) {
	value, err = d.store.Read(d.resolved.Class, d.resolved.Instance, name)
	return value, d.classify(err)
}

func (d *Device) IntAttribute(name string) (value int, err error) {
	value, err = d.store.ReadInt(d.resolved.Class, d.resolved.Instance, name)
	return value, d.classify(err)
}

func (d *Device) ListAttribute(name string) (values []string, err error) {
	values, err = d.store.ReadList(d.resolved.Class, d.resolved.Instance, name)
	return values, d.classify(err)
}

func (d *Device) SetAttribute(name, value string) error {
	return d.classify(d.store.Write(d.resolved.Class, d.resolved.Instance, name, value))
}

func (d *Device) SetIntAttribute(name string, value int) error {
	return d.classify(d.store.WriteInt(d.resolved.Class, d.resolved.Instance, name, value))
}

// Exclusive runs fn while holding the device lock. It only serialises
// callers that also go through Exclusive.
func (d *Device) Exclusive(fn func() error) error {
	d.lock.Lock()
	defer d.lock.Unlock()

	return fn()
}

// classify turns an IO failure on a device that has since disappeared into
// a DisconnectedError. Format errors and IO errors on a present device are
// returned untouched.
func (d *Device) classify(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(deverr.AttributeIOError); !ok {
		return err
	}
	if d.IsConnected() {
		return err
	}

	return deverr.DisconnectedError{
		Class:    d.resolved.Class,
		Instance: d.resolved.Instance,
		Address:  d.resolved.Address,
		Err:      err,
	}
}

func (d *Device) String() string {
	return d.resolved.String()
}

// typed helpers shared by the motor views

func readEnum[T ~string](d *Device, attr string, parse func(string) (T, error)) (value T, err error) {
	str, err := d.Attribute(attr)
	if err != nil {
		return
	}
	return parse(str)
}
