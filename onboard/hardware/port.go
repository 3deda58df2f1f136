package hardware

import (
	"fmt"
	"strings"

	deverr "github.com/CodedInternet/goev3/onboard/errors"
	"github.com/CodedInternet/goev3/onboard/sysfs"
)

// Physical connectors. 0-3 are the sensor inputs, 4-7 the motor outputs.
const (
	PortIn1 = iota
	PortIn2
	PortIn3
	PortIn4
	PortOutA
	PortOutB
	PortOutC
	PortOutD

	NumPorts = 8
)

var portNames = [NumPorts]string{"in1", "in2", "in3", "in4", "outA", "outB", "outC", "outD"}

// Port is one physical connector. It keeps no state besides its id; every
// accessor goes back to lego-port/port<id>.
type Port struct {
	id    int
	store *sysfs.Store
}

func NewPort(store *sysfs.Store, id int) (p *Port, err error) {
	if id < 0 || id >= NumPorts {
		return nil, deverr.InvalidPortError{
			Port:   fmt.Sprint(id),
			Reason: fmt.Sprintf("id must be between 0 and %d", NumPorts-1),
		}
	}

	return &Port{id: id, store: store}, nil
}

// ParsePort maps a connector label to a port id. It accepts the full name
// ("in1", "outB"), the bare output letter ("B") or the bare input number ("1").
func ParsePort(label string) (id int, err error) {
	label = strings.TrimSpace(label)
	for i, name := range portNames {
		if strings.EqualFold(label, name) || strings.EqualFold("out"+label, name) || "in"+label == name {
			return i, nil
		}
	}

	return -1, deverr.InvalidPortError{Port: label, Reason: "unknown port label"}
}

func (p *Port) ID() int {
	return p.id
}

// Name is the connector label printed on the brick, e.g. outA.
func (p *Port) Name() string {
	return portNames[p.id]
}

// PortName returns the label for id, or "" if id is out of range.
func PortName(id int) string {
	if id < 0 || id >= NumPorts {
		return ""
	}
	return portNames[id]
}

func (p *Port) instance() string {
	return fmt.Sprintf("%s%d", PortSubsystem, p.id)
}

func (p *Port) Address() (string, error) {
	return p.store.Read(PortClass, p.instance(), AttrAddress)
}

func (p *Port) DriverName() (string, error) {
	return p.store.Read(PortClass, p.instance(), AttrDriverName)
}

func (p *Port) Modes() ([]string, error) {
	return p.store.ReadList(PortClass, p.instance(), AttrModes)
}

func (p *Port) Mode() (string, error) {
	return p.store.Read(PortClass, p.instance(), AttrMode)
}

func (p *Port) SetMode(mode string) error {
	return p.store.Write(PortClass, p.instance(), AttrMode, mode)
}

// SetDevice binds driver to the port, for devices that can't be detected
// automatically.
func (p *Port) SetDevice(driver string) error {
	return p.store.Write(PortClass, p.instance(), AttrSetDevice, driver)
}

// Status is the class name of the device bound to the port, or StatusNoDevice.
func (p *Port) Status() (string, error) {
	return p.store.Read(PortClass, p.instance(), AttrStatus)
}

func (p *Port) String() string {
	return p.Name()
}
