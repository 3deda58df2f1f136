package onboard

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/CodedInternet/goev3/onboard/hardware"
	"github.com/CodedInternet/goev3/onboard/sysfs"
)

var (
	ErrNotTacho = errors.New("motor has no tacho")
)

// setpoints the shell may write by name
var setpointAttrs = map[string]bool{
	hardware.AttrDutyCycleSP: true,
	hardware.AttrSpeedSP:     true,
	hardware.AttrPositionSP:  true,
	hardware.AttrTimeSP:      true,
	hardware.AttrRampUpSP:    true,
	hardware.AttrRampDownSP:  true,
	hardware.AttrPosition:    true,
}

// Brick holds the configured motors of one EV3, bound by name.
type Brick struct {
	store  *sysfs.Store
	config BrickConfig
	motors map[string]hardware.MotorInterface
	log    *slog.Logger
}

type PortState struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
	Mode    string `yaml:"mode"`
	Status  string `yaml:"status"`
}

// MotorBinding is where a named motor ended up in the device tree.
type MotorBinding struct {
	Name      string
	Port      string
	Device    sysfs.ResolvedDevice
	Connected bool
}

type BrickState struct {
	Ports  []PortState                    `yaml:"ports"`
	Motors map[string]hardware.MotorState `yaml:"motors"`
}

// NewBrick binds every motor in config. Ports with no device but a configured
// driver get that driver bound first. Any motor that can't be bound fails the
// whole brick.
func NewBrick(store *sysfs.Store, config BrickConfig, log *slog.Logger) (b *Brick, err error) {
	if err = config.Validate(); err != nil {
		return
	}

	b = &Brick{
		store:  store,
		config: config,
		motors: make(map[string]hardware.MotorInterface, len(config.Motors)),
		log:    log,
	}

	for _, name := range sortedKeys(config.Motors) {
		mc := config.Motors[name]

		var m hardware.MotorInterface
		m, err = b.bind(mc)
		if err != nil {
			return nil, fmt.Errorf("motor %s: %w", name, err)
		}

		if err = applyMotorConfig(m, mc); err != nil {
			return nil, fmt.Errorf("motor %s: %w", name, err)
		}

		b.motors[name] = m
		log.Info("motor bound", "name", name, "device", m.Device().String())
	}

	return
}

func (b *Brick) bind(mc MotorConfig) (m hardware.MotorInterface, err error) {
	port, err := hardware.NewPort(b.store, int(mc.Port))
	if err != nil {
		return
	}

	if mc.Driver != "" {
		status, err := port.Status()
		if err != nil {
			return nil, err
		}
		if status == hardware.StatusNoDevice {
			b.log.Debug("binding driver", "port", port.Name(), "driver", mc.Driver)
			if err := port.SetDevice(mc.Driver); err != nil {
				return nil, err
			}
		}
	}

	switch mc.class() {
	case hardware.DCMotorClass:
		return hardware.NewDCMotor(port)
	default:
		return hardware.NewMotor(port)
	}
}

func applyMotorConfig(m hardware.MotorInterface, mc MotorConfig) error {
	if mc.Polarity != "" {
		if err := m.SetPolarity(mc.Polarity); err != nil {
			return err
		}
	}
	if mc.StopAction != "" {
		if err := m.SetStopAction(mc.StopAction); err != nil {
			return err
		}
	}
	if mc.RampUpSP != nil {
		if err := m.SetRampUpSP(*mc.RampUpSP); err != nil {
			return err
		}
	}
	if mc.RampDownSP != nil {
		if err := m.SetRampDownSP(*mc.RampDownSP); err != nil {
			return err
		}
	}
	return nil
}

func (b *Brick) Store() *sysfs.Store {
	return b.store
}

func (b *Brick) MotorNames() []string {
	return sortedKeys(b.motors)
}

func (b *Brick) Motor(name string) (hardware.MotorInterface, error) {
	m, ok := b.motors[name]
	if !ok {
		return nil, fmt.Errorf("unable to find motor '%s'", name)
	}
	return m, nil
}

// Bindings lists every motor by name with the instance it was resolved to
// and whether that instance is still there.
func (b *Brick) Bindings() []MotorBinding {
	bindings := make([]MotorBinding, 0, len(b.motors))
	for _, name := range b.MotorNames() {
		dev := b.motors[name].Device()
		bindings = append(bindings, MotorBinding{
			Name:      name,
			Port:      dev.Port().Name(),
			Device:    dev.Resolved(),
			Connected: dev.IsConnected(),
		})
	}
	return bindings
}

// Tacho returns the named motor if it is a tacho motor.
func (b *Brick) Tacho(name string) (*hardware.Motor, error) {
	m, err := b.Motor(name)
	if err != nil {
		return nil, err
	}
	tm, ok := m.(*hardware.Motor)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNotTacho)
	}
	return tm, nil
}

// Port opens the port with the given label.
func (b *Brick) Port(label string) (*hardware.Port, error) {
	id, err := hardware.ParsePort(label)
	if err != nil {
		return nil, err
	}
	return hardware.NewPort(b.store, id)
}

// Run sends cmd to the named motor.
func (b *Brick) Run(name string, cmd hardware.Command) error {
	m, err := b.Motor(name)
	if err != nil {
		return err
	}

	b.log.Debug("command", "motor", name, "command", string(cmd))
	return m.SendCommand(cmd)
}

// SetSetpoint writes an integer setpoint by attribute name.
func (b *Brick) SetSetpoint(name, attr string, value int) error {
	if !setpointAttrs[attr] {
		return fmt.Errorf("%s is not a setpoint", attr)
	}

	m, err := b.Motor(name)
	if err != nil {
		return err
	}
	return m.Device().SetIntAttribute(attr, value)
}

// StopAll sends stop to every motor and returns all failures joined.
func (b *Brick) StopAll() error {
	var errs []error
	for _, name := range b.MotorNames() {
		if err := b.motors[name].Stop(); err != nil {
			b.log.Warn("stop failed", "motor", name, "error", err)
			errs = append(errs, fmt.Errorf("motor %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Status reads every port and every bound motor.
func (b *Brick) Status() (state BrickState, err error) {
	for id := 0; id < hardware.NumPorts; id++ {
		var port *hardware.Port
		port, err = hardware.NewPort(b.store, id)
		if err != nil {
			return
		}

		ps := PortState{Name: port.Name()}
		if ps.Address, err = port.Address(); err != nil {
			return
		}
		if ps.Mode, err = port.Mode(); err != nil {
			return
		}
		if ps.Status, err = port.Status(); err != nil {
			return
		}
		state.Ports = append(state.Ports, ps)
	}

	state.Motors = make(map[string]hardware.MotorState, len(b.motors))
	for name, m := range b.motors {
		var ms hardware.MotorState
		if ms, err = hardware.ReadState(m); err != nil {
			return state, fmt.Errorf("motor %s: %w", name, err)
		}
		state.Motors[name] = ms
	}

	return
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
