package onboard

import (
	"fmt"

	"github.com/CodedInternet/goev3/onboard/hardware"
)

const CONFIG_VERSION = 1

// BrickConfig describes which motors are expected on which ports, and the
// settings applied to them when the brick starts.
type BrickConfig struct {
	Version int
	Motors  map[string]MotorConfig
}

type MotorConfig struct {
	Port       PortLabel           `yaml:"port"`
	Class      string              `yaml:"class,omitempty"`  // tacho-motor (default) or dc-motor
	Driver     string              `yaml:"driver,omitempty"` // bound with set_device if the port is empty
	Polarity   hardware.Polarity   `yaml:"polarity,omitempty"`
	StopAction hardware.StopAction `yaml:"stop_action,omitempty"`
	RampUpSP   *int                `yaml:"ramp_up_sp,omitempty"`
	RampDownSP *int                `yaml:"ramp_down_sp,omitempty"`
}

// PortLabel is a port id written the way it is printed on the brick.
type PortLabel int

func (p PortLabel) MarshalYAML() (interface{}, error) {
	name := hardware.PortName(int(p))
	if name == "" {
		return nil, fmt.Errorf("port id %d out of range", int(p))
	}
	return name, nil
}

func (p *PortLabel) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var label string
	if err := unmarshal(&label); err != nil {
		return err
	}

	id, err := hardware.ParsePort(label)
	if err != nil {
		return err
	}
	*p = PortLabel(id)
	return nil
}

func (mc MotorConfig) class() string {
	if mc.Class == "" {
		return hardware.TachoMotorClass
	}
	return mc.Class
}

// Validate checks the config before any hardware is touched.
func (c *BrickConfig) Validate() error {
	if c.Version != CONFIG_VERSION {
		return fmt.Errorf("unable to work with version %d", c.Version)
	}

	used := make(map[PortLabel]string, len(c.Motors))
	for name, mc := range c.Motors {
		if other, ok := used[mc.Port]; ok {
			return fmt.Errorf("motors %s and %s share a port", other, name)
		}
		used[mc.Port] = name

		if mc.Port < hardware.PortOutA || int(mc.Port) >= hardware.NumPorts {
			return fmt.Errorf("motor %s: port must be an output", name)
		}

		switch mc.class() {
		case hardware.TachoMotorClass, hardware.DCMotorClass:
		default:
			return fmt.Errorf("motor %s: unknown class %s", name, mc.Class)
		}

		if mc.Polarity != "" {
			if _, err := hardware.ParsePolarity(string(mc.Polarity)); err != nil {
				return fmt.Errorf("motor %s: %w", name, err)
			}
		}
		if mc.StopAction != "" {
			if _, err := hardware.ParseStopAction(string(mc.StopAction)); err != nil {
				return fmt.Errorf("motor %s: %w", name, err)
			}
		}
	}

	return nil
}
