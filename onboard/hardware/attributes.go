package hardware

import (
	"sort"

	deverr "github.com/CodedInternet/goev3/onboard/errors"
)

// Device classes and the instance prefix used under each class directory.
const (
	PortClass       = "lego-port"
	TachoMotorClass = "tacho-motor"
	DCMotorClass    = "dc-motor"
	SensorClass     = "lego-sensor"

	PortSubsystem   = "port"
	MotorSubsystem  = "motor"
	SensorSubsystem = "sensor"
)

// Attribute names, as exposed by the ev3dev drivers.
const (
	AttrAddress         = "address"
	AttrDriverName      = "driver_name"
	AttrModes           = "modes"
	AttrMode            = "mode"
	AttrSetDevice       = "set_device"
	AttrStatus          = "status"
	AttrCommand         = "command"
	AttrCommands        = "commands"
	AttrCountPerRot     = "count_per_rot"
	AttrDutyCycle       = "duty_cycle"
	AttrDutyCycleSP     = "duty_cycle_sp"
	AttrEncoderPolarity = "encoder_polarity"
	AttrPolarity        = "polarity"
	AttrPosition        = "position"
	AttrPositionSP      = "position_sp"
	AttrHoldKp          = "hold_pid/Kp"
	AttrHoldKi          = "hold_pid/Ki"
	AttrHoldKd          = "hold_pid/Kd"
	AttrSpeed           = "speed"
	AttrSpeedSP         = "speed_sp"
	AttrSpeedKp         = "speed_pid/Kp"
	AttrSpeedKi         = "speed_pid/Ki"
	AttrSpeedKd         = "speed_pid/Kd"
	AttrSpeedRegulation = "speed_regulation"
	AttrRampUpSP        = "ramp_up_sp"
	AttrRampDownSP      = "ramp_down_sp"
	AttrState           = "state"
	AttrStopAction      = "stop_action"
	AttrStopActions     = "stop_actions"
	AttrTimeSP          = "time_sp"
)

// StatusNoDevice is what a port reports when nothing is bound to it.
const StatusNoDevice = "no-device"

type Command string

const (
	CommandRunForever  Command = "run-forever"
	CommandRunToAbsPos Command = "run-to-abs-pos"
	CommandRunToRelPos Command = "run-to-rel-pos"
	CommandRunTimed    Command = "run-timed"
	CommandRunDirect   Command = "run-direct"
	CommandStop        Command = "stop"
	CommandReset       Command = "reset"
)

// Commands lists every command token in the order the drivers report them.
func Commands() []Command {
	return []Command{
		CommandRunForever,
		CommandRunToAbsPos,
		CommandRunToRelPos,
		CommandRunTimed,
		CommandRunDirect,
		CommandStop,
		CommandReset,
	}
}

type StateFlag string

const (
	StateRunning    StateFlag = "running"
	StateRamping    StateFlag = "ramping"
	StateHolding    StateFlag = "holding"
	StateOverloaded StateFlag = "overloaded"
	StateStalled    StateFlag = "stalled"
)

// StateSet holds the flags currently reported in a motor's state attribute.
// An empty set means the motor is stopped.
type StateSet map[StateFlag]bool

func NewStateSet(tokens []string) StateSet {
	s := make(StateSet, len(tokens))
	for _, t := range tokens {
		s[StateFlag(t)] = true
	}
	return s
}

func (s StateSet) Has(flag StateFlag) bool {
	return s[flag]
}

func (s StateSet) Running() bool {
	return s[StateRunning]
}

// Flags returns the set sorted, for display.
func (s StateSet) Flags() []StateFlag {
	flags := make([]StateFlag, 0, len(s))
	for f := range s {
		flags = append(flags, f)
	}
	sort.Slice(flags, func(i, j int) bool { return flags[i] < flags[j] })
	return flags
}

type Polarity string

const (
	PolarityNormal   Polarity = "normal"
	PolarityInversed Polarity = "inversed"
)

type StopAction string

const (
	StopActionCoast StopAction = "coast"
	StopActionBrake StopAction = "brake"
	StopActionHold  StopAction = "hold"
)

var (
	polarities  = []Polarity{PolarityNormal, PolarityInversed}
	stopActions = []StopAction{StopActionCoast, StopActionBrake, StopActionHold}
)

func ParsePolarity(value string) (Polarity, error) {
	return parseEnum(AttrPolarity, value, polarities)
}

func ParseStopAction(value string) (StopAction, error) {
	return parseEnum(AttrStopAction, value, stopActions)
}

func parseEnum[T ~string](attr, value string, valid []T) (T, error) {
	for _, v := range valid {
		if string(v) == value {
			return v, nil
		}
	}
	var zero T
	return zero, deverr.AttributeFormatError{Attribute: attr, Value: value, Want: "one of " + joinTokens(valid)}
}

func parseOnOff(attr, value string) (bool, error) {
	switch value {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	return false, deverr.AttributeFormatError{Attribute: attr, Value: value, Want: "on or off"}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func joinTokens[T ~string](tokens []T) (s string) {
	for i, t := range tokens {
		if i > 0 {
			s += ", "
		}
		s += string(t)
	}
	return
}
