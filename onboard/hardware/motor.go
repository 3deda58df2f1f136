package hardware

// MotorState is a point in time snapshot of the attributes every motor class
// has in common.
type MotorState struct {
	Class      string      `yaml:"class"`
	Address    string      `yaml:"address"`
	Driver     string      `yaml:"driver"`
	Commands   []Command   `yaml:"commands,flow"`
	State      []StateFlag `yaml:"state,flow"`
	DutyCycle  int         `yaml:"duty_cycle"`
	Polarity   Polarity    `yaml:"polarity"`
	StopAction StopAction  `yaml:"stop_action"`
}

// MotorInterface is implemented by both Motor and DCMotor.
type MotorInterface interface {
	Device() *Device
	SendCommand(cmd Command) error
	RunForever() error
	RunTimed() error
	RunDirect() error
	Stop() error
	Commands() ([]Command, error)
	State() (StateSet, error)
	DutyCycle() (int, error)
	DutyCycleSP() (int, error)
	SetDutyCycleSP(sp int) error
	Polarity() (Polarity, error)
	SetPolarity(p Polarity) error
	RampUpSP() (int, error)
	SetRampUpSP(ms int) error
	RampDownSP() (int, error)
	SetRampDownSP(ms int) error
	TimeSP() (int, error)
	SetTimeSP(ms int) error
	StopAction() (StopAction, error)
	SetStopAction(a StopAction) error
	StopActions() ([]StopAction, error)
	RunTimedFor(ms int) error
}

// motorBase holds the attributes and commands shared by tacho and DC motors.
type motorBase struct {
	dev *Device
}

func (m motorBase) Device() *Device {
	return m.dev
}

func (m motorBase) Address() (string, error) {
	return m.dev.Attribute(AttrAddress)
}

func (m motorBase) DriverName() (string, error) {
	return m.dev.Attribute(AttrDriverName)
}

// SendCommand writes cmd to the command attribute. Whether the command is
// legal for this motor is up to the driver.
func (m motorBase) SendCommand(cmd Command) error {
	return m.dev.SetAttribute(AttrCommand, string(cmd))
}

// RunForever runs until another command is sent.
func (m motorBase) RunForever() error {
	return m.SendCommand(CommandRunForever)
}

// RunTimed runs for time_sp milliseconds, then stops using stop_action.
func (m motorBase) RunTimed() error {
	return m.SendCommand(CommandRunTimed)
}

// RunDirect runs at duty_cycle_sp. Unlike the other run commands, changes to
// duty_cycle_sp take effect immediately.
func (m motorBase) RunDirect() error {
	return m.SendCommand(CommandRunDirect)
}

// Stop ends any run command using stop_action.
func (m motorBase) Stop() error {
	return m.SendCommand(CommandStop)
}

// Commands lists the commands the driver supports, in driver order. The
// command attribute itself is write only.
func (m motorBase) Commands() (cmds []Command, err error) {
	tokens, err := m.dev.ListAttribute(AttrCommands)
	if err != nil {
		return
	}

	cmds = make([]Command, len(tokens))
	for i, t := range tokens {
		cmds[i] = Command(t)
	}
	return
}

func (m motorBase) State() (StateSet, error) {
	tokens, err := m.dev.ListAttribute(AttrState)
	if err != nil {
		return nil, err
	}
	return NewStateSet(tokens), nil
}

// DutyCycle is the duty cycle currently applied, -100 to 100.
func (m motorBase) DutyCycle() (int, error) {
	return m.dev.IntAttribute(AttrDutyCycle)
}

func (m motorBase) DutyCycleSP() (int, error) {
	return m.dev.IntAttribute(AttrDutyCycleSP)
}

// SetDutyCycleSP sets the duty cycle setpoint. Out of range values are
// rejected by the driver.
func (m motorBase) SetDutyCycleSP(sp int) error {
	return m.dev.SetIntAttribute(AttrDutyCycleSP, sp)
}

func (m motorBase) Polarity() (Polarity, error) {
	return readEnum(m.dev, AttrPolarity, ParsePolarity)
}

func (m motorBase) SetPolarity(p Polarity) error {
	return m.dev.SetAttribute(AttrPolarity, string(p))
}

func (m motorBase) RampUpSP() (int, error) {
	return m.dev.IntAttribute(AttrRampUpSP)
}

func (m motorBase) SetRampUpSP(ms int) error {
	return m.dev.SetIntAttribute(AttrRampUpSP, ms)
}

func (m motorBase) RampDownSP() (int, error) {
	return m.dev.IntAttribute(AttrRampDownSP)
}

func (m motorBase) SetRampDownSP(ms int) error {
	return m.dev.SetIntAttribute(AttrRampDownSP, ms)
}

func (m motorBase) TimeSP() (int, error) {
	return m.dev.IntAttribute(AttrTimeSP)
}

func (m motorBase) SetTimeSP(ms int) error {
	return m.dev.SetIntAttribute(AttrTimeSP, ms)
}

func (m motorBase) StopAction() (StopAction, error) {
	return readEnum(m.dev, AttrStopAction, ParseStopAction)
}

func (m motorBase) SetStopAction(a StopAction) error {
	return m.dev.SetAttribute(AttrStopAction, string(a))
}

func (m motorBase) StopActions() (actions []StopAction, err error) {
	tokens, err := m.dev.ListAttribute(AttrStopActions)
	if err != nil {
		return
	}

	actions = make([]StopAction, len(tokens))
	for i, t := range tokens {
		actions[i] = StopAction(t)
	}
	return
}

// RunTimedFor sets time_sp and issues run-timed while holding the device
// lock, so another Exclusive caller can't swap the setpoint in between.
func (m motorBase) RunTimedFor(ms int) error {
	return m.dev.Exclusive(func() error {
		if err := m.SetTimeSP(ms); err != nil {
			return err
		}
		return m.RunTimed()
	})
}

// ReadState collects a MotorState from m.
func ReadState(m MotorInterface) (s MotorState, err error) {
	dev := m.Device()
	s.Class = dev.Class()

	if s.Address, err = dev.Attribute(AttrAddress); err != nil {
		return
	}
	if s.Driver, err = dev.Attribute(AttrDriverName); err != nil {
		return
	}
	if s.Commands, err = m.Commands(); err != nil {
		return
	}

	state, err := m.State()
	if err != nil {
		return
	}
	s.State = state.Flags()

	if s.DutyCycle, err = m.DutyCycle(); err != nil {
		return
	}
	if s.Polarity, err = m.Polarity(); err != nil {
		return
	}
	s.StopAction, err = m.StopAction()
	return
}
