package hardware

// DCMotor is a plain DC motor without feedback, e.g. RCX or Power Functions
// motors behind a converter. It supports run-forever, run-timed, run-direct
// and stop.
type DCMotor struct {
	motorBase
}

// NewDCMotor binds to the dc-motor on port, which must be an output.
func NewDCMotor(port *Port) (m *DCMotor, err error) {
	dev, err := NewDevice(port, DCMotorClass, MotorSubsystem)
	if err != nil {
		return
	}
	return &DCMotor{motorBase{dev}}, nil
}
