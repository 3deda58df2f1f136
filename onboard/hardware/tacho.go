package hardware

import (
	"fmt"

	deverr "github.com/CodedInternet/goev3/onboard/errors"
	"github.com/go-gl/mathgl/mgl64"
)

// Motor is a tacho motor: a motor with a rotary encoder, such as the EV3
// large and medium motors.
type Motor struct {
	motorBase
}

// NewMotor binds to the tacho-motor on port, which must be an output.
func NewMotor(port *Port) (m *Motor, err error) {
	dev, err := NewDevice(port, TachoMotorClass, MotorSubsystem)
	if err != nil {
		return
	}
	return &Motor{motorBase{dev}}, nil
}

// RunToAbsPos runs to position_sp and stops using stop_action.
func (m *Motor) RunToAbsPos() error {
	return m.SendCommand(CommandRunToAbsPos)
}

// RunToRelPos runs to position + position_sp and stops using stop_action.
func (m *Motor) RunToRelPos() error {
	return m.SendCommand(CommandRunToRelPos)
}

// Reset puts every attribute back to its default. This also stops the motor.
func (m *Motor) Reset() error {
	return m.SendCommand(CommandReset)
}

// RunToAbsPosAt sets position_sp and issues run-to-abs-pos as one Exclusive step.
func (m *Motor) RunToAbsPosAt(pos int) error {
	return m.dev.Exclusive(func() error {
		if err := m.SetPositionSP(pos); err != nil {
			return err
		}
		return m.RunToAbsPos()
	})
}

// CountPerRot is the number of tacho counts in one rotation. For linear
// actuators it is counts per centimetre.
func (m *Motor) CountPerRot() (int, error) {
	return m.dev.IntAttribute(AttrCountPerRot)
}

func (m *Motor) Position() (int, error) {
	return m.dev.IntAttribute(AttrPosition)
}

// SetPosition redefines the current position, it does not move the motor.
func (m *Motor) SetPosition(pos int) error {
	return m.dev.SetIntAttribute(AttrPosition, pos)
}

func (m *Motor) PositionSP() (int, error) {
	return m.dev.IntAttribute(AttrPositionSP)
}

func (m *Motor) SetPositionSP(sp int) error {
	return m.dev.SetIntAttribute(AttrPositionSP, sp)
}

// Speed is the current speed in tacho counts per second.
func (m *Motor) Speed() (int, error) {
	return m.dev.IntAttribute(AttrSpeed)
}

func (m *Motor) SpeedSP() (int, error) {
	return m.dev.IntAttribute(AttrSpeedSP)
}

func (m *Motor) SetSpeedSP(sp int) error {
	return m.dev.SetIntAttribute(AttrSpeedSP, sp)
}

func (m *Motor) EncoderPolarity() (Polarity, error) {
	return readEnum(m.dev, AttrEncoderPolarity, func(v string) (Polarity, error) {
		return parseEnum(AttrEncoderPolarity, v, polarities)
	})
}

func (m *Motor) SetEncoderPolarity(p Polarity) error {
	return m.dev.SetAttribute(AttrEncoderPolarity, string(p))
}

// SpeedRegulation reports whether the driver regulates speed_sp. Not every
// driver version exposes it.
func (m *Motor) SpeedRegulation() (enabled bool, err error) {
	str, err := m.dev.Attribute(AttrSpeedRegulation)
	if err != nil {
		return
	}
	return parseOnOff(AttrSpeedRegulation, str)
}

func (m *Motor) SetSpeedRegulation(enabled bool) error {
	return m.dev.SetAttribute(AttrSpeedRegulation, onOff(enabled))
}

// PID gains. Hold gains are used by the run-to-*-pos commands, speed gains
// whenever speed_sp is in effect.

type PID struct {
	Kp, Ki, Kd int
}

func (m *Motor) HoldPID() (PID, error) {
	return m.readPID(AttrHoldKp, AttrHoldKi, AttrHoldKd)
}

func (m *Motor) SetHoldPID(pid PID) error {
	return m.writePID(pid, AttrHoldKp, AttrHoldKi, AttrHoldKd)
}

func (m *Motor) SpeedPID() (PID, error) {
	return m.readPID(AttrSpeedKp, AttrSpeedKi, AttrSpeedKd)
}

func (m *Motor) SetSpeedPID(pid PID) error {
	return m.writePID(pid, AttrSpeedKp, AttrSpeedKi, AttrSpeedKd)
}

func (m *Motor) readPID(kp, ki, kd string) (pid PID, err error) {
	if pid.Kp, err = m.dev.IntAttribute(kp); err != nil {
		return
	}
	if pid.Ki, err = m.dev.IntAttribute(ki); err != nil {
		return
	}
	pid.Kd, err = m.dev.IntAttribute(kd)
	return
}

func (m *Motor) writePID(pid PID, kp, ki, kd string) error {
	if err := m.dev.SetIntAttribute(kp, pid.Kp); err != nil {
		return err
	}
	if err := m.dev.SetIntAttribute(ki, pid.Ki); err != nil {
		return err
	}
	return m.dev.SetIntAttribute(kd, pid.Kd)
}

// PositionDegrees converts the tacho position to degrees of output shaft
// rotation using count_per_rot.
func (m *Motor) PositionDegrees() (deg float64, err error) {
	pos, err := m.Position()
	if err != nil {
		return
	}
	cpr, err := m.countPerRot()
	if err != nil {
		return
	}

	return float64(pos) * 360 / float64(cpr), nil
}

func (m *Motor) PositionRadians() (float64, error) {
	deg, err := m.PositionDegrees()
	if err != nil {
		return 0, err
	}
	return mgl64.DegToRad(deg), nil
}

// DegreesToCounts converts an angle into tacho counts, rounded to the
// nearest count, for use with position_sp.
func (m *Motor) DegreesToCounts(deg float64) (counts int, err error) {
	cpr, err := m.countPerRot()
	if err != nil {
		return
	}

	return int(mgl64.Round(deg*float64(cpr)/360, 0)), nil
}

func (m *Motor) countPerRot() (cpr int, err error) {
	cpr, err = m.CountPerRot()
	if err == nil && cpr <= 0 {
		err = deverr.AttributeFormatError{Attribute: AttrCountPerRot, Value: fmt.Sprint(cpr), Want: "positive count"}
	}
	return
}
