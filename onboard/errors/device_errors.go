package errors

import "fmt"

// InvalidPortError is returned when a port id is out of range, or when the
// device plugged into a port is not what the caller asked for.
type InvalidPortError struct {
	Port    string // port id or address, whichever is known
	Address string
	Reason  string
}

func (err InvalidPortError) Error() string {
	if len(err.Port) == 0 {
		err.Port = "UNKNOWN"
	}
	if len(err.Address) == 0 {
		return fmt.Sprintf("invalid port %s: %s", err.Port, err.Reason)
	}

	return fmt.Sprintf("invalid port %s (%s): %s", err.Port, err.Address, err.Reason)
}

// DeviceNotPresentError means no instance of the class enumerated with the
// requested address. This is often transient while the driver loads.
type DeviceNotPresentError struct {
	Class     string
	Subsystem string
	Address   string
}

func (err DeviceNotPresentError) Error() string {
	return fmt.Sprintf("no %s device (%s*) with address %s", err.Class, err.Subsystem, err.Address)
}

// AttributeIOError wraps a failed read or write of a single attribute file.
type AttributeIOError struct {
	Op        string // "read" or "write"
	Class     string
	Instance  string
	Attribute string
	Err       error
}

func (err AttributeIOError) Error() string {
	return fmt.Sprintf("%s %s/%s/%s: %v", err.Op, err.Class, err.Instance, err.Attribute, err.Err)
}

func (err AttributeIOError) Unwrap() error {
	return err.Err
}

// AttributeFormatError is returned when attribute content can't be coerced
// into the requested type.
type AttributeFormatError struct {
	Attribute string
	Value     string
	Want      string
	Err       error
}

func (err AttributeFormatError) Error() string {
	return fmt.Sprintf("attribute %s: cannot use %q as %s", err.Attribute, err.Value, err.Want)
}

func (err AttributeFormatError) Unwrap() error {
	return err.Err
}

// DisconnectedError replaces an attribute error when the device behind it has
// gone away (unplugged, or re-enumerated under another instance).
type DisconnectedError struct {
	Class    string
	Instance string
	Address  string
	Err      error
}

func (err DisconnectedError) Error() string {
	return fmt.Sprintf("%s %s on %s is no longer connected", err.Class, err.Instance, err.Address)
}

func (err DisconnectedError) Unwrap() error {
	return err.Err
}
