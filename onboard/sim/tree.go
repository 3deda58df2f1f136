// Package sim fakes the ev3dev driver side of /sys/class in memory.
//
// The tree behaves like the kernel where it matters to callers: read only
// attributes refuse writes with EACCES, out of range or unknown values are
// rejected with EINVAL, and writing a command updates the motor state.
// Nothing moves; run commands complete only when a stop or reset arrives.
package sim

import (
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

const (
	portClass  = "lego-port"
	tachoClass = "tacho-motor"
	dcClass    = "dc-motor"
	noDevice   = "no-device"
)

var readOnly = map[string]bool{
	"address":       true,
	"driver_name":   true,
	"commands":      true,
	"count_per_rot": true,
	"duty_cycle":    true,
	"speed":         true,
	"state":         true,
	"stop_actions":  true,
	"modes":         true,
	"status":        true,
}

var outputModes = "auto tacho-motor dc-motor led raw"
var inputModes = "auto ev3-analog ev3-uart nxt-analog nxt-color nxt-i2c other-i2c raw"

// drivers the set_device attribute knows how to load
var driverClasses = map[string]string{
	"lego-ev3-l-motor": tachoClass,
	"lego-ev3-m-motor": tachoClass,
	"lego-nxt-motor":   tachoClass,
	"rcx-motor":        dcClass,
}

type Tree struct {
	mem  afero.Fs
	fs   afero.Fs
	root string
	lock sync.Mutex
}

// New returns an empty tree rooted at root.
func New(root string) *Tree {
	t := &Tree{mem: afero.NewMemMapFs(), root: root}
	t.fs = &driverFs{Fs: t.mem, tree: t}
	return t
}

// NewEV3 returns a tree with the eight EV3 ports and nothing plugged in.
func NewEV3(root string) (t *Tree, err error) {
	t = New(root)
	for id := 0; id < 8; id++ {
		if err = t.AddPort(id); err != nil {
			return
		}
	}
	return
}

// Fs is the filesystem to hand to sysfs.NewStore.
func (t *Tree) Fs() afero.Fs {
	return t.fs
}

func (t *Tree) Root() string {
	return t.root
}

// PortAddress is the address ev3dev gives port id.
func PortAddress(id int) string {
	if id < 4 {
		return fmt.Sprintf("ev3-ports:in%d", id+1)
	}
	return fmt.Sprintf("ev3-ports:out%c", 'A'+id-4)
}

func (t *Tree) AddPort(id int) error {
	t.lock.Lock()
	defer t.lock.Unlock()

	driver, modes := "legoev3-input-port", inputModes
	if id >= 4 {
		driver, modes = "legoev3-output-port", outputModes
	}

	return t.writeAll(portClass, fmt.Sprintf("port%d", id), map[string]string{
		"address":     PortAddress(id),
		"driver_name": driver,
		"modes":       modes,
		"mode":        "auto",
		"set_device":  "",
		"status":      noDevice,
	})
}

// AddMotor plugs a motor driven by driver into the port with address and
// returns its instance name. The port's status follows.
func (t *Tree) AddMotor(address, driver string) (instance string, err error) {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.addMotor(address, driver)
}

func (t *Tree) addMotor(address, driver string) (instance string, err error) {
	class, ok := driverClasses[driver]
	if !ok {
		return "", fmt.Errorf("unknown motor driver %s", driver)
	}

	instance, err = t.freeInstance(class, "motor")
	if err != nil {
		return
	}

	attrs := map[string]string{
		"address":       address,
		"driver_name":   driver,
		"command":       "",
		"duty_cycle":    "0",
		"duty_cycle_sp": "0",
		"polarity":      "normal",
		"ramp_up_sp":    "0",
		"ramp_down_sp":  "0",
		"state":         "",
		"stop_action":   "coast",
		"time_sp":       "0",
	}
	if class == tachoClass {
		attrs["commands"] = "run-forever run-to-abs-pos run-to-rel-pos run-timed run-direct stop reset"
		attrs["stop_actions"] = "coast brake hold"
		attrs["count_per_rot"] = "360"
		attrs["encoder_polarity"] = "normal"
		attrs["position"] = "0"
		attrs["position_sp"] = "0"
		attrs["speed"] = "0"
		attrs["speed_sp"] = "0"
		attrs["speed_regulation"] = "off"
		attrs["hold_pid/Kp"] = "0"
		attrs["hold_pid/Ki"] = "0"
		attrs["hold_pid/Kd"] = "0"
		attrs["speed_pid/Kp"] = "0"
		attrs["speed_pid/Ki"] = "0"
		attrs["speed_pid/Kd"] = "0"
	} else {
		attrs["commands"] = "run-forever run-timed run-direct stop"
		attrs["stop_actions"] = "coast brake"
	}

	if err = t.writeAll(class, instance, attrs); err != nil {
		return
	}

	return instance, t.setPortStatus(address, class)
}

// Unplug removes every device at address and resets the port status.
func (t *Tree) Unplug(address string) error {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.unplug(address)
}

func (t *Tree) unplug(address string) error {
	for _, class := range []string{tachoClass, dcClass} {
		dirs, _ := afero.ReadDir(t.mem, path.Join(t.root, class))
		for _, d := range dirs {
			if t.read(class, d.Name(), "address") == address {
				if err := t.mem.RemoveAll(path.Join(t.root, class, d.Name())); err != nil {
					return err
				}
			}
		}
	}

	return t.setPortStatus(address, noDevice)
}

// Set writes an attribute directly, bypassing driver checks. Tests use it to
// put the tree in states the driver would produce on its own.
func (t *Tree) Set(class, instance, attr, value string) error {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.writeAll(class, instance, map[string]string{attr: value})
}

// Get reads an attribute directly, or "" if it doesn't exist.
func (t *Tree) Get(class, instance, attr string) string {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.read(class, instance, attr)
}

func (t *Tree) freeInstance(class, prefix string) (string, error) {
	for i := 0; ; i++ {
		name := fmt.Sprintf("%s%d", prefix, i)
		ok, err := afero.DirExists(t.mem, path.Join(t.root, class, name))
		if err != nil {
			return "", err
		}
		if !ok {
			return name, nil
		}
	}
}

func (t *Tree) setPortStatus(address, status string) error {
	dirs, _ := afero.ReadDir(t.mem, path.Join(t.root, portClass))
	for _, d := range dirs {
		if t.read(portClass, d.Name(), "address") == address {
			return t.writeAll(portClass, d.Name(), map[string]string{"status": status})
		}
	}
	return nil
}

func (t *Tree) writeAll(class, instance string, attrs map[string]string) error {
	for attr, value := range attrs {
		p := path.Join(t.root, class, instance, attr)
		if err := t.mem.MkdirAll(path.Dir(p), 0755); err != nil {
			return err
		}
		if err := afero.WriteFile(t.mem, p, []byte(value+"\n"), 0644); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tree) read(class, instance, attr string) string {
	raw, err := afero.ReadFile(t.mem, path.Join(t.root, class, instance, attr))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}

// apply runs the driver's reaction to value having been written to the
// attribute at p. It returns os.ErrInvalid for values the driver rejects.
func (t *Tree) apply(p, value string) error {
	t.lock.Lock()
	defer t.lock.Unlock()

	rel := strings.TrimPrefix(p, t.root+"/")
	parts := strings.SplitN(rel, "/", 3)
	if len(parts) != 3 {
		return nil
	}
	class, instance, attr := parts[0], parts[1], parts[2]
	value = strings.TrimSpace(value)

	switch {
	case class == portClass:
		return t.applyPort(instance, attr, value)
	case class == tachoClass || class == dcClass:
		return t.applyMotor(class, instance, attr, value)
	}
	return nil
}

func (t *Tree) applyPort(instance, attr, value string) error {
	switch attr {
	case "mode":
		if !contains(strings.Fields(t.read(portClass, instance, "modes")), value) {
			return os.ErrInvalid
		}
	case "set_device":
		if _, ok := driverClasses[value]; !ok {
			return os.ErrInvalid
		}
		// the new driver replaces whatever was bound before
		address := t.read(portClass, instance, "address")
		if err := t.unplug(address); err != nil {
			return err
		}
		_, err := t.addMotor(address, value)
		return err
	}
	return nil
}

func (t *Tree) applyMotor(class, instance, attr, value string) error {
	set := func(a, v string) error {
		return t.writeAll(class, instance, map[string]string{a: v})
	}

	switch attr {
	case "duty_cycle_sp":
		dc, err := strconv.Atoi(value)
		if err != nil || dc < -100 || dc > 100 {
			return os.ErrInvalid
		}
	case "polarity", "encoder_polarity":
		if value != "normal" && value != "inversed" {
			return os.ErrInvalid
		}
	case "stop_action":
		if !contains(strings.Fields(t.read(class, instance, "stop_actions")), value) {
			return os.ErrInvalid
		}
	case "speed_regulation":
		if value != "on" && value != "off" {
			return os.ErrInvalid
		}
	case "command":
		if !contains(strings.Fields(t.read(class, instance, "commands")), value) {
			return os.ErrInvalid
		}
		return t.runCommand(class, instance, value, set)
	}
	return nil
}

func (t *Tree) runCommand(class, instance, cmd string, set func(a, v string) error) error {
	switch cmd {
	case "run-forever", "run-direct", "run-timed":
		if err := set("duty_cycle", t.read(class, instance, "duty_cycle_sp")); err != nil {
			return err
		}
		return set("state", "running")

	case "run-to-abs-pos", "run-to-rel-pos":
		target, _ := strconv.Atoi(t.read(class, instance, "position_sp"))
		if cmd == "run-to-rel-pos" {
			pos, _ := strconv.Atoi(t.read(class, instance, "position"))
			target += pos
		}
		if err := set("position", strconv.Itoa(target)); err != nil {
			return err
		}
		return set("state", "running")

	case "stop":
		state := ""
		if t.read(class, instance, "stop_action") == "hold" {
			state = "holding"
		}
		if err := set("duty_cycle", "0"); err != nil {
			return err
		}
		return set("state", state)

	case "reset":
		for _, a := range []string{"duty_cycle", "duty_cycle_sp", "position", "position_sp", "speed_sp", "time_sp", "ramp_up_sp", "ramp_down_sp"} {
			if err := set(a, "0"); err != nil {
				return err
			}
		}
		if err := set("polarity", "normal"); err != nil {
			return err
		}
		if err := set("stop_action", "coast"); err != nil {
			return err
		}
		return set("state", "")
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
