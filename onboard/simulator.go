package onboard

import (
	"log/slog"

	"github.com/CodedInternet/goev3/onboard/hardware"
	"github.com/CodedInternet/goev3/onboard/sim"
	"github.com/CodedInternet/goev3/onboard/sysfs"
)

// default drivers plugged in for each class when the config names none
var simulatedDrivers = map[string]string{
	hardware.TachoMotorClass: "lego-ev3-l-motor",
	hardware.DCMotorClass:    "rcx-motor",
}

// NewSimulatedTree builds an in-memory EV3 with every configured motor
// plugged in. Motors that name a driver are left for NewBrick to bind
// through set_device, the same as on real hardware.
func NewSimulatedTree(config BrickConfig) (tree *sim.Tree, err error) {
	tree, err = sim.NewEV3(sysfs.DefaultRoot)
	if err != nil {
		return
	}

	for _, name := range sortedKeys(config.Motors) {
		mc := config.Motors[name]
		if mc.Driver != "" {
			continue
		}
		if _, err = tree.AddMotor(sim.PortAddress(int(mc.Port)), simulatedDrivers[mc.class()]); err != nil {
			return
		}
	}

	return
}

// NewBrickSimulator returns a Brick running against a simulated tree.
func NewBrickSimulator(config BrickConfig, log *slog.Logger) (b *Brick, tree *sim.Tree, err error) {
	if err = config.Validate(); err != nil {
		return
	}

	tree, err = NewSimulatedTree(config)
	if err != nil {
		return
	}

	b, err = NewBrick(sysfs.NewStore(tree.Fs(), tree.Root()), config, log)
	return
}
