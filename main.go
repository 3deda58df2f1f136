package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	. "github.com/CodedInternet/goev3/onboard"
	"github.com/CodedInternet/goev3/onboard/hardware"
	"github.com/CodedInternet/goev3/onboard/logging"
	"github.com/CodedInternet/goev3/onboard/platform"
	"github.com/CodedInternet/goev3/onboard/sim"
	"github.com/CodedInternet/goev3/onboard/sysfs"
	"github.com/abiosoft/ishell"
	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v2"
)

type EnvConfig struct {
	SYSFS_ROOT string `env:"SYSFS_ROOT" envDefault:"/sys/class"`
	SIMULATED  bool   `env:"SIMULATED" envDefault:"0"`
	DEBUG      bool   `env:"DEBUG" envDefault:"0"`
	CONFIG     string `env:"CONFIG" envDefault:"./brick.yaml"`
	LOG_FORMAT string `env:"LOG_FORMAT" envDefault:"text"`
}

func loadConfig(filename string) (config BrickConfig, err error) {
	filename, err = filepath.Abs(filename)
	if err != nil {
		return
	}

	yamlFile, err := ioutil.ReadFile(filename)
	if err != nil {
		return config, fmt.Errorf("unable to read yaml file: %v", err)
	}

	if err = yaml.Unmarshal(yamlFile, &config); err != nil {
		return config, fmt.Errorf("unable to unmarshal yaml: %v", err)
	}

	return config, config.Validate()
}

func main() {
	cfg := new(EnvConfig)
	if err := env.Parse(cfg); err != nil {
		panic(err)
	}

	simulated := flag.Bool("sim", cfg.SIMULATED, "Run against a simulated brick")
	configFile := flag.String("config", cfg.CONFIG, "Path to the brick yaml config")
	flag.Parse()

	log := logging.New(os.Stderr, cfg.LOG_FORMAT, cfg.DEBUG)

	config, err := loadConfig(*configFile)
	if err != nil {
		log.Error("unable to load config", "file", *configFile, "error", err)
		os.Exit(1)
	}

	var (
		brick *Brick
		tree  *sim.Tree
	)
	if *simulated {
		log.Info("creating simulator")
		brick, tree, err = NewBrickSimulator(config, log)
	} else {
		var release platform.Release
		if release, err = platform.Detect(); err != nil {
			log.Error("unsupported platform", "error", err)
			os.Exit(1)
		}
		log.Info("ev3dev detected", "kernel", release.Kernel, "driver", release.Driver.String())
		brick, err = NewBrick(sysfs.OpenStore(cfg.SYSFS_ROOT), config, log)
	}
	if err != nil {
		log.Error("unable to initialize brick", "error", err)
		os.Exit(1)
	}

	shell := newShell(brick, tree, log)
	shell.Start()

	if err := brick.StopAll(); err != nil {
		log.Warn("motors left running", "error", err)
	}
}

// newShell builds the development shell. tree is nil unless simulated.
func newShell(brick *Brick, tree *sim.Tree, log *slog.Logger) *ishell.Shell {
	motorNames := func([]string) []string {
		return brick.MotorNames()
	}

	portNames := func([]string) []string {
		names := make([]string, hardware.NumPorts)
		for id := range names {
			names[id] = hardware.PortName(id)
		}
		return names
	}

	shell := ishell.New()
	shell.Println("EV3 development shell")
	shell.ShowPrompt(true)

	shell.AddCmd(&ishell.Cmd{
		Name: "ports",
		Help: "list every port with its mode and status",
		Func: func(c *ishell.Context) {
			state, err := brick.Status()
			if err != nil {
				c.Err(err)
				return
			}
			for _, p := range state.Ports {
				c.Printf("%-5s %-16s %-12s %s\n", p.Name, p.Address, p.Mode, p.Status)
			}
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name:      "port",
		Completer: portNames,
		Help:      "port <port>",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("usage: port <port>"))
				return
			}
			port, err := brick.Port(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}

			modes, err := port.Modes()
			if err != nil {
				c.Err(err)
				return
			}
			mode, _ := port.Mode()
			status, _ := port.Status()
			driver, _ := port.DriverName()
			c.Printf("%s driver=%s mode=%s status=%s\n", port, driver, mode, status)
			c.Printf("modes: %s\n", strings.Join(modes, " "))
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name:      "mode",
		Completer: portNames,
		Help:      "mode <port> <mode>",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 2 {
				c.Err(fmt.Errorf("usage: mode <port> <mode>"))
				return
			}
			port, err := brick.Port(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			if err := port.SetMode(c.Args[1]); err != nil {
				c.Err(err)
			}
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name:      "setdevice",
		Completer: portNames,
		Help:      "setdevice <port> <driver>",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 2 {
				c.Err(fmt.Errorf("usage: setdevice <port> <driver>"))
				return
			}
			port, err := brick.Port(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			log.Info("set device", "port", port.Name(), "driver", c.Args[1])
			if err := port.SetDevice(c.Args[1]); err != nil {
				c.Err(err)
			}
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "devices",
		Help: "devices <class> <subsystem>",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 2 {
				c.Err(fmt.Errorf("usage: devices <class> <subsystem>"))
				return
			}
			store := brick.Store()
			names, err := store.Instances(c.Args[0], c.Args[1])
			if err != nil {
				c.Err(err)
				return
			}
			for _, name := range names {
				address, err := store.Read(c.Args[0], name, sysfs.AddressAttribute)
				if err != nil {
					address = "?"
				}
				c.Printf("%-10s %s\n", name, address)
			}
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "motors",
		Help: "list the configured motors",
		Func: func(c *ishell.Context) {
			for _, b := range brick.Bindings() {
				connected := "connected"
				if !b.Connected {
					connected = "disconnected"
				}
				c.Printf("%-10s %-5s %s %s\n", b.Name, b.Port, b.Device, connected)
			}
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name:      "run",
		Completer: motorNames,
		Help:      "run <motor> <command>",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 2 {
				c.Err(fmt.Errorf("usage: run <motor> <command>"))
				return
			}
			if err := brick.Run(c.Args[0], hardware.Command(c.Args[1])); err != nil {
				c.Err(err)
			}
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name:      "sp",
		Completer: motorNames,
		Help:      "sp <motor> <attribute> <value>",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 3 {
				c.Err(fmt.Errorf("usage: sp <motor> <attribute> <value>"))
				return
			}
			value, err := strconv.Atoi(c.Args[2])
			if err != nil {
				c.Err(err)
				return
			}
			if err := brick.SetSetpoint(c.Args[0], c.Args[1], value); err != nil {
				c.Err(err)
			}
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name:      "state",
		Completer: motorNames,
		Help:      "state <motor>",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("usage: state <motor>"))
				return
			}
			m, err := brick.Motor(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			state, err := m.State()
			if err != nil {
				c.Err(err)
				return
			}
			c.Printf("%v running=%v\n", state.Flags(), state.Running())

			if tm, err := brick.Tacho(c.Args[0]); err == nil {
				if deg, err := tm.PositionDegrees(); err == nil {
					c.Printf("position %.1f deg\n", deg)
				}
			}
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "status",
		Help: "dump every port and motor as yaml",
		Func: func(c *ishell.Context) {
			state, err := brick.Status()
			if err != nil {
				c.Err(err)
				return
			}
			out, err := yaml.Marshal(state)
			if err != nil {
				c.Err(err)
				return
			}
			c.Print(string(out))
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "stopall",
		Help: "stop every motor",
		Func: func(c *ishell.Context) {
			if err := brick.StopAll(); err != nil {
				c.Err(err)
			}
		},
	})

	if tree != nil {
		shell.AddCmd(&ishell.Cmd{
			Name:      "unplug",
			Completer: portNames,
			Help:      "unplug <port> (simulator only)",
			Func: func(c *ishell.Context) {
				if len(c.Args) != 1 {
					c.Err(fmt.Errorf("usage: unplug <port>"))
					return
				}
				id, err := hardware.ParsePort(c.Args[0])
				if err != nil {
					c.Err(err)
					return
				}
				if err := tree.Unplug(sim.PortAddress(id)); err != nil {
					c.Err(err)
				}
			},
		})
	}

	return shell
}
