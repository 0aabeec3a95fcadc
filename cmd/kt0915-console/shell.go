package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"kt0915/radio"
)

var errQuit = errors.New("quit")

// receiver is the part of *radio.KT0915Driver the console drives.
type receiver interface {
	SetFM(minimum, maximum, frequency uint32, step uint16) error
	SetAM(minimum, maximum, frequency uint32, step uint16) error
	SetFrequency(frequency uint32) error
	FrequencyUp() error
	FrequencyDown() error
	SetStep(step uint16) error
	Frequency() uint32
	TunedFrequency() uint32
	Mode() radio.Mode
	DeviceID() (string, error)
	IsCrystalReady() (bool, error)
	SetReferenceClockType(crystal radio.Crystal, refClock bool) error
	SetTuneDialModeOn(minimum, maximum uint32) error
	SetTuneDialModeOff() error
	SetVolumeDialModeOn() error
	SetVolumeDialModeOff() error
	SetAntennaTuneCapacitor(index uint16) error
}

type command struct {
	usage string
	help  string
	run   func(sh *shell, args []string) error
}

var commands = map[string]command{
	"fm": {
		usage: "fm [MIN MAX DEFAULT STEP]",
		help:  "switch to FM, in kHz, 87500 108000 103900 100 when no band is given",
		run: func(sh *shell, args []string) error {
			b, err := bandArgs(radio.BandFM, args)
			if err != nil {
				return err
			}
			return sh.tuned(sh.rdio.SetFM(b.Minimum, b.Maximum, b.Default, b.Step))
		},
	},
	"am": {
		usage: "am [MIN MAX DEFAULT STEP]",
		help:  "switch to AM, in kHz, 520 1710 810 10 when no band is given",
		run: func(sh *shell, args []string) error {
			b, err := bandArgs(radio.BandMW, args)
			if err != nil {
				return err
			}
			return sh.tuned(sh.rdio.SetAM(b.Minimum, b.Maximum, b.Default, b.Step))
		},
	},
	"tune": {
		usage: "tune FREQ",
		help:  "tune to FREQ kHz inside the current band",
		run: func(sh *shell, args []string) error {
			v, err := uintArgs(args, 1, 32)
			if err != nil {
				return err
			}
			return sh.tuned(sh.rdio.SetFrequency(uint32(v[0])))
		},
	},
	"up": {
		usage: "up",
		help:  "one step up, wrapping to the bottom of the band",
		run: func(sh *shell, args []string) error {
			return sh.tuned(sh.rdio.FrequencyUp())
		},
	},
	"down": {
		usage: "down",
		help:  "one step down, wrapping to the top of the band",
		run: func(sh *shell, args []string) error {
			return sh.tuned(sh.rdio.FrequencyDown())
		},
	},
	"step": {
		usage: "step STEP",
		help:  "set the step used by up and down",
		run: func(sh *shell, args []string) error {
			v, err := uintArgs(args, 1, 16)
			if err != nil {
				return err
			}
			return sh.rdio.SetStep(uint16(v[0]))
		},
	},
	"freq": {
		usage: "freq",
		help:  "show the tuned station",
		run: func(sh *shell, args []string) error {
			return sh.tuned(nil)
		},
	},
	"id": {
		usage: "id",
		help:  "show the chip id",
		run: func(sh *shell, args []string) error {
			id, err := sh.rdio.DeviceID()
			if err != nil {
				return err
			}
			fmt.Fprintf(sh.out, "chip id %q\n", id)
			return nil
		},
	},
	"xtal": {
		usage: "xtal [TYPE [ref]]",
		help:  "show crystal status, or select crystal TYPE (0-9), ref for an external clock",
		run: func(sh *shell, args []string) error {
			if len(args) > 0 {
				v, err := strconv.ParseUint(args[0], 0, 8)
				if err != nil {
					return fmt.Errorf("invalid crystal %q", args[0])
				}
				ref := len(args) > 1 && args[1] == "ref"
				if err = sh.rdio.SetReferenceClockType(radio.Crystal(v), ref); err != nil {
					return err
				}
			}
			ok, err := sh.rdio.IsCrystalReady()
			if err != nil {
				return err
			}
			fmt.Fprintf(sh.out, "crystal ready: %v\n", ok)
			return nil
		},
	},
	"dial": {
		usage: "dial MIN MAX | dial off",
		help:  "let a potentiometer on GPIO1 tune between MIN and MAX kHz",
		run: func(sh *shell, args []string) error {
			if len(args) == 1 && args[0] == "off" {
				return sh.rdio.SetTuneDialModeOff()
			}
			v, err := uintArgs(args, 2, 32)
			if err != nil {
				return err
			}
			return sh.rdio.SetTuneDialModeOn(uint32(v[0]), uint32(v[1]))
		},
	},
	"voldial": {
		usage: "voldial on|off",
		help:  "let a potentiometer on GPIO2 set the volume",
		run: func(sh *shell, args []string) error {
			if len(args) != 1 {
				return errors.New("usage: voldial on|off")
			}
			switch args[0] {
			case "on":
				return sh.rdio.SetVolumeDialModeOn()
			case "off":
				return sh.rdio.SetVolumeDialModeOff()
			}
			return fmt.Errorf("invalid argument %q", args[0])
		},
	},
	"cap": {
		usage: "cap INDEX",
		help:  "set the AM antenna tuning capacitor",
		run: func(sh *shell, args []string) error {
			v, err := uintArgs(args, 1, 16)
			if err != nil {
				return err
			}
			return sh.rdio.SetAntennaTuneCapacitor(uint16(v[0]))
		},
	},
	"quit": {
		usage: "quit",
		help:  "leave the console",
		run: func(sh *shell, args []string) error {
			return errQuit
		},
	},
}

func init() {
	commands["help"] = command{
		usage: "help",
		help:  "show this list",
		run: func(sh *shell, args []string) error {
			for _, name := range commandNames() {
				c := commands[name]
				fmt.Fprintf(sh.out, "  %-28s %s\n", c.usage, c.help)
			}
			return nil
		},
	}
}

type shell struct {
	rdio receiver
	out  io.Writer
}

func (sh *shell) exec(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	cmd, ok := commands[strings.ToLower(fields[0])]
	if !ok {
		return fmt.Errorf("unknown command %q, try help", fields[0])
	}
	return cmd.run(sh, fields[1:])
}

// tuned prints the station unless err is set.
func (sh *shell) tuned(err error) error {
	if err != nil {
		return err
	}
	fmt.Fprintln(sh.out, radio.FormatFrequency(sh.rdio.Mode(), sh.rdio.TunedFrequency()))
	return nil
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func complete(line string) []string {
	if strings.ContainsRune(line, ' ') {
		return nil
	}

	var out []string
	for _, name := range commandNames() {
		if strings.HasPrefix(name, strings.ToLower(line)) {
			out = append(out, name)
		}
	}
	return out
}

func uintArgs(args []string, n, bits int) ([]uint64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("expected %d argument(s), got %d", n, len(args))
	}

	out := make([]uint64, n)
	for i, arg := range args {
		v, err := strconv.ParseUint(arg, 10, bits)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", arg)
		}
		out[i] = v
	}
	return out, nil
}

func bandArgs(def radio.Band, args []string) (radio.Band, error) {
	if len(args) == 0 {
		return def, nil
	}

	v, err := uintArgs(args, 4, 32)
	if err != nil {
		return def, err
	}
	if v[3] > 0xFFFF {
		return def, fmt.Errorf("invalid step %d", v[3])
	}
	return radio.Band{
		Mode:    def.Mode,
		Minimum: uint32(v[0]),
		Maximum: uint32(v[1]),
		Default: uint32(v[2]),
		Step:    uint16(v[3]),
	}, nil
}
