// Command kt0915-console tunes a KT0915 receiver from a terminal.
//
// Usage:
//
//	$> kt0915-console -bus 1 -addr 0x35 -xtal 0
//	kt0915> fm 87500 108000 103900 100
//	FM 103.90 MHz
//	kt0915> up
//	FM 104.00 MHz
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"kt0915/i2cbus"
	"kt0915/radio"

	"github.com/peterh/liner"
	"gobot.io/x/gobot/drivers/i2c"
)

func main() {
	log.SetPrefix("kt0915: ")
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	var (
		bus    = flag.Int("bus", 1, "i2c bus number (/dev/i2c-N)")
		addr   = flag.Int("addr", radio.Address, "7 bit address of the receiver")
		xtal   = flag.Uint("xtal", uint(radio.OSCILLATOR_32KHZ), "crystal type (0-9)")
		refclk = flag.Bool("refclk", false, "use an external reference clock instead of a crystal")
		debug  = flag.Bool("debug", false, "trace register transactions")
	)
	flag.Parse()

	if err := run(*bus, *addr, radio.Crystal(*xtal), *refclk, *debug); err != nil {
		log.Fatalf("%+v", err)
	}
}

func run(bus, addr int, xtal radio.Crystal, refclk, debug bool) error {
	adaptor := i2cbus.NewAdaptor(bus)
	defer adaptor.Finalize()

	rdio, err := radio.NewKT0915Driver(adaptor, radio.KT0915Config{
		ResetPin:       radio.NoResetPin,
		Crystal:        xtal,
		ReferenceClock: refclk,
		DebugMode:      debug,
		DebugLog:       log.Printf,
		Log:            log.Printf,
	}, i2c.WithAddress(addr))
	if err != nil {
		return err
	}

	if err = rdio.Start(); err != nil {
		return fmt.Errorf("could not start receiver: %w", err)
	}
	defer rdio.Halt()

	term := liner.NewLiner()
	defer term.Close()
	term.SetCtrlCAborts(true)
	term.SetCompleter(complete)

	history := filepath.Join(os.TempDir(), ".kt0915_history")
	if f, err := os.Open(history); err == nil {
		_, _ = term.ReadHistory(f)
		f.Close()
	}

	sh := &shell{rdio: rdio, out: os.Stdout}
	for {
		line, err := term.Prompt("kt0915> ")
		if err == liner.ErrPromptAborted || err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		term.AppendHistory(line)

		err = sh.exec(line)
		if err == errQuit {
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}

	if f, err := os.Create(history); err == nil {
		_, _ = term.WriteHistory(f)
		f.Close()
	}
	return nil
}
