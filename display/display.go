// Package display drives the SunFounder LCD1602 (PCF8574 backpack) used as
// the receiver's status panel.
package display

import (
	"errors"
	"strings"
	"sync"
	"time"

	"kt0915/radio"

	"gobot.io/x/gobot"
	"gobot.io/x/gobot/drivers/i2c"
)

const (
	// Address is our default address
	Address = 0x27

	// Columns and Rows of the panel
	Columns = 16
	Rows    = 2
)

// Bits of the PCF8574 port wired to the LCD.
const (
	registerSelect = 0x01
	enable         = 0x04
	backlight      = 0x08
)

// Instructions of the HD44780 controller.
const (
	clearDisplay  = 0x01
	setDDRAMAddr  = 0x80
	pulseDuration = 2 * time.Millisecond
)

// 4 bit mode, 2 lines, display on and cursor off.
var initSequence = []byte{0x33, 0x32, 0x28, 0x0C}

var rowAddress = [Rows]byte{0x00, 0x40}

// ErrNotStarted is returned when the panel is used before Start.
var ErrNotStarted = errors.New("display: driver not started")

// LCD1602Driver shows the tuned station on a 16x2 character LCD.
//
//goland:noinspection GoUnnecessarilyExportedIdentifiers
type LCD1602Driver struct {
	name         string
	i2cConnector i2c.Connector
	i2c.Config

	i2cAddr int
	conn    i2c.Connection
	mutex   *sync.Mutex
	sleep   func(time.Duration)

	backlightEnabled bool
	shown            [Rows]string
}

// Name of our device
func (lcd *LCD1602Driver) Name() string {
	return lcd.name
}

// SetName set the name of our device
func (lcd *LCD1602Driver) SetName(name string) {
	lcd.name = name
}

// Start switches the controller to 4 bit mode and clears the screen.
func (lcd *LCD1602Driver) Start() error {
	lcd.mutex.Lock()
	defer lcd.mutex.Unlock()

	bus := lcd.GetBusOrDefault(lcd.i2cConnector.GetDefaultBus())
	address := lcd.GetAddressOrDefault(lcd.i2cAddr)

	var err error
	lcd.conn, err = lcd.i2cConnector.GetConnection(address, bus)
	if err != nil {
		return err
	}

	for _, cmd := range initSequence {
		if err = lcd.send(cmd, false); err != nil {
			return err
		}
		lcd.sleep(5 * time.Millisecond)
	}

	return lcd.clear()
}

// Halt turns the backlight off and blanks the screen.
func (lcd *LCD1602Driver) Halt() error {
	lcd.mutex.Lock()
	defer lcd.mutex.Unlock()

	lcd.backlightEnabled = false
	return lcd.clear()
}

// Connection retrieves the i2c connection to the device
func (lcd *LCD1602Driver) Connection() gobot.Connection {
	return lcd.i2cConnector.(gobot.Connection)
}

// SetBacklight turns the backlight on or off.
func (lcd *LCD1602Driver) SetBacklight(on bool) error {
	lcd.mutex.Lock()
	defer lcd.mutex.Unlock()

	lcd.backlightEnabled = on
	err := lcd.write(0)
	lcd.sleep(pulseDuration)
	return err
}

// Clear removes any message from the screen.
func (lcd *LCD1602Driver) Clear() error {
	lcd.mutex.Lock()
	defer lcd.mutex.Unlock()

	return lcd.clear()
}

func (lcd *LCD1602Driver) clear() error {
	if err := lcd.send(clearDisplay, false); err != nil {
		return err
	}
	lcd.sleep(pulseDuration)
	lcd.shown = [Rows]string{}
	return nil
}

// ShowLines renders one line per row, padded or cut to the panel width.
// Rows that did not change are not sent again.
func (lcd *LCD1602Driver) ShowLines(lines ...string) error {
	lcd.mutex.Lock()
	defer lcd.mutex.Unlock()

	for row := 0; row < Rows; row++ {
		text := ""
		if row < len(lines) {
			text = lines[row]
		}
		text = fit(text)
		if text == lcd.shown[row] {
			continue
		}

		if err := lcd.send(setDDRAMAddr|rowAddress[row], false); err != nil {
			return err
		}
		for i := 0; i < len(text); i++ {
			if err := lcd.send(text[i], true); err != nil {
				return err
			}
		}
		lcd.shown[row] = text
	}
	return nil
}

// ShowStation puts the frequency on the top row and a note below it.
func (lcd *LCD1602Driver) ShowStation(mode radio.Mode, frequency uint32, note string) error {
	return lcd.ShowLines(radio.FormatFrequency(mode, frequency), note)
}

// fit pads or truncates text to the panel width. Characters outside
// ASCII are shown as '?'.
func fit(text string) string {
	var b strings.Builder
	for _, ch := range text {
		if b.Len() == Columns {
			break
		}
		if ch > 0x7E || ch < 0x20 {
			ch = '?'
		}
		b.WriteRune(ch)
	}
	for b.Len() < Columns {
		b.WriteByte(' ')
	}
	return b.String()
}

// send an instruction or a character, high nibble first.
func (lcd *LCD1602Driver) send(value byte, character bool) error {
	flags := byte(0)
	if character {
		flags = registerSelect
	}

	for _, nibble := range []byte{value & 0xF0, (value & 0x0F) << 4} {
		if err := lcd.write(nibble | flags | enable); err != nil {
			return err
		}
		lcd.sleep(pulseDuration)
		if err := lcd.write(nibble | flags); err != nil {
			return err
		}
	}
	return nil
}

// write one byte to the port, keeping the backlight bit.
func (lcd *LCD1602Driver) write(data byte) error {
	if lcd.conn == nil {
		return ErrNotStarted
	}
	if lcd.backlightEnabled {
		data |= backlight
	}
	return lcd.conn.WriteByte(data)
}

// NewLCD1602Driver creates a new GoBot driver for the status panel.
func NewLCD1602Driver(connector i2c.Connector, options ...func(i2c.Config)) (*LCD1602Driver, error) {
	lcd := &LCD1602Driver{
		name:             gobot.DefaultName("LCD1602Driver"),
		i2cConnector:     connector,
		Config:           i2c.NewConfig(),
		i2cAddr:          Address,
		mutex:            &sync.Mutex{},
		sleep:            time.Sleep,
		backlightEnabled: true,
	}

	for _, option := range options {
		option(lcd)
	}

	return lcd, nil
}
