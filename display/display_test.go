package display

import (
	"errors"
	"testing"
	"time"

	"kt0915/radio"

	"gobot.io/x/gobot"
	"gobot.io/x/gobot/drivers/i2c"
	"gobot.io/x/gobot/gobottest"
)

var _ gobot.Driver = (*LCD1602Driver)(nil)

// portTestAdaptor records the bytes written to the PCF8574 port.
type portTestAdaptor struct {
	name    string
	written []byte
	address int
	err     error
}

func (t *portTestAdaptor) Write(b []byte) (int, error) {
	t.written = append(t.written, b...)
	return len(b), t.err
}

func (t *portTestAdaptor) Read(b []byte) (int, error)         { return 0, errors.New("write only") }
func (t *portTestAdaptor) Close() error                       { return nil }
func (t *portTestAdaptor) ReadByte() (byte, error)            { return 0, errors.New("write only") }
func (t *portTestAdaptor) ReadByteData(uint8) (uint8, error)  { return 0, errors.New("write only") }
func (t *portTestAdaptor) ReadWordData(uint8) (uint16, error) { return 0, errors.New("write only") }

func (t *portTestAdaptor) WriteByte(val byte) error {
	if t.err != nil {
		return t.err
	}
	t.written = append(t.written, val)
	return nil
}

func (t *portTestAdaptor) WriteByteData(uint8, uint8) error   { return errors.New("not used") }
func (t *portTestAdaptor) WriteWordData(uint8, uint16) error  { return errors.New("not used") }
func (t *portTestAdaptor) WriteBlockData(uint8, []byte) error { return errors.New("not used") }

func (t *portTestAdaptor) GetConnection(address int, bus int) (i2c.Connection, error) {
	t.address = address
	return t, nil
}
func (t *portTestAdaptor) GetDefaultBus() int    { return 1 }
func (t *portTestAdaptor) Name() string          { return t.name }
func (t *portTestAdaptor) SetName(n string)      { t.name = n }
func (t *portTestAdaptor) Connect() (err error)  { return }
func (t *portTestAdaptor) Finalize() (err error) { return }

func initTestLCD1602Driver() (*LCD1602Driver, *portTestAdaptor) {
	adaptor := &portTestAdaptor{}
	lcd, _ := NewLCD1602Driver(adaptor)
	lcd.sleep = func(time.Duration) {}
	if err := lcd.Start(); err != nil {
		panic(err)
	}
	adaptor.written = nil
	return lcd, adaptor
}

// nibbles is what the port sees for one byte sent with the backlight on.
func nibbles(value byte, character bool) []byte {
	flags := byte(backlight)
	if character {
		flags |= registerSelect
	}
	hi, lo := value&0xF0, (value&0x0F)<<4
	return []byte{hi | flags | enable, hi | flags, lo | flags | enable, lo | flags}
}

func TestLCD1602DriverStart(t *testing.T) {
	adaptor := &portTestAdaptor{}
	lcd, _ := NewLCD1602Driver(adaptor)
	lcd.sleep = func(time.Duration) {}

	gobottest.Assert(t, lcd.Start(), nil)
	gobottest.Assert(t, adaptor.address, Address)

	var want []byte
	for _, cmd := range append(initSequence, clearDisplay) {
		want = append(want, nibbles(cmd, false)...)
	}
	gobottest.Assert(t, adaptor.written, want)
}

func TestLCD1602DriverNotStarted(t *testing.T) {
	lcd, _ := NewLCD1602Driver(&portTestAdaptor{})
	gobottest.Assert(t, lcd.ShowLines("x"), ErrNotStarted)
}

func TestLCD1602DriverShowLines(t *testing.T) {
	lcd, adaptor := initTestLCD1602Driver()

	gobottest.Assert(t, lcd.ShowLines("FM", "Hi"), nil)
	gobottest.Assert(t, len(adaptor.written), 2*(1+Columns)*4)
	gobottest.Assert(t, adaptor.written[:4], nibbles(setDDRAMAddr, false))
	gobottest.Assert(t, adaptor.written[4:8], nibbles('F', true))
	gobottest.Assert(t, adaptor.written[8:12], nibbles('M', true))
	gobottest.Assert(t, adaptor.written[12:16], nibbles(' ', true))
	gobottest.Assert(t, adaptor.written[68:72], nibbles(setDDRAMAddr|0x40, false))

	// unchanged rows are skipped
	adaptor.written = nil
	gobottest.Assert(t, lcd.ShowLines("FM", "Ho"), nil)
	gobottest.Assert(t, len(adaptor.written), (1+Columns)*4)
	gobottest.Assert(t, adaptor.written[:4], nibbles(setDDRAMAddr|0x40, false))
}

func TestLCD1602DriverShowStation(t *testing.T) {
	lcd, _ := initTestLCD1602Driver()
	gobottest.Assert(t, lcd.ShowStation(radio.ModeFM, 103900, "dial"), nil)
	gobottest.Assert(t, lcd.shown, [Rows]string{"FM 103.90 MHz   ", "dial            "})
}

func TestLCD1602DriverBacklight(t *testing.T) {
	lcd, adaptor := initTestLCD1602Driver()
	gobottest.Assert(t, lcd.SetBacklight(false), nil)
	gobottest.Assert(t, adaptor.written, []byte{0x00})

	adaptor.written = nil
	gobottest.Assert(t, lcd.SetBacklight(true), nil)
	gobottest.Assert(t, adaptor.written, []byte{backlight})
}

func TestLCD1602DriverHalt(t *testing.T) {
	lcd, adaptor := initTestLCD1602Driver()
	gobottest.Assert(t, lcd.ShowLines("x"), nil)
	adaptor.written = nil

	gobottest.Assert(t, lcd.Halt(), nil)
	gobottest.Assert(t, adaptor.written, []byte{0x00 | enable, 0x00, 0x10 | enable, 0x10})
	gobottest.Assert(t, lcd.shown, [Rows]string{})
}

func TestFit(t *testing.T) {
	gobottest.Assert(t, fit(""), "                ")
	gobottest.Assert(t, fit("a very long line of text"), "a very long line")
	gobottest.Assert(t, fit("tuned\t"), "tuned?          ")
	gobottest.Assert(t, fit("kHz µ"), "kHz ?           ")
}
