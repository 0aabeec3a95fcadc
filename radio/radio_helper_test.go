package radio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gobot.io/x/gobot/drivers/i2c"
	"gobot.io/x/gobot/sysfs"
)

type registerWrite struct {
	reg   uint8
	value uint16
}

type pinEvent struct {
	pin   string
	op    string
	value byte
}

// I2CTestAdaptor is a KT0915 register file sitting on a fake i2c bus.
// It records every byte written, every register read and every
// reset pin transition.
type I2CTestAdaptor struct {
	name          string
	mtx           sync.Mutex
	registers     map[uint8]uint16
	pointer       uint8
	written       []byte
	writes        []registerWrite
	reads         []uint8
	pins          []pinEvent
	address       int
	bus           int
	i2cConnectErr bool
	busErr        error
	writeErr      map[uint8]error
}

func NewI2cTestAdaptor() *I2CTestAdaptor {
	return &I2CTestAdaptor{
		registers: map[uint8]uint16{
			REG_CHIP_ID: 0x4B54, // "KT"
			REG_STATUSA: 0x8000,
		},
	}
}

// clear forgets the transcript, keeping the register contents.
func (t *I2CTestAdaptor) clear() {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.written = nil
	t.writes = nil
	t.reads = nil
	t.pins = nil
}

func (t *I2CTestAdaptor) register(reg uint8) uint16 {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return t.registers[reg]
}

func (t *I2CTestAdaptor) setRegister(reg uint8, value uint16) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.registers[reg] = value
}

func (t *I2CTestAdaptor) DigitalWrite(pin string, level byte) (err error) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.pins = append(t.pins, pinEvent{pin: pin, op: "write", value: level})
	return nil
}

func (t *I2CTestAdaptor) DigitalPin(pin string, dir string) (sysfs.DigitalPinner, error) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.pins = append(t.pins, pinEvent{pin: pin, op: dir})
	return nil, nil
}

func (t *I2CTestAdaptor) Read(b []byte) (count int, err error) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	if t.busErr != nil {
		return 0, t.busErr
	}
	t.reads = append(t.reads, t.pointer)
	value := t.registers[t.pointer]
	if len(b) > 0 {
		b[0] = byte(value & 0xFF)
		count++
	}
	if len(b) > 1 {
		b[1] = byte(value >> 8)
		count++
	}
	return count, nil
}

func (t *I2CTestAdaptor) Write(b []byte) (count int, err error) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.written = append(t.written, b...)
	if t.busErr != nil {
		return 0, t.busErr
	}
	switch len(b) {
	case 1:
		t.pointer = b[0]
	case 3:
		if err = t.writeErr[b[0]]; err != nil {
			return 0, err
		}
		value := uint16(b[1])<<8 | uint16(b[2])
		t.registers[b[0]] = value
		t.writes = append(t.writes, registerWrite{reg: b[0], value: value})
	default:
		return 0, fmt.Errorf("unexpected %d byte write", len(b))
	}
	return len(b), nil
}

func (t *I2CTestAdaptor) Close() error {
	return nil
}

func (t *I2CTestAdaptor) ReadByte() (val byte, err error) {
	return 0, errors.New("not supported by the KT0915")
}

func (t *I2CTestAdaptor) ReadByteData(reg uint8) (val uint8, err error) {
	return 0, errors.New("not supported by the KT0915")
}

func (t *I2CTestAdaptor) ReadWordData(reg uint8) (val uint16, err error) {
	return 0, errors.New("not supported by the KT0915")
}

func (t *I2CTestAdaptor) WriteByte(val byte) (err error) {
	_, err = t.Write([]byte{val})
	return
}

func (t *I2CTestAdaptor) WriteByteData(reg uint8, val uint8) (err error) {
	return errors.New("not supported by the KT0915")
}

func (t *I2CTestAdaptor) WriteWordData(reg uint8, val uint16) (err error) {
	return errors.New("not supported by the KT0915")
}

func (t *I2CTestAdaptor) WriteBlockData(reg uint8, b []byte) (err error) {
	return errors.New("not supported by the KT0915")
}

func (t *I2CTestAdaptor) GetConnection(address int, bus int) (connection i2c.Connection, err error) {
	if t.i2cConnectErr {
		return nil, errors.New("invalid i2c connection")
	}
	t.address = address
	t.bus = bus
	return t, nil
}

func (t *I2CTestAdaptor) GetDefaultBus() int {
	return 1
}

func (t *I2CTestAdaptor) Name() string          { return t.name }
func (t *I2CTestAdaptor) SetName(n string)      { t.name = n }
func (t *I2CTestAdaptor) Connect() (err error)  { return }
func (t *I2CTestAdaptor) Finalize() (err error) { return }

// initTestKT0915Driver returns a driver that does not sleep and has
// not been started.
func initTestKT0915Driver(cfg KT0915Config) (*KT0915Driver, *I2CTestAdaptor) {
	adaptor := NewI2cTestAdaptor()
	if cfg.Log == nil {
		cfg.Log = func(string, ...interface{}) {}
	}
	d, err := NewKT0915Driver(adaptor, cfg)
	if err != nil {
		panic(err)
	}
	d.sleep = func(time.Duration) {}
	return d, adaptor
}

// initStartedKT0915Driver returns a started driver with an empty transcript.
func initStartedKT0915Driver() (*KT0915Driver, *I2CTestAdaptor) {
	d, adaptor := initTestKT0915Driver(KT0915Config{})
	if err := d.Start(); err != nil {
		panic(err)
	}
	adaptor.clear()
	return d, adaptor
}
