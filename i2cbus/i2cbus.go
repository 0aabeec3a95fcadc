// Package i2cbus is a gobot i2c.Connector for plain Linux boards, talking
// to /dev/i2c-N.
//
// Raw reads and writes on a connection are separate bus transactions, so a
// register chip such as the KT0915 sees the register address written and the
// bus released before its data is read:
//
//	Write([reg, hi, lo])   one write transaction
//	WriteByte(reg)         one write transaction selecting reg
//	Read(buf)              one read transaction of len(buf) bytes
//
// The *Data methods map to the SMBus byte, word and block transfers.
package i2cbus

import (
	"fmt"
	"sync"

	"github.com/go-daq/smbus"
	"github.com/hashicorp/go-multierror"
	"gobot.io/x/gobot"
	"gobot.io/x/gobot/drivers/i2c"
)

// smbusConn is the part of *smbus.Conn we use.
type smbusConn interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	ReadReg(addr, reg uint8) (uint8, error)
	WriteReg(addr, reg, v uint8) error
	ReadWord(addr, reg uint8) (uint16, error)
	WriteWord(addr, reg uint8, v uint16) error
	WriteBlockData(addr, reg uint8, buf []byte) error
	Close() error
}

func openSMBus(bus int, addr uint8) (smbusConn, error) {
	return smbus.Open(bus, addr)
}

// Adaptor hands out SMBus connections on one Linux i2c bus.
type Adaptor struct {
	name  string
	bus   int
	mutex *sync.Mutex
	open  func(bus int, addr uint8) (smbusConn, error)
	conns []smbusConn
}

// NewAdaptor returns an Adaptor for /dev/i2c-<bus>.
func NewAdaptor(bus int) *Adaptor {
	return &Adaptor{
		name:  gobot.DefaultName("SMBus"),
		bus:   bus,
		mutex: &sync.Mutex{},
		open:  openSMBus,
	}
}

// Name returns the adaptor name.
func (a *Adaptor) Name() string { return a.name }

// SetName sets the adaptor name.
func (a *Adaptor) SetName(name string) { a.name = name }

// Connect does nothing, buses are opened per connection.
func (a *Adaptor) Connect() error { return nil }

// Finalize closes every connection handed out.
func (a *Adaptor) Finalize() error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	var result *multierror.Error
	for _, conn := range a.conns {
		if err := conn.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	a.conns = nil
	return result.ErrorOrNil()
}

// GetDefaultBus returns the bus given to NewAdaptor.
func (a *Adaptor) GetDefaultBus() int { return a.bus }

// GetConnection opens the device at address on bus.
func (a *Adaptor) GetConnection(address int, bus int) (i2c.Connection, error) {
	if address < 0 || address > 0x7F {
		return nil, fmt.Errorf("i2cbus: invalid 7 bit address 0x%x", address)
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	conn, err := a.open(bus, uint8(address))
	if err != nil {
		return nil, fmt.Errorf("i2cbus: could not open bus %d address 0x%02x: %w", bus, address, err)
	}
	a.conns = append(a.conns, conn)
	return &connection{conn: conn, addr: uint8(address)}, nil
}

type connection struct {
	conn smbusConn
	addr uint8
}

func (c *connection) Read(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	return c.conn.Read(b)
}

func (c *connection) Write(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	return c.conn.Write(b)
}

func (c *connection) Close() error {
	return c.conn.Close()
}

func (c *connection) ReadByte() (byte, error) {
	buf := []byte{0}
	n, err := c.conn.Read(buf)
	if err != nil {
		return 0, err
	}
	if n != 1 {
		return 0, fmt.Errorf("i2cbus: read byte from 0x%02x: no data", c.addr)
	}
	return buf[0], nil
}

func (c *connection) ReadByteData(reg uint8) (uint8, error) {
	return c.conn.ReadReg(c.addr, reg)
}

func (c *connection) ReadWordData(reg uint8) (uint16, error) {
	return c.conn.ReadWord(c.addr, reg)
}

func (c *connection) WriteByte(val byte) error {
	_, err := c.conn.Write([]byte{val})
	return err
}

func (c *connection) WriteByteData(reg uint8, val uint8) error {
	return c.conn.WriteReg(c.addr, reg, val)
}

func (c *connection) WriteWordData(reg uint8, val uint16) error {
	return c.conn.WriteWord(c.addr, reg, val)
}

func (c *connection) WriteBlockData(reg uint8, b []byte) error {
	return c.conn.WriteBlockData(c.addr, reg, b)
}
