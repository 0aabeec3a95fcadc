// Package radio implements the driver for the KTMicro KT0915, a
// monolithic digital FM/MW/SW/LW receiver radio-on-a-chip.
//
// The main implementation is under the KT0915Driver and it requires
// some additional configuration via KT0915Config structure.
//
// The chip is controlled through 16 bit registers addressed by a single
// byte over I2C. Every operation of the driver is a read-modify-write of
// one or more of those registers.
//
// To read about the specifications of the receiver, read the following document:
// KT0915; Monolithic Digital FM/MW/SW/LW Receiver Radio-on-a-Chip (TM), KTMicro.
package radio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/errwrap"
	"github.com/hashicorp/go-multierror"
	"gobot.io/x/gobot"
	"gobot.io/x/gobot/drivers/gpio"
	"gobot.io/x/gobot/drivers/i2c"
	"gobot.io/x/gobot/sysfs"
)

const (
	low  = 0x0
	high = 0x1
)

// Misc constants.
//
//goland:noinspection GoUnusedConst,GoUnnecessarilyExportedIdentifiers
const (
	// Address is the device default address.
	Address = 0x35

	// NoResetPin means the chip shares the reset line of the host
	// and the driver never pulses it.
	NoResetPin = "-1"

	// ChipID is what REG_CHIP_ID reads on a genuine part.
	ChipID = "KT"
)

// Errors returned by the driver.
var (
	ErrNotStarted         = errors.New("kt0915: driver not started")
	ErrNoBand             = errors.New("kt0915: no band selected, use SetFM or SetAM")
	ErrInvalidBand        = errors.New("kt0915: invalid band limits")
	ErrInvalidStep        = errors.New("kt0915: step must be greater than zero")
	ErrInvalidCrystal     = errors.New("kt0915: unknown crystal type")
	ErrInvalidCapacitor   = errors.New("kt0915: antenna capacitor index out of range")
	ErrFrequencyOutOfBand = errors.New("kt0915: frequency outside of the current band")
	ErrCrystalTimeout     = errors.New("kt0915: crystal not ready")
)

// Mode is the receiver mode selected by AM_FM.
type Mode uint8

// Receiver modes.
const (
	ModeFM Mode = 0
	ModeAM Mode = 1
)

func (m Mode) String() string {
	if m == ModeAM {
		return "AM"
	}
	return "FM"
}

// Crystal selects the reference oscillator, see REFCLK in REG_AMSYSCFG.
type Crystal uint8

// Supported crystals and reference clocks.
//
//goland:noinspection GoUnusedConst,GoUnnecessarilyExportedIdentifiers,GoSnakeCaseUsage
const (
	OSCILLATOR_32KHZ Crystal = iota
	OSCILLATOR_6_5MHZ
	OSCILLATOR_7_6MHZ
	OSCILLATOR_12MHZ
	OSCILLATOR_13MHZ
	OSCILLATOR_15_2MHZ
	OSCILLATOR_19_2MHZ
	OSCILLATOR_24MHZ
	OSCILLATOR_26MHZ
	OSCILLATOR_38KHZ
)

var crystalNames = [...]string{
	"32.768kHz", "6.5MHz", "7.6MHz", "12MHz", "13MHz",
	"15.2MHz", "19.2MHz", "24MHz", "26MHz", "38kHz",
}

func (c Crystal) String() string {
	if !c.valid() {
		return fmt.Sprintf("Crystal(%d)", uint8(c))
	}
	return crystalNames[c]
}

func (c Crystal) valid() bool {
	return int(c) < len(crystalNames)
}

// KT0915Driver holds the implementation to talk to the KT0915 receiver.
//
//goland:noinspection GoUnnecessarilyExportedIdentifiers
type KT0915Driver struct {
	name     string
	resetPin string

	i2cAddr      int
	conn         i2c.Connection
	i2cConnector i2c.Connector
	i2c.Config
	gobot.Commander

	mutex *sync.Mutex

	debugMode bool
	debugLog  func(format string, v ...interface{})
	log       func(format string, v ...interface{})

	delays         Delays
	sleep          func(time.Duration)
	crystal        Crystal
	referenceClock bool
	crystalTimeout time.Duration
	initialBand    *Band

	mode         Mode
	bandSet      bool
	frequency    uint32
	step         uint16
	minFrequency uint32
	maxFrequency uint32
	dialMode     bool
}

// Name of our device.
func (s *KT0915Driver) Name() string {
	return s.name
}

// SetName set the name of our device.
func (s *KT0915Driver) SetName(name string) {
	s.name = name
}

// Start connects to the receiver, resets it, configures the reference
// clock and, if one was configured, tunes the initial band.
func (s *KT0915Driver) Start() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.connect(); err != nil {
		return err
	}

	if err := s.setup(s.resetPin, s.crystal, s.referenceClock); err != nil {
		return err
	}

	if s.crystalTimeout > 0 {
		if err := s.waitCrystalReady(s.crystalTimeout); err != nil {
			return err
		}
	}

	if s.debugMode {
		id, err := s.deviceID()
		if err != nil {
			return err
		}
		s.debugLog("Chip id %q at 0x%02x\n", id, s.i2cAddr)
	}

	if s.initialBand == nil {
		return nil
	}
	if err := s.setBand(*s.initialBand); err != nil {
		return err
	}

	s.log("Receiver tuned to %s\n", FormatFrequency(s.mode, s.frequency))
	return nil
}

// Halt hands the dial pins back to the host.
func (s *KT0915Driver) Halt() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.conn == nil {
		return nil
	}

	var result *multierror.Error
	if err := s.setTuneDialModeOff(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := s.setVolumeDialMode(false); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

// Connection retrieves the i2c connection to the device.
func (s *KT0915Driver) Connection() gobot.Connection {
	return s.i2cConnector.(gobot.Connection)
}

func (s *KT0915Driver) connect() error {
	bus := s.GetBusOrDefault(s.i2cConnector.GetDefaultBus())
	address := s.GetAddressOrDefault(s.i2cAddr)

	conn, err := s.i2cConnector.GetConnection(address, bus)
	if err != nil {
		return err
	}
	s.conn = conn
	s.i2cAddr = address
	return nil
}

// SetI2CBusAddress changes the address the receiver answers on. A started
// driver reconnects right away.
func (s *KT0915Driver) SetI2CBusAddress(address int) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.WithAddress(address)
	s.i2cAddr = address
	if s.conn == nil {
		return nil
	}
	return s.connect()
}

// Setup records the reset pin, resets the chip and selects the
// reference clock. Nothing else is meaningful before it ran.
func (s *KT0915Driver) Setup(resetPin string, crystal Crystal, referenceClock bool) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.setup(resetPin, crystal, referenceClock)
}

func (s *KT0915Driver) setup(resetPin string, crystal Crystal, referenceClock bool) error {
	if !crystal.valid() {
		return ErrInvalidCrystal
	}

	s.resetPin = resetPin
	if err := s.reset(); err != nil {
		return err
	}
	return s.setReferenceClockType(crystal, referenceClock)
}

// Reset pulses the reset pin low. It does nothing when the host reset
// line drives the chip.
func (s *KT0915Driver) Reset() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.reset()
}

func (s *KT0915Driver) reset() (err error) {
	if s.resetPin == "" || s.resetPin == NoResetPin {
		return nil
	}

	dw, ok := s.i2cConnector.(gpio.DigitalWriter)
	if !ok {
		return fmt.Errorf("i2c connector does not have a digital writer capability")
	}

	if pp, ok := s.i2cConnector.(sysfs.DigitalPinnerProvider); ok {
		if _, err = pp.DigitalPin(s.resetPin, sysfs.OUT); err != nil {
			return err
		}
	}
	s.sleep(s.delays.ResetPulse)

	if err = dw.DigitalWrite(s.resetPin, low); err != nil {
		return err
	}
	s.sleep(s.delays.ResetPulse)

	if err = dw.DigitalWrite(s.resetPin, high); err != nil {
		return err
	}
	s.sleep(s.delays.ResetPulse)
	return nil
}

// DeviceID returns the two characters stored in REG_CHIP_ID, high byte first.
func (s *KT0915Driver) DeviceID() (string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.deviceID()
}

func (s *KT0915Driver) deviceID() (string, error) {
	raw, err := s.getRegister(REG_CHIP_ID)
	if err != nil {
		return "", err
	}
	return string([]byte{byte(raw >> 8), byte(raw & 0xFF)}), nil
}

// IsCrystalReady reports whether the reference oscillator is stable.
func (s *KT0915Driver) IsCrystalReady() (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.isCrystalReady()
}

func (s *KT0915Driver) isCrystalReady() (bool, error) {
	raw, err := s.getRegister(REG_STATUSA)
	if err != nil {
		return false, err
	}
	return decodeStatusA(raw).xtalOK, nil
}

// WaitCrystalReady polls the crystal status until it is stable or
// the timeout expires.
func (s *KT0915Driver) WaitCrystalReady(timeout time.Duration) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.waitCrystalReady(timeout)
}

func (s *KT0915Driver) waitCrystalReady(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		ready, err := s.isCrystalReady()
		if err != nil {
			return err
		}
		if ready {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrCrystalTimeout
		}
		s.sleep(s.delays.ReadSettle)
	}
}

// SetReferenceClockType selects the crystal or external reference
// clock. Only REFCLK and RCLK_EN are changed.
func (s *KT0915Driver) SetReferenceClockType(crystal Crystal, referenceClock bool) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !crystal.valid() {
		return ErrInvalidCrystal
	}
	return s.setReferenceClockType(crystal, referenceClock)
}

func (s *KT0915Driver) setReferenceClockType(crystal Crystal, referenceClock bool) error {
	raw, err := s.getRegister(REG_AMSYSCFG)
	if err != nil {
		return err
	}

	reg := decodeAMSysCfg(raw)
	reg.refClk = crystal
	reg.refClkEn = referenceClock
	if err = s.setRegister(REG_AMSYSCFG, reg.encode()); err != nil {
		return err
	}

	s.crystal = crystal
	s.referenceClock = referenceClock
	return nil
}

// SetAntennaTuneCapacitor stores the AM antenna calibration index (0 ~ 16383).
func (s *KT0915Driver) SetAntennaTuneCapacitor(capacitor uint16) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if capacitor > maxCapacitorIndex {
		return ErrInvalidCapacitor
	}
	return s.setRegister(REG_AMCALI, amCali{capIndex: capacitor}.encode())
}

// Send a register write to the receiver: address, then high byte, then low byte.
func (s *KT0915Driver) setRegister(reg uint8, value uint16) error {
	if s.conn == nil {
		return ErrNotStarted
	}
	if s.debugMode {
		s.debugLog("*** Write 0x%02x = 0x%04x\n", reg, value)
	}

	if _, err := s.conn.Write([]byte{reg, uint8(value >> 8), uint8(value & 0xFF)}); err != nil {
		return errwrap.Wrapf(fmt.Sprintf("kt0915: write register 0x%02x: {{err}}", reg), err)
	}
	s.sleep(s.delays.WriteSettle)
	return nil
}

// Read a register from the receiver. The chip answers low byte first.
func (s *KT0915Driver) getRegister(reg uint8) (uint16, error) {
	if s.conn == nil {
		return 0, ErrNotStarted
	}

	if err := s.conn.WriteByte(reg); err != nil {
		return 0, errwrap.Wrapf(fmt.Sprintf("kt0915: select register 0x%02x: {{err}}", reg), err)
	}
	s.sleep(s.delays.ReadSettle)

	values := make([]byte, 2)
	n, err := s.conn.Read(values)
	if err != nil {
		return 0, errwrap.Wrapf(fmt.Sprintf("kt0915: read register 0x%02x: {{err}}", reg), err)
	}
	if n != len(values) {
		return 0, fmt.Errorf("kt0915: read register 0x%02x: got %d of %d bytes", reg, n, len(values))
	}
	s.sleep(s.delays.ReadHold)

	value := uint16(values[1])<<8 | uint16(values[0])
	if s.debugMode {
		s.debugLog("*** Read 0x%02x = 0x%04x\n", reg, value)
	}
	return value, nil
}

// NewKT0915Driver creates a new GoBot driver for the KT0915 receiver.
func NewKT0915Driver(connector i2c.Connector, cfg KT0915Config, options ...func(i2c.Config)) (*KT0915Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res := &KT0915Driver{
		name:         gobot.DefaultName("KT0915Driver"),
		i2cConnector: connector,
		Config:       i2c.NewConfig(),
		Commander:    gobot.NewCommander(),
		i2cAddr:      Address,
		mutex:        &sync.Mutex{},

		resetPin:       cfg.ResetPin,
		crystal:        cfg.Crystal,
		referenceClock: cfg.ReferenceClock,
		crystalTimeout: cfg.CrystalTimeout,
		initialBand:    cfg.Band,
		delays:         cfg.Delays,
		sleep:          time.Sleep,
		debugMode:      cfg.DebugMode,
		log:            cfg.Log,
		debugLog:       cfg.DebugLog,
	}

	for _, option := range options {
		option(res)
	}

	res.addCommands()
	return res, nil
}
