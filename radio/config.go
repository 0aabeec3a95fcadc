package radio

import (
	"fmt"
	"time"
)

// Delays is the settling time the chip needs around bus transactions.
type Delays struct {
	// WriteSettle follows every register write.
	WriteSettle time.Duration

	// ReadSettle separates the register address from the data read.
	ReadSettle time.Duration

	// ReadHold follows every register read.
	ReadHold time.Duration

	// ResetPulse is the length of each phase of the reset sequence.
	ResetPulse time.Duration
}

// DefaultDelays are the timings the KT0915 is known to work with.
var DefaultDelays = Delays{
	WriteSettle: 3 * time.Millisecond,
	ReadSettle:  3 * time.Millisecond,
	ReadHold:    2 * time.Millisecond,
	ResetPulse:  10 * time.Millisecond,
}

// KT0915Config holds the additional configuration needed for KT0915Driver.
type KT0915Config struct {
	ResetPin       string
	Crystal        Crystal
	ReferenceClock bool
	CrystalTimeout time.Duration
	Band           *Band
	Delays         Delays
	DebugMode      bool
	DebugLog       func(format string, v ...interface{})
	Log            func(format string, v ...interface{})
}

// Validate ensures that our KT0915Driver configuration is valid.
//noinspection GoUnnecessarilyExportedIdentifiers
func (c *KT0915Config) Validate() error {
	if c.Log == nil {
		panic("logging function cannot be nil. Use something like log.Printf or an empty function instead")
	}
	if c.DebugMode && c.DebugLog == nil {
		panic("cannot use debugging mode without configuring a DebugLog function, e.g. log.Printf")
	}

	if c.ResetPin == "" {
		c.ResetPin = NoResetPin
	}

	if !c.Crystal.valid() {
		return fmt.Errorf("%w: %d", ErrInvalidCrystal, c.Crystal)
	}

	if c.Band != nil {
		if err := c.Band.Validate(); err != nil {
			return err
		}
	}

	if c.Delays.WriteSettle <= 0 {
		c.Delays.WriteSettle = DefaultDelays.WriteSettle
	}
	if c.Delays.ReadSettle <= 0 {
		c.Delays.ReadSettle = DefaultDelays.ReadSettle
	}
	if c.Delays.ReadHold <= 0 {
		c.Delays.ReadHold = DefaultDelays.ReadHold
	}
	if c.Delays.ResetPulse <= 0 {
		c.Delays.ResetPulse = DefaultDelays.ResetPulse
	}

	if c.CrystalTimeout < 0 {
		c.Log("Crystal timeout %s < 0. Not waiting for the crystal.\n", c.CrystalTimeout)
		c.CrystalTimeout = 0
	}

	return nil
}
