package radio

import "fmt"

// Band describes the limits, the default frequency and the step of a
// receiver band. Frequencies are in kHz.
type Band struct {
	Mode    Mode
	Minimum uint32
	Maximum uint32
	Default uint32
	Step    uint16
}

// Some common bands.
var (
	BandFM = Band{Mode: ModeFM, Minimum: 87500, Maximum: 108000, Default: 103900, Step: 100}
	BandMW = Band{Mode: ModeAM, Minimum: 520, Maximum: 1710, Default: 810, Step: 10}
	BandLW = Band{Mode: ModeAM, Minimum: 153, Maximum: 279, Default: 198, Step: 9}
)

// Validate ensures that the band can be tuned.
func (b Band) Validate() error {
	if b.Step == 0 {
		return ErrInvalidStep
	}
	if b.Maximum < b.Minimum {
		return ErrInvalidBand
	}
	if b.Default < b.Minimum || b.Default > b.Maximum {
		return fmt.Errorf("%w: default %d not in %d ... %d", ErrInvalidBand, b.Default, b.Minimum, b.Maximum)
	}
	return nil
}

// FormatFrequency renders a frequency the way a radio dial shows it.
func FormatFrequency(mode Mode, frequency uint32) string {
	if mode == ModeAM {
		return fmt.Sprintf("AM %d kHz", frequency)
	}
	return fmt.Sprintf("FM %.2f MHz", float64(frequency)/1000)
}

// SetFM sets the receiver to FM mode with the given band limits,
// default frequency and step.
func (s *KT0915Driver) SetFM(minimum, maximum, defaultFrequency uint32, step uint16) error {
	return s.SetBand(Band{Mode: ModeFM, Minimum: minimum, Maximum: maximum, Default: defaultFrequency, Step: step})
}

// SetAM sets the receiver to AM mode with the given band limits,
// default frequency and step.
func (s *KT0915Driver) SetAM(minimum, maximum, defaultFrequency uint32, step uint16) error {
	return s.SetBand(Band{Mode: ModeAM, Minimum: minimum, Maximum: maximum, Default: defaultFrequency, Step: step})
}

// SetBand switches mode and band, then tunes the band default.
func (s *KT0915Driver) SetBand(band Band) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.setBand(band)
}

func (s *KT0915Driver) setBand(band Band) error {
	if err := band.Validate(); err != nil {
		return err
	}

	s.step = band.Step
	s.frequency = band.Default
	s.minFrequency = band.Minimum
	s.maxFrequency = band.Maximum
	s.mode = band.Mode
	s.bandSet = true

	raw, err := s.getRegister(REG_AMSYSCFG)
	if err != nil {
		return err
	}
	reg := decodeAMSysCfg(raw)
	reg.mode = band.Mode
	reg.userBand = false
	if err = s.setRegister(REG_AMSYSCFG, reg.encode()); err != nil {
		return err
	}
	s.dialMode = false

	if s.debugMode {
		s.debugLog("%s band %d ... %d step %d\n", band.Mode, band.Minimum, band.Maximum, band.Step)
	}
	return s.setFrequency(band.Default)
}

// SetFrequency tunes the receiver. A band must be selected first
// (ErrNoBand) and frequency must lie inside it (ErrFrequencyOutOfBand);
// nothing is written to the chip otherwise.
//
// FM frequencies are rounded down to the 50 kHz channel grid by the chip,
// but Frequency keeps reporting the requested value; use TunedFrequency
// for the grid value.
func (s *KT0915Driver) SetFrequency(frequency uint32) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.setFrequency(frequency)
}

func (s *KT0915Driver) setFrequency(frequency uint32) error {
	if !s.bandSet {
		return ErrNoBand
	}
	if frequency < s.minFrequency || frequency > s.maxFrequency {
		return fmt.Errorf("%w: %d not in %d ... %d", ErrFrequencyOutOfBand, frequency, s.minFrequency, s.maxFrequency)
	}

	var err error
	if s.mode == ModeAM {
		err = s.setRegister(REG_AMCHAN, amChan{tune: true, channel: uint16(frequency)}.encode())
	} else {
		err = s.setRegister(REG_TUNE, fmTune{tune: true, channel: uint16(frequency / fmChannelSpacing)}.encode())
	}
	if err != nil {
		return err
	}

	s.frequency = frequency
	return nil
}

// FrequencyUp moves one step up, wrapping to the band minimum past the maximum.
func (s *KT0915Driver) FrequencyUp() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	next := s.frequency + uint32(s.step)
	if next > s.maxFrequency {
		next = s.minFrequency
	}
	return s.setFrequency(next)
}

// FrequencyDown moves one step down, wrapping to the band maximum below the minimum.
func (s *KT0915Driver) FrequencyDown() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	next := s.maxFrequency
	if s.frequency >= s.minFrequency+uint32(s.step) {
		next = s.frequency - uint32(s.step)
	}
	return s.setFrequency(next)
}

// SetStep changes the increment used by FrequencyUp and FrequencyDown.
func (s *KT0915Driver) SetStep(step uint16) error {
	if step == 0 {
		return ErrInvalidStep
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.step = step
	return nil
}

// Step returns the current frequency step.
func (s *KT0915Driver) Step() uint16 {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.step
}

// Frequency returns the last frequency requested through the driver.
func (s *KT0915Driver) Frequency() uint32 {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.frequency
}

// TunedFrequency returns the frequency the chip is actually tuned to.
func (s *KT0915Driver) TunedFrequency() uint32 {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.mode == ModeAM {
		return s.frequency
	}
	return s.frequency / fmChannelSpacing * fmChannelSpacing
}

// Mode returns the current receiver mode.
func (s *KT0915Driver) Mode() Mode {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.mode
}

// Band returns the current band with the current frequency as default.
func (s *KT0915Driver) Band() Band {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return Band{
		Mode:    s.mode,
		Minimum: s.minFrequency,
		Maximum: s.maxFrequency,
		Default: s.frequency,
		Step:    s.step,
	}
}

// DialMode reports whether the tune dial drives the receiver.
func (s *KT0915Driver) DialMode() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.dialMode
}

// userBandFor computes the user band registers for a tune dial covering
// minimum ... maximum.
func userBandFor(mode Mode, minimum, maximum uint32, step uint16) userBand {
	if mode == ModeAM {
		return userBand{
			startChannel: uint16(minimum),
			channels:     uint16((maximum - minimum) / uint32(step)),
			guard:        amUserGuard,
		}
	}
	return userBand{
		startChannel: uint16(minimum / fmChannelSpacing),
		channels:     uint16(((maximum - minimum) / fmChannelSpacing) / uint32(step)),
		guard:        fmUserGuard,
	}
}

// SetTuneDialModeOn lets a mechanical tuning wheel (a 100K variable
// resistor on CH, pin 1) drive the receiver across minimum ... maximum.
func (s *KT0915Driver) SetTuneDialModeOn(minimum, maximum uint32) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if maximum < minimum {
		return ErrInvalidBand
	}
	if s.step == 0 {
		return ErrInvalidStep
	}

	if err := s.setUserBand(true); err != nil {
		return err
	}
	if err := s.setGPIO(func(reg *gpioCfg) { reg.gpio1 = gpioDialMode }); err != nil {
		return err
	}

	start, guard, channels := userBandFor(s.mode, minimum, maximum, s.step).encode()
	if err := s.setRegister(REG_USERSTARTCH, start); err != nil {
		return err
	}
	if err := s.setRegister(REG_USERGUARD, guard); err != nil {
		return err
	}
	if err := s.setRegister(REG_USERCHANNUM, channels); err != nil {
		return err
	}

	s.dialMode = true
	return nil
}

// SetTuneDialModeOff gives the tuning back to the host.
func (s *KT0915Driver) SetTuneDialModeOff() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.setTuneDialModeOff()
}

func (s *KT0915Driver) setTuneDialModeOff() error {
	if err := s.setUserBand(false); err != nil {
		return err
	}
	s.dialMode = false

	return s.setGPIO(func(reg *gpioCfg) { reg.gpio1 = gpioHighZ })
}

// SetVolumeDialModeOn lets a variable resistor on VOL (pin 16) set the volume.
func (s *KT0915Driver) SetVolumeDialModeOn() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.setVolumeDialMode(true)
}

// SetVolumeDialModeOff gives the volume control back to the host.
func (s *KT0915Driver) SetVolumeDialModeOff() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.setVolumeDialMode(false)
}

func (s *KT0915Driver) setVolumeDialMode(on bool) error {
	return s.setGPIO(func(reg *gpioCfg) {
		reg.gpio2 = gpioHighZ
		if on {
			reg.gpio2 = gpioDialMode
		}
	})
}

func (s *KT0915Driver) setUserBand(on bool) error {
	raw, err := s.getRegister(REG_AMSYSCFG)
	if err != nil {
		return err
	}
	reg := decodeAMSysCfg(raw)
	reg.userBand = on
	return s.setRegister(REG_AMSYSCFG, reg.encode())
}

func (s *KT0915Driver) setGPIO(update func(reg *gpioCfg)) error {
	raw, err := s.getRegister(REG_GPIOCFG)
	if err != nil {
		return err
	}
	reg := decodeGPIOCfg(raw)
	update(&reg)
	return s.setRegister(REG_GPIOCFG, reg.encode())
}
