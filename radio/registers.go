package radio

// Register addresses of the KT0915. The documented range is 0x01 ~ 0x3C,
// only the ones the driver touches are listed.
//
//goland:noinspection GoUnusedConst,GoUnnecessarilyExportedIdentifiers,GoSnakeCaseUsage
const (
	// REG_CHIP_ID holds two ASCII characters identifying the part.
	REG_CHIP_ID = 0x01

	// REG_TUNE holds the FM channel and the FM tune trigger.
	REG_TUNE = 0x03

	// REG_STATUSA reports the crystal status.
	REG_STATUSA = 0x12

	// REG_AMSYSCFG selects AM/FM, user band and the reference clock.
	REG_AMSYSCFG = 0x16

	// REG_AMCHAN holds the AM channel and the AM tune trigger.
	REG_AMCHAN = 0x17

	// REG_AMCALI holds the AM antenna capacitor index.
	REG_AMCALI = 0x18

	// REG_GPIOCFG selects the GPIO1 / GPIO2 pin functions.
	REG_GPIOCFG = 0x1D

	// REG_USERSTARTCH is the first channel of the user band.
	REG_USERSTARTCH = 0x2F

	// REG_USERGUARD is the guard value around the user band edges.
	REG_USERGUARD = 0x30

	// REG_USERCHANNUM is the number of channels in the user band.
	REG_USERCHANNUM = 0x31
)

// Values for the GPIO function fields of REG_GPIOCFG.
const (
	gpioHighZ    = 0
	gpioDialMode = 2
)

// User band guard values. These are chip calibration constants.
const (
	amUserGuard = 0x0011
	fmUserGuard = 0x001D
)

// fmChannelSpacing is the FM channel grid in kHz.
const fmChannelSpacing = 50

// maxCapacitorIndex is the widest value CAP_INDEX can hold.
const maxCapacitorIndex = 1<<14 - 1

// field is a bit range inside a 16 bit register.
type field struct {
	shift uint
	width uint
}

func (f field) mask() uint16 {
	return uint16(1<<f.width-1) << f.shift
}

func (f field) get(raw uint16) uint16 {
	return (raw & f.mask()) >> f.shift
}

// set replaces the field bits of raw, truncating v to the field width.
func (f field) set(raw uint16, v uint16) uint16 {
	return raw&^f.mask() | (v<<f.shift)&f.mask()
}

func (f field) flag(raw uint16) bool {
	return f.get(raw) != 0
}

func (f field) setFlag(raw uint16, on bool) uint16 {
	if on {
		return f.set(raw, 1)
	}
	return f.set(raw, 0)
}

var (
	fieldFMTune  = field{shift: 15, width: 1}
	fieldFMChan  = field{shift: 0, width: 12}
	fieldXtalOK  = field{shift: 15, width: 1}
	fieldAMFM    = field{shift: 15, width: 1}
	fieldUserBnd = field{shift: 14, width: 1}
	fieldRClkEn  = field{shift: 12, width: 1}
	fieldRefClk  = field{shift: 8, width: 4}
	fieldAMTune  = field{shift: 15, width: 1}
	fieldAMChan  = field{shift: 0, width: 15}
	fieldCapIdx  = field{shift: 0, width: 14}
	fieldGPIO2   = field{shift: 2, width: 2}
	fieldGPIO1   = field{shift: 0, width: 2}
	fieldUStart  = field{shift: 0, width: 15}
	fieldUGuard  = field{shift: 0, width: 9}
	fieldUChNum  = field{shift: 0, width: 12}
)

// amSysCfg is the decoded view of REG_AMSYSCFG. Bits the driver does not
// model are carried in rest so that a read-modify-write keeps them.
type amSysCfg struct {
	mode     Mode
	userBand bool
	refClkEn bool
	refClk   Crystal
	rest     uint16
}

func decodeAMSysCfg(raw uint16) amSysCfg {
	return amSysCfg{
		mode:     Mode(fieldAMFM.get(raw)),
		userBand: fieldUserBnd.flag(raw),
		refClkEn: fieldRClkEn.flag(raw),
		refClk:   Crystal(fieldRefClk.get(raw)),
		rest:     raw &^ (fieldAMFM.mask() | fieldUserBnd.mask() | fieldRClkEn.mask() | fieldRefClk.mask()),
	}
}

func (r amSysCfg) encode() uint16 {
	raw := r.rest
	raw = fieldAMFM.set(raw, uint16(r.mode))
	raw = fieldUserBnd.setFlag(raw, r.userBand)
	raw = fieldRClkEn.setFlag(raw, r.refClkEn)
	return fieldRefClk.set(raw, uint16(r.refClk))
}

type gpioCfg struct {
	gpio1 uint8
	gpio2 uint8
	rest  uint16
}

func decodeGPIOCfg(raw uint16) gpioCfg {
	return gpioCfg{
		gpio1: uint8(fieldGPIO1.get(raw)),
		gpio2: uint8(fieldGPIO2.get(raw)),
		rest:  raw &^ (fieldGPIO1.mask() | fieldGPIO2.mask()),
	}
}

func (r gpioCfg) encode() uint16 {
	raw := fieldGPIO1.set(r.rest, uint16(r.gpio1))
	return fieldGPIO2.set(raw, uint16(r.gpio2))
}

type statusA struct {
	xtalOK bool
}

func decodeStatusA(raw uint16) statusA {
	return statusA{xtalOK: fieldXtalOK.flag(raw)}
}

// fmTune and amChan are always written whole.
type fmTune struct {
	tune    bool
	channel uint16
}

func (r fmTune) encode() uint16 {
	return fieldFMChan.set(fieldFMTune.setFlag(0, r.tune), r.channel)
}

func decodeFMTune(raw uint16) fmTune {
	return fmTune{tune: fieldFMTune.flag(raw), channel: fieldFMChan.get(raw)}
}

type amChan struct {
	tune    bool
	channel uint16
}

func (r amChan) encode() uint16 {
	return fieldAMChan.set(fieldAMTune.setFlag(0, r.tune), r.channel)
}

func decodeAMChan(raw uint16) amChan {
	return amChan{tune: fieldAMTune.flag(raw), channel: fieldAMChan.get(raw)}
}

type amCali struct {
	capIndex uint16
}

func (r amCali) encode() uint16 {
	return fieldCapIdx.set(0, r.capIndex)
}

// userBand groups the three user band registers written by the tune dial.
type userBand struct {
	startChannel uint16
	guard        uint16
	channels     uint16
}

func (u userBand) encode() (start, guard, channels uint16) {
	return fieldUStart.set(0, u.startChannel), fieldUGuard.set(0, u.guard), fieldUChNum.set(0, u.channels)
}

func decodeUserBand(start, guard, channels uint16) userBand {
	return userBand{
		startChannel: fieldUStart.get(start),
		guard:        fieldUGuard.get(guard),
		channels:     fieldUChNum.get(channels),
	}
}
