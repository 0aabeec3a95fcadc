package radio

import (
	"testing"

	"gobot.io/x/gobot/gobottest"
)

func TestFieldTruncatesToWidth(t *testing.T) {
	f := field{shift: 2, width: 2}
	gobottest.Assert(t, f.mask(), uint16(0x000C))
	gobottest.Assert(t, f.set(0xFFFF, 0), uint16(0xFFF3))
	gobottest.Assert(t, f.set(0x0000, 0x7), uint16(0x000C))
	gobottest.Assert(t, f.get(0x0008), uint16(2))
}

func TestAMSysCfgKeepsUnmodelledBits(t *testing.T) {
	for _, raw := range []uint16{0x0000, 0xFFFF, 0x2C5A, 0xA5A5, 0x6F5A} {
		gobottest.Assert(t, decodeAMSysCfg(raw).encode(), raw)
	}

	reg := decodeAMSysCfg(0xB7FF)
	gobottest.Assert(t, reg.mode, ModeAM)
	gobottest.Assert(t, reg.userBand, false)
	gobottest.Assert(t, reg.refClkEn, true)
	gobottest.Assert(t, reg.refClk, Crystal(7))
	gobottest.Assert(t, reg.rest, uint16(0x20FF))
}

func TestGPIOCfg(t *testing.T) {
	reg := decodeGPIOCfg(0x1236)
	gobottest.Assert(t, reg.gpio1, uint8(2))
	gobottest.Assert(t, reg.gpio2, uint8(1))
	gobottest.Assert(t, reg.encode(), uint16(0x1236))

	reg.gpio2 = gpioDialMode
	reg.gpio1 = gpioHighZ
	gobottest.Assert(t, reg.encode(), uint16(0x1238))
}

func TestTuneRegisters(t *testing.T) {
	gobottest.Assert(t, fmTune{tune: true, channel: 2078}.encode(), uint16(0x881E))
	gobottest.Assert(t, decodeFMTune(0x881E), fmTune{tune: true, channel: 2078})
	gobottest.Assert(t, fmTune{channel: 0xFFFF}.encode(), uint16(0x0FFF))

	gobottest.Assert(t, amChan{tune: true, channel: 810}.encode(), uint16(0x832A))
	gobottest.Assert(t, decodeAMChan(0x832A), amChan{tune: true, channel: 810})

	gobottest.Assert(t, amCali{capIndex: 0xFFFF}.encode(), uint16(0x3FFF))
	gobottest.Assert(t, decodeStatusA(0x8000).xtalOK, true)
	gobottest.Assert(t, decodeStatusA(0x7FFF).xtalOK, false)
}

func TestUserBandFor(t *testing.T) {
	am := userBandFor(ModeAM, 520, 1710, 10)
	gobottest.Assert(t, am, userBand{startChannel: 520, channels: 119, guard: 0x0011})

	fm := userBandFor(ModeFM, 87500, 108000, 2)
	gobottest.Assert(t, fm, userBand{startChannel: 1750, channels: 205, guard: 0x001D})

	start, guard, channels := fm.encode()
	gobottest.Assert(t, decodeUserBand(start, guard, channels), fm)
}

func TestCrystalString(t *testing.T) {
	gobottest.Assert(t, OSCILLATOR_32KHZ.String(), "32.768kHz")
	gobottest.Assert(t, OSCILLATOR_38KHZ.String(), "38kHz")
	gobottest.Assert(t, Crystal(10).String(), "Crystal(10)")
	gobottest.Assert(t, ModeAM.String(), "AM")
	gobottest.Assert(t, ModeFM.String(), "FM")
}
