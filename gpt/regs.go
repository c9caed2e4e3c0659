package gpt

// General Purpose Timer instances.
const (
	GPT1Base = 0x401EC000
	GPT2Base = 0x401F0000
)

// Register offsets from the instance base.
const (
	OffsetCR   = 0x00 // Control
	OffsetPR   = 0x04 // Prescaler
	OffsetSR   = 0x08 // Status (write one to clear)
	OffsetIR   = 0x0C // Interrupt enable
	OffsetOCR1 = 0x10 // Output compare 1 (reload/top value)
	OffsetCNT  = 0x24 // Counter (read only)
)

// CR bits
const (
	CREnable        = 1 << 0 // EN: counter runs
	CREnableMode    = 1 << 1 // ENMOD: counter restarts from 0 when enabled
	CRClkSrcPos     = 6
	CRClkSrcMask    = 0x7
	CRFreeRun       = 1 << 9  // FRR: 0 = restart at compare, 1 = free run
	CREnable24M     = 1 << 10 // EN_24M: gate the crystal into CLKSRC=osc
	CRSoftwareReset = 1 << 15 // SWR: self-clearing
)

// PR, SR and IR bits
const (
	PRPrescalerMask   = 0xFFF
	SROutputCompare1  = 1 << 0 // OF1
	IROutputCompare1  = 1 << 0 // OF1IE
	SRAllFlags        = 0x3F
	MaxPrescaler      = PRPrescalerMask
	MaxTopValue       = 0xFFFFFFFF
	defaultResetSpins = 1000
)

// ClockSource is the CR.CLKSRC selection.
type ClockSource uint32

const (
	ClockNone       ClockSource = 0
	ClockPeripheral ClockSource = 1 // ipg_clk / PERCLK root
	ClockHighFreq   ClockSource = 2
	ClockExternal   ClockSource = 3
	ClockLowFreq    ClockSource = 4 // 32 kHz
	ClockOsc        ClockSource = 5 // 24 MHz crystal
)

func (s ClockSource) String() string {
	switch s {
	case ClockNone:
		return "none"
	case ClockPeripheral:
		return "perclk"
	case ClockHighFreq:
		return "ipg_clk_highfreq"
	case ClockExternal:
		return "external"
	case ClockLowFreq:
		return "ipg_clk_32k"
	case ClockOsc:
		return "osc_clk"
	}
	return "reserved"
}
