package clock

// i.MX RT1060 clock controller (CCM) and analog PLL block.
const (
	ccmBase       = 0x400FC000
	ccmCACRR      = ccmBase + 0x10
	ccmCBCDR      = ccmBase + 0x14
	ccmCBCMR      = ccmBase + 0x18
	ccmCSCMR1     = ccmBase + 0x1C
	ccmCSCDR1     = ccmBase + 0x24
	ccmCSCDR2     = ccmBase + 0x38
	analogBase    = 0x400D8000
	analogPLLARM  = analogBase + 0x00
	analogPLLUSB1 = analogBase + 0x10
	analogPLLSYS  = analogBase + 0x30
	analogSYSNUM  = analogBase + 0x50
	analogSYSDEN  = analogBase + 0x60
	analogPFD480  = analogBase + 0xF0
	analogPFD528  = analogBase + 0x100
)

// OscHz is the 24 MHz crystal oscillator feeding every PLL.
const OscHz = 24000000

// Mux select fields.
var (
	PerclkClkSel     = Field{"CSCMR1.PERCLK_CLK_SEL", ccmCSCMR1, 6, 1}
	PeriphClkSel     = Field{"CBCDR.PERIPH_CLK_SEL", ccmCBCDR, 25, 1}
	PrePeriphClkSel  = Field{"CBCMR.PRE_PERIPH_CLK_SEL", ccmCBCMR, 18, 2}
	PeriphClk2Sel    = Field{"CBCMR.PERIPH_CLK2_SEL", ccmCBCMR, 12, 2}
	LPI2CClkSel      = Field{"CSCDR2.LPI2C_CLK_SEL", ccmCSCDR2, 18, 1}
	LPSPIClkSel      = Field{"CBCMR.LPSPI_CLK_SEL", ccmCBCMR, 4, 2}
	UARTClkSel       = Field{"CSCDR1.UART_CLK_SEL", ccmCSCDR1, 6, 1}
	PLLARMBypassSrc  = Field{"PLL_ARM.BYPASS_CLK_SRC", analogPLLARM, 14, 2}
	PLLSYSBypassSrc  = Field{"PLL_SYS.BYPASS_CLK_SRC", analogPLLSYS, 14, 2}
	PLLUSB1BypassSrc = Field{"PLL_USB1.BYPASS_CLK_SRC", analogPLLUSB1, 14, 2}
)

// Divider fields.
var (
	PerclkPodf     = Field{"CSCMR1.PERCLK_PODF", ccmCSCMR1, 0, 6}
	IPGPodf        = Field{"CBCDR.IPG_PODF", ccmCBCDR, 8, 2}
	AHBPodf        = Field{"CBCDR.AHB_PODF", ccmCBCDR, 10, 3}
	PeriphClk2Podf = Field{"CBCDR.PERIPH_CLK2_PODF", ccmCBCDR, 27, 3}
	ARMPodf        = Field{"CACRR.ARM_PODF", ccmCACRR, 0, 3}
	LPI2CPodf      = Field{"CSCDR2.LPI2C_CLK_PODF", ccmCSCDR2, 19, 6}
	LPSPIPodf      = Field{"CBCMR.LPSPI_PODF", ccmCBCMR, 26, 3}
	UARTPodf       = Field{"CSCDR1.UART_CLK_PODF", ccmCSCDR1, 0, 6}
)

// PLL control fields.
var (
	PLLARMDivSelect  = Field{"PLL_ARM.DIV_SELECT", analogPLLARM, 0, 7}
	PLLARMPowerDown  = Field{"PLL_ARM.POWERDOWN", analogPLLARM, 12, 1}
	PLLARMBypass     = Field{"PLL_ARM.BYPASS", analogPLLARM, 16, 1}
	PLLSYSDivSelect  = Field{"PLL_SYS.DIV_SELECT", analogPLLSYS, 0, 1}
	PLLSYSPowerDown  = Field{"PLL_SYS.POWERDOWN", analogPLLSYS, 12, 1}
	PLLSYSBypass     = Field{"PLL_SYS.BYPASS", analogPLLSYS, 16, 1}
	PLLSYSNum        = Field{"PLL_SYS_NUM.A", analogSYSNUM, 0, 30}
	PLLSYSDenom      = Field{"PLL_SYS_DENOM.B", analogSYSDEN, 0, 30}
	PLLUSB1DivSelect = Field{"PLL_USB1.DIV_SELECT", analogPLLUSB1, 1, 1}
	PLLUSB1Power     = Field{"PLL_USB1.POWER", analogPLLUSB1, 12, 1}
	PLLUSB1Bypass    = Field{"PLL_USB1.BYPASS", analogPLLUSB1, 16, 1}
)

// PFD fractional fields; each PFD register packs four 8-bit lanes of
// FRAC[5:0], STABLE[6], CLKGATE[7].
var (
	PLL2PFD0Frac = Field{"PFD_528.PFD0_FRAC", analogPFD528, 0, 6}
	PLL2PFD2Frac = Field{"PFD_528.PFD2_FRAC", analogPFD528, 16, 6}
	PLL3PFD0Frac = Field{"PFD_480.PFD0_FRAC", analogPFD480, 0, 6}
	PLL3PFD1Frac = Field{"PFD_480.PFD1_FRAC", analogPFD480, 8, 6}
	PLL2PFD0Gate = Field{"PFD_528.PFD0_CLKGATE", analogPFD528, 7, 1}
	PLL2PFD2Gate = Field{"PFD_528.PFD2_CLKGATE", analogPFD528, 23, 1}
	PLL3PFD0Gate = Field{"PFD_480.PFD0_CLKGATE", analogPFD480, 7, 1}
	PLL3PFD1Gate = Field{"PFD_480.PFD1_CLKGATE", analogPFD480, 15, 1}
)

// Fixed PLL parameters.
const (
	pllARMDivisor = 2
	pllSYSDiv20   = 20
	pllSYSDiv22   = 22
	pll3Div80M    = 6
	pll3Div60M    = 8
)

var pllUSB1Table = [2]uint32{480000000, 528000000}

// PerclkSource enumerates CSCMR1.PERCLK_CLK_SEL.
type PerclkSource uint32

const (
	PerclkFromIPG PerclkSource = 0
	PerclkFromOsc PerclkSource = 1
)

func (s PerclkSource) String() string {
	switch s {
	case PerclkFromIPG:
		return "ipg_clk_root"
	case PerclkFromOsc:
		return "osc_clk"
	}
	return "unknown"
}

// PeriphSource enumerates CBCDR.PERIPH_CLK_SEL.
type PeriphSource uint32

const (
	PeriphFromPrePeriph PeriphSource = 0
	PeriphFromClk2      PeriphSource = 1
)

func (s PeriphSource) String() string {
	switch s {
	case PeriphFromPrePeriph:
		return "pre_periph_clk"
	case PeriphFromClk2:
		return "periph_clk2"
	}
	return "unknown"
}

// PrePeriphSource enumerates CBCMR.PRE_PERIPH_CLK_SEL.
type PrePeriphSource uint32

const (
	PrePeriphFromPLL2     PrePeriphSource = 0
	PrePeriphFromPLL2PFD2 PrePeriphSource = 1
	PrePeriphFromPLL2PFD0 PrePeriphSource = 2
	PrePeriphFromPLL1     PrePeriphSource = 3
)

func (s PrePeriphSource) String() string {
	switch s {
	case PrePeriphFromPLL2:
		return "pll2"
	case PrePeriphFromPLL2PFD2:
		return "pll2_pfd2"
	case PrePeriphFromPLL2PFD0:
		return "pll2_pfd0"
	case PrePeriphFromPLL1:
		return "arm_pll_divided"
	}
	return "unknown"
}

// PeriphClk2Source enumerates CBCMR.PERIPH_CLK2_SEL. Value 3 is reserved.
type PeriphClk2Source uint32

const (
	PeriphClk2FromPLL3       PeriphClk2Source = 0
	PeriphClk2FromOsc        PeriphClk2Source = 1
	PeriphClk2FromPLL2Bypass PeriphClk2Source = 2
)

func (s PeriphClk2Source) String() string {
	switch s {
	case PeriphClk2FromPLL3:
		return "pll3_sw_clk"
	case PeriphClk2FromOsc:
		return "osc_clk"
	case PeriphClk2FromPLL2Bypass:
		return "pll2_bypass_clk"
	}
	return "reserved"
}

// LPI2CSource enumerates CSCDR2.LPI2C_CLK_SEL.
type LPI2CSource uint32

const (
	LPI2CFromPLL3Div8 LPI2CSource = 0
	LPI2CFromOsc      LPI2CSource = 1
)

func (s LPI2CSource) String() string {
	switch s {
	case LPI2CFromPLL3Div8:
		return "pll3_60m"
	case LPI2CFromOsc:
		return "osc_clk"
	}
	return "unknown"
}

// LPSPISource enumerates CBCMR.LPSPI_CLK_SEL.
type LPSPISource uint32

const (
	LPSPIFromPLL3PFD1 LPSPISource = 0
	LPSPIFromPLL3PFD0 LPSPISource = 1
	LPSPIFromPLL2     LPSPISource = 2
	LPSPIFromPLL2PFD2 LPSPISource = 3
)

func (s LPSPISource) String() string {
	switch s {
	case LPSPIFromPLL3PFD1:
		return "pll3_pfd1"
	case LPSPIFromPLL3PFD0:
		return "pll3_pfd0"
	case LPSPIFromPLL2:
		return "pll2"
	case LPSPIFromPLL2PFD2:
		return "pll2_pfd2"
	}
	return "unknown"
}

// UARTSource enumerates CSCDR1.UART_CLK_SEL.
type UARTSource uint32

const (
	UARTFromPLL3Div6 UARTSource = 0
	UARTFromOsc      UARTSource = 1
)

func (s UARTSource) String() string {
	switch s {
	case UARTFromPLL3Div6:
		return "pll3_80m"
	case UARTFromOsc:
		return "osc_clk"
	}
	return "unknown"
}

// BypassSource enumerates PLL_*.BYPASS_CLK_SRC. Only the 24 MHz reference
// is modeled; the external CLK1_N/P input and the reserved codes are not.
type BypassSource uint32

const (
	BypassFromRefClk24M BypassSource = 0
	BypassFromCLK1      BypassSource = 1
)

func (s BypassSource) String() string {
	switch s {
	case BypassFromRefClk24M:
		return "ref_clk_24m"
	case BypassFromCLK1:
		return "clk1_n_p"
	}
	return "reserved"
}

// Root is the entry point of one peripheral clock into the tree: the mux
// nearest the peripheral plus the dividers that apply to it alone.
type Root struct {
	Name     string
	Mux      Field
	Dividers []Field
}

// Peripheral clock roots.
var (
	RootPerclk = Root{Name: "perclk", Mux: PerclkClkSel, Dividers: []Field{PerclkPodf}}
	RootLPI2C  = Root{Name: "lpi2c", Mux: LPI2CClkSel, Dividers: []Field{LPI2CPodf}}
	RootLPSPI  = Root{Name: "lpspi", Mux: LPSPIClkSel, Dividers: []Field{LPSPIPodf}}
	RootUART   = Root{Name: "uart", Mux: UARTClkSel, Dividers: []Field{UARTPodf}}
)

// Roots lists every modeled peripheral root.
func Roots() []Root {
	return []Root{RootPerclk, RootLPI2C, RootLPSPI, RootUART}
}

// RootByName looks up a root by its Name.
func RootByName(name string) (Root, bool) {
	for _, r := range Roots() {
		if r.Name == name {
			return r, true
		}
	}
	return Root{}, false
}

// TreeRegisters returns the address of every register the walker can read,
// sorted ascending.
func TreeRegisters() []uintptr {
	return []uintptr{
		analogPLLARM,
		analogPLLUSB1,
		analogPLLSYS,
		analogSYSNUM,
		analogSYSDEN,
		analogPFD480,
		analogPFD528,
		ccmCACRR,
		ccmCBCDR,
		ccmCBCMR,
		ccmCSCMR1,
		ccmCSCDR1,
		ccmCSCDR2,
	}
}
