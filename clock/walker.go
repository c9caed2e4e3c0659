package clock

import "clocktimer/core"

// walker resolves one root. It is created per resolution and never shared.
type walker struct {
	regs     RegisterReader
	dividers []uint32
	path     []string
	source   string
}

// divide records a post-divider register passed on the way to the source.
func (w *walker) divide(f Field) {
	w.dividers = append(w.dividers, f.Divider(w.regs))
}

// fixed records a fixed (non-register) post-divider.
func (w *walker) fixed(d uint32) {
	w.dividers = append(w.dividers, d)
}

func (w *walker) step(name string) {
	w.path = append(w.path, name)
}

func (w *walker) terminal(name string, hz uint32) (uint32, error) {
	w.source = name
	w.step(name)
	return hz, nil
}

func unmodeled(f Field, v uint32) error {
	return core.WrapError(ErrUnresolvedClockPath, f.Name+" = "+core.Utoa(v))
}

func unresolvable(what string, err error) error {
	return core.WrapError(ErrUnresolvedClockPath, what+": "+err.Error())
}

// visit dispatches to the node owning mux and returns the terminal
// frequency, before dividers are applied.
func (w *walker) visit(mux Field) (uint32, error) {
	switch mux {
	case PerclkClkSel:
		return w.perclk()
	case PeriphClkSel:
		return w.periph()
	case PrePeriphClkSel:
		return w.prePeriph()
	case PeriphClk2Sel:
		return w.periphClk2()
	case LPI2CClkSel:
		return w.lpi2c()
	case LPSPIClkSel:
		return w.lpspi()
	case UARTClkSel:
		return w.uart()
	}
	return 0, core.WrapError(ErrUnresolvedClockPath, "no node for "+mux.Name)
}

func (w *walker) osc() (uint32, error) {
	return w.terminal("osc_clk", OscHz)
}

func (w *walker) perclk() (uint32, error) {
	v := PerclkClkSel.Read(w.regs)
	switch PerclkSource(v) {
	case PerclkFromIPG:
		w.step(PerclkFromIPG.String())
		w.divide(IPGPodf)
		w.step("ahb_clk_root")
		w.divide(AHBPodf)
		return w.visit(PeriphClkSel)
	case PerclkFromOsc:
		return w.osc()
	}
	return 0, unmodeled(PerclkClkSel, v)
}

func (w *walker) periph() (uint32, error) {
	v := PeriphClkSel.Read(w.regs)
	switch PeriphSource(v) {
	case PeriphFromPrePeriph:
		w.step(PeriphFromPrePeriph.String())
		return w.visit(PrePeriphClkSel)
	case PeriphFromClk2:
		w.step(PeriphFromClk2.String())
		w.divide(PeriphClk2Podf)
		return w.visit(PeriphClk2Sel)
	}
	return 0, unmodeled(PeriphClkSel, v)
}

func (w *walker) prePeriph() (uint32, error) {
	v := PrePeriphClkSel.Read(w.regs)
	switch PrePeriphSource(v) {
	case PrePeriphFromPLL2:
		return w.pll2()
	case PrePeriphFromPLL2PFD2:
		return w.pfd("pll2_pfd2", w.pll2, PLL2PFD2Frac, PLL2PFD2Gate)
	case PrePeriphFromPLL2PFD0:
		return w.pfd("pll2_pfd0", w.pll2, PLL2PFD0Frac, PLL2PFD0Gate)
	case PrePeriphFromPLL1:
		w.step(PrePeriphFromPLL1.String())
		w.divide(ARMPodf)
		return w.pll1()
	}
	return 0, unmodeled(PrePeriphClkSel, v)
}

func (w *walker) periphClk2() (uint32, error) {
	v := PeriphClk2Sel.Read(w.regs)
	switch PeriphClk2Source(v) {
	case PeriphClk2FromPLL3:
		return w.pll3()
	case PeriphClk2FromOsc:
		return w.osc()
	case PeriphClk2FromPLL2Bypass:
		w.step(PeriphClk2FromPLL2Bypass.String())
		return w.bypass(PLLSYSBypassSrc)
	}
	return 0, unmodeled(PeriphClk2Sel, v)
}

func (w *walker) lpi2c() (uint32, error) {
	v := LPI2CClkSel.Read(w.regs)
	switch LPI2CSource(v) {
	case LPI2CFromPLL3Div8:
		w.step(LPI2CFromPLL3Div8.String())
		w.fixed(pll3Div60M)
		return w.pll3()
	case LPI2CFromOsc:
		return w.osc()
	}
	return 0, unmodeled(LPI2CClkSel, v)
}

func (w *walker) lpspi() (uint32, error) {
	v := LPSPIClkSel.Read(w.regs)
	switch LPSPISource(v) {
	case LPSPIFromPLL3PFD1:
		return w.pfd("pll3_pfd1", w.pll3, PLL3PFD1Frac, PLL3PFD1Gate)
	case LPSPIFromPLL3PFD0:
		return w.pfd("pll3_pfd0", w.pll3, PLL3PFD0Frac, PLL3PFD0Gate)
	case LPSPIFromPLL2:
		return w.pll2()
	case LPSPIFromPLL2PFD2:
		return w.pfd("pll2_pfd2", w.pll2, PLL2PFD2Frac, PLL2PFD2Gate)
	}
	return 0, unmodeled(LPSPIClkSel, v)
}

func (w *walker) uart() (uint32, error) {
	v := UARTClkSel.Read(w.regs)
	switch UARTSource(v) {
	case UARTFromPLL3Div6:
		w.step(UARTFromPLL3Div6.String())
		w.fixed(pll3Div80M)
		return w.pll3()
	case UARTFromOsc:
		return w.osc()
	}
	return 0, unmodeled(UARTClkSel, v)
}

// bypass resolves the clock a bypassed PLL passes through.
func (w *walker) bypass(src Field) (uint32, error) {
	v := src.Read(w.regs)
	switch BypassSource(v) {
	case BypassFromRefClk24M:
		return w.terminal(BypassFromRefClk24M.String(), OscHz)
	}
	return 0, unmodeled(src, v)
}

// pll1 is the ARM PLL: integer ratio over the 24 MHz reference.
func (w *walker) pll1() (uint32, error) {
	if PLLARMBypass.Read(w.regs) != 0 {
		w.step("pll1_bypass")
		return w.bypass(PLLARMBypassSrc)
	}
	if PLLARMPowerDown.Read(w.regs) != 0 {
		return 0, core.WrapError(ErrUnresolvedClockPath, "pll1 powered down")
	}
	enc := IntegerRatio{BaseHz: OscHz, DivSelect: PLLARMDivSelect.Read(w.regs), Divisor: pllARMDivisor}
	hz, err := enc.Frequency()
	if err != nil {
		return 0, unresolvable("pll1", err)
	}
	return w.terminal("pll1", hz)
}

// pll2 is the system PLL: 20 or 22 times the reference plus NUM/DENOM.
func (w *walker) pll2() (uint32, error) {
	if PLLSYSBypass.Read(w.regs) != 0 {
		w.step("pll2_bypass")
		return w.bypass(PLLSYSBypassSrc)
	}
	if PLLSYSPowerDown.Read(w.regs) != 0 {
		return 0, core.WrapError(ErrUnresolvedClockPath, "pll2 powered down")
	}
	div := uint32(pllSYSDiv20)
	if PLLSYSDivSelect.Read(w.regs) != 0 {
		div = pllSYSDiv22
	}
	enc := Fractional{
		BaseHz:    OscHz,
		DivSelect: div,
		Num:       PLLSYSNum.Read(w.regs),
		Denom:     PLLSYSDenom.Read(w.regs),
	}
	hz, err := enc.Frequency()
	if err != nil {
		return 0, unresolvable("pll2", err)
	}
	return w.terminal("pll2", hz)
}

// pll3 is the USB1 PLL: one of two fixed frequencies.
func (w *walker) pll3() (uint32, error) {
	if PLLUSB1Bypass.Read(w.regs) != 0 {
		w.step("pll3_bypass")
		return w.bypass(PLLUSB1BypassSrc)
	}
	if PLLUSB1Power.Read(w.regs) == 0 {
		return 0, core.WrapError(ErrUnresolvedClockPath, "pll3 powered down")
	}
	enc := FixedTable{DivSelect: PLLUSB1DivSelect.Read(w.regs), Table: pllUSB1Table}
	hz, err := enc.Frequency()
	if err != nil {
		return 0, unresolvable("pll3", err)
	}
	return w.terminal("pll3", hz)
}

// pfd resolves a phase fractional divider hanging off the PLL resolved by
// parent. A gated PFD produces no clock.
func (w *walker) pfd(name string, parent func() (uint32, error), frac, gate Field) (uint32, error) {
	if gate.Read(w.regs) != 0 {
		return 0, core.WrapError(ErrUnresolvedClockPath, name+" gated")
	}
	w.step(name)
	pllHz, err := parent()
	if err != nil {
		return 0, err
	}
	hz, err := PFDHz(pllHz, frac.Read(w.regs))
	if err != nil {
		return 0, unresolvable(name, err)
	}
	w.source = name
	return hz, nil
}
