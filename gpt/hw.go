package gpt

import "clocktimer/core"

// HW is the register-level model of one GPT instance. It performs no
// sequencing of its own; Driver decides the order of operations.
type HW struct {
	cr   core.Register32
	pr   core.Register32
	sr   core.Register32
	ir   core.Register32
	ocr1 core.Register32
	cnt  core.Register32

	resetSpins int
}

// NewHW maps the timer registers at base inside rf.
func NewHW(rf core.RegisterFile, base uintptr) *HW {
	return &HW{
		cr:         core.Reg32(rf, base+OffsetCR),
		pr:         core.Reg32(rf, base+OffsetPR),
		sr:         core.Reg32(rf, base+OffsetSR),
		ir:         core.Reg32(rf, base+OffsetIR),
		ocr1:       core.Reg32(rf, base+OffsetOCR1),
		cnt:        core.Reg32(rf, base+OffsetCNT),
		resetSpins: defaultResetSpins,
	}
}

// SetClockSource selects CLKSRC in one write. The crystal also needs
// EN_24M, which is cleared for every other source.
func (h *HW) SetClockSource(src ClockSource) {
	v := h.cr.Get() &^ (CRClkSrcMask << CRClkSrcPos)
	v |= (uint32(src) & CRClkSrcMask) << CRClkSrcPos
	if src == ClockOsc {
		v |= CREnable24M
	} else {
		v &^= CREnable24M
	}
	h.cr.Set(v)
}

func (h *HW) ClockSource() ClockSource {
	return ClockSource((h.cr.Get() >> CRClkSrcPos) & CRClkSrcMask)
}

// SetPrescaler programs PR; the counter advances every n+1 input cycles.
func (h *HW) SetPrescaler(n uint32) error {
	if n > MaxPrescaler {
		return core.WrapError(ErrPrescalerRange, core.Utoa(n)+" > "+core.Utoa(MaxPrescaler))
	}
	h.pr.ReplaceBits(n, PRPrescalerMask, 0)
	return nil
}

func (h *HW) Prescaler() uint32 {
	return h.pr.Get() & PRPrescalerMask
}

// SetRestartMode selects restart-at-compare (true) or free-run (false)
// counting, and makes enabling the timer start the counter from zero.
func (h *HW) SetRestartMode(restart bool) {
	if restart {
		h.cr.ClearBits(CRFreeRun)
	} else {
		h.cr.SetBits(CRFreeRun)
	}
	h.cr.SetBits(CREnableMode)
}

// Enable starts counting. Enabling a running timer is a no-op.
func (h *HW) Enable() {
	if !h.Enabled() {
		h.cr.SetBits(CREnable)
	}
}

// Disable stops counting. Disabling a stopped timer is a no-op.
func (h *HW) Disable() {
	if h.Enabled() {
		h.cr.ClearBits(CREnable)
	}
}

func (h *HW) Enabled() bool {
	return h.cr.HasBits(CREnable)
}

func (h *HW) ReadCounter() uint32 {
	return h.cnt.Get()
}

// SetReloadValue writes OCR1. In restart mode any OCR1 write also returns
// the counter to zero.
func (h *HW) SetReloadValue(top uint32) {
	h.ocr1.Set(top)
}

func (h *HW) ReadReloadValue() uint32 {
	return h.ocr1.Get()
}

func (h *HW) PendingInterrupt() bool {
	return h.sr.HasBits(SROutputCompare1)
}

// ClearPendingInterrupt acknowledges the compare flag. SR is write one to
// clear, so no read-modify-write.
func (h *HW) ClearPendingInterrupt() {
	h.sr.Set(SROutputCompare1)
}

func (h *HW) SetInterruptEnabled(on bool) {
	if on {
		h.ir.SetBits(IROutputCompare1)
	} else {
		h.ir.ClearBits(IROutputCompare1)
	}
}

func (h *HW) InterruptEnabled() bool {
	return h.ir.HasBits(IROutputCompare1)
}

// SoftwareReset requests a reset and waits for SWR to self-clear. It returns
// the number of polls spent waiting.
func (h *HW) SoftwareReset() (int, error) {
	h.cr.SetBits(CRSoftwareReset)
	for spins := 0; spins < h.resetSpins; spins++ {
		if !h.cr.HasBits(CRSoftwareReset) {
			return spins, nil
		}
	}
	return h.resetSpins, core.WrapError(ErrResetTimeout, core.Utoa(uint32(h.resetSpins))+" polls")
}
