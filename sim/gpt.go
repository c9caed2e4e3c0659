// Package sim models the GPT peripheral on an akita event engine so timer
// drivers can be exercised on the host against register side effects that
// plain memory cannot provide.
package sim

import (
	"sync"

	akita "github.com/sarchlab/akita/v4/sim"

	"clocktimer/core"
	"clocktimer/gpt"
)

// resetPolls is how many CR reads observe SWR before it self-clears.
const resetPolls = 2

// GPT is a cycle-level model of one General Purpose Timer. It implements
// core.RegisterFile for its register window and forwards every other
// address to the backing register file.
//
// Counter semantics: with prescaler n the counter advances once every n+1
// input ticks. In restart mode the tick that makes CNT equal OCR1 raises
// OF1 and returns CNT to zero, so a top value of N expires every N counts,
// and every OCR1 write also returns CNT to zero. The crystal source only
// counts while EN_24M is set.
type GPT struct {
	*akita.TickScheduler

	mu      sync.Mutex
	base    uintptr
	backing core.RegisterFile

	cr, pr, sr, ir, ocr1, cnt uint32

	prescale   uint32
	resetLeft  int
	ticksLeft  uint64
	inputTicks uint64
	expiries   uint64

	irq func()
}

// NewGPT creates a timer at base clocked at freq on engine. Addresses
// outside the timer window go to backing.
func NewGPT(engine akita.Engine, freq akita.Freq, base uintptr, backing core.RegisterFile) *GPT {
	g := &GPT{base: base, backing: backing}
	g.TickScheduler = akita.NewTickScheduler(g, engine, freq)
	return g
}

// ConnectIRQ sets the handler raised while OF1 and OF1IE are both set and
// interrupts are not masked.
func (g *GPT) ConnectIRQ(handler func()) {
	g.irq = handler
}

func (g *GPT) reg(addr uintptr) *uint32 {
	switch addr {
	case g.base + gpt.OffsetCR:
		return &g.cr
	case g.base + gpt.OffsetPR:
		return &g.pr
	case g.base + gpt.OffsetSR:
		return &g.sr
	case g.base + gpt.OffsetIR:
		return &g.ir
	case g.base + gpt.OffsetOCR1:
		return &g.ocr1
	case g.base + gpt.OffsetCNT:
		return &g.cnt
	}
	return nil
}

func (g *GPT) Load32(addr uintptr) uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()

	r := g.reg(addr)
	if r == nil {
		return g.backing.Load32(addr)
	}
	v := *r
	if addr == g.base+gpt.OffsetCR && g.cr&gpt.CRSoftwareReset != 0 {
		g.resetLeft--
		if g.resetLeft <= 0 {
			g.cr &^= gpt.CRSoftwareReset
		}
	}
	return v
}

func (g *GPT) Store32(addr uintptr, value uint32) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch addr {
	case g.base + gpt.OffsetCR:
		g.writeCR(value)
	case g.base + gpt.OffsetPR:
		g.pr = value & gpt.PRPrescalerMask
	case g.base + gpt.OffsetSR:
		g.sr &^= value & gpt.SRAllFlags
	case g.base + gpt.OffsetIR:
		g.ir = value & gpt.SRAllFlags
	case g.base + gpt.OffsetOCR1:
		g.ocr1 = value
		if g.cr&gpt.CRFreeRun == 0 {
			g.cnt = 0
			g.prescale = 0
		}
	case g.base + gpt.OffsetCNT:
		// Read only
	default:
		g.backing.Store32(addr, value)
	}
}

func (g *GPT) writeCR(value uint32) {
	if value&gpt.CRSoftwareReset != 0 {
		// Everything but EN and ENMOD returns to reset values.
		keep := g.cr & (gpt.CREnable | gpt.CREnableMode)
		g.cr = keep | gpt.CRSoftwareReset
		g.pr, g.sr, g.ir, g.cnt, g.prescale = 0, 0, 0, 0, 0
		g.ocr1 = gpt.MaxTopValue
		g.resetLeft = resetPolls
		return
	}

	rising := g.cr&gpt.CREnable == 0 && value&gpt.CREnable != 0
	if rising && value&gpt.CREnableMode != 0 {
		g.cnt = 0
		g.prescale = 0
	}
	g.cr = value | g.cr&gpt.CRSoftwareReset
}

// Handle advances the timer by one input tick.
func (g *GPT) Handle(e akita.Event) error {
	if g.Tick() {
		g.TickLater()
	}
	return nil
}

// Tick advances one input cycle and dispatches the interrupt if it is
// raised. It reports whether more ticks are requested.
func (g *GPT) Tick() bool {
	g.mu.Lock()
	if g.ticksLeft > 0 {
		g.ticksLeft--
	}
	g.inputTicks++
	g.count()
	raise := g.sr&gpt.SROutputCompare1 != 0 && g.ir&gpt.IROutputCompare1 != 0
	more := g.ticksLeft > 0
	g.mu.Unlock()

	if raise && g.irq != nil && !core.InterruptsMasked() {
		g.irq()
	}
	return more
}

func (g *GPT) count() {
	if g.cr&gpt.CREnable == 0 {
		return
	}
	src := gpt.ClockSource((g.cr >> gpt.CRClkSrcPos) & gpt.CRClkSrcMask)
	if src == gpt.ClockOsc && g.cr&gpt.CREnable24M == 0 {
		return
	}
	g.prescale++
	if g.prescale <= g.pr {
		return
	}
	g.prescale = 0

	g.cnt++
	if g.cnt != g.ocr1 {
		return
	}
	g.sr |= gpt.SROutputCompare1
	g.expiries++
	if g.cr&gpt.CRFreeRun == 0 {
		g.cnt = 0
	}
}

// RunTicks schedules n input ticks and runs the engine until they are done.
func (g *GPT) RunTicks(n uint64) error {
	if n == 0 {
		return nil
	}
	g.mu.Lock()
	g.ticksLeft = n
	g.mu.Unlock()

	g.TickLater()
	return g.Engine.Run()
}

// InjectCompare raises OF1 as if the counter had just reached OCR1. The
// interrupt is dispatched on the next tick.
func (g *GPT) InjectCompare() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sr |= gpt.SROutputCompare1
	g.expiries++
}

// InputTicks returns the number of input cycles simulated so far.
func (g *GPT) InputTicks() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inputTicks
}

// Expiries returns how many times the counter reached the compare value.
func (g *GPT) Expiries() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.expiries
}

// Counter returns CNT without going through the register window.
func (g *GPT) Counter() uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cnt
}
