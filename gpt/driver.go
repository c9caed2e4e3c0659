package gpt

import (
	"sync/atomic"

	"clocktimer/clock"
	"clocktimer/core"
)

// Callback runs in interrupt context each time the counter reaches the top
// value. It must not block and must not allocate.
type Callback func(ctx any)

// alarm pairs a callback with its context so the ISR always loads both
// from the same SetTopValue call.
type alarm struct {
	fn  Callback
	ctx any
}

// State is the driver lifecycle state.
type State uint32

const (
	StateIdle State = iota
	StateRunning
	StateExpiredPendingAck
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateExpiredPendingAck:
		return "expired"
	}
	return "unknown"
}

// Config describes one timer instance.
type Config struct {
	Unit      uint8       // Instance number used in event records (GPT1 = 1)
	Base      uintptr     // Register base, defaults to GPT1Base
	Source    ClockSource // Counter input, defaults to ClockPeripheral
	Prescaler uint32      // PR value; the counter runs at input / (Prescaler+1)
	MaxTop    uint32      // Largest accepted top value, defaults to MaxTopValue

	// InputHz is the frequency entering the prescaler. When zero it is
	// resolved from Clocks.
	InputHz uint32
	Clocks  *clock.Resolver
}

func (c *Config) applyDefaults() {
	if c.Unit == 0 {
		c.Unit = 1
	}
	if c.Base == 0 {
		c.Base = GPT1Base
	}
	if c.Source == ClockNone {
		c.Source = ClockPeripheral
	}
	if c.MaxTop == 0 {
		c.MaxTop = MaxTopValue
	}
}

func (c *Config) name() string {
	return "gpt" + core.Utoa(uint32(c.Unit))
}

// ResolveInput returns the frequency that src feeds into the prescaler.
func ResolveInput(r *clock.Resolver, src ClockSource) (uint32, error) {
	switch src {
	case ClockPeripheral:
		return r.Frequency(clock.RootPerclk)
	case ClockOsc:
		return clock.OscHz, nil
	}
	return 0, core.WrapError(clock.ErrUnresolvedClockPath, "gpt clock source "+src.String())
}

// Driver owns one periodic timer. A Driver is either built by New or is
// the zero value, which rejects every operation with ErrNotInitialized.
type Driver struct {
	hw    *HW
	cfg   Config
	freq  atomic.Uint32
	alarm atomic.Pointer[alarm]
	state atomic.Uint32
	fired atomic.Uint32

	// staged is a top value waiting for the current period to end; 0 when
	// none is pending.
	staged atomic.Uint32

	initialized bool

	// trace observes SetTopValue step boundaries (0 = before step 1).
	trace func(step int)
}

// New resets the timer at cfg.Base and leaves it stopped with its interrupt
// disabled and no callback.
func New(rf core.RegisterFile, cfg Config) (*Driver, error) {
	cfg.applyDefaults()
	if cfg.Prescaler > MaxPrescaler {
		return nil, core.WrapError(ErrPrescalerRange, core.Utoa(cfg.Prescaler)+" > "+core.Utoa(MaxPrescaler))
	}

	input := cfg.InputHz
	if input == 0 && cfg.Clocks != nil {
		hz, err := ResolveInput(cfg.Clocks, cfg.Source)
		if err != nil {
			core.RecordEvent(core.EvtClockReject, cfg.Unit, uint32(cfg.Source), 0)
			return nil, core.PrefixError(cfg.name(), err)
		}
		input = hz
	}
	freq := input / (cfg.Prescaler + 1)
	if freq == 0 {
		return nil, core.PrefixError(cfg.name(), ErrZeroFrequency)
	}

	hw := NewHW(rf, cfg.Base)
	hw.Disable()
	hw.SetInterruptEnabled(false)
	spins, err := hw.SoftwareReset()
	if err != nil {
		return nil, core.PrefixError(cfg.name(), err)
	}
	hw.ClearPendingInterrupt()
	hw.SetRestartMode(true)
	hw.SetClockSource(cfg.Source)
	if err := hw.SetPrescaler(cfg.Prescaler); err != nil {
		return nil, err
	}
	core.RecordEvent(core.EvtTimerReset, cfg.Unit, uint32(spins), 0)

	d := &Driver{hw: hw, cfg: cfg, initialized: true}
	d.freq.Store(freq)
	return d, nil
}

// Start selects the clock source, programs the prescaler and enables
// counting from zero. A top value staged while the timer was stopped takes
// effect now. Starting a running timer is a no-op.
func (d *Driver) Start() error {
	if !d.initialized {
		return ErrNotInitialized
	}
	if !d.hw.Enabled() {
		d.hw.SetClockSource(d.cfg.Source)
		if err := d.hw.SetPrescaler(d.cfg.Prescaler); err != nil {
			return err
		}
		if top := d.staged.Swap(0); top != 0 {
			d.hw.SetReloadValue(top)
			if d.alarm.Load() == nil {
				d.hw.SetInterruptEnabled(false)
			}
		}
		d.hw.Enable()
	}
	d.state.Store(uint32(StateRunning))
	core.RecordEvent(core.EvtTimerStart, d.cfg.Unit, d.hw.ReadReloadValue(), 0)
	return nil
}

// Stop disables counting and always succeeds. A compare flag raised before
// Stop stays pending until the next SetTopValue clears it.
func (d *Driver) Stop() {
	if !d.initialized {
		return
	}
	d.hw.Disable()
	d.state.Store(uint32(StateIdle))
	core.RecordEvent(core.EvtTimerStop, d.cfg.Unit, d.hw.ReadCounter(), 0)
}

// GetValue returns the ticks remaining before the next expiry. Counter and
// reload are sampled with interrupts masked so the ISR cannot interleave.
// The difference wraps like the 32-bit counter does.
func (d *Driver) GetValue() (uint32, error) {
	if !d.initialized {
		return 0, ErrNotInitialized
	}
	state := core.DisableInterrupts()
	top := d.hw.ReadReloadValue()
	cnt := d.hw.ReadCounter()
	core.RestoreInterrupts(state)
	return top - cnt, nil
}

// SetTopValue reprograms the period and the expiry callback. With
// resetCounter the counter restarts from zero at once. Otherwise a running
// timer finishes its current period and the ISR installs top at that
// expiry, so a counter already past top is never stranded. A nil callback
// leaves the interrupt disabled once no top is staged.
//
// The steps run in a fixed order so an interrupt arriving between any two
// of them sees either the previous callback and top or the new ones:
//
//  1. mask the compare interrupt and drop any stale compare flag
//  2. publish the callback
//  3. choose between restarting the counter and staging top
//  4. write the top value when restarting
//  5. unmask the compare interrupt if a callback is set or top is staged
func (d *Driver) SetTopValue(top uint32, resetCounter bool, cb Callback, ctx any) error {
	if !d.initialized {
		return ErrNotInitialized
	}
	if top == 0 || top > d.cfg.MaxTop {
		return core.WrapError(ErrTopOutOfRange, core.Utoa(top)+" not in [1, "+core.Utoa(d.cfg.MaxTop)+"]")
	}

	d.step(0)
	d.hw.SetInterruptEnabled(false)
	d.hw.ClearPendingInterrupt()
	d.step(1)

	if cb != nil {
		d.alarm.Store(&alarm{fn: cb, ctx: ctx})
	} else {
		d.alarm.Store(nil)
	}
	d.step(2)

	stage := !resetCounter && d.hw.Enabled()
	if stage {
		d.staged.Store(top)
	} else {
		d.staged.Store(0)
	}
	d.step(3)

	if !stage {
		d.hw.SetReloadValue(top)
	}
	d.step(4)

	if cb != nil || stage {
		d.hw.SetInterruptEnabled(true)
	}
	d.step(5)

	var reset uint32
	if resetCounter {
		reset = 1
	}
	core.RecordEvent(core.EvtSetTop, d.cfg.Unit, top, reset)
	return nil
}

func (d *Driver) step(n int) {
	if d.trace != nil {
		d.trace(n)
	}
}

// GetTopValue returns the last accepted top value, including one still
// staged for the end of the current period.
func (d *Driver) GetTopValue() (uint32, error) {
	if !d.initialized {
		return 0, ErrNotInitialized
	}
	if top := d.staged.Load(); top != 0 {
		return top, nil
	}
	return d.hw.ReadReloadValue(), nil
}

// GetPendingInterrupt reports whether a compare flag is waiting.
func (d *Driver) GetPendingInterrupt() (bool, error) {
	if !d.initialized {
		return false, ErrNotInitialized
	}
	return d.hw.PendingInterrupt(), nil
}

// MaxTopValue returns the largest top value SetTopValue accepts.
func (d *Driver) MaxTopValue() uint32 {
	return d.cfg.MaxTop
}

// Frequency returns the counting frequency cached at the last resolution.
func (d *Driver) Frequency() uint32 {
	return d.freq.Load()
}

// EffectiveFrequency re-resolves the counting frequency from the clock
// registers when the driver was configured with a resolver, and caches it.
func (d *Driver) EffectiveFrequency() (uint32, error) {
	if !d.initialized {
		return 0, ErrNotInitialized
	}
	if d.cfg.Clocks == nil || d.cfg.InputHz != 0 {
		return d.freq.Load(), nil
	}
	input, err := ResolveInput(d.cfg.Clocks, d.cfg.Source)
	if err != nil {
		core.RecordEvent(core.EvtClockReject, d.cfg.Unit, uint32(d.cfg.Source), 0)
		return 0, core.PrefixError(d.cfg.name(), err)
	}
	freq := input / (d.cfg.Prescaler + 1)
	if freq == 0 {
		return 0, core.PrefixError(d.cfg.name(), ErrZeroFrequency)
	}
	d.freq.Store(freq)
	return freq, nil
}

// TicksFromMicroseconds converts a timeout to a top value at the effective
// frequency. Clock resolution errors are returned unchanged.
func (d *Driver) TicksFromMicroseconds(us uint32) (uint32, error) {
	freq, err := d.EffectiveFrequency()
	if err != nil {
		return 0, err
	}
	ticks := uint64(us) * uint64(freq) / 1000000
	if ticks == 0 || ticks > uint64(d.cfg.MaxTop) {
		return 0, core.WrapError(ErrTopOutOfRange, core.Utoa(us)+" us at "+core.Utoa(freq)+" Hz")
	}
	return uint32(ticks), nil
}

// MicrosecondsFromTicks converts ticks at the cached frequency.
func (d *Driver) MicrosecondsFromTicks(ticks uint32) uint64 {
	freq := d.freq.Load()
	if freq == 0 {
		return 0
	}
	return uint64(ticks) * 1000000 / uint64(freq)
}

// Expiries returns how many compare interrupts have been handled. It wraps
// at 2^32.
func (d *Driver) Expiries() uint32 {
	return d.fired.Load()
}

// Unit returns the configured instance number.
func (d *Driver) Unit() uint8 {
	return d.cfg.Unit
}

// State returns the lifecycle state.
func (d *Driver) State() State {
	return State(d.state.Load())
}

// HandleInterrupt is the ISR body. Like the interrupt line it only acts on
// OF1 while OF1IE is set. It acknowledges the flag and installs a staged
// top before dispatching, so the callback sees the top it was set with and
// an expiry raised during the callback is not lost.
func (d *Driver) HandleInterrupt() {
	if !d.initialized || !d.hw.InterruptEnabled() || !d.hw.PendingInterrupt() {
		return
	}
	running := d.state.CompareAndSwap(uint32(StateRunning), uint32(StateExpiredPendingAck))
	d.hw.ClearPendingInterrupt()
	d.fired.Add(1)

	a := d.alarm.Load()
	if top := d.staged.Swap(0); top != 0 {
		// The counter has just restarted, so the OCR1 write costs nothing
		d.hw.SetReloadValue(top)
		if a == nil {
			d.hw.SetInterruptEnabled(false)
		}
	}
	if a != nil {
		a.fn(a.ctx)
	}
	if running {
		d.state.CompareAndSwap(uint32(StateExpiredPendingAck), uint32(StateRunning))
	}

	var present uint32
	if a != nil {
		present = 1
	}
	core.RecordEvent(core.EvtTimerExpire, d.cfg.Unit, present, 0)
}
