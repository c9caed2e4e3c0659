package clock

import (
	"strings"

	"clocktimer/core"
)

// ResolvedFrequency is the result of one resolution. It is computed on every
// call; caching belongs to the caller.
type ResolvedFrequency struct {
	Root     string
	Source   string   // Terminal oscillator, PLL or PFD
	SourceHz uint32   // Terminal frequency before dividers
	Hz       uint32   // Frequency reaching the peripheral
	Dividers []uint32 // Post-dividers, peripheral first
	Path     []string // Nodes walked, peripheral first
}

func (f ResolvedFrequency) String() string {
	divs := make([]string, len(f.Dividers))
	for i, d := range f.Dividers {
		divs[i] = core.Utoa(d)
	}
	return f.Root + ": " + core.Utoa(f.Hz) + " Hz (" + f.Source + " " + core.Utoa(f.SourceHz) +
		" Hz / [" + strings.Join(divs, " ") + "]) via " + strings.Join(f.Path, " <- ")
}

// Resolver computes peripheral clock frequencies from the live clock
// controller registers. It only reads registers and holds no mutable state,
// so one Resolver may be shared by any number of drivers.
type Resolver struct {
	regs RegisterReader
}

// NewResolver returns a resolver reading from regs.
func NewResolver(regs RegisterReader) *Resolver {
	return &Resolver{regs: regs}
}

// Resolve walks the tree from root to its source and applies every divider
// collected on the way. A path the tree does not model returns an error
// wrapping ErrUnresolvedClockPath; a zero frequency is never returned.
func (r *Resolver) Resolve(root Root) (ResolvedFrequency, error) {
	w := &walker{regs: r.regs}
	w.step(root.Name)
	for _, d := range root.Dividers {
		w.divide(d)
	}

	sourceHz, err := w.visit(root.Mux)
	if err != nil {
		return ResolvedFrequency{}, core.PrefixError("resolve "+root.Name, err)
	}

	hz := ApplyDividers(sourceHz, w.dividers)
	if hz == 0 {
		return ResolvedFrequency{}, core.PrefixError("resolve "+root.Name,
			core.WrapError(ErrUnresolvedClockPath, w.source+" divided to 0 Hz"))
	}

	return ResolvedFrequency{
		Root:     root.Name,
		Source:   w.source,
		SourceHz: sourceHz,
		Hz:       hz,
		Dividers: w.dividers,
		Path:     w.path,
	}, nil
}

// Frequency is Resolve reduced to the frequency in Hz.
func (r *Resolver) Frequency(root Root) (uint32, error) {
	res, err := r.Resolve(root)
	if err != nil {
		return 0, err
	}
	return res.Hz, nil
}
