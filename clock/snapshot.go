package clock

import "sort"

// Snapshot is a frozen copy of clock controller registers, keyed by
// absolute address. It lets the resolver run off-target on register dumps.
type Snapshot map[uintptr]uint32

// Load32 implements RegisterReader. Registers missing from the snapshot
// read as zero.
func (s Snapshot) Load32(addr uintptr) uint32 {
	return s[addr]
}

// Store32 lets tests build a snapshot through the same interface as a
// register file.
func (s Snapshot) Store32(addr uintptr, value uint32) {
	s[addr] = value
}

// CaptureSnapshot copies every register in TreeRegisters from regs.
func CaptureSnapshot(regs RegisterReader) Snapshot {
	s := make(Snapshot, len(TreeRegisters()))
	for _, addr := range TreeRegisters() {
		s[addr] = regs.Load32(addr)
	}
	return s
}

// Addresses returns the snapshot's addresses in ascending order.
func (s Snapshot) Addresses() []uintptr {
	out := make([]uintptr, 0, len(s))
	for addr := range s {
		out = append(out, addr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
