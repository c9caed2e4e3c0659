package clock

// RegisterReader is the read side of a register file. core.RegisterFile and
// Snapshot both satisfy it.
type RegisterReader interface {
	Load32(addr uintptr) uint32
}

// Field names one bit-field inside a clock-control register: a mux select
// or a post-divider. Fields are defined once as package variables and never
// modified.
type Field struct {
	Name  string
	Addr  uintptr
	Shift uint8
	Width uint8
}

// Mask returns the unshifted field mask.
func (f Field) Mask() uint32 {
	return 1<<f.Width - 1
}

// Read decodes the field from the current register value.
func (f Field) Read(r RegisterReader) uint32 {
	return r.Load32(f.Addr) >> f.Shift & f.Mask()
}

// Divider decodes a divider field. A register value of N divides by N+1.
func (f Field) Divider(r RegisterReader) uint32 {
	return f.Read(r) + 1
}

// Encode places v into the field position, for building register values.
func (f Field) Encode(v uint32) uint32 {
	return (v & f.Mask()) << f.Shift
}
