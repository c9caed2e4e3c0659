//go:build !tinygo

package core

// hardware stands in for the physical address space on regular Go.
var hardware = NewMemoryRegisters()

// Hardware returns the register file for the physical address space.
// On regular Go this is a shared RAM-backed file (for testing).
func Hardware() RegisterFile {
	return hardware
}
