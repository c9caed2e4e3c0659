//go:build tinygo

package core

import (
	"runtime/volatile"
	"unsafe"
)

// mmio accesses registers directly at their physical address.
type mmio struct{}

func (mmio) Load32(addr uintptr) uint32 {
	return volatile.LoadUint32((*uint32)(unsafe.Pointer(addr)))
}

func (mmio) Store32(addr uintptr, value uint32) {
	volatile.StoreUint32((*uint32)(unsafe.Pointer(addr)), value)
}

// Hardware returns the register file for the physical address space.
func Hardware() RegisterFile {
	return mmio{}
}
