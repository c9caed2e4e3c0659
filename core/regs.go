package core

import "sync"

// RegisterFile is the access path to memory-mapped peripheral registers.
//
// On TinyGo targets it is backed by volatile loads and stores at the
// physical address. On regular Go it is backed by MemoryRegisters or by a
// simulated peripheral, so driver code runs unchanged in host tests.
type RegisterFile interface {
	Load32(addr uintptr) uint32
	Store32(addr uintptr, value uint32)
}

// Register32 is a single 32-bit register inside a RegisterFile. Its helper
// set matches runtime/volatile.Register32.
type Register32 struct {
	rf   RegisterFile
	addr uintptr
}

// Reg32 returns the register at addr in rf.
func Reg32(rf RegisterFile, addr uintptr) Register32 {
	return Register32{rf: rf, addr: addr}
}

// Address returns the absolute register address.
func (r Register32) Address() uintptr {
	return r.addr
}

func (r Register32) Get() uint32 {
	return r.rf.Load32(r.addr)
}

func (r Register32) Set(value uint32) {
	r.rf.Store32(r.addr, value)
}

// SetBits performs a read-modify-write setting the bits in value.
func (r Register32) SetBits(value uint32) {
	r.Set(r.Get() | value)
}

// ClearBits performs a read-modify-write clearing the bits in value.
func (r Register32) ClearBits(value uint32) {
	r.Set(r.Get() &^ value)
}

// HasBits reports whether any of the bits in value are set.
func (r Register32) HasBits(value uint32) bool {
	return r.Get()&value != 0
}

// ReplaceBits replaces the field (mask << pos) with value.
func (r Register32) ReplaceBits(value uint32, mask uint32, pos uint8) {
	r.Set(r.Get()&^(mask<<pos) | (value&mask)<<pos)
}

// MemoryRegisters is a plain RAM-backed RegisterFile. Reads of addresses
// never written return zero.
type MemoryRegisters struct {
	mu   sync.RWMutex
	regs map[uintptr]uint32
}

// NewMemoryRegisters creates an empty register file.
func NewMemoryRegisters() *MemoryRegisters {
	return &MemoryRegisters{regs: make(map[uintptr]uint32)}
}

func (m *MemoryRegisters) Load32(addr uintptr) uint32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.regs[addr]
}

func (m *MemoryRegisters) Store32(addr uintptr, value uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.regs[addr] = value
}

// Len returns the number of registers that have been written.
func (m *MemoryRegisters) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.regs)
}
