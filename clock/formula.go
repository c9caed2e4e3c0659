package clock

import "math"

// PLLEncoding is one decoded PLL register setting.
type PLLEncoding interface {
	Frequency() (uint32, error)
}

// IntegerRatio is a PLL whose output is BaseHz * DivSelect / Divisor.
type IntegerRatio struct {
	BaseHz    uint32
	DivSelect uint32
	Divisor   uint32
}

func (p IntegerRatio) Frequency() (uint32, error) {
	return IntegerRatioHz(p.BaseHz, p.DivSelect, p.Divisor)
}

// FixedTable is a PLL whose DivSelect picks one of two fixed frequencies.
type FixedTable struct {
	DivSelect uint32
	Table     [2]uint32
}

func (p FixedTable) Frequency() (uint32, error) {
	return FixedTableHz(p.DivSelect, p.Table)
}

// Fractional is a PLL whose output is BaseHz * (DivSelect + Num/Denom).
type Fractional struct {
	BaseHz    uint32
	DivSelect uint32
	Num       uint32
	Denom     uint32
}

func (p Fractional) Frequency() (uint32, error) {
	return FractionalHz(p.BaseHz, p.DivSelect, p.Num, p.Denom)
}

func narrow(hz uint64) (uint32, error) {
	if hz > math.MaxUint32 {
		return 0, ErrUnsupportedEncoding
	}
	return uint32(hz), nil
}

// IntegerRatioHz computes baseHz * divSelect / fixedDivisor with truncating
// division, the same value the hardware documentation gives.
func IntegerRatioHz(baseHz, divSelect, fixedDivisor uint32) (uint32, error) {
	if fixedDivisor == 0 {
		return 0, ErrDivisionByZero
	}
	return narrow(uint64(baseHz) * uint64(divSelect) / uint64(fixedDivisor))
}

// FixedTableHz returns table[divSelect].
func FixedTableHz(divSelect uint32, table [2]uint32) (uint32, error) {
	if divSelect >= uint32(len(table)) {
		return 0, ErrUnsupportedEncoding
	}
	return table[divSelect], nil
}

// FractionalHz computes baseHz * (divSelect + num/denom) as
// baseHz*divSelect + baseHz*num/denom on 64-bit intermediates, truncating
// once at the end of the fractional term.
func FractionalHz(baseHz, divSelect, num, denom uint32) (uint32, error) {
	if denom == 0 {
		return 0, ErrDivisionByZero
	}
	integer := uint64(baseHz) * uint64(divSelect)
	frac := uint64(baseHz) * uint64(num) / uint64(denom)
	return narrow(integer + frac)
}

// PFD fractional divider limits. Output is pll * 18 / frac.
const (
	pfdMultiplier = 18
	pfdFracMin    = 12
	pfdFracMax    = 35
)

// PFDHz computes the output of a phase fractional divider fed by pllHz.
func PFDHz(pllHz, frac uint32) (uint32, error) {
	if frac == 0 {
		return 0, ErrDivisionByZero
	}
	if frac < pfdFracMin || frac > pfdFracMax {
		return 0, ErrUnsupportedEncoding
	}
	return IntegerRatioHz(pllHz, pfdMultiplier, frac)
}
