package core

// utoa converts an unsigned integer to a string without using fmt.
// This is a lightweight alternative for embedded systems
func utoa(n uint32) string {
	if n == 0 {
		return "0"
	}

	var buf [10]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[pos:])
}

// Utoa is the exported form of utoa for packages that avoid fmt.
func Utoa(n uint32) string {
	return utoa(n)
}

const hexDigits = "0123456789ABCDEF"

// Hex32 formats n as 0x-prefixed, zero-padded, upper-case hex.
func Hex32(n uint32) string {
	var buf [10]byte
	buf[0] = '0'
	buf[1] = 'x'
	for i := 9; i >= 2; i-- {
		buf[i] = hexDigits[n&0xF]
		n >>= 4
	}
	return string(buf[:])
}
