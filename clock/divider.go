package clock

// ApplyDividers folds dividers into baseHz by successive truncating
// division, in the order given. Dividers decoded from registers are always
// at least 1; a stray 0 is treated as 1.
func ApplyDividers(baseHz uint32, dividers []uint32) uint32 {
	hz := baseHz
	for _, d := range dividers {
		if d > 1 {
			hz /= d
		}
	}
	return hz
}
