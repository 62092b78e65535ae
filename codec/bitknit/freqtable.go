package bitknit

// freqTable is an adaptive cumulative-frequency model shared by the
// literal, distance and extra-distance alphabets (§4.1). freq has
// size+1 entries; freq[0] == 0 and freq[size] == rangeTotal always
// hold between rebalances. adjust accumulates per-symbol occurrence
// deltas that are folded in at the next rebalance.
type freqTable struct {
	size       int
	freq       []uint32
	adjust     []uint32
	counter    int32
	quickShift uint
	quick      []uint16
}

func newFreqTable(size int, quickShift uint) *freqTable {
	t := &freqTable{
		size:       size,
		freq:       make([]uint32, size+1),
		adjust:     make([]uint32, size),
		counter:    reloadCount,
		quickShift: quickShift,
		quick:      make([]uint16, (rangeTotal>>quickShift)+1),
	}
	t.resetUniform()
	return t
}

// resetUniform distributes the full range evenly across every symbol,
// the initial state of a freshly seeded table before any symbol has
// been observed.
func (t *freqTable) resetUniform() {
	for i := 0; i <= t.size; i++ {
		t.freq[i] = uint32(i) * rangeTotal / uint32(t.size)
	}
	for i := range t.adjust {
		t.adjust[i] = 0
	}
	t.counter = reloadCount
	t.rebuildQuick()
}

func (t *freqTable) rebuildQuick() {
	sym := 0
	for b := range t.quick {
		rdx := uint32(b) << t.quickShift
		if rdx > rangeTotal-1 {
			rdx = rangeTotal - 1
		}
		for sym+1 < t.size && rdx >= t.freq[sym+1] {
			sym++
		}
		t.quick[b] = uint16(sym)
	}
}

// decodeSymbol resolves rdx (a 15-bit range value) to the symbol
// whose [freq[symbol], freq[symbol+1]) interval contains it, using
// the quick-lookup table as a starting guess and then applying the
// required two-sided correction (§4.1: "quick-lookup may overshoot").
func (t *freqTable) decodeSymbol(rdx uint32) int {
	b := rdx >> t.quickShift
	if int(b) >= len(t.quick) {
		b = uint32(len(t.quick) - 1)
	}
	symbol := int(t.quick[b])
	for symbol+1 < t.size && rdx >= t.freq[symbol+1] {
		symbol++
	}
	for symbol > 0 && rdx < t.freq[symbol] {
		symbol--
	}
	return symbol
}

// observe records one occurrence of symbol, rebalancing the table
// once its countdown reaches zero.
func (t *freqTable) observe(symbol int) {
	a := t.adjust[symbol] + adjustIncrement
	if a > adjustClamp {
		a = adjustClamp
	}
	t.adjust[symbol] = a
	t.counter--
	if t.counter <= 0 {
		t.rebalance()
	}
}

// rebalance normalizes cumulative frequencies so freq[size] ==
// rangeTotal again, biased by the accumulated adjust deltas since the
// last rebalance, then clears adjust and reloads the countdown
// (§4.1). Every symbol keeps a floor count of 1 so no symbol ever
// becomes undecodable.
func (t *freqTable) rebalance() {
	counts := make([]uint32, t.size)
	var total uint64
	for i := 0; i < t.size; i++ {
		c := (t.freq[i+1] - t.freq[i]) + t.adjust[i]
		if c == 0 {
			c = 1
		}
		counts[i] = c
		total += uint64(c)
	}

	scaled := make([]uint32, t.size)
	var scaledTotal uint64
	for i, c := range counts {
		s := uint32(uint64(c) * uint64(rangeTotal) / total)
		if s == 0 {
			s = 1
		}
		scaled[i] = s
		scaledTotal += uint64(s)
	}
	// Fix rounding drift on the largest bucket so the cumulative total
	// lands exactly on rangeTotal.
	if diff := int64(rangeTotal) - int64(scaledTotal); diff != 0 {
		largest := 0
		for i := 1; i < t.size; i++ {
			if scaled[i] > scaled[largest] {
				largest = i
			}
		}
		v := int64(scaled[largest]) + diff
		if v < 1 {
			v = 1
		}
		scaled[largest] = uint32(v)
	}

	t.freq[0] = 0
	for i := 0; i < t.size; i++ {
		t.freq[i+1] = t.freq[i] + scaled[i]
	}
	// Final cumulative value must be exactly rangeTotal; guard against
	// any residual drift from the floor-of-1 clamp above.
	t.freq[t.size] = rangeTotal

	for i := range t.adjust {
		t.adjust[i] = 0
	}
	t.counter = reloadCount
	t.rebuildQuick()
}
