package bitknit

import "testing"

func TestRotateMagicToFrontMovesFieldToBottom(t *testing.T) {
	// bits [15:18) hold 3, bits [18:21) hold 5; after rotating by 15 the
	// 3 should land at the bottom and 5, which sits above the extracted
	// field, should stay at [18:21).
	magic := uint64(3<<15 | 5<<18)
	got := rotateMagicToFront(magic, 15)
	if got&7 != 3 {
		t.Fatalf("rotated bottom nibble = %d, want 3", got&7)
	}
	if (got>>18)&7 != 5 {
		t.Fatalf("rotated bits[18:21) = %d, want 5", (got>>18)&7)
	}
}

func TestRotateMagicToFrontNoOpOutOfRange(t *testing.T) {
	magic := uint64(0xdeadbeef)
	if got := rotateMagicToFront(magic, 64); got != magic {
		t.Fatalf("rotate(shift=64) = %#x, want unchanged %#x", got, magic)
	}
}

// forceSymbol rigs a freqTable so decodeSymbol always returns sym,
// regardless of the rdx it's given.
func forceSymbol(t *freqTable, sym int) {
	for i := 0; i <= sym; i++ {
		t.freq[i] = 0
	}
	for i := sym + 1; i <= t.size; i++ {
		t.freq[i] = rangeTotal
	}
	t.rebuildQuick()
}

// TestDecodeDistanceLongMatchCacheSwap exercises decodeDistance's
// dist_symbol >= 8 branch end to end: it rigs the distance and
// extra-distance tables to force a fixed symbol and extra bits, then
// checks the resulting cache mutation is a genuine two-slot swap using
// the same 3*dist_symbol rotate shift the dist_symbol < 8 branch uses,
// not a fixed shift or a self-cancelling assignment.
func TestDecodeDistanceLongMatchCacheSwap(t *testing.T) {
	d := &decoder{
		src:           make([]byte, 64), // zero bytes; only consumed if a refill is needed
		distance:      newFreqTable(distanceTableSize, distanceQuickShift),
		extraDistance: newFreqTable(extraDistanceTableSize, distanceQuickShift),
		distanceCache: [8]int32{1, 2, 3, 4, 5, 6, 7, 8},
		magic:         0x158000,
	}
	forceSymbol(d.distance, 8)      // distSymbol = 8, extraBits = 8&0xF = 8
	forceSymbol(d.extraDistance, 0) // extraSymbol = 0

	d.rangeValue = 0x7FFF0000
	d.baseValue = 0x7FFF000A // low byte 10 -> "extra" = 10 once shifted into place

	dist, err := d.decodeDistance()
	if err != nil {
		t.Fatalf("decodeDistance: %v", err)
	}
	if dist != 8481 {
		t.Fatalf("dist = %d, want 8481", dist)
	}

	// rotateMagicToFront(0x158000, shift=24) places oldIdx=3, newIdx=5
	// at bit offsets 0x12 and 0x15.
	if d.distanceCache[3] != 8481 {
		t.Fatalf("distanceCache[3] = %d, want 8481 (the new distance)", d.distanceCache[3])
	}
	if d.distanceCache[5] != 4 {
		t.Fatalf("distanceCache[5] = %d, want 4 (the value swapped out of slot 3)", d.distanceCache[5])
	}
	if d.distanceCache[3] == d.distanceCache[5] {
		t.Fatal("cache swap was a no-op: slots 3 and 5 hold the same value")
	}
}

func TestDecodeShortDistanceCacheLookup(t *testing.T) {
	d := &decoder{
		src:           make([]byte, 64),
		distance:      newFreqTable(distanceTableSize, distanceQuickShift),
		extraDistance: newFreqTable(extraDistanceTableSize, distanceQuickShift),
		distanceCache: [8]int32{10, 20, 30, 40, 50, 60, 70, 80},
		magic:         0, // nibble at shift 3*3 = 9 is bit[9:12) = 0 -> cache[0]
	}
	forceSymbol(d.distance, 3) // distSymbol = 3, well under 8
	d.rangeValue = 0x7FFF0000
	d.baseValue = 0x7FFF0000

	dist, err := d.decodeDistance()
	if err != nil {
		t.Fatalf("decodeDistance: %v", err)
	}
	if dist != 10 {
		t.Fatalf("dist = %d, want 10 (distanceCache[0])", dist)
	}
}

func TestDecodeEmptyBlockIsImmediate(t *testing.T) {
	out, err := Decode(nil, 0)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty output, got %d bytes", len(out))
	}
}

func TestDecodeFailsOnExhaustedInput(t *testing.T) {
	if _, err := Decode([]byte{0x01}, 16); err == nil {
		t.Fatal("expected an error decoding from a truncated block")
	}
}
