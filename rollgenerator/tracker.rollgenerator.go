package rollgenerator

// noteTracker holds the open onset of every slot during one track scan.
type noteTracker struct {
	open   [MaxSlot + 1]int64
	isOpen [MaxSlot + 1]bool
}

// Open records an onset. An onset already open on the slot is replaced.
func (t *noteTracker) Open(slot Slot, tick int64) {
	if slot < 0 || slot > MaxSlot {
		return
	}
	t.open[slot] = tick
	t.isOpen[slot] = true
}

// Close ends the span on slot. It reports false when nothing was open.
func (t *noteTracker) Close(slot Slot, tick int64) (Interval, bool) {
	if slot < 0 || slot > MaxSlot || !t.isOpen[slot] {
		return Interval{}, false
	}
	t.isOpen[slot] = false
	return Interval{Slot: slot, OnTick: t.open[slot], OffTick: tick}, true
}

// Pending counts slots still open, which end up unrendered.
func (t *noteTracker) Pending() int {
	n := 0
	for _, o := range t.isOpen {
		if o {
			n++
		}
	}
	return n
}
