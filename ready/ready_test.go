package ready

import "testing"

func TestReadyAccumulates(t *testing.T) {
	var r Ready
	r |= Readable
	r |= Writable
	if !r.Readable() || !r.Writable() {
		t.Fatalf("expected both directions set, got %b", r)
	}
}

func TestDirectionMasksDisjoint(t *testing.T) {
	if Read.Mask()&Write.Mask() != 0 {
		t.Fatalf("read and write masks overlap: %b", Read.Mask()&Write.Mask())
	}
}

func TestDirectionalClearLeavesOtherDirection(t *testing.T) {
	r := Readable | ReadClosed | Writable | WriteCanceled
	r &^= Read.Mask()
	if r.Readable() {
		t.Errorf("read bits survived clear: %b", r)
	}
	if !r.Writable() {
		t.Errorf("write bits lost on read clear: %b", r)
	}
	if r&WriteCanceled == 0 {
		t.Errorf("write cancel bit lost on read clear: %b", r)
	}
}

func TestCancelMask(t *testing.T) {
	if Read.CancelMask() != ReadCanceled {
		t.Errorf("read cancel mask = %b", Read.CancelMask())
	}
	if Write.CancelMask() != WriteCanceled {
		t.Errorf("write cancel mask = %b", Write.CancelMask())
	}
	if !(ReadCanceled | WriteCanceled).IsCanceled() {
		t.Error("canceled bits not detected")
	}
}

func TestClosedCountsAsReady(t *testing.T) {
	if !(ReadClosed).Readable() {
		t.Error("read-closed must read as readable so pollers observe EOF")
	}
	if !(WriteClosed).Writable() {
		t.Error("write-closed must read as writable so pollers observe the error")
	}
}
