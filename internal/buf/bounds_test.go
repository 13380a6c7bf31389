package buf

import (
	"math"
	"testing"
)

func TestAddOverflowSafe(t *testing.T) {
	if sum, ok := AddOverflowSafe(10, 5); !ok || sum != 15 {
		t.Fatalf("AddOverflowSafe(10,5)=%d,%v want 15,true", sum, ok)
	}
	if _, ok := AddOverflowSafe(math.MaxInt, 1); ok {
		t.Fatalf("expected overflow when adding to MaxInt")
	}
	if _, ok := AddOverflowSafe(math.MinInt, -1); ok {
		t.Fatalf("expected underflow when subtracting from MinInt")
	}
}

func TestMulOverflowSafe(t *testing.T) {
	if got, ok := MulOverflowSafe(255, 4); !ok || got != 1020 {
		t.Fatalf("MulOverflowSafe(255,4)=%d,%v want 1020,true", got, ok)
	}
	if got, ok := MulOverflowSafe(0, math.MaxInt); !ok || got != 0 {
		t.Fatalf("zero multiplier should never overflow")
	}
	if _, ok := MulOverflowSafe(math.MaxInt, 2); ok {
		t.Fatalf("expected overflow for MaxInt*2")
	}
}

func TestCheckListBounds(t *testing.T) {
	// A 4-effect section of 4-byte headers at offset 8 in a 64-byte buffer.
	end, err := CheckListBounds(64, 8, 4, 4)
	if err != nil || end != 24 {
		t.Fatalf("CheckListBounds = %d, %v; want 24, nil", end, err)
	}
	if _, err := CheckListBounds(16, 8, 4, 4); err == nil {
		t.Fatalf("expected bounds error for section past buffer end")
	}
	if _, err := CheckListBounds(64, -1, 1, 1); err == nil {
		t.Fatalf("expected error for negative offset")
	}
	if _, err := CheckListBounds(64, 0, -1, 1); err == nil {
		t.Fatalf("expected error for negative count")
	}
	if _, err := CheckListBounds(math.MaxInt, 0, math.MaxInt, 2); err == nil {
		t.Fatalf("expected overflow error for huge count")
	}
}

func TestSliceAndHas(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4}
	if got, ok := Slice(data, 1, 3); !ok || len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("Slice returned unexpected result: %v, %v", got, ok)
	}
	if _, ok := Slice(data, 4, 2); ok {
		t.Fatalf("Slice should fail when extending beyond len")
	}
	if Has(data, 2, 4) {
		t.Fatalf("Has should be false for out-of-bounds range")
	}
	if !Has(data, 2, 1) {
		t.Fatalf("Has should be true for valid range")
	}
	if _, ok := Slice(data, -1, 1); ok {
		t.Fatalf("Slice should reject negative offset")
	}
	if _, ok := Slice(data, 1, -1); ok {
		t.Fatalf("Slice should reject negative length")
	}
}
