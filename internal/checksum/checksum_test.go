package checksum

import "testing"

func TestSum16(t *testing.T) {
	got, err := Compute(Sum16, []byte{0x01, 0x02, 0xFF})
	if err != nil || got != 0x0102 {
		t.Fatalf("Sum16 = 0x%04X, %v; want 0x0102", got, err)
	}
	// Wraps modulo 65536.
	big := make([]byte, 300)
	for i := range big {
		big[i] = 0xFF
	}
	got, _ = Compute(Sum16, big)
	if got != uint16(300*0xFF%0x10000) {
		t.Fatalf("Sum16 wrap = 0x%04X", got)
	}
}

func TestXOR8(t *testing.T) {
	got, err := Compute(XOR8, []byte{0xF0, 0x0F, 0xAA})
	if err != nil || got != 0x55 {
		t.Fatalf("XOR8 = 0x%04X, %v; want 0x55", got, err)
	}
	got, _ = Compute(XOR8, nil)
	if got != 0 {
		t.Fatalf("XOR8 of empty = 0x%04X", got)
	}
}

func TestCRC16CCITT(t *testing.T) {
	// Standard check value for CRC-16/CCITT-FALSE over "123456789".
	got, err := Compute(CRC16, []byte("123456789"))
	if err != nil || got != 0x29B1 {
		t.Fatalf("CRC16 = 0x%04X, %v; want 0x29B1", got, err)
	}
	got, _ = Compute(CRC16, nil)
	if got != 0xFFFF {
		t.Fatalf("CRC16 of empty = 0x%04X, want init value", got)
	}
}

func TestUnknownAlgorithm(t *testing.T) {
	if _, err := Compute(Algorithm("md5"), []byte{1}); err == nil {
		t.Fatalf("expected error for unknown algorithm")
	}
	if Algorithm("md5").Valid() {
		t.Fatalf("md5 should not be valid")
	}
	for _, a := range []Algorithm{Sum16, XOR8, CRC16} {
		if !a.Valid() {
			t.Fatalf("%s should be valid", a)
		}
	}
}
