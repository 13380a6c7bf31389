// Package checksum implements the footer algorithms the preset formats use.
// The algorithm for a given schema version is selected by its layout
// descriptor, not hard-coded here.
package checksum

import "fmt"

// Algorithm enumerates supported footer algorithms.
type Algorithm string

const (
	Sum16 Algorithm = "sum16"      // byte sum modulo 65536
	XOR8  Algorithm = "xor8"       // running XOR, stored in the low byte
	CRC16 Algorithm = "crc16-ccitt" // CRC-16/CCITT-FALSE
)

// Valid reports whether a is a known algorithm tag.
func (a Algorithm) Valid() bool {
	switch a {
	case Sum16, XOR8, CRC16:
		return true
	}
	return false
}

// Compute returns the checksum of data under algorithm a.
func Compute(a Algorithm, data []byte) (uint16, error) {
	switch a {
	case Sum16:
		var sum uint16
		for _, b := range data {
			sum += uint16(b)
		}
		return sum, nil
	case XOR8:
		var x byte
		for _, b := range data {
			x ^= b
		}
		return uint16(x), nil
	case CRC16:
		return crc16CCITT(data), nil
	default:
		return 0, fmt.Errorf("unknown checksum algorithm %q", a)
	}
}

// crc16Table is the CRC-16/CCITT-FALSE lookup table (poly 0x1021).
var crc16Table = makeCRC16Table()

func makeCRC16Table() [256]uint16 {
	var table [256]uint16
	for i := 0; i < 256; i++ {
		crc := uint16(i) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
		table[i] = crc
	}
	return table
}

// crc16CCITT computes CRC-16/CCITT-FALSE: poly 0x1021, init 0xFFFF, no
// reflection, no final XOR.
func crc16CCITT(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc = crc<<8 ^ crc16Table[byte(crc>>8)^b]
	}
	return crc
}
