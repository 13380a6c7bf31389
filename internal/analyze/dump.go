package analyze

import (
	"fmt"
	"strings"
)

const dumpWidth = 16

// Dump renders data as a classic hex dump: offset column, hex bytes grouped
// in pairs, ASCII column. Non-printable bytes render as '.'.
func Dump(data []byte) string {
	var b strings.Builder
	for off := 0; off < len(data); off += dumpWidth {
		end := off + dumpWidth
		if end > len(data) {
			end = len(data)
		}
		writeDumpLine(&b, data[off:end], off, "")
	}
	return b.String()
}

// DumpAround renders the lines surrounding offset, marking the line that
// contains it. contextLines counts lines on each side.
func DumpAround(data []byte, offset, contextLines int) string {
	if len(data) == 0 || offset < 0 || offset >= len(data) {
		return ""
	}
	target := offset / dumpWidth
	first := target - contextLines
	if first < 0 {
		first = 0
	}
	last := target + contextLines

	var b strings.Builder
	for line := first; line <= last; line++ {
		off := line * dumpWidth
		if off >= len(data) {
			break
		}
		end := off + dumpWidth
		if end > len(data) {
			end = len(data)
		}
		marker := ""
		if line == target {
			marker = fmt.Sprintf("  <- 0x%04X", offset)
		}
		writeDumpLine(&b, data[off:end], off, marker)
	}
	return b.String()
}

// DumpComparison renders a and b side by side, one dump line per row,
// flagging rows whose bytes disagree. Rows past the shorter buffer always
// disagree.
func DumpComparison(a, b []byte) string {
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	var out strings.Builder
	for off := 0; off < longest; off += dumpWidth {
		la := sliceLine(a, off)
		lb := sliceLine(b, off)
		marker := "    "
		if !linesEqual(la, lb) {
			marker = "DIFF"
		}
		fmt.Fprintf(&out, "%08X  %-*s %s %-*s\n",
			off, dumpWidth*3, hexCells(la), marker, dumpWidth*3, hexCells(lb))
	}
	return out.String()
}

func sliceLine(data []byte, off int) []byte {
	if off >= len(data) {
		return nil
	}
	end := off + dumpWidth
	if end > len(data) {
		end = len(data)
	}
	return data[off:end]
}

func linesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func writeDumpLine(b *strings.Builder, line []byte, off int, marker string) {
	fmt.Fprintf(b, "%08X  ", off)
	for i := 0; i < dumpWidth; i++ {
		if i < len(line) {
			fmt.Fprintf(b, "%02X", line[i])
		} else {
			b.WriteString("  ")
		}
		if i%2 == 1 {
			b.WriteByte(' ')
		}
	}
	b.WriteByte(' ')
	for _, c := range line {
		if c >= 0x20 && c <= 0x7E {
			b.WriteByte(c)
		} else {
			b.WriteByte('.')
		}
	}
	b.WriteString(marker)
	b.WriteByte('\n')
}

func hexCells(line []byte) string {
	var b strings.Builder
	for _, c := range line {
		fmt.Fprintf(&b, "%02X ", c)
	}
	return b.String()
}
