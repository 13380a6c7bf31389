package analyze

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func TestAnalyzeEmpty(t *testing.T) {
	r := Analyze(nil)
	if r.Size != 0 || r.Signature != nil || len(r.Strings) != 0 {
		t.Fatalf("empty input produced %+v", r)
	}
}

func TestAnalyzeSignatureAndStrings(t *testing.T) {
	data := append([]byte("GP5\x00\x01\x20\x00\x00"), make([]byte, 8)...)
	data = append(data, []byte("Blues Lead")...)
	data = append(data, 0x00, 0x7F, 0x02, 'a', 'b', 'c') // run below minimum

	r := Analyze(data)
	if r.Size != len(data) {
		t.Errorf("size = %d, want %d", r.Size, len(data))
	}
	if !bytes.Equal(r.Signature, data[:8]) {
		t.Errorf("signature = % X", r.Signature)
	}
	if len(r.Strings) != 1 {
		t.Fatalf("strings = %v, want exactly the name", r.Strings)
	}
	if r.Strings[0].Text != "Blues Lead" || r.Strings[0].Offset != 16 {
		t.Errorf("got %q at %d", r.Strings[0].Text, r.Strings[0].Offset)
	}
}

func TestAnalyzeStringAtEndOfBuffer(t *testing.T) {
	r := Analyze([]byte("\x00\x00tail"))
	if len(r.Strings) != 1 || r.Strings[0].Text != "tail" || r.Strings[0].Offset != 2 {
		t.Fatalf("strings = %v", r.Strings)
	}
}

func TestAnalyzeDistribution(t *testing.T) {
	r := Analyze([]byte{0x00, 0x00, 0x10, 0x20, 0x30, 0x00})
	d := r.Distribution
	if d.Min != 0x10 || d.Max != 0x30 {
		t.Errorf("min/max = %02X/%02X", d.Min, d.Max)
	}
	if d.Mean != 0x20 {
		t.Errorf("mean = %v", d.Mean)
	}
	if d.NullCount != 3 || d.NullFraction != 0.5 {
		t.Errorf("nulls = %d (%v)", d.NullCount, d.NullFraction)
	}
}

func TestAnalyzeAllNulls(t *testing.T) {
	d := Analyze(make([]byte, 16)).Distribution
	if d.Min != 0 || d.Max != 0 || d.Mean != 0 || d.NullFraction != 1 {
		t.Errorf("all-null distribution = %+v", d)
	}
}

func TestAnalyzeSectionBoundaries(t *testing.T) {
	data := []byte{0xAA, 0, 0, 0, 0, 0xBB, 0xCC, 0, 0, 0xDD}
	h := Analyze(data).Hints
	// Four nulls before 0xBB qualify; two nulls before 0xDD do not.
	if !reflect.DeepEqual(h.SectionBoundaries, []int{5}) {
		t.Errorf("boundaries = %v", h.SectionBoundaries)
	}
	if h.ChecksumOffset != len(data)-2 {
		t.Errorf("checksum offset = %d", h.ChecksumOffset)
	}
}

func TestAnalyzeHeaderSizeGuess(t *testing.T) {
	// Dense 64-byte header followed by sparse body.
	data := make([]byte, 256)
	for i := 0; i < 64; i++ {
		data[i] = byte(i + 1)
	}
	if got := Analyze(data).Hints.HeaderSize; got != 64 {
		t.Errorf("header size guess = %d, want 64", got)
	}
}

func TestCompareIdentical(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	c := Compare(data, data)
	if len(c.Diffs) != 0 || c.Similarity != 100 {
		t.Fatalf("self-compare: %d diffs, %.1f%%", len(c.Diffs), c.Similarity)
	}
}

func TestCompareReportsOffsets(t *testing.T) {
	a := []byte{1, 2, 3, 4}
	b := []byte{1, 9, 3, 4}
	c := Compare(a, b)
	if len(c.Diffs) != 1 {
		t.Fatalf("diffs = %v", c.Diffs)
	}
	d := c.Diffs[0]
	if d.Offset != 1 || d.A != 2 || d.B != 9 {
		t.Errorf("diff = %+v", d)
	}
	if c.Similarity != 75 {
		t.Errorf("similarity = %v, want 75", c.Similarity)
	}
}

func TestCompareLengthMismatch(t *testing.T) {
	c := Compare([]byte{1, 2}, []byte{1, 2, 3, 4})
	if len(c.Diffs) != 2 {
		t.Fatalf("diffs = %v", c.Diffs)
	}
	if c.Diffs[0].Offset != 2 || c.Diffs[0].A != 0 || c.Diffs[0].B != 3 {
		t.Errorf("first length diff = %+v", c.Diffs[0])
	}
	if c.Similarity != 50 {
		t.Errorf("similarity = %v, want 50", c.Similarity)
	}
}

func TestCompareEmpty(t *testing.T) {
	c := Compare(nil, nil)
	if len(c.Diffs) != 0 || c.Similarity != 100 {
		t.Fatalf("empty compare: %+v", c)
	}
}

func TestFindPatternOverlapping(t *testing.T) {
	data := make([]byte, 24)
	copy(data[4:], []byte{0xAA, 0xBB})
	copy(data[20:], []byte{0xAA, 0xBB})
	got := FindPattern(data, []byte{0xAA, 0xBB})
	if !reflect.DeepEqual(got, []int{4, 20}) {
		t.Errorf("offsets = %v, want [4 20]", got)
	}

	// Self-overlapping pattern: every start counts.
	got = FindPattern([]byte{0, 0, 0, 0}, []byte{0, 0})
	if !reflect.DeepEqual(got, []int{0, 1, 2}) {
		t.Errorf("overlapping offsets = %v, want [0 1 2]", got)
	}
}

func TestFindPatternDegenerate(t *testing.T) {
	if got := FindPattern([]byte{1, 2}, nil); got != nil {
		t.Errorf("empty pattern matched at %v", got)
	}
	if got := FindPattern([]byte{1}, []byte{1, 2}); got != nil {
		t.Errorf("long pattern matched at %v", got)
	}
	if got := FindPattern([]byte{1, 2, 3}, []byte{9}); got != nil {
		t.Errorf("absent pattern matched at %v", got)
	}
}

func TestDumpFormatsLine(t *testing.T) {
	out := Dump([]byte("GP5\x00ABCDEFGHIJKL"))
	if !strings.HasPrefix(out, "00000000  ") {
		t.Errorf("missing offset column: %q", out)
	}
	if !strings.Contains(out, "4750 3500") {
		t.Errorf("hex pairs missing: %q", out)
	}
	if !strings.Contains(out, "GP5.ABCDEFGHIJKL") {
		t.Errorf("ascii column missing: %q", out)
	}
}

func TestDumpAroundMarksTarget(t *testing.T) {
	data := make([]byte, 64)
	out := DumpAround(data, 0x22, 1)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("want 3 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[1], "<- 0x0022") {
		t.Errorf("target line not marked: %q", lines[1])
	}
	if strings.Contains(lines[0], "<-") || strings.Contains(lines[2], "<-") {
		t.Error("context lines carry the marker")
	}
}

func TestDumpAroundClampsAtEdges(t *testing.T) {
	data := make([]byte, 20)
	out := DumpAround(data, 0, 2)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("want 2 lines near start, got %d", len(lines))
	}
	if DumpAround(data, 100, 1) != "" {
		t.Error("out-of-range offset produced output")
	}
}

func TestDumpComparisonFlagsDiffRows(t *testing.T) {
	a := make([]byte, 32)
	b := make([]byte, 32)
	b[20] = 0xFF
	out := DumpComparison(a, b)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("want 2 rows, got %d", len(lines))
	}
	if strings.Contains(lines[0], "DIFF") {
		t.Errorf("identical row flagged: %q", lines[0])
	}
	if !strings.Contains(lines[1], "DIFF") {
		t.Errorf("differing row not flagged: %q", lines[1])
	}
}
