// Package analyze inspects raw preset captures without assuming any layout.
// It exists for the reverse-engineering workflow: dump a capture, diff two
// captures that differ by one knob, and guess where the structure boundaries
// sit. Nothing here feeds the conversion pipeline.
package analyze

import "bytes"

const (
	// minStringRun is the shortest printable run worth reporting.
	minStringRun = 4
	// maxStrings caps the report so a text-heavy capture stays readable.
	maxStrings = 64
	// minNullRun is the shortest null run treated as a section boundary.
	minNullRun = 4
	// signatureBytes is how much of the header the report echoes back.
	signatureBytes = 8
)

// headerCandidates are the fixed-region sizes the guesser tries, smallest
// first.
var headerCandidates = []int{64, 128, 256, 512}

// FoundString is one printable run and where it starts.
type FoundString struct {
	Offset int
	Text   string
}

// Distribution summarizes byte values. Min, Max and Mean cover non-null
// bytes only; a capture that is mostly padding would otherwise always
// report Min 0.
type Distribution struct {
	Min          byte
	Max          byte
	Mean         float64
	NullCount    int
	NullFraction float64
}

// Hints are heuristic guesses about structure. A zero value means the
// heuristic found nothing.
type Hints struct {
	// SectionBoundaries are offsets where data resumes after a null run of
	// at least minNullRun bytes.
	SectionBoundaries []int
	// HeaderSize is the candidate whose null density differs most between
	// the bytes before and after it.
	HeaderSize int
	// ChecksumOffset assumes a trailing two-byte footer.
	ChecksumOffset int
}

// Report is the full analysis of one capture.
type Report struct {
	Size         int
	Signature    []byte
	Strings      []FoundString
	Distribution Distribution
	Hints        Hints
}

// Analyze inspects data and returns a report. It never fails; an empty
// buffer produces an empty report.
func Analyze(data []byte) *Report {
	r := &Report{Size: len(data)}
	if len(data) == 0 {
		return r
	}

	n := signatureBytes
	if n > len(data) {
		n = len(data)
	}
	r.Signature = append([]byte(nil), data[:n]...)

	r.Strings = findStrings(data)
	r.Distribution = distribution(data)
	r.Hints = hints(data)
	return r
}

func findStrings(data []byte) []FoundString {
	var out []FoundString
	start := -1
	flush := func(end int) {
		if start >= 0 && end-start >= minStringRun && len(out) < maxStrings {
			out = append(out, FoundString{Offset: start, Text: string(data[start:end])})
		}
		start = -1
	}
	for i, b := range data {
		if b >= 0x20 && b <= 0x7E {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(data))
	return out
}

func distribution(data []byte) Distribution {
	d := Distribution{Min: 0xFF}
	var sum int
	var nonNull int
	for _, b := range data {
		if b == 0 {
			d.NullCount++
			continue
		}
		nonNull++
		sum += int(b)
		if b < d.Min {
			d.Min = b
		}
		if b > d.Max {
			d.Max = b
		}
	}
	if nonNull > 0 {
		d.Mean = float64(sum) / float64(nonNull)
	} else {
		d.Min = 0
	}
	d.NullFraction = float64(d.NullCount) / float64(len(data))
	return d
}

func hints(data []byte) Hints {
	var h Hints

	run := 0
	for i, b := range data {
		if b == 0 {
			run++
			continue
		}
		if run >= minNullRun {
			h.SectionBoundaries = append(h.SectionBoundaries, i)
		}
		run = 0
	}

	// The fixed header of these formats is denser than the body. Pick the
	// candidate split with the largest null-density change across it.
	var best float64
	for _, c := range headerCandidates {
		if c >= len(data) {
			break
		}
		head := nullFraction(data[:c])
		tail := nullFraction(data[c:])
		shift := tail - head
		if shift < 0 {
			shift = -shift
		}
		if shift > best {
			best = shift
			h.HeaderSize = c
		}
	}

	if len(data) >= 2 {
		h.ChecksumOffset = len(data) - 2
	}
	return h
}

func nullFraction(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}
	n := 0
	for _, b := range data {
		if b == 0 {
			n++
		}
	}
	return float64(n) / float64(len(data))
}

// ByteDiff is one disagreeing offset. Offsets past the shorter buffer
// report the missing side as zero.
type ByteDiff struct {
	Offset int
	A, B   byte
}

// Comparison is the result of diffing two captures.
type Comparison struct {
	SizeA, SizeB int
	Diffs        []ByteDiff
	// Similarity is matching bytes over max(SizeA, SizeB), as a percentage.
	Similarity float64
}

// Compare diffs two captures byte by byte. Length differences count
// against similarity; Compare(x, x) is zero diffs at 100%.
func Compare(a, b []byte) *Comparison {
	c := &Comparison{SizeA: len(a), SizeB: len(b)}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		c.Similarity = 100
		return c
	}
	matches := 0
	for i := 0; i < longest; i++ {
		var av, bv byte
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		if i < len(a) && i < len(b) && av == bv {
			matches++
			continue
		}
		c.Diffs = append(c.Diffs, ByteDiff{Offset: i, A: av, B: bv})
	}
	c.Similarity = float64(matches) / float64(longest) * 100
	return c
}

// FindPattern returns every offset where pattern occurs in data, ascending.
// Overlapping occurrences all count. An empty pattern, or one longer than
// data, matches nowhere.
func FindPattern(data, pattern []byte) []int {
	if len(pattern) == 0 || len(pattern) > len(data) {
		return nil
	}
	var out []int
	for i := 0; i+len(pattern) <= len(data); i++ {
		if bytes.Equal(data[i:i+len(pattern)], pattern) {
			out = append(out, i)
		}
	}
	return out
}
