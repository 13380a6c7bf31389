package gp

import "github.com/takt-audio/presetkit/pkg/preset"

// BatchItem is one capture queued for conversion. Name is whatever label
// the caller wants echoed back, typically the file path.
type BatchItem struct {
	Name string
	Raw  *preset.RawBytes
}

// BatchResult is the outcome for one item. Exactly one of Raw and Err is
// meaningful; Warnings may accompany either.
type BatchResult struct {
	Name     string
	Raw      *preset.RawBytes
	Warnings []preset.Warning
	Err      error
}

// ConvertBatch converts every item through ConvertBytes. A failing item
// records its error and the batch continues; results come back in input
// order.
func ConvertBatch(items []BatchItem, opts Options) []BatchResult {
	results := make([]BatchResult, len(items))
	for i, item := range items {
		raw, warnings, err := ConvertBytes(item.Raw, opts)
		results[i] = BatchResult{Name: item.Name, Raw: raw, Warnings: warnings, Err: err}
	}
	return results
}
