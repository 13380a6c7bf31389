// Package presetfile is the only part of the toolkit that touches the
// filesystem. The parsing and conversion layers operate on RawBytes; this
// package moves those bytes in and out of files with size sanity checks and
// optional backups.
package presetfile

import (
	"fmt"
	"os"

	"github.com/takt-audio/presetkit/internal/mmfile"
	"github.com/takt-audio/presetkit/pkg/preset"
)

// Limits bounds the file sizes Read accepts. Anything under Min cannot hold
// even an empty preset; anything over Max is not a preset capture.
type Limits struct {
	Min int
	Max int
}

// DefaultLimits covers every preset either device can produce.
func DefaultLimits() Limits {
	return Limits{Min: 64, Max: 10 << 20}
}

// Read loads the preset file at path. The returned RawBytes carries path as
// its origin, so errors reported further down the pipeline can name the
// file.
func Read(path string) (*preset.RawBytes, error) {
	return ReadLimits(path, DefaultLimits())
}

// ReadLimits is Read with explicit size bounds.
func ReadLimits(path string, lim Limits) (*preset.RawBytes, error) {
	data, cleanup, err := mmfile.Map(path)
	if err != nil {
		return nil, fmt.Errorf("presetfile: %w", err)
	}
	defer cleanup()

	if len(data) < lim.Min {
		return nil, &preset.Error{
			Kind: preset.ErrKindFormat,
			Msg:  fmt.Sprintf("%s is %d bytes, smaller than any preset (min %d)", path, len(data), lim.Min),
		}
	}
	if len(data) > lim.Max {
		return nil, &preset.Error{
			Kind: preset.ErrKindFormat,
			Msg:  fmt.Sprintf("%s is %d bytes, larger than any preset (max %d)", path, len(data), lim.Max),
		}
	}
	// NewRawBytes copies, so releasing the mapping immediately is safe.
	return preset.NewRawBytes(data, path), nil
}

// WriteOptions controls Write behavior.
type WriteOptions struct {
	// Overwrite permits replacing an existing file.
	Overwrite bool
	// CreateBackup saves the previous contents next to the file before
	// overwriting it.
	CreateBackup bool
}

// Write stores raw at path. When the file already exists, opts.Overwrite
// must be set; with opts.CreateBackup the old contents move to a numbered
// .backup file first, never clobbering an earlier backup.
func Write(path string, raw *preset.RawBytes, opts WriteOptions) error {
	if _, err := os.Stat(path); err == nil {
		if !opts.Overwrite {
			return fmt.Errorf("presetfile: %s exists and overwrite not requested", path)
		}
		if opts.CreateBackup {
			if err := backup(path); err != nil {
				return fmt.Errorf("presetfile: %w", err)
			}
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("presetfile: %w", err)
	}
	if err := os.WriteFile(path, raw.Bytes(), 0o644); err != nil {
		return fmt.Errorf("presetfile: %w", err)
	}
	return nil
}

// backup copies path to the first free numbered backup name.
func backup(path string) error {
	target := path + ".backup"
	for n := 1; ; n++ {
		if _, err := os.Stat(target); os.IsNotExist(err) {
			break
		} else if err != nil {
			return err
		}
		target = fmt.Sprintf("%s.backup%d", path, n)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return os.WriteFile(target, data, 0o644)
}
