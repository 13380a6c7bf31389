//go:build windows

package mmfile

import "os"

// Map reads the file at path; plain reads keep the file unlockable on
// Windows, where an active mapping blocks rename and delete.
func Map(path string) ([]byte, func() error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, func() error { return nil }, err
	}
	return data, func() error { return nil }, nil
}
