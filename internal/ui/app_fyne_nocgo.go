//go:build fyne && !cgo

package ui

import "fmt"

// Run fails in fyne builds without cgo, since the fyne driver needs OpenGL.
func Run(path string) error {
	return fmt.Errorf("%w: fyne needs cgo and a C toolchain; rebuild with CGO_ENABLED=1 -tags fyne to open %q", ErrNoUI, path)
}
