//go:build !linux && !windows

package platform

import (
	"fmt"
	"runtime"
)

// Open reports that no window-system backend exists for this OS.
func Open() (Backend, error) {
	return nil, fmt.Errorf("no window system backend for %s", runtime.GOOS)
}
