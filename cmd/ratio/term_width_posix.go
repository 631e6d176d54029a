//go:build !windows

package main

import (
	"os"

	"golang.org/x/sys/unix"
)

// detectTerminalWidth asks stdout, then stderr, for the window size.
// Zero means unknown.
func detectTerminalWidth() int {
	for _, f := range []*os.File{os.Stdout, os.Stderr} {
		ws, err := unix.IoctlGetWinsize(int(f.Fd()), unix.TIOCGWINSZ)
		if err == nil && ws != nil && int(ws.Col) > chartMargin {
			return int(ws.Col) - chartMargin
		}
	}
	return widthFromEnv()
}
