package main

import (
	"os"
	"strconv"
)

// chartMargin leaves room for the terminal's right edge.
const chartMargin = 2

// widthFromEnv reads COLUMNS as set by most shells.
func widthFromEnv() int {
	if cols, ok := os.LookupEnv("COLUMNS"); ok {
		if n, err := strconv.Atoi(cols); err == nil && n > chartMargin {
			return n - chartMargin
		}
	}
	return 0
}
