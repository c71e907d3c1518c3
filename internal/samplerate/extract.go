package samplerate

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// SplitRow splits row on delim. A single delimiter at the end of the row
// terminates the last field instead of opening an empty one.
func SplitRow(row string, delim rune) []string {
	row = strings.TrimSuffix(row, "\r")
	d := string(delim)
	row = strings.TrimSuffix(row, d)
	return strings.Split(row, d)
}

// ExtractColumn returns the 0-based column col of row, normalized to NFKC
// and trimmed of surrounding whitespace.
func ExtractColumn(row string, delim rune, col int) (string, error) {
	fields := SplitRow(row, delim)
	if col < 0 || col >= len(fields) {
		return "", fmt.Errorf("%w: column %d, row has %d field(s)", ErrColumnOutOfRange, col, len(fields))
	}
	return strings.TrimSpace(norm.NFKC.String(fields[col])), nil
}
