package codec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrBadCoordinate = errors.New("bad coordinate")

// RowLetters converts a 0-based row to its letter name: A..Z, AA, AB, ...
func RowLetters(n int) string {
	if n < 0 {
		return ""
	}
	var out []byte
	for n >= 26 {
		out = append(out, byte('A'+n%26))
		n = n/26 - 1
	}
	out = append(out, byte('A'+n))
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}

// RowNumber is the inverse of RowLetters. Lower case is accepted.
func RowNumber(letters string) (int, error) {
	letters = strings.ToUpper(strings.TrimSpace(letters))
	if letters == "" {
		return 0, fmt.Errorf("%w: empty row", ErrBadCoordinate)
	}
	n := 0
	for _, r := range letters {
		if r < 'A' || r > 'Z' {
			return 0, fmt.Errorf("%w: row %q", ErrBadCoordinate, letters)
		}
		n = n*26 + int(r-'A'+1)
	}
	return n - 1, nil
}

// ParseCell reads a "<column> <row letters>" pair with a 1-based column,
// as typed at the prompt, into engine coordinates.
func ParseCell(col, row string) (x, y int, err error) {
	c, err := strconv.Atoi(col)
	if err != nil || c < 1 {
		return 0, 0, fmt.Errorf("%w: column %q", ErrBadCoordinate, col)
	}
	y, err = RowNumber(row)
	if err != nil {
		return 0, 0, err
	}
	return c - 1, y, nil
}

// FormatCell is the prompt form of (x, y).
func FormatCell(x, y int) string { return fmt.Sprintf("%d %s", x+1, RowLetters(y)) }
