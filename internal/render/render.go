// Package render draws hex boards as text. Rows are shifted by half a cell
// so that the six neighbours of a cell sit around it on screen.
package render

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"battlebee/internal/codec"
	"battlebee/internal/game"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
	ansiCyan   = "\x1b[36m"
)

type Options struct {
	HideShips bool // enemy view
	Color     bool
}

// Glyph is the character drawn for a cell state.
func Glyph(s game.CellState) byte {
	switch s {
	case game.Ship:
		return '#'
	case game.Fired:
		return 'x'
	case game.Dead:
		return 'X'
	case game.Missed:
		return 'o'
	case game.Empty:
		return '.'
	}
	return ' '
}

func color(s game.CellState) string {
	switch s {
	case game.Ship:
		return ansiCyan
	case game.Fired:
		return ansiYellow
	case game.Dead:
		return ansiRed
	case game.Missed:
		return ansiBlue
	}
	return ""
}

// Board writes b to w. The header numbers the columns of the middle row;
// every row ends with the range of columns it holds.
func Board(w io.Writer, b *game.Board, opts Options) error {
	s := b.Side()
	cols := b.Rows()
	cell := 2 * ((len(strconv.Itoa(cols)) + 2) / 2)
	half := cell / 2
	label := len(codec.RowLetters(cols - 1))

	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", label+1))
	for x := 0; x < cols; x++ {
		fmt.Fprintf(&sb, "%-*d", cell, x+1)
	}
	sb.WriteString("\n")

	for y := 0; y < b.Rows(); y++ {
		first, last := b.RowSpan(y)
		fmt.Fprintf(&sb, "%*s ", label, codec.RowLetters(y))
		sb.WriteString(strings.Repeat(" ", (2*first-y+s-1)*half))
		for x := first; x <= last; x++ {
			st := b.State(x, y)
			if opts.HideShips && st == game.Ship {
				st = game.Empty
			}
			if c := color(st); opts.Color && c != "" {
				sb.WriteString(c)
				sb.WriteByte(Glyph(st))
				sb.WriteString(ansiReset)
			} else {
				sb.WriteByte(Glyph(st))
			}
			if x < last {
				sb.WriteString(strings.Repeat(" ", cell-1))
			}
		}
		pad := (2*(cols-1) - (2*last - y + s - 1)) * half
		fmt.Fprintf(&sb, "%s   %d-%d\n", strings.Repeat(" ", max(0, pad)), first+1, last+1)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// String renders b without colours.
func String(b *game.Board, hideShips bool) string {
	var sb strings.Builder
	_ = Board(&sb, b, Options{HideShips: hideShips})
	return sb.String()
}

// Stdout is a writer that understands ANSI colours on every platform.
func Stdout() io.Writer { return colorable.NewColorableStdout() }

// ColorTerminal reports whether f is a terminal that should get colours.
func ColorTerminal(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Stats writes the per-player counters in the REPL's format.
func Stats(w io.Writer, name string, shots, missed int) {
	fmt.Fprintf(w, "%s:\nshots: %d\nmissed: %d\n", name, shots, missed)
}
