// Package console styles session output for ANSI terminals.
package console

import (
	"fmt"
	"strings"
)

// ANSI escape code constants for terminal styling.
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"

	BrightRed   = "\033[91m"
	BrightGreen = "\033[92m"
)

// Colorize wraps text with the given ANSI color code and a reset suffix.
//
// Precondition: color must be a valid ANSI escape sequence.
// Postcondition: Returns text wrapped with the color code and Reset.
func Colorize(color, text string) string {
	return color + text + Reset
}

// Colorf wraps a formatted string with the given ANSI color code.
func Colorf(color, format string, args ...any) string {
	return color + fmt.Sprintf(format, args...) + Reset
}

// StripANSI removes all ANSI escape sequences from a string.
//
// Postcondition: Returns text with all \033[...m sequences removed.
func StripANSI(s string) string {
	result := make([]byte, 0, len(s))
	i := 0
	for i < len(s) {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && s[j] != 'm' {
				j++
			}
			if j < len(s) {
				i = j + 1
				continue
			}
		}
		result = append(result, s[i])
		i++
	}
	return string(result)
}

// Palette maps session message classes to colors. The zero value and a
// disabled palette return text unchanged.
type Palette struct {
	enabled bool
}

// NewPalette returns a palette that styles text only when enabled is true.
func NewPalette(enabled bool) Palette { return Palette{enabled: enabled} }

// Enabled reports whether the palette emits escape sequences.
func (p Palette) Enabled() bool { return p.enabled }

func (p Palette) style(color, text string) string {
	if !p.enabled {
		return text
	}
	return Colorize(color, text)
}

// Hit styles a successful attack line.
func (p Palette) Hit(text string) string { return p.style(BrightGreen, text) }

// Miss styles a missed attack line.
func (p Palette) Miss(text string) string { return p.style(Yellow, text) }

// Defeat styles a piece-removed line.
func (p Palette) Defeat(text string) string { return p.style(Bold+BrightRed, text) }

// Reject styles a rejected command.
func (p Palette) Reject(text string) string { return p.style(Red, text) }

// Narration styles lines returned by script hooks.
func (p Palette) Narration(text string) string { return p.style(Magenta, text) }

// Board colors piece symbols in a rendered board: players green, enemies
// red, obstacles dim. Labels and borders are left as is.
func (p Palette) Board(rendered string) string {
	if !p.enabled {
		return rendered
	}
	var sb strings.Builder
	sb.Grow(len(rendered) * 2)
	for _, r := range rendered {
		switch r {
		case 'P':
			sb.WriteString(Colorize(Bold+Green, "P"))
		case 'E':
			sb.WriteString(Colorize(Bold+Red, "E"))
		case '#':
			sb.WriteString(Colorize(Dim, "#"))
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
