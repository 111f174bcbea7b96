// Package painter renders coloured text for the shell: the prompt in the
// configured colour and diagnostics in red. Colour is dropped automatically
// when the output is not a terminal.
package painter

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"Supershell/internal/config"
)

// Painter holds the styles used for the prompt and for diagnostics.
type Painter struct {
	prompt *color.Color
	err    *color.Color
}

// NewPainter creates a new Painter based on the provided config.Prompt.
func NewPainter(cfg config.Prompt) Painter {

	prompt := color.New(resolveColour(cfg.Colour))
	if cfg.ColourBold {
		prompt.Add(color.Bold)
	}

	return Painter{
		prompt: prompt,
		err:    color.New(color.FgRed),
	}

}

// resolveColour converts a colour name into a foreground attribute.
// Unknown names fall back to the terminal's default colour.
func resolveColour(colour string) color.Attribute {

	switch strings.ToLower(strings.TrimSpace(colour)) {
	case "black":
		return color.FgBlack
	case "red":
		return color.FgRed
	case "green":
		return color.FgGreen
	case "yellow":
		return color.FgYellow
	case "bright yellow":
		return color.FgHiYellow
	case "blue":
		return color.FgHiBlue
	case "magenta":
		return color.FgMagenta
	case "cyan":
		return color.FgCyan
	case "white":
		return color.FgWhite
	default:
		return color.Reset
	}

}

// Prompt returns text styled as the prompt.
func (p Painter) Prompt(text string) string {
	return p.prompt.Sprint(text)
}

// Error writes err to w in the shell's diagnostic format:
//
//	ERROR: '<message>'
func (p Painter) Error(w io.Writer, err error) {
	fmt.Fprintln(w, p.err.Sprintf("ERROR: '%v' ", err))
}
