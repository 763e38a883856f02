package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

type Output struct {
	out          io.Writer
	errOut       io.Writer
	enableColors bool
	green        *color.Color
	yellow       *color.Color
	red          *color.Color
	gray         *color.Color
	bold         *color.Color
}

func NewOutput() *Output {
	return NewOutputTo(os.Stdout, os.Stderr, !color.NoColor)
}

func NewOutputTo(out, errOut io.Writer, enableColors bool) *Output {
	o := &Output{
		out:          out,
		errOut:       errOut,
		enableColors: enableColors,
		green:        color.New(color.FgGreen),
		yellow:       color.New(color.FgYellow),
		red:          color.New(color.FgRed),
		gray:         color.New(color.FgHiBlack),
		bold:         color.New(color.Bold),
	}
	o.applyColors()
	return o
}

func (o *Output) DisableColors() {
	o.enableColors = false
	o.applyColors()
}

func (o *Output) applyColors() {
	for _, c := range []*color.Color{o.green, o.yellow, o.red, o.gray, o.bold} {
		if o.enableColors {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
}

func (o *Output) Green(text string) string {
	return o.green.Sprint(text)
}

func (o *Output) Yellow(text string) string {
	return o.yellow.Sprint(text)
}

func (o *Output) Red(text string) string {
	return o.red.Sprint(text)
}

func (o *Output) Gray(text string) string {
	return o.gray.Sprint(text)
}

func (o *Output) PrintHeader(msg string) {
	fmt.Fprintln(o.out, o.bold.Sprint(msg))
	fmt.Fprintln(o.out)
}

func (o *Output) PrintStep(emoji, msg string, args ...any) {
	prefix := "  "
	if emoji != "" {
		prefix += emoji + " "
	}
	fmt.Fprintf(o.out, prefix+msg+"\n", args...)
}

func (o *Output) PrintSuccess(msg string, args ...any) {
	formatted := fmt.Sprintf(msg, args...)
	fmt.Fprintf(o.out, "  "+o.Green("✓ ")+"%s\n", formatted)
}

func (o *Output) PrintWarning(msg string, args ...any) {
	formatted := fmt.Sprintf(msg, args...)
	fmt.Fprintf(o.out, "  "+o.Yellow("⚠ ")+"%s\n", formatted)
}

func (o *Output) PrintError(msg string, args ...any) {
	formatted := fmt.Sprintf(msg, args...)
	fmt.Fprintf(o.errOut, "  "+o.Red("✗ ")+"%s\n", formatted)
}

func (o *Output) PrintFile(path string) {
	fmt.Fprintf(o.out, "    %s\n", path)
}

func (o *Output) PrintDone(msg string) {
	fmt.Fprintln(o.out, msg)
}

func (o *Output) Out() io.Writer {
	return o.out
}

func (o *Output) ErrOut() io.Writer {
	return o.errOut
}

// Println writes a line verbatim. Machine-readable lines go through here.
func (o *Output) Println(line string) {
	fmt.Fprintln(o.out, line)
}
