// Package clipboard copies text to the system clipboard using the best
// available mechanism: an OSC 52 escape sequence written to the controlling
// terminal (works over SSH and in modern terminals) with a fallback to the
// native OS clipboard.
package clipboard

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
	osc52 "github.com/aymanbagabas/go-osc52/v2"
)

// Mode selects which mechanisms a Writer tries.
type Mode int

const (
	// Auto tries OSC 52 and then the native clipboard.
	Auto Mode = iota
	// OSC52Only never shells out to a native clipboard command.
	OSC52Only
	// NativeOnly skips the terminal escape sequence.
	NativeOnly
)

// ParseMode maps a config value to a Mode. Unknown values select Auto.
func ParseMode(s string) Mode {
	switch s {
	case "osc52":
		return OSC52Only
	case "native":
		return NativeOnly
	default:
		return Auto
	}
}

// Writer implements format.Clipboard.
type Writer struct {
	mode Mode
	tmux bool

	// openTTY and native are swapped out in tests.
	openTTY func() (io.WriteCloser, error)
	native  func(string) error
}

// New returns a Writer for mode. Inside tmux the OSC 52 sequence is wrapped
// in a DCS passthrough.
func New(mode Mode) *Writer {
	w := &Writer{
		mode:    mode,
		tmux:    os.Getenv("TMUX") != "",
		openTTY: openTTY,
	}
	if !clipboard.Unsupported {
		w.native = clipboard.WriteAll
	}
	return w
}

// WriteText copies text. The error of the last mechanism tried is returned
// when all of them fail.
func (w *Writer) WriteText(text string) error {
	var errs []error
	if w.mode != NativeOnly {
		err := w.writeOSC52(text)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	if w.mode != OSC52Only {
		if w.native == nil {
			errs = append(errs, errors.New("clipboard: no native clipboard available"))
		} else if err := w.native(text); err != nil {
			errs = append(errs, fmt.Errorf("clipboard: native: %w", err))
		} else {
			return nil
		}
	}
	return errors.Join(errs...)
}

func (w *Writer) writeOSC52(text string) error {
	seq := osc52.New(text)
	if w.tmux {
		seq = seq.Tmux()
	}
	tty, err := w.openTTY()
	if err != nil {
		return fmt.Errorf("clipboard: osc52: %w", err)
	}
	defer tty.Close()
	if _, err := seq.WriteTo(tty); err != nil {
		return fmt.Errorf("clipboard: osc52: %w", err)
	}
	return nil
}

// Write to /dev/tty rather than os.Stdout: the TUI owns stdout and the
// sequence must reach the terminal even when stdout is piped.
func openTTY() (io.WriteCloser, error) {
	return os.OpenFile("/dev/tty", os.O_WRONLY, 0)
}
