package printers

import (
	"io"
	"os"
	"time"

	"github.com/tcpprobe/tcpprobe/statistics"
)

// options contains common display options shared by all printers
type options struct {
	ShowTimestamp bool
	Output        io.Writer
	ErrOutput     io.Writer
}

type hasOptions interface {
	options() *options
}

// WithTimestamp enables timestamp display in printer output
func WithTimestamp[T hasOptions]() func(T) {
	return func(p T) {
		p.options().ShowTimestamp = true
	}
}

// WithOutput redirects regular output away from stdout. A nil writer is ignored.
func WithOutput[T hasOptions](w io.Writer) func(T) {
	return func(p T) {
		if w != nil {
			p.options().Output = w
		}
	}
}

// WithErrorOutput redirects error output away from stderr. A nil writer is ignored.
func WithErrorOutput[T hasOptions](w io.Writer) func(T) {
	return func(p T) {
		if w != nil {
			p.options().ErrOutput = w
		}
	}
}

func (o *options) out() io.Writer {
	if o.Output == nil {
		return os.Stdout
	}
	return o.Output
}

func (o *options) errOut() io.Writer {
	if o.ErrOutput == nil {
		return os.Stderr
	}
	return o.ErrOutput
}

// timestamp returns the "[...] " line prefix, or "" when disabled.
func (o *options) timestamp(t time.Time) string {
	if !o.ShowTimestamp {
		return ""
	}
	return "[" + t.Format(statistics.TimeFormat) + "] "
}
