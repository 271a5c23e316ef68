// Package logging builds the hclog loggers used across skytint.
package logging

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
)

// Options controls logger construction.
type Options struct {
	// Name is the logger name shown in each line. Defaults to "skytint".
	Name string

	// Verbose enables debug output.
	Verbose bool

	// Quiet discards everything. It wins over Verbose.
	Quiet bool

	// JSON switches to structured JSON lines.
	JSON bool

	// Output receives log lines. Defaults to os.Stderr.
	Output io.Writer
}

// New returns a logger configured by opts.
// Without Verbose the level is Info; with Quiet the logger is silent.
func New(opts Options) hclog.Logger {
	name := opts.Name
	if name == "" {
		name = "skytint"
	}

	if opts.Quiet {
		return hclog.New(&hclog.LoggerOptions{
			Name:   name,
			Output: io.Discard,
			Level:  hclog.Off,
		})
	}

	output := opts.Output
	if output == nil {
		output = os.Stderr
	}

	level := hclog.Info
	if opts.Verbose {
		level = hclog.Debug
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Output:     output,
		Level:      level,
		JSONFormat: opts.JSON,
	})
}

// Discard returns a logger that drops all output. Useful as a default for
// components constructed without one.
func Discard() hclog.Logger {
	return hclog.NewNullLogger()
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l hclog.Logger) hclog.Logger {
	if l == nil {
		return Discard()
	}
	return l
}
