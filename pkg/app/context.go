package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"
)

// Context holds application-wide configuration and state
type Context struct {
	context.Context

	// Output preferences
	OutputFormat string
	Verbose      bool
	Quiet        bool
	NoColor      bool

	// Stderr receives log, progress and error lines
	Stderr io.Writer

	// Progress reporting
	ProgressCallback func(message string, percent int)
}

// NewContext creates a new application context
func NewContext() *Context {
	return &Context{
		Context: context.Background(),
		Stderr:  os.Stderr,
	}
}

// Err reports whether the request was cancelled. A zero Context never is.
func (c *Context) Err() error {
	if c.Context == nil {
		return nil
	}
	return c.Context.Err()
}

// SetProgress sets the progress callback function
func (c *Context) SetProgress(callback func(string, int)) {
	c.ProgressCallback = callback
}

// Progress reports progress if callback is set
func (c *Context) Progress(message string, percent int) {
	if c.ProgressCallback != nil {
		c.ProgressCallback(message, percent)
	}
}

// PrintProgress writes one progress line to stderr unless quiet.
func (c *Context) PrintProgress(message string, percent int) {
	if !c.Quiet {
		fmt.Fprintf(c.stderr(), "[%3d%%] %s\n", percent, message)
	}
}

// Log outputs a message based on verbosity settings
func (c *Context) Log(message string) {
	glog.V(1).Info(message)
	if !c.Quiet && c.Verbose {
		fmt.Fprintln(c.stderr(), message)
	}
}

// Error outputs an error message unless quiet
func (c *Context) Error(message string) {
	if !c.Quiet {
		fmt.Fprintln(c.stderr(), "Error:", message)
	}
}

func (c *Context) stderr() io.Writer {
	if c.Stderr == nil {
		return os.Stderr
	}
	return c.Stderr
}
