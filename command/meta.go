package command

import (
	"bufio"
	"flag"
	"io"

	"github.com/mitchellh/cli"
)

// FlagSetFlags is an enum to define what flags are present in the default
// FlagSet returned by Meta.FlagSet.
type FlagSetFlags uint

const (
	// FlagSetNone returns a FlagSet with no pre-registered flags.
	FlagSetNone FlagSetFlags = 0

	// FlagSetClient returns a FlagSet with the flags common to all client
	// commands.
	FlagSetClient FlagSetFlags = 1 << iota
)

// Meta contains the meta-options and functionality that nearly every command
// inherits.
type Meta struct {
	UI cli.Ui
}

// FlagSet returns a FlagSet with the common flags that every command
// implements. The exact behavior of FlagSet can be configured using the
// flags as the second parameter.
func (m *Meta) FlagSet(n string, _ FlagSetFlags) *flag.FlagSet {
	f := flag.NewFlagSet(n, flag.ContinueOnError)

	// Create an io.Writer that writes to our UI properly for errors. This is
	// kind of a hack, but it does the job.
	errR, errW := io.Pipe()
	errScanner := bufio.NewScanner(errR)
	go func() {
		for errScanner.Scan() {
			m.UI.Error(errScanner.Text())
		}
	}()
	f.SetOutput(errW)

	return f
}
