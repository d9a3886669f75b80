package main

import (
	"os"

	"github.com/meridian-compute/flowscale/command"
	"github.com/meridian-compute/flowscale/command/agent"
	"github.com/meridian-compute/flowscale/version"
	"github.com/mitchellh/cli"
)

// Commands returns the mapping of CLI commands for Flowscale. The meta
// parameter lets you set meta options for all commands.
func Commands(metaPtr *command.Meta) map[string]cli.CommandFactory {
	if metaPtr == nil {
		metaPtr = new(command.Meta)
	}

	meta := *metaPtr
	if meta.UI == nil {
		meta.UI = &cli.BasicUi{
			Reader:      os.Stdin,
			Writer:      os.Stdout,
			ErrorWriter: os.Stderr,
		}
	}

	return map[string]cli.CommandFactory{
		"agent": func() (cli.Command, error) {
			return &agent.Command{
				Meta: meta,
			}, nil
		},
		"init": func() (cli.Command, error) {
			return &command.InitCommand{
				Meta: meta,
			}, nil
		},
		"version": func() (cli.Command, error) {
			return &command.VersionCommand{
				Version:           version.Version,
				VersionPrerelease: version.VersionPrerelease,
				UI:                meta.UI,
			}, nil
		},
	}
}
