package command

import (
	"fmt"
	"io/ioutil"
	"os"
	"strings"
)

const (
	// DefaultInitName is the default name we use when
	// initializing the example configuration file
	DefaultInitName = "example.hcl"
)

type InitCommand struct {
	Meta
}

// Help provides the help information for the init command.
func (c *InitCommand) Help() string {
	helpText := `
Usage: flowscale init

  Creates an example agent configuration file that can be used as a
  starting point to customize further.
`
	return strings.TrimSpace(helpText)
}

// Synopsis is provides a brief summary of the init command.
func (c *InitCommand) Synopsis() string {
	return "Create an example Flowscale agent configuration"
}

// Run triggers the init command to write the example.hcl file out to the
// current directory.
func (c *InitCommand) Run(args []string) int {

	// The command should be used with 0 extra flags.
	if len(args) != 0 {
		c.UI.Error(c.Help())
		return 1
	}

	// Check if the file already exists.
	_, err := os.Stat(DefaultInitName)
	if err != nil && !os.IsNotExist(err) {
		c.UI.Error(fmt.Sprintf("Failed to stat '%s': %v", DefaultInitName, err))
		return 1
	}
	if !os.IsNotExist(err) {
		c.UI.Error(fmt.Sprintf("Configuration file '%s' already exists", DefaultInitName))
		return 1
	}

	// Write the example file to the relative local directory where Flowscale
	// was invoked from.
	err = ioutil.WriteFile(DefaultInitName, []byte(defaultAgentConfig), 0660)
	if err != nil {
		c.UI.Error(fmt.Sprintf("Failed to write '%s': %v", DefaultInitName, err))
		return 1
	}

	c.UI.Output(fmt.Sprintf("Example configuration file written to %s", DefaultInitName))
	return 0
}

var defaultAgentConfig = strings.TrimSpace(`
log_level        = "INFO"
bind_address     = "127.0.0.1"
http_port        = "8460"
scaling_interval = 10

scaling {
  strategy          = "simple"
  max_idle_time     = 120
  pending_threshold = 3
}

telemetry {
  statsd_address = ""
}

notification {
  alert_uid             = ""
  runtime_identifier    = ""
  pagerduty_service_key = ""
  opsgenie_api_key      = ""
}
`) + "\n"
