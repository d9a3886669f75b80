package agent

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	metrics "github.com/armon/go-metrics"
	"github.com/meridian-compute/flowscale/command"
	"github.com/meridian-compute/flowscale/flowscale"
	"github.com/meridian-compute/flowscale/flowscale/structs"
	"github.com/meridian-compute/flowscale/logging"
	"github.com/meridian-compute/flowscale/notifier"
	"github.com/meridian-compute/flowscale/testutil"
	"github.com/meridian-compute/flowscale/version"
)

// Command is the agent command structure used to track passed args as well
// as the CLI meta.
type Command struct {
	command.Meta
	args []string
}

// Run triggers a run of the flowscale agent by setting up and parsing the
// configuration and then initiating a new runner.
func (c *Command) Run(args []string) int {

	c.args = args
	conf := c.parseFlags()
	if conf == nil {
		return 1
	}

	// Set the logging level for the logger.
	logging.SetLevel(conf.LogLevel)

	// Initialize telemetry if this was configured by the user.
	if conf.Telemetry.StatsdAddress != "" {
		sink, statsErr := metrics.NewStatsdSink(conf.Telemetry.StatsdAddress)
		if statsErr != nil {
			c.UI.Error(fmt.Sprintf("unable to setup telemetry correctly: %v", statsErr))
			return 1
		}
		metrics.NewGlobal(metrics.DefaultConfig("flowscale"), sink)
	}

	// Setup the notification backends configured by the user so that stuck
	// provisioning alerts have somewhere to go.
	if err := c.setupNotifiers(conf); err != nil {
		c.UI.Error(fmt.Sprintf("unable to setup notification backends: %v", err))
		return 1
	}

	// Create the initial runner with the merged configuration parameters.
	runner, err := flowscale.NewRunner(conf)
	if err != nil {
		c.UI.Error(fmt.Sprintf("unable to setup the scaling runner: %v", err))
		return 1
	}

	logging.Info("command/agent: running version %v", version.Get())
	logging.Info("command/agent: starting flowscale agent, strategy %v...",
		runner.Strategy().Mode())
	go runner.Start()

	// Start the HTTP API so operators can inspect the most recent scaling
	// decisions.
	httpServer, err := NewHTTPServer(runner, conf)
	if err != nil {
		c.UI.Error(fmt.Sprintf("unable to setup the HTTP server: %v", err))
		return 1
	}

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)

	for {
		select {
		case s := <-signalCh:
			switch s {
			case syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT:
				runner.Stop()
				httpServer.Shutdown()
				return 0

			case syscall.SIGHUP:
				runner.Stop()

				// Reload the configuration in order to make proper use of
				// SIGHUP. The snapshot source always survives a reload since
				// it is registered at runtime rather than configured.
				source := conf.SnapshotSource
				conf = c.parseFlags()
				if conf == nil {
					httpServer.Shutdown()
					return 1
				}
				conf.SnapshotSource = source

				// Setup a new runner with the new configuration.
				runner, err = flowscale.NewRunner(conf)
				if err != nil {
					c.UI.Error(fmt.Sprintf("unable to setup the scaling runner: %v", err))
					httpServer.Shutdown()
					return 1
				}
				httpServer.SetRunner(runner)

				go runner.Start()
			}
		}
	}
}

// setupNotifiers iterates the notification backend keys present in the
// configuration and initializes a provider for each.
func (c *Command) setupNotifiers(config *structs.Config) error {
	if config.Notification.PagerDutyServiceKey != "" {
		n, err := notifier.NewProvider("pagerduty", map[string]string{
			"PagerDutyServiceKey": config.Notification.PagerDutyServiceKey,
		})
		if err != nil {
			return err
		}
		config.Notification.Notifiers = append(config.Notification.Notifiers, n)
	}

	if config.Notification.OpsGenieAPIKey != "" {
		n, err := notifier.NewProvider("opsgenie", map[string]string{
			"OpsGenieAPIKey": config.Notification.OpsGenieAPIKey,
		})
		if err != nil {
			return err
		}
		config.Notification.Notifiers = append(config.Notification.Notifiers, n)
	}

	return nil
}

func (c *Command) parseFlags() *structs.Config {

	var configPath string
	var dev bool

	// An empty new config is setup here to allow us to fill this with any
	// passed cli flags for later merging.
	cliConfig := &structs.Config{
		Scaling:   &structs.Scaling{},
		Telemetry: &structs.Telemetry{},
	}

	flags := c.Meta.FlagSet("agent", command.FlagSetClient)
	flags.Usage = func() { c.UI.Error(c.Help()) }

	flags.StringVar(&configPath, "config", "", "")
	flags.BoolVar(&dev, "dev", false, "")

	// Top level configuration flags
	flags.StringVar(&cliConfig.LogLevel, "log-level", "", "")
	flags.StringVar(&cliConfig.BindAddress, "bind-address", "", "")
	flags.StringVar(&cliConfig.HTTPPort, "http-port", "", "")
	flags.IntVar(&cliConfig.ScalingInterval, "scaling-interval", 0, "")

	// Scaling configuration flags
	flags.StringVar(&cliConfig.Scaling.Strategy, "strategy", "", "")
	flags.IntVar(&cliConfig.Scaling.MaxIdleTime, "max-idle-time", 0, "")
	flags.IntVar(&cliConfig.Scaling.PendingThreshold, "pending-threshold", 0, "")

	// Telemetry configuration flags
	flags.StringVar(&cliConfig.Telemetry.StatsdAddress, "statsd-address", "", "")

	if err := flags.Parse(c.args); err != nil {
		return nil
	}

	// A dev mode agent runs entirely against simulated executors and ignores
	// any configuration files.
	if dev {
		return c.devMode(cliConfig)
	}

	// Load the default configuration which will be the basis for merging with
	// the supplied configuration file(s)
	config := DefaultConfig()

	if configPath != "" {
		current, err := LoadConfig(configPath)
		if err != nil {
			c.UI.Error(fmt.Sprintf("Error loading configuration from %s: %s", configPath, err))
			return nil
		}

		config = config.Merge(current)
	}

	config = config.Merge(cliConfig)
	return config
}

// devMode returns a configuration backed by a simulated executor so the
// whole control loop can be observed without a real task runtime attached.
func (c *Command) devMode(cliConfig *structs.Config) *structs.Config {
	config := DevConfig().Merge(cliConfig)

	executor := testutil.NewSimExecutor("htex-dev")
	executor.SetOutstanding(8)

	config.SnapshotSource = &testutil.SimSource{
		Executors: []*testutil.SimExecutor{executor},
	}
	return config
}

// Help provides the help information for the agent command.
func (c *Command) Help() string {
	helpText := `
  Usage: flowscale agent [options]

    Starts the Flowscale agent and runs until an interrupt is received.
    The Flowscale agent's configuration primarily comes from the config
    files used. If no config file is passed, a default config will be
    used.

  General Options:

    -config=<path>
      The path to either a single config file or a directory of config
      files to use for configuring the Flowscale agent. Flowscale
      processes configuration files in lexicographic order.

    -dev
      Start the agent in development mode. The agent scales a simulated
      executor rather than a live task runtime, which is useful for
      watching the behaviour of a scaling strategy.

    -log-level=<level>
      Specify the verbosity level of Flowscale's logs. The default is
      INFO.

    -bind-address=<address>
      The address the Flowscale HTTP API listens on. The default is
      127.0.0.1.

    -http-port=<port>
      The port the Flowscale HTTP API listens on. The default is 8460.

    -scaling-interval=<num>
      The time period in seconds between scaling evaluation cycles. The
      default is 10.

    -strategy=<name>
      The scaling strategy to run. Must be one of none, simple or
      auto-scale-drain. The default is simple.

    -max-idle-time=<num>
      The number of seconds an executor must sit without any active
      tasks before it is scaled down to its floor. The default is 120.

    -pending-threshold=<num>
      The number of consecutive evaluation cycles an identical set of
      blocks may remain pending before a notification is triggered. The
      default is 3; a value of 0 disables the check.

    -statsd-address=<address:port>
      Specifies the address of a statsd server to forward metrics
      to and should include the port.

`
	return strings.TrimSpace(helpText)
}

// Synopsis is provides a brief summary of the agent command.
func (c *Command) Synopsis() string {
	return "Runs a Flowscale agent"
}
