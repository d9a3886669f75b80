package structs

import (
	"github.com/meridian-compute/flowscale/notifier"
)

// Config is the main configuration struct used to configure the flowscale
// daemon.
type Config struct {
	// LogLevel is the level at which the application should log from.
	LogLevel string `mapstructure:"log_level"`

	// BindAddress is the address the agent HTTP API listens on.
	BindAddress string `mapstructure:"bind_address"`

	// HTTPPort is the port the agent HTTP API listens on.
	HTTPPort string `mapstructure:"http_port"`

	// ScalingInterval is the duration in seconds between evaluation cycles
	// and thus scaling requirement checks.
	ScalingInterval int `mapstructure:"scaling_interval"`

	// Scaling is the configuration struct that controls the scaling
	// strategy.
	Scaling *Scaling `mapstructure:"scaling"`

	// Telemetry is the configuration struct that controls the telemetry
	// settings.
	Telemetry *Telemetry `mapstructure:"telemetry"`

	// Notification is the configuration struct that controls notifications.
	Notification *Notification `mapstructure:"notification"`

	// SnapshotSource supplies the per-executor snapshots evaluated on each
	// cycle. It is registered by the surrounding runtime and is never read
	// from a configuration file.
	SnapshotSource SnapshotSource `mapstructure:"-"`
}

// Scaling is the configuration struct for the elastic scaling strategy.
type Scaling struct {
	// Strategy is the name of the scaling policy to run. Must be one of
	// "none", "simple" or "auto-scale-drain".
	Strategy string `mapstructure:"strategy"`

	// MaxIdleTime is the number of seconds an executor must be continuously
	// free of active tasks before its blocks above the floor are released.
	MaxIdleTime int `mapstructure:"max_idle_time"`

	// PendingThreshold is the number of consecutive evaluation cycles an
	// identical set of blocks may remain pending before a notification is
	// triggered.
	PendingThreshold int `mapstructure:"pending_threshold"`
}

// Telemetry is the struct that controls the telemetry configuration. If a
// value is present then telemetry is enabled. Currently statsd is only
// supported for sending telemetry.
type Telemetry struct {
	// StatsdAddress specifies the address of a statsd server to forward
	// metrics to and should include the port.
	StatsdAddress string `mapstructure:"statsd_address"`
}

// Notification is the control struct for flowscale notifications.
type Notification struct {
	// AlertUID is the UID to associate to stuck-provisioning alerts.
	AlertUID string `mapstructure:"alert_uid"`

	// RuntimeIdentifier is a friendly name which is used when sending
	// notifications for easy human identification.
	RuntimeIdentifier string `mapstructure:"runtime_identifier"`

	// PagerDutyServiceKey is the PD integration key for the Events API v1.
	PagerDutyServiceKey string `mapstructure:"pagerduty_service_key"`

	// OpsGenieAPIKey is the OpsGenie API key used for the alerts API.
	OpsGenieAPIKey string `mapstructure:"opsgenie_api_key"`

	// Notifiers is where our initialized notification backends are stored so
	// they can be used on the fly when required.
	Notifiers []notifier.Notifier
}

// Merge merges two configurations.
func (c *Config) Merge(b *Config) *Config {
	config := *c

	if b.LogLevel != "" {
		config.LogLevel = b.LogLevel
	}

	if b.BindAddress != "" {
		config.BindAddress = b.BindAddress
	}

	if b.HTTPPort != "" {
		config.HTTPPort = b.HTTPPort
	}

	if b.ScalingInterval > 0 {
		config.ScalingInterval = b.ScalingInterval
	}

	if b.SnapshotSource != nil {
		config.SnapshotSource = b.SnapshotSource
	}

	// Apply the Scaling config
	if config.Scaling == nil && b.Scaling != nil {
		scaling := *b.Scaling
		config.Scaling = &scaling
	} else if b.Scaling != nil {
		config.Scaling = config.Scaling.Merge(b.Scaling)
	}

	// Apply the Telemetry config
	if config.Telemetry == nil && b.Telemetry != nil {
		telemetry := *b.Telemetry
		config.Telemetry = &telemetry
	} else if b.Telemetry != nil {
		config.Telemetry = config.Telemetry.Merge(b.Telemetry)
	}

	// Apply the Notification config
	if config.Notification == nil && b.Notification != nil {
		notification := *b.Notification
		config.Notification = &notification
	} else if b.Notification != nil {
		config.Notification = config.Notification.Merge(b.Notification)
	}

	return &config
}

// Merge is used to merge two Scaling configurations together.
func (s *Scaling) Merge(b *Scaling) *Scaling {
	config := *s

	if b.Strategy != "" {
		config.Strategy = b.Strategy
	}

	if b.MaxIdleTime != 0 {
		config.MaxIdleTime = b.MaxIdleTime
	}

	if b.PendingThreshold != 0 {
		config.PendingThreshold = b.PendingThreshold
	}

	return &config
}

// Merge is used to merge two Telemetry configurations together.
func (t *Telemetry) Merge(b *Telemetry) *Telemetry {
	config := *t

	if b.StatsdAddress != "" {
		config.StatsdAddress = b.StatsdAddress
	}

	return &config
}

// Merge is used to merge two Notification configurations together.
func (n *Notification) Merge(b *Notification) *Notification {
	config := *n

	if b.AlertUID != "" {
		config.AlertUID = b.AlertUID
	}

	if b.RuntimeIdentifier != "" {
		config.RuntimeIdentifier = b.RuntimeIdentifier
	}

	if b.PagerDutyServiceKey != "" {
		config.PagerDutyServiceKey = b.PagerDutyServiceKey
	}

	if b.OpsGenieAPIKey != "" {
		config.OpsGenieAPIKey = b.OpsGenieAPIKey
	}

	return &config
}
