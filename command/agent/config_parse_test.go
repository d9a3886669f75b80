package agent

import (
	"reflect"
	"strings"
	"testing"

	"github.com/meridian-compute/flowscale/flowscale/structs"
)

func TestConfigParse_ParseConfig(t *testing.T) {

	c, err := ParseConfig(strings.NewReader(`
    log_level        = "info"
    bind_address     = "0.0.0.0"
    http_port        = "8460"
    scaling_interval = 1

    scaling {
      strategy          = "auto-scale-drain"
      max_idle_time     = 300
      pending_threshold = 5
    }

    telemetry {
      statsd_address = "10.0.0.10:8125"
    }

    notification {
      pagerduty_service_key = "thisisafakekey"
      opsgenie_api_key      = "thistooisafakekey"
      runtime_identifier    = "flow-prod"
      alert_uid             = "Flow1"
    }

  `))
	if err != nil {
		t.Fatal(err)
	}

	expected := &structs.Config{
		LogLevel:        "info",
		BindAddress:     "0.0.0.0",
		HTTPPort:        "8460",
		ScalingInterval: 1,

		Scaling: &structs.Scaling{
			Strategy:         "auto-scale-drain",
			MaxIdleTime:      300,
			PendingThreshold: 5,
		},

		Telemetry: &structs.Telemetry{
			StatsdAddress: "10.0.0.10:8125",
		},

		Notification: &structs.Notification{
			PagerDutyServiceKey: "thisisafakekey",
			OpsGenieAPIKey:      "thistooisafakekey",
			RuntimeIdentifier:   "flow-prod",
			AlertUID:            "Flow1",
		},
	}
	if !reflect.DeepEqual(c, expected) {
		t.Fatalf("expected \n%#v\n\n, got \n\n%#v\n\n", expected, c)
	}
}

func TestConfigParse_InvalidKey(t *testing.T) {

	_, err := ParseConfig(strings.NewReader(`
    log_level   = "info"
    rpc_port    = 1314
  `))
	if err == nil {
		t.Fatal("expected an error for an unknown configuration key but got nil")
	}
	if !strings.Contains(err.Error(), "invalid key: rpc_port") {
		t.Fatalf("expected an invalid key error got %v", err)
	}
}

func TestConfigParse_StrategyPassthrough(t *testing.T) {

	c, err := ParseConfig(strings.NewReader(`
    scaling {
      strategy = "htex_auto_scale"
    }
  `))
	if err != nil {
		t.Fatal(err)
	}

	if c.Scaling.Strategy != "htex_auto_scale" {
		t.Fatalf("expected the strategy to parse verbatim got %v", c.Scaling.Strategy)
	}
}
