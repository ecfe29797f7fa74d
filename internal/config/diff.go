package config

import (
	"reflect"
	"sort"
	"strings"

	logx "github.com/ustudio/datadog-logger/pkg/logx"
)

// SummarizeConfigChange returns (1) a compact list of changed sections and
// (2) safe structured attrs for logging (never includes API or app keys).
func SummarizeConfigChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 3)
	attrs := make([]logx.Field, 0, 12)

	if !reflect.DeepEqual(oldCfg.Logging, newCfg.Logging) {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logging.level", newCfg.Logging.Level),
			logx.Bool("logging.console", newCfg.Logging.Console),
			logx.Bool("logging.file_enabled", newCfg.Logging.File.Enabled),
		)
	}

	// Datadog (never log keys, only whether they changed)
	o, n := oldCfg.Datadog, newCfg.Datadog
	if o.APIKey != n.APIKey || o.AppKey != n.AppKey ||
		strings.TrimSpace(o.Site) != strings.TrimSpace(n.Site) ||
		strings.TrimSpace(o.Timeout) != strings.TrimSpace(n.Timeout) ||
		strings.TrimSpace(o.Endpoint) != strings.TrimSpace(n.Endpoint) {
		changed = append(changed, "datadog")
		attrs = append(attrs,
			logx.String("datadog.site", strings.TrimSpace(n.Site)),
			logx.String("datadog.timeout", strings.TrimSpace(n.Timeout)),
			logx.Bool("datadog.endpoint_set", strings.TrimSpace(n.Endpoint) != ""),
			logx.Bool("datadog.api_key_changed", o.APIKey != n.APIKey),
			logx.Bool("datadog.app_key_changed", o.AppKey != n.AppKey),
		)
	}

	if !reflect.DeepEqual(oldCfg.Events, newCfg.Events) {
		changed = append(changed, "events")
		attrs = append(attrs,
			logx.String("events.logger", newCfg.Events.Logger),
			logx.String("events.min_level", newCfg.Events.MinLevel),
			logx.Int("events.tag_count", len(newCfg.Events.Tags)),
			logx.Int("events.mention_count", len(newCfg.Events.Mentions)),
			logx.Int("events.rate_per_sec", newCfg.Events.RatePerSec),
		)
	}

	sort.Strings(changed)
	return changed, attrs
}
