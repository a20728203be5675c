package config

import (
	"strconv"
	"strings"
)

// ApplyKVOverrides applies free-form -c key=value overrides. Unknown keys and
// values that do not parse are ignored.
func ApplyKVOverrides(cfg Config, overrides []string) Config {
	if len(overrides) == 0 {
		return cfg
	}
	for _, raw := range overrides {
		parts := strings.SplitN(raw, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		switch key {
		case "debug":
			setBool(&cfg.Debug, val)
		case "strip_styling", "plain":
			setBool(&cfg.StripStyling, val)
		case "indexed":
			setBool(&cfg.Indexed, val)
		case "mode":
			cfg.Mode = val
		case "width":
			setInt(&cfg.Width, val)
		case "log_path":
			cfg.LogPath = val
		case "pager.alt_screen":
			setBool(&cfg.Pager.AltScreen, val)
		case "pager.search_limit":
			setInt(&cfg.Pager.SearchLimit, val)
		}
	}
	return cfg
}

func setBool(dst *bool, val string) {
	if v, err := strconv.ParseBool(val); err == nil {
		*dst = v
	}
}

func setInt(dst *int, val string) {
	if v, err := strconv.Atoi(val); err == nil && v >= 0 {
		*dst = v
	}
}
