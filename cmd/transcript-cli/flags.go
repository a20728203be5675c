package main

import (
	"flag"
	"io"
	"strings"

	"transcript-cli/internal/config"
	"transcript-cli/internal/logger"
)

type stringSlice []string

func (s *stringSlice) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSlice) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// cliArgs holds the flags shared by the render, view and config commands.
type cliArgs struct {
	cfgPath   string
	overrides stringSlice
	mode      string
	indexed   bool
	debug     bool
	plain     bool
	width     int
	logPath   string
	force     bool
}

func newFlagSet(name string, stderr io.Writer) (*flag.FlagSet, *cliArgs) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	a := &cliArgs{}
	fs.StringVar(&a.cfgPath, "config", "", "Path to config.toml (default ~/.transcript-cli/config.toml)")
	fs.Var(&a.overrides, "c", "Override config value key=value (repeatable)")
	fs.StringVar(&a.mode, "mode", "", "Rendering mode: full, simple or raw")
	fs.BoolVar(&a.indexed, "indexed", false, "Prefix each entry with a descending position")
	fs.BoolVar(&a.debug, "debug", false, "Show heartbeats and raw running-function text; log at debug level")
	fs.BoolVar(&a.plain, "plain", false, "Disable colors and emphasis (icons are kept)")
	fs.IntVar(&a.width, "width", 0, "Wrap output to this width (0 disables wrapping)")
	fs.StringVar(&a.logPath, "log", "", "Log file path (default "+logger.DefaultLogPath+")")
	return fs, a
}

// resolveConfig loads the config file, then applies -c overrides and finally
// the flags that were set explicitly on the command line.
func resolveConfig(fs *flag.FlagSet, a *cliArgs) (config.Config, error) {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return cfg, err
	}
	cfg = config.ApplyKVOverrides(cfg, []string(a.overrides))
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "mode":
			cfg.Mode = a.mode
		case "indexed":
			cfg.Indexed = a.indexed
		case "debug":
			cfg.Debug = a.debug
		case "plain":
			cfg.StripStyling = a.plain
		case "width":
			cfg.Width = a.width
		case "log":
			cfg.LogPath = a.logPath
		}
	})
	return cfg, nil
}
