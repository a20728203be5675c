package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"transcript-cli/internal/config"
	"transcript-cli/internal/diag"
	"transcript-cli/internal/logger"
	"transcript-cli/internal/render"
	"transcript-cli/internal/sequence"
	"transcript-cli/internal/transcript"
	"transcript-cli/internal/tui"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
)

var log = logger.Named("cli")

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	logger.Configure()
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		switch args[0] {
		case "view":
			return viewMain(ctx, args[1:], stdin, stderr)
		case "config":
			return configMain(args[1:], stdout, stderr)
		}
	}
	return renderMain(ctx, args, stdin, stdout, stderr)
}

// session is the resolved state shared by the render and view commands.
type session struct {
	cfg     config.Config
	mode    sequence.Mode
	entries []transcript.Entry
	source  string
	closeFn func()
}

func (s *session) close() {
	if s.closeFn != nil {
		s.closeFn()
	}
}

func setup(name string, args []string, stdin io.Reader, stderr io.Writer) (*session, int) {
	fs, cli := newFlagSet(name, stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, exitOK
		}
		return nil, exitUsage
	}
	if fs.NArg() > 1 {
		fmt.Fprintf(stderr, "%s: expected at most one transcript file, got %d\n", name, fs.NArg())
		return nil, exitUsage
	}

	cfg, err := resolveConfig(fs, cli)
	if err != nil {
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return nil, exitError
	}
	mode, err := sequence.ParseMode(cfg.Mode)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		return nil, exitUsage
	}

	s := &session{cfg: cfg, mode: mode, source: fs.Arg(0)}
	if logFile, _, err := logger.SetupFile(cfg.LogPath); err != nil {
		logger.Discard()
		fmt.Fprintf(stderr, "warning: failed to initialize log file: %v\n", err)
	} else {
		s.closeFn = func() { _ = logFile.Close() }
	}
	logger.SetDebug(cfg.Debug)

	entries, err := loadEntries(s.source, stdin)
	if err != nil {
		s.close()
		fmt.Fprintf(stderr, "failed to load transcript: %v\n", err)
		return nil, exitError
	}
	s.entries = entries
	log.WithField("source", sourceName(s.source)).Infof("loaded %d entries", len(entries))
	return s, exitOK
}

func loadEntries(path string, stdin io.Reader) ([]transcript.Entry, error) {
	if path == "" || path == "-" {
		return transcript.Load(stdin)
	}
	return transcript.LoadFile(path)
}

func sourceName(path string) string {
	if path == "" || path == "-" {
		return "stdin"
	}
	return path
}

func renderMain(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	s, code := setup("transcript-cli", args, stdin, stderr)
	if s == nil {
		return code
	}
	defer s.close()

	rec := diag.NewRecorder(nil)
	printer := render.NewPrinter(stdout, render.Options{StripStyling: s.cfg.StripStyling, Width: s.cfg.Width})
	res, err := sequence.New(printer, rec).Process(ctx, s.entries, s.options())
	if s.cfg.Debug {
		fmt.Fprintln(stderr, summaryLine(res))
	}
	if err != nil {
		log.WithError(err).Error("render aborted")
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}
	return exitOK
}

func viewMain(ctx context.Context, args []string, stdin io.Reader, stderr io.Writer) int {
	s, code := setup("view", args, stdin, stderr)
	if s == nil {
		return code
	}
	defer s.close()

	styled, plain, err := s.renderForPager(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}
	title := sourceName(s.source)
	if title != "stdin" {
		title = filepath.Base(title)
	}
	err = tui.Run(tui.Options{
		Title:       fmt.Sprintf("%s (%d entries)", title, len(s.entries)),
		Lines:       styled,
		Plain:       plain,
		SearchLimit: s.cfg.Pager.SearchLimit,
		AltScreen:   s.cfg.Pager.AltScreen,
		InputTTY:    sourceName(s.source) == "stdin",
	})
	if err != nil {
		fmt.Fprintf(stderr, "pager: %v\n", err)
		return exitError
	}
	return exitOK
}

// renderForPager renders the transcript twice: once styled for display and
// once plain for search and copy. Both passes produce the same line count.
func (s *session) renderForPager(ctx context.Context) ([]string, []string, error) {
	var styledBuf, plainBuf bytes.Buffer
	rec := diag.NewRecorder(nil)
	styled := render.NewPrinter(&styledBuf, render.Options{
		StripStyling: s.cfg.StripStyling,
		Width:        s.cfg.Width,
		Renderer:     lipgloss.DefaultRenderer(),
	})
	if _, err := sequence.New(styled, rec).Process(ctx, s.entries, s.options()); err != nil {
		return nil, nil, err
	}
	plain := render.NewPrinter(&plainBuf, render.Options{StripStyling: true, Width: s.cfg.Width})
	if _, err := sequence.New(plain, nil).Process(ctx, s.entries, s.options()); err != nil {
		return nil, nil, err
	}
	return splitLines(styledBuf.String()), splitLines(plainBuf.String()), nil
}

func (s *session) options() sequence.Options {
	return sequence.Options{Mode: s.mode, Indexed: s.cfg.Indexed, Debug: s.cfg.Debug}
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func summaryLine(res sequence.Result) string {
	counts := map[string]int{}
	for _, rec := range res.Records {
		counts[string(rec.Kind)]++
	}
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	var b strings.Builder
	fmt.Fprintf(&b, "diagnostics: pass=%s rendered=%d", res.Pass, res.Rendered)
	for _, k := range kinds {
		fmt.Fprintf(&b, " %s=%d", k, counts[k])
	}
	return b.String()
}

func configMain(args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 && args[0] == "init" {
		return configInit(args[1:], stdout, stderr)
	}
	fs, cli := newFlagSet("config", stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	cfg, err := resolveConfig(fs, cli)
	if err != nil {
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return exitError
	}
	data, err := config.Encode(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "failed to encode config: %v\n", err)
		return exitError
	}
	fmt.Fprintf(stdout, "# %s\n", cfg.Source)
	_, _ = stdout.Write(data)
	return exitOK
}

func configInit(args []string, stdout, stderr io.Writer) int {
	fs, cli := newFlagSet("config init", stderr)
	fs.BoolVar(&cli.force, "force", false, "Overwrite an existing config file")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	path := cli.cfgPath
	if path == "" {
		path = config.DefaultPath()
	}
	if _, err := os.Stat(path); err == nil && !cli.force {
		fmt.Fprintf(stderr, "config already exists at %s (use -force to overwrite)\n", path)
		return exitError
	}
	if err := config.Save(path, config.Default()); err != nil {
		fmt.Fprintf(stderr, "failed to save config: %v\n", err)
		return exitError
	}
	fmt.Fprintf(stdout, "wrote %s\n", path)
	return exitOK
}
