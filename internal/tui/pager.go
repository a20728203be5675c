// Package tui is the interactive pager behind the view subcommand.
package tui

import (
	"fmt"
	"math"
	"strings"

	"transcript-cli/internal/logger"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

var log = logger.Named("tui")

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f8fafc")).Background(lipgloss.Color("#1e3a8a"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))
	matchStyle  = lipgloss.NewStyle().Reverse(true)
)

const defaultSearchLimit = 50

// Options configures the pager.
type Options struct {
	Title string
	// Lines are the rendered transcript lines, possibly styled.
	Lines []string
	// Plain holds the same lines without styling; search and copy use it.
	Plain       []string
	SearchLimit int
	AltScreen   bool
	// InputTTY reads keys from the terminal when stdin carried the transcript.
	InputTTY bool
	// Copy writes text to the clipboard. Defaults to the system clipboard.
	Copy func(string) error
}

// Model is a scrollable, searchable view of a rendered transcript.
type Model struct {
	opts      Options
	viewport  viewport.Model
	input     textinput.Model
	searching bool
	query     string
	matches   []int
	matchIdx  int
	status    string
	width     int
	height    int
}

// New creates a pager over opts.Lines.
func New(opts Options) *Model {
	if opts.Plain == nil {
		opts.Plain = opts.Lines
	}
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = defaultSearchLimit
	}
	if opts.Copy == nil {
		opts.Copy = clipboard.WriteAll
	}
	input := textinput.New()
	input.Prompt = "/"
	input.Placeholder = "search..."
	input.CharLimit = 100

	m := &Model{
		opts:     opts,
		viewport: viewport.New(80, 20),
		input:    input,
		width:    80,
		height:   22,
	}
	m.refresh()
	return m
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m *Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "down", "j":
		m.viewport.ScrollDown(1)
	case "up", "k":
		m.viewport.ScrollUp(1)
	case "pgdown", " ", "f":
		m.viewport.PageDown()
	case "pgup", "b":
		m.viewport.PageUp()
	case "home", "g":
		m.viewport.GotoTop()
	case "end", "G":
		m.viewport.GotoBottom()
	case "/":
		m.searching = true
		m.input.SetValue("")
		return m, m.input.Focus()
	case "n":
		m.jump(1)
	case "N":
		m.jump(-1)
	case "y":
		m.copyAll()
	}
	return m, nil
}

func (m *Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.input.Blur()
		return m, nil
	case "enter":
		m.searching = false
		m.input.Blur()
		m.search(m.input.Value())
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// search ranks lines by fuzzy score and moves to the best match.
func (m *Model) search(query string) {
	m.query = strings.TrimSpace(query)
	m.matches = nil
	m.matchIdx = 0
	if m.query == "" {
		m.status = ""
		m.refresh()
		return
	}
	results := fuzzy.Find(m.query, m.opts.Plain)
	for i, res := range results {
		if i >= m.opts.SearchLimit {
			break
		}
		m.matches = append(m.matches, res.Index)
	}
	log.Debugf("search %q: %d matches", m.query, len(results))
	if len(m.matches) == 0 {
		m.status = fmt.Sprintf("no match for %q", m.query)
		m.refresh()
		return
	}
	m.status = ""
	m.refresh()
	m.viewport.SetYOffset(m.matches[0])
}

func (m *Model) jump(delta int) {
	if len(m.matches) == 0 {
		return
	}
	m.matchIdx = (m.matchIdx + delta + len(m.matches)) % len(m.matches)
	m.refresh()
	m.viewport.SetYOffset(m.matches[m.matchIdx])
}

func (m *Model) copyAll() {
	text := strings.Join(m.opts.Plain, "\n")
	if err := m.opts.Copy(text); err != nil {
		log.WithError(err).Warn("clipboard copy failed")
		m.status = "copy failed: " + err.Error()
		return
	}
	m.status = fmt.Sprintf("copied %d lines", len(m.opts.Plain))
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	h := height - 2
	if h < 1 {
		h = 1
	}
	m.viewport.Height = h
	m.input.Width = width - 2
	m.refresh()
}

// refresh rebuilds the viewport content, highlighting the current match.
func (m *Model) refresh() {
	offset := m.viewport.YOffset
	lines := m.opts.Lines
	if len(m.matches) > 0 {
		current := m.matches[m.matchIdx]
		lines = append([]string(nil), m.opts.Lines...)
		if current < len(lines) && current < len(m.opts.Plain) {
			lines[current] = matchStyle.Render(m.opts.Plain[current])
		}
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
	m.viewport.SetYOffset(offset)
}

func (m *Model) View() string {
	var b strings.Builder
	title := m.opts.Title
	if title == "" {
		title = "transcript"
	}
	b.WriteString(titleStyle.Render(" " + title + " "))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	return b.String()
}

func (m *Model) statusLine() string {
	if m.searching {
		return m.input.View()
	}
	percent := int(math.Round(m.viewport.ScrollPercent() * 100))
	info := fmt.Sprintf("%d lines  %d%%", len(m.opts.Lines), percent)
	if len(m.matches) > 0 {
		info += fmt.Sprintf("  match %d/%d", m.matchIdx+1, len(m.matches))
	}
	if m.status != "" {
		info += "  " + m.status
	}
	return statusStyle.Render(info + "  q: quit  /: search  n/N: next/prev  y: copy")
}

// Offset is the index of the first visible line.
func (m *Model) Offset() int {
	return m.viewport.YOffset
}

// Matches returns the line indexes of the last search, best first.
func (m *Model) Matches() []int {
	return append([]int(nil), m.matches...)
}

// Run opens the pager and blocks until the user quits.
func Run(opts Options) error {
	var programOptions []tea.ProgramOption
	if opts.AltScreen {
		programOptions = append(programOptions, tea.WithAltScreen())
	}
	if opts.InputTTY {
		programOptions = append(programOptions, tea.WithInputTTY())
	}
	program := tea.NewProgram(New(opts), programOptions...)
	_, err := program.Run()
	return err
}
