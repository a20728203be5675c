package render

import "github.com/charmbracelet/lipgloss"

type styles struct {
	system    lipgloss.Style
	monologue lipgloss.Style
	assistant lipgloss.Style
	code      lipgloss.Style
	user      lipgloss.Style
	function  lipgloss.Style
	ok        lipgloss.Style
	memory    lipgloss.Style
	diffOld   lipgloss.Style
	diffNew   lipgloss.Style
	warning   lipgloss.Style
}

// newStyles binds every style to r so the color profile follows the output
// writer rather than stdout. plain yields empty styles.
func newStyles(r *lipgloss.Renderer, plain bool) styles {
	if plain {
		empty := r.NewStyle()
		return styles{
			system: empty, monologue: empty, assistant: empty, code: empty, user: empty,
			function: empty, ok: empty, memory: empty, diffOld: empty, diffNew: empty, warning: empty,
		}
	}
	return styles{
		system:    r.NewStyle().Foreground(lipgloss.Color("5")).Bold(true),
		monologue: r.NewStyle().Foreground(lipgloss.Color("8")).Italic(true),
		assistant: r.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		code:      r.NewStyle().Foreground(lipgloss.Color("6")),
		user:      r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		function:  r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		ok:        r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		memory:    r.NewStyle().Foreground(lipgloss.Color("13")).Bold(true),
		diffOld:   r.NewStyle().Foreground(lipgloss.Color("#dc2626")).Bold(true),
		diffNew:   r.NewStyle().Foreground(lipgloss.Color("#16a34a")).Bold(true),
		warning:   r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
}
