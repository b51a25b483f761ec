package browse

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobby/internal/model"
)

// Lines per row in the list view (title + subtitle + blank separator).
const rowItemHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

var (
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")) // bright blue

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("39"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	titleStyle = lipgloss.NewStyle().
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	selectedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")). // bright white
				Background(lipgloss.Color("24"))  // dark blue bg

	selectedSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("24"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(16)

	labelStyles = map[model.Label]lipgloss.Style{
		model.LabelNew:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),  // green
		model.LabelOld:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),            // gray
		model.LabelGone: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")), // red
	}
)

type viewerModel struct {
	result model.Result
	filter model.Label // empty shows every row
	rows   []model.Row
	cursor int
	list   viewport.Model
	detail viewport.Model
	view   viewState
	width  int
	height int
	ready  bool
}

func newViewerModel(result model.Result) viewerModel {
	m := viewerModel{result: result}
	m.applyFilter("")
	return m
}

func (m viewerModel) Init() tea.Cmd {
	return nil
}

func (m viewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		return m, nil

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		return m.updateListView(msg)
	}
	return m, nil
}

func (m viewerModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "a":
		m.applyFilter("")
	case "n":
		m.applyFilter(model.LabelNew)
	case "o":
		m.applyFilter(model.LabelOld)
	case "g":
		m.applyFilter(model.LabelGone)
	case "up", "k":
		m.cursor = clamp(m.cursor-1, 0, max(len(m.rows)-1, 0))
		m.ensureCursorVisible()
	case "down", "j":
		m.cursor = clamp(m.cursor+1, 0, max(len(m.rows)-1, 0))
		m.ensureCursorVisible()
	case "enter":
		if len(m.rows) > 0 {
			m.view = viewDetail
			m.detail = viewport.New(max(m.width-4, 20), max(m.height-4, 5))
			m.detail.SetContent(renderDetail(m.rows[m.cursor], m.result.Extra))
		}
		return m, nil
	default:
		// Forward other keys (pgup/pgdn/home/end) to the list viewport.
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	m.list.SetContent(renderRows(m.rows, m.cursor))
	return m, nil
}

func (m viewerModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		return m, nil
	}
	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m *viewerModel) applyFilter(label model.Label) {
	m.filter = label
	if label == "" {
		m.rows = m.result.Rows
	} else {
		m.rows = m.result.Filter(label)
	}
	m.cursor = 0
	m.list.SetYOffset(0)
}

func (m *viewerModel) ensureCursorVisible() {
	top := m.cursor * rowItemHeight
	bottom := top + rowItemHeight - 1
	if top < m.list.YOffset {
		m.list.SetYOffset(top)
	} else if bottom >= m.list.YOffset+m.list.Height {
		m.list.SetYOffset(bottom - m.list.Height + 1)
	}
}

func (m *viewerModel) recalcLayout() {
	// Header (1 line) + border top/bottom (2) + status bar (1) = 4 lines overhead.
	w, h := max(m.width-4, 20), max(m.height-4, 5)
	if !m.ready {
		m.list = viewport.New(w, h)
		m.ready = true
	} else {
		m.list.Width, m.list.Height = w, h
	}
	if m.view == viewDetail {
		m.detail.Width, m.detail.Height = w, h
	}
	m.list.SetContent(renderRows(m.rows, m.cursor))
}

func (m viewerModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.view == viewDetail {
		header := headerStyle.Render("Listing")
		status := statusBarStyle.Width(m.width).Render(" esc/backspace back  ↑/↓ scroll  q quit")
		return header + "\n" + borderStyle.Width(m.width-2).Render(m.detail.View()) + "\n" + status
	}

	shown := "all"
	if m.filter != "" {
		shown = string(m.filter)
	}
	header := headerStyle.Render(fmt.Sprintf("Listings: %s (%d)", shown, len(m.rows)))
	status := statusBarStyle.Width(m.width).Render(fmt.Sprintf(
		" %d new | %d old | %d gone    a/n/o/g filter  j/k cursor  Enter detail  q quit",
		m.result.Count(model.LabelNew), m.result.Count(model.LabelOld), m.result.Count(model.LabelGone)))
	return header + "\n" + borderStyle.Width(m.width-2).Render(m.list.View()) + "\n" + status
}

func renderRows(rows []model.Row, cursor int) string {
	if len(rows) == 0 {
		return "  (no listings)"
	}

	var b strings.Builder
	for i, row := range rows {
		titleSt, subtitleSt, prefix := titleStyle, subtitleStyle, "  "
		if i == cursor {
			titleSt, subtitleSt, prefix = selectedTitleStyle, selectedSubtitleStyle, "> "
		}

		b.WriteString(prefix)
		b.WriteString(labelStyles[row.Label].Render(fmt.Sprintf("%-4s", row.Label)))
		b.WriteString(" ")
		b.WriteString(titleSt.Render(row.Record.Title))
		b.WriteByte('\n')

		b.WriteString(prefix)
		b.WriteString(subtitleSt.Render(subtitle(row.Record)))
		b.WriteByte('\n')

		if i < len(rows)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func subtitle(r model.Record) string {
	parts := []string{r.Company}
	if r.Location != "" {
		parts = append(parts, r.Location)
	}
	if r.AllowsRemote != nil && *r.AllowsRemote {
		parts = append(parts, "remote")
	}
	return strings.Join(parts, " · ")
}

func renderDetail(row model.Row, extra []string) string {
	var b strings.Builder
	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(value)
		b.WriteByte('\n')
	}

	addField("Status", labelStyles[row.Label].Render(string(row.Label)))
	r := row.Record
	addField("Title", r.Title)
	addField("Company", r.Company)
	addField("Location", r.Location)
	addField("Remote", flagText(r.AllowsRemote))
	addField("Full time", flagText(r.IsFullTime))
	addField("UID", r.UID)
	for _, col := range extra {
		addField(col, r.Extra[col])
	}
	return b.String()
}

func flagText(b *bool) string {
	switch {
	case b == nil:
		return ""
	case *b:
		return "yes"
	default:
		return "no"
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// RunViewer launches the interactive viewer for result in the alt screen.
func RunViewer(result model.Result) error {
	p := tea.NewProgram(newViewerModel(result), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
