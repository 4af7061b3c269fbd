package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pipewright/pipewright/pkg/editor"
	"github.com/pipewright/pipewright/pkg/graph"
)

const canvasHeight = 20

// Styles
var (
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true)

	canvasStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63"))

	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	pipeLockStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)

	validStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	invalidStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// nodeGlyphs maps component types to their canvas markers.
var nodeGlyphs = map[graph.NodeType]string{
	graph.NodeMeter:     "M",
	graph.NodeJunction:  "+",
	graph.NodeManifold:  "#",
	graph.NodeAppliance: "A",
}

type model struct {
	session *editor.Session

	width  int
	height int
	ready  bool

	// cursor tracks the last pointer position in canvas coordinates so
	// keyboard placement lands where the mouse last was.
	cursor graph.Point

	// editing holds the id of the node whose demand/name form is open.
	editing string
	input   textinput.Model
	status  string
}

func initialModel() model {
	ti := textinput.New()
	ti.Placeholder = "demand in BTU/h"
	ti.CharLimit = 24
	ti.Width = 24

	return model{
		session: editor.NewSession(editor.DefaultConfig()),
		cursor:  graph.Point{X: graph.CanvasSize / 2, Y: graph.CanvasSize / 2},
		input:   ti,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

// toCanvas converts a terminal cell to logical canvas coordinates. The
// canvas border eats one cell on each side.
func (m model) toCanvas(x, y int) graph.Point {
	w := m.width - 2
	if w < 1 {
		w = 1
	}
	return graph.Point{
		X: float64(x-1) * graph.CanvasSize / float64(w),
		Y: float64(y-1) * graph.CanvasSize / float64(canvasHeight),
	}
}

// toCell converts canvas coordinates back to a terminal cell.
func (m model) toCell(p graph.Point) (int, int) {
	w := m.width - 2
	if w < 1 {
		w = 1
	}
	x := int(p.X * float64(w) / graph.CanvasSize)
	y := int(p.Y * float64(canvasHeight) / graph.CanvasSize)
	if x >= w {
		x = w - 1
	}
	if y >= canvasHeight {
		y = canvasHeight - 1
	}
	return x, y
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case tea.MouseMsg:
		return m.updateMouse(msg)

	case tea.KeyMsg:
		if m.editing != "" {
			return m.updateEditForm(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m model) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	pos := m.toCanvas(msg.X, msg.Y)
	m.cursor = pos

	ev := editor.Event{
		Device: editor.DeviceMouse,
		Pos:    pos,
		Time:   time.Now(),
	}
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		ev.Kind = editor.EventPointerDown
		ev.TargetID = m.session.HitTest(pos)
	case tea.MouseActionMotion:
		ev.Kind = editor.EventPointerMove
	case tea.MouseActionRelease:
		ev.Kind = editor.EventPointerUp
		under := m.session.HitTest(pos)
		ev.TargetID = under
		ev.UnderID = under
	default:
		return m, nil
	}

	if err := m.session.HandlePointer(ev); err != nil {
		m.status = errorStyle.Render(err.Error())
		return m, nil
	}

	if id, ok := m.session.PendingEdit(); ok {
		return m.openEditForm(id)
	}
	return m, nil
}

func (m model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "s":
		m.session.SetMode(editor.ModeSelect)
	case "p":
		m.session.SetMode(editor.ModePipe)
	case "1", "2", "3", "4":
		types := map[string]graph.NodeType{
			"1": graph.NodeMeter,
			"2": graph.NodeJunction,
			"3": graph.NodeManifold,
			"4": graph.NodeAppliance,
		}
		t := types[msg.String()]
		if _, err := m.session.AddNode(t, m.cursor, ""); err != nil {
			m.status = errorStyle.Render(err.Error())
		} else {
			m.status = fmt.Sprintf("Placed %s", t)
		}
	case "d", "delete", "backspace":
		ev := editor.Event{Kind: editor.EventDeletePressed, Device: editor.DeviceMouse, Time: time.Now()}
		if err := m.session.HandlePointer(ev); err != nil {
			m.status = errorStyle.Render(err.Error())
		}
	case "e":
		if id := m.session.UIState().SelectedID; id != "" {
			return m.openEditForm(id)
		}
	}
	return m, nil
}

func (m model) openEditForm(id string) (tea.Model, tea.Cmd) {
	g := m.session.Graph()
	n, ok := g.Nodes[id]
	if !ok {
		return m, nil
	}
	m.editing = id
	if graph.AttributesFor(n.Type).HasDemand {
		m.input.Placeholder = "demand in BTU/h"
		m.input.SetValue(strconv.FormatInt(n.Demand, 10))
	} else {
		m.input.Placeholder = "name"
		m.input.SetValue(n.Name)
	}
	m.input.Focus()
	return m, textinput.Blink
}

func (m model) updateEditForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editing = ""
		m.input.Blur()
		return m, nil
	case "enter":
		id := m.editing
		m.editing = ""
		m.input.Blur()

		g := m.session.Graph()
		n, ok := g.Nodes[id]
		if !ok {
			return m, nil
		}
		value := strings.TrimSpace(m.input.Value())
		if graph.AttributesFor(n.Type).HasDemand {
			demand, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				m.status = errorStyle.Render("demand must be a whole number")
				return m, nil
			}
			if err := m.session.SetDemand(id, demand); err != nil {
				m.status = errorStyle.Render(err.Error())
				return m, nil
			}
			m.status = fmt.Sprintf("Demand of %s set to %d BTU/h", n.Name, demand)
		} else if value != "" {
			if err := m.session.RenameNode(id, value); err != nil {
				m.status = errorStyle.Render(err.Error())
				return m, nil
			}
			m.status = fmt.Sprintf("Renamed to %s", value)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) renderCanvas() string {
	w := m.width - 2
	if w < 10 {
		w = 10
	}

	cells := make([][]string, canvasHeight)
	for y := range cells {
		cells[y] = make([]string, w)
		for x := range cells[y] {
			cells[y][x] = " "
		}
	}

	g := m.session.Graph()
	ui := m.session.UIState()

	for _, n := range g.Nodes {
		x, y := m.toCell(n.Position)
		glyph := nodeGlyphs[n.Type]
		switch n.ID {
		case ui.PipeSourceID:
			glyph = pipeLockStyle.Render(glyph)
		case ui.SelectedID:
			glyph = selectedStyle.Render(glyph)
		}
		cells[y][x] = glyph
	}

	rows := make([]string, canvasHeight)
	for y := range cells {
		rows[y] = strings.Join(cells[y], "")
	}
	return canvasStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m model) renderSegments() string {
	g := m.session.Graph()
	verdicts := m.session.Verdicts()

	ids := make([]string, 0, len(g.Edges))
	for id := range g.Edges {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var sb strings.Builder
	sb.WriteString(lipgloss.NewStyle().Bold(true).Underline(true).Render("Segments") + "\n")
	if len(ids) == 0 {
		sb.WriteString(subtleStyle.Render("No pipes drawn. Press p, then tap two components."))
	}
	for _, id := range ids {
		e := g.Edges[id]
		from, to := id, id
		if n, ok := g.Nodes[e.From]; ok {
			from = n.Name
		}
		if n, ok := g.Nodes[e.To]; ok {
			to = n.Name
		}
		v := verdicts[id]
		line := fmt.Sprintf("%s → %s  %s\" @ %gft  %d/%d BTU/h",
			from, to, e.Size, e.Length, v.Flow, v.Capacity)
		if v.IsValid {
			sb.WriteString(validStyle.Render(line))
		} else {
			sb.WriteString(invalidStyle.Render(line + "  OVERLOADED"))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m model) View() string {
	if !m.ready {
		return "\nInitializing..."
	}

	ui := m.session.UIState()
	header := headerStyle.Width(m.width - 2).Render(
		fmt.Sprintf("Pipewright  [%s mode]", ui.Mode))

	var form string
	if m.editing != "" {
		form = fmt.Sprintf("\nEdit: %s (enter to apply, esc to cancel)", m.input.View())
	}

	invalid := 0
	for _, v := range m.session.Verdicts() {
		if !v.IsValid {
			invalid++
		}
	}
	var summary string
	if invalid > 0 {
		summary = errorStyle.Render(fmt.Sprintf("%d segment(s) overloaded", invalid))
	} else {
		summary = okStyle.Render("All segments within capacity")
	}

	footer := subtleStyle.Render(
		"\n" + summary + "  " + m.status +
			"\ns/p mode • 1-4 place meter/tee/manifold/appliance • click to select, double-click to edit • d delete • q quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.renderCanvas(),
		m.renderSegments(),
		form,
		footer,
	)
}

func main() {
	p := tea.NewProgram(initialModel(), tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
}
