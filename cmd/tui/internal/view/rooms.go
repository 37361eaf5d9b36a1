package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/billroom/internal/engine"
)

// OpenChatMsg switches to the chat of a room.
type OpenChatMsg struct {
	Room string
}

// RoomsModel is the live floor overview: totals, network state and room occupancy.
type RoomsModel struct {
	CommonModel
	eng *engine.Engine

	table table.Model
	rooms []string
}

func NewRoomsModel(eng *engine.Engine) RoomsModel {
	columns := []table.Column{
		{Title: "Room", Width: 8},
		{Title: "Employee", Width: 24},
		{Title: "State", Width: 10},
		{Title: "Queued", Width: 8},
	}

	m := RoomsModel{
		eng:   eng,
		table: newTable(columns, PaletteFor(eng.Theme())),
	}
	m.refresh()

	return m
}

func (m RoomsModel) Title() string { return "Floor" }

func (m RoomsModel) ShortHelp() string {
	return "Esc: back | Enter: open chat | n: toggle network"
}

func (m RoomsModel) Init() tea.Cmd {
	return nil
}

func (m RoomsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TickMsg:
		m.refresh()
		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 12)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "n":
			m.eng.SetOnline(!m.eng.Online())
			return m, nil
		case "enter":
			idx := m.table.Cursor()
			if idx < 0 || idx >= len(m.rooms) {
				return m, nil
			}

			room := m.rooms[idx]

			return m, func() tea.Msg { return OpenChatMsg{Room: room} }
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m *RoomsModel) refresh() {
	owners := make(map[string]string)
	for _, emp := range m.eng.Staff() {
		owners[emp.RoomNumber] = emp.Name
	}

	seen := make(map[string]bool)
	rows := make([]table.Row, 0)
	m.rooms = m.rooms[:0]

	for _, s := range m.eng.Rooms() {
		state := "idle"
		if s.Busy {
			state = "busy"
		}

		rows = append(rows, table.Row{s.Room, owners[s.Room], state, fmt.Sprint(s.Pending)})
		m.rooms = append(m.rooms, s.Room)
		seen[s.Room] = true
	}

	for _, emp := range m.eng.Staff() {
		if seen[emp.RoomNumber] {
			continue
		}

		rows = append(rows, table.Row{emp.RoomNumber, emp.Name, "idle", "0"})
		m.rooms = append(m.rooms, emp.RoomNumber)
	}

	m.table.SetRows(rows)
}

func (m RoomsModel) View() string {
	p := PaletteFor(m.eng.Theme())

	network := lipgloss.NewStyle().Foreground(p.Good).Render("ONLINE")
	if !m.eng.Online() {
		network = lipgloss.NewStyle().Foreground(p.Bad).Render("OFFLINE")
	}

	live, archive := m.eng.Totals(), m.eng.Archive()

	header := fmt.Sprintf(
		"Network: %s\n\nRevenue %s | Tax A %s | Tax B %s\n%s",
		network,
		p.Highlight(FormatAmount(live.Revenue)),
		FormatAmount(live.TaxA),
		FormatAmount(live.TaxB),
		p.Faint("archived "+FormatAmount(archive.Revenue)),
	)

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().PaddingBottom(1).Render(header),
			p.Boxed(m.table.View()),
		),
	)
}
