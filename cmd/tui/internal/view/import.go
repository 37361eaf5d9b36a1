package view

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/billroom/internal/engine"
	"github.com/MrJamesThe3rd/billroom/internal/staff"
)

type rosterState int

const (
	rosterStateBrowse rosterState = iota
	rosterStateAdd
	rosterStateFilePick
	rosterStateResult
)

// RosterModel lists staff and adds profiles by hand or from a CSV roster.
type RosterModel struct {
	CommonModel
	eng *engine.Engine

	state      rosterState
	table      table.Model
	filePicker filepicker.Model
	form       *huh.Form

	fields *employeeFields

	status string
	err    error
}

type employeeFields struct {
	name  string
	role  string
	room  string
	image string
}

func NewRosterModel(eng *engine.Engine) RosterModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	columns := []table.Column{
		{Title: "Room", Width: 8},
		{Title: "Name", Width: 26},
		{Title: "Role", Width: 20},
	}

	m := RosterModel{
		eng:        eng,
		filePicker: fp,
		table:      newTable(columns, PaletteFor(eng.Theme())),
	}
	m.refreshTable()

	return m
}

func (m RosterModel) Title() string { return "Staff" }

func (m RosterModel) ShortHelp() string {
	switch m.state {
	case rosterStateAdd:
		return "Tab: next field | Esc: cancel"
	case rosterStateFilePick:
		return "Enter: select | Esc: cancel"
	}

	return "Esc: back | a: add | i: import roster"
}

func (m RosterModel) Init() tea.Cmd {
	return nil
}

func (m RosterModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

	case importResultMsg:
		m.state = rosterStateResult
		m.err = msg.err

		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("Imported %d staff profiles.", msg.count)
		}

		m.refreshTable()

		return m, nil
	}

	switch m.state {
	case rosterStateBrowse:
		return m.updateBrowse(msg)
	case rosterStateAdd:
		return m.updateAdd(msg)
	case rosterStateFilePick:
		return m.updateFilePick(msg)
	}

	return m, nil
}

func (m RosterModel) handleEsc() (tea.Model, tea.Cmd) {
	if m.state == rosterStateBrowse {
		return m, Back
	}

	m.state = rosterStateBrowse
	m.form = nil
	m.err = nil
	m.status = ""
	m.table.Focus()

	return m, nil
}

func (m RosterModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "a":
			return m.enterAddMode()
		case "i":
			m.state = rosterStateFilePick
			return m, m.filePicker.Init()
		}
	}

	if _, ok := msg.(TickMsg); ok {
		m.refreshTable()
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m RosterModel) enterAddMode() (tea.Model, tea.Cmd) {
	f := &employeeFields{}
	m.fields = f

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&f.name).Validate(required("name")),
			huh.NewInput().Title("Role").Value(&f.role).Validate(required("role")),
			huh.NewInput().Title("Room").Value(&f.room).Validate(required("room")),
			huh.NewInput().Title("Image URL").Placeholder("https://...").Value(&f.image),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = rosterStateAdd
	m.table.Blur()

	return m, m.form.Init()
}

func (m RosterModel) updateAdd(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	f := m.fields

	emp, err := m.eng.AddStaff(staff.CreateParams{
		Name:       f.name,
		Role:       f.role,
		RoomNumber: f.room,
		ImageURL:   f.image,
	})

	m.state = rosterStateResult
	m.err = err

	switch {
	case errors.Is(err, staff.ErrRoomTaken):
		m.status = fmt.Sprintf("Room %s already has an employee.", f.room)
	case err != nil:
		m.status = fmt.Sprintf("Error: %v", err)
	default:
		m.status = fmt.Sprintf("Added %s to room %s.", emp.Name, emp.RoomNumber)
	}

	m.refreshTable()

	return m, nil
}

func (m RosterModel) updateFilePick(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.status = fmt.Sprintf("Importing from %s...", path)
		return m, m.importCmd(path)
	}

	return m, cmd
}

func (m *RosterModel) refreshTable() {
	employees := m.eng.Staff()

	rows := make([]table.Row, 0, len(employees))
	for _, emp := range employees {
		rows = append(rows, table.Row{emp.RoomNumber, emp.Name, emp.Role})
	}

	m.table.SetRows(rows)
}

func (m RosterModel) View() string {
	p := PaletteFor(m.eng.Theme())

	switch m.state {
	case rosterStateAdd:
		return lipgloss.NewStyle().Padding(1).Render(
			lipgloss.JoinHorizontal(lipgloss.Top,
				p.Boxed(m.table.View()),
				lipgloss.NewStyle().
					Padding(1, 2).
					BorderStyle(lipgloss.RoundedBorder()).
					BorderForeground(p.Accent).
					Width(48).
					Render("New Employee\n\n"+m.form.View()),
			),
		)
	case rosterStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Select roster to import (Name;Role;Room):\n\n%s", m.filePicker.View()),
		)
	case rosterStateResult:
		color := p.Good
		if m.err != nil {
			color = p.Bad
		}

		return lipgloss.NewStyle().Padding(2).Render(
			lipgloss.NewStyle().Foreground(color).Render(m.status) + "\n\n(Esc to go back)",
		)
	}

	return lipgloss.NewStyle().Padding(1).Render(p.Boxed(m.table.View()))
}

// Messages

type importResultMsg struct {
	count int
	err   error
}

func (m RosterModel) importCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		added, err := m.eng.ImportStaff(f)

		return importResultMsg{count: len(added), err: err}
	}
}
