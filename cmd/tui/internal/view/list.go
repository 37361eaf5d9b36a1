package view

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/billroom/internal/engine"
	"github.com/MrJamesThe3rd/billroom/internal/ledger"
	"github.com/MrJamesThe3rd/billroom/internal/transaction"
)

type ListModel struct {
	CommonModel
	eng *engine.Engine

	table table.Model
	txs   []transaction.Transaction

	// Filter cycling
	statusFilterIdx int

	filter ledger.ListFilter
	status string
}

func NewListModel(eng *engine.Engine) ListModel {
	columns := []table.Column{
		{Title: "Time", Width: 10},
		{Title: "ID", Width: 22},
		{Title: "Sender", Width: 22},
		{Title: "Receiver", Width: 22},
		{Title: "Room", Width: 6},
		{Title: "Status", Width: 10},
		{Title: "Total", Width: 16},
	}

	m := ListModel{
		eng:   eng,
		table: newTable(columns, PaletteFor(eng.Theme())),
	}
	m.refreshTable()

	return m
}

func (m ListModel) Title() string { return "Ledger" }
func (m ListModel) ShortHelp() string {
	return "Esc: back | s: status filter | v: mark verified | r: refresh"
}

func (m ListModel) Init() tea.Cmd {
	return nil
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TickMsg:
		m.refreshTable()
		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.refreshTable()
			return m, nil
		case "s":
			m.statusFilterIdx = (m.statusFilterIdx + 1) % 3
			m.applyFilter()
			m.refreshTable()

			return m, nil
		case "v":
			m.verifySelected()
			m.refreshTable()

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m *ListModel) verifySelected() {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return
	}

	tx, err := m.eng.MarkVerified(m.txs[idx].ID)

	switch {
	case errors.Is(err, transaction.ErrAlreadyVerified):
		m.status = "Already verified."
	case err != nil:
		m.status = fmt.Sprintf("Error: %v", err)
	default:
		m.status = fmt.Sprintf("Verified %s (%s).", tx.ID, FormatAmount(tx.Total))
	}
}

func (m ListModel) View() string {
	p := PaletteFor(m.eng.Theme())
	statusLabels := []string{"All", "Verifying", "Verified"}

	header := fmt.Sprintf("Filter: [s] Status: %s | %d shown",
		p.Highlight(statusLabels[m.statusFilterIdx]), len(m.txs))

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		p.Boxed(m.table.View()),
	)

	if m.status != "" {
		content = p.Faint(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *ListModel) applyFilter() {
	switch m.statusFilterIdx {
	case 1:
		m.filter.Status = new(transaction.StatusVerifying)
	case 2:
		m.filter.Status = new(transaction.StatusVerified)
	default:
		m.filter.Status = nil
	}
}

func (m *ListModel) refreshTable() {
	m.txs = m.eng.Transactions(m.filter)

	rows := make([]table.Row, 0, len(m.txs))
	for _, tx := range m.txs {
		rows = append(rows, table.Row{
			FormatTime(tx.CreatedAt),
			tx.ID,
			tx.SenderName,
			tx.ReceiverName,
			tx.AssignedRoom,
			string(tx.Status),
			FormatAmount(tx.Total),
		})
	}

	m.table.SetRows(rows)
}
