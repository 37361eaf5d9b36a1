package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/billroom/internal/chat"
	"github.com/MrJamesThe3rd/billroom/internal/engine"
)

// ChatModel follows the conversation of one room as it plays out.
type ChatModel struct {
	CommonModel
	eng  *engine.Engine
	room string

	viewport viewport.Model
	count    int
}

func NewChatModel(eng *engine.Engine, room string) ChatModel {
	vp := viewport.New(90, 20)

	m := ChatModel{eng: eng, room: room, viewport: vp}
	m.refresh()

	return m
}

func (m ChatModel) Title() string { return "Room " + m.room }

func (m ChatModel) ShortHelp() string {
	return "Esc: back | ↑/↓: scroll"
}

func (m ChatModel) Init() tea.Cmd {
	return nil
}

func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TickMsg:
		m.refresh()
		return m, nil

	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - 8
		m.refresh()

		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)

	return m, cmd
}

func (m *ChatModel) refresh() {
	p := PaletteFor(m.eng.Theme())
	msgs := m.eng.Messages(m.room)

	var b strings.Builder
	for _, msg := range msgs {
		b.WriteString(renderMessage(p, msg))
		b.WriteString("\n")
	}

	m.viewport.SetContent(b.String())

	// Stick to the bottom only when something new arrived.
	if len(msgs) != m.count {
		m.viewport.GotoBottom()
		m.count = len(msgs)
	}
}

func renderMessage(p Palette, msg chat.Message) string {
	color := p.Visitor
	if msg.IsEmployee {
		color = p.Staff
	}

	name := lipgloss.NewStyle().Foreground(color).Bold(true).Render(msg.SenderName)
	prefix := fmt.Sprintf("%s %s", p.Faint(FormatTime(msg.Timestamp)), name)

	switch msg.Kind {
	case chat.KindInvoiceBanner:
		return p.Highlight("── " + msg.Text + " ──")
	case chat.KindProcessing, chat.KindNextOrder:
		return p.Faint("   " + msg.Text)
	case chat.KindBillBreakdown:
		if md := msg.Metadata; md != nil && md.Breakdown != nil {
			bd := md.Breakdown

			return fmt.Sprintf("%s: %s\n      subtotal %s  tax A %s  tax B %s  bank %s  = %s",
				prefix, msg.Text,
				FormatAmount(bd.Subtotal), FormatAmount(bd.TaxA), FormatAmount(bd.TaxB),
				FormatAmount(bd.BankCharge), p.Highlight(FormatAmount(bd.FinalTotal)))
		}
	case chat.KindBankDetailsSubmission:
		if md := msg.Metadata; md != nil {
			return fmt.Sprintf("%s: %s\n      %s  ****%s  %s", prefix, msg.Text, md.BankName, md.AccountLast4, md.IFSC)
		}
	case chat.KindApproving, chat.KindFinanceApproval, chat.KindFinanceSuccess, chat.KindBankVerificationSuccess:
		return fmt.Sprintf("%s: %s", prefix, lipgloss.NewStyle().Foreground(p.Good).Render(msg.Text))
	}

	return fmt.Sprintf("%s: %s", prefix, msg.Text)
}

func (m ChatModel) View() string {
	p := PaletteFor(m.eng.Theme())

	typing := ""
	if t, ok := m.eng.Typing()[m.room]; ok {
		typing = p.Faint(t.Name + " is typing...")
	}

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			p.Highlight(m.Title()),
			p.Boxed(m.viewport.View()),
			typing,
		),
	)
}
