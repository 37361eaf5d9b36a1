package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/billroom/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/billroom/internal/app"
	"github.com/MrJamesThe3rd/billroom/internal/config"
	"github.com/MrJamesThe3rd/billroom/internal/engine"
)

const logFile = "billroom-tui.log"

type model struct {
	eng *engine.Engine

	currentView View
	width       int
	height      int

	roomsView   view.RoomsModel
	listView    view.ListModel
	invoiceView view.InvoiceModel
	rosterView  view.RosterModel
	chatView    view.ChatModel
}

type View int

const (
	ViewMenu    View = 0
	ViewRooms   View = 1
	ViewList    View = 2
	ViewInvoice View = 3
	ViewRoster  View = 4
	ViewChat    View = 5
)

func initialModel(eng *engine.Engine) model {
	return model{
		eng:         eng,
		currentView: ViewMenu,
		roomsView:   view.NewRoomsModel(eng),
		listView:    view.NewListModel(eng),
		invoiceView: view.NewInvoiceModel(eng),
		rosterView:  view.NewRosterModel(eng),
	}
}

func (m model) Init() tea.Cmd {
	return view.Tick()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "t":
				m.eng.ToggleTheme()
				return m, nil
			case "n":
				m.eng.SetOnline(!m.eng.Online())
				return m, nil
			case "1":
				m.currentView = ViewRooms
				m.roomsView = view.NewRoomsModel(m.eng)

				return m, m.resize()
			case "2":
				m.currentView = ViewList
				m.listView = view.NewListModel(m.eng)

				return m, m.resize()
			case "3":
				m.currentView = ViewInvoice
				m.invoiceView = view.NewInvoiceModel(m.eng)

				return m, m.invoiceView.Init()
			case "4":
				m.currentView = ViewRoster
				m.rosterView = view.NewRosterModel(m.eng)

				return m, m.resize()
			case "5":
				return m.openChat(financeRoom(m.eng))
			}
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case view.TickMsg:
		cmd = m.updateCurrent(msg)
		return m, tea.Batch(cmd, view.Tick())

	case view.OpenChatMsg:
		return m.openChat(msg.Room)

	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	return m, m.updateCurrent(msg)
}

func (m *model) updateCurrent(msg tea.Msg) tea.Cmd {
	var (
		newModel tea.Model
		cmd      tea.Cmd
	)

	switch m.currentView {
	case ViewRooms:
		newModel, cmd = m.roomsView.Update(msg)
		m.roomsView = newModel.(view.RoomsModel)
	case ViewList:
		newModel, cmd = m.listView.Update(msg)
		m.listView = newModel.(view.ListModel)
	case ViewInvoice:
		newModel, cmd = m.invoiceView.Update(msg)
		m.invoiceView = newModel.(view.InvoiceModel)
	case ViewRoster:
		newModel, cmd = m.rosterView.Update(msg)
		m.rosterView = newModel.(view.RosterModel)
	case ViewChat:
		newModel, cmd = m.chatView.Update(msg)
		m.chatView = newModel.(view.ChatModel)
	}

	return cmd
}

func (m model) openChat(room string) (tea.Model, tea.Cmd) {
	m.currentView = ViewChat
	m.chatView = view.NewChatModel(m.eng, room)

	return m, m.resize()
}

// resize replays the last window size so a freshly built view fits the terminal.
func (m model) resize() tea.Cmd {
	if m.width == 0 {
		return nil
	}

	w, h := m.width, m.height

	return func() tea.Msg { return tea.WindowSizeMsg{Width: w, Height: h} }
}

func financeRoom(eng *engine.Engine) string {
	return eng.Config().Routing.FinanceRoom
}

func (m model) View() string {
	var body, help string

	switch m.currentView {
	case ViewMenu:
		network := "online"
		if !m.eng.Online() {
			network = "offline"
		}

		return lipgloss.NewStyle().Padding(2).Render(
			"Billroom\n\n" +
				"1. Floor\n" +
				"2. Ledger\n" +
				"3. New Manual Bill\n" +
				"4. Staff\n" +
				"5. Finance Room\n\n" +
				fmt.Sprintf("n. Network (%s)\n", network) +
				fmt.Sprintf("t. Theme (%s)\n", m.eng.Theme()) +
				"q. Quit",
		)
	case ViewRooms:
		body, help = m.roomsView.View(), m.roomsView.ShortHelp()
	case ViewList:
		body, help = m.listView.View(), m.listView.ShortHelp()
	case ViewInvoice:
		body, help = m.invoiceView.View(), m.invoiceView.ShortHelp()
	case ViewRoster:
		body, help = m.rosterView.View(), m.rosterView.ShortHelp()
	case ViewChat:
		body, help = m.chatView.View(), m.chatView.ShortHelp()
	default:
		return "Unknown View"
	}

	return body + "\n" + lipgloss.NewStyle().Faint(true).PaddingLeft(2).Render(help)
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI, so logs go to a file.
	f, err := tea.LogToFile(logFile, "")
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	defer f.Close()

	log := slog.New(slog.NewTextHandler(f, nil))
	slog.SetDefault(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to start:", err)
		os.Exit(1)
	}

	engineDone := make(chan error, 1)
	go func() { engineDone <- a.Run(ctx) }()

	p := tea.NewProgram(initialModel(a.Engine), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Error("failed to run TUI", "error", err)
	}

	cancel()

	if err := <-engineDone; err != nil {
		log.Error("engine stopped", "error", err)
		os.Exit(1)
	}
}
