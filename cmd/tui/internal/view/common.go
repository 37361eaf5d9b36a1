package view

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const refreshInterval = time.Second

type CommonModel struct {
	Width  int
	Height int
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// TickMsg asks the active screen to re-read engine state.
type TickMsg time.Time

func Tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}
