package view

import (
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/billroom/internal/money"
	"github.com/MrJamesThe3rd/billroom/internal/preferences"
)

// FormatAmount formats an amount stored in paise as rupees.
func FormatAmount(paise int64) string {
	return money.Format(paise)
}

func FormatTime(t time.Time) string {
	return t.Local().Format("15:04:05")
}

func FormatDate(t time.Time) string {
	return t.Local().Format("02 Jan 2006")
}

type Palette struct {
	Accent  lipgloss.Color
	Muted   lipgloss.Color
	Border  lipgloss.Color
	Good    lipgloss.Color
	Bad     lipgloss.Color
	Staff   lipgloss.Color
	Visitor lipgloss.Color
}

func PaletteFor(theme preferences.Theme) Palette {
	if theme == preferences.ThemeDark {
		return Palette{
			Accent:  "205",
			Muted:   "245",
			Border:  "240",
			Good:    "46",
			Bad:     "196",
			Staff:   "81",
			Visitor: "229",
		}
	}

	return Palette{
		Accent:  "125",
		Muted:   "242",
		Border:  "250",
		Good:    "28",
		Bad:     "160",
		Staff:   "25",
		Visitor: "94",
	}
}

func (p Palette) Highlight(s string) string {
	return lipgloss.NewStyle().Foreground(p.Accent).Render(s)
}

func (p Palette) Faint(s string) string {
	return lipgloss.NewStyle().Foreground(p.Muted).Render(s)
}

func (p Palette) Boxed(s string) string {
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(p.Border).
		Render(s)
}

func (p Palette) TableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(p.Border).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	return s
}

func newTable(columns []table.Column, p Palette) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	t.SetStyles(p.TableStyles())

	return t
}
