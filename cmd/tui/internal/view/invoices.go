package view

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/billroom/internal/engine"
	"github.com/MrJamesThe3rd/billroom/internal/transaction"
)

// InvoiceModel collects a manual bill and hands it to the engine.
type InvoiceModel struct {
	CommonModel
	eng *engine.Engine

	form   *huh.Form
	fields *invoiceFields
	status string
	err    error
}

// invoiceFields lives on the heap so the form keeps writing to the same
// place while the model is copied between updates.
type invoiceFields struct {
	senderName      string
	senderAddress   string
	self            bool
	receiverName    string
	receiverAddress string
	items           string
	extras          string
}

func NewInvoiceModel(eng *engine.Engine) InvoiceModel {
	fields := &invoiceFields{}

	return InvoiceModel{eng: eng, fields: fields, form: buildInvoiceForm(fields)}
}

func buildInvoiceForm(m *invoiceFields) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Sender").
				Value(&m.senderName).
				Validate(required("sender")),
			huh.NewInput().
				Title("Sender address").
				Value(&m.senderAddress),
			huh.NewConfirm().
				Title("Cash counter sale?").
				Affirmative("Self").
				Negative("Two-party").
				Value(&m.self),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Receiver").
				Value(&m.receiverName).
				Validate(required("receiver")),
			huh.NewInput().
				Title("Receiver address").
				Value(&m.receiverAddress),
		).WithHideFunc(func() bool { return m.self }),
		huh.NewGroup(
			huh.NewText().
				Title("Items").
				Description("One per line: name, price in rupees").
				Value(&m.items).
				Validate(func(s string) error {
					_, err := parseItems(s)
					return err
				}),
			huh.NewInput().
				Title("Extras").
				Description("Comma separated, optional").
				Value(&m.extras),
		),
	).WithWidth(60).WithShowHelp(false)
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}

		return nil
	}
}

// parseItems reads "name, price" lines. Prices are rupees with up to two decimals.
func parseItems(s string) ([]transaction.Product, error) {
	var items []transaction.Product

	for i, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		idx := strings.LastIndex(line, ",")
		if idx < 0 {
			return nil, fmt.Errorf("line %d: expected name, price", i+1)
		}

		name := strings.TrimSpace(line[:idx])
		rupees, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(line[idx+1:]), "_", ""), 64)
		if err != nil || rupees <= 0 || name == "" {
			return nil, fmt.Errorf("line %d: invalid item", i+1)
		}

		items = append(items, transaction.Product{
			Name:    name,
			Price:   int64(rupees*100 + 0.5),
			GSTRate: transaction.GSTRate,
		})
	}

	if len(items) == 0 {
		return nil, errors.New("at least one item is required")
	}

	return items, nil
}

func (m InvoiceModel) Title() string { return "New Manual Bill" }

func (m InvoiceModel) ShortHelp() string {
	return "Tab: next field | Esc: back"
}

func (m InvoiceModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m InvoiceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	if m.status != "" {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.submit()

	return m, nil
}

func (m *InvoiceModel) submit() {
	f := m.fields

	items, err := parseItems(f.items)
	if err != nil {
		m.err = err
		m.status = fmt.Sprintf("Error: %v", err)

		return
	}

	var extras []string
	for e := range strings.SplitSeq(f.extras, ",") {
		if e = strings.TrimSpace(e); e != "" {
			extras = append(extras, e)
		}
	}

	tx, err := m.eng.SubmitManual(engine.ManualParams{
		SenderName:      f.senderName,
		SenderAddress:   f.senderAddress,
		ReceiverName:    f.receiverName,
		ReceiverAddress: f.receiverAddress,
		Self:            f.self,
		Items:           items,
		Extras:          extras,
	})
	if err != nil {
		m.err = err
		m.status = fmt.Sprintf("Error: %v", err)

		return
	}

	m.status = fmt.Sprintf("Queued %s for room %s, total %s.", tx.ID, tx.AssignedRoom, FormatAmount(tx.Total))
}

func (m InvoiceModel) View() string {
	p := PaletteFor(m.eng.Theme())
	style := lipgloss.NewStyle().Padding(2)

	if m.status == "" {
		return style.Render(p.Highlight(m.Title()) + "\n\n" + m.form.View())
	}

	color := p.Good
	if m.err != nil {
		color = p.Bad
	}

	return style.Render(
		lipgloss.NewStyle().Foreground(color).Render(m.status) + "\n\n(Esc to go back)",
	)
}
