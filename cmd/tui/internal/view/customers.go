package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/prabink/khaatabook/internal/ledger"
)

type customersState int

const (
	customersStateBrowse customersState = iota
	customersStateAdd
)

type CustomersModel struct {
	CommonModel
	ledgerService *ledger.Service

	state     customersState
	table     table.Model
	customers []*ledger.Customer
	form      *huh.Form

	loading bool
	err     error
	status  string

	// Form bindings
	formName    string
	formPhone   string
	formAddress string
	formLimit   string
	formDays    string
}

func NewCustomersModel(ledgerSvc *ledger.Service) CustomersModel {
	columns := []table.Column{
		{Title: "Code", Width: 12},
		{Title: "Name", Width: 25},
		{Title: "Phone", Width: 16},
		{Title: "Outstanding", Width: 12},
		{Title: "Limit", Width: 12},
		{Title: "", Width: 10},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return CustomersModel{
		ledgerService: ledgerSvc,
		table:         t,
	}
}

func (m CustomersModel) Title() string { return "Customers" }
func (m CustomersModel) ShortHelp() string {
	if m.state == customersStateAdd {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | Enter: open ledger | a: add | x: delete | r: refresh"
}

func (m CustomersModel) Init() tea.Cmd {
	return m.loadCustomersCmd()
}

func (m CustomersModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadCustomersMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.customers = msg.customers
		m.refreshTable()

		return m, nil

	case customerSavedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("Saved %s", msg.code)
		}

		m.state = customersStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCustomersCmd()

	case customerDeletedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error deleting: %v", msg.err)
		} else {
			m.status = "Customer and their transactions deleted"
		}

		return m, m.loadCustomersCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case customersStateBrowse:
		return m.updateBrowse(msg)
	case customersStateAdd:
		return m.updateAdd(msg)
	}

	return m, nil
}

func (m CustomersModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCustomersCmd()
		case "a":
			return m.enterAddMode()
		case "x":
			return m, m.deleteCmd()
		case "enter":
			idx := m.table.Cursor()
			if idx >= 0 && idx < len(m.customers) {
				c := m.customers[idx]
				return m, func() tea.Msg { return OpenLedgerMsg{Customer: c} }
			}
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m CustomersModel) enterAddMode() (tea.Model, tea.Cmd) {
	m.formName = ""
	m.formPhone = ""
	m.formAddress = ""
	m.formLimit = "0"
	m.formDays = "0"

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("name").
				Title("Name").
				Value(&m.formName).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Key("phone").
				Title("Phone").
				Value(&m.formPhone),

			huh.NewInput().
				Key("address").
				Title("Address").
				Value(&m.formAddress),

			huh.NewInput().
				Key("credit_limit").
				Title("Credit limit (cents, 0 = none)").
				Value(&m.formLimit).
				Validate(validateInt),

			huh.NewInput().
				Key("default_credit_days").
				Title("Default credit days").
				Value(&m.formDays).
				Validate(validateInt),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = customersStateAdd
	m.table.Blur()

	return m, m.form.Init()
}

func (m CustomersModel) updateAdd(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = customersStateBrowse
			m.form = nil
			m.table.Focus()

			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveCmd()
}

func (m CustomersModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading customers...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := tableView

	if m.state == customersStateAdd && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render("New Customer\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *CustomersModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.customers))

	for _, c := range m.customers {
		flag := ""
		if c.OverLimit() {
			flag = "OVER LIMIT"
		}

		rows = append(rows, table.Row{
			c.Code,
			c.Name,
			c.Phone,
			FormatAmount(c.OutstandingBalance),
			FormatAmount(c.CreditLimit),
			flag,
		})
	}

	m.table.SetRows(rows)
}

func validateInt(s string) error {
	if s == "" {
		return nil
	}

	if _, err := strconv.ParseInt(s, 10, 64); err != nil {
		return fmt.Errorf("must be a whole number")
	}

	return nil
}

// Messages

type loadCustomersMsg struct {
	customers []*ledger.Customer
	err       error
}

func (m CustomersModel) loadCustomersCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		customers, err := m.ledgerService.ListCustomers(ctx)

		return loadCustomersMsg{customers: customers, err: err}
	}
}

type customerSavedMsg struct {
	code string
	err  error
}

func (m CustomersModel) saveCmd() tea.Cmd {
	limit, _ := strconv.ParseInt(m.formLimit, 10, 64)
	days, _ := strconv.Atoi(m.formDays)

	params := ledger.CreateCustomerParams{
		Name:              m.formName,
		Phone:             m.formPhone,
		Address:           m.formAddress,
		CreditLimit:       limit,
		DefaultCreditDays: days,
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		c, err := m.ledgerService.CreateCustomer(ctx, params)
		if err != nil {
			return customerSavedMsg{err: err}
		}

		return customerSavedMsg{code: c.Code}
	}
}

type customerDeletedMsg struct {
	err error
}

func (m CustomersModel) deleteCmd() tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.customers) {
		return nil
	}

	id := m.customers[idx].ID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return customerDeletedMsg{err: m.ledgerService.DeleteCustomer(ctx, id)}
	}
}
