package view

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/prabink/khaatabook/internal/ledger"
	"github.com/prabink/khaatabook/internal/suggest"
)

type ledgerState int

const (
	ledgerStateBrowse ledgerState = iota
	ledgerStateAdd
)

// LedgerModel shows one customer's transaction history with running balances.
type LedgerModel struct {
	CommonModel
	ledgerService  *ledger.Service
	suggestService *suggest.Service

	customer *ledger.Customer

	state ledgerState
	table table.Model
	txs   []*ledger.Transaction
	form  *huh.Form

	loading bool
	err     error
	status  string

	// Form bindings
	formType   string
	formAmount string
	formDate   string
	formDesc   string
	formDays   string
}

func NewLedgerModel(ledgerSvc *ledger.Service, suggestSvc *suggest.Service, customer *ledger.Customer) LedgerModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Type", Width: 8},
		{Title: "Amount", Width: 12},
		{Title: "Balance", Width: 12},
		{Title: "Status", Width: 9},
		{Title: "Due", Width: 12},
		{Title: "Description", Width: 35},
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

	return LedgerModel{
		ledgerService:  ledgerSvc,
		suggestService: suggestSvc,
		customer:       customer,
		table:          t,
	}
}

func (m LedgerModel) Title() string { return fmt.Sprintf("Ledger: %s", m.customer.Name) }
func (m LedgerModel) ShortHelp() string {
	if m.state == ledgerStateAdd {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | a: add entry | x: delete entry | r: refresh"
}

func (m LedgerModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m LedgerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadLedgerMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.txs = msg.txs
		if msg.customer != nil {
			m.customer = msg.customer
		}

		m.refreshTable()

		return m, nil

	case ledgerSavedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.status = "Entry recorded"
		}

		m.state = ledgerStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 12)
		return m, nil
	}

	switch m.state {
	case ledgerStateBrowse:
		return m.updateBrowse(msg)
	case ledgerStateAdd:
		return m.updateAdd(msg)
	}

	return m, nil
}

func (m LedgerModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "a":
			return m.enterAddMode()
		case "x":
			return m, m.deleteCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m LedgerModel) enterAddMode() (tea.Model, tea.Cmd) {
	m.formType = string(ledger.TypeSale)
	m.formAmount = ""
	m.formDate = FormatDate(time.Now())
	m.formDesc = ""
	m.formDays = strconv.Itoa(m.customer.DefaultCreditDays)

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("type").
				Title("Type").
				Options(
					huh.NewOption("Sale (customer owes)", string(ledger.TypeSale)),
					huh.NewOption("Payment (customer paid)", string(ledger.TypePayment)),
				).
				Value(&m.formType),

			huh.NewInput().
				Key("amount").
				Title("Amount (cents)").
				Value(&m.formAmount).
				Validate(func(s string) error {
					n, err := strconv.ParseInt(s, 10, 64)
					if err != nil || n <= 0 {
						return fmt.Errorf("must be a positive whole number")
					}
					return nil
				}),

			huh.NewInput().
				Key("date").
				Title("Date (YYYY-MM-DD)").
				Value(&m.formDate).
				Validate(func(s string) error {
					if _, err := time.Parse(time.DateOnly, s); err != nil {
						return fmt.Errorf("must be YYYY-MM-DD")
					}
					return nil
				}),

			huh.NewInput().
				Key("description").
				Title("Description (blank = suggested)").
				Value(&m.formDesc),

			huh.NewInput().
				Key("credit_days").
				Title("Credit days (sales only)").
				Value(&m.formDays).
				Validate(validateInt),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = ledgerStateAdd
	m.table.Blur()

	return m, m.form.Init()
}

func (m LedgerModel) updateAdd(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = ledgerStateBrowse
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

func (m LedgerModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading ledger...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	header := fmt.Sprintf("%s (%s)  Outstanding: %s",
		m.customer.Name, m.customer.Code, FormatAmount(m.customer.OutstandingBalance))
	if m.customer.OverLimit() {
		header += "  " + lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("OVER LIMIT")
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state == ledgerStateAdd && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render("New Entry\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *LedgerModel) refreshTable() {
	now := time.Now()
	rows := make([]table.Row, 0, len(m.txs))

	for _, tx := range m.txs {
		due := ""
		if tx.DueDate != nil {
			due = FormatDate(*tx.DueDate)
		}

		rows = append(rows, table.Row{
			FormatDate(tx.Date),
			string(tx.Type),
			FormatAmount(tx.Amount),
			FormatAmount(tx.BalanceAfter),
			string(tx.DisplayStatus(now)),
			due,
			tx.Description,
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadLedgerMsg struct {
	customer *ledger.Customer
	txs      []*ledger.Transaction
	err      error
}

func (m LedgerModel) loadCmd() tea.Cmd {
	id := m.customer.ID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		customer, err := m.ledgerService.GetCustomer(ctx, id)
		if err != nil {
			return loadLedgerMsg{err: err}
		}

		txs, err := m.ledgerService.ListTransactions(ctx, ledger.ListFilter{CustomerID: &id})
		if err != nil {
			return loadLedgerMsg{err: err}
		}

		return loadLedgerMsg{customer: customer, txs: txs}
	}
}

type ledgerSavedMsg struct {
	err error
}

func (m LedgerModel) saveCmd() tea.Cmd {
	amount, _ := strconv.ParseInt(m.formAmount, 10, 64)
	date, _ := time.Parse(time.DateOnly, m.formDate)
	txType := ledger.Type(m.formType)

	var creditDays *int
	if txType == ledger.TypeSale {
		if d, err := strconv.Atoi(m.formDays); err == nil {
			creditDays = &d
		}
	}

	desc := strings.TrimSpace(m.formDesc)
	customerName := m.customer.Name
	customerID := m.customer.ID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if desc == "" {
			suggested, err := m.suggestService.Suggest(ctx, suggest.Input{
				Type:         txType,
				Amount:       amount,
				CustomerName: customerName,
			})
			if err == nil {
				desc = suggested
			}
		}

		_, err := m.ledgerService.AddTransaction(ctx, ledger.CreateTransactionParams{
			CustomerID:  customerID,
			Date:        date,
			Type:        txType,
			Amount:      amount,
			Description: desc,
			CreditDays:  creditDays,
		})

		return ledgerSavedMsg{err: err}
	}
}

func (m LedgerModel) deleteCmd() tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return nil
	}

	id := m.txs[idx].ID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return ledgerSavedMsg{err: m.ledgerService.DeleteTransaction(ctx, id)}
	}
}
